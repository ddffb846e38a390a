package logger

import (
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// Options configure the global structured logger.
type Options struct {
	Level   string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format  string `yaml:"format" envconfig:"LOG_FORMAT"`
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
	Dir     string `yaml:"dir" envconfig:"LOG_DIR"`
	File    string `yaml:"file" envconfig:"LOG_FILE"`
}

var (
	initOnce   sync.Once
	shutdownMu sync.Mutex
	shutdowned bool
	logClosers []io.Closer

	// L is the base logger; component loggers below derive from it.
	L *slog.Logger

	// DB logs database events.
	DB *slog.Logger
	// MIG logs schema migration events.
	MIG *slog.Logger
	// TG logs Telegram transport events.
	TG *slog.Logger
	// TWire logs Telegram wiring steps.
	TWire *slog.Logger
	// SVCRequests logs payment request service activity.
	SVCRequests *slog.Logger
	// SVCUsers logs user service activity.
	SVCUsers *slog.Logger
	// NOTIFY logs notification fan-out activity.
	NOTIFY *slog.Logger
)

func init() {
	// Sensible default until Init runs, so early failures are still visible.
	wire(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

// Init configures the global structured logger. It may be called only once.
func Init(opts Options) error {
	var initErr error
	initOnce.Do(func() {
		out, closers, err := buildOutput(opts)
		if err != nil {
			initErr = err
			return
		}
		logClosers = closers

		hopts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}
		var handler slog.Handler
		if useKV(opts) {
			handler = slog.NewTextHandler(out, hopts)
		} else {
			handler = slog.NewJSONHandler(out, hopts)
		}

		logger := slog.New(handler)
		wire(logger)
		slog.SetDefault(logger)

		L.Info("startup",
			slog.String("component", "app"),
			slog.String("go_version", runtime.Version()),
			slog.String("profile", opts.Profile),
		)
	})
	return initErr
}

// Shutdown closes log file sinks. Safe to call more than once.
func Shutdown() error {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if shutdowned {
		return nil
	}
	shutdowned = true
	var errs []error
	for _, c := range logClosers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Component returns a child logger tagged with the given component name.
func Component(name string) *slog.Logger {
	if L == nil {
		return slog.Default()
	}
	return L.With("component", name)
}

func wire(base *slog.Logger) {
	L = base
	DB = base.With("component", "db")
	MIG = base.With("component", "db.migrate")
	TG = base.With("component", "tg")
	TWire = base.With("component", "tg.wire")
	SVCRequests = base.With("component", "service.requests")
	SVCUsers = base.With("component", "service.users")
	NOTIFY = base.With("component", "notify")
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func useKV(opts Options) bool {
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "kv", "text", "pretty":
		return true
	case "json":
		return false
	}
	profile := strings.ToLower(strings.TrimSpace(opts.Profile))
	return profile == "debug" || profile == "dev"
}

func buildOutput(opts Options) (io.Writer, []io.Closer, error) {
	writers := []io.Writer{os.Stdout}
	var closers []io.Closer
	dir := strings.TrimSpace(opts.Dir)
	file := strings.TrimSpace(opts.File)
	if dir != "" && file != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("logger: failed to create log dir %s: %v", dir, err)
		} else {
			path := filepath.Join(dir, file)
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				log.Printf("logger: failed to open log file %s: %v", path, err)
			} else {
				writers = append(writers, f)
				closers = append(closers, f)
			}
		}
	}
	if len(writers) == 1 {
		return writers[0], closers, nil
	}
	return io.MultiWriter(writers...), closers, nil
}
