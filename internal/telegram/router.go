package telegram

import (
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cashbot/internal/logger"
	"github.com/m3rciful/cashbot/internal/telegram/callbacks"
	"github.com/m3rciful/cashbot/internal/telegram/middleware"
	"github.com/m3rciful/cashbot/internal/telegram/tgctx"
)

// FSM is the minimal conversation interface the router depends on.
type FSM interface {
	InProgress(userID int64) bool
	Handle(c tele.Context) error
}

// Route declares a single bot handler bound to an endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RouteOptions customises fallback behaviour of the built routes.
type RouteOptions struct {
	UnknownText       tele.HandlerFunc
	UnknownAttachment tele.HandlerFunc
}

// BuildRoutes wires text, attachment, callback and command routing through
// the FSM and the registry.
//
// Text resolution order: slash commands first so /cancel works inside any
// conversation, then the active conversation, then reply-keyboard labels,
// then the registry fallback. Attachments only make sense inside a
// conversation (invoice or proof upload).
func BuildRoutes(fsmMgr FSM, reg *Registry, opts RouteOptions) []Route {
	textHandler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if strings.HasPrefix(text, "/") {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				return handleWithSummary(c, normalizeHandlerName(key), start, cmd.Handler)
			}
		}

		if fsmMgr != nil && fsmMgr.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "fsm", start, fsmMgr.Handle)
		}

		if h, ok := reg.LookupText(text); ok {
			return handleWithSummary(c, "text."+normalizeHandlerName(text), start, h)
		}

		if fb := reg.TextFallback(); fb != nil {
			return handleWithSummary(c, "fallback", start, fb)
		}
		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, opts.UnknownText)
		}
		logHandlerSummary(c, "unknown_text", start, nil)
		return nil
	}

	attachmentHandler := func(c tele.Context) error {
		start := time.Now()
		if fsmMgr != nil && fsmMgr.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "fsm_attachment", start, fsmMgr.Handle)
		}
		if opts.UnknownAttachment != nil {
			return handleWithSummary(c, "unexpected_attachment", start, opts.UnknownAttachment)
		}
		logHandlerSummary(c, "unexpected_attachment", start, nil)
		return nil
	}

	callbackHandler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}

		key := callbacks.CallbackKey(c)
		name := "callback." + normalizeHandlerName(key)

		_ = c.Respond()

		h, ok := reg.GetCallback(key)
		if !ok || h == nil {
			h = reg.CallbackNotFound()
			if h == nil {
				logHandlerSummary(c, name, start, nil, slog.String("reason", "not_found"))
				return nil
			}
		}
		return handleWithSummary(c, name, start, h, slog.String("cb_key", key))
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.Recover(middleware.Logger(h))
	}

	return []Route{
		{Endpoint: tele.OnText, Handler: wrap(textHandler)},
		{Endpoint: tele.OnDocument, Handler: wrap(attachmentHandler)},
		{Endpoint: tele.OnPhoto, Handler: wrap(attachmentHandler)},
		{Endpoint: tele.OnCallback, Handler: wrap(callbackHandler)},
	}
}

func handleWithSummary(c tele.Context, name string, start time.Time, fn tele.HandlerFunc, extras ...slog.Attr) error {
	tgctx.WithHandler(c, name)
	err := fn(c)
	logHandlerSummary(c, name, start, err, extras...)
	return err
}

func logHandlerSummary(c tele.Context, name string, start time.Time, err error, extras ...slog.Attr) {
	ctx := tgctx.WithHandler(c, name)
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
	}
	attrs = append(attrs, extras...)
	logger.Event(ctx, logger.TG, slog.LevelInfo, "handler.handled", attrs...)
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}
