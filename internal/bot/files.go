package bot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tele "gopkg.in/telebot.v4"
)

var errNoAttachment = errors.New("message carries no photo or document")

// FileStore persists uploaded attachments locally. Tests substitute fakes.
type FileStore interface {
	// SaveInvoice downloads an invoice document and returns its local path.
	SaveInvoice(doc *tele.Document) (string, error)
	// SaveProof downloads a payment proof (photo or document) and returns
	// the Telegram file id used as the proof reference.
	SaveProof(m *tele.Message) (string, error)
}

// Files downloads attachments through the bot API into configured directories.
// Local names are keyed by the file's unique id, so re-downloads overwrite
// instead of piling up copies.
type Files struct {
	bot         *tele.Bot
	invoicesDir string
	checksDir   string
}

// NewFiles builds a FileStore over the bot transport.
func NewFiles(b *tele.Bot, invoicesDir, checksDir string) *Files {
	return &Files{bot: b, invoicesDir: invoicesDir, checksDir: checksDir}
}

func (f *Files) SaveInvoice(doc *tele.Document) (string, error) {
	if doc == nil {
		return "", errNoAttachment
	}
	dst := filepath.Join(f.invoicesDir, localName(doc.UniqueID, doc.FileName, ".pdf"))
	if err := f.download(&doc.File, dst); err != nil {
		return "", fmt.Errorf("save invoice: %w", err)
	}
	return dst, nil
}

func (f *Files) SaveProof(m *tele.Message) (string, error) {
	switch {
	case m == nil:
		return "", errNoAttachment
	case m.Photo != nil:
		dst := filepath.Join(f.checksDir, m.Photo.UniqueID+".jpg")
		if err := f.download(&m.Photo.File, dst); err != nil {
			return "", fmt.Errorf("save proof photo: %w", err)
		}
		return m.Photo.FileID, nil
	case m.Document != nil:
		dst := filepath.Join(f.checksDir, localName(m.Document.UniqueID, m.Document.FileName, ""))
		if err := f.download(&m.Document.File, dst); err != nil {
			return "", fmt.Errorf("save proof document: %w", err)
		}
		return m.Document.FileID, nil
	default:
		return "", errNoAttachment
	}
}

func (f *Files) download(file *tele.File, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	rc, err := f.bot.File(file)
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

// localName joins the unique file id with a sanitized original name so the
// path stays deterministic for the same upload.
func localName(uniqueID, original, fallbackExt string) string {
	base := filepath.Base(strings.TrimSpace(original))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return uniqueID + fallbackExt
	}
	return uniqueID + "_" + base
}
