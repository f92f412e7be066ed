package receipts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"fridgechef/internal/models"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// ImageRecognizer extracts text from an image
type ImageRecognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Parser turns an uploaded receipt into plain text. PDFs are read from their
// text layer, images go through the recognizer.
type Parser struct {
	dir        string
	recognizer ImageRecognizer
	log        *zap.Logger
}

// NewParser creates a parser that stages uploads under dir. recognizer may be
// nil, in which case image receipts fail with models.ErrDependency.
func NewParser(dir string, recognizer ImageRecognizer, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{dir: dir, recognizer: recognizer, log: log.Named("receipts")}
}

// Parse stores src in a temporary file, extracts its text and removes the
// file again whatever the outcome.
func (p *Parser) Parse(ctx context.Context, filename string, src io.Reader) (string, error) {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	tmp, err := os.CreateTemp(p.dir, "receipt-*"+filepath.Ext(filename))
	if err != nil {
		return "", fmt.Errorf("failed to stage upload: %w", err)
	}
	path := tmp.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			p.log.Warn("failed to remove staged receipt", zap.String("path", path), zap.Error(err))
		}
	}()

	_, err = io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to stage upload: %w", err)
	}

	p.log.Debug("processing receipt", zap.String("file", filename), zap.String("path", path))
	return p.extract(ctx, path)
}

func (p *Parser) extract(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read staged receipt: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: receipt file is empty", models.ErrValidation)
	}

	contentType := http.DetectContentType(data)
	switch {
	case contentType == "application/pdf":
		text, err := pdfText(path)
		if err != nil {
			return "", fmt.Errorf("%w: could not read PDF receipt: %v", models.ErrValidation, err)
		}
		return text, nil
	case strings.HasPrefix(contentType, "image/"):
		if p.recognizer == nil {
			return "", fmt.Errorf("%w: receipt recognition is not configured", models.ErrDependency)
		}
		text, err := p.recognizer.Recognize(ctx, data)
		if err != nil {
			return "", fmt.Errorf("%w: text recognition failed: %v", models.ErrDependency, err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("%w: unsupported receipt type %s", models.ErrValidation, contentType)
	}
}

func pdfText(path string) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
