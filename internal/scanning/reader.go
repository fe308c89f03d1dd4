package scanning

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type openDocument interface {
	Document
	io.Closer
}

// Reader implements Scanner on top of MuPDF and an optional OCR transcriber
type Reader struct {
	transcriber Transcriber
	dpi         float64
}

// NewReader creates a Reader. transcriber may be nil, in which case only PDF
// text layers are read and photos are rejected.
func NewReader(transcriber Transcriber, dpi float64) *Reader {
	return &Reader{transcriber: transcriber, dpi: dpi}
}

// open decodes data into a Document based on its magic bytes and content type
func (r *Reader) open(data []byte, contentType, password string) (openDocument, error) {
	mimeType := normalizeContentType(contentType)
	switch {
	case isPDF(data, mimeType):
		return OpenPDF(data, PDFOptions{
			Password:    password,
			Transcriber: r.transcriber,
			DPI:         r.dpi,
		})
	case strings.HasPrefix(mimeType, "image/") || isHEICFormat(data):
		return OpenImage(data, mimeType, r.transcriber)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, contentType)
	}
}

// ScanDocument opens the document and runs Scan over it
func (r *Reader) ScanDocument(ctx context.Context, data []byte, contentType, password string) (*Result, error) {
	doc, err := r.open(data, contentType, password)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := doc.Close(); err != nil {
			slog.Warn("Failed to close document", "error", err)
		}
	}()

	result := Scan(ctx, doc)
	return &result, nil
}

// Close closes the transcriber, if any
func (r *Reader) Close() error {
	if r.transcriber == nil {
		return nil
	}
	return r.transcriber.Close()
}
