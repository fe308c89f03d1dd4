package scanning

import (
	"context"
	"errors"

	"github.com/zombor/boleto-reader/internal/boleto"
)

var (
	// ErrPageUnavailable marks a page whose text could not be read. The scan
	// skips such pages.
	ErrPageUnavailable = errors.New("page unavailable")
	// ErrPasswordRequired is returned when an encrypted PDF is opened without a password
	ErrPasswordRequired = errors.New("document is password protected")
	// ErrBadPassword is returned when the given password does not decrypt the PDF
	ErrBadPassword = errors.New("wrong document password")
	// ErrNoTranscriber is returned when an image arrives and no OCR is configured
	ErrNoTranscriber = errors.New("no OCR transcriber configured")
	// ErrUnsupported is returned for content types that cannot be decoded
	ErrUnsupported = errors.New("unsupported document type")
)

// Document gives page-by-page access to the text of a decoded document.
// Pages are numbered from 1.
type Document interface {
	PageCount() int
	PageText(ctx context.Context, page int) (string, error)
}

// Transcriber turns a rendered page image (PNG) into text
type Transcriber interface {
	Transcribe(ctx context.Context, png []byte) (string, error)
	// Close releases any resources held by the transcriber
	Close() error
}

// Scanner defines the interface for payment slip scanning operations
type Scanner interface {
	// ScanDocument decodes a PDF or image and searches it for a digit line
	ScanDocument(ctx context.Context, data []byte, contentType, password string) (*Result, error)
	// Close closes the scanner and releases resources
	Close() error
}

// Result is the outcome of scanning one document
type Result struct {
	Found     bool            `json:"found"`
	PageIndex int             `json:"pageIndex,omitempty"`
	Digits    string          `json:"digits,omitempty"`
	Kind      boleto.Kind     `json:"kind,omitempty"`
	Display   string          `json:"display,omitempty"`
	Strategy  boleto.Strategy `json:"strategy,omitempty"`
	Pages     int             `json:"pages"`
}
