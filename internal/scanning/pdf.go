package scanning

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// minLineDigits is the fewest digits a page must carry before its text layer
// is trusted without OCR
const minLineDigits = 47

// PDFOptions configures how a PDF is opened and read
type PDFOptions struct {
	// Password decrypts protected documents
	Password string
	// Transcriber, when set, OCRs pages whose text layer lacks a digit line
	Transcriber Transcriber
	// DPI used when rendering pages for OCR
	DPI float64
}

// PDF is a Document backed by MuPDF
type PDF struct {
	doc         *fitz.Document
	transcriber Transcriber
	dpi         float64
}

// OpenPDF opens a PDF from memory, decrypting it first when it is protected
func OpenPDF(data []byte, opts PDFOptions) (*PDF, error) {
	doc, err := fitz.NewFromMemory(data)
	if errors.Is(err, fitz.ErrNeedsPassword) {
		if opts.Password == "" {
			return nil, ErrPasswordRequired
		}
		decrypted, derr := decryptPDF(data, opts.Password)
		if derr != nil {
			return nil, derr
		}
		doc, err = fitz.NewFromMemory(decrypted)
	}
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	return &PDF{
		doc:         doc,
		transcriber: opts.Transcriber,
		dpi:         opts.DPI,
	}, nil
}

// decryptPDF removes the encryption from a protected PDF
func decryptPDF(data []byte, password string) ([]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	var buf bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(data), &buf, conf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPassword, err)
	}
	return buf.Bytes(), nil
}

// PageCount returns the number of pages in the document
func (p *PDF) PageCount() int {
	return p.doc.NumPage()
}

// PageText returns the text layer of a page. Pages that carry too few digits
// for a line (scanned slips, usually) are rendered and sent through OCR when
// a transcriber is configured.
func (p *PDF) PageText(ctx context.Context, page int) (string, error) {
	if page < 1 || page > p.PageCount() {
		return "", fmt.Errorf("%w: page %d out of range", ErrPageUnavailable, page)
	}

	text, err := p.doc.Text(page - 1)
	if err != nil {
		return "", fmt.Errorf("%w: extracting text: %w", ErrPageUnavailable, err)
	}
	if p.transcriber == nil || countDigits(text) >= minLineDigits {
		return text, nil
	}

	img, err := renderPage(p.doc, page-1, p.dpi)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPageUnavailable, err)
	}
	ocrText, err := p.transcriber.Transcribe(ctx, img)
	if err != nil {
		return "", fmt.Errorf("%w: transcribing page %d: %w", ErrPageUnavailable, page, err)
	}
	return text + "\n" + ocrText, nil
}

// Close releases the MuPDF document
func (p *PDF) Close() error {
	return p.doc.Close()
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}
