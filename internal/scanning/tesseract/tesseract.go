// Package tesseract transcribes page images with a local Tesseract install.
// Building it requires the leptonica and tesseract cgo headers.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Transcriber implements scanning.Transcriber. A gosseract client is created
// per page since clients are not safe for concurrent use.
type Transcriber struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// New creates a Transcriber. Portuguese is used when no language is given.
func New(languages ...string) *Transcriber {
	if len(languages) == 0 {
		languages = []string{"por"}
	}
	return &Transcriber{languages: languages, clientFactory: gosseract.NewClient}
}

// Transcribe runs OCR over a PNG page image
func (t *Transcriber) Transcribe(ctx context.Context, png []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := t.clientFactory()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("setting languages: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("setting page segmentation: %w", err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("setting image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// Close is a no-op; clients are closed after every page
func (t *Transcriber) Close() error {
	return nil
}
