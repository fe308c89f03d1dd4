package scanning

import (
	"context"
	"fmt"
)

// Image is a single-page Document built from a photo of a slip. Its text
// always comes from OCR.
type Image struct {
	png         []byte
	transcriber Transcriber
}

// OpenImage decodes a JPEG, PNG, GIF or HEIC photo
func OpenImage(data []byte, contentType string, transcriber Transcriber) (*Image, error) {
	if transcriber == nil {
		return nil, ErrNoTranscriber
	}
	pngData, err := imageToPNG(data, normalizeContentType(contentType))
	if err != nil {
		return nil, err
	}
	return &Image{png: pngData, transcriber: transcriber}, nil
}

// PageCount is always 1
func (i *Image) PageCount() int {
	return 1
}

// PageText transcribes the photo
func (i *Image) PageText(ctx context.Context, page int) (string, error) {
	if page != 1 {
		return "", fmt.Errorf("%w: page %d out of range", ErrPageUnavailable, page)
	}
	text, err := i.transcriber.Transcribe(ctx, i.png)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPageUnavailable, err)
	}
	return text, nil
}

// Close is a no-op; the transcriber belongs to the caller
func (i *Image) Close() error {
	return nil
}
