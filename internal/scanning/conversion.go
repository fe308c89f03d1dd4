package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// defaultDPI is the resolution pages are rendered at before OCR
const defaultDPI = 300

// renderPage renders a zero-based PDF page to PNG
func renderPage(doc *fitz.Document, page int, dpi float64) ([]byte, error) {
	if dpi <= 0 {
		dpi = defaultDPI
	}
	img, err := doc.ImageDPI(page, dpi)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page %d: %w", page+1, err)
	}
	return encodePNG(img)
}

// imageToPNG decodes a photo (JPEG, PNG, GIF, HEIC/HEIF) and re-encodes it as PNG
func imageToPNG(data []byte, mimeType string) ([]byte, error) {
	if mimeType == "image/png" && !isHEICFormat(data) {
		return data, nil
	}

	var (
		img image.Image
		err error
	)
	if isHEICFormat(data) || isHEICMimeType(mimeType) {
		// iPhone photos; the standard library has no HEIC decoder
		img, err = heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return encodePNG(img)
	}

	img, _, err = image.Decode(bytes.NewReader(data))
	if err != nil {
		if strings.Contains(err.Error(), "unknown format") {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, mimeType)
		}
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEICFormat looks for an ftyp box with a HEIC-family brand at offset 4
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// isPDF reports whether the payload is a PDF, trusting the magic bytes over
// the declared content type
func isPDF(data []byte, mimeType string) bool {
	return bytes.HasPrefix(data, []byte("%PDF")) || mimeType == "application/pdf"
}

// normalizeContentType lowercases the MIME type and drops parameters
func normalizeContentType(contentType string) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}
