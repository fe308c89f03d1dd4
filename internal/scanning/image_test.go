package scanning

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.Black)
	}
	return img
}

func pngBytes() []byte {
	var buf bytes.Buffer
	Expect(png.Encode(&buf, testImage())).To(Succeed())
	return buf.Bytes()
}

func jpegBytes() []byte {
	var buf bytes.Buffer
	Expect(jpeg.Encode(&buf, testImage(), nil)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("Image", func() {
	var transcriber *mockTranscriber

	BeforeEach(func() {
		transcriber = &mockTranscriber{text: bankSlipDisplay}
	})

	When("no transcriber is configured", func() {
		It("refuses to open the photo", func() {
			_, err := OpenImage(pngBytes(), "image/png", nil)
			Expect(err).To(MatchError(ErrNoTranscriber))
		})
	})

	When("the photo is a JPEG", func() {
		It("converts it to PNG before transcribing", func() {
			img, err := OpenImage(jpegBytes(), "image/jpeg", transcriber)
			Expect(err).NotTo(HaveOccurred())
			Expect(img.png).To(HavePrefix("\x89PNG"))
			Expect(img.PageCount()).To(Equal(1))

			text, err := img.PageText(context.Background(), 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal(bankSlipDisplay))
		})
	})

	When("the data is not an image", func() {
		It("returns an unsupported error", func() {
			_, err := OpenImage([]byte("not an image"), "image/jpeg", transcriber)
			Expect(err).To(MatchError(ErrUnsupported))
		})
	})

	When("transcription fails", func() {
		It("marks the page unavailable", func() {
			transcriber.err = errors.New("tesseract missing")
			img, err := OpenImage(pngBytes(), "image/png", transcriber)
			Expect(err).NotTo(HaveOccurred())
			_, err = img.PageText(context.Background(), 1)
			Expect(err).To(MatchError(ErrPageUnavailable))
		})
	})

	When("asking for a page past the end", func() {
		It("marks the page unavailable", func() {
			img, err := OpenImage(pngBytes(), "image/png", transcriber)
			Expect(err).NotTo(HaveOccurred())
			_, err = img.PageText(context.Background(), 2)
			Expect(err).To(MatchError(ErrPageUnavailable))
		})
	})
})

var _ = Describe("content detection", func() {
	It("recognizes HEIC brands", func() {
		Expect(isHEICFormat([]byte("\x00\x00\x00\x18ftypheic\x00\x00"))).To(BeTrue())
		Expect(isHEICFormat([]byte("\x00\x00\x00\x18ftypmp42\x00\x00"))).To(BeFalse())
		Expect(isHEICFormat([]byte("short"))).To(BeFalse())
	})

	It("detects PDFs by magic bytes", func() {
		Expect(isPDF([]byte("%PDF-1.7"), "application/octet-stream")).To(BeTrue())
		Expect(isPDF([]byte("GIF89a"), "image/gif")).To(BeFalse())
	})

	It("normalizes content types", func() {
		Expect(normalizeContentType(" Application/PDF; charset=binary ")).To(Equal("application/pdf"))
	})
})
