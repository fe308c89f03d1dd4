package scanning

import (
	"bytes"
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/zombor/boleto-reader/internal/boleto"
)

// onePagePDF writes a single Letter page showing each line with Helvetica
func onePagePDF(lines ...string) []byte {
	var content bytes.Buffer
	for i, line := range lines {
		fmt.Fprintf(&content, "BT /F1 10 Tf 40 %d Td (%s) Tj ET\n", 740-i*14, line)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objects)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R /ID [<0123456789abcdef0123456789abcdef> <0123456789abcdef0123456789abcdef>] >>\n", len(objects)+1)
	fmt.Fprintf(&b, "startxref\n%d\n%%%%EOF\n", xref)
	return b.Bytes()
}

// encryptPDF protects data with AES-128 using password for both user and owner
func encryptPDF(data []byte, password string) []byte {
	var out bytes.Buffer
	conf := model.NewAESConfiguration(password, password, 128)
	Expect(api.Encrypt(bytes.NewReader(data), &out, conf)).To(Succeed())
	return out.Bytes()
}

var _ = Describe("PDF", func() {
	var (
		transcriber *mockTranscriber
		reader      *Reader
		data        []byte
		password    string
		result      *Result
		err         error
	)

	BeforeEach(func() {
		transcriber = &mockTranscriber{text: "Linha digitável " + bankSlipDisplay}
		reader = NewReader(transcriber, 72)
		password = ""
	})

	JustBeforeEach(func() {
		result, err = reader.ScanDocument(context.Background(), data, "application/pdf", password)
	})

	When("the text layer carries the line", func() {
		BeforeEach(func() {
			data = onePagePDF("Banco 237 - Recibo do pagador", bankSlipDisplay)
		})

		It("finds it without OCR", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Found).To(BeTrue())
			Expect(result.PageIndex).To(Equal(1))
			Expect(result.Pages).To(Equal(1))
			Expect(result.Kind).To(Equal(boleto.BankSlip))
			Expect(result.Digits).To(Equal(bankSlipDigits))
			Expect(result.Strategy).To(Equal(boleto.Structured47))
			Expect(transcriber.calls).To(BeZero())
		})
	})

	When("the text layer has too few digits for a line", func() {
		BeforeEach(func() {
			data = onePagePDF("Boleto digitalizado", "Vencimento 10/05/2024")
		})

		It("renders the page and transcribes it", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(transcriber.calls).To(Equal(1))
			Expect(result.Found).To(BeTrue())
			Expect(result.Digits).To(Equal(bankSlipDigits))
		})

		When("no transcriber is configured", func() {
			BeforeEach(func() {
				reader = NewReader(nil, 72)
			})

			It("reports not found", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Found).To(BeFalse())
				Expect(result.Pages).To(Equal(1))
			})
		})
	})

	When("the PDF is password protected", func() {
		BeforeEach(func() {
			data = encryptPDF(onePagePDF(bankSlipDisplay), "12345")
		})

		When("no password is given", func() {
			It("asks for one", func() {
				Expect(err).To(MatchError(ErrPasswordRequired))
			})
		})

		When("the right password is given", func() {
			BeforeEach(func() {
				password = "12345"
			})

			It("decrypts and finds the line", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Found).To(BeTrue())
				Expect(result.Digits).To(Equal(bankSlipDigits))
				Expect(transcriber.calls).To(BeZero())
			})
		})

		When("the wrong password is given", func() {
			BeforeEach(func() {
				password = "99999"
			})

			It("reports a bad password", func() {
				Expect(err).To(MatchError(ErrBadPassword))
			})
		})
	})

	Describe("PageText", func() {
		It("marks pages out of range unavailable", func() {
			doc, err := OpenPDF(onePagePDF(bankSlipDisplay), PDFOptions{})
			Expect(err).NotTo(HaveOccurred())
			defer doc.Close()

			Expect(doc.PageCount()).To(Equal(1))
			_, err = doc.PageText(context.Background(), 2)
			Expect(err).To(MatchError(ErrPageUnavailable))
		})
	})
})
