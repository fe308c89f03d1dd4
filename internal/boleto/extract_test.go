package boleto

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func collect(text string) []Candidate {
	var out []Candidate
	for c := range Candidates(text) {
		out = append(out, c)
	}
	return out
}

func fullWidth(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r - '0' + '０'
		}
		return r
	}, s)
}

var _ = Describe("Find", func() {
	var (
		text  string
		match Match
		found bool
	)

	JustBeforeEach(func() {
		match, found = Find(text)
	})

	When("the page prints a grouped bank slip line", func() {
		BeforeEach(func() {
			text = "Banco Bradesco 237-2\nRecibo do pagador\n" + bankSlipDisplay + "\nVencimento 10/05/2024 Valor 260,00"
		})

		It("finds it with the structured pattern", func() {
			Expect(found).To(BeTrue())
			Expect(match.Strategy).To(Equal(Structured47))
			Expect(match.Kind).To(Equal(BankSlip))
			Expect(match.Digits).To(Equal(bankSlipDigits))
			Expect(match.String()).To(Equal(bankSlipDisplay))
		})
	})

	When("the line is split across lines and tabs", func() {
		BeforeEach(func() {
			text = "23793.38128\t60007.327020\n\n07144.464000   7\r\n10000000026000"
		})

		It("still matches after whitespace is collapsed", func() {
			Expect(found).To(BeTrue())
			Expect(match.Strategy).To(Equal(Structured47))
			Expect(match.Digits).To(Equal(bankSlipDigits))
		})
	})

	When("the page prints a hyphenated utility bill line", func() {
		BeforeEach(func() {
			text = "CONTA DE ENERGIA 83700000001-3 23450048019-4 10000000000-8 12345678901-5 Total"
		})

		It("finds it with the 48-digit pattern", func() {
			Expect(found).To(BeTrue())
			Expect(match.Strategy).To(Equal(Structured48))
			Expect(match.Kind).To(Equal(UtilityBill))
			Expect(match.Digits).To(Equal(utilityMod10))
		})
	})

	When("OCR produced full-width digits", func() {
		BeforeEach(func() {
			text = fullWidth(bankSlipDisplay)
		})

		It("normalizes them to ASCII", func() {
			Expect(found).To(BeTrue())
			Expect(match.Digits).To(Equal(bankSlipDigits))
		})
	})

	When("only loose groups carry the line", func() {
		BeforeEach(func() {
			text = "Doc 123, linha 2379338128-6000732702-0071444640-0071-0000000026000 fim"
		})

		It("falls back to the grouped scan", func() {
			Expect(found).To(BeTrue())
			Expect(match.Strategy).To(Equal(Grouped))
			Expect(match.Digits).To(Equal(bankSlipDigits))
		})
	})

	When("the page has a bare mod11 utility run buried in other text", func() {
		BeforeEach(func() {
			text = "codigo:" + utilityMod11 + "."
		})

		It("validates it", func() {
			Expect(found).To(BeTrue())
			Expect(match.Kind).To(Equal(UtilityBill))
			Expect(match.Digits).To(Equal(utilityMod11))
		})
	})

	When("an invalid line precedes a valid one", func() {
		BeforeEach(func() {
			invalid := bankSlipDisplay[:len(bankSlipDisplay)-1] + "1"
			text = invalid + " e " + bankSlipDisplay
		})

		It("only tries the first match of each strategy", func() {
			Expect(found).To(BeFalse())
		})
	})

	When("there is no digit run of the right length", func() {
		BeforeEach(func() {
			text = "Nota fiscal 12345 emitida em 10/05/2024, total R$ 1.234,56"
		})

		It("finds nothing", func() {
			Expect(found).To(BeFalse())
		})
	})
})

var _ = Describe("Candidates", func() {
	It("yields nothing for text without digits", func() {
		Expect(collect("sem linha digitável")).To(BeEmpty())
	})

	It("yields one candidate per matching strategy in priority order", func() {
		cs := collect("83700000001-3 23450048019-4 10000000000-8 12345678901-5")
		Expect(cs).To(HaveLen(3))
		Expect(cs[0].Strategy).To(Equal(Structured48))
		Expect(cs[1].Strategy).To(Equal(Contiguous))
		Expect(cs[2].Strategy).To(Equal(Grouped))
		for _, c := range cs {
			Expect(c.Digits).To(Equal(utilityMod10))
		}
	})

	It("stops when the consumer stops", func() {
		seen := 0
		for range Candidates(bankSlipDisplay) {
			seen++
			break
		}
		Expect(seen).To(Equal(1))
	})

	It("prefers 48 digits in the contiguous scan", func() {
		cs := collect("x" + bankSlipDigits + "9")
		Expect(cs).NotTo(BeEmpty())
		var contiguous *Candidate
		for i := range cs {
			if cs[i].Strategy == Contiguous {
				contiguous = &cs[i]
			}
		}
		Expect(contiguous).NotTo(BeNil())
		Expect(contiguous.Digits).To(HaveLen(48))
	})
})

var _ = Describe("Strategy", func() {
	It("round-trips through text", func() {
		for _, s := range []Strategy{Structured47, Structured48, Contiguous, Grouped, 0} {
			text, err := s.MarshalText()
			Expect(err).NotTo(HaveOccurred())
			var decoded Strategy
			Expect(decoded.UnmarshalText(text)).To(Succeed())
			Expect(decoded).To(Equal(s))
		}
	})
})
