package boleto

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Format", func() {
	It("groups bank slips as 5.5 5.6 5.6 1 14", func() {
		Expect(Format(bankSlipDigits, BankSlip)).To(Equal(bankSlipDisplay))
		Expect(Format(otherBankDigits, BankSlip)).To(Equal("34191.09008 00000.200006 01234.567897 3 95810000012345"))
	})

	It("groups utility bills as four 11.1 blocks", func() {
		Expect(Format(utilityMod10, UtilityBill)).To(Equal("83700000001.3 23450048019.4 10000000000.8 12345678901.5"))
	})

	It("falls back to runs of four digits", func() {
		Expect(Format("123456789", Unknown)).To(Equal("1234 5678 9"))
		Expect(Format(bankSlipDigits, UtilityBill)).To(HavePrefix("2379 3381 2860"))
		Expect(Format("", Unknown)).To(BeEmpty())
	})

	It("is deterministic", func() {
		Expect(Format(utilityMod11, UtilityBill)).To(Equal(Format(utilityMod11, UtilityBill)))
	})
})

var _ = Describe("FormatLine", func() {
	It("picks the layout from the digit count", func() {
		Expect(FormatLine(bankSlipDigits)).To(Equal(bankSlipDisplay))
		Expect(FormatLine("8370000000-13 ...")).To(Equal("8370 0000 0013"))
	})

	It("is stable on already formatted text", func() {
		Expect(FormatLine(bankSlipDisplay)).To(Equal(bankSlipDisplay))
	})
})
