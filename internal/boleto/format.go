package boleto

import "strings"

// Format renders digits in the grouped form printed on slips. Strings whose
// length does not fit kind fall back to runs of four digits.
func Format(digits string, kind Kind) string {
	if l, ok := layouts[kind]; ok && len(digits) == l.length {
		return l.format(digits)
	}
	return groupsOf4(digits)
}

// FormatLine strips separators from s and formats the digits by their length
func FormatLine(s string) string {
	digits := onlyDigits(s)
	return Format(digits, KindOf(digits))
}

// formatBankSlip renders AAAAA.AAAAA BBBBB.BBBBBB CCCCC.CCCCCC D EEEEEEEEEEEEEE
func formatBankSlip(d string) string {
	return d[0:5] + "." + d[5:10] + " " +
		d[10:15] + "." + d[15:21] + " " +
		d[21:26] + "." + d[26:32] + " " +
		d[32:33] + " " +
		d[33:47]
}

// formatUtilityBill renders four 11.1 blocks
func formatUtilityBill(d string) string {
	blocks := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		blocks = append(blocks, d[i*12:i*12+11]+"."+d[i*12+11:i*12+12])
	}
	return strings.Join(blocks, " ")
}

func groupsOf4(d string) string {
	var b strings.Builder
	for i := 0; i < len(d); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := i + 4
		if end > len(d) {
			end = len(d)
		}
		b.WriteString(d[i:end])
	}
	return b.String()
}
