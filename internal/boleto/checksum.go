package boleto

// mod10 computes the FEBRABAN modulo-10 check digit. Digits are weighted
// right to left with 2,1,2,1...; products above 9 have 9 subtracted.
func mod10(data string) int {
	sum := 0
	weight := 2
	for i := len(data) - 1; i >= 0; i-- {
		p := int(data[i]-'0') * weight
		if p > 9 {
			p -= 9
		}
		sum += p
		if weight == 2 {
			weight = 1
		} else {
			weight = 2
		}
	}
	return (10 - sum%10) % 10
}

// weightedSum11 weights digits right to left with 2..9, wrapping back to 2
func weightedSum11(data string) int {
	sum := 0
	weight := 2
	for i := len(data) - 1; i >= 0; i-- {
		sum += int(data[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	return sum
}

// mod11Bank computes the general check digit of a bank slip barcode.
// Results of 10 and 11 collapse to 1.
func mod11Bank(data string) int {
	dv := 11 - weightedSum11(data)%11
	if dv > 9 {
		dv = 0
	}
	if dv == 0 {
		dv = 1
	}
	return dv
}

// mod11Collection computes the modulo-11 check digit used by utility slips
func mod11Collection(data string) int {
	rem := weightedSum11(data) % 11
	if rem == 0 || rem == 1 {
		return 0
	}
	return 11 - rem
}

// digitAt returns the numeric value of the ASCII digit at position i
func digitAt(s string, i int) int {
	return int(s[i] - '0')
}
