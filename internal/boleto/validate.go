package boleto

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLength is returned when a digit string is neither 47 nor 48 digits long
	ErrLength = errors.New("line must have 47 or 48 digits")
	// ErrPlaceholder is returned for bank slip lines starting with 000
	ErrPlaceholder = errors.New("placeholder line")
	// ErrNotUtility is returned for 48-digit lines that do not start with 8
	ErrNotUtility = errors.New("utility line must start with 8")
	// ErrChecksum is returned when a check digit does not match
	ErrChecksum = errors.New("check digit mismatch")
)

// Line is a digit line that passed validation for its kind
type Line struct {
	Digits string `json:"digits"`
	Kind   Kind   `json:"kind"`
}

// String renders the line in its canonical grouped form
func (l Line) String() string {
	return Format(l.Digits, l.Kind)
}

// Parse strips every non-digit character from s, classifies the remaining digits
// by length and validates them
func Parse(s string) (Line, error) {
	digits := onlyDigits(s)
	kind := KindOf(digits)
	if kind == Unknown {
		return Line{}, fmt.Errorf("%w: got %d", ErrLength, len(digits))
	}
	if err := layouts[kind].validate(digits); err != nil {
		return Line{}, err
	}
	return Line{Digits: digits, Kind: kind}, nil
}

// Validate reports whether digits is a valid line of the given kind. The input
// must already be bare digits of the kind's exact length.
func Validate(digits string, kind Kind) bool {
	l, ok := layouts[kind]
	if !ok || len(digits) != l.length || !isDigits(digits) {
		return false
	}
	return l.validate(digits) == nil
}

// ValidateLine reports whether s, once stripped of separators, is a valid line
// of either kind
func ValidateLine(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// validateBankSlip checks the three field check digits with mod10 and the
// general check digit at position 32 with mod11 over the barcode ordering
func validateBankSlip(d string) error {
	if strings.HasPrefix(d, "000") {
		return ErrPlaceholder
	}

	fields := [3][2]int{{0, 9}, {10, 20}, {21, 31}}
	for i, f := range fields {
		if mod10(d[f[0]:f[1]]) != digitAt(d, f[1]) {
			return fmt.Errorf("%w: field %d", ErrChecksum, i+1)
		}
	}

	if mod11Bank(barcodeData(d)) != digitAt(d, 32) {
		return fmt.Errorf("%w: general digit", ErrChecksum)
	}
	return nil
}

// barcodeData rebuilds the 43 barcode digits covered by the general check digit:
// bank and currency, due factor and value, then the free field.
func barcodeData(d string) string {
	return d[0:4] + d[33:47] + d[4:9] + d[10:20] + d[21:31]
}

// validateUtilityBill checks each of the four 11+1 blocks. The third digit picks
// the algorithm: 6 or 7 means mod10, anything else mod11.
func validateUtilityBill(d string) error {
	if d[0] != '8' {
		return ErrNotUtility
	}

	check := mod11Collection
	if d[2] == '6' || d[2] == '7' {
		check = mod10
	}

	for i := 0; i < 4; i++ {
		block := d[i*12 : i*12+12]
		if check(block[:11]) != digitAt(block, 11) {
			return fmt.Errorf("%w: block %d", ErrChecksum, i+1)
		}
	}
	return nil
}

// Barcode returns the 44-digit barcode encoded by a validated line
func Barcode(l Line) string {
	d := l.Digits
	switch l.Kind {
	case BankSlip:
		return d[0:4] + d[32:33] + d[33:47] + d[4:9] + d[10:20] + d[21:31]
	case UtilityBill:
		return d[0:11] + d[12:23] + d[24:35] + d[36:47]
	default:
		return ""
	}
}

// Digits returns s with every character other than 0-9 removed
func Digits(s string) string {
	return onlyDigits(s)
}

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
