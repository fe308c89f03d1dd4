package boleto

import (
	"fmt"
	"strings"
)

// Kind identifies the type of digit line printed on a payment slip
type Kind int

const (
	// Unknown is any digit string whose length matches no known layout
	Unknown Kind = iota
	// BankSlip is the 47-digit "linha digitável" of a bank-issued boleto
	BankSlip
	// UtilityBill is the 48-digit line of a utility/tax ("arrecadação") slip
	UtilityBill
)

// layout describes how a kind of line is sized, validated and displayed
type layout struct {
	length   int
	validate func(digits string) error
	format   func(digits string) string
}

var layouts = map[Kind]layout{
	BankSlip:    {length: 47, validate: validateBankSlip, format: formatBankSlip},
	UtilityBill: {length: 48, validate: validateUtilityBill, format: formatUtilityBill},
}

// KindOf classifies a digit string by its length
func KindOf(digits string) Kind {
	for kind, l := range layouts {
		if len(digits) == l.length {
			return kind
		}
	}
	return Unknown
}

// Length returns the number of digits a line of this kind carries, or 0 for Unknown
func (k Kind) Length() int {
	return layouts[k].length
}

func (k Kind) String() string {
	switch k {
	case BankSlip:
		return "BankSlip"
	case UtilityBill:
		return "UtilityBill"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the kind by name so it reads well in JSON
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name produced by MarshalText
func (k *Kind) UnmarshalText(text []byte) error {
	switch strings.TrimSpace(string(text)) {
	case "BankSlip":
		*k = BankSlip
	case "UtilityBill":
		*k = UtilityBill
	case "", "Unknown":
		*k = Unknown
	default:
		return fmt.Errorf("unknown line kind: %q", text)
	}
	return nil
}
