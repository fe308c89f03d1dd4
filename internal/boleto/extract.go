package boleto

import (
	"fmt"
	"iter"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Strategy names the pattern that produced a candidate line
type Strategy int

const (
	// Structured47 matches the printed 5.5 5.6 5.6 1 14 bank slip layout
	Structured47 Strategy = iota + 1
	// Structured48 matches four 11+1 utility bill blocks
	Structured48
	// Contiguous looks for 47 or 48 digits once every non-digit is removed
	Contiguous
	// Grouped joins loosely separated digit groups
	Grouped
)

func (s Strategy) String() string {
	switch s {
	case Structured47:
		return "structured-47"
	case Structured48:
		return "structured-48"
	case Contiguous:
		return "contiguous"
	case Grouped:
		return "grouped"
	default:
		return "none"
	}
}

// MarshalText encodes the strategy by name
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a strategy name produced by MarshalText
func (s *Strategy) UnmarshalText(text []byte) error {
	for _, candidate := range []Strategy{Structured47, Structured48, Contiguous, Grouped} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	if string(text) == "" || string(text) == "none" {
		*s = 0
		return nil
	}
	return fmt.Errorf("unknown strategy: %q", text)
}

// Candidate is a run of 47 or 48 digits that still has to pass validation
type Candidate struct {
	Digits   string
	Strategy Strategy
}

// Match is a validated line along with the strategy that found it
type Match struct {
	Line
	Strategy Strategy `json:"strategy"`
}

var (
	structured47Re = regexp.MustCompile(`(\d{5})[. ]?(\d{5}) ?(\d{5})[. ]?(\d{6}) ?(\d{5})[. ]?(\d{6}) ?(\d) ?(\d{14})`)
	structured48Re = regexp.MustCompile(`(\d{11})[-. ]?(\d) ?(\d{11})[-. ]?(\d) ?(\d{11})[-. ]?(\d) ?(\d{11})[-. ]?(\d)`)
	contiguousRe   = regexp.MustCompile(`\d{47,48}`)
	groupedRe      = regexp.MustCompile(`\d{1,14}(?:[-. ]+\d{1,14})*`)
)

// strategies run in priority order; each returns at most one candidate
var strategies = []struct {
	strategy Strategy
	find     func(text string) (string, bool)
}{
	{Structured47, findStructured(structured47Re)},
	{Structured48, findStructured(structured48Re)},
	{Contiguous, findContiguous},
	{Grouped, findGrouped},
}

// Candidates yields at most one candidate per strategy, in priority order.
// Nothing is computed for a strategy until the previous candidate has been
// consumed, so callers can stop as soon as one validates.
func Candidates(text string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		normalized := normalize(text)
		for _, s := range strategies {
			digits, ok := s.find(normalized)
			if !ok {
				continue
			}
			if !yield(Candidate{Digits: digits, Strategy: s.strategy}) {
				return
			}
		}
	}
}

// Find returns the first candidate in text that passes validation
func Find(text string) (Match, bool) {
	for c := range Candidates(text) {
		line, err := Parse(c.Digits)
		if err != nil {
			continue
		}
		return Match{Line: line, Strategy: c.Strategy}, true
	}
	return Match{}, false
}

// normalize folds compatibility characters (full-width digits from OCR, for
// instance) and collapses whitespace runs into single spaces
func normalize(text string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(text)), " ")
}

func findStructured(re *regexp.Regexp) func(string) (string, bool) {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return strings.Join(m[1:], ""), true
	}
}

func findContiguous(text string) (string, bool) {
	m := contiguousRe.FindString(onlyDigits(text))
	return m, m != ""
}

func findGrouped(text string) (string, bool) {
	for _, g := range groupedRe.FindAllString(text, -1) {
		digits := onlyDigits(g)
		if len(digits) == 47 || len(digits) == 48 {
			return digits, true
		}
	}
	return "", false
}
