package slip

import (
	"time"

	"github.com/zombor/boleto-reader/internal/boleto"
	"github.com/zombor/boleto-reader/internal/scanning"
)

// Slip is an uploaded document together with the outcome of scanning it
type Slip struct {
	ID           string          `json:"id"`
	OriginalName string          `json:"original_name"`
	Filename     string          `json:"filename"`
	ContentType  string          `json:"content_type"`
	Found        bool            `json:"found"`
	PageIndex    int             `json:"page_index,omitempty"`
	Digits       string          `json:"digits,omitempty"`
	Kind         boleto.Kind     `json:"kind,omitempty"`
	Display      string          `json:"display,omitempty"`
	Strategy     boleto.Strategy `json:"strategy,omitempty"`
	Pages        int             `json:"pages"`
	CreatedAt    time.Time       `json:"created_at"`
}

// applyResult copies a scan outcome onto the slip
func (s *Slip) applyResult(r *scanning.Result) {
	s.Found = r.Found
	s.PageIndex = r.PageIndex
	s.Digits = r.Digits
	s.Kind = r.Kind
	s.Display = r.Display
	s.Strategy = r.Strategy
	s.Pages = r.Pages
}

// LineCheck is the answer to a manually pasted digit line
type LineCheck struct {
	Valid   bool        `json:"valid"`
	Digits  string      `json:"digits"`
	Kind    boleto.Kind `json:"kind,omitempty"`
	Display string      `json:"display"`
	Barcode string      `json:"barcode,omitempty"`
	Error   string      `json:"error,omitempty"`
}
