package scanning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zombor/boleto-reader/internal/boleto"
)

// Scan walks the pages of doc in order and stops at the first page holding a
// valid digit line. Unreadable pages are logged and skipped; a document with
// no valid line yields a Result with Found set to false.
func Scan(ctx context.Context, doc Document) Result {
	pages := doc.PageCount()
	for page := 1; page <= pages; page++ {
		text, err := pageText(ctx, doc, page)
		if err != nil {
			slog.Warn("Skipping page", "page", page, "error", err)
			continue
		}

		match, ok := boleto.Find(text)
		if !ok {
			slog.Debug("No digit line on page", "page", page)
			continue
		}

		slog.Info("Digit line found",
			"page", page,
			"kind", match.Kind,
			"strategy", match.Strategy,
		)
		return Result{
			Found:     true,
			PageIndex: page,
			Digits:    match.Digits,
			Kind:      match.Kind,
			Display:   match.String(),
			Strategy:  match.Strategy,
			Pages:     pages,
		}
	}

	return Result{Found: false, Pages: pages}
}

// pageText fetches one page, turning a panic in the decoding backend into
// ErrPageUnavailable so a single bad page cannot abort the scan
func pageText(ctx context.Context, doc Document, page int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: page %d: %v", ErrPageUnavailable, page, r)
		}
	}()
	return doc.PageText(ctx, page)
}
