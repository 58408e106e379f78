package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MatchesSearch reports whether the transaction matches the global search
// term: a case-insensitive substring check over a fixed set of display
// fields. This stage composes after any compiled filter and is never
// superseded by filter mode. An empty or whitespace-only term matches
// everything.
func MatchesSearch(t Transaction, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	term = strings.ToLower(term)

	fields := []string{
		t.VendorName,
		t.CategoryName,
		t.unit(),
		t.AccountName,
		t.Notes,
		t.Description,
		t.Date.Raw(),
		decimal.New(t.Amount, -2).String(),
	}
	// operators paste dates in either the stored shape or plain YYYY-MM-DD
	if instant, ok := t.Date.Instant(); ok {
		fields = append(fields, instant.Format("2006-01-02"))
	}
	for _, field := range fields {
		if field != "" && strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
