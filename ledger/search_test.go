package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesSearch(t *testing.T) {
	txn := Transaction{
		ID:           "20240301_090000_a",
		Date:         NewDate(parseTime(t, "2024-03-01T09:00:00Z")),
		Amount:       -125050,
		VendorName:   "Otis Elevator",
		CategoryName: "Maintenance",
		UnitID:       "1C (Eifler)",
		AccountName:  "Bank Scotiabank",
		Notes:        "quarterly service",
		Description:  "elevator contract",
	}

	for _, tc := range []struct {
		description string
		term        string
		expect      bool
	}{
		{"empty term matches", "", true},
		{"whitespace-only term matches", "   ", true},
		{"vendor name", "otis", true},
		{"category name", "MAINT", true},
		{"unit identifier", "eifler", true},
		{"account name", "scotiabank", true},
		{"notes", "quarterly", true},
		{"transaction description", "contract", true},
		{"normalized date", "2024-03-01", true},
		{"stringified amount", "1250.5", true},
		{"no match", "plumbing", false},
	} {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expect, MatchesSearch(txn, tc.term))
		})
	}
}

func TestSearchOnlyNarrows(t *testing.T) {
	// applying a search term to any base result can only remove entries
	txns := []Transaction{
		{ID: "20240301_090000_a", VendorName: "Otis Elevator"},
		{ID: "20240302_100000_b", VendorName: "Aguakan"},
		{ID: "20240303_110000_c", VendorName: "Otis Elevator", CategoryName: "Maintenance"},
	}
	for _, base := range [][]Transaction{txns, txns[:2], txns[1:]} {
		narrowed := make([]Transaction, 0, len(base))
		for _, txn := range base {
			if MatchesSearch(txn, "otis") {
				narrowed = append(narrowed, txn)
			}
		}
		assert.LessOrEqual(t, len(narrowed), len(base))
		for _, txn := range narrowed {
			assert.Contains(t, txnIDs(base), txn.ID)
		}
	}
}
