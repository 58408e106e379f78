package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortTransactions(t *testing.T) {
	for _, tc := range []struct {
		description string
		ids         []string
		expectIDs   []string
	}{
		{
			description: "empty",
			ids:         []string{},
			expectIDs:   []string{},
		},
		{
			description: "chronological by ID prefix",
			ids: []string{
				"20240301_090000_a",
				"20240115_100000_c",
				"20231231_235959_z",
			},
			expectIDs: []string{
				"20231231_235959_z",
				"20240115_100000_c",
				"20240301_090000_a",
			},
		},
		{
			description: "non-conforming ID sorts first",
			ids: []string{
				"20240301_090000_a",
				"bogus",
				"20240115_100000_c",
			},
			expectIDs: []string{
				"bogus",
				"20240115_100000_c",
				"20240301_090000_a",
			},
		},
	} {
		t.Run(tc.description, func(t *testing.T) {
			txns := makeTxns(tc.ids...)
			sorted := SortTransactions(txns)
			assert.Equal(t, tc.expectIDs, txnIDs(sorted))
		})
	}
}

func TestSortIsIdempotent(t *testing.T) {
	txns := makeTxns(
		"20240301_090000_a",
		"20231111_080000_d",
		"20240115_100000_c",
		"20240301_090000_b",
	)
	once := SortTransactions(txns)
	twice := SortTransactions(once)
	assert.Equal(t, once, twice)
}

func TestSortIsStableForEqualKeys(t *testing.T) {
	// same day and second, different suffixes: input order must survive
	txns := []Transaction{
		{ID: "20240301_090000_zed", VendorName: "first in"},
		{ID: "20240301_090000_abc", VendorName: "second in"},
		{ID: "20240301_090000_mno", VendorName: "third in"},
	}
	sorted := SortTransactions(txns)
	assert.Equal(t, "first in", sorted[0].VendorName)
	assert.Equal(t, "second in", sorted[1].VendorName)
	assert.Equal(t, "third in", sorted[2].VendorName)
}

func TestSortDoesNotMutateInput(t *testing.T) {
	txns := makeTxns("20240301_090000_a", "20240115_100000_c")
	SortTransactions(txns)
	assert.Equal(t, []string{"20240301_090000_a", "20240115_100000_c"}, txnIDs(txns))
}

func makeTxns(ids ...string) []Transaction {
	txns := make([]Transaction, 0, len(ids))
	for _, id := range ids {
		txns = append(txns, Transaction{ID: id})
	}
	return txns
}

func txnIDs(txns []Transaction) []string {
	ids := make([]string, 0, len(txns))
	for _, txn := range txns {
		ids = append(ids, txn.ID)
	}
	return ids
}
