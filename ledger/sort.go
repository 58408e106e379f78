package ledger

import (
	"sort"
)

// sortKeyLen covers the YYYYMMDD_HHMMSS prefix of a transaction ID
const sortKeyLen = 15

// sortKey returns the chronological comparison key for a transaction.
// Fixed-width zero-padded fields make lexicographic order chronological.
// A record without a conforming ID keys as the empty string and sorts first.
func (t Transaction) sortKey() string {
	if len(t.ID) < sortKeyLen || t.ID[8] != '_' {
		return ""
	}
	return t.ID[:sortKeyLen]
}

// SortTransactions returns the transactions in ascending chronological order
// by ID prefix. The sort is stable: same-second transactions keep their
// relative input order, which table cursor positioning depends on. The input
// slice is not modified.
func SortTransactions(txns []Transaction) []Transaction {
	sorted := make([]Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].sortKey() < sorted[b].sortKey()
	})
	return sorted
}
