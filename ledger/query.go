package ledger

import (
	"github.com/mlandesman/sams/math"
)

// QueryOptions selects and pages transactions for display
type QueryOptions struct {
	Search string
	Filter FilterSpec
	Ref    ReferenceData
}

// QueryResult is one page of filtered, chronologically ordered transactions
type QueryResult struct {
	Count        int
	Page         int
	Results      int
	Transactions []Transaction
}

// Query runs the full filter pipeline: pick the working set, apply the
// compiled filter predicate and the global search predicate, order
// deterministically, then paginate from the end (page 1 holds the most
// recent transactions). Pure computation over its inputs; recomputed from
// scratch on every call.
func Query(all, dateFiltered []Transaction, opts QueryOptions, page, results int) QueryResult {
	if page < 1 || results < 1 {
		panic("Page and results must >= 1")
	}
	working := PickWorkingSet(all, dateFiltered, opts.Filter)
	pred := Compile(opts.Filter, opts.Ref)

	matched := make([]Transaction, 0, len(working))
	for _, txn := range working {
		if pred(txn) && MatchesSearch(txn, opts.Search) {
			matched = append(matched, txn)
		}
	}
	matched = SortTransactions(matched)

	size := len(matched)
	start, end := paginateFromEnd(page, results, size)
	return QueryResult{
		Count:        size,
		Page:         page,
		Results:      results,
		Transactions: matched[start:end],
	}
}

// assumes all parameters are > 0
func paginateFromEnd(page, results, size int) (start, end int) {
	if size == 0 {
		return
	}

	start = math.MaxInt(size-page*results, 0)
	end = math.MinInt(size-(page-1)*results, size)
	end = math.MaxInt(end, 0)
	return
}
