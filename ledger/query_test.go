package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery(t *testing.T) {
	for _, tc := range []struct {
		description   string
		all           []Transaction
		dateFiltered  []Transaction
		opts          QueryOptions
		page, results int
		expectIDs     []string
		expectCount   int
	}{
		{
			description: "no txns",
			page:        1,
			results:     10,
			expectIDs:   []string{},
		},
		{
			description: "category filter is case-insensitive and results are chronological",
			dateFiltered: []Transaction{
				{ID: "20240301_090000_a", CategoryName: "Plumbing"},
				{ID: "20240301_090000_b", CategoryName: "Electrical"},
				{ID: "20240115_100000_c", CategoryName: "Plumbing"},
			},
			opts: QueryOptions{
				Filter: FilterSpec{Categories: []string{"plumbing"}},
			},
			page:        1,
			results:     10,
			expectIDs:   []string{"20240115_100000_c", "20240301_090000_a"},
			expectCount: 2,
		},
		{
			description: "search composes after the compiled filter",
			dateFiltered: []Transaction{
				{ID: "20240301_090000_a", CategoryName: "Plumbing", VendorName: "Roto-Rooter"},
				{ID: "20240302_090000_b", CategoryName: "Plumbing", VendorName: "Aguakan"},
			},
			opts: QueryOptions{
				Filter: FilterSpec{Categories: []string{"plumbing"}},
				Search: "aguakan",
			},
			page:        1,
			results:     10,
			expectIDs:   []string{"20240302_090000_b"},
			expectCount: 1,
		},
		{
			description: "page 1 paginates from the end",
			dateFiltered: []Transaction{
				{ID: "20240101_090000_a"},
				{ID: "20240102_090000_b"},
				{ID: "20240103_090000_c"},
			},
			page:        1,
			results:     2,
			expectIDs:   []string{"20240102_090000_b", "20240103_090000_c"},
			expectCount: 3,
		},
		{
			description: "page 2 holds the oldest remainder",
			dateFiltered: []Transaction{
				{ID: "20240101_090000_a"},
				{ID: "20240102_090000_b"},
				{ID: "20240103_090000_c"},
			},
			page:        2,
			results:     2,
			expectIDs:   []string{"20240101_090000_a"},
			expectCount: 3,
		},
	} {
		t.Run(tc.description, func(t *testing.T) {
			result := Query(tc.all, tc.dateFiltered, tc.opts, tc.page, tc.results)
			assert.Equal(t, tc.expectIDs, txnIDs(result.Transactions))
			assert.Equal(t, tc.expectCount, result.Count)
			assert.Equal(t, tc.page, result.Page)
			assert.Equal(t, tc.results, result.Results)
		})
	}
}

func TestQueryAdvancedFilterSupersedesDateRange(t *testing.T) {
	// a transaction outside the active quick date range but matching the
	// advanced spec must appear in the result
	outside := Transaction{ID: "20220601_090000_old", VendorName: "Otis Elevator"}
	inside := Transaction{ID: "20240301_090000_new", VendorName: "Otis Elevator"}
	all := []Transaction{outside, inside}
	dateFiltered := []Transaction{inside}

	result := Query(all, dateFiltered, QueryOptions{
		Filter: FilterSpec{Vendors: []string{"otis elevator"}},
	}, 1, 10)
	require.Equal(t, 2, result.Count)
	assert.Equal(t, []string{"20220601_090000_old", "20240301_090000_new"}, txnIDs(result.Transactions))
}

func TestQuerySplitTransactionDiscoverableByCategory(t *testing.T) {
	// categorized only at the allocation level, still discoverable
	split := Transaction{
		ID: "20240301_090000_s",
		Allocations: []Allocation{
			{CategoryName: "Plumbing", Data: AllocationData{UnitID: "5B"}},
			{CategoryName: "Electrical"},
		},
	}
	result := Query(nil, []Transaction{split}, QueryOptions{
		Filter: FilterSpec{Categories: []string{"plumbing"}},
	}, 1, 10)
	assert.Equal(t, 1, result.Count)
}

func TestQueryPanicsOnInvalidPaging(t *testing.T) {
	assert.Panics(t, func() {
		Query(nil, nil, QueryOptions{}, 0, 10)
	})
	assert.Panics(t, func() {
		Query(nil, nil, QueryOptions{}, 1, 0)
	})
}

func TestPaginateFromEnd(t *testing.T) {
	for _, tc := range []struct {
		page, results, size    int
		expectStart, expectEnd int
	}{
		{1, 10, 0, 0, 0},
		{1, 2, 3, 1, 3},
		{2, 2, 3, 0, 1},
		{3, 2, 3, 0, 0},
		{1, 10, 3, 0, 3},
	} {
		start, end := paginateFromEnd(tc.page, tc.results, tc.size)
		assert.Equal(t, tc.expectStart, start, "page %d results %d size %d", tc.page, tc.results, tc.size)
		assert.Equal(t, tc.expectEnd, end, "page %d results %d size %d", tc.page, tc.results, tc.size)
	}
}
