package ledger

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// PickWorkingSet decides which dataset a query filters over. An active
// advanced filter always sees the complete dataset, never a date-narrowed
// subset: someone filtering "all vendor X" expects results across all time
// even if a quick date filter narrowed the view first. This is a correctness
// guarantee, not an optimization.
//
// The full set is loaded lazily, so it may not be available yet; until it is,
// the date-bounded set is the only working set there is.
func PickWorkingSet(all, dateFiltered []Transaction, spec FilterSpec) []Transaction {
	if !spec.Empty() && len(all) > 0 {
		return all
	}
	return dateFiltered
}

const workingSetExpiration = 30 * time.Minute

// WorkingSetCache holds the full unfiltered transaction set per client.
// Each completed load replaces a client's entry wholesale; switching or
// reloading a client invalidates its entry. Single writer per client: only
// the fetch path writes.
type WorkingSetCache struct {
	cache *cache.Cache
}

// NewWorkingSetCache creates an empty per-client working set cache
func NewWorkingSetCache() *WorkingSetCache {
	return &WorkingSetCache{
		cache: cache.New(workingSetExpiration, 2*workingSetExpiration),
	}
}

// Get returns the cached full dataset for the client, if loaded
func (c *WorkingSetCache) Get(clientID string) ([]Transaction, bool) {
	value, found := c.cache.Get(clientID)
	if !found {
		return nil, false
	}
	return value.([]Transaction), true
}

// Put replaces the client's cached full dataset
func (c *WorkingSetCache) Put(clientID string, txns []Transaction) {
	c.cache.SetDefault(clientID, txns)
}

// Invalidate drops the client's cached dataset, forcing the next advanced
// filter to reload it
func (c *WorkingSetCache) Invalidate(clientID string) {
	c.cache.Delete(clientID)
}
