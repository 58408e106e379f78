package ledger

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type tags a transaction's accounting direction. The set is open: records
// written by older tooling may carry tags not listed here and must still
// flow through filtering untouched.
type Type string

const (
	TypeExpense    Type = "expense"
	TypeIncome     Type = "income"
	TypeAdjustment Type = "adjustment"
)

// AllocationData holds allocation fields nested under 'data' by upstream writers
type AllocationData struct {
	UnitID string `json:"unitId,omitempty"`
}

// Allocation is a sub-line-item of a split transaction, carrying its own
// category, account, and unit attribution
type Allocation struct {
	CategoryID   string         `json:"categoryId,omitempty"`
	CategoryName string         `json:"categoryName,omitempty"`
	AccountID    string         `json:"accountId,omitempty"`
	AccountName  string         `json:"accountName,omitempty"`
	UnitID       string         `json:"unitId,omitempty"`
	Amount       int64          `json:"amount,omitempty"`
	Data         AllocationData `json:"data,omitempty"`
}

// unit returns the allocation's unit identifier, wherever the writer put it
func (a Allocation) unit() string {
	if a.Data.UnitID != "" {
		return a.Data.UnitID
	}
	return a.UnitID
}

// Transaction is a single ledger entry for an HOA client.
//
// The ID encodes the creation date-time as 'YYYYMMDD_HHMMSS_<suffix>' and is
// load-bearing: chronological ordering is defined by lexicographic comparison
// of the ID prefix, not by the Date field.
// Amount is in signed minor currency units (centavos).
type Transaction struct {
	ID           string       `json:"id"`
	Date         DateValue    `json:"date"`
	Amount       int64        `json:"amount"`
	Type         Type         `json:"type,omitempty"`
	VendorName   string       `json:"vendorName,omitempty"`
	CategoryName string       `json:"categoryName,omitempty"`
	AccountName  string       `json:"accountName,omitempty"`
	UnitID       string       `json:"unitId,omitempty"`
	Unit         string       `json:"unit,omitempty"` // legacy writers used 'unit' instead of 'unitId'
	Notes        string       `json:"notes,omitempty"`
	Description  string       `json:"description,omitempty"`
	Allocations  []Allocation `json:"allocations,omitempty"`
}

// IsSplit reports whether the transaction carries allocations. Split
// transactions may be categorized only at the allocation level.
func (t Transaction) IsSplit() bool {
	return len(t.Allocations) > 0
}

// unit returns the transaction-level unit identifier, preferring the modern field
func (t Transaction) unit() string {
	if t.UnitID != "" {
		return t.UnitID
	}
	return t.Unit
}

// allUnits returns every non-empty unit identifier on the transaction or its allocations
func (t Transaction) allUnits() []string {
	var units []string
	if u := t.unit(); u != "" {
		units = append(units, u)
	}
	for _, a := range t.Allocations {
		if u := a.unit(); u != "" {
			units = append(units, u)
		}
	}
	return units
}

const idTimeFormat = "20060102_150405"

// IDGenerator mints transaction IDs. IDs minted by the same generator are
// strictly monotonically increasing, even for calls within the same second.
type IDGenerator struct {
	mu   sync.Mutex
	last time.Time
}

// Next returns a fresh transaction ID for the given creation time
func (g *IDGenerator) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	now = now.Truncate(time.Second)
	if !now.After(g.last) {
		now = g.last.Add(time.Second)
	}
	g.last = now
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return now.Format(idTimeFormat) + "_" + suffix
}
