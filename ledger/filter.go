package ledger

import (
	"strings"
	"time"

	"github.com/johnstarich/go/regext"
	"github.com/shopspring/decimal"
)

// FilterSpec is a structured, multi-field transaction filter. A zero value
// means no constraint. Present fields are AND-combined; values within one
// categorical field are OR-combined.
//
// When any field is populated, the spec is considered "advanced" and
// supersedes quick/date-range filtering entirely (see PickWorkingSet).
type FilterSpec struct {
	Vendors    []string `json:"vendor,omitempty"`
	Categories []string `json:"category,omitempty"`
	Units      []string `json:"unit,omitempty"`
	Accounts   []string `json:"account,omitempty"`

	// MinAmount and MaxAmount are inclusive bounds in major currency units,
	// compared against the absolute transaction amount. Absolute, because a
	// manager filtering "100 to 500" expects to find a 250.00 expense no
	// matter which sign convention the writer used. Malformed values
	// safe-parse to 0.
	MinAmount string `json:"minAmount,omitempty"`
	MaxAmount string `json:"maxAmount,omitempty"`

	// StartDate and EndDate are inclusive 'YYYY-MM-DD' day bounds
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`

	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Empty reports whether no filter field is populated
func (s FilterSpec) Empty() bool {
	return len(s.Vendors) == 0 &&
		len(s.Categories) == 0 &&
		len(s.Units) == 0 &&
		len(s.Accounts) == 0 &&
		s.MinAmount == "" &&
		s.MaxAmount == "" &&
		s.StartDate == "" &&
		s.EndDate == "" &&
		s.Description == "" &&
		s.Notes == ""
}

// ReferenceData carries lookups used to interpret a FilterSpec. Matching is
// by name equality, so an empty ReferenceData still compiles a correct
// predicate; the pick lists only feed selection UIs.
type ReferenceData struct {
	// Location anchors StartDate/EndDate day bounds. Nil defaults to UTC.
	Location *time.Location

	Vendors    []string
	Categories []string
	Units      []string
	Accounts   []string
}

// Compile builds a single predicate from the filter spec. The returned
// function is pure and performs no I/O; it is safe to call once per
// transaction on a query hot path.
func Compile(spec FilterSpec, ref ReferenceData) func(Transaction) bool {
	loc := ref.Location
	if loc == nil {
		loc = time.UTC
	}

	var preds []func(Transaction) bool

	if len(spec.Vendors) > 0 {
		vendors := spec.Vendors
		preds = append(preds, func(t Transaction) bool {
			return anyEqualFold(vendors, t.VendorName)
		})
	}
	if len(spec.Categories) > 0 {
		categories := spec.Categories
		preds = append(preds, func(t Transaction) bool {
			if anyEqualFold(categories, t.CategoryName) {
				return true
			}
			for _, a := range t.Allocations {
				if anyEqualFold(categories, a.CategoryName) {
					return true
				}
			}
			return false
		})
	}
	if len(spec.Accounts) > 0 {
		accounts := spec.Accounts
		preds = append(preds, func(t Transaction) bool {
			if anyEqualFold(accounts, t.AccountName) {
				return true
			}
			for _, a := range t.Allocations {
				if anyEqualFold(accounts, a.AccountName) {
					return true
				}
			}
			return false
		})
	}
	if len(spec.Units) > 0 {
		accepted := make([]string, 0, len(spec.Units))
		for _, u := range spec.Units {
			accepted = append(accepted, BaseUnitID(u))
		}
		preds = append(preds, func(t Transaction) bool {
			units := t.allUnits()
			// A transaction with no unit anywhere is excluded while a unit
			// filter is active. Units are the primary attribution dimension
			// for HOA dues, so "which unit?" must never return unattributed
			// records.
			if len(units) == 0 {
				return false
			}
			for _, u := range units {
				if anyEqualFold(accepted, BaseUnitID(u)) {
					return true
				}
			}
			return false
		})
	}
	if spec.MinAmount != "" || spec.MaxAmount != "" {
		var min, max decimal.Decimal
		hasMin, hasMax := spec.MinAmount != "", spec.MaxAmount != ""
		if hasMin {
			min = safeParseAmount(spec.MinAmount)
		}
		if hasMax {
			max = safeParseAmount(spec.MaxAmount)
		}
		preds = append(preds, func(t Transaction) bool {
			amount := decimal.New(t.Amount, -2).Abs()
			if hasMin && amount.LessThan(min) {
				return false
			}
			if hasMax && amount.GreaterThan(max) {
				return false
			}
			return true
		})
	}
	if spec.StartDate != "" || spec.EndDate != "" {
		start, hasStart := parseDayBound(spec.StartDate, loc, false)
		end, hasEnd := parseDayBound(spec.EndDate, loc, true)
		if hasStart || hasEnd {
			preds = append(preds, func(t Transaction) bool {
				instant, ok := t.Date.Instant()
				if !ok {
					// unparseable dates are excluded from date-bounded comparisons
					return false
				}
				if hasStart && instant.Before(start) {
					return false
				}
				if hasEnd && instant.After(end) {
					return false
				}
				return true
			})
		}
	}
	if spec.Description != "" {
		needle := strings.ToLower(spec.Description)
		preds = append(preds, func(t Transaction) bool {
			return t.Description != "" && strings.Contains(strings.ToLower(t.Description), needle)
		})
	}
	if spec.Notes != "" {
		needle := strings.ToLower(spec.Notes)
		preds = append(preds, func(t Transaction) bool {
			return t.Notes != "" && strings.Contains(strings.ToLower(t.Notes), needle)
		})
	}

	return func(t Transaction) bool {
		for _, pred := range preds {
			if !pred(t) {
				return false
			}
		}
		return true
	}
}

func anyEqualFold(accepted []string, value string) bool {
	for _, a := range accepted {
		if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(value)) {
			return true
		}
	}
	return false
}

// safeParseAmount coerces malformed numeric filter values to 0 instead of failing
func safeParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseDayBound parses a 'YYYY-MM-DD' bound at the start or end of that day.
// A malformed bound degrades to "unbounded on that side".
func parseDayBound(s string, loc *time.Location, endOfDay bool) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, loc), true
	}
	return day, true
}

var unitIDPattern = regext.MustCompile(`
	^ ( [^\s(]+ )  # leading token, before any whitespace or parenthesized owner suffix
`)

// BaseUnitID strips the display suffix from a unit identifier:
// "1C (Eifler)" compares as "1C". Returns "" for an empty identifier.
func BaseUnitID(id string) string {
	match := unitIDPattern.FindStringSubmatch(strings.TrimSpace(id))
	if match == nil {
		return ""
	}
	return match[1]
}
