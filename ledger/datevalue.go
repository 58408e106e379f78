package ledger

import (
	"encoding/json"
	"time"
)

// DateValue is a transaction date exactly as an upstream writer recorded it.
// Several generations of tooling wrote dates in different shapes: a Firestore
// seconds pair, an epoch-milliseconds number, a wrapper object with 'iso' and
// 'display' fields, or a bare ISO-8601 string. The shape is resolved once at
// ingestion; filtering code only ever sees the normalized instant.
type DateValue struct {
	instant time.Time
	valid   bool
	raw     string
}

// NewDate returns a DateValue for a known instant
func NewDate(t time.Time) DateValue {
	t = t.UTC()
	return DateValue{
		instant: t,
		valid:   true,
		raw:     t.Format(time.RFC3339),
	}
}

// Instant returns the normalized instant. ok is false when the original value
// was absent or unparseable; callers must exclude such records from
// date-bounded comparisons rather than fail.
func (d DateValue) Instant() (instant time.Time, ok bool) {
	return d.instant, d.valid
}

// Raw returns the original textual representation, for display and search
func (d DateValue) Raw() string {
	return d.raw
}

func (d DateValue) MarshalJSON() ([]byte, error) {
	if d.valid {
		return json.Marshal(d.instant.Format(time.RFC3339))
	}
	if d.raw != "" {
		return json.Marshal(d.raw)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts any of the documented date shapes. It never fails on
// an unrecognized shape: the value parses as invalid instead, since a single
// bad date must not take down a whole bucket load.
func (d *DateValue) UnmarshalJSON(b []byte) error {
	var value interface{}
	if err := json.Unmarshal(b, &value); err != nil {
		d.raw = string(b)
		d.valid = false
		return nil
	}
	d.raw = rawDateString(value, b)
	d.instant, d.valid = ToInstant(value)
	return nil
}

// rawDateString picks the best human-readable representation of the original value
func rawDateString(value interface{}, b []byte) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]interface{}:
		if display, ok := v["display"].(string); ok && display != "" {
			return display
		}
		if iso, ok := v["iso"].(string); ok && iso != "" {
			return iso
		}
	}
	return string(b)
}

// ToInstant normalizes a decoded date value to a single comparable instant.
// Accepted shapes, in priority order:
//  1. object with numeric timestamp._seconds (seconds since epoch)
//  2. object with timestamp as epoch milliseconds or an ISO string
//  3. object with an 'iso' string
//  4. bare ISO-8601 string
//  5. bare epoch milliseconds number
//
// ok is false for anything else. Pure: same input always yields the same output.
func ToInstant(value interface{}) (instant time.Time, ok bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		if timestamp, exists := v["timestamp"]; exists {
			switch ts := timestamp.(type) {
			case map[string]interface{}:
				if seconds, isNum := ts["_seconds"].(float64); isNum {
					return time.Unix(int64(seconds), 0).UTC(), true
				}
			case float64:
				return time.Unix(0, int64(ts)*int64(time.Millisecond)).UTC(), true
			case string:
				return parseISO(ts)
			}
		}
		if iso, isStr := v["iso"].(string); isStr {
			return parseISO(iso)
		}
		return time.Time{}, false
	case string:
		return parseISO(v)
	case float64:
		return time.Unix(0, int64(v)*int64(time.Millisecond)).UTC(), true
	default:
		return time.Time{}, false
	}
}

var isoFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseISO(s string) (time.Time, bool) {
	for _, format := range isoFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
