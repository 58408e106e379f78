// Package fiscal resolves symbolic date-range tokens into concrete instants,
// aware of each client's fiscal year configuration and the organization's
// operating timezone.
package fiscal

import (
	"time"

	"go.uber.org/zap"
)

// DefaultTimezone is the organization's operating timezone. Ranges are always
// resolved here, never in the host's local zone: two operators in different
// timezones must see identical results for the same token.
const DefaultTimezone = "America/Cancun"

// Range is a closed interval of instants
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the instant falls inside the range, inclusive
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Config is a client's fiscal configuration
type Config struct {
	// FiscalYearStartMonth is 1-12. Zero or out of range defaults to January
	// (calendar year).
	FiscalYearStartMonth int
	// Timezone is an IANA zone name. Empty or unknown defaults to the
	// organization timezone.
	Timezone string
}

// Location returns the timezone ranges resolve in
func (c Config) Location() *time.Location {
	name := c.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc, err = time.LoadLocation(DefaultTimezone)
		if err != nil {
			return time.UTC
		}
	}
	return loc
}

func (c Config) startMonth() time.Month {
	if c.FiscalYearStartMonth < 1 || c.FiscalYearStartMonth > 12 {
		return time.January
	}
	return time.Month(c.FiscalYearStartMonth)
}

// Range tokens. The set is open: clients' saved views may carry tokens from
// newer UI builds, which resolve as 'all'.
const (
	TokenToday          = "today"
	TokenYesterday      = "yesterday"
	TokenThisWeek       = "thisWeek"
	TokenThisMonth      = "thisMonth"
	TokenLastMonth      = "lastMonth"
	TokenThisFiscalYear = "thisFiscalYear"
	TokenLastFiscalYear = "lastFiscalYear"
	TokenAll            = "all"
)

// All resolves wide enough to include every plausible transaction, as fixed
// bounds rather than an open interval, so downstream comparisons never
// special-case a missing bound.
var allRange = Range{
	Start: time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2099, time.December, 31, 23, 59, 59, 0, time.UTC),
}

// Resolve maps a range token to concrete bounds using the current time.
// Unknown tokens fall back to 'all' with a diagnostic; this sits on a query
// hot path and must never fail.
func Resolve(token string, config Config, logger *zap.Logger) Range {
	return ResolveAt(token, config, time.Now(), logger)
}

// ResolveAt is Resolve with an explicit reference time
func ResolveAt(token string, config Config, now time.Time, logger *zap.Logger) Range {
	loc := config.Location()
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch token {
	case TokenToday:
		return dayRange(today)
	case TokenYesterday:
		return dayRange(today.AddDate(0, 0, -1))
	case TokenThisWeek:
		weekStart := today.AddDate(0, 0, -int(today.Weekday()))
		return Range{Start: weekStart, End: endOfDay(weekStart.AddDate(0, 0, 6))}
	case TokenThisMonth:
		monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		return Range{Start: monthStart, End: endOfDay(monthStart.AddDate(0, 1, -1))}
	case TokenLastMonth:
		monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0)
		return Range{Start: monthStart, End: endOfDay(monthStart.AddDate(0, 1, -1))}
	case TokenThisFiscalYear:
		start := fiscalYearStart(today, config.startMonth(), loc)
		return Range{Start: start, End: endOfDay(start.AddDate(1, 0, -1))}
	case TokenLastFiscalYear:
		start := fiscalYearStart(today, config.startMonth(), loc).AddDate(-1, 0, 0)
		return Range{Start: start, End: endOfDay(start.AddDate(1, 0, -1))}
	case TokenAll, "":
		return allRange
	default:
		if logger != nil {
			logger.Warn("Unknown date range token, falling back to all time", zap.String("token", token))
		}
		return allRange
	}
}

// YearStart returns the first instant of the fiscal year that begins in the
// given calendar year. With a July start, YearStart(2024) is 2024-07-01.
func YearStart(year int, config Config) time.Time {
	return time.Date(year, config.startMonth(), 1, 0, 0, 0, 0, config.Location())
}

// fiscalYearStart returns the start of the fiscal year containing 'today'
func fiscalYearStart(today time.Time, startMonth time.Month, loc *time.Location) time.Time {
	year := today.Year()
	if today.Month() < startMonth {
		year--
	}
	return time.Date(year, startMonth, 1, 0, 0, 0, 0, loc)
}

func dayRange(dayStart time.Time) Range {
	return Range{Start: dayStart, End: endOfDay(dayStart)}
}

func endOfDay(dayStart time.Time) time.Time {
	return time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), 23, 59, 59, 0, dayStart.Location())
}
