package fiscal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestResolveAt(t *testing.T) {
	cancun := mustLocation(t, "America/Cancun")
	// Wednesday, March 13 2024, mid-afternoon in Cancun
	now := time.Date(2024, 3, 13, 15, 30, 0, 0, cancun)

	for _, tc := range []struct {
		description string
		token       string
		config      Config
		expectStart string
		expectEnd   string
	}{
		{
			description: "today",
			token:       TokenToday,
			expectStart: "2024-03-13T00:00:00",
			expectEnd:   "2024-03-13T23:59:59",
		},
		{
			description: "yesterday",
			token:       TokenYesterday,
			expectStart: "2024-03-12T00:00:00",
			expectEnd:   "2024-03-12T23:59:59",
		},
		{
			description: "this week starts Sunday",
			token:       TokenThisWeek,
			expectStart: "2024-03-10T00:00:00",
			expectEnd:   "2024-03-16T23:59:59",
		},
		{
			description: "this month",
			token:       TokenThisMonth,
			expectStart: "2024-03-01T00:00:00",
			expectEnd:   "2024-03-31T23:59:59",
		},
		{
			description: "last month",
			token:       TokenLastMonth,
			expectStart: "2024-02-01T00:00:00",
			expectEnd:   "2024-02-29T23:59:59",
		},
		{
			description: "calendar fiscal year by default",
			token:       TokenThisFiscalYear,
			expectStart: "2024-01-01T00:00:00",
			expectEnd:   "2024-12-31T23:59:59",
		},
		{
			description: "july fiscal year, before the start month",
			token:       TokenThisFiscalYear,
			config:      Config{FiscalYearStartMonth: 7},
			expectStart: "2023-07-01T00:00:00",
			expectEnd:   "2024-06-30T23:59:59",
		},
		{
			description: "last fiscal year with july start",
			token:       TokenLastFiscalYear,
			config:      Config{FiscalYearStartMonth: 7},
			expectStart: "2022-07-01T00:00:00",
			expectEnd:   "2023-06-30T23:59:59",
		},
	} {
		t.Run(tc.description, func(t *testing.T) {
			r := ResolveAt(tc.token, tc.config, now, zaptest.NewLogger(t))
			assert.Equal(t, tc.expectStart, r.Start.Format("2006-01-02T15:04:05"))
			assert.Equal(t, tc.expectEnd, r.End.Format("2006-01-02T15:04:05"))
			assert.Equal(t, "America/Cancun", r.Start.Location().String())
		})
	}
}

func TestResolveIgnoresHostTimezone(t *testing.T) {
	tokyo := mustLocation(t, "Asia/Tokyo")
	honolulu := mustLocation(t, "Pacific/Honolulu")
	// the same instant, expressed in two different operator-local zones
	instant := time.Date(2024, 3, 13, 20, 0, 0, 0, time.UTC)

	fromTokyo := ResolveAt(TokenToday, Config{}, instant.In(tokyo), nil)
	fromHonolulu := ResolveAt(TokenToday, Config{}, instant.In(honolulu), nil)
	assert.True(t, fromTokyo.Start.Equal(fromHonolulu.Start))
	assert.True(t, fromTokyo.End.Equal(fromHonolulu.End))
}

func TestResolveUnknownTokenFallsBackToAll(t *testing.T) {
	r := ResolveAt("nextQuarter", Config{}, time.Now(), zaptest.NewLogger(t))
	assert.Equal(t, allRange, r)
}

func TestAllIsSupersetOfEveryToken(t *testing.T) {
	now := time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC)
	all := ResolveAt(TokenAll, Config{}, now, nil)
	for _, token := range []string{
		TokenToday, TokenYesterday, TokenThisWeek, TokenThisMonth,
		TokenLastMonth, TokenThisFiscalYear, TokenLastFiscalYear,
	} {
		r := ResolveAt(token, Config{}, now, nil)
		assert.True(t, all.Contains(r.Start), "all must contain %s start", token)
		assert.True(t, all.Contains(r.End), "all must contain %s end", token)
	}
}

func TestConfigLocationFallback(t *testing.T) {
	assert.Equal(t, "America/Cancun", Config{}.Location().String())
	assert.Equal(t, "America/New_York", Config{Timezone: "America/New_York"}.Location().String())
	assert.Equal(t, "America/Cancun", Config{Timezone: "Not/AZone"}.Location().String())
}
