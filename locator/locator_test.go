package locator

import (
	"testing"
	"time"

	"github.com/mlandesman/sams/ledger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testTxns(ids ...string) []ledger.Transaction {
	txns := make([]ledger.Transaction, 0, len(ids))
	for _, id := range ids {
		txns = append(txns, ledger.Transaction{ID: id})
	}
	return txns
}

func newTestLocator(t *testing.T, config Config) *Locator {
	if config.Sleep == nil {
		config.Sleep = func(time.Duration) {}
	}
	if config.Logger == nil {
		config.Logger = zaptest.NewLogger(t)
	}
	if config.Lookup == nil {
		config.Lookup = func(clientID, id string) (*ledger.Transaction, error) {
			return nil, nil
		}
	}
	if config.WidenedView == nil {
		config.WidenedView = func(clientID string) ([]ledger.Transaction, error) {
			return nil, nil
		}
	}
	return New(config)
}

func TestLocateFoundInView(t *testing.T) {
	l := newTestLocator(t, Config{})
	view := testTxns("20240101_120000_aaaa", "20240102_120000_bbbb")

	result := l.Locate("MTC", "20240102_120000_bbbb", view)
	assert.Equal(t, StateFoundInView, result.State)
	assert.Equal(t, 1, result.Index)
	assert.False(t, result.Widened)
	assert.Equal(t, StateIdle, l.State(), "coordinator idles after the highlight")
}

func TestLocateNotFoundAnywhere(t *testing.T) {
	lookups := 0
	l := newTestLocator(t, Config{
		Lookup: func(clientID, id string) (*ledger.Transaction, error) {
			lookups++
			return nil, nil
		},
	})

	result := l.Locate("MTC", "20240103_120000_cccc", testTxns("20240101_120000_aaaa"))
	assert.Equal(t, StateNotFound, result.State)
	assert.Equal(t, -1, result.Index)
	assert.Equal(t, NotFoundMessage, result.Message)
	assert.Equal(t, 1, lookups)
	assert.Equal(t, StateIdle, l.State())
}

func TestLocateFoundButFilteredWidens(t *testing.T) {
	target := "20230601_120000_dddd"
	l := newTestLocator(t, Config{
		Lookup: func(clientID, id string) (*ledger.Transaction, error) {
			require.Equal(t, target, id)
			return &ledger.Transaction{ID: id}, nil
		},
		WidenedView: func(clientID string) ([]ledger.Transaction, error) {
			return testTxns("20230101_120000_xxxx", target, "20240101_120000_aaaa"), nil
		},
	})

	result := l.Locate("MTC", target, testTxns("20240101_120000_aaaa"))
	assert.Equal(t, StateFoundInView, result.State)
	assert.Equal(t, 1, result.Index)
	assert.True(t, result.Widened)
}

func TestLocateHiddenByOtherFilters(t *testing.T) {
	// present in the ledger, but the widened view still excludes it
	target := "20230601_120000_dddd"
	l := newTestLocator(t, Config{
		Lookup: func(clientID, id string) (*ledger.Transaction, error) {
			return &ledger.Transaction{ID: id}, nil
		},
		WidenedView: func(clientID string) ([]ledger.Transaction, error) {
			return testTxns("20240101_120000_aaaa"), nil
		},
	})

	result := l.Locate("MTC", target, nil)
	assert.Equal(t, StateNotFound, result.State)
	assert.Equal(t, NotFoundMessage, result.Message)
}

func TestLocateLookupErrorIsNotFound(t *testing.T) {
	l := newTestLocator(t, Config{
		Lookup: func(clientID, id string) (*ledger.Transaction, error) {
			return nil, errors.New("datastore offline")
		},
	})

	result := l.Locate("MTC", "20240101_120000_aaaa", nil)
	assert.Equal(t, StateNotFound, result.State)
}

func TestLocateAttachRetriesWithBackoff(t *testing.T) {
	var sleeps []time.Duration
	attempts := 0
	l := newTestLocator(t, Config{
		Attached: func(id string) bool {
			attempts++
			return attempts >= 3
		},
		Sleep: func(d time.Duration) { sleeps = append(sleeps, d) },
	})

	result := l.Locate("MTC", "20240101_120000_aaaa", testTxns("20240101_120000_aaaa"))
	assert.Equal(t, StateFoundInView, result.State)
	// two misses back off with increasing waits, then the highlight hold
	require.Len(t, sleeps, 3)
	assert.Equal(t, attachBackoff, sleeps[0])
	assert.Equal(t, 2*attachBackoff, sleeps[1])
	assert.Equal(t, highlightDuration, sleeps[2])
}

func TestLocateAttachGivesUpSilently(t *testing.T) {
	l := newTestLocator(t, Config{
		Attached: func(id string) bool { return false },
	})

	result := l.Locate("MTC", "20240101_120000_aaaa", testTxns("20240101_120000_aaaa"))
	assert.Equal(t, StateNotFound, result.State)
	assert.Empty(t, result.Message, "attach give-up logs only, no user message")
	assert.Equal(t, StateIdle, l.State())
}

func TestLocateSupersededRequestDiscarded(t *testing.T) {
	var l *Locator
	l = newTestLocator(t, Config{
		Lookup: func(clientID, id string) (*ledger.Transaction, error) {
			if id == "slow" {
				// a newer request lands while this one is in flight
				l.generation.Inc()
			}
			return nil, nil
		},
	})

	result := l.Locate("MTC", "slow", nil)
	assert.Equal(t, StateIdle, result.State, "stale request must not emit an outcome")
}
