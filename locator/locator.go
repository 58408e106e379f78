// Package locator finds a requested transaction relative to the active
// filtered view: in the view, outside it but in the full ledger, or missing
// entirely. Callers use the outcome to scroll, widen the date range, or show
// a not-found message.
package locator

import (
	"time"

	"github.com/mlandesman/sams/ledger"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// State is the coordinator's position in its search lifecycle
type State string

const (
	StateIdle             State = "idle"
	StateSearching        State = "searching"
	StateFoundInView      State = "foundInView"
	StateFoundButFiltered State = "foundButFiltered"
	StateNotFound         State = "notFound"
)

const (
	// target rows can lag the view data, so presence checks retry briefly
	maxAttachAttempts = 5
	attachBackoff     = 50 * time.Millisecond
	// how long a located row stays highlighted before the coordinator idles
	highlightDuration = 1500 * time.Millisecond
)

// NotFoundMessage is shown when the target is missing from the full ledger
const NotFoundMessage = "Transaction not found. It may have been deleted."

// Result is the terminal outcome of one locate request
type Result struct {
	State State `json:"state"`
	// Index is the target's position in the (possibly widened) view, -1 otherwise
	Index int `json:"index"`
	// Widened reports that the date range was expanded to all time to reveal the target
	Widened bool   `json:"widened"`
	Message string `json:"message,omitempty"`
}

// Config wires a Locator to its collaborators
type Config struct {
	// Lookup is the point lookup against the full ledger
	Lookup func(clientID, id string) (*ledger.Transaction, error)
	// WidenedView fetches the view re-run over all time
	WidenedView func(clientID string) ([]ledger.Transaction, error)
	// Attached reports whether the target row is ready to scroll to.
	// Defaults to always ready.
	Attached func(id string) bool
	// Sleep is swapped out in tests
	Sleep func(time.Duration)

	Logger *zap.Logger
}

// Locator coordinates locate requests. A new request supersedes any in-flight
// one: each request takes a generation number, and a request that finds itself
// stale after a fetch discards its result.
type Locator struct {
	config     Config
	generation atomic.Uint64
	state      atomic.String
}

// New returns a Locator with Config defaults applied
func New(config Config) *Locator {
	if config.Attached == nil {
		config.Attached = func(string) bool { return true }
	}
	if config.Sleep == nil {
		config.Sleep = time.Sleep
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	l := &Locator{config: config}
	l.state.Store(string(StateIdle))
	return l
}

// State returns the coordinator's current state
func (l *Locator) State() State {
	return State(l.state.Load())
}

// Locate searches for targetID, first in the given view, then in the full
// ledger, widening to all time when the target exists but the view hides it.
func (l *Locator) Locate(clientID, targetID string, view []ledger.Transaction) Result {
	generation := l.generation.Inc()
	l.state.Store(string(StateSearching))

	if index := indexOf(view, targetID); index >= 0 {
		return l.found(generation, targetID, index, false)
	}

	txn, err := l.config.Lookup(clientID, targetID)
	if l.stale(generation) {
		return Result{State: StateIdle, Index: -1}
	}
	if err != nil {
		l.config.Logger.Error("Transaction lookup failed", zap.String("target", targetID), zap.Error(err))
		return l.notFound(generation)
	}
	if txn == nil {
		return l.notFound(generation)
	}

	// present in the ledger but hidden by the active date range
	l.state.Store(string(StateFoundButFiltered))
	widened, err := l.config.WidenedView(clientID)
	if l.stale(generation) {
		return Result{State: StateIdle, Index: -1}
	}
	if err != nil {
		l.config.Logger.Error("Widened view fetch failed", zap.String("target", targetID), zap.Error(err))
		return l.notFound(generation)
	}
	if index := indexOf(widened, targetID); index >= 0 {
		return l.found(generation, targetID, index, true)
	}
	// other filters still hide it; treat as not found rather than loop
	return l.notFound(generation)
}

func (l *Locator) found(generation uint64, targetID string, index int, widened bool) Result {
	targetReady := false
	for attempt := 0; attempt < maxAttachAttempts; attempt++ {
		if l.config.Attached(targetID) || l.stale(generation) {
			targetReady = true
			break
		}
		l.config.Sleep(time.Duration(attempt+1) * attachBackoff)
	}
	if l.stale(generation) {
		return Result{State: StateIdle, Index: -1}
	}
	if !targetReady {
		// give up silently, the row never mounted
		l.config.Logger.Warn("Located row never became ready", zap.String("target", targetID), zap.Int("index", index))
		l.idle(generation)
		return Result{State: StateNotFound, Index: -1}
	}

	l.state.Store(string(StateFoundInView))
	l.config.Sleep(highlightDuration)
	l.idle(generation)
	return Result{State: StateFoundInView, Index: index, Widened: widened}
}

func (l *Locator) notFound(generation uint64) Result {
	l.state.Store(string(StateNotFound))
	l.idle(generation)
	return Result{State: StateNotFound, Index: -1, Message: NotFoundMessage}
}

// idle returns to Idle unless a newer request owns the state
func (l *Locator) idle(generation uint64) {
	if !l.stale(generation) {
		l.state.Store(string(StateIdle))
	}
}

func (l *Locator) stale(generation uint64) bool {
	return l.generation.Load() != generation
}

func indexOf(view []ledger.Transaction, id string) int {
	for i := range view {
		if view[i].ID == id {
			return i
		}
	}
	return -1
}
