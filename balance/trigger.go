package balance

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Trigger watches a monotonically increasing update counter and kicks off a
// balance recompute when it grows. The first observed value only establishes
// the baseline: a freshly mounted view must not recompute.
//
// Counter bursts coalesce rather than drop: increases arriving faster than
// the rate limit fold into one trailing recompute scheduled for when the
// limiter allows, so the final write of a burst always lands in a recompute.
type Trigger struct {
	mu            sync.Mutex
	seen          bool
	last          uint64
	cancelPending func() bool

	limiter   *rate.Limiter
	recompute func()
	logger    *zap.Logger

	// schedule is swapped out in tests
	schedule func(time.Duration, func()) (cancel func() bool)
}

// NewTrigger returns a trigger calling 'recompute' on counter increases
func NewTrigger(recompute func(), logger *zap.Logger) *Trigger {
	return &Trigger{
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		recompute: recompute,
		logger:    logger,
		schedule: func(d time.Duration, fn func()) func() bool {
			return time.AfterFunc(d, fn).Stop
		},
	}
}

// Observe feeds the trigger a new counter reading
func (t *Trigger) Observe(counter uint64) {
	if t.observe(counter) {
		t.recompute()
	}
}

func (t *Trigger) observe(counter uint64) (recomputeNow bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.seen {
		t.seen = true
		t.last = counter
		return false
	}
	if counter <= t.last {
		return false
	}
	t.last = counter
	if t.cancelPending != nil {
		// the already-scheduled recompute will cover this increase too
		return false
	}
	delay := t.limiter.Reserve().Delay()
	if delay == 0 {
		return true
	}
	t.logger.Debug("Balance recompute deferred",
		zap.Uint64("counter", counter),
		zap.Duration("delay", delay))
	t.cancelPending = t.schedule(delay, t.runPending)
	return false
}

func (t *Trigger) runPending() {
	t.mu.Lock()
	t.cancelPending = nil
	t.mu.Unlock()
	t.recompute()
}

// Reset clears the baseline and any scheduled recompute, for when the watched
// counter restarts. The next observation establishes a new baseline without
// recomputing.
func (t *Trigger) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seen = false
	t.last = 0
	if t.cancelPending != nil {
		t.cancelPending()
		t.cancelPending = nil
	}
}
