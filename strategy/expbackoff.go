package strategy

import (
	"sync"
	"time"

	"github.com/North-Shore-AI/crucible-hedging/common"
)

// expBackoffStrategy is a multiplicative-increase/multiplicative-decrease
// (AIMD) delay: a won hedge or an error-free fast primary decays the delay
// toward minDelay, a lost hedge grows it toward maxDelay, and an error
// grows it faster still.
type expBackoffStrategy struct {
	mu sync.Mutex

	base, min, max    time.Duration
	inc, dec, errFact float64

	currentDelay        time.Duration
	consecutiveSuccess  int
	consecutiveFailure  int
	totalAdjustments    int
}

func newExpBackoff(opts Options) *expBackoffStrategy {
	return &expBackoffStrategy{
		base:     opts.BaseDelay,
		min:      opts.ExponentialMinDelay,
		max:      opts.ExponentialMaxDelay,
		inc:      opts.ExponentialIncreaseFactor,
		dec:      opts.ExponentialDecreaseFactor,
		errFact:  opts.ExponentialErrorFactor,
		currentDelay: opts.BaseDelay,
	}
}

func (e *expBackoffStrategy) CalculateDelay(Params) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentDelay.Round(time.Millisecond)
}

func (e *expBackoffStrategy) Update(o common.Outcome) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case o.HedgeWon:
		e.currentDelay = e.clamp(time.Duration(float64(e.currentDelay) * e.dec))
		e.consecutiveSuccess++
		e.consecutiveFailure = 0
	case o.Hedged && !o.HedgeWon:
		e.currentDelay = e.clamp(time.Duration(float64(e.currentDelay) * e.inc))
		e.consecutiveFailure++
		e.consecutiveSuccess = 0
	case o.IsError():
		e.currentDelay = e.clamp(time.Duration(float64(e.currentDelay) * e.errFact))
		e.consecutiveFailure++
		e.consecutiveSuccess = 0
	default:
		// Primary was fast and no backup fired: treat as a success.
		e.currentDelay = e.clamp(time.Duration(float64(e.currentDelay) * e.dec))
		e.consecutiveSuccess++
		e.consecutiveFailure = 0
	}
	e.totalAdjustments++
}

func (e *expBackoffStrategy) clamp(d time.Duration) time.Duration {
	if d < e.min {
		return e.min
	}
	if d > e.max {
		return e.max
	}
	return d
}

func (e *expBackoffStrategy) Kind() Kind { return ExpBackoff }

func (e *expBackoffStrategy) Stats() map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return map[string]any{
		"current_delay":       e.currentDelay,
		"consecutive_success": e.consecutiveSuccess,
		"consecutive_failure": e.consecutiveFailure,
		"total_adjustments":   e.totalAdjustments,
	}
}

func (e *expBackoffStrategy) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentDelay = e.base
	e.consecutiveSuccess = 0
	e.consecutiveFailure = 0
	e.totalAdjustments = 0
}
