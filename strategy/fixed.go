package strategy

import (
	"time"

	"github.com/North-Shore-AI/crucible-hedging/common"
)

// fixedStrategy always hedges after the same configured delay. Stateless:
// Update is a no-op.
type fixedStrategy struct {
	delay time.Duration
}

func newFixed(opts Options) *fixedStrategy {
	return &fixedStrategy{delay: *opts.DelayMs}
}

func (f *fixedStrategy) CalculateDelay(Params) time.Duration {
	return f.delay
}

func (f *fixedStrategy) Update(common.Outcome) {}

func (f *fixedStrategy) Kind() Kind { return Fixed }

func (f *fixedStrategy) Stats() map[string]any {
	return map[string]any{"delay_ms": f.delay}
}

func (f *fixedStrategy) Reset() {}
