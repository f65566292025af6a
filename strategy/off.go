package strategy

import (
	"time"

	"github.com/North-Shore-AI/crucible-hedging/common"
)

// offStrategy is the degenerate "never hedge" strategy.
type offStrategy struct{}

func newOff(Options) *offStrategy {
	return &offStrategy{}
}

func (o *offStrategy) CalculateDelay(Params) time.Duration {
	return NeverHedge
}

func (o *offStrategy) Update(common.Outcome) {}

func (o *offStrategy) Kind() Kind { return Off }

func (o *offStrategy) Stats() map[string]any {
	return map[string]any{}
}

func (o *offStrategy) Reset() {}
