package strategy

import (
	"time"

	"github.com/North-Shore-AI/crucible-hedging/common"
)

// workloadAwareStrategy scales a base delay by independent per-dimension
// multipliers derived from request context tags. It carries no learned
// state: Update is a no-op.
type workloadAwareStrategy struct{}

func newWorkloadAware(Options) *workloadAwareStrategy {
	return &workloadAwareStrategy{}
}

func (w *workloadAwareStrategy) CalculateDelay(p Params) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	factor := promptLengthFactor(p.PromptLength) *
		modelComplexityFactor(p.ModelComplexity) *
		timeOfDayFactor(p.TimeOfDay) *
		priorityFactor(p.Priority)

	delay := time.Duration(float64(base) * factor)
	if delay < 10*time.Millisecond {
		delay = 10 * time.Millisecond
	}
	return delay.Round(time.Millisecond)
}

func promptLengthFactor(length int) float64 {
	switch {
	case length > 4000:
		return 2.5
	case length > 2000:
		return 2.0
	case length > 1000:
		return 1.5
	default:
		return 1.0
	}
}

func modelComplexityFactor(complexity string) float64 {
	switch complexity {
	case "simple":
		return 0.5
	case "complex":
		return 2.0
	default:
		return 1.0
	}
}

func timeOfDayFactor(timeOfDay string) float64 {
	switch timeOfDay {
	case "peak":
		return 0.7
	case "off-peak":
		return 1.3
	default:
		return 1.0
	}
}

func priorityFactor(priority string) float64 {
	switch priority {
	case "high":
		return 0.6
	case "low":
		return 1.5
	default:
		return 1.0
	}
}

func (w *workloadAwareStrategy) Update(common.Outcome) {}

func (w *workloadAwareStrategy) Kind() Kind { return WorkloadAware }

func (w *workloadAwareStrategy) Stats() map[string]any {
	return map[string]any{}
}

func (w *workloadAwareStrategy) Reset() {}
