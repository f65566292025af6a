// Package strategy implements the pluggable delay-selection policies a
// hedged call consults before firing a backup: Fixed, Percentile, Adaptive
// (a Thompson-sampling bandit), WorkloadAware, ExpBackoff, and Off. Each
// follows the same two-operation contract as a hedgepolicy.Builder's
// delayFunc plus an update hook, and is safe for concurrent use the way
// hedgepolicy.config guards its MovingQuantile with a sync.RWMutex.
package strategy

import (
	"time"

	"github.com/North-Shore-AI/crucible-hedging/common"
)

// NeverHedge is the sentinel CalculateDelay return meaning "never hedge":
// the executor must skip the hedge timer entirely and await the primary to
// completion or deadline.
const NeverHedge time.Duration = -1

// Kind identifies one of the five strategy variants, plus Off.
type Kind string

const (
	Fixed        Kind = "fixed"
	Percentile   Kind = "percentile"
	Adaptive     Kind = "adaptive"
	WorkloadAware Kind = "workload_aware"
	ExpBackoff   Kind = "exp_backoff"
	Off          Kind = "off"
)

// Params carries the per-request fields a Strategy's CalculateDelay may
// consult, corresponding to the "cfg" argument of spec §4.2's
// calculate_delay(cfg). Strategies ignore whichever fields aren't relevant
// to them.
type Params struct {
	// FixedDelay is not read by any strategy: Fixed returns the delay from
	// Options.DelayMs fixed at Start.
	FixedDelay time.Duration

	// BaseDelay is used by the WorkloadAware strategy.
	BaseDelay time.Duration

	// PromptLength, ModelComplexity, TimeOfDay, and Priority are the
	// WorkloadAware strategy's context tags. ModelComplexity is one of
	// "simple", "medium", "complex"; TimeOfDay is one of "peak", "normal",
	// "off-peak"; Priority is one of "high", "normal", "low". Unknown or
	// empty tags default to a 1.0 multiplier.
	PromptLength    int
	ModelComplexity string
	TimeOfDay       string
	Priority        string
}

// Strategy decides, per request, how long to wait before firing a backup,
// and learns from the outcome of each request it was consulted for.
//
// Implementations must be safe for concurrent CalculateDelay and Update
// calls (spec §5): state mutation is serialized by a single owning lock,
// reads are point-in-time snapshots.
type Strategy interface {
	// CalculateDelay returns the duration to wait on the primary before
	// escalating, or NeverHedge to skip hedging entirely.
	CalculateDelay(p Params) time.Duration

	// Update is called exactly once per executor call, with the full
	// outcome of that call, including the Off strategy (where it is a
	// no-op).
	Update(o common.Outcome)

	// Kind returns the strategy variant, for inclusion in outcome metadata.
	Kind() Kind

	// Stats returns a snapshot of the strategy's internal state for
	// diagnostics, keyed by the normative option names from spec §6 where
	// applicable.
	Stats() map[string]any

	// Reset clears the strategy's learned state back to its initial
	// configuration.
	Reset()
}
