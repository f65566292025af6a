// Package cascade implements the multi-tier cascade (Component D): a
// sequential escalation across an ordered list of tier descriptors, each
// with its own delay and optional quality gate, grounded on the hedge
// package's attempt-racing state machine but generalized from "identical
// retries of one function" to "an ordered list of distinct functions."
package cascade

import (
	"context"
	"time"
)

// Tier is one rung of a cascade: a named request function with its own
// escalation delay, optional quality gate, and cost.
type Tier[T any] struct {
	// Name identifies the tier in outcome metadata and telemetry.
	Name string
	// Delay bounds how long Run waits for this tier before escalating to
	// the next one. Must be >= 0.
	Delay time.Duration
	// RequestFn performs the tier's attempt. Its context is cancelled once
	// the cascade has a winner or gives up on every tier.
	RequestFn func(context.Context) (T, error)
	// QualityThreshold, if non-nil, gates whether an Ok result from this
	// tier short-circuits the cascade; see Gate.
	QualityThreshold *float64
	// Cost is the currency weight counted into Outcome.TotalCost once this
	// tier's task is observed to start.
	Cost float64
}

// Scored is implemented by result types that carry a confidence or
// quality score the cascade's quality gate can examine. Types that don't
// implement it are treated as ungated: the gate always passes for them.
type Scored interface {
	// Score returns the result's confidence/quality score and whether one
	// was actually present (as opposed to defaulting to 1.0).
	Score() (value float64, present bool)
}

// Gate reports whether result r clears threshold t, per spec §4.3's
// quality gate rule: absent threshold or an unscored result always
// passes; otherwise the scored value must be >= t, defaulting to 1.0
// when the result is Scored but has no value of its own.
func Gate[T any](result T, threshold *float64) bool {
	if threshold == nil {
		return true
	}
	scored, ok := any(result).(Scored)
	if !ok {
		return true
	}
	value, present := scored.Score()
	if !present {
		value = 1.0
	}
	return value >= *threshold
}
