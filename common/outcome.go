package common

import "time"

// Outcome describes the result of a single hedged call, and is the value
// passed to Strategy.Update after every call. Fields are nullable where the
// data model (spec §3) calls them out as optional: a nil *time.Duration
// means the measurement does not apply to this outcome, not that it was
// zero.
type Outcome struct {
	// RequestID identifies the call this outcome belongs to.
	RequestID string

	// Hedged is true if at least one backup was fired.
	Hedged bool

	// HedgeWon is true if a backup, rather than the primary, produced the
	// winning result.
	HedgeWon bool

	// HedgeDelay is the delay the strategy chose for this call, recorded
	// even when no backup ever fired. Nil only for the Off strategy.
	HedgeDelay *time.Duration

	// PrimaryLatency is the primary attempt's observed duration, if it
	// completed (successfully or not) before the call returned.
	PrimaryLatency *time.Duration

	// BackupLatency is the winning backup's observed duration, set only
	// when HedgeWon is true.
	BackupLatency *time.Duration

	// TotalLatency is the wall-clock duration of the whole call.
	TotalLatency time.Duration

	// Cost is 1 + the number of backups that were actually fired and
	// observed. It is a count-like indicator of extra work, not currency.
	Cost float64

	// StrategyKind names the strategy that produced HedgeDelay.
	StrategyKind string

	// Err is set when Strategy.Update is being called on the error path;
	// its presence is the "error" tag referenced throughout spec §4.2.
	Err error
}

// IsError reports whether this outcome represents a failed call, which
// strategies like exponential backoff use to distinguish the error branch
// from the hedge-lost branch.
func (o Outcome) IsError() bool {
	return o.Err != nil
}
