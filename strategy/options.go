package strategy

import (
	"errors"
	"fmt"
	"time"
)

// Options configures a Strategy instance at its first Start call for a
// given name. Field names mirror the normative lowercase snake-case option
// names from spec §6 (delay_ms, percentile, window_size, ...); Go fields
// use the idiomatic CamelCase spelling of each.
//
// Pointer fields have no default and must be set when required by the
// chosen Kind; value fields fall back to their documented default when
// left zero.
type Options struct {
	// DelayMs is required by Fixed. 0 is a valid, meaningful delay.
	DelayMs *time.Duration

	// Percentile is required by Percentile; must be in [50, 99].
	Percentile *float64
	// WindowSize defaults to 1000 for Percentile.
	WindowSize int
	// InitialDelay defaults to 100ms for Percentile.
	InitialDelay time.Duration
	// MinSamples defaults to 10 for Percentile.
	MinSamples int

	// DelayCandidates is required by Adaptive; must have >= 2 entries, all
	// non-negative. Defaults to {50, 100, 200, 500, 1000}ms when nil.
	DelayCandidates []time.Duration

	// BaseDelay is the initial value for ExpBackoff's current delay
	// (default 100ms). WorkloadAware does not read it; its multiplier base
	// is Params.BaseDelay.
	BaseDelay time.Duration

	// ExponentialMinDelay, ExponentialMaxDelay bound ExpBackoff's current
	// delay. Defaults: 10ms / 5000ms.
	ExponentialMinDelay time.Duration
	ExponentialMaxDelay time.Duration
	// ExponentialIncreaseFactor scales the delay up on a lost hedge
	// (default 1.5); an error outcome uses ExponentialErrorFactor instead.
	ExponentialIncreaseFactor float64
	// ExponentialDecreaseFactor scales the delay down on a won hedge
	// (default 0.9).
	ExponentialDecreaseFactor float64
	// ExponentialErrorFactor scales the delay up on an error outcome
	// (default 2.0).
	ExponentialErrorFactor float64
}

// ErrInvalidOptions is wrapped by every option-validation failure.
var ErrInvalidOptions = errors.New("strategy: invalid options")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOptions, fmt.Sprintf(format, args...))
}

// ValidateFor checks opts against the rules in spec §4.2's "Strategy
// dispatch" for the given kind, and returns an Options with defaults
// applied. Exported so callers (e.g. hedge.Config.validate) can validate
// options before Registry.Start lazily creates an instance.
func (o Options) ValidateFor(kind Kind) (Options, error) {
	return o.validate(kind)
}

// validate is ValidateFor's unexported implementation, also used
// internally by Registry.Start.
func (o Options) validate(kind Kind) (Options, error) {
	switch kind {
	case Fixed:
		if o.DelayMs == nil {
			return o, invalid("fixed strategy requires delay_ms")
		}
		if *o.DelayMs < 0 {
			return o, invalid("fixed strategy delay_ms must be >= 0")
		}
	case Percentile:
		if o.Percentile == nil {
			return o, invalid("percentile strategy requires percentile")
		}
		if *o.Percentile < 50 || *o.Percentile > 99 {
			return o, invalid("percentile must be in [50, 99], got %v", *o.Percentile)
		}
		if o.WindowSize <= 0 {
			o.WindowSize = 1000
		}
		if o.InitialDelay <= 0 {
			o.InitialDelay = 100 * time.Millisecond
		}
		if o.MinSamples <= 0 {
			o.MinSamples = 10
		}
	case Adaptive:
		if o.DelayCandidates == nil {
			o.DelayCandidates = defaultCandidates()
		}
		if len(o.DelayCandidates) < 2 {
			return o, invalid("adaptive strategy requires >= 2 delay_candidates")
		}
		for _, d := range o.DelayCandidates {
			if d < 0 {
				return o, invalid("adaptive strategy delay_candidates must be non-negative")
			}
		}
	case WorkloadAware:
		// No hard requirements.
	case ExpBackoff:
		if o.ExponentialMinDelay <= 0 {
			o.ExponentialMinDelay = 10 * time.Millisecond
		}
		if o.ExponentialMaxDelay <= 0 {
			o.ExponentialMaxDelay = 5000 * time.Millisecond
		}
		if o.BaseDelay <= 0 {
			o.BaseDelay = 100 * time.Millisecond
		}
		if o.ExponentialIncreaseFactor <= 0 {
			o.ExponentialIncreaseFactor = 1.5
		}
		if o.ExponentialDecreaseFactor <= 0 {
			o.ExponentialDecreaseFactor = 0.9
		}
		if o.ExponentialErrorFactor <= 0 {
			o.ExponentialErrorFactor = 2.0
		}
		if o.ExponentialMinDelay >= o.ExponentialMaxDelay {
			return o, invalid("exponential_min_delay must be < exponential_max_delay")
		}
		if o.BaseDelay < o.ExponentialMinDelay || o.BaseDelay > o.ExponentialMaxDelay {
			return o, invalid("base_delay must be within [min, max] delay bounds")
		}
		if o.ExponentialIncreaseFactor <= 1 {
			return o, invalid("exponential_increase_factor must be > 1")
		}
		if o.ExponentialDecreaseFactor <= 0 || o.ExponentialDecreaseFactor >= 1 {
			return o, invalid("exponential_decrease_factor must be in (0, 1)")
		}
		if o.ExponentialErrorFactor <= 1 {
			return o, invalid("exponential_error_factor must be > 1")
		}
	case Off:
		// No configuration.
	default:
		return o, invalid("unknown strategy kind %q", kind)
	}
	return o, nil
}

func defaultCandidates() []time.Duration {
	return []time.Duration{
		50 * time.Millisecond,
		100 * time.Millisecond,
		200 * time.Millisecond,
		500 * time.Millisecond,
		1000 * time.Millisecond,
	}
}
