// Package stage provides a small adapter boundary between a pipeline
// runner and the hedging executor: it accepts a nullary request function
// plus a declarative options schema, runs a hedged call, and reports back
// an artifact plus a metrics map, per spec §6's pipeline-stage adapter.
package stage

import (
	"context"
	"time"

	"github.com/North-Shore-AI/crucible-hedging/common"
	"github.com/North-Shore-AI/crucible-hedging/hedge"
	"github.com/North-Shore-AI/crucible-hedging/metrics"
	"github.com/North-Shore-AI/crucible-hedging/strategy"
	"github.com/North-Shore-AI/crucible-hedging/telemetry"
)

// Options is the adapter's declarative schema. RequestFn is required;
// every other field is optional and defaults per spec §6: strategy=Off,
// delay_ms=100, percentile unset, max_hedges=2, timeout_ms=30000.
type Options[T any] struct {
	RequestFn func(context.Context) (T, error)

	Strategy   strategy.Kind
	DelayMs    time.Duration
	Percentile *float64
	MaxHedges  int
	TimeoutMs  time.Duration

	StrategyName    string
	TelemetryPrefix string
	Registry        *strategy.Registry
	MetricsSink     *metrics.Sink
	Bus             *telemetry.Bus
}

// Result is what Run writes back for the caller's pipeline context: the
// artifact produced by the winning attempt, plus the outcome metadata a
// pipeline runner would fold into its own metrics map.
type Result[T any] struct {
	Artifact T
	Outcome  common.Outcome
}

// Run builds a Config from opts, applying the adapter's defaults, and
// performs the hedged call.
func Run[T any](ctx context.Context, opts Options[T]) (Result[T], error) {
	if opts.RequestFn == nil {
		return Result[T]{}, &hedge.Error{Kind: hedge.ErrorKindConfigInvalid}
	}

	kind := opts.Strategy
	if kind == "" {
		kind = strategy.Off
	}

	delay := opts.DelayMs
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	maxHedges := opts.MaxHedges
	if maxHedges <= 0 {
		maxHedges = 2
	}

	timeout := opts.TimeoutMs
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	strategyOpts := strategy.Options{}
	if kind == strategy.Fixed {
		d := delay
		strategyOpts.DelayMs = &d
	}
	if kind == strategy.Percentile {
		strategyOpts.Percentile = opts.Percentile
	}

	builder := hedge.NewBuilder(kind).
		WithStrategyOptions(strategyOpts).
		WithMaxHedges(maxHedges).
		WithTimeout(timeout)

	if opts.StrategyName != "" {
		builder = builder.WithStrategyName(opts.StrategyName)
	}
	if opts.TelemetryPrefix != "" {
		builder = builder.WithTelemetryPrefix(opts.TelemetryPrefix)
	}
	if opts.Registry != nil {
		builder = builder.WithRegistry(opts.Registry)
	}
	if opts.MetricsSink != nil {
		builder = builder.WithMetricsSink(opts.MetricsSink)
	}
	if opts.Bus != nil {
		builder = builder.WithBus(opts.Bus)
	}

	cfg, err := builder.Build()
	if err != nil {
		return Result[T]{}, err
	}

	artifact, outcome, err := hedge.Request(ctx, opts.RequestFn, cfg)
	if err != nil {
		return Result[T]{Outcome: outcome}, err
	}
	return Result[T]{Artifact: artifact, Outcome: outcome}, nil
}
