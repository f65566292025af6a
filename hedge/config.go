package hedge

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/North-Shore-AI/crucible-hedging/metrics"
	"github.com/North-Shore-AI/crucible-hedging/strategy"
	"github.com/North-Shore-AI/crucible-hedging/telemetry"
)

// Config is the frozen, per-request configuration value described in spec
// §3. Build one with NewBuilder; a zero-value Config is not valid.
type Config struct {
	StrategyKind    strategy.Kind
	StrategyName    string
	StrategyOptions strategy.Options
	StrategyParams  strategy.Params

	MaxHedges          int
	Timeout            time.Duration
	EnableCancellation bool
	TelemetryPrefix    string

	Registry    *strategy.Registry
	MetricsSink *metrics.Sink
	Bus         *telemetry.Bus
	Budget      Budget
	Logger      *slog.Logger
}

// ErrConfigInvalid is wrapped by every configuration validation failure.
var ErrConfigInvalid = errors.New("hedge: invalid configuration")

func (c Config) validate() error {
	if c.MaxHedges < 1 {
		return fmt.Errorf("%w: max_hedges must be >= 1", ErrConfigInvalid)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout_ms must be >= 0", ErrConfigInvalid)
	}
	if _, err := c.StrategyOptions.ValidateFor(c.StrategyKind); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	return nil
}

func (c Config) registry() *strategy.Registry {
	if c.Registry != nil {
		return c.Registry
	}
	return strategy.DefaultRegistry
}

func (c Config) strategyName() string {
	if c.StrategyName != "" {
		return c.StrategyName
	}
	return string(c.StrategyKind)
}

func (c Config) bus() *telemetry.Bus {
	if c.Bus != nil {
		return c.Bus
	}
	return telemetry.NewBus(c.TelemetryPrefix)
}

// Builder builds Config values, mirroring hedgepolicy.Builder's chained
// With* methods over a frozen-at-Build config copy.
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder for the given strategy kind, with defaults
// of MaxHedges=1, Timeout=30s, and EnableCancellation=true.
func NewBuilder(kind strategy.Kind) *Builder {
	return &Builder{cfg: Config{
		StrategyKind:       kind,
		MaxHedges:          1,
		Timeout:            30 * time.Second,
		EnableCancellation: true,
	}}
}

func (b *Builder) WithStrategyName(name string) *Builder {
	b.cfg.StrategyName = name
	return b
}

func (b *Builder) WithStrategyOptions(opts strategy.Options) *Builder {
	b.cfg.StrategyOptions = opts
	return b
}

func (b *Builder) WithParams(p strategy.Params) *Builder {
	b.cfg.StrategyParams = p
	return b
}

func (b *Builder) WithMaxHedges(maxHedges int) *Builder {
	b.cfg.MaxHedges = maxHedges
	return b
}

func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.cfg.Timeout = timeout
	return b
}

func (b *Builder) WithCancellation(enabled bool) *Builder {
	b.cfg.EnableCancellation = enabled
	return b
}

func (b *Builder) WithTelemetryPrefix(prefix string) *Builder {
	b.cfg.TelemetryPrefix = prefix
	return b
}

func (b *Builder) WithRegistry(reg *strategy.Registry) *Builder {
	b.cfg.Registry = reg
	return b
}

func (b *Builder) WithMetricsSink(sink *metrics.Sink) *Builder {
	b.cfg.MetricsSink = sink
	return b
}

func (b *Builder) WithBus(bus *telemetry.Bus) *Builder {
	b.cfg.Bus = bus
	return b
}

func (b *Builder) WithBudget(budget Budget) *Builder {
	b.cfg.Budget = budget
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.cfg.Logger = logger
	return b
}

// Build validates and returns the configured Config.
func (b *Builder) Build() (Config, error) {
	cfg := b.cfg
	if err := cfg.validate(); err != nil {
		return Config{}, newError(ErrorKindConfigInvalid, err, 0, 0)
	}
	return cfg, nil
}
