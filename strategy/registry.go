package strategy

import (
	"fmt"
	"log/slog"
	"sync"
)

// ErrNotStarted names the condition of no instance having been started
// under a given name. Registry.Stats does not return it: it reports that
// condition as a false second result.
var ErrNotStarted = fmt.Errorf("strategy: not started")

// Registry holds named Strategy instances, lazily created on first use the
// way hedgepolicy's quantile-based delay is created once at Build() but
// keyed per name here so a caller can keep distinct state per backend (spec
// §3's strategy_name). All mutation is serialized by mu, matching design
// note 9.1's "small typed struct behind an exclusive lock" over an actor.
type Registry struct {
	mu        sync.Mutex
	instances map[string]Strategy
	logger    *slog.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{instances: make(map[string]Strategy)}
}

// WithLogger configures debug logging for strategy creation and is
// idiomatic of the teacher's optional WithLogger builder methods.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Start returns the named instance, creating it with kind and opts if this
// is the first call for name. Subsequent calls for the same name ignore
// kind and opts and return the existing instance: Start is idempotent per
// name. Returns an error wrapping ErrInvalidOptions if opts fail
// validation for kind.
func (r *Registry) Start(kind Kind, name string, opts Options) (Strategy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.instances[name]; ok {
		return existing, nil
	}

	validated, err := opts.validate(kind)
	if err != nil {
		return nil, err
	}

	s, err := newStrategy(kind, validated)
	if err != nil {
		return nil, err
	}
	r.instances[name] = s
	if r.logger != nil && r.logger.Enabled(nil, slog.LevelDebug) {
		r.logger.Debug("strategy started", "name", name, "kind", kind)
	}
	return s, nil
}

// Stats returns the named instance's Stats snapshot, or false if no
// instance has been started under that name.
func (r *Registry) Stats(name string) (map[string]any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.instances[name]
	if !ok {
		return nil, false
	}
	return s.Stats(), true
}

// Reset clears the named instance's learned state. It is a no-op if no
// instance has been started under that name.
func (r *Registry) Reset(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.instances[name]; ok {
		s.Reset()
	}
}

func newStrategy(kind Kind, opts Options) (Strategy, error) {
	switch kind {
	case Fixed:
		return newFixed(opts), nil
	case Percentile:
		return newPercentile(opts), nil
	case Adaptive:
		return newAdaptive(opts), nil
	case WorkloadAware:
		return newWorkloadAware(opts), nil
	case ExpBackoff:
		return newExpBackoff(opts), nil
	case Off:
		return newOff(opts), nil
	default:
		return nil, invalid("unknown strategy kind %q", kind)
	}
}

// DefaultRegistry is the process-wide convenience registry used by the
// top-level hedge.Request API when a caller does not supply their own,
// per design note 9.6.
var DefaultRegistry = NewRegistry()
