package telemetry

import (
	"log/slog"
	"sync"
)

// Bus is a fan-out of typed Events to a list of subscribed callbacks, the
// simplest of the two shapes spec §4.5 permits ("a subscribable stream or a
// per-call callback list"). A Bus with no prefix and no subscribers is a
// valid, inert zero value: Emit on it is a cheap no-op.
type Bus struct {
	mu          sync.RWMutex
	prefix      string
	subscribers []func(Event)
	logger      *slog.Logger
}

// NewBus returns a Bus that namespaces every emitted event under prefix.
// An empty prefix emits bare suffixes.
func NewBus(prefix string) *Bus {
	return &Bus{prefix: prefix}
}

// WithLogger configures debug logging of every emitted event.
func (b *Bus) WithLogger(logger *slog.Logger) *Bus {
	b.logger = logger
	return b
}

// Subscribe registers listener to be called for every event emitted after
// this call. Subscribe returns an unsubscribe function.
func (b *Bus) Subscribe(listener func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := len(b.subscribers)
	b.subscribers = append(b.subscribers, listener)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if idx < len(b.subscribers) {
			b.subscribers[idx] = nil
		}
	}
}

// Emit fans suffix out to every subscriber as prefix+suffix, with the given
// measurements and metadata. A nil Bus is valid and Emit is a no-op on it,
// so callers that don't care about telemetry can pass a nil *Bus.
func (b *Bus) Emit(suffix string, measurements map[string]float64, metadata map[string]any) {
	if b == nil {
		return
	}
	name := suffix
	if b.prefix != "" {
		name = b.prefix + "." + suffix
	}
	event := Event{Name: name, Measurements: measurements, Metadata: metadata}

	if b.logger != nil && b.logger.Enabled(nil, slog.LevelDebug) {
		b.logger.Debug("telemetry event", "name", event.Name, "measurements", measurements, "metadata", metadata)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers {
		if sub != nil {
			sub(event)
		}
	}
}
