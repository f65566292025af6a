package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegistryStartIsIdempotentPerName(t *testing.T) {
	r := NewRegistry()
	first, err := r.Start(Fixed, "a", Options{DelayMs: durPtr(10 * time.Millisecond)})
	assert.NoError(t, err)

	second, err := r.Start(Fixed, "a", Options{DelayMs: durPtr(999 * time.Millisecond)})
	assert.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 10*time.Millisecond, second.CalculateDelay(Params{}))
}

func TestRegistryStartRejectsInvalidOptions(t *testing.T) {
	r := NewRegistry()
	_, err := r.Start(Fixed, "bad", Options{})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestRegistryStatsUnknownName(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Stats("nope")
	assert.False(t, ok)
}

func TestRegistryStatsAndReset(t *testing.T) {
	r := NewRegistry()
	_, err := r.Start(ExpBackoff, "b", Options{})
	assert.NoError(t, err)

	stats, ok := r.Stats("b")
	assert.True(t, ok)
	assert.Contains(t, stats, "current_delay")

	r.Reset("unknown-name-is-a-no-op")
	r.Reset("b")
}
