package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func durPtr(d time.Duration) *time.Duration { return &d }
func floatPtr(f float64) *float64           { return &f }

func TestValidateFixedRequiresDelay(t *testing.T) {
	_, err := Options{}.ValidateFor(Fixed)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	opts, err := Options{DelayMs: durPtr(50 * time.Millisecond)}.ValidateFor(Fixed)
	assert.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, *opts.DelayMs)
}

func TestValidatePercentileRange(t *testing.T) {
	_, err := Options{Percentile: floatPtr(49)}.ValidateFor(Percentile)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = Options{Percentile: floatPtr(100)}.ValidateFor(Percentile)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	opts, err := Options{Percentile: floatPtr(95)}.ValidateFor(Percentile)
	assert.NoError(t, err)
	assert.Equal(t, 1000, opts.WindowSize)
	assert.Equal(t, 100*time.Millisecond, opts.InitialDelay)
	assert.Equal(t, 10, opts.MinSamples)
}

func TestValidateAdaptiveDefaultsCandidates(t *testing.T) {
	opts, err := Options{}.ValidateFor(Adaptive)
	assert.NoError(t, err)
	assert.Len(t, opts.DelayCandidates, 5)

	_, err = Options{DelayCandidates: []time.Duration{10 * time.Millisecond}}.ValidateFor(Adaptive)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = Options{DelayCandidates: []time.Duration{10 * time.Millisecond, -5}}.ValidateFor(Adaptive)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestValidateExpBackoffDefaultsAndRules(t *testing.T) {
	opts, err := Options{}.ValidateFor(ExpBackoff)
	assert.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, opts.ExponentialMinDelay)
	assert.Equal(t, 5000*time.Millisecond, opts.ExponentialMaxDelay)
	assert.Equal(t, 100*time.Millisecond, opts.BaseDelay)
	assert.Equal(t, 1.5, opts.ExponentialIncreaseFactor)
	assert.Equal(t, 0.9, opts.ExponentialDecreaseFactor)
	assert.Equal(t, 2.0, opts.ExponentialErrorFactor)

	_, err = Options{BaseDelay: 1, ExponentialMinDelay: 100, ExponentialMaxDelay: 50}.ValidateFor(ExpBackoff)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = Options{ExponentialIncreaseFactor: 1}.ValidateFor(ExpBackoff)
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = Options{ExponentialDecreaseFactor: 1.2}.ValidateFor(ExpBackoff)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestValidateWorkloadAwareAndOffHaveNoRequirements(t *testing.T) {
	_, err := Options{}.ValidateFor(WorkloadAware)
	assert.NoError(t, err)

	_, err = Options{}.ValidateFor(Off)
	assert.NoError(t, err)
}

func TestValidateUnknownKind(t *testing.T) {
	_, err := Options{}.ValidateFor(Kind("bogus"))
	assert.ErrorIs(t, err, ErrInvalidOptions)
}
