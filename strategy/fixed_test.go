package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/North-Shore-AI/crucible-hedging/common"
)

func TestFixedStrategyAlwaysReturnsConfiguredDelay(t *testing.T) {
	opts, err := Options{DelayMs: durPtr(75 * time.Millisecond)}.ValidateFor(Fixed)
	assert.NoError(t, err)

	s := newFixed(opts)
	assert.Equal(t, 75*time.Millisecond, s.CalculateDelay(Params{}))

	s.Update(common.Outcome{HedgeWon: true})
	assert.Equal(t, 75*time.Millisecond, s.CalculateDelay(Params{}))
	assert.Equal(t, Fixed, s.Kind())
}

func TestOffStrategyNeverHedges(t *testing.T) {
	s := &offStrategy{}
	assert.Equal(t, NeverHedge, s.CalculateDelay(Params{}))
	assert.Equal(t, Off, s.Kind())
}
