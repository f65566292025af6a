package strategy

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/North-Shore-AI/crucible-hedging/common"
)

func newTestExpBackoff(t *testing.T) *expBackoffStrategy {
	t.Helper()
	opts, err := Options{}.ValidateFor(ExpBackoff)
	assert.NoError(t, err)
	return newExpBackoff(opts)
}

func TestExpBackoffDecaysOnHedgeWon(t *testing.T) {
	s := newTestExpBackoff(t)
	before := s.CalculateDelay(Params{})
	s.Update(common.Outcome{Hedged: true, HedgeWon: true})
	after := s.CalculateDelay(Params{})
	assert.Less(t, after, before)
}

func TestExpBackoffGrowsOnLostHedge(t *testing.T) {
	s := newTestExpBackoff(t)
	before := s.CalculateDelay(Params{})
	s.Update(common.Outcome{Hedged: true, HedgeWon: false})
	after := s.CalculateDelay(Params{})
	assert.Greater(t, after, before)
}

func TestExpBackoffGrowsFasterOnError(t *testing.T) {
	s1 := newTestExpBackoff(t)
	s2 := newTestExpBackoff(t)

	s1.Update(common.Outcome{Hedged: true, HedgeWon: false})
	s2.Update(common.Outcome{Err: errors.New("boom")})

	assert.Greater(t, s2.CalculateDelay(Params{}), s1.CalculateDelay(Params{}))
}

func TestExpBackoffClampsToBounds(t *testing.T) {
	s := newTestExpBackoff(t)
	for i := 0; i < 100; i++ {
		s.Update(common.Outcome{Hedged: true, HedgeWon: false})
	}
	assert.LessOrEqual(t, s.CalculateDelay(Params{}), 5000*time.Millisecond)

	for i := 0; i < 100; i++ {
		s.Update(common.Outcome{HedgeWon: true})
	}
	assert.GreaterOrEqual(t, s.CalculateDelay(Params{}), 10*time.Millisecond)
}

func TestExpBackoffReset(t *testing.T) {
	s := newTestExpBackoff(t)
	s.Update(common.Outcome{Hedged: true, HedgeWon: false})
	s.Reset()
	assert.Equal(t, s.base.Round(time.Millisecond), s.CalculateDelay(Params{}))
	stats := s.Stats()
	assert.Equal(t, 0, stats["total_adjustments"])
}
