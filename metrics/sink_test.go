package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/North-Shore-AI/crucible-hedging/common"
)

func TestGetStatsNotStartedWhenEmpty(t *testing.T) {
	s := NewSink(10)
	_, ok := s.GetStats()
	assert.False(t, ok)
}

func TestGetStatsComputesRates(t *testing.T) {
	s := NewSink(100)
	s.Record(common.Outcome{TotalLatency: 10 * time.Millisecond, Cost: 1})
	s.Record(common.Outcome{TotalLatency: 20 * time.Millisecond, Cost: 2, Hedged: true})
	s.Record(common.Outcome{TotalLatency: 30 * time.Millisecond, Cost: 2, Hedged: true, HedgeWon: true})

	stats, ok := s.GetStats()
	assert.True(t, ok)
	assert.EqualValues(t, 3, stats.Total)
	assert.InDelta(t, 2.0/3.0, stats.HedgeRate, 0.0001)
	assert.InDelta(t, 1.0/2.0, stats.HedgeWinRate, 0.0001)
	assert.InDelta(t, 1.0/3.0, stats.HedgeEffectiveness, 0.0001)
	assert.Equal(t, 5.0, stats.TotalCost)
}

func TestGetStatsPercentilesAndMinMax(t *testing.T) {
	s := NewSink(100)
	for _, ms := range []time.Duration{10, 20, 30, 40, 50, 60, 70, 80, 90, 100} {
		s.Record(common.Outcome{TotalLatency: ms * time.Millisecond})
	}
	stats, _ := s.GetStats()
	assert.Equal(t, 10*time.Millisecond, stats.Min)
	assert.Equal(t, 100*time.Millisecond, stats.Max)
	assert.Equal(t, 50*time.Millisecond, stats.P50)
}

func TestGetStatsDivisionByZeroGuard(t *testing.T) {
	s := NewSink(10)
	s.Record(common.Outcome{TotalLatency: 5 * time.Millisecond})
	stats, _ := s.GetStats()
	assert.Equal(t, 0.0, stats.HedgeRate)
	assert.Equal(t, 0.0, stats.HedgeWinRate)
}

func TestSinkWindowEvictsOldestBeyondCapacity(t *testing.T) {
	s := NewSink(2)
	s.Record(common.Outcome{TotalLatency: 1 * time.Millisecond})
	s.Record(common.Outcome{TotalLatency: 2 * time.Millisecond})
	s.Record(common.Outcome{TotalLatency: 3 * time.Millisecond})

	stats, _ := s.GetStats()
	assert.Equal(t, 2, stats.SampleCount)
	assert.EqualValues(t, 3, stats.Total)
}

func TestSinkReset(t *testing.T) {
	s := NewSink(10)
	s.Record(common.Outcome{TotalLatency: 5 * time.Millisecond})
	s.Reset()
	_, ok := s.GetStats()
	assert.False(t, ok)
}
