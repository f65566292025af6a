package metrics

import (
	"time"

	"github.com/North-Shore-AI/crucible-hedging/internal/util"
)

// Stats is the snapshot returned by Sink.GetStats, covering every field
// named in spec §4.4.
type Stats struct {
	Total       int64
	SampleCount int

	HedgeRate          float64
	HedgeWinRate       float64
	HedgeEffectiveness float64

	P50, P90, P95, P99, P999 time.Duration
	Min, Max, Mean, Median   time.Duration

	TotalCost           float64
	AverageCost         float64
	CostOverheadPercent float64

	Uptime           time.Duration
	ThroughputPerSec float64
}

// Percentile is the pure helper from spec §6: the nearest-rank p-th
// percentile of values, with no side effects on a Sink.
func Percentile(values []float64, p float64) float64 {
	return util.NearestRank(values, p)
}

// Percentiles computes Percentile for each entry in ps in one pass.
func Percentiles(values []float64, ps []float64) map[float64]float64 {
	return util.NearestRanks(values, ps)
}
