// Package metrics implements the bounded rolling-window aggregate metrics
// collector (Component A): latency samples, counters, and percentile
// queries over everything recorded via Record.
package metrics

import (
	"log/slog"
	"sync"
	"time"

	"github.com/North-Shore-AI/crucible-hedging/common"
	"github.com/North-Shore-AI/crucible-hedging/internal/util"
)

const defaultWindowSize = 10000

// Sink is a process-wide, concurrency-safe collector of hedged-call
// outcomes. All mutation is serialized by mu, the way the teacher's
// circuitbreaker and adaptivelimiter packages guard their windowed stats.
type Sink struct {
	mu sync.Mutex

	window    *util.RingBuffer
	total     int64
	hedged    int64
	hedgeWins int64
	sumCost   float64
	openedAt  time.Time
	logger    *slog.Logger
}

// NewSink returns a Sink whose rolling window holds up to windowSize
// latency samples. A windowSize <= 0 uses the default of 10000.
func NewSink(windowSize int) *Sink {
	if windowSize <= 0 {
		windowSize = defaultWindowSize
	}
	return &Sink{
		window:   util.NewRingBuffer(windowSize),
		openedAt: time.Now(),
	}
}

// WithLogger configures debug logging of every recorded outcome, the way
// the teacher's limiter packages accept an optional *slog.Logger.
func (s *Sink) WithLogger(logger *slog.Logger) *Sink {
	s.logger = logger
	return s
}

// Record submits a hedged call's outcome to the sink.
func (s *Sink) Record(o common.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	if o.Hedged {
		s.hedged++
	}
	if o.HedgeWon {
		s.hedgeWins++
	}
	s.sumCost += o.Cost
	s.window.Add(float64(o.TotalLatency))

	if s.logger != nil && s.logger.Enabled(nil, slog.LevelDebug) {
		s.logger.Debug("metrics sink recorded outcome",
			"hedged", o.Hedged, "hedge_won", o.HedgeWon, "cost", o.Cost, "total_latency", o.TotalLatency)
	}
}

// Reset clears every counter and the sample window, and restarts the
// uptime clock.
func (s *Sink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window.Reset()
	s.total = 0
	s.hedged = 0
	s.hedgeWins = 0
	s.sumCost = 0
	s.openedAt = time.Now()
}

// GetStats returns a snapshot of the sink's aggregate stats, or false if no
// outcome has ever been recorded (the NotStarted case from spec §6).
func (s *Sink) GetStats() (Stats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.total == 0 {
		return Stats{}, false
	}

	samples := s.window.Values()
	uptime := time.Since(s.openedAt)

	ps := util.NearestRanks(samples, []float64{50, 90, 95, 99, 99.9})

	return Stats{
		Total:               s.total,
		SampleCount:         len(samples),
		HedgeRate:           ratio(float64(s.hedged), float64(s.total)),
		HedgeWinRate:        ratio(float64(s.hedgeWins), float64(s.hedged)),
		HedgeEffectiveness:  ratio(float64(s.hedgeWins), float64(s.total)),
		P50:                 time.Duration(ps[50]),
		P90:                 time.Duration(ps[90]),
		P95:                 time.Duration(ps[95]),
		P99:                 time.Duration(ps[99]),
		P999:                time.Duration(ps[99.9]),
		Min:                 time.Duration(minOf(samples)),
		Max:                 time.Duration(maxOf(samples)),
		Mean:                time.Duration(meanOf(samples)),
		Median:              time.Duration(util.NearestRank(samples, 50)),
		TotalCost:           s.sumCost,
		AverageCost:         ratio(s.sumCost, float64(s.total)),
		CostOverheadPercent: round2(ratio(s.sumCost-float64(s.total), float64(s.total)) * 100),
		Uptime:              uptime,
		ThroughputPerSec:    ratio(float64(s.total)*1000, float64(uptime.Milliseconds())),
	}, true
}

// ratio returns 0 when y is 0, guarding every division in GetStats per
// spec §4.4's "division-by-zero guard".
func ratio(x, y float64) float64 {
	if y == 0 {
		return 0
	}
	return x / y
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
