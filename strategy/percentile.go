package strategy

import (
	"sync"
	"time"

	"github.com/North-Shore-AI/crucible-hedging/common"
	"github.com/North-Shore-AI/crucible-hedging/internal/util"
)

// percentileStrategy is Google's recommended hedging delay: the nearest-rank
// p-th percentile of recently observed primary latencies. The delay is
// cached and only recomputed when a new sample arrives, so CalculateDelay
// never blocks on a sort.
//
// This type is concurrency safe; mutable state is guarded by mu the way
// hedgepolicy.config guards its MovingQuantile.
type percentileStrategy struct {
	mu sync.RWMutex

	percentile   float64
	minSamples   int
	initialDelay time.Duration
	window       *util.RingBuffer
	currentDelay time.Duration
}

func newPercentile(opts Options) *percentileStrategy {
	return &percentileStrategy{
		percentile:   *opts.Percentile,
		minSamples:   opts.MinSamples,
		initialDelay: opts.InitialDelay,
		window:       util.NewRingBuffer(opts.WindowSize),
		currentDelay: opts.InitialDelay,
	}
}

func (p *percentileStrategy) CalculateDelay(Params) time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currentDelay
}

func (p *percentileStrategy) Update(o common.Outcome) {
	latency := o.PrimaryLatency
	if latency == nil {
		latency = o.BackupLatency
	}
	if latency == nil {
		latency = &o.TotalLatency
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.window.Add(float64(*latency))
	if p.window.Len() >= p.minSamples {
		p.currentDelay = time.Duration(util.NearestRank(p.window.Values(), p.percentile))
	}
}

func (p *percentileStrategy) Kind() Kind { return Percentile }

func (p *percentileStrategy) Stats() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return map[string]any{
		"percentile":    p.percentile,
		"window_size":   p.window.Len(),
		"current_delay": p.currentDelay,
	}
}

func (p *percentileStrategy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.window.Reset()
	p.currentDelay = p.initialDelay
}
