package hedge

import (
	"sync/atomic"
)

// Budget restricts how often backups may fire, as a fraction of total
// requests, the way the teacher's budget package restricts retries and
// hedges together. Here it is narrowed to hedges only, since this package
// never retries after a terminal failure.
//
// A nil Budget always grants permits.
type Budget interface {
	// TryAcquire attempts to acquire a permit to fire one backup, and
	// returns whether it was granted.
	TryAcquire() bool
	// Release returns a previously acquired permit.
	Release()
}

// NewBudget returns a Budget that denies a permit once the permits
// currently held, divided by the number of TryAcquire calls made so far,
// reaches maxRate (default .2 if <= 0), while always granting a permit when
// fewer than minConcurrency (default 3 if 0) are held — mirroring
// budget.NewBuilder's defaults. Only TryAcquire calls are counted as
// requests: calls that never ask for a permit do not enter the rate.
func NewBudget(maxRate float64, minConcurrency uint) Budget {
	if maxRate <= 0 {
		maxRate = .2
	}
	if minConcurrency == 0 {
		minConcurrency = 3
	}
	return &requestBudget{maxRate: maxRate, minConcurrency: int32(minConcurrency)}
}

type requestBudget struct {
	maxRate        float64
	minConcurrency int32

	requests atomic.Int32
	hedges   atomic.Int32
}

func (b *requestBudget) TryAcquire() bool {
	b.requests.Add(1)
	if b.hedges.Load() < b.minConcurrency {
		b.hedges.Add(1)
		return true
	}
	rate := float64(b.hedges.Load()) / float64(b.requests.Load())
	if rate >= b.maxRate {
		return false
	}
	b.hedges.Add(1)
	return true
}

func (b *requestBudget) Release() {
	b.hedges.Add(-1)
}
