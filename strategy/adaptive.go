package strategy

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/North-Shore-AI/crucible-hedging/common"
)

// arm is one candidate hedge delay's Beta(alpha, beta) belief, plus the raw
// counters spec §4.2.3 asks Stats to expose.
type arm struct {
	delay      time.Duration
	alpha      float64
	beta       float64
	pulls      int
	rewardSum  float64
}

// adaptiveStrategy is a Thompson-sampling bandit over a fixed set of
// candidate delays: each CalculateDelay samples a score per arm from its
// Beta posterior and picks the arm with the highest score, the way a
// classic multi-armed bandit balances exploration and exploitation without
// needing a separate epsilon-greedy schedule.
type adaptiveStrategy struct {
	mu sync.Mutex

	arms       []*arm
	totalPulls int
	rnd        *rand.Rand
}

func newAdaptive(opts Options) *adaptiveStrategy {
	arms := make([]*arm, len(opts.DelayCandidates))
	for i, d := range opts.DelayCandidates {
		arms[i] = &arm{delay: d, alpha: 1, beta: 1}
	}
	return &adaptiveStrategy{
		arms: arms,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (a *adaptiveStrategy) CalculateDelay(Params) time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()

	best := a.arms[0]
	bestScore := sampleBeta(a.rnd, best.alpha, best.beta)
	for _, candidate := range a.arms[1:] {
		score := sampleBeta(a.rnd, candidate.alpha, candidate.beta)
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	best.pulls++
	a.totalPulls++
	return best.delay
}

func (a *adaptiveStrategy) Update(o common.Outcome) {
	reward := computeReward(o)

	a.mu.Lock()
	defer a.mu.Unlock()
	if o.HedgeDelay == nil {
		return
	}
	for _, candidate := range a.arms {
		if candidate.delay == *o.HedgeDelay {
			candidate.alpha += reward
			candidate.beta += 1 - reward
			candidate.rewardSum += reward
			return
		}
	}
	// Delay does not match a known candidate; ignore per spec §4.2.3.
}

// computeReward implements the branches of spec §4.2.3's update reward
// function, in order.
func computeReward(o common.Outcome) float64 {
	switch {
	case o.HedgeWon:
		if o.PrimaryLatency == nil || o.BackupLatency == nil || o.HedgeDelay == nil {
			return 0
		}
		saved := *o.PrimaryLatency - (*o.HedgeDelay + *o.BackupLatency)
		return clamp01(float64(saved) / float64(500*time.Millisecond))
	case o.Hedged:
		return 0
	case o.TotalLatency < 200*time.Millisecond:
		return 0.8
	default:
		return 0.5
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// sampleBeta draws a Beta(alpha, beta) sample via the standard
// Gamma(alpha,1)/(Gamma(alpha,1)+Gamma(beta,1)) construction.
func sampleBeta(rnd *rand.Rand, alpha, beta float64) float64 {
	x := sampleGamma(rnd, alpha)
	y := sampleGamma(rnd, beta)
	if x+y == 0 {
		return 0
	}
	return x / (x + y)
}

// sampleGamma draws a Gamma(shape, 1) sample using the Marsaglia-Tsang
// method, boosting shapes < 1 via the standard u^(1/shape) transform.
func sampleGamma(rnd *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := rnd.Float64()
		return sampleGamma(rnd, shape+1) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		x := rnd.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rnd.Float64()
		if u < 1-0.0331*(x*x*x*x) {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

func (a *adaptiveStrategy) Kind() Kind { return Adaptive }

func (a *adaptiveStrategy) Stats() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	armStats := make([]map[string]any, len(a.arms))
	for i, candidate := range a.arms {
		armStats[i] = map[string]any{
			"delay_ms":   candidate.delay,
			"alpha":      candidate.alpha,
			"beta":       candidate.beta,
			"pulls":      candidate.pulls,
			"reward_sum": candidate.rewardSum,
		}
	}
	return map[string]any{
		"total_pulls": a.totalPulls,
		"arms":        armStats,
	}
}

func (a *adaptiveStrategy) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, candidate := range a.arms {
		candidate.alpha = 1
		candidate.beta = 1
		candidate.pulls = 0
		candidate.rewardSum = 0
	}
	a.totalPulls = 0
}
