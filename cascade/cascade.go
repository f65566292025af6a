package cascade

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"

	"github.com/North-Shore-AI/crucible-hedging/telemetry"
)

// waitGrace returns a channel that closes once d has elapsed or parent is
// cancelled, whichever comes first. The single-goroutine errgroup here
// exists to fold timer-vs-cancellation racing into one joinable task
// instead of a second hand-rolled select, mirroring how the teacher's
// executor packages bound a child wait with errgroup.
func waitGrace(parent context.Context, d time.Duration) <-chan struct{} {
	g, gctx := errgroup.WithContext(parent)
	g.Go(func() error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})
	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()
	return done
}

// Config configures a Run call.
type Config struct {
	TelemetryPrefix string
	Bus             *telemetry.Bus
	// GracePeriod bounds how long Run waits for background tiers once
	// every tier has been spawned and none has won outright. Defaults to
	// 100ms per spec §4.3.
	GracePeriod time.Duration
	// Logger, if set, receives debug-level events for tier spawns,
	// escalations, and resolution, the way the teacher's limiter builders
	// accept an optional *slog.Logger.
	Logger *slog.Logger
}

func (c Config) debugf(msg string, args ...any) {
	if c.Logger != nil && c.Logger.Enabled(nil, slog.LevelDebug) {
		c.Logger.Debug(msg, args...)
	}
}

func (c Config) bus() *telemetry.Bus {
	if c.Bus != nil {
		return c.Bus
	}
	return telemetry.NewBus(c.TelemetryPrefix)
}

func (c Config) gracePeriod() time.Duration {
	if c.GracePeriod > 0 {
		return c.GracePeriod
	}
	return 100 * time.Millisecond
}

type result[T any] struct {
	index int
	value T
	err   error
}

// Run executes an ordered cascade of tiers: it waits up to each tier's
// delay before escalating to the next one, leaving earlier tiers running
// in the background, and resolves per the algorithm in spec §4.3.
func Run[T any](ctx context.Context, tiers []Tier[T], cfg Config) (T, Outcome, error) {
	var zero T
	if len(tiers) == 0 {
		return zero, Outcome{}, newError(ErrorKindConfigInvalid, errors.New("tier list must not be empty"))
	}

	bus := cfg.bus()
	bus.Emit(telemetry.SuffixMultiLevelStart, nil, nil)

	ctx2, cancelAll := context.WithCancel(ctx)
	defer cancelAll()

	n := len(tiers)
	fired := bitset.New(uint(n))
	cancels := make([]context.CancelFunc, n)
	known := make([]*result[T], n)
	resultCh := make(chan result[T], n)

	spawn := func(i int) {
		tierCtx, cancel := context.WithCancel(ctx2)
		cancels[i] = cancel
		fired.Set(uint(i))
		cfg.debugf("cascade: spawning tier", "tier", tiers[i].Name, "index", i)
		bus.Emit(telemetry.SuffixTierStart, nil, map[string]any{"tier": tiers[i].Name, "index": i})
		go func() {
			v, err := tiers[i].RequestFn(tierCtx)
			resultCh <- result[T]{index: i, value: v, err: err}
		}()
	}

	totalCost := func() float64 {
		var sum float64
		for i := 0; i < n; i++ {
			if fired.Test(uint(i)) {
				sum += tiers[i].Cost
			}
		}
		return sum
	}

	cancelAllBut := func(keep int) {
		for i := 0; i < n; i++ {
			if i != keep && known[i] == nil && cancels[i] != nil {
				bus.Emit(telemetry.SuffixTierCancelled, nil, map[string]any{"tier": tiers[i].Name, "index": i})
				cancels[i]()
			}
		}
	}

	win := func(i int, r result[T]) (T, Outcome, error) {
		cancelAllBut(i)
		out := Outcome{Tier: tiers[i].Name, TierIndex: i, GateSatisfied: true, HedgesFired: i, TotalCost: totalCost()}
		bus.Emit(telemetry.SuffixTierCompleted, nil, map[string]any{"tier": tiers[i].Name, "index": i})
		bus.Emit(telemetry.SuffixMultiLevelStop, map[string]float64{"total_cost": out.TotalCost}, map[string]any{"tier": tiers[i].Name})
		return r.value, out, nil
	}

	currentIdx := 0
	spawn(0)
	advanceTimer := time.NewTimer(tiers[0].Delay)
	advancing := true
	var graceDone <-chan struct{}

	enterGrace := func() {
		advancing = false
		graceDone = waitGrace(ctx2, cfg.gracePeriod())
	}

	for {
		var advanceTimerC <-chan time.Time
		if advancing {
			advanceTimerC = advanceTimer.C
		}

		select {
		case <-ctx2.Done():
			cancelAllBut(-1)
			bus.Emit(telemetry.SuffixMultiLevelException, nil, nil)
			return zero, Outcome{}, newError(ErrorKindAllTiersFailed, ctx2.Err())

		case r := <-resultCh:
			known[r.index] = &r
			if r.err != nil {
				bus.Emit(telemetry.SuffixTierTimeout, nil, map[string]any{"tier": tiers[r.index].Name, "index": r.index})
			}
			if advancing && r.index == currentIdx {
				if r.err == nil && Gate(r.value, tiers[r.index].QualityThreshold) {
					return win(r.index, r)
				}
				if r.err != nil {
					advanceTimer.Stop()
					currentIdx++
					if currentIdx < len(tiers) {
						spawn(currentIdx)
						advanceTimer = time.NewTimer(tiers[currentIdx].Delay)
					} else {
						enterGrace()
					}
				}
				// Ok but gate not satisfied: keep waiting out this tier's
				// own delay before escalating.
			}

		case <-advanceTimerC:
			currentIdx++
			if currentIdx < len(tiers) {
				spawn(currentIdx)
				advanceTimer = time.NewTimer(tiers[currentIdx].Delay)
			} else {
				enterGrace()
			}

		case <-graceDone:
			cfg.debugf("cascade: grace period elapsed, resolving")
			return resolve(tiers, known, cancelAllBut, totalCost, bus)
		}

		if !advancing && allResolved(known) {
			return resolve(tiers, known, cancelAllBut, totalCost, bus)
		}
	}
}

func allResolved[T any](known []*result[T]) bool {
	for _, r := range known {
		if r == nil {
			return false
		}
	}
	return true
}

// resolve implements spec §4.3 step 4's fallback selection once the grace
// period has elapsed (or every tier's outcome is already known): the first
// tier by list order whose Ok satisfies its gate, else the first Ok at
// all, else AllTiersFailed.
func resolve[T any](tiers []Tier[T], known []*result[T], cancelAllBut func(int), totalCost func() float64, bus *telemetry.Bus) (T, Outcome, error) {
	var zero T
	for i, r := range known {
		if r != nil && r.err == nil && Gate(r.value, tiers[i].QualityThreshold) {
			cancelAllBut(i)
			out := Outcome{Tier: tiers[i].Name, TierIndex: i, GateSatisfied: true, HedgesFired: i, TotalCost: totalCost()}
			bus.Emit(telemetry.SuffixMultiLevelStop, map[string]float64{"total_cost": out.TotalCost}, map[string]any{"tier": tiers[i].Name})
			return r.value, out, nil
		}
	}
	for i, r := range known {
		if r != nil && r.err == nil {
			cancelAllBut(i)
			out := Outcome{Tier: tiers[i].Name, TierIndex: i, GateSatisfied: false, HedgesFired: i, TotalCost: totalCost()}
			bus.Emit(telemetry.SuffixMultiLevelStop, map[string]float64{"total_cost": out.TotalCost}, map[string]any{"tier": tiers[i].Name})
			return r.value, out, nil
		}
	}
	cancelAllBut(-1)
	bus.Emit(telemetry.SuffixMultiLevelException, nil, map[string]any{"total_cost": totalCost()})
	return zero, Outcome{TotalCost: totalCost()}, newError(ErrorKindAllTiersFailed, errors.New("every tier returned an error"))
}
