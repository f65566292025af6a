package hedge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/North-Shore-AI/crucible-hedging/common"
	"github.com/North-Shore-AI/crucible-hedging/strategy"
	"github.com/North-Shore-AI/crucible-hedging/telemetry"
)

// attemptResult is one goroutine's delivered outcome, timestamped and
// ranked the instant it was known, per the race resolution rule in spec
// §4.1.
type attemptResult[T any] struct {
	role       common.Role
	startedAt  time.Time
	finishedAt time.Time
	rank       int64
	value      T
	err        error
}

// Request performs a single hedged call: it runs f, and — unless the
// strategy says never to hedge — races a bounded set of delayed backups
// against it, returning the first successful result along with outcome
// metadata. See spec §4.1 for the full state machine.
func Request[T any](ctx context.Context, f func(context.Context) (T, error), cfg Config) (res T, outcome common.Outcome, retErr error) {
	var zero T
	callStart := time.Now()

	// Guards against bugs in the executor's own control flow (not the
	// caller's f, which has its own recovery below): per spec §7, an
	// unexpected panic here is caught and reported as Err(internal)
	// instead of crashing the process.
	defer func() {
		if r := recover(); r != nil {
			res = zero
			outcome = common.Outcome{}
			retErr = newError(ErrorKindInternal, fmt.Errorf("panic: %v", r), 0, time.Since(callStart))
		}
	}()

	if err := cfg.validate(); err != nil {
		return zero, common.Outcome{}, newError(ErrorKindConfigInvalid, err, 0, 0)
	}

	inst, err := cfg.registry().Start(cfg.StrategyKind, cfg.strategyName(), cfg.StrategyOptions)
	if err != nil {
		return zero, common.Outcome{}, newError(ErrorKindConfigInvalid, err, 0, 0)
	}

	requestID := uuid.NewString()
	bus := cfg.bus()

	debugf := func(msg string, args ...any) {
		if cfg.Logger != nil && cfg.Logger.Enabled(nil, slog.LevelDebug) {
			cfg.Logger.Debug(msg, append([]any{"request_id", requestID}, args...)...)
		}
	}

	// safeUpdate calls the strategy's Update hook, recovering from any
	// panic so a misbehaving strategy can't take down an already-decided
	// outcome (spec §7: strategy panics during update are caught, logged,
	// and do not affect the returned outcome).
	safeUpdate := func(o common.Outcome) {
		defer func() {
			if r := recover(); r != nil {
				if cfg.Logger != nil {
					cfg.Logger.Error("hedge: strategy update panicked", "request_id", requestID, "error", r)
				}
			}
		}()
		inst.Update(o)
	}

	delay := inst.CalculateDelay(cfg.StrategyParams)
	var hedgeDelayPtr *time.Duration
	if delay >= 0 {
		d := delay
		hedgeDelayPtr = &d
	}

	bus.Emit(telemetry.SuffixRequestStart,
		map[string]float64{"system_time": float64(callStart.UnixMilli())},
		map[string]any{"request_id": requestID, "strategy": string(cfg.StrategyKind)})

	ctx2, cancelAll := context.WithTimeout(ctx, cfg.Timeout)
	defer cancelAll()

	// Total spawns per call are already bounded by backupsFired <
	// cfg.MaxHedges below, so attempts never exceed 1+MaxHedges in
	// flight; no separate concurrency primitive is needed to enforce it.
	capacity := cfg.MaxHedges + 1
	resultCh := make(chan attemptResult[T], capacity)

	type attemptHandle struct {
		role   common.Role
		cancel context.CancelFunc
	}
	handles := make([]attemptHandle, 0, capacity)
	completed := make(map[common.Role]bool, capacity)
	budgetAcquired := make(map[common.Role]bool, capacity)

	spawn := func(role common.Role) {
		attemptCtx, cancel := context.WithCancel(ctx2)
		handles = append(handles, attemptHandle{role: role, cancel: cancel})
		started := time.Now()
		go func() {
			// An attempt's scheduling entity crashing is treated as an
			// ordinary Err result (reason "crashed") per spec §4.1: it
			// races and fails like any other attempt, it never crashes
			// the executor goroutine.
			defer func() {
				if r := recover(); r != nil {
					resultCh <- attemptResult[T]{
						role: role, startedAt: started, finishedAt: time.Now(),
						rank: common.NextCompletionRank(), err: fmt.Errorf("crashed: %v", r),
					}
				}
			}()
			v, ferr := f(attemptCtx)
			resultCh <- attemptResult[T]{role: role, startedAt: started, finishedAt: time.Now(), rank: common.NextCompletionRank(), value: v, err: ferr}
		}()
	}

	acquireBudget := func() bool {
		if cfg.Budget == nil {
			return true
		}
		return cfg.Budget.TryAcquire()
	}

	releaseBudget := func(role common.Role) {
		if cfg.Budget == nil || !budgetAcquired[role] {
			return
		}
		delete(budgetAcquired, role)
		cfg.Budget.Release()
	}

	spawn(common.RolePrimary)
	outstanding := 1
	backupsFired := 0
	hedgeFired := false
	var all []attemptResult[T]

	var timer *time.Timer
	var timerC <-chan time.Time
	if delay >= 0 {
		timer = time.NewTimer(delay)
		timerC = timer.C
	}

	cancelLosers := func(winner common.Role) {
		if !cfg.EnableCancellation {
			return
		}
		for _, h := range handles {
			if h.role == winner || completed[h.role] {
				continue
			}
			bus.Emit(telemetry.SuffixRequestCancelled, nil, map[string]any{"request_id": requestID, "role": h.role.String()})
			h.cancel()
		}
	}

	buildOutcome := func(hedgeWon bool, primaryLatency, backupLatency *time.Duration, cost float64) common.Outcome {
		total := time.Since(callStart)
		if primaryLatency == nil {
			for _, r := range all {
				if r.role.IsPrimary() {
					l := r.finishedAt.Sub(r.startedAt)
					primaryLatency = &l
					break
				}
			}
		}
		return common.Outcome{
			RequestID:      requestID,
			Hedged:         hedgeFired,
			HedgeWon:       hedgeWon,
			HedgeDelay:     hedgeDelayPtr,
			PrimaryLatency: primaryLatency,
			BackupLatency:  backupLatency,
			TotalLatency:   total,
			Cost:           cost,
			StrategyKind:   string(cfg.StrategyKind),
		}
	}

	finishOk := func(winner attemptResult[T]) (T, common.Outcome, error) {
		latency := winner.finishedAt.Sub(winner.startedAt)
		var primaryLatency, backupLatency *time.Duration
		if winner.role.IsPrimary() {
			primaryLatency = &latency
		} else {
			backupLatency = &latency
			// hedge.won must precede any request.cancelled emitted by
			// cancelLosers below, per spec §4.5's event ordering.
			bus.Emit(telemetry.SuffixHedgeWon, map[string]float64{"latency": float64(latency.Milliseconds())}, map[string]any{"request_id": requestID})
		}
		cancelLosers(winner.role)
		cost := float64(1 + backupsFired)
		outcome := buildOutcome(!winner.role.IsPrimary(), primaryLatency, backupLatency, cost)
		bus.Emit(telemetry.SuffixRequestStop, map[string]float64{"duration": float64(outcome.TotalLatency.Milliseconds())},
			map[string]any{"request_id": requestID, "hedged": outcome.Hedged, "hedge_won": outcome.HedgeWon, "cost": outcome.Cost})
		debugf("hedge: request resolved", "winner", winner.role.String(), "hedge_won", outcome.HedgeWon, "cost", cost)
		safeUpdate(outcome)
		cfg.recordMetrics(outcome)
		return winner.value, outcome, nil
	}

	finishErr := func(kind ErrorKind, cause error) (T, common.Outcome, error) {
		for _, h := range handles {
			if !completed[h.role] {
				bus.Emit(telemetry.SuffixRequestCancelled, nil, map[string]any{"request_id": requestID, "role": h.role.String()})
				h.cancel()
			}
		}
		cost := float64(1 + backupsFired)
		outcome := buildOutcome(false, nil, nil, cost)
		outcome.Err = cause
		elapsed := outcome.TotalLatency
		bus.Emit(telemetry.SuffixRequestException, map[string]float64{"duration": float64(elapsed.Milliseconds())},
			map[string]any{"request_id": requestID})
		safeUpdate(outcome)
		cfg.recordMetrics(outcome)
		return zero, outcome, newError(kind, cause, len(handles), elapsed)
	}

	earliestErr := func() error {
		if len(all) == 0 {
			return fmt.Errorf("all attempts failed")
		}
		best := all[0]
		for _, r := range all[1:] {
			if r.finishedAt.Before(best.finishedAt) || (r.finishedAt.Equal(best.finishedAt) && r.rank < best.rank) {
				best = r
			}
		}
		return best.err
	}

	for {
		select {
		case <-ctx2.Done():
			if timer != nil {
				timer.Stop()
			}
			return finishErr(ErrorKindTimeout, ctx2.Err())

		case first := <-resultCh:
			batch := []attemptResult[T]{first}
		drain:
			for {
				select {
				case r := <-resultCh:
					batch = append(batch, r)
				default:
					break drain
				}
			}
			sortBatch(batch)

			var winner *attemptResult[T]
			for i := range batch {
				completed[batch[i].role] = true
				releaseBudget(batch[i].role)
				all = append(all, batch[i])
				if batch[i].err == nil && winner == nil {
					w := batch[i]
					winner = &w
				}
			}
			outstanding -= len(batch)

			if winner != nil {
				if timer != nil {
					timer.Stop()
				}
				return finishOk(*winner)
			}

			if ctx2.Err() != nil {
				// The deadline elapsed while these failures were in flight
				// (an attempt that observed it reports ctx.Err()): the call
				// ends as a timeout, the same as the ctx2.Done case above.
				if timer != nil {
					timer.Stop()
				}
				return finishErr(ErrorKindTimeout, ctx2.Err())
			}

			if !hedgeFired {
				// The primary (no backup spawned yet) failed before the
				// hedge delay elapsed: terminal per spec §4.1's failure
				// semantics, never fire a backup for it.
				if timer != nil {
					timer.Stop()
				}
				return finishErr(ErrorKindRequestFailed, batch[len(batch)-1].err)
			}

			if outstanding == 0 {
				return finishErr(ErrorKindAllTasksFailed, earliestErr())
			}
			// Otherwise keep waiting: some attempts are still outstanding.

		case <-timerC:
			if !acquireBudget() {
				// Budget exhausted: skip this backup and fall back to
				// awaiting whatever is already in flight, per the
				// hedge-rate admission control this option adds.
				debugf("hedge: backup denied by budget", "backup_index", backupsFired+1)
				timer = nil
				timerC = nil
				continue
			}

			backupsFired++
			hedgeFired = true
			outstanding++
			role := common.Role(backupsFired)
			budgetAcquired[role] = true
			bus.Emit(telemetry.SuffixHedgeFired, map[string]float64{"delay": float64(delay.Milliseconds())}, map[string]any{"request_id": requestID})
			debugf("hedge: firing backup", "backup_index", backupsFired)
			spawn(role)

			if backupsFired < cfg.MaxHedges {
				stagger := time.Duration(float64(delay) * pow15(backupsFired))
				timer = time.NewTimer(stagger)
				timerC = timer.C
			} else {
				timer = nil
				timerC = nil
			}
		}
	}
}

// sortBatch orders results by (finished_at, completion_rank), the race
// resolution rule from spec §4.1.
func sortBatch[T any](batch []attemptResult[T]) {
	for i := 1; i < len(batch); i++ {
		j := i
		for j > 0 && less(batch[j], batch[j-1]) {
			batch[j], batch[j-1] = batch[j-1], batch[j]
			j--
		}
	}
}

func less[T any](a, b attemptResult[T]) bool {
	if a.finishedAt.Equal(b.finishedAt) {
		return a.rank < b.rank
	}
	return a.finishedAt.Before(b.finishedAt)
}

// pow15 returns 1.5^k, used for the geometric stagger between successive
// backups.
func pow15(k int) float64 {
	v := 1.0
	for i := 0; i < k; i++ {
		v *= 1.5
	}
	return v
}

func (c Config) recordMetrics(o common.Outcome) {
	if c.MetricsSink != nil {
		c.MetricsSink.Record(o)
	}
}
