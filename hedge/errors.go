// Package hedge implements the hedging executor (Component C): a
// per-request state machine that launches a primary attempt, schedules a
// bounded set of delayed backups, races them, and produces a result plus
// structured outcome metadata. It is grounded on failsafe-go's
// hedgepolicy package, generalized from a composable Policy[R] into a
// single, self-contained entry point per spec §6.
package hedge

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind names the kind of failure a hedged call can produce, per spec
// §7. It is a value, not an exception type hierarchy.
type ErrorKind string

const (
	// ErrorKindConfigInvalid means the configuration violated a validation
	// rule; raised synchronously at Request entry, never via telemetry.
	ErrorKindConfigInvalid ErrorKind = "config_invalid"
	// ErrorKindRequestFailed means the winning (or only) attempt returned
	// a user error, propagated verbatim as Cause.
	ErrorKindRequestFailed ErrorKind = "request_failed"
	// ErrorKindTimeout means the overall deadline elapsed before any
	// attempt produced an Ok result.
	ErrorKindTimeout ErrorKind = "timeout"
	// ErrorKindAllTasksFailed means every spawned attempt returned an
	// error or was cancelled before any Ok.
	ErrorKindAllTasksFailed ErrorKind = "all_tasks_failed"
	// ErrorKindInternal means a panic inside the executor itself was
	// recovered.
	ErrorKindInternal ErrorKind = "internal"
)

// Error is the single tagged error type a hedged call can return, carrying
// enough context to answer "what happened" without a stack trace.
type Error struct {
	Kind         ErrorKind
	Cause        error
	AttemptCount int
	Elapsed      time.Duration
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("hedge: %s after %d attempt(s) in %s: %v", e.Kind, e.AttemptCount, e.Elapsed, e.Cause)
	}
	return fmt.Sprintf("hedge: %s after %d attempt(s) in %s", e.Kind, e.AttemptCount, e.Elapsed)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *Error with the same Kind, so callers can
// write errors.Is(err, &hedge.Error{Kind: hedge.ErrorKindTimeout}).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func newError(kind ErrorKind, cause error, attempts int, elapsed time.Duration) *Error {
	return &Error{Kind: kind, Cause: cause, AttemptCount: attempts, Elapsed: elapsed}
}
