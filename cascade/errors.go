package cascade

import (
	"errors"
	"fmt"
)

// ErrorKind names the kind of failure a cascade run can produce, mirroring
// hedge.ErrorKind but with the multi-tier-specific kinds from spec §7.
type ErrorKind string

const (
	// ErrorKindConfigInvalid means the tier list itself was invalid (e.g.
	// empty) at Run entry.
	ErrorKindConfigInvalid ErrorKind = "config_invalid"
	// ErrorKindAllTiersFailed means every tier returned Err and none
	// produced an Ok, even ignoring quality gates.
	ErrorKindAllTiersFailed ErrorKind = "all_tiers_failed"
	// ErrorKindInvalidQualityScore names a Scored result whose score lies
	// outside [0, 1]. Run never returns it: Gate compares whatever value
	// Score reports against the threshold without a range check.
	ErrorKindInvalidQualityScore ErrorKind = "invalid_quality_score"
)

// Error is the tagged error type Run returns on failure.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cascade: %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("cascade: %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func newError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}
