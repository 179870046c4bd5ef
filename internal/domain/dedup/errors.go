package dedup

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInput marks a malformed registration (missing or unusable name,
	// undecodable body, unknown registration kind).
	ErrInput = errors.New("invalid input")

	// ErrPolicyDisabled signals that the policy exempts a record from
	// validation. It is a no-op signal, not a failure.
	ErrPolicyDisabled = errors.New("validation skipped by policy")
)

// SkipError carries the policy rule behind ErrPolicyDisabled.
type SkipError struct {
	Reason SkipReason
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPolicyDisabled, e.Reason)
}

func (e *SkipError) Is(target error) bool {
	return target == ErrPolicyDisabled
}

func inputErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInput, fmt.Sprintf(format, args...))
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
