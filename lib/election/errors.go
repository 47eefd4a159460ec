// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package election

import (
	"errors"
	"fmt"
)

// ErrInvalidData wraps failures to interpret persisted or
// serialized structures.
var ErrInvalidData = errors.New("invalid data")

// ValidationError reports malformed or logically inconsistent input,
// optionally naming the offending field.
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{
		Message: fmt.Sprintf(format, args...),
		Field:   field,
	}
}

// InsufficientCandidatesError reports a requested active set size
// exceeding the number of available candidates. It is distinct from
// ValidationError so callers can retry with a smaller size.
type InsufficientCandidatesError struct {
	Requested uint32
	Available uint32
}

func (e *InsufficientCandidatesError) Error() string {
	return fmt.Sprintf("insufficient candidates: requested %d, available %d",
		e.Requested, e.Available)
}

// AlgorithmError reports a selection algorithm failing to converge or
// violating one of its invariants.
type AlgorithmError struct {
	Algorithm Algorithm
	Message   string
}

func (e *AlgorithmError) Error() string {
	return fmt.Sprintf("algorithm %s failed: %s", e.Algorithm, e.Message)
}
