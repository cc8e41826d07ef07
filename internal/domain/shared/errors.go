// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrExpired         = errors.New("expired")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "matching", "mentorship", "block"
	Op      string // Operation that failed, e.g., "Create", "Transition"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Profile domain errors
var (
	ErrSeekerNotFound    = NewDomainError("profile", "FindSeeker", ErrNotFound, "seeker profile not found")
	ErrCandidateNotFound = NewDomainError("profile", "FindCandidate", ErrNotFound, "candidate profile not found")
	ErrInvalidPartyID    = NewDomainError("profile", "Validate", ErrInvalidID, "invalid party ID")
)

// Matching domain errors
var (
	ErrNoActiveSession  = NewDomainError("matching", "Current", ErrInvalidState, "no active matching session")
	ErrQueueExhausted   = NewDomainError("matching", "Current", ErrInvalidState, "matching queue is exhausted")
	ErrNoMatchesFound   = NewDomainError("matching", "Start", ErrNotFound, "no candidates cleared the threshold")
	ErrInvalidThreshold = NewDomainError("matching", "Validate", ErrValueOutOfRange, "threshold must be between 0 and 100")
)

// Mentorship domain errors
var (
	ErrRequestNotFound        = NewDomainError("mentorship", "Find", ErrNotFound, "mentorship request not found")
	ErrDuplicateRequest       = NewDomainError("mentorship", "Create", ErrAlreadyExists, "pending request already exists for this pair")
	ErrInvalidTransition      = NewDomainError("mentorship", "Transition", ErrStateTransition, "request already finalized with a different status")
	ErrUnauthorizedTransition = NewDomainError("mentorship", "Transition", ErrUnauthorized, "only the candidate may accept or decline")
	ErrSelfRequest            = NewDomainError("mentorship", "Create", ErrInvalidInput, "cannot request mentorship from self")
)

// Block domain errors
var (
	ErrBlockedPair  = NewDomainError("block", "Check", ErrForbidden, "interaction is blocked between these parties")
	ErrSelfBlock    = NewDomainError("block", "Create", ErrInvalidInput, "cannot block self")
	ErrInvalidBlock = NewDomainError("block", "Validate", ErrInvalidEntity, "invalid block relation")
)

// External store errors
var (
	ErrStoreUnavailable     = NewDomainError("store", "Request", ErrServiceUnavailable, "profile store is unavailable")
	ErrStoreTimeout         = NewDomainError("store", "Request", ErrTimeout, "profile store request timeout")
	ErrMatchRPCUnavailable  = NewDomainError("matchrpc", "Request", ErrServiceUnavailable, "match RPC backend is unavailable")
	ErrMatchRPCBadResponse  = NewDomainError("matchrpc", "Parse", ErrInvalidFormat, "invalid response from match RPC backend")
	ErrMatchRPCRateLimited  = NewDomainError("matchrpc", "Request", ErrRateLimited, "match RPC rate limit exceeded")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsUnauthorized checks if the error is an authorization error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

// IsRetryable checks if the operation can be retried.
// StoreUnavailable errors carry a retry hint for callers; the engine itself
// never retries automatically.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
