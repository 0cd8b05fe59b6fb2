package service

import "errors"

// Error kinds surfaced to callers. The REST layer maps these to status
// codes; none of them is fatal to the process.
var (
	// ErrInvalidInput marks a missing or malformed required field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflictingUpdate marks a ledger mutation that lost a race after
	// the internal retries were exhausted.
	ErrConflictingUpdate = errors.New("conflicting update")

	// ErrUpstreamUnavailable marks a collaborator failure (sentiment
	// scorer, webhook target, calld). Callers treat it as a soft failure.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
