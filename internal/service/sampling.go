package service

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ShouldSample decides whether a caller falls inside the sampling
// percentage for an instance. The decision is a pure function of the
// caller ID: hashing instead of rolling dice keeps repeated offer checks
// for the same caller consistent across requests and restarts.
func ShouldSample(callerID string, percentage float64) (bool, error) {
	if callerID == "" {
		return false, fmt.Errorf("%w: caller id is required", ErrInvalidInput)
	}
	if percentage <= 0 {
		return false, nil
	}
	if percentage >= 100 {
		return true, nil
	}

	bucket := xxhash.Sum64String(callerID) % 100
	return float64(bucket) < percentage, nil
}
