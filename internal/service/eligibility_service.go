package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"callpulse/internal/model"
	"callpulse/internal/repository"
)

// ledgerRetries bounds how often a lost ledger race is retried before
// surfacing a conflict.
const ledgerRetries = 3

// EligibilityService decides whether a caller may be surveyed and records
// completed surveys in the per-caller ledger.
type EligibilityService struct {
	eligRepo     repository.EligibilityRepo
	instanceRepo repository.InstanceRepo

	maxSurveys      int
	defaultCooldown time.Duration
}

// NewEligibilityService creates the evaluator. Zero or negative defaults
// fall back to 10 surveys and a 24h cooldown.
func NewEligibilityService(eligRepo repository.EligibilityRepo, instanceRepo repository.InstanceRepo, maxSurveys, defaultCooldownHours int) *EligibilityService {
	if maxSurveys <= 0 {
		maxSurveys = 10
	}
	if defaultCooldownHours <= 0 {
		defaultCooldownHours = 24
	}
	return &EligibilityService{
		eligRepo:        eligRepo,
		instanceRepo:    instanceRepo,
		maxSurveys:      maxSurveys,
		defaultCooldown: time.Duration(defaultCooldownHours) * time.Hour,
	}
}

// IsEligible checks the ledger rules in precedence order: unknown caller,
// blacklist, cooldown, survey cap. The first matching rule wins and the
// check never mutates anything.
func (s *EligibilityService) IsEligible(ctx context.Context, callerID, tenantID, instanceID string) (bool, string, error) {
	if callerID == "" {
		return false, "", fmt.Errorf("%w: caller id is required", ErrInvalidInput)
	}
	if tenantID == "" {
		return false, "", fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}

	cooldown := s.defaultCooldown
	if instanceID != "" {
		inst, err := s.instanceRepo.GetByID(ctx, instanceID)
		if err != nil {
			return false, "", err
		}
		if inst == nil {
			return false, "", fmt.Errorf("%w: instance %s", ErrNotFound, instanceID)
		}
		// An explicit 0 means no cooldown; only an unset value falls
		// back to the tenant default.
		if inst.CooldownHours != nil {
			cooldown = time.Duration(*inst.CooldownHours) * time.Hour
		}
	}

	elig, err := s.eligRepo.Get(ctx, callerID, tenantID)
	if err != nil {
		return false, "", err
	}
	if elig == nil {
		return true, "new caller", nil
	}

	if elig.IsBlacklisted {
		return false, fmt.Sprintf("blacklisted: %s", elig.BlacklistReason), nil
	}

	if elig.LastSurveyed != nil && time.Since(*elig.LastSurveyed) < cooldown {
		return false, "still in cooldown period", nil
	}

	if elig.SurveyCount >= s.maxSurveys {
		return false, "maximum survey count reached", nil
	}

	return true, "eligible", nil
}

// RecordCompletion advances the ledger after a completed survey. The
// underlying upsert is atomic per caller; an insert race is retried a
// bounded number of times before surfacing as a conflict. Callers must
// invoke this exactly once per completed response.
func (s *EligibilityService) RecordCompletion(ctx context.Context, callerID, tenantID string, now time.Time) error {
	if callerID == "" || tenantID == "" {
		return fmt.Errorf("%w: caller id and tenant id are required", ErrInvalidInput)
	}

	var lastErr error
	for attempt := 0; attempt < ledgerRetries; attempt++ {
		err := s.eligRepo.RecordCompletion(ctx, callerID, tenantID, now)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: ledger update for caller %s: %v", ErrConflictingUpdate, callerID, lastErr)
}

// Blacklist marks a caller as never-survey. Ledger rows are never reset
// automatically; lifting a blacklist is an explicit admin action.
func (s *EligibilityService) Blacklist(ctx context.Context, callerID, tenantID string, blacklisted bool, reason string) error {
	if callerID == "" || tenantID == "" {
		return fmt.Errorf("%w: caller id and tenant id are required", ErrInvalidInput)
	}
	return s.eligRepo.SetBlacklist(ctx, callerID, tenantID, blacklisted, reason)
}

// GetLedger returns the raw ledger row, nil when the caller is unknown.
func (s *EligibilityService) GetLedger(ctx context.Context, callerID, tenantID string) (*model.CallerEligibility, error) {
	if callerID == "" || tenantID == "" {
		return nil, fmt.Errorf("%w: caller id and tenant id are required", ErrInvalidInput)
	}
	return s.eligRepo.Get(ctx, callerID, tenantID)
}
