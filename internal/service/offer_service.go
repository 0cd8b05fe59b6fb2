package service

import (
	"context"
	"fmt"
	"time"

	"callpulse/internal/model"
	"callpulse/internal/repository"
	"callpulse/pkg/logger"
)

// OfferService combines the instance window, targeting, sampling and
// eligibility checks into a single offer decision for a completed call.
type OfferService struct {
	instanceRepo repository.InstanceRepo
	eligibility  *EligibilityService
	log          logger.Logger
}

func NewOfferService(instanceRepo repository.InstanceRepo, eligibility *EligibilityService, log logger.Logger) *OfferService {
	return &OfferService{
		instanceRepo: instanceRepo,
		eligibility:  eligibility,
		log:          log,
	}
}

// OfferRequest describes the completed call an offer is evaluated for.
type OfferRequest struct {
	InstanceID string
	CallerID   string
	TenantID   string
	QueueName  string
	AgentID    string
}

// EvaluateOffer decides whether the caller should be offered the survey.
// Cheap structural checks run before the ledger lookup; the first failing
// check decides the verdict and its reason.
func (s *OfferService) EvaluateOffer(ctx context.Context, req OfferRequest) (*model.OfferDecision, error) {
	if req.InstanceID == "" {
		return nil, fmt.Errorf("%w: instance id is required", ErrInvalidInput)
	}
	if req.CallerID == "" {
		return nil, fmt.Errorf("%w: caller id is required", ErrInvalidInput)
	}
	if req.TenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidInput)
	}

	inst, err := s.instanceRepo.GetByID(ctx, req.InstanceID)
	if err != nil {
		return nil, err
	}
	if inst == nil || (inst.TenantID != "" && inst.TenantID != req.TenantID) {
		return nil, fmt.Errorf("%w: instance %s", ErrNotFound, req.InstanceID)
	}

	if !inst.InWindow(time.Now()) {
		return &model.OfferDecision{Reason: "instance not active"}, nil
	}
	if req.QueueName != "" && !inst.TargetsQueue(req.QueueName) {
		return &model.OfferDecision{Reason: "queue not targeted"}, nil
	}
	if req.AgentID != "" && !inst.TargetsAgent(req.AgentID) {
		return &model.OfferDecision{Reason: "agent not targeted"}, nil
	}

	sampled, err := ShouldSample(req.CallerID, inst.SamplingPercentage)
	if err != nil {
		return nil, err
	}
	if !sampled {
		return &model.OfferDecision{Reason: "not sampled"}, nil
	}

	eligible, reason, err := s.eligibility.IsEligible(ctx, req.CallerID, req.TenantID, req.InstanceID)
	if err != nil {
		return nil, err
	}

	decision := &model.OfferDecision{
		Offer:    eligible,
		Sampled:  true,
		Eligible: eligible,
		Reason:   reason,
	}
	s.log.Debug("offer evaluated",
		"instanceId", req.InstanceID, "callerId", req.CallerID,
		"offer", decision.Offer, "reason", decision.Reason)
	return decision, nil
}
