package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"callpulse/internal/model"
)

func newOfferFixture() (*OfferService, *fakeInstanceRepo, *fakeEligibilityRepo) {
	eligRepo := newFakeEligibilityRepo()
	instRepo := newFakeInstanceRepo()
	eligibility := NewEligibilityService(eligRepo, instRepo, 10, 24)
	svc := NewOfferService(instRepo, eligibility, nopLogger())
	return svc, instRepo, eligRepo
}

func activeInstance() *model.SurveyInstance {
	return &model.SurveyInstance{
		ID:                 "inst-1",
		TenantID:           "tenant-1",
		SurveyType:         model.SurveyTypeNPS,
		TriggerMode:        model.TriggerPostCallIVR,
		SamplingPercentage: 100,
		IsActive:           true,
		StartDate:          time.Now().Add(-time.Hour),
	}
}

func TestEvaluateOfferHappyPath(t *testing.T) {
	svc, instRepo, _ := newOfferFixture()
	instRepo.instances["inst-1"] = activeInstance()

	decision, err := svc.EvaluateOffer(context.Background(), OfferRequest{
		InstanceID: "inst-1",
		CallerID:   "+15551234567",
		TenantID:   "tenant-1",
		QueueName:  "support",
	})
	assert.NoError(t, err)
	assert.True(t, decision.Offer)
	assert.True(t, decision.Sampled)
	assert.True(t, decision.Eligible)
	assert.Equal(t, "new caller", decision.Reason)
}

func TestEvaluateOfferInactiveInstance(t *testing.T) {
	svc, instRepo, _ := newOfferFixture()
	inst := activeInstance()
	inst.IsActive = false
	instRepo.instances["inst-1"] = inst

	decision, err := svc.EvaluateOffer(context.Background(), OfferRequest{
		InstanceID: "inst-1", CallerID: "+15551234567", TenantID: "tenant-1",
	})
	assert.NoError(t, err)
	assert.False(t, decision.Offer)
	assert.Equal(t, "instance not active", decision.Reason)
}

func TestEvaluateOfferOutsideWindow(t *testing.T) {
	svc, instRepo, _ := newOfferFixture()
	inst := activeInstance()
	past := time.Now().Add(-time.Minute)
	inst.EndDate = &past
	instRepo.instances["inst-1"] = inst

	decision, err := svc.EvaluateOffer(context.Background(), OfferRequest{
		InstanceID: "inst-1", CallerID: "+15551234567", TenantID: "tenant-1",
	})
	assert.NoError(t, err)
	assert.False(t, decision.Offer)
	assert.Equal(t, "instance not active", decision.Reason)
}

func TestEvaluateOfferQueueNotTargeted(t *testing.T) {
	svc, instRepo, _ := newOfferFixture()
	inst := activeInstance()
	inst.TargetQueues = []string{"sales"}
	instRepo.instances["inst-1"] = inst

	decision, err := svc.EvaluateOffer(context.Background(), OfferRequest{
		InstanceID: "inst-1", CallerID: "+15551234567", TenantID: "tenant-1",
		QueueName: "support",
	})
	assert.NoError(t, err)
	assert.False(t, decision.Offer)
	assert.Equal(t, "queue not targeted", decision.Reason)
}

func TestEvaluateOfferAgentNotTargeted(t *testing.T) {
	svc, instRepo, _ := newOfferFixture()
	inst := activeInstance()
	inst.TargetAgents = []string{"agent-9"}
	instRepo.instances["inst-1"] = inst

	decision, err := svc.EvaluateOffer(context.Background(), OfferRequest{
		InstanceID: "inst-1", CallerID: "+15551234567", TenantID: "tenant-1",
		AgentID: "agent-1",
	})
	assert.NoError(t, err)
	assert.False(t, decision.Offer)
	assert.Equal(t, "agent not targeted", decision.Reason)
}

func TestEvaluateOfferNotSampled(t *testing.T) {
	svc, instRepo, _ := newOfferFixture()
	inst := activeInstance()
	inst.SamplingPercentage = 0
	instRepo.instances["inst-1"] = inst

	decision, err := svc.EvaluateOffer(context.Background(), OfferRequest{
		InstanceID: "inst-1", CallerID: "+15551234567", TenantID: "tenant-1",
	})
	assert.NoError(t, err)
	assert.False(t, decision.Offer)
	assert.False(t, decision.Sampled)
	assert.Equal(t, "not sampled", decision.Reason)
}

func TestEvaluateOfferIneligibleCaller(t *testing.T) {
	svc, instRepo, eligRepo := newOfferFixture()
	instRepo.instances["inst-1"] = activeInstance()
	eligRepo.rows[ledgerKey("+15551234567", "tenant-1")] = &model.CallerEligibility{
		CallerID: "+15551234567", TenantID: "tenant-1",
		IsBlacklisted: true, BlacklistReason: "opted out",
	}

	decision, err := svc.EvaluateOffer(context.Background(), OfferRequest{
		InstanceID: "inst-1", CallerID: "+15551234567", TenantID: "tenant-1",
	})
	assert.NoError(t, err)
	assert.False(t, decision.Offer)
	assert.True(t, decision.Sampled)
	assert.False(t, decision.Eligible)
	assert.Equal(t, "blacklisted: opted out", decision.Reason)
}

func TestEvaluateOfferWrongTenant(t *testing.T) {
	svc, instRepo, _ := newOfferFixture()
	instRepo.instances["inst-1"] = activeInstance()

	_, err := svc.EvaluateOffer(context.Background(), OfferRequest{
		InstanceID: "inst-1", CallerID: "+15551234567", TenantID: "other-tenant",
	})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEvaluateOfferValidation(t *testing.T) {
	svc, _, _ := newOfferFixture()

	_, err := svc.EvaluateOffer(context.Background(), OfferRequest{CallerID: "x", TenantID: "t"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = svc.EvaluateOffer(context.Background(), OfferRequest{InstanceID: "i", TenantID: "t"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = svc.EvaluateOffer(context.Background(), OfferRequest{InstanceID: "i", CallerID: "x"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
