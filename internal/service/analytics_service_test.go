package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"callpulse/internal/model"
)

func npsInstance() *model.SurveyInstance {
	return &model.SurveyInstance{
		ID:         "inst-1",
		TenantID:   "tenant-1",
		SurveyType: model.SurveyTypeNPS,
		IsActive:   true,
	}
}

func completedResponse(instanceID string, createdAt time.Time, score float64) *model.SurveyResponse {
	return &model.SurveyResponse{
		ID:         "r-" + createdAt.String(),
		InstanceID: instanceID,
		TenantID:   "tenant-1",
		Answers:    map[string]interface{}{"score": score},
		Status:     model.StatusCompleted,
		CreatedAt:  createdAt,
	}
}

func TestAggregateNPS(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	mid := start.Add(12 * time.Hour)

	scores := []float64{9, 9, 10, 8, 7, 6, 3, 2, 9, 10}
	var responses []*model.SurveyResponse
	for i, score := range scores {
		responses = append(responses, completedResponse("inst-1", mid.Add(time.Duration(i)*time.Minute), score))
	}

	report := Aggregate(responses, npsInstance(), start, end)

	assert.Equal(t, 10, report.TotalResponses)
	assert.Equal(t, 5, report.PromoterCount) // 9, 9, 10, 9, 10
	assert.Equal(t, 2, report.PassiveCount)  // 8, 7
	assert.Equal(t, 3, report.DetractorCount)
	assert.InDelta(t, 20.0, report.NPSScore, 0.001) // (5-3)/10 * 100
	assert.InDelta(t, 7.3, report.AverageScore, 0.001)
	assert.InDelta(t, 1.0, report.CompletionRate, 0.001)
}

func TestAggregateCompletionRate(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	mid := start.Add(time.Hour)

	responses := []*model.SurveyResponse{
		completedResponse("inst-1", mid, 9),
		completedResponse("inst-1", mid.Add(time.Minute), 8),
		{ID: "r-a", InstanceID: "inst-1", Status: model.StatusAbandoned, CreatedAt: mid},
		{ID: "r-f", InstanceID: "inst-1", Status: model.StatusFailed, CreatedAt: mid},
	}

	report := Aggregate(responses, npsInstance(), start, end)

	assert.Equal(t, 2, report.TotalResponses)
	assert.InDelta(t, 0.5, report.CompletionRate, 0.001)
}

func TestAggregateExcludesOutOfPeriod(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	responses := []*model.SurveyResponse{
		completedResponse("inst-1", start.Add(-time.Hour), 9), // before
		completedResponse("inst-1", end, 9),                   // exactly at end, excluded
		completedResponse("inst-1", start, 9),                 // exactly at start, included
	}

	report := Aggregate(responses, npsInstance(), start, end)
	assert.Equal(t, 1, report.TotalResponses)
}

func TestAggregateCSATMidpoint(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	mid := start.Add(time.Hour)

	inst := npsInstance()
	inst.SurveyType = model.SurveyTypeCSAT

	var responses []*model.SurveyResponse
	for i, score := range []float64{5, 4, 3, 2, 1} {
		responses = append(responses, completedResponse("inst-1", mid.Add(time.Duration(i)*time.Minute), score))
	}

	report := Aggregate(responses, inst, start, end)

	assert.Equal(t, 2, report.PromoterCount) // 5, 4
	assert.Equal(t, 1, report.PassiveCount)  // 3
	assert.Equal(t, 2, report.DetractorCount)
	assert.InDelta(t, 40.0, report.CSATScore, 0.001) // 2/5 * 100
}

func TestAggregateCES(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	mid := start.Add(time.Hour)

	inst := npsInstance()
	inst.SurveyType = model.SurveyTypeCES

	responses := []*model.SurveyResponse{
		completedResponse("inst-1", mid, 2),
		completedResponse("inst-1", mid.Add(time.Minute), 4),
	}

	report := Aggregate(responses, inst, start, end)
	assert.InDelta(t, 3.0, report.CESScore, 0.001)
	assert.Zero(t, report.PromoterCount)
}

func TestAggregateBreakdowns(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	mid := start.Add(time.Hour)

	r1 := completedResponse("inst-1", mid, 10)
	r1.QueueName = "support"
	r1.AgentID = "agent-1"
	r2 := completedResponse("inst-1", mid.Add(time.Minute), 6)
	r2.QueueName = "support"
	r2.AgentID = "agent-2"
	r3 := completedResponse("inst-1", mid.Add(2*time.Minute), 8)
	r3.QueueName = "sales"
	r3.AgentID = "agent-1"
	r3.Sentiment = &model.SentimentResult{Label: "positive"}

	report := Aggregate([]*model.SurveyResponse{r1, r2, r3}, npsInstance(), start, end)

	assert.Equal(t, 2, report.QueueBreakdown["support"].Count)
	assert.InDelta(t, 8.0, report.QueueBreakdown["support"].MeanScore, 0.001)
	assert.Equal(t, 1, report.QueueBreakdown["sales"].Count)
	assert.Equal(t, 2, report.AgentBreakdown["agent-1"].Count)
	assert.InDelta(t, 9.0, report.AgentBreakdown["agent-1"].MeanScore, 0.001)
	assert.Equal(t, 1, report.SentimentCounts["positive"])
}

func TestAggregateEmpty(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	report := Aggregate(nil, npsInstance(), start, end)

	assert.Zero(t, report.TotalResponses)
	assert.Zero(t, report.CompletionRate)
	assert.Zero(t, report.AverageScore)
	assert.Zero(t, report.NPSScore)
}

func TestReportUnknownInstance(t *testing.T) {
	svc := NewAnalyticsService(newFakeResponseRepo(), newFakeInstanceRepo(), &fakeAnalyticsCache{}, nopLogger())

	_, err := svc.Report(context.Background(), "missing", time.Now().Add(-time.Hour), time.Now())
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportUsesCacheOnSecondRead(t *testing.T) {
	responseRepo := newFakeResponseRepo()
	instRepo := newFakeInstanceRepo()
	instRepo.instances["inst-1"] = npsInstance()
	cacheFake := &fakeAnalyticsCache{}

	svc := NewAnalyticsService(responseRepo, instRepo, cacheFake, nopLogger())

	start := time.Now().UTC().Add(-time.Hour)
	end := time.Now().UTC()

	_, err := svc.Report(context.Background(), "inst-1", start, end)
	assert.NoError(t, err)
	assert.Equal(t, 1, cacheFake.sets)

	_, err = svc.Report(context.Background(), "inst-1", start, end)
	assert.NoError(t, err)
	assert.Equal(t, 1, cacheFake.sets) // served from cache, no recompute
}
