package service

import (
	"context"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"

	"callpulse/internal/cache"
	"callpulse/internal/model"
	"callpulse/internal/repository"
	"callpulse/pkg/logger"
)

// AnalyticsService computes period reports for survey instances. Reports
// are always recomputed from the stored responses; Redis only shields the
// dashboard from repeated scans.
type AnalyticsService struct {
	responseRepo repository.ResponseRepo
	instanceRepo repository.InstanceRepo
	cache        cache.AnalyticsCache
	log          logger.Logger
}

func NewAnalyticsService(responseRepo repository.ResponseRepo, instanceRepo repository.InstanceRepo, analyticsCache cache.AnalyticsCache, log logger.Logger) *AnalyticsService {
	return &AnalyticsService{
		responseRepo: responseRepo,
		instanceRepo: instanceRepo,
		cache:        analyticsCache,
		log:          log,
	}
}

// Report returns the analytics for an instance over [periodStart,
// periodEnd), serving from cache when possible. A cache outage degrades
// to a direct recompute, never to a failed report.
func (s *AnalyticsService) Report(ctx context.Context, instanceID string, periodStart, periodEnd time.Time) (*model.SurveyAnalytics, error) {
	if instanceID == "" {
		return nil, fmt.Errorf("%w: instance id is required", ErrInvalidInput)
	}

	inst, err := s.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, fmt.Errorf("%w: instance %s", ErrNotFound, instanceID)
	}

	if cached, err := s.cache.GetReport(ctx, instanceID, periodStart, periodEnd); err != nil {
		s.log.Warn("analytics cache read failed", "instanceId", instanceID, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	responses, err := s.responseRepo.ListByInstancePeriod(ctx, instanceID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	report := Aggregate(responses, inst, periodStart, periodEnd)
	if err := s.cache.SetReport(ctx, report); err != nil {
		s.log.Warn("analytics cache write failed", "instanceId", instanceID, "error", err)
	}
	return report, nil
}

// Invalidate drops cached reports for an instance after new data arrived.
func (s *AnalyticsService) Invalidate(ctx context.Context, instanceID string) {
	if err := s.cache.InvalidateInstance(ctx, instanceID); err != nil {
		s.log.Warn("analytics cache invalidation failed", "instanceId", instanceID, "error", err)
	}
}

// Aggregate folds responses into a period report. Only completed
// responses created within [periodStart, periodEnd) contribute scores;
// abandoned and failed ones still count against the completion rate.
func Aggregate(responses []*model.SurveyResponse, instance *model.SurveyInstance, periodStart, periodEnd time.Time) *model.SurveyAnalytics {
	report := &model.SurveyAnalytics{
		InstanceID:      instance.ID,
		TenantID:        instance.TenantID,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
		QueueBreakdown:  make(map[string]model.BreakdownEntry),
		AgentBreakdown:  make(map[string]model.BreakdownEntry),
		SentimentCounts: make(map[string]int),
		GeneratedAt:     time.Now().UTC(),
	}

	var scores []float64
	var abandoned, failed int
	queueAcc := make(map[string]*breakdownAcc)
	agentAcc := make(map[string]*breakdownAcc)

	for _, resp := range responses {
		if resp.CreatedAt.Before(periodStart) || !resp.CreatedAt.Before(periodEnd) {
			continue
		}

		switch resp.Status {
		case model.StatusAbandoned:
			abandoned++
			continue
		case model.StatusFailed:
			failed++
			continue
		case model.StatusCompleted:
			// falls through to aggregation
		default:
			continue
		}

		report.TotalResponses++

		c := Classify(resp)
		if c.HasScore {
			scores = append(scores, c.Score)
			classifyBucket(report, instance.SurveyType, c.Score)
		}

		if resp.QueueName != "" {
			accumulate(queueAcc, resp.QueueName, c)
		}
		if resp.AgentID != "" {
			accumulate(agentAcc, resp.AgentID, c)
		}
		if resp.Sentiment != nil && resp.Sentiment.Label != "" {
			report.SentimentCounts[resp.Sentiment.Label]++
		}
	}

	completed := report.TotalResponses
	if denom := completed + abandoned + failed; denom > 0 {
		report.CompletionRate = float64(completed) / float64(denom)
	}

	if len(scores) > 0 {
		mean, _ := stats.Mean(scores)
		report.AverageScore = mean

		scored := float64(len(scores))
		switch instance.SurveyType {
		case model.SurveyTypeNPS:
			report.NPSScore = (float64(report.PromoterCount) - float64(report.DetractorCount)) / scored * 100
		case model.SurveyTypeCSAT:
			report.CSATScore = float64(report.PromoterCount) / scored * 100
		case model.SurveyTypeCES:
			report.CESScore = mean
		}
	}

	for key, acc := range queueAcc {
		report.QueueBreakdown[key] = acc.entry()
	}
	for key, acc := range agentAcc {
		report.AgentBreakdown[key] = acc.entry()
	}

	return report
}

// classifyBucket assigns a score to promoter/passive/detractor. NPS uses
// the standard 0-10 buckets, CSAT splits a 1-5 scale around its midpoint,
// CES and custom types have no bucket semantics.
func classifyBucket(report *model.SurveyAnalytics, surveyType model.SurveyType, score float64) {
	switch surveyType {
	case model.SurveyTypeNPS:
		switch {
		case score >= 9:
			report.PromoterCount++
		case score >= 7:
			report.PassiveCount++
		default:
			report.DetractorCount++
		}
	case model.SurveyTypeCSAT:
		const midpoint = 3 // of a 1-5 scale
		switch {
		case score > midpoint:
			report.PromoterCount++
		case score < midpoint:
			report.DetractorCount++
		default:
			report.PassiveCount++
		}
	}
}

type breakdownAcc struct {
	count    int
	scoreSum float64
	scored   int
}

func accumulate(m map[string]*breakdownAcc, key string, c ClassificationResult) {
	acc := m[key]
	if acc == nil {
		acc = &breakdownAcc{}
		m[key] = acc
	}
	acc.count++
	if c.HasScore {
		acc.scoreSum += c.Score
		acc.scored++
	}
}

func (a *breakdownAcc) entry() model.BreakdownEntry {
	entry := model.BreakdownEntry{Count: a.count}
	if a.scored > 0 {
		entry.MeanScore = a.scoreSum / float64(a.scored)
	}
	return entry
}
