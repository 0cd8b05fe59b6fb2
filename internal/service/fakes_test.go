package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"callpulse/internal/model"
	"callpulse/internal/repository"
	"callpulse/pkg/logger"
)

// In-memory fakes for the repository interfaces.

type fakeTemplateRepo struct {
	mu        sync.Mutex
	templates map[string]*model.SurveyTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[string]*model.SurveyTemplate)}
}

func (f *fakeTemplateRepo) Create(ctx context.Context, tpl *model.SurveyTemplate) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tpl.Version == 0 {
		tpl.Version = 1
	}
	copied := *tpl
	f.templates[tpl.ID] = &copied
	return tpl.ID, nil
}

func (f *fakeTemplateRepo) GetByID(ctx context.Context, id string) (*model.SurveyTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tpl, ok := f.templates[id]; ok {
		copied := *tpl
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeTemplateRepo) ListByTenant(ctx context.Context, tenantID string) ([]*model.SurveyTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.SurveyTemplate
	for _, tpl := range f.templates {
		if tpl.TenantID == tenantID {
			copied := *tpl
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeTemplateRepo) Update(ctx context.Context, tpl *model.SurveyTemplate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *tpl
	copied.Version++
	f.templates[tpl.ID] = &copied
	return nil
}

func (f *fakeTemplateRepo) Deactivate(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tpl, ok := f.templates[id]; ok {
		tpl.IsActive = false
	}
	return nil
}

type fakeInstanceRepo struct {
	mu        sync.Mutex
	instances map[string]*model.SurveyInstance
}

func newFakeInstanceRepo() *fakeInstanceRepo {
	return &fakeInstanceRepo{instances: make(map[string]*model.SurveyInstance)}
}

func (f *fakeInstanceRepo) Create(ctx context.Context, inst *model.SurveyInstance) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *inst
	f.instances[inst.ID] = &copied
	return inst.ID, nil
}

func (f *fakeInstanceRepo) GetByID(ctx context.Context, id string) (*model.SurveyInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inst, ok := f.instances[id]; ok {
		copied := *inst
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeInstanceRepo) ListActive(ctx context.Context, tenantID string) ([]*model.SurveyInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.SurveyInstance
	for _, inst := range f.instances {
		if !inst.IsActive {
			continue
		}
		if tenantID != "" && inst.TenantID != tenantID {
			continue
		}
		copied := *inst
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeInstanceRepo) Update(ctx context.Context, inst *model.SurveyInstance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *inst
	f.instances[inst.ID] = &copied
	return nil
}

func (f *fakeInstanceRepo) Deactivate(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inst, ok := f.instances[id]; ok {
		inst.IsActive = false
	}
	return nil
}

// fakeEligibilityRepo mimics the atomic ledger upsert. conflictsLeft
// makes the next N RecordCompletion calls lose the insert race.
type fakeEligibilityRepo struct {
	mu            sync.Mutex
	rows          map[string]*model.CallerEligibility
	conflictsLeft int
}

func newFakeEligibilityRepo() *fakeEligibilityRepo {
	return &fakeEligibilityRepo{rows: make(map[string]*model.CallerEligibility)}
}

func ledgerKey(callerID, tenantID string) string {
	return callerID + "|" + tenantID
}

func (f *fakeEligibilityRepo) Get(ctx context.Context, callerID, tenantID string) (*model.CallerEligibility, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[ledgerKey(callerID, tenantID)]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeEligibilityRepo) RecordCompletion(ctx context.Context, callerID, tenantID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return repository.ErrConflict
	}

	key := ledgerKey(callerID, tenantID)
	row, ok := f.rows[key]
	if !ok {
		row = &model.CallerEligibility{
			CallerID:  callerID,
			TenantID:  tenantID,
			CreatedAt: now,
		}
		f.rows[key] = row
	}
	row.SurveyCount++
	ts := now
	row.LastSurveyed = &ts
	row.UpdatedAt = now
	return nil
}

func (f *fakeEligibilityRepo) SetBlacklist(ctx context.Context, callerID, tenantID string, blacklisted bool, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ledgerKey(callerID, tenantID)
	row, ok := f.rows[key]
	if !ok {
		row = &model.CallerEligibility{CallerID: callerID, TenantID: tenantID}
		f.rows[key] = row
	}
	row.IsBlacklisted = blacklisted
	row.BlacklistReason = reason
	return nil
}

func (f *fakeEligibilityRepo) EnsureIndexes(ctx context.Context) error { return nil }

type fakeResponseRepo struct {
	mu        sync.Mutex
	responses map[string]*model.SurveyResponse
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{responses: make(map[string]*model.SurveyResponse)}
}

func (f *fakeResponseRepo) Create(ctx context.Context, resp *model.SurveyResponse) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now().UTC()
	}
	copied := *resp
	f.responses[resp.ID] = &copied
	return resp.ID, nil
}

func (f *fakeResponseRepo) GetByID(ctx context.Context, id string) (*model.SurveyResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if resp, ok := f.responses[id]; ok {
		copied := *resp
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeResponseRepo) ListByInstancePeriod(ctx context.Context, instanceID string, start, end time.Time) ([]*model.SurveyResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.SurveyResponse
	for _, resp := range f.responses {
		if resp.InstanceID != instanceID {
			continue
		}
		if resp.CreatedAt.Before(start) || !resp.CreatedAt.Before(end) {
			continue
		}
		copied := *resp
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeResponseRepo) SaveAnswers(ctx context.Context, id string, answers map[string]interface{}, textComments string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	resp, ok := f.responses[id]
	if !ok || resp.Status != model.StatusPending {
		return repository.ErrNotPending
	}
	resp.Answers = answers
	resp.TextComments = textComments
	return nil
}

func (f *fakeResponseRepo) Finalize(ctx context.Context, id string, status model.ResponseStatus, completedAt *time.Time, completionSeconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	resp, ok := f.responses[id]
	if !ok || resp.Status != model.StatusPending {
		return repository.ErrNotPending
	}
	resp.Status = status
	if completedAt != nil {
		resp.CompletedAt = completedAt
	}
	if completionSeconds > 0 {
		resp.CompletionSeconds = completionSeconds
	}
	return nil
}

type fakeWebhookRepo struct {
	mu     sync.Mutex
	events []*model.WebhookEvent
}

func (f *fakeWebhookRepo) Create(ctx context.Context, event *model.WebhookEvent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *event
	f.events = append(f.events, &copied)
	return event.ID, nil
}

func (f *fakeWebhookRepo) MarkResult(ctx context.Context, id, status string, responseCode int, responseBody string, retryCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, event := range f.events {
		if event.ID == id {
			event.Status = status
			event.ResponseCode = responseCode
			event.ResponseBody = responseBody
			event.RetryCount = retryCount
		}
	}
	return nil
}

type fakeAnalyticsCache struct {
	mu      sync.Mutex
	reports map[string]*model.SurveyAnalytics
	sets    int
}

func analyticsKey(instanceID string, start, end time.Time) string {
	return fmt.Sprintf("%s:%d:%d", instanceID, start.Unix(), end.Unix())
}

func (f *fakeAnalyticsCache) GetReport(ctx context.Context, instanceID string, periodStart, periodEnd time.Time) (*model.SurveyAnalytics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if report, ok := f.reports[analyticsKey(instanceID, periodStart, periodEnd)]; ok {
		return report, nil
	}
	return nil, nil
}

func (f *fakeAnalyticsCache) SetReport(ctx context.Context, report *model.SurveyAnalytics) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reports == nil {
		f.reports = make(map[string]*model.SurveyAnalytics)
	}
	f.reports[analyticsKey(report.InstanceID, report.PeriodStart, report.PeriodEnd)] = report
	f.sets++
	return nil
}

func (f *fakeAnalyticsCache) InvalidateInstance(ctx context.Context, instanceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.reports {
		if strings.HasPrefix(key, instanceID+":") {
			delete(f.reports, key)
		}
	}
	return nil
}

func nopLogger() logger.Logger { return logger.NewNop() }

type fakeBroadcaster struct {
	mu     sync.Mutex
	alerts []model.AlertEvent
}

func (f *fakeBroadcaster) BroadcastAlert(tenantID string, alert model.AlertEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, alert)
}
