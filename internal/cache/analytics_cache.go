package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"callpulse/internal/model"
)

// AnalyticsCache keeps computed survey reports in Redis so repeated
// dashboard reads do not re-scan the response collection.
type AnalyticsCache interface {
	GetReport(ctx context.Context, instanceID string, periodStart, periodEnd time.Time) (*model.SurveyAnalytics, error)
	SetReport(ctx context.Context, report *model.SurveyAnalytics) error
	InvalidateInstance(ctx context.Context, instanceID string) error
}

type analyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAnalyticsCache(client *redis.Client) AnalyticsCache {
	return &analyticsCache{
		client: client,
		ttl:    5 * time.Minute,
	}
}

func (c *analyticsCache) reportKey(instanceID string, start, end time.Time) string {
	return fmt.Sprintf("analytics:%s:%d:%d", instanceID, start.Unix(), end.Unix())
}

func (c *analyticsCache) GetReport(ctx context.Context, instanceID string, periodStart, periodEnd time.Time) (*model.SurveyAnalytics, error) {
	data, err := c.client.Get(ctx, c.reportKey(instanceID, periodStart, periodEnd)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var report model.SurveyAnalytics
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *analyticsCache) SetReport(ctx context.Context, report *model.SurveyAnalytics) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	key := c.reportKey(report.InstanceID, report.PeriodStart, report.PeriodEnd)
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *analyticsCache) InvalidateInstance(ctx context.Context, instanceID string) error {
	iter := c.client.Scan(ctx, 0, fmt.Sprintf("analytics:%s:*", instanceID), 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
