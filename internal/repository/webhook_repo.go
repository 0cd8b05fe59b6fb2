package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"callpulse/internal/model"
)

type WebhookEventRepo interface {
	Create(ctx context.Context, event *model.WebhookEvent) (string, error)
	MarkResult(ctx context.Context, id, status string, responseCode int, responseBody string, retryCount int) error
}

type webhookEventRepository struct {
	collection *mongo.Collection
}

func NewWebhookEventRepository(db *mongo.Database) WebhookEventRepo {
	return &webhookEventRepository{collection: db.Collection("webhook_events")}
}

func (r *webhookEventRepository) Create(ctx context.Context, event *model.WebhookEvent) (string, error) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.Status == "" {
		event.Status = "pending"
	}

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return "", err
	}
	return event.ID, nil
}

func (r *webhookEventRepository) MarkResult(ctx context.Context, id, status string, responseCode int, responseBody string, retryCount int) error {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"status":       status,
		"responseCode": responseCode,
		"responseBody": responseBody,
		"retryCount":   retryCount,
		"processedAt":  now,
	}}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}
