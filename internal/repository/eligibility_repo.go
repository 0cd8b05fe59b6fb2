package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"callpulse/internal/model"
)

// ErrConflict marks a ledger write that lost an insert race. Callers
// may retry; the row exists afterwards so a retry hits the $inc path.
var ErrConflict = errors.New("ledger write conflict")

type EligibilityRepo interface {
	Get(ctx context.Context, callerID, tenantID string) (*model.CallerEligibility, error)
	// RecordCompletion atomically increments the survey count and stamps
	// lastSurveyed, creating the ledger row if absent.
	RecordCompletion(ctx context.Context, callerID, tenantID string, now time.Time) error
	SetBlacklist(ctx context.Context, callerID, tenantID string, blacklisted bool, reason string) error
	EnsureIndexes(ctx context.Context) error
}

type eligibilityRepository struct {
	collection *mongo.Collection
}

func NewEligibilityRepository(db *mongo.Database) EligibilityRepo {
	return &eligibilityRepository{collection: db.Collection("caller_eligibility")}
}

// EnsureIndexes creates the unique (callerId, tenantId) index the atomic
// upsert in RecordCompletion relies on.
func (r *eligibilityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "callerId", Value: 1}, {Key: "tenantId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *eligibilityRepository) Get(ctx context.Context, callerID, tenantID string) (*model.CallerEligibility, error) {
	var elig model.CallerEligibility
	err := r.collection.FindOne(ctx, bson.M{"callerId": callerID, "tenantId": tenantID}).Decode(&elig)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &elig, nil
}

func (r *eligibilityRepository) RecordCompletion(ctx context.Context, callerID, tenantID string, now time.Time) error {
	filter := bson.M{"callerId": callerID, "tenantId": tenantID}
	update := bson.M{
		"$inc": bson.M{"surveyCount": 1},
		"$set": bson.M{"lastSurveyed": now, "updatedAt": now},
		"$setOnInsert": bson.M{
			"createdAt":     now,
			"isBlacklisted": false,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// Two first-time completions raced on the unique index.
		return ErrConflict
	}
	return err
}

func (r *eligibilityRepository) SetBlacklist(ctx context.Context, callerID, tenantID string, blacklisted bool, reason string) error {
	now := time.Now().UTC()
	filter := bson.M{"callerId": callerID, "tenantId": tenantID}
	update := bson.M{
		"$set": bson.M{
			"isBlacklisted":   blacklisted,
			"blacklistReason": reason,
			"updatedAt":       now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
