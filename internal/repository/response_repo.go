package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"callpulse/internal/model"
)

// ErrNotPending is returned by the typed update methods when the target
// response does not exist or has already reached a terminal status.
var ErrNotPending = errors.New("response missing or not pending")

type ResponseRepo interface {
	Create(ctx context.Context, resp *model.SurveyResponse) (string, error)
	GetByID(ctx context.Context, id string) (*model.SurveyResponse, error)
	ListByInstancePeriod(ctx context.Context, instanceID string, start, end time.Time) ([]*model.SurveyResponse, error)

	// Typed mutations, each guarded by status=pending. Responses in a
	// terminal state are immutable.
	SaveAnswers(ctx context.Context, id string, answers map[string]interface{}, textComments string) error
	Finalize(ctx context.Context, id string, status model.ResponseStatus, completedAt *time.Time, completionSeconds int) error
}

type responseRepository struct {
	collection *mongo.Collection
}

func NewResponseRepository(db *mongo.Database) ResponseRepo {
	return &responseRepository{collection: db.Collection("survey_responses")}
}

func (r *responseRepository) Create(ctx context.Context, resp *model.SurveyResponse) (string, error) {
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (r *responseRepository) GetByID(ctx context.Context, id string) (*model.SurveyResponse, error) {
	var resp model.SurveyResponse
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&resp)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListByInstancePeriod returns all responses for an instance created in
// [start, end), regardless of status. The aggregator needs abandoned and
// failed responses too for the completion rate.
func (r *responseRepository) ListByInstancePeriod(ctx context.Context, instanceID string, start, end time.Time) ([]*model.SurveyResponse, error) {
	filter := bson.M{
		"instanceId": instanceID,
		"createdAt":  bson.M{"$gte": start, "$lt": end},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var responses []*model.SurveyResponse
	if err = cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepository) SaveAnswers(ctx context.Context, id string, answers map[string]interface{}, textComments string) error {
	filter := bson.M{"_id": id, "status": model.StatusPending}
	update := bson.M{"$set": bson.M{
		"answers":      answers,
		"textComments": textComments,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *responseRepository) Finalize(ctx context.Context, id string, status model.ResponseStatus, completedAt *time.Time, completionSeconds int) error {
	filter := bson.M{"_id": id, "status": model.StatusPending}
	set := bson.M{"status": status}
	if completedAt != nil {
		set["completedAt"] = completedAt
	}
	if completionSeconds > 0 {
		set["completionSeconds"] = completionSeconds
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotPending
	}
	return nil
}
