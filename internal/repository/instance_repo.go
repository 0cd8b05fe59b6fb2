package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"callpulse/internal/model"
)

type InstanceRepo interface {
	Create(ctx context.Context, inst *model.SurveyInstance) (string, error)
	GetByID(ctx context.Context, id string) (*model.SurveyInstance, error)
	ListActive(ctx context.Context, tenantID string) ([]*model.SurveyInstance, error)
	Update(ctx context.Context, inst *model.SurveyInstance) error
	Deactivate(ctx context.Context, id string) error
}

type instanceRepository struct {
	collection *mongo.Collection
}

func NewInstanceRepository(db *mongo.Database) InstanceRepo {
	return &instanceRepository{collection: db.Collection("survey_instances")}
}

func (r *instanceRepository) Create(ctx context.Context, inst *model.SurveyInstance) (string, error) {
	now := time.Now().UTC()
	inst.CreatedAt = now
	inst.UpdatedAt = now
	if inst.StartDate.IsZero() {
		inst.StartDate = now
	}

	if _, err := r.collection.InsertOne(ctx, inst); err != nil {
		return "", err
	}
	return inst.ID, nil
}

func (r *instanceRepository) GetByID(ctx context.Context, id string) (*model.SurveyInstance, error) {
	var inst model.SurveyInstance
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&inst)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *instanceRepository) ListActive(ctx context.Context, tenantID string) ([]*model.SurveyInstance, error) {
	filter := bson.M{"isActive": true}
	if tenantID != "" {
		filter["tenantId"] = tenantID
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var instances []*model.SurveyInstance
	if err = cursor.All(ctx, &instances); err != nil {
		return nil, err
	}
	return instances, nil
}

func (r *instanceRepository) Update(ctx context.Context, inst *model.SurveyInstance) error {
	inst.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":               inst.Name,
		"triggerMode":        inst.TriggerMode,
		"targetQueues":       inst.TargetQueues,
		"targetAgents":       inst.TargetAgents,
		"samplingPercentage": inst.SamplingPercentage,
		"cooldownHours":      inst.CooldownHours,
		"startDate":          inst.StartDate,
		"endDate":            inst.EndDate,
		"isActive":           inst.IsActive,
		"updatedAt":          inst.UpdatedAt,
	}}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": inst.ID}, update)
	return err
}

func (r *instanceRepository) Deactivate(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}
