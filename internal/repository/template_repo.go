package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"callpulse/internal/model"
)

type TemplateRepo interface {
	Create(ctx context.Context, tpl *model.SurveyTemplate) (string, error)
	GetByID(ctx context.Context, id string) (*model.SurveyTemplate, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*model.SurveyTemplate, error)
	Update(ctx context.Context, tpl *model.SurveyTemplate) error
	Deactivate(ctx context.Context, id string) error
}

type templateRepository struct {
	collection *mongo.Collection
}

func NewTemplateRepository(db *mongo.Database) TemplateRepo {
	return &templateRepository{collection: db.Collection("survey_templates")}
}

func (r *templateRepository) Create(ctx context.Context, tpl *model.SurveyTemplate) (string, error) {
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	if tpl.Version == 0 {
		tpl.Version = 1
	}

	if _, err := r.collection.InsertOne(ctx, tpl); err != nil {
		return "", err
	}
	return tpl.ID, nil
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*model.SurveyTemplate, error) {
	var tpl model.SurveyTemplate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tpl)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepository) ListByTenant(ctx context.Context, tenantID string) ([]*model.SurveyTemplate, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"tenantId": tenantID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []*model.SurveyTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepository) Update(ctx context.Context, tpl *model.SurveyTemplate) error {
	tpl.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":      tpl.Name,
		"languages": tpl.Languages,
		"prompts":   tpl.Prompts,
		"questions": tpl.Questions,
		"isActive":  tpl.IsActive,
		"updatedAt": tpl.UpdatedAt,
	}, "$inc": bson.M{"version": 1}}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": tpl.ID}, update)
	return err
}

func (r *templateRepository) Deactivate(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}
