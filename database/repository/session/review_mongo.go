package sessionRepo

import (
	"context"
	"fmt"
	"time"

	"meetmydesigners/database"
	"meetmydesigners/database/repository"
	"meetmydesigners/models"
	"meetmydesigners/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type mongoReviewRepo struct {
	coll *mongo.Collection
}

// NewMongoReviewRepo constructs a new MongoDB ReviewRepository.
func NewMongoReviewRepo() ReviewRepository {
	repo := &mongoReviewRepo{coll: database.DB().Collection("session_reviews")}

	if err := repository.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "session_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "designer_id", Value: 1}}},
	}); err != nil {
		utils.GetLogger().Error("review indexes", zap.Error(err))
	}
	return repo
}

func (r *mongoReviewRepo) Create(ctx context.Context, rv *models.SessionReview) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	rv.CreatedAt = time.Now()
	if _, err := r.coll.InsertOne(ctx, rv); err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *mongoReviewRepo) GetBySession(ctx context.Context, sessionID string) (*models.SessionReview, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	var rv models.SessionReview
	if err := r.coll.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&rv); err != nil {
		return nil, repository.Translate(err)
	}
	return &rv, nil
}

func (r *mongoReviewRepo) ListByDesigner(ctx context.Context, designerID string) ([]models.SessionReview, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"designer_id": designerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []models.SessionReview
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}
