package designerRepo

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

type mongoDesignerRepo struct {
	coll *mongo.Collection
}

// NewMongoDesignerRepo constructs a new MongoDB DesignerRepository.
func NewMongoDesignerRepo() DesignerRepository {
	repo := &mongoDesignerRepo{coll: database.DB().Collection("designers")}

	if err := repository.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "is_online", Value: 1}, {Key: "rating", Value: -1}}},
	}); err != nil {
		utils.GetLogger().Error("designer indexes", zap.Error(err))
	}
	return repo
}

func (r *mongoDesignerRepo) Create(ctx context.Context, d *models.Designer) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("failed to create designer: %w", err)
	}
	return nil
}

func (r *mongoDesignerRepo) findOne(ctx context.Context, filter bson.M) (*models.Designer, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	var d models.Designer
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, repository.Translate(err)
	}
	return &d, nil
}

func (r *mongoDesignerRepo) GetByID(ctx context.Context, id string) (*models.Designer, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *mongoDesignerRepo) GetByUserID(ctx context.Context, userID string) (*models.Designer, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *mongoDesignerRepo) List(ctx context.Context, onlineOnly bool) ([]models.Designer, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if onlineOnly {
		filter["is_online"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "is_online", Value: -1}, {Key: "rating", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list designers: %w", err)
	}
	defer cursor.Close(ctx)

	var designers []models.Designer
	if err := cursor.All(ctx, &designers); err != nil {
		return nil, fmt.Errorf("failed to decode designers: %w", err)
	}
	return designers, nil
}

func (r *mongoDesignerRepo) Update(ctx context.Context, d *models.Designer) error {
	d.UpdatedAt = time.Now()
	return r.set(ctx, d.ID, bson.M{
		"display_name":    d.DisplayName,
		"specialty":       d.Specialty,
		"bio":             d.Bio,
		"rate_per_minute": d.RatePerMinute,
		"timezone":        d.Timezone,
		"updated_at":      d.UpdatedAt,
	})
}

func (r *mongoDesignerRepo) SetOnline(ctx context.Context, id string, online bool) error {
	return r.set(ctx, id, bson.M{"is_online": online, "updated_at": time.Now()})
}

func (r *mongoDesignerRepo) UpdateRating(ctx context.Context, id string, rating float64, count int) error {
	return r.set(ctx, id, bson.M{"rating": rating, "review_count": count, "updated_at": time.Now()})
}

func (r *mongoDesignerRepo) set(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update designer %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
