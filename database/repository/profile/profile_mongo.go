package profileRepo

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

// MongoProfileRepo implements ProfileRepository using MongoDB.
type MongoProfileRepo struct {
	coll *mongo.Collection
}

// NewMongoProfileRepo creates the repository and its indexes.
func NewMongoProfileRepo() ProfileRepository {
	repo := &MongoProfileRepo{coll: database.DB().Collection("profiles")}

	if err := repository.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		utils.GetLogger().Error("profile indexes", zap.Error(err))
	}
	return repo
}

func (r *MongoProfileRepo) Create(ctx context.Context, p *models.Profile) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *MongoProfileRepo) findOne(ctx context.Context, filter bson.M) (*models.Profile, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	var p models.Profile
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, repository.Translate(err)
	}
	return &p, nil
}

func (r *MongoProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoProfileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoProfileRepo) Update(ctx context.Context, p *models.Profile) error {
	p.UpdatedAt = time.Now()
	return r.set(ctx, p.ID, bson.M{
		"full_name":  p.FullName,
		"phone":      p.Phone,
		"updated_at": p.UpdatedAt,
	})
}

func (r *MongoProfileRepo) SetTokenHash(ctx context.Context, id, tokenHash string) error {
	return r.set(ctx, id, bson.M{"token_hash": tokenHash, "updated_at": time.Now()})
}

func (r *MongoProfileRepo) SetFCMToken(ctx context.Context, id, token string) error {
	return r.set(ctx, id, bson.M{"fcm_token": token, "updated_at": time.Now()})
}

func (r *MongoProfileRepo) set(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update profile %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
