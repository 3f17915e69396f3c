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

type mongoFileRepo struct {
	coll *mongo.Collection
}

// NewMongoFileRepo constructs a new MongoDB FileRepository.
func NewMongoFileRepo() FileRepository {
	repo := &mongoFileRepo{coll: database.DB().Collection("session_files")}

	if err := repository.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}); err != nil {
		utils.GetLogger().Error("session file indexes", zap.Error(err))
	}
	return repo
}

func (r *mongoFileRepo) Create(ctx context.Context, f *models.SessionFile) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	f.CreatedAt = time.Now()
	if _, err := r.coll.InsertOne(ctx, f); err != nil {
		return fmt.Errorf("failed to record session file: %w", err)
	}
	return nil
}

func (r *mongoFileRepo) GetByID(ctx context.Context, id string) (*models.SessionFile, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	var f models.SessionFile
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&f); err != nil {
		return nil, repository.Translate(err)
	}
	return &f, nil
}

func (r *mongoFileRepo) ListBySession(ctx context.Context, sessionID string) ([]models.SessionFile, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query session files: %w", err)
	}
	defer cursor.Close(ctx)

	var files []models.SessionFile
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to decode session files: %w", err)
	}
	return files, nil
}

func (r *mongoFileRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete session file %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
