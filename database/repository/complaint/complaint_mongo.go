package complaintRepo

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

type mongoComplaintRepo struct {
	coll *mongo.Collection
}

// NewMongoComplaintRepo constructs a new MongoDB ComplaintRepository.
func NewMongoComplaintRepo() ComplaintRepository {
	repo := &mongoComplaintRepo{coll: database.DB().Collection("customer_complaints")}

	if err := repository.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	}); err != nil {
		utils.GetLogger().Error("complaint indexes", zap.Error(err))
	}
	return repo
}

func (r *mongoComplaintRepo) Create(ctx context.Context, c *models.CustomerComplaint) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

func (r *mongoComplaintRepo) GetByID(ctx context.Context, id string) (*models.CustomerComplaint, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	var c models.CustomerComplaint
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&c); err != nil {
		return nil, repository.Translate(err)
	}
	return &c, nil
}

func (r *mongoComplaintRepo) ListByUser(ctx context.Context, userID string) ([]models.CustomerComplaint, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *mongoComplaintRepo) ListAll(ctx context.Context, status models.ComplaintStatus) ([]models.CustomerComplaint, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter)
}

func (r *mongoComplaintRepo) find(ctx context.Context, filter bson.M) ([]models.CustomerComplaint, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query complaints: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.CustomerComplaint
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode complaints: %w", err)
	}
	return out, nil
}

func (r *mongoComplaintRepo) UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to update complaint %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
