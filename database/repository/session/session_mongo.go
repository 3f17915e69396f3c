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

type mongoSessionRepo struct {
	coll *mongo.Collection
}

// NewMongoSessionRepo constructs a new MongoDB SessionRepository.
func NewMongoSessionRepo() SessionRepository {
	repo := &mongoSessionRepo{coll: database.DB().Collection("active_sessions")}

	if err := repository.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
		{Keys: bson.D{{Key: "designer_id", Value: 1}}},
		{Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
	}); err != nil {
		utils.GetLogger().Error("session indexes", zap.Error(err))
	}
	return repo
}

func (r *mongoSessionRepo) Create(ctx context.Context, s *models.ActiveSession) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *mongoSessionRepo) GetByID(ctx context.Context, id string) (*models.ActiveSession, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	var s models.ActiveSession
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		return nil, repository.Translate(err)
	}
	return &s, nil
}

func (r *mongoSessionRepo) Update(ctx context.Context, s *models.ActiveSession) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": s.ID}, s)
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", s.ID, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoSessionRepo) ListByUser(ctx context.Context, userID string) ([]models.ActiveSession, error) {
	return r.find(ctx, bson.M{"$or": bson.A{
		bson.M{"client_id": userID},
		bson.M{"designer_id": userID},
	}})
}

func (r *mongoSessionRepo) GetOpenByBooking(ctx context.Context, bookingID string) (*models.ActiveSession, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"booking_id": bookingID,
		"status":     bson.M{"$in": bson.A{models.SessionWaiting, models.SessionActive}},
	}
	var s models.ActiveSession
	if err := r.coll.FindOne(ctx, filter).Decode(&s); err != nil {
		return nil, repository.Translate(err)
	}
	return &s, nil
}

func (r *mongoSessionRepo) ListStale(ctx context.Context, status models.SessionStatus, before time.Time) ([]models.ActiveSession, error) {
	field := "created_at"
	if status == models.SessionActive {
		field = "started_at"
	}
	return r.find(ctx, bson.M{"status": status, field: bson.M{"$lt": before}})
}

func (r *mongoSessionRepo) find(ctx context.Context, filter bson.M) ([]models.ActiveSession, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []models.ActiveSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}
