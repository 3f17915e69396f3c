package availabilityRepo

import (
	"context"
	"errors"
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

type mongoAvailabilityRepo struct {
	slots       *mongo.Collection
	specialDays *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a new MongoDB AvailabilityRepository.
func NewMongoAvailabilityRepo() AvailabilityRepository {
	db := database.DB()
	repo := &mongoAvailabilityRepo{
		slots:       db.Collection("designer_slots"),
		specialDays: db.Collection("designer_special_days"),
	}

	logger := utils.GetLogger()
	if err := repository.EnsureIndexes(repo.slots, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "designer_id", Value: 1}, {Key: "day_of_week", Value: 1}}},
	}); err != nil {
		logger.Error("designer slot indexes", zap.Error(err))
	}
	if err := repository.EnsureIndexes(repo.specialDays, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "designer_id", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		logger.Error("designer special day indexes", zap.Error(err))
	}
	return repo
}

func (r *mongoAvailabilityRepo) ListSlots(ctx context.Context, designerID string) ([]models.DesignerSlot, error) {
	return r.findSlots(ctx, bson.M{"designer_id": designerID})
}

func (r *mongoAvailabilityRepo) ListActiveSlotsForDay(ctx context.Context, designerID string, dayOfWeek int) ([]models.DesignerSlot, error) {
	return r.findSlots(ctx, bson.M{"designer_id": designerID, "day_of_week": dayOfWeek, "is_active": true})
}

func (r *mongoAvailabilityRepo) findSlots(ctx context.Context, filter bson.M) ([]models.DesignerSlot, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "day_of_week", Value: 1}, {Key: "start_time", Value: 1}})
	cursor, err := r.slots.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query designer slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.DesignerSlot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode designer slots: %w", err)
	}
	return slots, nil
}

func (r *mongoAvailabilityRepo) ReplaceSlots(ctx context.Context, designerID string, slots []models.DesignerSlot) error {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.slots.DeleteMany(ctx, bson.M{"designer_id": designerID}); err != nil {
		return fmt.Errorf("failed to clear designer slots: %w", err)
	}
	if len(slots) == 0 {
		return nil
	}
	docs := make([]interface{}, len(slots))
	for i := range slots {
		docs[i] = slots[i]
	}
	if _, err := r.slots.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert designer slots: %w", err)
	}
	return nil
}

func (r *mongoAvailabilityRepo) GetSpecialDay(ctx context.Context, designerID, date string) (*models.DesignerSpecialDay, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	var day models.DesignerSpecialDay
	err := r.specialDays.FindOne(ctx, bson.M{"designer_id": designerID, "date": date}).Decode(&day)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch special day %s: %w", date, err)
	}
	return &day, nil
}

func (r *mongoAvailabilityRepo) ListSpecialDays(ctx context.Context, designerID, fromDate string) ([]models.DesignerSpecialDay, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"designer_id": designerID}
	if fromDate != "" {
		filter["date"] = bson.M{"$gte": fromDate}
	}
	cursor, err := r.specialDays.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query special days: %w", err)
	}
	defer cursor.Close(ctx)

	var days []models.DesignerSpecialDay
	if err := cursor.All(ctx, &days); err != nil {
		return nil, fmt.Errorf("failed to decode special days: %w", err)
	}
	return days, nil
}

func (r *mongoAvailabilityRepo) UpsertSpecialDay(ctx context.Context, day *models.DesignerSpecialDay) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"designer_id": day.DesignerID, "date": day.Date}
	update := bson.M{
		"$set": bson.M{
			"is_available": day.IsAvailable,
			"start_time":   day.StartTime,
			"end_time":     day.EndTime,
			"reason":       day.Reason,
		},
		"$setOnInsert": bson.M{"id": day.ID},
	}
	if _, err := r.specialDays.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to upsert special day %s: %w", day.Date, err)
	}
	return nil
}

func (r *mongoAvailabilityRepo) DeleteSpecialDay(ctx context.Context, designerID, id string) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.specialDays.DeleteOne(ctx, bson.M{"designer_id": designerID, "id": id})
	if err != nil {
		return fmt.Errorf("failed to delete special day %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
