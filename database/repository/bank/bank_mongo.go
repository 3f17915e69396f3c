package bankRepo

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

type mongoBankRepo struct {
	coll *mongo.Collection
}

// NewMongoBankRepo constructs a new MongoDB BankAccountRepository.
func NewMongoBankRepo() BankAccountRepository {
	repo := &mongoBankRepo{coll: database.DB().Collection("bank_accounts")}

	if err := repository.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}); err != nil {
		utils.GetLogger().Error("bank account indexes", zap.Error(err))
	}
	return repo
}

func (r *mongoBankRepo) Create(ctx context.Context, a *models.BankAccount) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	a.CreatedAt = time.Now()
	if _, err := r.coll.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("failed to create bank account: %w", err)
	}
	return nil
}

func (r *mongoBankRepo) GetByID(ctx context.Context, id string) (*models.BankAccount, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	var a models.BankAccount
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&a); err != nil {
		return nil, repository.Translate(err)
	}
	return &a, nil
}

func (r *mongoBankRepo) ListByUser(ctx context.Context, userID string) ([]models.BankAccount, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "is_primary", Value: -1}, {Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query bank accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var accounts []models.BankAccount
	if err := cursor.All(ctx, &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode bank accounts: %w", err)
	}
	return accounts, nil
}

func (r *mongoBankRepo) MarkVerified(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id},
		bson.M{"$set": bson.M{"is_verified": true, "verified_at": at}})
	if err != nil {
		return fmt.Errorf("failed to verify bank account %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoBankRepo) SetPrimary(ctx context.Context, userID, id string) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "id": bson.M{"$ne": id}},
		bson.M{"$set": bson.M{"is_primary": false}}); err != nil {
		return fmt.Errorf("failed to clear primary bank account: %w", err)
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"user_id": userID, "id": id},
		bson.M{"$set": bson.M{"is_primary": true}})
	if err != nil {
		return fmt.Errorf("failed to set primary bank account: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoBankRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete bank account %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
