package walletRepo

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

type mongoWalletRepo struct {
	coll *mongo.Collection
}

// NewMongoWalletRepo constructs a new MongoDB WalletRepository.
func NewMongoWalletRepo() WalletRepository {
	repo := &mongoWalletRepo{coll: database.DB().Collection("wallet_transactions")}

	if err := repository.EnsureIndexes(repo.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "transaction_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "reference", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "session_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	}); err != nil {
		utils.GetLogger().Error("wallet indexes", zap.Error(err))
	}
	return repo
}

func (r *mongoWalletRepo) Insert(ctx context.Context, tx *models.WalletTransaction) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, tx); err != nil {
		return fmt.Errorf("failed to insert wallet transaction: %w", err)
	}
	return nil
}

func (r *mongoWalletRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete wallet transaction %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoWalletRepo) findOne(ctx context.Context, filter bson.M) (*models.WalletTransaction, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	var tx models.WalletTransaction
	if err := r.coll.FindOne(ctx, filter).Decode(&tx); err != nil {
		return nil, repository.Translate(err)
	}
	return &tx, nil
}

func (r *mongoWalletRepo) GetByID(ctx context.Context, id string) (*models.WalletTransaction, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *mongoWalletRepo) FindByReference(ctx context.Context, reference string) (*models.WalletTransaction, error) {
	return r.findOne(ctx, bson.M{"reference": reference})
}

func (r *mongoWalletRepo) UpdateStatus(ctx context.Context, id string, status models.TransactionStatus, reference string) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	fields := bson.M{"status": status, "updated_at": time.Now()}
	if reference != "" {
		fields["reference"] = reference
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update wallet transaction %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoWalletRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.WalletTransaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *mongoWalletRepo) ListBySession(ctx context.Context, sessionID string) ([]models.WalletTransaction, error) {
	return r.find(ctx, bson.M{"session_id": sessionID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (r *mongoWalletRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.WalletTransaction, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txs []models.WalletTransaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode wallet transactions: %w", err)
	}
	return txs, nil
}

func (r *mongoWalletRepo) Totals(ctx context.Context, userID string) ([]models.LedgerTotal, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":    bson.M{"type": "$type", "status": "$status"},
			"amount": bson.M{"$sum": "$amount"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":    0,
			"type":   "$_id.type",
			"status": "$_id.status",
			"amount": 1,
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate wallet totals: %w", err)
	}
	defer cursor.Close(ctx)

	var totals []models.LedgerTotal
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, fmt.Errorf("failed to decode wallet totals: %w", err)
	}
	return totals, nil
}
