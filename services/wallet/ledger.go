package wallet

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"meetmydesigners/metrics"
	"meetmydesigners/models"
	"meetmydesigners/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewTransactionID returns a human-readable ledger id of the form TXN_<unix>_<rand>.
func NewTransactionID() string {
	return fmt.Sprintf("TXN_%d_%06d", time.Now().Unix(), rand.Intn(1000000))
}

// Record inserts a ledger row, filling in identifiers and timestamps.
func (s *DefaultWalletService) Record(ctx context.Context, tx *models.WalletTransaction) error {
	if tx.Amount <= 0 {
		return ErrInvalidAmount
	}
	now := time.Now()
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.TransactionID == "" {
		tx.TransactionID = NewTransactionID()
	}
	if tx.Status == "" {
		tx.Status = models.TxPending
	}
	tx.Amount = utils.RoundMoney(tx.Amount)
	tx.CreatedAt = now
	tx.UpdatedAt = now

	if err := s.Repo.Insert(ctx, tx); err != nil {
		return fmt.Errorf("failed to record %s transaction: %w", tx.Type, err)
	}
	metrics.WalletTransactions.WithLabelValues(string(tx.Type)).Inc()
	s.invalidate(ctx, tx.UserID)
	return nil
}

// Delete removes a ledger row. Only compensation paths call it.
func (s *DefaultWalletService) Delete(ctx context.Context, tx *models.WalletTransaction) error {
	if err := s.Repo.Delete(ctx, tx.ID); err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", tx.ID, err)
	}
	s.invalidate(ctx, tx.UserID)
	return nil
}

func (s *DefaultWalletService) UpdateStatus(ctx context.Context, tx *models.WalletTransaction, status models.TransactionStatus, reference string) error {
	if err := s.Repo.UpdateStatus(ctx, tx.ID, status, reference); err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", tx.ID, err)
	}
	tx.Status = status
	if reference != "" {
		tx.Reference = reference
	}
	tx.UpdatedAt = time.Now()
	s.invalidate(ctx, tx.UserID)
	return nil
}

func (s *DefaultWalletService) ListTransactions(ctx context.Context, userID string, limit int64) ([]models.WalletTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.Repo.ListByUser(ctx, userID, limit)
}

func (s *DefaultWalletService) ListBySession(ctx context.Context, sessionID string) ([]models.WalletTransaction, error) {
	return s.Repo.ListBySession(ctx, sessionID)
}

func (s *DefaultWalletService) FindByReference(ctx context.Context, reference string) (*models.WalletTransaction, error) {
	return s.Repo.FindByReference(ctx, reference)
}

func (s *DefaultWalletService) invalidate(ctx context.Context, userID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, userID); err != nil {
		utils.GetLogger().Warn("wallet: balance cache invalidation failed",
			zap.String("userID", userID), zap.Error(err))
	}
}
