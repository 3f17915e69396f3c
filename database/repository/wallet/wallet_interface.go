package walletRepo

import (
	"context"

	"meetmydesigners/models"
)

// WalletRepository is the wallet_transactions ledger.
type WalletRepository interface {
	Insert(ctx context.Context, tx *models.WalletTransaction) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.WalletTransaction, error)
	UpdateStatus(ctx context.Context, id string, status models.TransactionStatus, reference string) error
	FindByReference(ctx context.Context, reference string) (*models.WalletTransaction, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.WalletTransaction, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.WalletTransaction, error)
	// Totals sums amounts per (type, status) for a user.
	Totals(ctx context.Context, userID string) ([]models.LedgerTotal, error)
}
