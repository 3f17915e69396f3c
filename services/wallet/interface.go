package wallet

import (
	"context"
	"errors"

	walletRepo "meetmydesigners/database/repository/wallet"
	"meetmydesigners/models"
)

var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
)

// WalletService owns the wallet_transactions ledger and the derived balance.
type WalletService interface {
	GetBalance(ctx context.Context, userID string) (float64, error)
	CheckSufficientBalance(ctx context.Context, userID string, amount float64) (float64, error)

	Record(ctx context.Context, tx *models.WalletTransaction) error
	Delete(ctx context.Context, tx *models.WalletTransaction) error
	UpdateStatus(ctx context.Context, tx *models.WalletTransaction, status models.TransactionStatus, reference string) error

	ListTransactions(ctx context.Context, userID string, limit int64) ([]models.WalletTransaction, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.WalletTransaction, error)
	FindByReference(ctx context.Context, reference string) (*models.WalletTransaction, error)
}

// DefaultWalletService is the production implementation.
type DefaultWalletService struct {
	Repo  walletRepo.WalletRepository
	Cache BalanceCache
}
