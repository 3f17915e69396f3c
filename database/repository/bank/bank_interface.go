package bankRepo

import (
	"context"
	"time"

	"meetmydesigners/models"
)

// BankAccountRepository persists payout destinations.
type BankAccountRepository interface {
	Create(ctx context.Context, a *models.BankAccount) error
	GetByID(ctx context.Context, id string) (*models.BankAccount, error)
	ListByUser(ctx context.Context, userID string) ([]models.BankAccount, error)
	MarkVerified(ctx context.Context, id string, at time.Time) error
	// SetPrimary flags one account as primary and clears the flag on the user's others.
	SetPrimary(ctx context.Context, userID, id string) error
	Delete(ctx context.Context, id string) error
}
