package bank

import (
	"context"
	"errors"
	"time"

	bankRepo "meetmydesigners/database/repository/bank"
	"meetmydesigners/models"
	"meetmydesigners/services/notification"
)

const (
	otpLength      = 6
	otpTTL         = 10 * time.Minute
	// maxOTPAttempts wrong guesses burn the code.
	maxOTPAttempts = 5
)

var (
	ErrInvalidIFSC          = errors.New("invalid IFSC code")
	ErrInvalidAccountNumber = errors.New("account number must be 9 to 18 digits")
	ErrAccountNotFound      = errors.New("bank account not found")
	ErrAlreadyVerified      = errors.New("bank account is already verified")
	ErrNotVerified          = errors.New("bank account is not verified")
	ErrOTPExpired           = errors.New("verification code expired or was never sent")
	ErrOTPMismatch          = errors.New("verification code does not match")
	ErrTooManyAttempts      = errors.New("too many wrong codes, request a new one")
)

// BankService registers payout accounts and verifies them with a one-time code.
type BankService interface {
	AddBankAccount(ctx context.Context, userID string, req models.BankAccountRequest) (*models.BankAccount, error)
	VerifyBankAccount(ctx context.Context, userID, accountID, otp string) (*models.BankAccount, error)
	ResendOTP(ctx context.Context, userID, accountID string) error
	ListBankAccounts(ctx context.Context, userID string) ([]models.BankAccount, error)
	SetPrimary(ctx context.Context, userID, accountID string) error
	DeleteBankAccount(ctx context.Context, userID, accountID string) error
}

// DefaultBankService is the production implementation.
type DefaultBankService struct {
	Repo     bankRepo.BankAccountRepository
	OTPs     OTPStore
	Notifier notification.Notifier
	Now      func() time.Time
}

func (s *DefaultBankService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
