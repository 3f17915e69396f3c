package bank

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"meetmydesigners/database/repository"
	"meetmydesigners/models"
	"meetmydesigners/services/notification"
	"meetmydesigners/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ifscPattern    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	accountPattern = regexp.MustCompile(`^[0-9]{9,18}$`)
)

// MaskAccountNumber keeps the last four digits.
func MaskAccountNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	return strings.Repeat("X", len(number)-4) + number[len(number)-4:]
}

func (s *DefaultBankService) AddBankAccount(ctx context.Context, userID string, req models.BankAccountRequest) (*models.BankAccount, error) {
	ifsc := strings.ToUpper(strings.TrimSpace(req.IFSC))
	number := strings.ReplaceAll(strings.TrimSpace(req.AccountNumber), " ", "")
	if !ifscPattern.MatchString(ifsc) {
		return nil, ErrInvalidIFSC
	}
	if !accountPattern.MatchString(number) {
		return nil, ErrInvalidAccountNumber
	}

	account := &models.BankAccount{
		ID:            uuid.New().String(),
		UserID:        userID,
		AccountHolder: strings.TrimSpace(req.AccountHolder),
		AccountNumber: number,
		MaskedNumber:  MaskAccountNumber(number),
		IFSC:          ifsc,
		BankName:      req.BankName,
		CreatedAt:     s.now(),
	}
	if err := s.Repo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save bank account: %w", err)
	}

	if err := s.sendOTP(ctx, account); err != nil {
		utils.GetLogger().Error("bank: failed to issue verification code",
			zap.String("accountID", account.ID), zap.Error(err))
		return account, err
	}
	return account, nil
}

func (s *DefaultBankService) sendOTP(ctx context.Context, account *models.BankAccount) error {
	code, err := utils.GenerateNumericOTP(otpLength)
	if err != nil {
		return err
	}
	if err := s.OTPs.Save(ctx, otpKey(account.UserID, account.ID), code, otpTTL); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	notification.Send(ctx, s.Notifier, account.UserID, notification.TypeBankOTP,
		"Verify your bank account",
		fmt.Sprintf("Your verification code for account %s is %s. It expires in %d minutes.",
			account.MaskedNumber, code, int(otpTTL.Minutes())),
		map[string]string{"bank_account_id": account.ID})
	return nil
}

func (s *DefaultBankService) owned(ctx context.Context, userID, accountID string) (*models.BankAccount, error) {
	account, err := s.Repo.GetByID(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// VerifyBankAccount checks the code. The first verified account becomes primary.
func (s *DefaultBankService) VerifyBankAccount(ctx context.Context, userID, accountID, otp string) (*models.BankAccount, error) {
	account, err := s.owned(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	if account.IsVerified {
		return nil, ErrAlreadyVerified
	}

	key := otpKey(userID, accountID)
	stored, err := s.OTPs.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read verification code: %w", err)
	}
	if stored == "" {
		return nil, ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(otp))) != 1 {
		return nil, s.recordMismatch(ctx, key, accountID)
	}

	at := s.now()
	if err := s.Repo.MarkVerified(ctx, accountID, at); err != nil {
		return nil, fmt.Errorf("failed to mark account verified: %w", err)
	}
	account.IsVerified = true
	account.VerifiedAt = &at

	if err := s.OTPs.Delete(ctx, key); err != nil {
		utils.GetLogger().Warn("bank: failed to delete used code", zap.String("accountID", accountID), zap.Error(err))
	}

	accounts, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return account, nil
	}
	hasPrimary := false
	for _, a := range accounts {
		if a.IsPrimary && a.IsVerified && a.ID != accountID {
			hasPrimary = true
			break
		}
	}
	if !hasPrimary {
		if err := s.Repo.SetPrimary(ctx, userID, accountID); err != nil {
			utils.GetLogger().Warn("bank: failed to set primary account", zap.String("accountID", accountID), zap.Error(err))
		} else {
			account.IsPrimary = true
		}
	}
	return account, nil
}

// recordMismatch counts a wrong code and burns the code once the limit is hit.
func (s *DefaultBankService) recordMismatch(ctx context.Context, key, accountID string) error {
	failures, err := s.OTPs.RecordFailure(ctx, key, otpTTL)
	if err != nil {
		// Without a count the code cannot be guarded; burn it.
		utils.GetLogger().Warn("bank: failed to count wrong code", zap.String("accountID", accountID), zap.Error(err))
		failures = maxOTPAttempts
	}
	if failures < maxOTPAttempts {
		return ErrOTPMismatch
	}
	if err := s.OTPs.Delete(ctx, key); err != nil {
		utils.GetLogger().Error("bank: failed to invalidate code", zap.String("accountID", accountID), zap.Error(err))
		return fmt.Errorf("failed to invalidate verification code: %w", err)
	}
	utils.GetLogger().Info("bank: code invalidated after repeated failures", zap.String("accountID", accountID))
	return ErrTooManyAttempts
}

func (s *DefaultBankService) ResendOTP(ctx context.Context, userID, accountID string) error {
	account, err := s.owned(ctx, userID, accountID)
	if err != nil {
		return err
	}
	if account.IsVerified {
		return ErrAlreadyVerified
	}
	return s.sendOTP(ctx, account)
}

func (s *DefaultBankService) ListBankAccounts(ctx context.Context, userID string) ([]models.BankAccount, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *DefaultBankService) SetPrimary(ctx context.Context, userID, accountID string) error {
	account, err := s.owned(ctx, userID, accountID)
	if err != nil {
		return err
	}
	if !account.IsVerified {
		return ErrNotVerified
	}
	return s.Repo.SetPrimary(ctx, userID, accountID)
}

func (s *DefaultBankService) DeleteBankAccount(ctx context.Context, userID, accountID string) error {
	if _, err := s.owned(ctx, userID, accountID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, accountID); err != nil {
		return err
	}
	if err := s.OTPs.Delete(ctx, otpKey(userID, accountID)); err != nil {
		utils.GetLogger().Warn("bank: failed to delete pending code", zap.String("accountID", accountID), zap.Error(err))
	}
	return nil
}
