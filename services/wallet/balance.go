package wallet

import (
	"context"
	"fmt"

	"meetmydesigners/models"
	"meetmydesigners/utils"

	"go.uber.org/zap"
)

// GetBalance derives the spendable balance from the ledger. Completed credits
// count in full, completed debits are subtracted, and so are pending
// withdrawals.
func (s *DefaultWalletService) GetBalance(ctx context.Context, userID string) (float64, error) {
	logger := utils.GetLogger()
	if s.Cache != nil {
		if balance, ok, err := s.Cache.Get(ctx, userID); err != nil {
			logger.Warn("wallet: balance cache read failed", zap.String("userID", userID), zap.Error(err))
		} else if ok {
			return balance, nil
		}
	}

	totals, err := s.Repo.Totals(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to compute balance: %w", err)
	}
	balance := balanceFromTotals(totals)

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, userID, balance); err != nil {
			logger.Warn("wallet: balance cache write failed", zap.String("userID", userID), zap.Error(err))
		}
	}
	return balance, nil
}

func balanceFromTotals(totals []models.LedgerTotal) float64 {
	var balance float64
	for _, t := range totals {
		switch {
		case t.Status == models.TxCompleted && t.Type.Credit():
			balance += t.Amount
		case t.Status == models.TxCompleted:
			balance -= t.Amount
		case t.Status == models.TxPending && t.Type == models.TxWithdrawal:
			balance -= t.Amount
		}
	}
	return utils.RoundMoney(balance)
}

// CheckSufficientBalance returns the current balance, or ErrInsufficientBalance
// when it does not cover amount.
func (s *DefaultWalletService) CheckSufficientBalance(ctx context.Context, userID string, amount float64) (float64, error) {
	balance, err := s.GetBalance(ctx, userID)
	if err != nil {
		return 0, err
	}
	if balance < amount {
		return balance, fmt.Errorf("%w: balance %.2f, required %.2f", ErrInsufficientBalance, balance, amount)
	}
	return balance, nil
}
