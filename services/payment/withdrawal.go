package payment

import (
	"context"
	"errors"
	"fmt"

	"meetmydesigners/database/repository"
	"meetmydesigners/metrics"
	"meetmydesigners/models"
	"meetmydesigners/services/notification"
	"meetmydesigners/services/payment/gateway"
	"meetmydesigners/utils"

	"go.uber.org/zap"
)

// ProcessWithdrawal pays out wallet funds to one of the user's verified bank
// accounts. The pending row reserves the funds while the payout is in flight.
func (s *DefaultPaymentService) ProcessWithdrawal(ctx context.Context, userID string, req models.WithdrawalRequest) (*models.WalletTransaction, error) {
	logger := utils.GetLogger()

	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}
	if req.Amount < s.MinWithdrawal {
		return nil, fmt.Errorf("%w of %.2f", ErrBelowMinimumWithdrawal, s.MinWithdrawal)
	}
	if s.Razorpay == nil {
		return nil, ErrGatewayNotConfigured
	}

	account, err := s.Banks.GetByID(ctx, req.BankAccountID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && account.UserID != userID) {
		return nil, ErrBankAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bank account: %w", err)
	}
	if !account.IsVerified {
		return nil, ErrBankAccountNotVerified
	}

	if _, err := s.Wallet.CheckSufficientBalance(ctx, userID, req.Amount); err != nil {
		return nil, err
	}

	tx := &models.WalletTransaction{
		UserID:      userID,
		Type:        models.TxWithdrawal,
		Amount:      req.Amount,
		Status:      models.TxPending,
		Gateway:     GatewayRazorpay,
		Description: "Withdrawal to " + account.MaskedNumber,
		Metadata:    map[string]string{"bank_account_id": account.ID},
	}
	if err := s.Wallet.Record(ctx, tx); err != nil {
		return nil, err
	}

	payout, err := s.Razorpay.CreatePayout(ctx, gateway.PayoutRequest{
		ReferenceID:   tx.TransactionID,
		Amount:        utils.ToMinorUnits(tx.Amount),
		Currency:      s.currency(),
		AccountHolder: account.AccountHolder,
		AccountNumber: account.AccountNumber,
		IFSC:          account.IFSC,
		ContactName:   account.AccountHolder,
		ContactID:     userID,
		Narration:     "Wallet withdrawal",
	})
	if err != nil {
		if uerr := s.Wallet.UpdateStatus(ctx, tx, models.TxFailed, ""); uerr != nil {
			logger.Error("payment: could not mark withdrawal failed",
				zap.String("transactionID", tx.TransactionID), zap.Error(uerr))
		}
		metrics.Payments.WithLabelValues("razorpay_payout", "failed").Inc()
		return nil, fmt.Errorf("payout failed: %w", err)
	}

	if err := s.Wallet.UpdateStatus(ctx, tx, models.TxCompleted, payout.ID); err != nil {
		// The money has left; leave the row pending so the funds stay reserved.
		logger.Error("payment: payout sent but withdrawal not completed",
			zap.String("transactionID", tx.TransactionID), zap.String("payoutID", payout.ID), zap.Error(err))
		return nil, err
	}
	metrics.Payments.WithLabelValues("razorpay_payout", "completed").Inc()

	notification.Send(ctx, s.Notifier, userID, notification.TypeWithdrawal,
		"Withdrawal sent", fmt.Sprintf("%.2f %s is on its way to %s.", tx.Amount, s.currency(), account.MaskedNumber),
		map[string]string{"transaction_id": tx.TransactionID, "payout_id": payout.ID})
	return tx, nil
}
