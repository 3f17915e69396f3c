package payment

import (
	"context"
	"fmt"

	"meetmydesigners/metrics"
	"meetmydesigners/models"
	"meetmydesigners/services/notification"
	"meetmydesigners/utils"

	"go.uber.org/zap"
)

// ProcessSessionPayment debits the client and credits the designer. If the
// credit cannot be written the debit is removed again.
func (s *DefaultPaymentService) ProcessSessionPayment(ctx context.Context, req models.SessionPaymentRequest) (*models.SessionPaymentResult, error) {
	logger := utils.GetLogger()

	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}
	if req.ClientID == "" || req.DesignerID == "" || req.ClientID == req.DesignerID {
		return nil, fmt.Errorf("%w: client and designer must be distinct", ErrInvalidPayment)
	}

	balance, err := s.Wallet.CheckSufficientBalance(ctx, req.ClientID, req.Amount)
	if err != nil {
		metrics.Payments.WithLabelValues("wallet", "rejected").Inc()
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = "Design consultation session"
	}

	debit := &models.WalletTransaction{
		UserID:        req.ClientID,
		Type:          models.TxPayment,
		Amount:        req.Amount,
		Status:        models.TxCompleted,
		Description:   description,
		RelatedUserID: req.DesignerID,
		SessionID:     req.SessionID,
	}
	if err := s.Wallet.Record(ctx, debit); err != nil {
		metrics.Payments.WithLabelValues("wallet", "failed").Inc()
		return nil, fmt.Errorf("failed to debit client: %w", err)
	}

	designerAmount := utils.RoundMoney(req.Amount * (1 - s.CommissionRate))
	credit := &models.WalletTransaction{
		UserID:        req.DesignerID,
		Type:          models.TxEarning,
		Amount:        designerAmount,
		Status:        models.TxCompleted,
		Description:   description,
		RelatedUserID: req.ClientID,
		SessionID:     req.SessionID,
	}
	if err := s.Wallet.Record(ctx, credit); err != nil {
		if derr := s.Wallet.Delete(ctx, debit); derr != nil {
			logger.Error("payment: compensation failed, client debit left in place",
				zap.String("transactionID", debit.TransactionID),
				zap.String("sessionID", req.SessionID),
				zap.Error(derr))
		}
		metrics.Payments.WithLabelValues("wallet", "failed").Inc()
		return nil, fmt.Errorf("failed to credit designer: %w", err)
	}
	metrics.Payments.WithLabelValues("wallet", "completed").Inc()

	logger.Info("payment: session charged",
		zap.String("sessionID", req.SessionID),
		zap.String("clientID", req.ClientID),
		zap.String("designerID", req.DesignerID),
		zap.Float64("amount", debit.Amount))

	data := map[string]string{"session_id": req.SessionID, "amount": fmt.Sprintf("%.2f", debit.Amount)}
	notification.Send(ctx, s.Notifier, req.ClientID, notification.TypeSessionPayment,
		"Session payment", fmt.Sprintf("%.2f %s was charged for your session.", debit.Amount, s.currency()), data)
	notification.Send(ctx, s.Notifier, req.DesignerID, notification.TypeSessionEarning,
		"You earned from a session", fmt.Sprintf("%.2f %s was added to your wallet.", credit.Amount, s.currency()), data)

	return &models.SessionPaymentResult{
		DebitTransactionID:  debit.TransactionID,
		CreditTransactionID: credit.TransactionID,
		Amount:              debit.Amount,
		DesignerAmount:      credit.Amount,
		ClientBalance:       utils.RoundMoney(balance - debit.Amount),
	}, nil
}

// RefundSessionPayment reverses a session charge: the client gets the full
// amount back and the designer's earning is debited.
func (s *DefaultPaymentService) RefundSessionPayment(ctx context.Context, sessionID string) (*models.SessionPaymentResult, error) {
	rows, err := s.Wallet.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session transactions: %w", err)
	}

	var earning *models.WalletTransaction
	for i := range rows {
		switch {
		case rows[i].Type == models.TxRefund:
			return nil, ErrAlreadyRefunded
		case rows[i].Type == models.TxEarning && rows[i].Status == models.TxCompleted:
			earning = &rows[i]
		}
	}
	if earning == nil {
		return nil, ErrNothingToRefund
	}
	var charge *models.WalletTransaction
	for i := range rows {
		if rows[i].Type == models.TxPayment && rows[i].Status == models.TxCompleted && rows[i].UserID == earning.RelatedUserID {
			charge = &rows[i]
			break
		}
	}
	if charge == nil {
		return nil, ErrNothingToRefund
	}

	refund := &models.WalletTransaction{
		UserID:        charge.UserID,
		Type:          models.TxRefund,
		Amount:        charge.Amount,
		Status:        models.TxCompleted,
		Description:   "Session refund",
		RelatedUserID: earning.UserID,
		SessionID:     sessionID,
		Reference:     charge.TransactionID,
	}
	if err := s.Wallet.Record(ctx, refund); err != nil {
		return nil, fmt.Errorf("failed to credit refund: %w", err)
	}

	clawback := &models.WalletTransaction{
		UserID:        earning.UserID,
		Type:          models.TxPayment,
		Amount:        earning.Amount,
		Status:        models.TxCompleted,
		Description:   "Session refund reversal",
		RelatedUserID: charge.UserID,
		SessionID:     sessionID,
		Reference:     earning.TransactionID,
	}
	if err := s.Wallet.Record(ctx, clawback); err != nil {
		if derr := s.Wallet.Delete(ctx, refund); derr != nil {
			utils.GetLogger().Error("payment: refund compensation failed",
				zap.String("transactionID", refund.TransactionID),
				zap.String("sessionID", sessionID),
				zap.Error(derr))
		}
		return nil, fmt.Errorf("failed to debit designer: %w", err)
	}
	metrics.Payments.WithLabelValues("wallet", "refunded").Inc()

	notification.Send(ctx, s.Notifier, refund.UserID, notification.TypeSessionRefund,
		"Session refunded", fmt.Sprintf("%.2f %s was returned to your wallet.", refund.Amount, s.currency()),
		map[string]string{"session_id": sessionID})

	return &models.SessionPaymentResult{
		DebitTransactionID:  clawback.TransactionID,
		CreditTransactionID: refund.TransactionID,
		Amount:              refund.Amount,
		DesignerAmount:      clawback.Amount,
	}, nil
}
