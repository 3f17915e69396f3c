package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"meetmydesigners/database/repository"
	"meetmydesigners/metrics"
	"meetmydesigners/models"
	"meetmydesigners/services/notification"
	"meetmydesigners/services/payment/gateway"
	"meetmydesigners/services/wallet"
	"meetmydesigners/utils"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// CreateDepositOrder opens an order with the chosen gateway and records a
// pending deposit referencing it.
func (s *DefaultPaymentService) CreateDepositOrder(ctx context.Context, userID string, req models.DepositRequest) (*models.DepositOrder, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}
	amount := utils.RoundMoney(req.Amount)
	minor := utils.ToMinorUnits(amount)

	tx := &models.WalletTransaction{
		UserID:        userID,
		Type:          models.TxDeposit,
		Amount:        amount,
		Status:        models.TxPending,
		Gateway:       req.Gateway,
		TransactionID: wallet.NewTransactionID(),
		Description:   "Wallet top-up via " + req.Gateway,
	}
	order := &models.DepositOrder{
		TransactionID: tx.TransactionID,
		Gateway:       req.Gateway,
		Amount:        amount,
		Currency:      s.currency(),
	}
	notes := map[string]string{"user_id": userID, "transaction_id": tx.TransactionID}

	switch req.Gateway {
	case GatewayRazorpay:
		if s.Razorpay == nil {
			return nil, ErrGatewayNotConfigured
		}
		o, err := s.Razorpay.CreateOrder(ctx, minor, s.currency(), tx.TransactionID, notes)
		if err != nil {
			metrics.Payments.WithLabelValues(GatewayRazorpay, "failed").Inc()
			return nil, err
		}
		tx.Reference = o.ID
		order.OrderID = o.ID
		order.KeyID = s.Razorpay.PublicKey()

	case GatewayPhonePe:
		if s.PhonePe == nil {
			return nil, ErrGatewayNotConfigured
		}
		res, err := s.PhonePe.InitiatePayment(ctx, gateway.PhonePePayRequest{
			MerchantTransactionID: tx.TransactionID,
			MerchantUserID:        userID,
			Amount:                minor,
		})
		if err != nil {
			metrics.Payments.WithLabelValues(GatewayPhonePe, "failed").Inc()
			return nil, err
		}
		tx.Reference = tx.TransactionID
		order.OrderID = tx.TransactionID
		order.RedirectURL = res.RedirectURL

	case GatewayStripe:
		if s.Stripe == nil {
			return nil, ErrGatewayNotConfigured
		}
		intent, err := s.Stripe.CreatePaymentIntent(ctx, minor, s.currency(), notes)
		if err != nil {
			metrics.Payments.WithLabelValues(GatewayStripe, "failed").Inc()
			return nil, err
		}
		tx.Reference = intent.ID
		order.OrderID = intent.ID
		order.ClientSecret = intent.ClientSecret

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGateway, req.Gateway)
	}

	if err := s.Wallet.Record(ctx, tx); err != nil {
		// The gateway order still carries user_id, so a later webhook can
		// recreate the deposit.
		utils.GetLogger().Error("payment: failed to record pending deposit",
			zap.String("gateway", req.Gateway), zap.String("reference", tx.Reference), zap.Error(err))
		return nil, err
	}
	metrics.Payments.WithLabelValues(req.Gateway, "initiated").Inc()
	return order, nil
}

// VerifyRazorpayPayment checks the checkout signature and completes the deposit.
func (s *DefaultPaymentService) VerifyRazorpayPayment(ctx context.Context, userID string, req models.RazorpayVerifyRequest) (*models.WalletTransaction, error) {
	if s.Razorpay == nil {
		return nil, ErrGatewayNotConfigured
	}
	if !s.Razorpay.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature) {
		utils.GetLogger().Warn("payment: razorpay signature mismatch",
			zap.String("userID", userID), zap.String("orderID", req.OrderID))
		metrics.Payments.WithLabelValues(GatewayRazorpay, "rejected").Inc()
		return nil, ErrVerificationFailed
	}
	return s.completeDeposit(ctx, depositEvent{
		Gateway:   GatewayRazorpay,
		Reference: req.OrderID,
		PaymentID: req.PaymentID,
		UserID:    userID,
		Amount:    req.Amount,
		Owner:     userID,
	})
}

// HandleRazorpayWebhook processes payment.captured, order.paid and payment.failed.
func (s *DefaultPaymentService) HandleRazorpayWebhook(ctx context.Context, body []byte, signature string) error {
	if s.Razorpay == nil {
		return ErrGatewayNotConfigured
	}
	if !s.Razorpay.VerifyWebhookSignature(body, signature) {
		metrics.Payments.WithLabelValues(GatewayRazorpay, "rejected").Inc()
		return ErrInvalidSignature
	}

	payload := gjson.ParseBytes(body)
	event := payload.Get("event").String()
	pay := payload.Get("payload.payment.entity")
	orderID := pay.Get("order_id").String()
	if orderID == "" {
		orderID = payload.Get("payload.order.entity.id").String()
	}
	userID := pay.Get("notes.user_id").String()
	if userID == "" {
		userID = payload.Get("payload.order.entity.notes.user_id").String()
	}

	switch event {
	case "payment.captured", "order.paid":
		if orderID == "" {
			return fmt.Errorf("%w: razorpay %s without order id", ErrInvalidPayment, event)
		}
		_, err := s.completeDeposit(ctx, depositEvent{
			Gateway:   GatewayRazorpay,
			Reference: orderID,
			PaymentID: pay.Get("id").String(),
			UserID:    userID,
			Amount:    utils.FromMinorUnits(pay.Get("amount").Int()),
		})
		return err
	case "payment.failed":
		return s.failDeposit(ctx, GatewayRazorpay, orderID, pay.Get("error_description").String())
	default:
		utils.GetLogger().Debug("payment: ignoring razorpay event", zap.String("event", event))
		return nil
	}
}

// HandlePhonePeCallback verifies and applies a PhonePe server callback.
func (s *DefaultPaymentService) HandlePhonePeCallback(ctx context.Context, body []byte, xVerify string) error {
	if s.PhonePe == nil {
		return ErrGatewayNotConfigured
	}
	var envelope struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Response == "" {
		return fmt.Errorf("%w: malformed phonepe callback", ErrInvalidPayment)
	}
	if !s.PhonePe.VerifyCallback(envelope.Response, xVerify) {
		metrics.Payments.WithLabelValues(GatewayPhonePe, "rejected").Inc()
		return ErrInvalidSignature
	}

	cb, err := s.PhonePe.DecodeCallback(envelope.Response)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayment, err)
	}
	switch {
	case cb.Succeeded():
		_, err := s.completeDeposit(ctx, depositEvent{
			Gateway:   GatewayPhonePe,
			Reference: cb.MerchantTransactionID,
			PaymentID: cb.TransactionID,
			Amount:    utils.FromMinorUnits(cb.Amount),
		})
		return err
	case cb.Pending():
		return nil
	default:
		return s.failDeposit(ctx, GatewayPhonePe, cb.MerchantTransactionID, cb.Code)
	}
}

// HandleStripeWebhook applies payment_intent.succeeded and payment_intent.payment_failed.
func (s *DefaultPaymentService) HandleStripeWebhook(ctx context.Context, body []byte, sigHeader string) error {
	if s.Stripe == nil {
		return ErrGatewayNotConfigured
	}
	event, err := s.Stripe.ConstructEvent(body, sigHeader)
	if err != nil {
		metrics.Payments.WithLabelValues(GatewayStripe, "rejected").Inc()
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if event.Data == nil {
		return nil
	}

	intent := gjson.ParseBytes(event.Data.Raw)
	intentID := intent.Get("id").String()
	switch string(event.Type) {
	case "payment_intent.succeeded":
		amount := intent.Get("amount_received").Int()
		if amount == 0 {
			amount = intent.Get("amount").Int()
		}
		_, err := s.completeDeposit(ctx, depositEvent{
			Gateway:   GatewayStripe,
			Reference: intentID,
			PaymentID: intentID,
			UserID:    intent.Get("metadata.user_id").String(),
			Amount:    utils.FromMinorUnits(amount),
		})
		return err
	case "payment_intent.payment_failed":
		return s.failDeposit(ctx, GatewayStripe, intentID, intent.Get("last_payment_error.message").String())
	default:
		utils.GetLogger().Debug("payment: ignoring stripe event", zap.String("type", string(event.Type)))
		return nil
	}
}

type depositEvent struct {
	Gateway   string
	Reference string
	PaymentID string
	// UserID and Amount are used to insert the deposit when no pending row exists.
	UserID string
	Amount float64
	// Owner, when set, must match the deposit's user.
	Owner string
}

// completeDeposit is idempotent on the gateway reference.
func (s *DefaultPaymentService) completeDeposit(ctx context.Context, ev depositEvent) (*models.WalletTransaction, error) {
	logger := utils.GetLogger()

	tx, err := s.Wallet.FindByReference(ctx, ev.Reference)
	if errors.Is(err, repository.ErrNotFound) {
		if ev.UserID == "" || ev.Amount <= 0 {
			logger.Warn("payment: no deposit for reference",
				zap.String("gateway", ev.Gateway), zap.String("reference", ev.Reference))
			return nil, ErrDepositNotFound
		}
		tx = &models.WalletTransaction{
			UserID:      ev.UserID,
			Type:        models.TxDeposit,
			Amount:      ev.Amount,
			Status:      models.TxCompleted,
			Gateway:     ev.Gateway,
			Reference:   ev.Reference,
			Description: "Wallet top-up via " + ev.Gateway,
			Metadata:    map[string]string{"gateway_payment_id": ev.PaymentID},
		}
		if err := s.Wallet.Record(ctx, tx); err != nil {
			return nil, err
		}
		s.depositCompleted(ctx, tx)
		return tx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up deposit: %w", err)
	}

	if tx.Type != models.TxDeposit {
		return nil, fmt.Errorf("%w: reference %s is a %s", ErrInvalidPayment, ev.Reference, tx.Type)
	}
	if ev.Owner != "" && tx.UserID != ev.Owner {
		logger.Warn("payment: deposit owner mismatch",
			zap.String("reference", ev.Reference), zap.String("userID", ev.Owner))
		return nil, ErrVerificationFailed
	}
	if tx.Status == models.TxCompleted {
		return tx, nil
	}
	if err := s.Wallet.UpdateStatus(ctx, tx, models.TxCompleted, ""); err != nil {
		return nil, err
	}
	s.depositCompleted(ctx, tx)
	return tx, nil
}

func (s *DefaultPaymentService) depositCompleted(ctx context.Context, tx *models.WalletTransaction) {
	metrics.Payments.WithLabelValues(tx.Gateway, "completed").Inc()
	utils.GetLogger().Info("payment: deposit completed",
		zap.String("userID", tx.UserID),
		zap.String("gateway", tx.Gateway),
		zap.String("reference", tx.Reference),
		zap.Float64("amount", tx.Amount))
	notification.Send(ctx, s.Notifier, tx.UserID, notification.TypeDeposit,
		"Wallet topped up", fmt.Sprintf("%.2f %s was added to your wallet.", tx.Amount, s.currency()),
		map[string]string{"transaction_id": tx.TransactionID})
}

// failDeposit marks a pending deposit failed. Completed deposits are never downgraded.
func (s *DefaultPaymentService) failDeposit(ctx context.Context, gw, reference, reason string) error {
	logger := utils.GetLogger()
	if reference == "" {
		return nil
	}
	tx, err := s.Wallet.FindByReference(ctx, reference)
	if errors.Is(err, repository.ErrNotFound) {
		logger.Warn("payment: failure event for unknown deposit",
			zap.String("gateway", gw), zap.String("reference", reference))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up deposit: %w", err)
	}
	if tx.Status != models.TxPending {
		return nil
	}
	if err := s.Wallet.UpdateStatus(ctx, tx, models.TxFailed, ""); err != nil {
		return err
	}
	metrics.Payments.WithLabelValues(gw, "failed").Inc()
	logger.Info("payment: deposit failed",
		zap.String("gateway", gw), zap.String("reference", reference), zap.String("reason", reason))
	return nil
}
