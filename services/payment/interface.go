package payment

import (
	"context"
	"errors"

	bankRepo "meetmydesigners/database/repository/bank"
	"meetmydesigners/models"
	"meetmydesigners/services/notification"
	"meetmydesigners/services/payment/gateway"
	"meetmydesigners/services/wallet"

	"github.com/stripe/stripe-go/v76"
)

// VerificationFailedMessage is the only detail clients see when a payment cannot be verified.
const VerificationFailedMessage = "Payment verification failed. Please contact support."

const (
	GatewayRazorpay = "razorpay"
	GatewayPhonePe  = "phonepe"
	GatewayStripe   = "stripe"
)

var (
	ErrInvalidPayment         = errors.New("invalid payment request")
	ErrUnsupportedGateway     = errors.New("unsupported payment gateway")
	ErrGatewayNotConfigured   = errors.New("payment gateway is not configured")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrVerificationFailed     = errors.New("payment verification failed")
	ErrDepositNotFound        = errors.New("deposit not found")
	ErrBelowMinimumWithdrawal = errors.New("amount is below the minimum withdrawal")
	ErrBankAccountNotFound    = errors.New("bank account not found")
	ErrBankAccountNotVerified = errors.New("bank account is not verified")
	ErrNothingToRefund        = errors.New("no session payment to refund")
	ErrAlreadyRefunded        = errors.New("session payment already refunded")
)

// PaymentService moves money: session charges between wallets, deposits
// through the gateways and payouts to bank accounts.
type PaymentService interface {
	ProcessSessionPayment(ctx context.Context, req models.SessionPaymentRequest) (*models.SessionPaymentResult, error)
	RefundSessionPayment(ctx context.Context, sessionID string) (*models.SessionPaymentResult, error)

	CreateDepositOrder(ctx context.Context, userID string, req models.DepositRequest) (*models.DepositOrder, error)
	VerifyRazorpayPayment(ctx context.Context, userID string, req models.RazorpayVerifyRequest) (*models.WalletTransaction, error)
	HandleRazorpayWebhook(ctx context.Context, body []byte, signature string) error
	HandlePhonePeCallback(ctx context.Context, body []byte, xVerify string) error
	HandleStripeWebhook(ctx context.Context, body []byte, sigHeader string) error

	ProcessWithdrawal(ctx context.Context, userID string, req models.WithdrawalRequest) (*models.WalletTransaction, error)
}

type RazorpayGateway interface {
	PublicKey() string
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*gateway.RazorpayOrder, error)
	CreatePayout(ctx context.Context, p gateway.PayoutRequest) (*gateway.Payout, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
}

type PhonePeGateway interface {
	InitiatePayment(ctx context.Context, in gateway.PhonePePayRequest) (*gateway.PhonePePayResult, error)
	VerifyCallback(response, xVerify string) bool
	DecodeCallback(response string) (*gateway.PhonePeCallback, error)
}

type StripeGateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*gateway.StripeIntent, error)
	ConstructEvent(body []byte, sigHeader string) (stripe.Event, error)
}

// DefaultPaymentService is the production implementation. A nil gateway
// disables that provider.
type DefaultPaymentService struct {
	Wallet   wallet.WalletService
	Banks    bankRepo.BankAccountRepository
	Notifier notification.Notifier

	Razorpay RazorpayGateway
	PhonePe  PhonePeGateway
	Stripe   StripeGateway

	Currency       string
	CommissionRate float64
	MinWithdrawal  float64
}

func (s *DefaultPaymentService) currency() string {
	if s.Currency == "" {
		return "INR"
	}
	return s.Currency
}
