package payment

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"meetmydesigners/database/repository"
	"meetmydesigners/models"
	"meetmydesigners/services/payment/gateway"
	"meetmydesigners/services/wallet"
	"meetmydesigners/services/wallet/wallettest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

type fakeRazorpay struct {
	orderID    string
	payoutErr  error
	payouts    []gateway.PayoutRequest
	validSig   string
	webhookSig string
}

func (f *fakeRazorpay) PublicKey() string { return "rzp_test_key" }
func (f *fakeRazorpay) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*gateway.RazorpayOrder, error) {
	return &gateway.RazorpayOrder{ID: f.orderID, Amount: amount, Currency: currency, Receipt: receipt}, nil
}
func (f *fakeRazorpay) CreatePayout(ctx context.Context, p gateway.PayoutRequest) (*gateway.Payout, error) {
	f.payouts = append(f.payouts, p)
	if f.payoutErr != nil {
		return nil, f.payoutErr
	}
	return &gateway.Payout{ID: "pout_1", Status: "processing", Amount: p.Amount}, nil
}
func (f *fakeRazorpay) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return signature == f.validSig
}
func (f *fakeRazorpay) VerifyWebhookSignature(body []byte, signature string) bool {
	return signature == f.webhookSig
}

type fakeBanks struct{ accounts map[string]*models.BankAccount }

func (f *fakeBanks) Create(ctx context.Context, a *models.BankAccount) error { return nil }
func (f *fakeBanks) GetByID(ctx context.Context, id string) (*models.BankAccount, error) {
	if a, ok := f.accounts[id]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}
func (f *fakeBanks) ListByUser(ctx context.Context, userID string) ([]models.BankAccount, error) {
	return nil, nil
}
func (f *fakeBanks) MarkVerified(ctx context.Context, id string, at time.Time) error { return nil }
func (f *fakeBanks) SetPrimary(ctx context.Context, userID, id string) error        { return nil }
func (f *fakeBanks) Delete(ctx context.Context, id string) error                    { return nil }

type sentNotification struct{ userID, kind string }

type recordingNotifier struct{ sent []sentNotification }

func (r *recordingNotifier) Dispatch(ctx context.Context, userID, kind, title, message string, data map[string]string) error {
	r.sent = append(r.sent, sentNotification{userID, kind})
	return nil
}

type fixture struct {
	svc      *DefaultPaymentService
	ledger   *wallettest.Repo
	wallet   *wallet.DefaultWalletService
	razorpay *fakeRazorpay
	notifier *recordingNotifier
}

func newFixture() *fixture {
	ledger := &wallettest.Repo{}
	w := &wallet.DefaultWalletService{Repo: ledger}
	rp := &fakeRazorpay{orderID: "order_1", validSig: "good", webhookSig: "hook"}
	n := &recordingNotifier{}
	svc := &DefaultPaymentService{
		Wallet:   w,
		Notifier: n,
		Razorpay: rp,
		Banks: &fakeBanks{accounts: map[string]*models.BankAccount{
			"verified":   {ID: "verified", UserID: "designer", AccountHolder: "Ada", AccountNumber: "123456789012", MaskedNumber: "XXXXXXXX9012", IFSC: "HDFC0001234", IsVerified: true},
			"unverified": {ID: "unverified", UserID: "designer", IsVerified: false},
			"other":      {ID: "other", UserID: "someone-else", IsVerified: true},
		}},
		Currency:      "INR",
		MinWithdrawal: 100,
	}
	return &fixture{svc: svc, ledger: ledger, wallet: w, razorpay: rp, notifier: n}
}

func (f *fixture) balance(t *testing.T, userID string) float64 {
	b, err := f.wallet.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return b
}

func TestProcessSessionPayment(t *testing.T) {
	f := newFixture()
	f.svc.CommissionRate = 0.2
	f.ledger.Seed("client", models.TxDeposit, 500)

	res, err := f.svc.ProcessSessionPayment(context.Background(), models.SessionPaymentRequest{
		ClientID: "client", DesignerID: "designer", Amount: 150, SessionID: "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, 150.0, res.Amount)
	assert.Equal(t, 120.0, res.DesignerAmount)
	assert.Equal(t, 350.0, res.ClientBalance)
	assert.NotEmpty(t, res.DebitTransactionID)
	assert.NotEmpty(t, res.CreditTransactionID)

	assert.Equal(t, 350.0, f.balance(t, "client"))
	assert.Equal(t, 120.0, f.balance(t, "designer"))
	assert.Len(t, f.notifier.sent, 2)
}

func TestProcessSessionPaymentValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.ProcessSessionPayment(ctx, models.SessionPaymentRequest{ClientID: "a", DesignerID: "b", Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = f.svc.ProcessSessionPayment(ctx, models.SessionPaymentRequest{ClientID: "a", DesignerID: "a", Amount: 10})
	assert.ErrorIs(t, err, ErrInvalidPayment)

	_, err = f.svc.ProcessSessionPayment(ctx, models.SessionPaymentRequest{ClientID: "a", DesignerID: "b", Amount: 10})
	assert.ErrorIs(t, err, wallet.ErrInsufficientBalance)
	assert.Empty(t, f.ledger.Rows())
}

func TestSessionPaymentCompensatesFailedCredit(t *testing.T) {
	f := newFixture()
	f.ledger.Seed("client", models.TxDeposit, 100)
	f.ledger.InsertErr = errors.New("write timeout")
	f.ledger.FailType = models.TxEarning

	_, err := f.svc.ProcessSessionPayment(context.Background(), models.SessionPaymentRequest{
		ClientID: "client", DesignerID: "designer", Amount: 40, SessionID: "s1",
	})
	require.Error(t, err)
	assert.Len(t, f.ledger.Deleted, 1)
	assert.Equal(t, 100.0, f.balance(t, "client"))
	assert.Zero(t, f.balance(t, "designer"))
	assert.Empty(t, f.notifier.sent)
}

func TestRefundSessionPayment(t *testing.T) {
	f := newFixture()
	f.svc.CommissionRate = 0.1
	f.ledger.Seed("client", models.TxDeposit, 100)
	ctx := context.Background()

	_, err := f.svc.ProcessSessionPayment(ctx, models.SessionPaymentRequest{ClientID: "client", DesignerID: "designer", Amount: 50, SessionID: "s1"})
	require.NoError(t, err)

	res, err := f.svc.RefundSessionPayment(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, res.Amount)
	assert.Equal(t, 45.0, res.DesignerAmount)
	assert.Equal(t, 100.0, f.balance(t, "client"))
	assert.Zero(t, f.balance(t, "designer"))

	_, err = f.svc.RefundSessionPayment(ctx, "s1")
	assert.ErrorIs(t, err, ErrAlreadyRefunded)

	_, err = f.svc.RefundSessionPayment(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNothingToRefund)
}

func TestCreateRazorpayDepositAndVerify(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	order, err := f.svc.CreateDepositOrder(ctx, "client", models.DepositRequest{Amount: 250, Gateway: GatewayRazorpay})
	require.NoError(t, err)
	assert.Equal(t, "order_1", order.OrderID)
	assert.Equal(t, "rzp_test_key", order.KeyID)
	assert.Zero(t, f.balance(t, "client"))

	_, err = f.svc.VerifyRazorpayPayment(ctx, "client", models.RazorpayVerifyRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: "forged"})
	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.Zero(t, f.balance(t, "client"))

	tx, err := f.svc.VerifyRazorpayPayment(ctx, "client", models.RazorpayVerifyRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: "good"})
	require.NoError(t, err)
	assert.Equal(t, models.TxCompleted, tx.Status)
	assert.Equal(t, 250.0, f.balance(t, "client"))

	// Repeating the verification does not credit twice.
	_, err = f.svc.VerifyRazorpayPayment(ctx, "client", models.RazorpayVerifyRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: "good"})
	require.NoError(t, err)
	assert.Equal(t, 250.0, f.balance(t, "client"))

	_, err = f.svc.VerifyRazorpayPayment(ctx, "intruder", models.RazorpayVerifyRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: "good"})
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestUnsupportedGateway(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateDepositOrder(context.Background(), "client", models.DepositRequest{Amount: 10, Gateway: "paypal"})
	assert.ErrorIs(t, err, ErrUnsupportedGateway)

	_, err = f.svc.CreateDepositOrder(context.Background(), "client", models.DepositRequest{Amount: 10, Gateway: GatewayStripe})
	assert.ErrorIs(t, err, ErrGatewayNotConfigured)
}

func TestRazorpayWebhook(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.svc.CreateDepositOrder(ctx, "client", models.DepositRequest{Amount: 99, Gateway: GatewayRazorpay})
	require.NoError(t, err)

	captured := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_9","order_id":"order_1","amount":9900,"notes":{"user_id":"client"}}}}}`)

	assert.ErrorIs(t, f.svc.HandleRazorpayWebhook(ctx, captured, "bad"), ErrInvalidSignature)
	assert.Zero(t, f.balance(t, "client"))

	require.NoError(t, f.svc.HandleRazorpayWebhook(ctx, captured, "hook"))
	assert.Equal(t, 99.0, f.balance(t, "client"))

	// A late failure event never undoes a completed deposit.
	failed := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_9","order_id":"order_1","error_description":"declined"}}}}`)
	require.NoError(t, f.svc.HandleRazorpayWebhook(ctx, failed, "hook"))
	assert.Equal(t, 99.0, f.balance(t, "client"))

	require.NoError(t, f.svc.HandleRazorpayWebhook(ctx, []byte(`{"event":"refund.created"}`), "hook"))
}

func TestRazorpayWebhookCreatesMissingDeposit(t *testing.T) {
	f := newFixture()
	body := []byte(`{"event":"order.paid","payload":{"order":{"entity":{"id":"order_x","notes":{"user_id":"client"}}},"payment":{"entity":{"id":"pay_x","order_id":"order_x","amount":12345}}}}`)

	require.NoError(t, f.svc.HandleRazorpayWebhook(context.Background(), body, "hook"))
	assert.Equal(t, 123.45, f.balance(t, "client"))
}

type fakePhonePe struct{ gateway.PhonePe }

func (f *fakePhonePe) InitiatePayment(ctx context.Context, in gateway.PhonePePayRequest) (*gateway.PhonePePayResult, error) {
	return &gateway.PhonePePayResult{RedirectURL: "https://pay/" + in.MerchantTransactionID}, nil
}

func TestPhonePeDepositFlow(t *testing.T) {
	f := newFixture()
	pp := &fakePhonePe{gateway.PhonePe{SaltKey: "salt", SaltIndex: "1"}}
	f.svc.PhonePe = pp
	ctx := context.Background()

	order, err := f.svc.CreateDepositOrder(ctx, "client", models.DepositRequest{Amount: 300, Gateway: GatewayPhonePe})
	require.NoError(t, err)
	assert.Equal(t, order.TransactionID, order.OrderID)
	assert.Equal(t, "https://pay/"+order.TransactionID, order.RedirectURL)

	response := base64.StdEncoding.EncodeToString([]byte(`{"success":true,"code":"PAYMENT_SUCCESS","data":{"merchantTransactionId":"` + order.TransactionID + `","transactionId":"T1","amount":30000,"state":"COMPLETED"}}`))
	body := []byte(`{"response":"` + response + `"}`)

	assert.ErrorIs(t, f.svc.HandlePhonePeCallback(ctx, body, "wrong###1"), ErrInvalidSignature)
	require.NoError(t, f.svc.HandlePhonePeCallback(ctx, body, gateway.PhonePeChecksum(response, "", "salt", "1")))
	assert.Equal(t, 300.0, f.balance(t, "client"))
}

type fakeStripe struct {
	event stripe.Event
	err   error
}

func (f *fakeStripe) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*gateway.StripeIntent, error) {
	return &gateway.StripeIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil
}
func (f *fakeStripe) ConstructEvent(body []byte, sigHeader string) (stripe.Event, error) {
	return f.event, f.err
}

func TestStripeWebhook(t *testing.T) {
	f := newFixture()
	st := &fakeStripe{}
	f.svc.Stripe = st
	ctx := context.Background()

	order, err := f.svc.CreateDepositOrder(ctx, "client", models.DepositRequest{Amount: 20, Gateway: GatewayStripe})
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", order.ClientSecret)

	st.err = errors.New("no signatures found matching the expected signature")
	assert.ErrorIs(t, f.svc.HandleStripeWebhook(ctx, nil, "t=1,v1=x"), ErrInvalidSignature)

	st.err = nil
	st.event = stripe.Event{
		Type: "payment_intent.payment_failed",
		Data: &stripe.EventData{Raw: []byte(`{"id":"pi_1","last_payment_error":{"message":"card declined"}}`)},
	}
	require.NoError(t, f.svc.HandleStripeWebhook(ctx, nil, ""))
	tx, err := f.wallet.FindByReference(ctx, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, models.TxFailed, tx.Status)
}

func TestWithdrawalGuards(t *testing.T) {
	f := newFixture()
	f.ledger.Seed("designer", models.TxEarning, 500)
	ctx := context.Background()

	_, err := f.svc.ProcessWithdrawal(ctx, "designer", models.WithdrawalRequest{Amount: 50, BankAccountID: "verified"})
	assert.ErrorIs(t, err, ErrBelowMinimumWithdrawal)

	_, err = f.svc.ProcessWithdrawal(ctx, "designer", models.WithdrawalRequest{Amount: 200, BankAccountID: "unverified"})
	assert.ErrorIs(t, err, ErrBankAccountNotVerified)

	_, err = f.svc.ProcessWithdrawal(ctx, "designer", models.WithdrawalRequest{Amount: 200, BankAccountID: "other"})
	assert.ErrorIs(t, err, ErrBankAccountNotFound)

	_, err = f.svc.ProcessWithdrawal(ctx, "designer", models.WithdrawalRequest{Amount: 600, BankAccountID: "verified"})
	assert.ErrorIs(t, err, wallet.ErrInsufficientBalance)

	assert.Empty(t, f.razorpay.payouts)
}

func TestWithdrawalSuccess(t *testing.T) {
	f := newFixture()
	f.ledger.Seed("designer", models.TxEarning, 500)

	tx, err := f.svc.ProcessWithdrawal(context.Background(), "designer", models.WithdrawalRequest{Amount: 200, BankAccountID: "verified"})
	require.NoError(t, err)
	assert.Equal(t, models.TxCompleted, tx.Status)
	assert.Equal(t, "pout_1", tx.Reference)
	require.Len(t, f.razorpay.payouts, 1)
	assert.Equal(t, int64(20000), f.razorpay.payouts[0].Amount)
	assert.Equal(t, tx.TransactionID, f.razorpay.payouts[0].ReferenceID)
	assert.Equal(t, 300.0, f.balance(t, "designer"))
}

func TestWithdrawalGatewayFailureReleasesFunds(t *testing.T) {
	f := newFixture()
	f.ledger.Seed("designer", models.TxEarning, 500)
	f.razorpay.payoutErr = gateway.ErrGateway

	_, err := f.svc.ProcessWithdrawal(context.Background(), "designer", models.WithdrawalRequest{Amount: 200, BankAccountID: "verified"})
	assert.ErrorIs(t, err, gateway.ErrGateway)
	assert.Equal(t, 500.0, f.balance(t, "designer"))
}
