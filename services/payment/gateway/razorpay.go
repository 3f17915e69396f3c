package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Razorpay is a minimal client for the Orders and Payouts APIs.
type Razorpay struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	// AccountNumber is the RazorpayX account payouts are drawn from.
	AccountNumber string
	BaseURL       string
	HTTP          *http.Client
}

type RazorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// PayoutRequest describes a bank transfer. Amount is in minor units.
type PayoutRequest struct {
	ReferenceID   string
	Amount        int64
	Currency      string
	AccountHolder string
	AccountNumber string
	IFSC          string
	ContactName   string
	ContactID     string
	Narration     string
}

type Payout struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	UTR           string `json:"utr"`
	FailureReason string `json:"failure_reason"`
}

// Failed reports whether the payout was refused outright.
func (p Payout) Failed() bool {
	switch p.Status {
	case "rejected", "failed", "reversed", "cancelled":
		return true
	}
	return false
}

func (r *Razorpay) PublicKey() string { return r.KeyID }

func (r *Razorpay) newRequest(path string) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(r.BaseURL, "/")+path, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(r.KeyID, r.KeySecret)
	return req, nil
}

// CreateOrder opens a checkout order for amount minor units.
func (r *Razorpay) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*RazorpayOrder, error) {
	req, err := r.newRequest("/v1/orders")
	if err != nil {
		return nil, err
	}
	body := map[string]any{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}
	var order RazorpayOrder
	if _, err := doJSON(ctx, defaultClient(r.HTTP), req, body, &order); err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	return &order, nil
}

// CreatePayout sends money to a bank account using a composite payout, so no
// contact or fund account has to exist beforehand.
func (r *Razorpay) CreatePayout(ctx context.Context, p PayoutRequest) (*Payout, error) {
	req, err := r.newRequest("/v1/payouts")
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Payout-Idempotency", p.ReferenceID)

	body := map[string]any{
		"account_number":       r.AccountNumber,
		"amount":               p.Amount,
		"currency":             p.Currency,
		"mode":                 "IMPS",
		"purpose":              "payout",
		"queue_if_low_balance": true,
		"reference_id":         p.ReferenceID,
		"narration":            p.Narration,
		"fund_account": map[string]any{
			"account_type": "bank_account",
			"bank_account": map[string]string{
				"name":           p.AccountHolder,
				"ifsc":           p.IFSC,
				"account_number": p.AccountNumber,
			},
			"contact": map[string]string{
				"name":         p.ContactName,
				"type":         "customer",
				"reference_id": p.ContactID,
			},
		},
	}
	var payout Payout
	if _, err := doJSON(ctx, defaultClient(r.HTTP), req, body, &payout); err != nil {
		return nil, fmt.Errorf("razorpay create payout: %w", err)
	}
	if payout.Failed() {
		return &payout, fmt.Errorf("%w: payout %s %s: %s", ErrGateway, payout.ID, payout.Status, payout.FailureReason)
	}
	return &payout, nil
}

// RazorpayPaymentSignature is hex(HMAC_SHA256(order_id|payment_id, secret)).
func RazorpayPaymentSignature(orderID, paymentID, secret string) string {
	return hmacHex([]byte(orderID+"|"+paymentID), secret)
}

func (r *Razorpay) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	if r.KeySecret == "" || signature == "" {
		return false
	}
	return equalHex(RazorpayPaymentSignature(orderID, paymentID, r.KeySecret), signature)
}

// VerifyWebhookSignature checks X-Razorpay-Signature against the raw body.
func (r *Razorpay) VerifyWebhookSignature(body []byte, signature string) bool {
	if r.WebhookSecret == "" || signature == "" {
		return false
	}
	return equalHex(hmacHex(body, r.WebhookSecret), signature)
}
