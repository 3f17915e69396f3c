package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const phonePePayPath = "/pg/v1/pay"

// PhonePe initiates pay-page payments and verifies server callbacks.
type PhonePe struct {
	MerchantID  string
	SaltKey     string
	SaltIndex   string
	BaseURL     string
	RedirectURL string
	CallbackURL string
	HTTP        *http.Client
}

type PhonePePayRequest struct {
	MerchantTransactionID string
	MerchantUserID        string
	Amount                int64
	MobileNumber          string
}

type PhonePePayResult struct {
	RedirectURL string
	Code        string
}

// PhonePeCallback is the decoded body of a server-to-server callback.
type PhonePeCallback struct {
	Success               bool
	Code                  string
	MerchantTransactionID string
	TransactionID         string
	Amount                int64
	State                 string
}

// Succeeded reports a completed payment.
func (c PhonePeCallback) Succeeded() bool {
	return c.Success && c.Code == "PAYMENT_SUCCESS"
}

// Pending reports a payment the provider has not settled yet.
func (c PhonePeCallback) Pending() bool {
	return c.Code == "PAYMENT_PENDING"
}

// PhonePeChecksum is SHA256(payload + suffix + saltKey) + "###" + saltIndex.
// Pay requests use the API path as suffix; callbacks use none.
func PhonePeChecksum(payload, suffix, saltKey, saltIndex string) string {
	return sha256Hex(payload+suffix+saltKey) + "###" + saltIndex
}

// InitiatePayment creates a pay-page payment and returns the URL the user must visit.
func (p *PhonePe) InitiatePayment(ctx context.Context, in PhonePePayRequest) (*PhonePePayResult, error) {
	payload := map[string]any{
		"merchantId":            p.MerchantID,
		"merchantTransactionId": in.MerchantTransactionID,
		"merchantUserId":        in.MerchantUserID,
		"amount":                in.Amount,
		"redirectUrl":           p.RedirectURL,
		"redirectMode":          "REDIRECT",
		"callbackUrl":           p.CallbackURL,
		"paymentInstrument":     map[string]string{"type": "PAY_PAGE"},
	}
	if in.MobileNumber != "" {
		payload["mobileNumber"] = in.MobileNumber
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(p.BaseURL, "/")+phonePePayPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-VERIFY", PhonePeChecksum(encoded, phonePePayPath, p.SaltKey, p.SaltIndex))
	req.Header.Set("Accept", "application/json")

	body, err := doJSON(ctx, defaultClient(p.HTTP), req, map[string]string{"request": encoded}, nil)
	if err != nil {
		return nil, fmt.Errorf("phonepe pay: %w", err)
	}

	res := gjson.ParseBytes(body)
	if !res.Get("success").Bool() {
		return nil, fmt.Errorf("%w: phonepe pay: %s %s", ErrGateway, res.Get("code").String(), res.Get("message").String())
	}
	url := res.Get("data.instrumentResponse.redirectInfo.url").String()
	if url == "" {
		return nil, fmt.Errorf("%w: phonepe pay: missing redirect url", ErrGateway)
	}
	return &PhonePePayResult{RedirectURL: url, Code: res.Get("code").String()}, nil
}

// VerifyCallback checks the X-VERIFY header of a callback against its base64 response.
func (p *PhonePe) VerifyCallback(response, xVerify string) bool {
	if p.SaltKey == "" || xVerify == "" {
		return false
	}
	return equalHex(PhonePeChecksum(response, "", p.SaltKey, p.SaltIndex), xVerify)
}

// DecodeCallback decodes the base64 response field of a callback.
func (p *PhonePe) DecodeCallback(response string) (*PhonePeCallback, error) {
	raw, err := base64.StdEncoding.DecodeString(response)
	if err != nil {
		return nil, fmt.Errorf("invalid phonepe callback encoding: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid phonepe callback payload")
	}
	res := gjson.ParseBytes(raw)
	cb := &PhonePeCallback{
		Success:               res.Get("success").Bool(),
		Code:                  res.Get("code").String(),
		MerchantTransactionID: res.Get("data.merchantTransactionId").String(),
		TransactionID:         res.Get("data.transactionId").String(),
		Amount:                res.Get("data.amount").Int(),
		State:                 res.Get("data.state").String(),
	}
	if cb.MerchantTransactionID == "" {
		return nil, fmt.Errorf("phonepe callback without merchantTransactionId")
	}
	return cb, nil
}
