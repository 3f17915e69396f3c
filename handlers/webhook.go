package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"meetmydesigners/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBytes = 1 << 20

// WebhookHandler receives gateway callbacks. Bodies are read raw because the
// signatures cover the exact bytes sent.
type WebhookHandler struct {
	Payments payment.PaymentService
}

func NewWebhookHandler(ps payment.PaymentService) *WebhookHandler {
	return &WebhookHandler{Payments: ps}
}

type webhookFunc func(ctx context.Context, body []byte, signature string) error

func (h *WebhookHandler) handle(c *gin.Context, gateway, signatureHeader string, fn webhookFunc) {
	logger := getLogger(c).With(zap.String("gateway", gateway))
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		badRequest(c, err)
		return
	}
	err = fn(c.Request.Context(), body, c.GetHeader(signatureHeader))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	case errors.Is(err, payment.ErrInvalidSignature):
		logger.Warn("webhook signature rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
	case errors.Is(err, payment.ErrInvalidPayment), errors.Is(err, payment.ErrDepositNotFound):
		// Acknowledged so the gateway stops retrying a payload we cannot use.
		logger.Warn("webhook ignored", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	case errors.Is(err, payment.ErrGatewayNotConfigured):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.Error("webhook processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
	}
}

// RazorpayHandler handles POST /api/webhooks/razorpay.
func (h *WebhookHandler) RazorpayHandler(c *gin.Context) {
	h.handle(c, payment.GatewayRazorpay, "X-Razorpay-Signature", h.Payments.HandleRazorpayWebhook)
}

// PhonePeHandler handles POST /api/webhooks/phonepe.
func (h *WebhookHandler) PhonePeHandler(c *gin.Context) {
	h.handle(c, payment.GatewayPhonePe, "X-VERIFY", h.Payments.HandlePhonePeCallback)
}

// StripeHandler handles POST /api/webhooks/stripe.
func (h *WebhookHandler) StripeHandler(c *gin.Context) {
	h.handle(c, payment.GatewayStripe, "Stripe-Signature", h.Payments.HandleStripeWebhook)
}
