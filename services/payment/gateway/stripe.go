package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Stripe creates payment intents and parses webhook events. The API key is
// the package-level stripe.Key set at startup.
type Stripe struct {
	WebhookSecret string
}

type StripeIntent struct {
	ID           string
	ClientSecret string
}

func (s *Stripe) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*StripeIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe payment intent: %v", ErrGateway, err)
	}
	return &StripeIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// ConstructEvent verifies the Stripe-Signature header and decodes the event.
func (s *Stripe) ConstructEvent(body []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(body, sigHeader, s.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
