// Package payments collects donations through Stripe PaymentIntents and records the
// donation once Stripe reports the payment as settled.
package payments

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// IntentCreator abstracts Stripe PaymentIntent creation for testability.
type IntentCreator interface {
	Create(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error)
}

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// StripeCreator uses the Stripe Go SDK to create PaymentIntents.
type StripeCreator struct {
	SecretKey string
}

func (r *StripeCreator) Create(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	if r.SecretKey == "" {
		return nil, fiber.NewError(fiber.StatusNotImplemented, "Stripe integration pending")
	}
	stripe.Key = r.SecretKey
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		Metadata: metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
