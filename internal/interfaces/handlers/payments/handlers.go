package payments

import (
	"encoding/json"
	"errors"
	"time"

	paysvc "givehub-backend/internal/application/payments"
	"givehub-backend/internal/domain"
	"givehub-backend/internal/middleware"
	"givehub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers serves donation checkout and the Stripe webhook.
type Handlers struct {
	Service       *paysvc.Service
	WebhookSecret string
	Now           func() time.Time // signature clock; defaults to time.Now
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Checkout POST /api/v1/donations/checkout: returns the PaymentIntent client secret.
func (h *Handlers) Checkout(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req paysvc.CheckoutInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	intent, err := h.Service.StartCheckout(c.UserContext(), actor.ID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Payment intent created", fiber.Map{
		"payment_intent_id": intent.ID,
		"client_secret":     intent.ClientSecret,
	}, nil)
}

// Webhook POST /api/v1/stripe/webhook: raw body, signature verification, then process.
// Events that can never be recorded get 200 so Stripe stops retrying. Any other failure
// gets 500 and Stripe redelivers; recording is idempotent per payment intent.
func (h *Handlers) Webhook(c *fiber.Ctx) error {
	rawBody := c.BodyRaw()
	sig := c.Get("Stripe-Signature")
	if len(rawBody) == 0 {
		log.Warn().Msg("Stripe webhook received empty body")
		return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: empty body")
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	if err := paysvc.VerifySignature(rawBody, sig, h.WebhookSecret, now); err != nil {
		log.Warn().Err(err).Bool("has_sig", sig != "").Bool("has_secret", h.WebhookSecret != "").Msg("Stripe webhook signature verification failed")
		return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: " + err.Error())
	}

	var event stripeEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		log.Warn().Err(err).Msg("Stripe webhook JSON parse failed")
		return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: " + err.Error())
	}

	if event.Type == "payment_intent.succeeded" {
		var pi paysvc.SucceededIntent
		if err := json.Unmarshal(event.Data.Object, &pi); err != nil {
			log.Warn().Err(err).Str("event_id", event.ID).Msg("Stripe webhook: bad payment intent object")
			return c.Status(fiber.StatusOK).SendString("ok")
		}
		if _, err := h.Service.RecordSucceeded(c.UserContext(), pi); err != nil {
			if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound) {
				log.Warn().Err(err).Str("event_id", event.ID).Str("payment_intent", pi.ID).Msg("Stripe webhook: donation rejected")
				return c.Status(fiber.StatusOK).SendString("ok")
			}
			log.Error().Err(err).Str("event_id", event.ID).Str("payment_intent", pi.ID).Msg("Stripe webhook: could not record donation")
			return c.Status(fiber.StatusInternalServerError).SendString("Webhook Error: could not record donation")
		}
	}
	return c.Status(fiber.StatusOK).SendString("ok")
}
