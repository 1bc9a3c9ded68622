package payments

import (
	"context"
	"math"
	"strconv"

	"givehub-backend/internal/application/recurrence"
	"givehub-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	metaDonorID        = "donor_id"
	metaOrganizationID = "organization_id"
	metaAnonymous      = "is_anonymous"
	metaInterval       = "recurrence_interval"
)

// Service starts donation checkouts and records donations for settled payments.
type Service struct {
	DB        *gorm.DB
	Donations *recurrence.Service
	Intents   IntentCreator
	Currency  string
}

type CheckoutInput struct {
	OrganizationID     uint    `json:"organization_id"`
	Amount             float64 `json:"amount"`
	IsAnonymous        bool    `json:"is_anonymous"`
	RecurrenceInterval string  `json:"recurrence_interval"`
}

// SucceededIntent is the part of a payment_intent.succeeded event we act on.
type SucceededIntent struct {
	ID             string            `json:"id"`
	AmountReceived int64             `json:"amount_received"`
	Currency       string            `json:"currency"`
	Status         string            `json:"status"`
	Metadata       map[string]string `json:"metadata"`
}

// StartCheckout validates the donation and creates a PaymentIntent carrying it as metadata.
// Nothing is stored until the payment succeeds.
func (s *Service) StartCheckout(ctx context.Context, donorID uint, in CheckoutInput) (*Intent, error) {
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return nil, domain.ErrInvalidAmount
	}
	cents := int64(math.Round(in.Amount * 100))
	if cents <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	interval, err := domain.ParseRecurrenceInterval(in.RecurrenceInterval)
	if err != nil {
		return nil, err
	}
	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.Organization{}).Where("id = ?", in.OrganizationID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, domain.ErrOrganizationNotFound
	}

	currency := s.Currency
	if currency == "" {
		currency = "usd"
	}
	return s.Intents.Create(ctx, cents, currency, map[string]string{
		metaDonorID:        strconv.FormatUint(uint64(donorID), 10),
		metaOrganizationID: strconv.FormatUint(uint64(in.OrganizationID), 10),
		metaAnonymous:      strconv.FormatBool(in.IsAnonymous),
		metaInterval:       string(interval),
	})
}

// RecordSucceeded creates the donation for a settled PaymentIntent. Intents without
// donation metadata are ignored and return nil. Redelivered events return the
// donation recorded the first time.
func (s *Service) RecordSucceeded(ctx context.Context, pi SucceededIntent) (*domain.Donation, error) {
	donorID, err1 := strconv.ParseUint(pi.Metadata[metaDonorID], 10, 64)
	orgID, err2 := strconv.ParseUint(pi.Metadata[metaOrganizationID], 10, 64)
	if pi.ID == "" || err1 != nil || err2 != nil || pi.AmountReceived <= 0 {
		log.Warn().Str("payment_intent", pi.ID).Msg("payments: succeeded intent without donation metadata, skipping")
		return nil, nil
	}
	anonymous, _ := strconv.ParseBool(pi.Metadata[metaAnonymous])

	id := pi.ID
	d, err := s.Donations.CreateDonation(ctx, recurrence.CreateInput{
		Amount:             float64(pi.AmountReceived) / 100,
		DonorID:            uint(donorID),
		OrganizationID:     uint(orgID),
		IsAnonymous:        anonymous,
		RecurrenceInterval: pi.Metadata[metaInterval],
		PaymentIntentID:    &id,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("payment_intent", pi.ID).Uint("donation_id", d.ID).Msg("payments: donation recorded")
	return d, nil
}
