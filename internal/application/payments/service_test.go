package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"givehub-backend/internal/application/recurrence"
	"givehub-backend/internal/domain"
	"givehub-backend/internal/pkg/constants"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeCreator struct {
	amount   int64
	currency string
	metadata map[string]string
}

func (f *fakeCreator) Create(_ context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	f.amount, f.currency, f.metadata = amountCents, currency, metadata
	return &Intent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil
}

func setupPayments(t *testing.T) (*Service, *fakeCreator, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Organization{}, &domain.Donation{}))
	require.NoError(t, db.Create(&domain.User{ID: 3, Username: "dana", Email: "dana@x.com", PasswordHash: "x", Role: constants.Donor}).Error)
	require.NoError(t, db.Create(&domain.Organization{ID: 7, Name: "Acme", Email: "a@x.com", Status: domain.OrganizationApproved}).Error)
	fc := &fakeCreator{}
	return &Service{DB: db, Donations: &recurrence.Service{DB: db}, Intents: fc, Currency: "eur"}, fc, db
}

func TestStartCheckout(t *testing.T) {
	svc, fc, _ := setupPayments(t)
	intent, err := svc.StartCheckout(context.Background(), 3, CheckoutInput{OrganizationID: 7, Amount: 12.34, RecurrenceInterval: "Monthly"})
	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret", intent.ClientSecret)
	assert.Equal(t, int64(1234), fc.amount)
	assert.Equal(t, "eur", fc.currency)
	assert.Equal(t, "3", fc.metadata["donor_id"])
	assert.Equal(t, "7", fc.metadata["organization_id"])
	assert.Equal(t, "monthly", fc.metadata["recurrence_interval"])
}

func TestStartCheckout_Validation(t *testing.T) {
	svc, _, _ := setupPayments(t)
	ctx := context.Background()
	_, err := svc.StartCheckout(ctx, 3, CheckoutInput{OrganizationID: 7, Amount: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.StartCheckout(ctx, 3, CheckoutInput{OrganizationID: 7, Amount: 5, RecurrenceInterval: "weekly"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.StartCheckout(ctx, 3, CheckoutInput{OrganizationID: 99, Amount: 5})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordSucceeded_Idempotent(t *testing.T) {
	svc, _, db := setupPayments(t)
	ctx := context.Background()
	pi := SucceededIntent{
		ID:             "pi_123",
		AmountReceived: 2500,
		Metadata: map[string]string{
			"donor_id": "3", "organization_id": "7", "is_anonymous": "true", "recurrence_interval": "annually",
		},
	}

	first, err := svc.RecordSucceeded(ctx, pi)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 25.0, first.Amount)
	assert.True(t, first.IsAnonymous)
	assert.NotNil(t, first.NextRecurrenceDate)

	second, err := svc.RecordSucceeded(ctx, pi)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var n int64
	db.Model(&domain.Donation{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestRecordSucceeded_IgnoresForeignIntents(t *testing.T) {
	svc, _, _ := setupPayments(t)
	d, err := svc.RecordSucceeded(context.Background(), SucceededIntent{ID: "pi_other", AmountReceived: 100})
	require.NoError(t, err)
	assert.Nil(t, d)
}

func sign(payload []byte, secret string, at time.Time) string {
	ts := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "." + string(payload)))
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	now := time.Now()

	assert.NoError(t, VerifySignature(payload, sign(payload, "whsec", now), "whsec", now))
	assert.Error(t, VerifySignature(payload, sign(payload, "other", now), "whsec", now))
	assert.Error(t, VerifySignature(payload, sign(payload, "whsec", now.Add(-10*time.Minute)), "whsec", now))
	assert.Error(t, VerifySignature(payload, "garbage", "whsec", now))
	assert.Error(t, VerifySignature(payload, "", "whsec", now))
}
