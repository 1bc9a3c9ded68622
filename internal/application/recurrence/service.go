package recurrence

import (
	"context"
	"errors"
	"math"
	"time"

	"givehub-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service creates donations and advances recurring ones.
type Service struct {
	DB  *gorm.DB
	Now func() time.Time // defaults to time.Now
}

type CreateInput struct {
	Amount             float64 `json:"amount"`
	DonorID            uint    `json:"donor_id"`
	OrganizationID     uint    `json:"organization_id"`
	IsAnonymous        bool    `json:"is_anonymous"`
	RecurrenceInterval string  `json:"recurrence_interval"`

	// PaymentIntentID makes creation idempotent per settled payment.
	PaymentIntentID *string `json:"-"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return normalize(s.Now())
	}
	return normalize(time.Now())
}

// normalize drops the monotonic reading and sub-microsecond precision Postgres would lose.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// CreateDonation records a donation. Recurring donations get their first
// next_recurrence_date from the creation time. With a PaymentIntentID, a second call for
// the same payment returns the donation recorded by the first.
func (s *Service) CreateDonation(ctx context.Context, in CreateInput) (*domain.Donation, error) {
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return nil, domain.ErrInvalidAmount
	}
	interval, err := domain.ParseRecurrenceInterval(in.RecurrenceInterval)
	if err != nil {
		return nil, err
	}

	createdAt := s.now()
	d := &domain.Donation{
		Amount:             in.Amount,
		DonorID:            in.DonorID,
		OrganizationID:     in.OrganizationID,
		IsAnonymous:        in.IsAnonymous,
		RecurrenceInterval: interval,
		NextRecurrenceDate: ComputeNextRecurrence(interval, createdAt),
		PaymentIntentID:    in.PaymentIntentID,
		CreatedAt:          createdAt,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.PaymentIntentID != nil {
			var existing domain.Donation
			err := tx.Where("payment_intent_id = ?", *in.PaymentIntentID).First(&existing).Error
			if err == nil {
				d = &existing
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		if err := exists(tx, &domain.User{}, in.DonorID, domain.ErrUserNotFound); err != nil {
			return err
		}
		if err := exists(tx, &domain.Organization{}, in.OrganizationID, domain.ErrOrganizationNotFound); err != nil {
			return err
		}
		return tx.Create(d).Error
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func exists(tx *gorm.DB, model interface{}, id uint, notFound error) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound
	}
	return nil
}

// AdvanceIfDue spawns one successor of donationID when its next_recurrence_date is at
// or before now, and moves the original's date forward by one interval. It returns
// the successor, or nil with no writes when nothing was due. The original's date is
// compare-and-set, so concurrent callers cannot both spawn a successor for the same
// occurrence. Successors point back at the head of their chain.
func (s *Service) AdvanceIfDue(ctx context.Context, donationID uint, now time.Time) (*domain.Donation, error) {
	now = normalize(now)
	var successor *domain.Donation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original domain.Donation
		if err := tx.Where("id = ?", donationID).First(&original).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrDonationNotFound
			}
			return err
		}
		if !original.DueAt(now) {
			return nil
		}
		scheduled := *original.NextRecurrenceDate
		next := ComputeNextRecurrence(original.RecurrenceInterval, scheduled)
		if next == nil {
			return nil
		}

		res := tx.Model(&domain.Donation{}).
			Where("id = ? AND next_recurrence_date = ?", original.ID, scheduled).
			Update("next_recurrence_date", *next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		head := original.ID
		if original.RecurrenceParentID != nil {
			head = *original.RecurrenceParentID
		}
		successor = &domain.Donation{
			Amount:             original.Amount,
			DonorID:            original.DonorID,
			OrganizationID:     original.OrganizationID,
			IsAnonymous:        original.IsAnonymous,
			RecurrenceInterval: original.RecurrenceInterval,
			NextRecurrenceDate: next,
			RecurrenceParentID: &head,
			CreatedAt:          now,
		}
		return tx.Create(successor).Error
	})
	if err != nil {
		return nil, err
	}
	if successor != nil {
		log.Info().Uint("donation_id", donationID).Uint("successor_id", successor.ID).
			Time("next_recurrence_date", *successor.NextRecurrenceDate).Msg("recurring donation advanced")
	}
	return successor, nil
}

// DueDonationIDs lists chain heads whose next occurrence is at or before now, earliest
// first. Successors carry a copy of the schedule and are never swept, so each chain
// grows by one donation per interval.
func (s *Service) DueDonationIDs(ctx context.Context, now time.Time, limit int) ([]uint, error) {
	var ids []uint
	q := s.DB.WithContext(ctx).Model(&domain.Donation{}).
		Where("next_recurrence_date IS NOT NULL AND next_recurrence_date <= ?", normalize(now)).
		Where("recurrence_parent_id IS NULL").
		Order("next_recurrence_date ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Service) GetDonation(ctx context.Context, id uint) (*domain.Donation, error) {
	var d domain.Donation
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDonationNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListDonations returns a donor's donations, newest first.
func (s *Service) ListDonations(ctx context.Context, donorID uint) ([]domain.Donation, error) {
	var list []domain.Donation
	if err := s.DB.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("created_at DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
