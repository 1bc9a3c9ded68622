package domain

import (
	"strings"
	"time"
)

// RecurrenceInterval is the repeat cadence of a donation.
type RecurrenceInterval string

const (
	RecurrenceNone     RecurrenceInterval = "none"
	RecurrenceMonthly  RecurrenceInterval = "monthly"
	RecurrenceAnnually RecurrenceInterval = "annually"
)

// ParseRecurrenceInterval normalizes user input. Empty input means no recurrence.
func ParseRecurrenceInterval(s string) (RecurrenceInterval, error) {
	switch RecurrenceInterval(strings.ToLower(strings.TrimSpace(s))) {
	case "", RecurrenceNone:
		return RecurrenceNone, nil
	case RecurrenceMonthly:
		return RecurrenceMonthly, nil
	case RecurrenceAnnually:
		return RecurrenceAnnually, nil
	}
	return "", ErrInvalidInterval
}

// Donation is a single gift from a donor to an organization.
// NextRecurrenceDate is non-nil iff RecurrenceInterval is not none. RecurrenceParentID
// is set on successors and names the donation that heads the recurring chain.
type Donation struct {
	ID                 uint               `gorm:"column:id;primaryKey" json:"id"`
	Amount             float64            `gorm:"column:amount;type:decimal(12,2);not null" json:"amount"`
	DonorID            uint               `gorm:"column:donor_id;not null;index" json:"donor_id"`
	OrganizationID     uint               `gorm:"column:organization_id;not null;index" json:"organization_id"`
	IsAnonymous        bool               `gorm:"column:is_anonymous;not null;default:false" json:"is_anonymous"`
	RecurrenceInterval RecurrenceInterval `gorm:"column:recurrence_interval;size:20;not null;default:'none'" json:"recurrence_interval"`
	NextRecurrenceDate *time.Time         `gorm:"column:next_recurrence_date;index" json:"next_recurrence_date"`
	RecurrenceParentID *uint              `gorm:"column:recurrence_parent_id;index" json:"recurrence_parent_id,omitempty"`
	PaymentIntentID    *string            `gorm:"column:payment_intent_id;size:255;uniqueIndex" json:"payment_intent_id,omitempty"`
	CreatedAt          time.Time          `gorm:"column:created_at" json:"createdAt"`
}

func (Donation) TableName() string {
	return "Donations"
}

// DueAt reports whether a successor should be spawned at now.
func (d *Donation) DueAt(now time.Time) bool {
	return d.NextRecurrenceDate != nil && !now.Before(*d.NextRecurrenceDate)
}
