package domain

import (
	"time"
)

// OrganizationStatus is the approval state of an organization. There is deliberately no
// rejected state: a rejection is only communicated by notification and the row stays pending.
type OrganizationStatus string

const (
	OrganizationPending  OrganizationStatus = "pending"
	OrganizationApproved OrganizationStatus = "approved"
)

// Organization is a registration request that becomes a login-capable account once approved.
// CredentialHash is nil while pending and set exactly once by the approval.
type Organization struct {
	ID             uint               `gorm:"column:id;primaryKey" json:"id"`
	Name           string             `gorm:"column:name;size:120;not null;uniqueIndex" json:"name"`
	Description    string             `gorm:"column:description;size:255;not null" json:"description"`
	Email          string             `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	Status         OrganizationStatus `gorm:"column:status;size:16;not null;default:'pending';index" json:"status"`
	CredentialHash *string            `gorm:"column:credential_hash;size:60" json:"-"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

func (Organization) TableName() string {
	return "Organizations"
}

// IsApproved reports whether the organization reached its terminal state.
func (o *Organization) IsApproved() bool {
	return o.Status == OrganizationApproved
}
