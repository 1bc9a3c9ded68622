// Package org owns the organization registration and approval workflow.
package org

import (
	"context"
	"errors"
	"strings"

	"givehub-backend/internal/application/credentials"
	"givehub-backend/internal/application/notify"
	"givehub-backend/internal/domain"
	"givehub-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RoleChecker gates privileged operations.
type RoleChecker interface {
	RequireRole(ctx context.Context, callerID uint, requiredRole string) error
}

// Service encapsulates organization lifecycle operations.
type Service struct {
	DB           *gorm.DB
	Guard        RoleChecker
	Notifier     notify.Notifier
	AdminEmail   string // receives new registration requests
	ApproverRole string // role allowed to approve, reject and review requests
}

type SubmitInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Email       string `json:"email"`
}

// Decision is the outcome of approve/reject. Success is false when the organization
// was already approved; that is not an error.
type Decision struct {
	Success bool `json:"success"`
}

// tests swap this to observe the plaintext credential.
var generatePassword = credentials.GenerateTemporaryPassword

// SubmitRegistration stores a pending organization and tells the admin address about it.
func (s *Service) SubmitRegistration(ctx context.Context, in SubmitInput) (*domain.Organization, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, domain.ErrEmailRequired
	}
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if !validation.IsValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}

	org := &domain.Organization{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Email:       email,
		Status:      domain.OrganizationPending,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkOrganizationUnique(tx, name, email); err != nil {
			return err
		}
		return tx.Create(org).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent registration committed between the checks and the insert.
		err = checkOrganizationUnique(s.DB.WithContext(ctx), name, email)
		if err == nil {
			err = domain.ErrAlreadyRegistered
		}
	}
	if err != nil {
		return nil, err
	}

	log.Info().Uint("org_id", org.ID).Str("name", org.Name).Msg("organization registration submitted")
	s.Notifier.Notify(ctx, notify.OrganizationRequested(s.AdminEmail, org.Name, org.Email))
	return org, nil
}

// ApproveRequest moves a pending organization to approved, stores the hash of a fresh
// temporary password and mails the plaintext to the organization. Only one of several
// concurrent approvals can win; the others get Success=false.
func (s *Service) ApproveRequest(ctx context.Context, actorID, orgID uint) (Decision, error) {
	if err := s.Guard.RequireRole(ctx, actorID, s.ApproverRole); err != nil {
		return Decision{}, err
	}
	org, err := s.find(ctx, orgID)
	if err != nil {
		return Decision{}, err
	}
	if org.IsApproved() {
		return Decision{Success: false}, nil
	}

	password, err := generatePassword()
	if err != nil {
		return Decision{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Decision{}, err
	}
	hashStr := string(hash)

	var won bool
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Organization{}).
			Where("id = ? AND status = ?", org.ID, domain.OrganizationPending).
			Updates(map[string]interface{}{
				"status":          domain.OrganizationApproved,
				"credential_hash": hashStr,
			})
		if res.Error != nil {
			return res.Error
		}
		won = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		return Decision{}, err
	}
	if !won {
		return Decision{Success: false}, nil
	}

	log.Info().Uint("org_id", org.ID).Uint("actor_id", actorID).Msg("organization approved")
	s.Notifier.Notify(ctx, notify.OrganizationApproved(org.Email, password))
	return Decision{Success: true}, nil
}

// RejectRequest notifies a pending organization that it was turned down. The row stays
// pending: rejection has no stored state.
func (s *Service) RejectRequest(ctx context.Context, actorID, orgID uint, reason string) (Decision, error) {
	if err := s.Guard.RequireRole(ctx, actorID, s.ApproverRole); err != nil {
		return Decision{}, err
	}
	org, err := s.find(ctx, orgID)
	if err != nil {
		return Decision{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Decision{}, domain.ErrReasonRequired
	}
	if org.IsApproved() {
		return Decision{Success: false}, nil
	}

	log.Info().Uint("org_id", org.ID).Uint("actor_id", actorID).Msg("organization rejected")
	s.Notifier.Notify(ctx, notify.OrganizationRejected(org.Email, reason))
	return Decision{Success: true}, nil
}

// ListPending returns pending requests, oldest first.
func (s *Service) ListPending(ctx context.Context, actorID uint) ([]domain.Organization, error) {
	if err := s.Guard.RequireRole(ctx, actorID, s.ApproverRole); err != nil {
		return nil, err
	}
	var orgs []domain.Organization
	if err := s.DB.WithContext(ctx).
		Where("status = ?", domain.OrganizationPending).
		Order("created_at ASC, id ASC").
		Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

func (s *Service) GetRequest(ctx context.Context, actorID, orgID uint) (*domain.Organization, error) {
	if err := s.Guard.RequireRole(ctx, actorID, s.ApproverRole); err != nil {
		return nil, err
	}
	return s.find(ctx, orgID)
}

func (s *Service) find(ctx context.Context, orgID uint) (*domain.Organization, error) {
	var org domain.Organization
	if err := s.DB.WithContext(ctx).Where("id = ?", orgID).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrganizationNotFound
		}
		return nil, err
	}
	return &org, nil
}

func checkOrganizationUnique(db *gorm.DB, name, email string) error {
	var count int64
	if err := db.Model(&domain.Organization{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrOrganizationNameTaken
	}
	if err := db.Model(&domain.Organization{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrOrganizationEmailTaken
	}
	return nil
}
