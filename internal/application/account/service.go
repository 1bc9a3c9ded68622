// Package account handles user sign-up, sign-in, password reset and admin registration,
// plus sign-in for approved organizations.
package account

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"givehub-backend/internal/application/credentials"
	"givehub-backend/internal/application/notify"
	"givehub-backend/internal/application/tokens"
	"givehub-backend/internal/domain"
	"givehub-backend/internal/pkg/constants"
	"givehub-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	bcryptCost      = 10
	defaultResetTTL = time.Hour
	userSubjectPref = "user:"
)

// RoleChecker gates privileged operations.
type RoleChecker interface {
	RequireRole(ctx context.Context, callerID uint, requiredRole string) error
}

type Service struct {
	DB              *gorm.DB
	Guard           RoleChecker
	Notifier        notify.Notifier
	Tokens          tokens.Store
	ResetBaseURL    string
	ResetTokenTTL   time.Duration
	RegistrarRole   string // role allowed to register admins
	SuperadminEmail string // receives a notice for every admin registration
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterAdminInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"` // optional; a temporary one is generated when empty
	Role     string `json:"role"`
}

// tests swap this to observe the generated admin password.
var generatePassword = credentials.GenerateTemporaryPassword

// RegisterUser creates a donor account.
func (s *Service) RegisterUser(ctx context.Context, in RegisterInput) (*domain.User, error) {
	u, err := s.newUser(in.Username, in.Email, in.Password, constants.Donor, true)
	if err != nil {
		return nil, err
	}
	if err := s.insertUser(ctx, u); err != nil {
		return nil, err
	}
	log.Info().Uint("user_id", u.ID).Msg("user registered")
	return u, nil
}

// LoginUser verifies email and password.
func (s *Service) LoginUser(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return &u, nil
}

// AuthenticateOrganization signs in an organization with the temporary password it was
// mailed on approval. Pending organizations are refused with ErrOrganizationPending.
func (s *Service) AuthenticateOrganization(ctx context.Context, email, password string) (*domain.Organization, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	var org domain.Organization
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !org.IsApproved() || org.CredentialHash == nil {
		return nil, domain.ErrOrganizationPending
	}
	if bcrypt.CompareHashAndPassword([]byte(*org.CredentialHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return &org, nil
}

// RequestPasswordReset issues a single-use reset token and mails the reset link.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return domain.ErrEmailRequired
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	ttl := s.ResetTokenTTL
	if ttl <= 0 {
		ttl = defaultResetTTL
	}
	token, err := s.Tokens.Issue(ctx, tokens.PurposePasswordReset, userSubjectPref+strconv.FormatUint(uint64(u.ID), 10), ttl)
	if err != nil {
		return err
	}
	s.Notifier.Notify(ctx, notify.PasswordReset(u.Email, s.ResetBaseURL+"/"+token))
	return nil
}

// ResetPassword redeems token and stores the new password for the user it was issued
// to. A token works once.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) (*domain.User, error) {
	if !validation.IsValidPassword(newPassword) {
		return nil, domain.ErrInvalidPassword
	}
	subject, err := s.Tokens.Consume(ctx, tokens.PurposePasswordReset, token)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(subject, userSubjectPref) {
		return nil, domain.ErrTokenNotFound
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(subject, userSubjectPref), 10, 64)
	if err != nil {
		return nil, domain.ErrTokenNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return nil, err
	}

	var u domain.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&u).Update("password_hash", string(hash)).Error; err != nil {
		return nil, err
	}
	log.Info().Uint("user_id", u.ID).Msg("password reset")
	return &u, nil
}

// AdminRegistration is the outcome of RegisterAdmin. TemporaryPassword is set only when
// the password was generated; it is also mailed to the new admin.
type AdminRegistration struct {
	User              *domain.User
	TemporaryPassword string
}

// RegisterAdmin creates an admin or superadmin account on behalf of actorID.
func (s *Service) RegisterAdmin(ctx context.Context, actorID uint, in RegisterAdminInput) (*AdminRegistration, error) {
	if err := s.Guard.RequireRole(ctx, actorID, s.RegistrarRole); err != nil {
		return nil, err
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role != constants.Admin && role != constants.Superadmin {
		return nil, domain.ErrInvalidRole
	}

	password := in.Password
	generated := ""
	if password == "" {
		p, err := generatePassword()
		if err != nil {
			return nil, err
		}
		password, generated = p, p
	}
	u, err := s.newUser(in.Username, in.Email, password, role, generated == "")
	if err != nil {
		return nil, err
	}
	if err := s.insertUser(ctx, u); err != nil {
		return nil, err
	}

	log.Info().Uint("user_id", u.ID).Uint("actor_id", actorID).Str("role", role).Msg("admin registered")
	s.Notifier.Notify(ctx, notify.AdminCredentials(u.Email, generated))
	if s.SuperadminEmail != "" {
		s.Notifier.Notify(ctx, notify.AdminRegisteredNotice(s.SuperadminEmail, u.Email, role))
	}
	return &AdminRegistration{User: u, TemporaryPassword: generated}, nil
}

// newUser validates input and hashes the password. Generated temporary passwords are
// exempt from the strength rule.
func (s *Service) newUser(username, email, password, role string, checkStrength bool) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" {
		return nil, domain.ErrUsernameRequired
	}
	if email == "" {
		return nil, domain.ErrEmailRequired
	}
	if !validation.IsValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}
	if !constants.IsValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	if checkStrength && !validation.IsValidPassword(password) {
		return nil, domain.ErrInvalidPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	return &domain.User{Username: username, Email: email, PasswordHash: string(hash), Role: role}, nil
}

func (s *Service) insertUser(ctx context.Context, u *domain.User) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUserUnique(tx, u); err != nil {
			return err
		}
		return tx.Create(u).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent sign-up committed between the checks and the insert.
		err = checkUserUnique(s.DB.WithContext(ctx), u)
		if err == nil {
			err = domain.ErrAlreadyRegistered
		}
	}
	return err
}

func checkUserUnique(db *gorm.DB, u *domain.User) error {
	var count int64
	if err := db.Model(&domain.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrEmailTaken
	}
	if err := db.Model(&domain.User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrUsernameTaken
	}
	return nil
}
