package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the application layer wraps exactly one of these,
// so callers classify with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrDelivery     = errors.New("delivery failed")
)

var (
	ErrEmailRequired          = fmt.Errorf("%w: Email is required", ErrValidation)
	ErrNameRequired           = fmt.Errorf("%w: Name is required", ErrValidation)
	ErrReasonRequired         = fmt.Errorf("%w: Reason is required for rejection", ErrValidation)
	ErrInvalidAmount          = fmt.Errorf("%w: Amount must be a positive number", ErrValidation)
	ErrInvalidInterval        = fmt.Errorf("%w: Recurrence interval must be one of none, monthly, annually", ErrValidation)
	ErrInvalidEmail           = fmt.Errorf("%w: Invalid email format", ErrValidation)
	ErrInvalidPassword        = fmt.Errorf("%w: Invalid password format", ErrValidation)
	ErrUsernameRequired       = fmt.Errorf("%w: Username is required", ErrValidation)
	ErrInvalidRole            = fmt.Errorf("%w: Invalid role", ErrValidation)
	ErrOrganizationNameTaken  = fmt.Errorf("%w: Organization name already registered", ErrConflict)
	ErrOrganizationEmailTaken = fmt.Errorf("%w: Organization email already registered", ErrConflict)
	ErrEmailTaken             = fmt.Errorf("%w: Email already registered", ErrConflict)
	ErrUsernameTaken          = fmt.Errorf("%w: Username already registered", ErrConflict)
	ErrAlreadyRegistered      = fmt.Errorf("%w: Already registered", ErrConflict)
	ErrOrganizationNotFound   = fmt.Errorf("%w: Organization request not found", ErrNotFound)
	ErrUserNotFound           = fmt.Errorf("%w: User not found", ErrNotFound)
	ErrDonationNotFound       = fmt.Errorf("%w: Donation not found", ErrNotFound)
	ErrTokenNotFound          = fmt.Errorf("%w: Invalid or expired token", ErrNotFound)
	ErrAccessDenied           = fmt.Errorf("%w: User is Forbidden from performing this action", ErrForbidden)
	ErrOrganizationPending    = fmt.Errorf("%w: Organization is pending approval. Please wait for approval.", ErrForbidden)
	ErrInvalidCredentials     = fmt.Errorf("%w: Invalid credentials", ErrUnauthorized)
)
