// Package tokens keeps short-lived, single-use opaque tokens mapped to the subject they
// authorize.
package tokens

import (
	"context"
	"time"

	"givehub-backend/internal/application/credentials"
)

// Purpose scopes a token so it can only be redeemed by the flow that issued it.
type Purpose string

const PurposePasswordReset Purpose = "password_reset"

// Store issues and redeems tokens. Consume is atomic: of several concurrent redemptions
// of the same token exactly one gets the subject, the rest get domain.ErrTokenNotFound.
type Store interface {
	Issue(ctx context.Context, purpose Purpose, subject string, ttl time.Duration) (string, error)
	Consume(ctx context.Context, purpose Purpose, token string) (string, error)
}

const maxIssueAttempts = 3

// newToken is swapped in tests to force collisions.
var newToken = credentials.GenerateOpaqueToken
