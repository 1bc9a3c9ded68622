// Package guard gates privileged operations on the caller's stored role.
package guard

import (
	"context"
	"errors"

	"givehub-backend/internal/domain"

	"gorm.io/gorm"
)

type Guard struct {
	DB *gorm.DB
}

// RequireRole returns domain.ErrAccessDenied unless callerID names an existing user whose
// role is exactly requiredRole. The role is read from the Users table, never from the session.
func (g *Guard) RequireRole(ctx context.Context, callerID uint, requiredRole string) error {
	if requiredRole == "" {
		return domain.ErrAccessDenied
	}
	return g.RequireAnyRole(ctx, callerID, requiredRole)
}

// RequireAnyRole is RequireRole for operations open to several roles.
func (g *Guard) RequireAnyRole(ctx context.Context, callerID uint, roles ...string) error {
	if callerID == 0 || len(roles) == 0 {
		return domain.ErrAccessDenied
	}
	var u domain.User
	err := g.DB.WithContext(ctx).Select("id", "role").Where("id = ?", callerID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrAccessDenied
		}
		return err
	}
	for _, r := range roles {
		if r != "" && u.Role == r {
			return nil
		}
	}
	return domain.ErrAccessDenied
}
