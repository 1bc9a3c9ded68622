package middleware

import (
	"givehub-backend/internal/pkg/constants"
	"givehub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthorizePermission rejects sessions whose role is not granted permission. It is a
// coarse gate in front of the handlers; services recheck roles against the database.
func AuthorizePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if roles := constants.PermissionRoles[permission]; len(roles) == 0 {
			return response.Error(c, "Permission configuration error", fiber.StatusInternalServerError, nil)
		}
		if !constants.AllowedRole(permission, user.Role) {
			return response.Error(c, "User is Forbidden from performing this action", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}
