package admin

import (
	"givehub-backend/internal/application/account"
	"givehub-backend/internal/middleware"
	"givehub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Accounts *account.Service
}

// RegisterAdmin POST /api/v1/admin/admins: credentials go out by email, never in the response.
func (h *Handlers) RegisterAdmin(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req account.RegisterAdminInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	reg, err := h.Accounts.RegisterAdmin(c.UserContext(), actor.ID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Admin registered successfully", fiber.Map{
		"user":               reg.User,
		"password_generated": reg.TemporaryPassword != "",
	}, nil)
}
