package organizations

import (
	"strconv"

	orgsvc "givehub-backend/internal/application/org"
	"givehub-backend/internal/middleware"
	"givehub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles organization request handlers with dependencies.
type Handlers struct {
	Service *orgsvc.Service
}

func parseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Submit POST /api/v1/organizations/register
func (h *Handlers) Submit(c *fiber.Ctx) error {
	var req orgsvc.SubmitInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	org, err := h.Service.SubmitRegistration(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Organization registration submitted. Awaiting admin approval.", fiber.Map{"organization": org}, nil)
}

// ListPending GET /api/v1/admin/organizations
func (h *Handlers) ListPending(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	orgs, err := h.Service.ListPending(c.UserContext(), actor.ID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Pending organization requests", fiber.Map{"organizations": orgs}, fiber.Map{"count": len(orgs)})
}

// Get GET /api/v1/admin/organizations/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c)
	if !ok {
		return response.Error(c, "Invalid organization id", fiber.StatusBadRequest, nil)
	}
	org, err := h.Service.GetRequest(c.UserContext(), actor.ID, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Organization request", fiber.Map{"organization": org}, nil)
}

// Approve POST /api/v1/admin/organizations/:id/approve
func (h *Handlers) Approve(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c)
	if !ok {
		return response.Error(c, "Invalid organization id", fiber.StatusBadRequest, nil)
	}
	decision, err := h.Service.ApproveRequest(c.UserContext(), actor.ID, id)
	if err != nil {
		return response.FromError(c, err)
	}
	if !decision.Success {
		return response.Error(c, "Organization is already approved", fiber.StatusConflict, fiber.Map{"success": false})
	}
	return response.Success(c, "Organization approved and credentials sent", fiber.Map{"success": true}, nil)
}

// Reject POST /api/v1/admin/organizations/:id/reject
func (h *Handlers) Reject(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c)
	if !ok {
		return response.Error(c, "Invalid organization id", fiber.StatusBadRequest, nil)
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	decision, err := h.Service.RejectRequest(c.UserContext(), actor.ID, id, req.Reason)
	if err != nil {
		return response.FromError(c, err)
	}
	if !decision.Success {
		return response.Error(c, "Organization is already approved", fiber.StatusConflict, fiber.Map{"success": false})
	}
	return response.Success(c, "Organization rejection sent", fiber.Map{"success": true}, nil)
}
