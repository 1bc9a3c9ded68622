package donations

import (
	"context"
	"strconv"
	"time"

	"givehub-backend/internal/application/recurrence"
	"givehub-backend/internal/middleware"
	"givehub-backend/internal/pkg/constants"
	"givehub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RoleChecker re-reads the caller's role from the database.
type RoleChecker interface {
	RequireAnyRole(ctx context.Context, callerID uint, roles ...string) error
}

// Handlers bundles donation handlers with dependencies.
type Handlers struct {
	Service *recurrence.Service
	Sweeper *recurrence.Sweeper
	Guard   RoleChecker
	Now     func() time.Time // defaults to time.Now
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

type createRequest struct {
	OrganizationID     uint    `json:"organization_id"`
	Amount             float64 `json:"amount"`
	IsAnonymous        bool    `json:"is_anonymous"`
	RecurrenceInterval string  `json:"recurrence_interval"`
}

// Create POST /api/v1/donations: the donor is the session user.
func (h *Handlers) Create(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	d, err := h.Service.CreateDonation(c.UserContext(), recurrence.CreateInput{
		Amount:             req.Amount,
		DonorID:            actor.ID,
		OrganizationID:     req.OrganizationID,
		IsAnonymous:        req.IsAnonymous,
		RecurrenceInterval: req.RecurrenceInterval,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "Donation created successfully", fiber.Map{"donation": d}, nil)
}

// List GET /api/v1/donations: the session user's own donations.
func (h *Handlers) List(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	list, err := h.Service.ListDonations(c.UserContext(), actor.ID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Donations", fiber.Map{"donations": list}, fiber.Map{"count": len(list)})
}

// Get GET /api/v1/donations/:id: visible to its donor and to admins.
func (h *Handlers) Get(c *fiber.Ctx) error {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return response.Error(c, "Invalid donation id", fiber.StatusBadRequest, nil)
	}
	d, err := h.Service.GetDonation(c.UserContext(), uint(id))
	if err != nil {
		return response.FromError(c, err)
	}
	if d.DonorID != actor.ID && actor.Role != constants.Admin && actor.Role != constants.Superadmin {
		return response.Error(c, "Donation not found", fiber.StatusNotFound, nil)
	}
	return response.Success(c, "Donation", fiber.Map{"donation": d}, nil)
}

// requireOperator checks the stored role; a session minted before a demotion still
// carries the old one.
func (h *Handlers) requireOperator(c *fiber.Ctx) (bool, error) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return false, response.Unauthorized(c, "Unauthorized")
	}
	roles := constants.PermissionRoles[constants.RunRecurrence]
	if err := h.Guard.RequireAnyRole(c.UserContext(), actor.ID, roles...); err != nil {
		return false, response.FromError(c, err)
	}
	return true, nil
}

// Advance POST /api/v1/donations/:id/advance: spawn the next occurrence if it is due.
func (h *Handlers) Advance(c *fiber.Ctx) error {
	if ok, err := h.requireOperator(c); !ok {
		return err
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return response.Error(c, "Invalid donation id", fiber.StatusBadRequest, nil)
	}
	successor, err := h.Service.AdvanceIfDue(c.UserContext(), uint(id), h.now())
	if err != nil {
		return response.FromError(c, err)
	}
	if successor == nil {
		return response.Success(c, "Donation is not due", fiber.Map{"donation": nil}, nil)
	}
	return response.SuccessCreated(c, "Recurring donation created", fiber.Map{"donation": successor}, nil)
}

// Sweep POST /api/v1/donations/sweep: advance every due donation once.
func (h *Handlers) Sweep(c *fiber.Ctx) error {
	if ok, err := h.requireOperator(c); !ok {
		return err
	}
	created, err := h.Sweeper.RunOnce(c.UserContext(), h.now())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Recurrence sweep complete", fiber.Map{"created": created}, nil)
}
