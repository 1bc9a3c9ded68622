package auth

import (
	"givehub-backend/internal/application/account"
	"givehub-backend/internal/middleware"
	"givehub-backend/internal/pkg/constants"
	"givehub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Accounts *account.Service
	Rdb      *redis.Client
	Config   middleware.SessionConfig
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register POST /api/v1/auth/register: create a donor account.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req account.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	u, err := h.Accounts.RegisterUser(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessCreated(c, "User registered successfully", fiber.Map{"user": u}, nil)
}

// Login POST /api/v1/auth/login: authenticate a user and start a session.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return response.Error(c, "Email and password are required", fiber.StatusBadRequest, nil)
	}
	u, err := h.Accounts.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return response.FromError(c, err)
	}
	principal := middleware.SessionUser{ID: u.ID, Name: u.Username, Email: u.Email, Role: u.Role}
	if err := h.startSession(c, principal); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Login successful", fiber.Map{"user": principal}, nil)
}

// OrganizationLogin POST /api/v1/auth/organizations/login: sign in an approved organization.
func (h *Handlers) OrganizationLogin(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return response.Error(c, "Email and password are required", fiber.StatusBadRequest, nil)
	}
	org, err := h.Accounts.AuthenticateOrganization(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return response.FromError(c, err)
	}
	principal := middleware.SessionUser{ID: org.ID, Name: org.Name, Email: org.Email, Role: constants.Organization}
	if err := h.startSession(c, principal); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Login successful", fiber.Map{"organization": principal}, nil)
}

func (h *Handlers) startSession(c *fiber.Ctx, principal middleware.SessionUser) error {
	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, principal)
	if err := middleware.TrackSession(c.UserContext(), h.Rdb, principal.Subject(), sessionID); err != nil {
		log.Error().Err(err).Msg("auth: could not track session")
		return err
	}
	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)
	return nil
}

// Me GET /api/v1/auth/me: the current session principal.
func (h *Handlers) Me(c *fiber.Ctx) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Error(c, "Not authenticated", fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": u}, nil)
}

// Logout DELETE /api/v1/auth/logout: drop the session and clear the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := c.UserContext()
	if u, ok := middleware.CurrentUser(c); ok && sessionID != "" {
		middleware.UntrackSession(ctx, h.Rdb, u.Subject(), sessionID)
	}
	if sessionID != "" {
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.MaxAge = -1
	c.Cookie(&cookie)
	return response.Success(c, "Logged out successfully", nil, nil)
}

// ForgotPassword POST /api/v1/auth/forgot-password: mail a reset link.
func (h *Handlers) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := h.Accounts.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Password reset email sent successfully", nil, nil)
}

// ResetPassword PUT /api/v1/auth/reset-password/:token: redeem a reset token. Every
// session of the user is revoked.
func (h *Handlers) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	u, err := h.Accounts.ResetPassword(c.UserContext(), c.Params("token"), req.Password)
	if err != nil {
		return response.FromError(c, err)
	}
	middleware.DestroySubjectSessions(c.UserContext(), h.Rdb, middleware.SessionUser{ID: u.ID, Role: u.Role}.Subject())
	return response.Success(c, "Password reset successful", nil, nil)
}
