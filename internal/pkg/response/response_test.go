package response

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"givehub-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{domain.ErrEmailRequired, fiber.StatusBadRequest, "Email is required"},
		{domain.ErrOrganizationNameTaken, fiber.StatusConflict, "Organization name already registered"},
		{domain.ErrOrganizationNotFound, fiber.StatusNotFound, "Organization request not found"},
		{domain.ErrAccessDenied, fiber.StatusForbidden, "User is Forbidden from performing this action"},
		{domain.ErrInvalidCredentials, fiber.StatusUnauthorized, "Invalid credentials"},
		{fiber.NewError(fiber.StatusNotImplemented, "Stripe integration pending"), fiber.StatusNotImplemented, "Stripe integration pending"},
		{errors.New("pq: connection refused"), fiber.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return FromError(c, tt.err) })
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, tt.status, resp.StatusCode)

		var body ErrorBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "error", body.Status)
		assert.Equal(t, tt.message, body.Error.Message)
		assert.Equal(t, tt.status, body.Error.StatusCode)
	}
}
