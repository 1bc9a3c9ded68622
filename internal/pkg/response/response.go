package response

import (
	"errors"
	"strings"

	"givehub-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// SuccessBody is the standardized success JSON shape.
type SuccessBody struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// ErrorBody is the standardized error JSON shape.
type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// ErrorDetail is the nested error object.
type ErrorDetail struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
}

const statusSuccess = "success"
const statusError = "error"

// Success sends a 200 OK response with the standard success format.
func Success(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return c.Status(fiber.StatusOK).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// SuccessCreated sends a 201 Created response with the standard success format.
func SuccessCreated(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return c.Status(fiber.StatusCreated).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// Error sends a response with the standard error format.
func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	return c.Status(statusCode).JSON(ErrorBody{
		Status: statusError,
		Error: ErrorDetail{
			Message:    message,
			StatusCode: statusCode,
			Details:    details,
		},
	})
}

// Unauthorized sends 401 with the same shape as other errors (status "error", error.message).
// Use this for auth middleware so all errors are consistent.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}

var errorKinds = []struct {
	kind   error
	status int
}{
	{domain.ErrValidation, fiber.StatusBadRequest},
	{domain.ErrConflict, fiber.StatusConflict},
	{domain.ErrNotFound, fiber.StatusNotFound},
	{domain.ErrForbidden, fiber.StatusForbidden},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized},
}

// FromError maps an application error to its HTTP status using the domain error kinds.
// Unclassified errors are logged and reported as 500 without their text.
func FromError(c *fiber.Ctx, err error) error {
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			msg := strings.TrimPrefix(err.Error(), k.kind.Error()+": ")
			return Error(c, msg, k.status, nil)
		}
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return Error(c, fe.Message, fe.Code, nil)
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	return Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
