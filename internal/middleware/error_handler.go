package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"givehub-backend/internal/pkg/healthkeys"
	"givehub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrorHandler returns the global Fiber error handler. Errors that reach it unhandled and
// are not *fiber.Error are pushed onto the health error log when rdb is set.
func ErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return response.Error(c, fe.Message, fe.Code, nil)
		}
		log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Msg("unhandled request error")
		if rdb != nil {
			recordError(rdb, c, err)
		}
		return response.FromError(c, err)
	}
}

func recordError(rdb *redis.Client, c *fiber.Ctx, err error) {
	entry, _ := json.Marshal(map[string]interface{}{
		"time":     time.Now().UTC(),
		"kind":     "request",
		"method":   c.Method(),
		"path":     c.Path(),
		"trace_id": GetTraceID(c),
		"message":  err.Error(),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, healthkeys.ErrorLog, entry)
	pipe.LTrim(ctx, healthkeys.ErrorLog, 0, healthkeys.ErrorLogMax-1)
	_, _ = pipe.Exec(ctx)
}
