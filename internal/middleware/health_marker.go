package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"givehub-backend/internal/pkg/healthkeys"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// HealthMarker records request counters in Redis (skips /, /health* and favicon).
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/" || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		b, _ := json.Marshal(map[string]interface{}{
			"time":   start.UTC(),
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		})
		ctx := context.Background()
		rdb.Set(ctx, healthkeys.LastReq, b, 0)
		rdb.Incr(ctx, healthkeys.ReqTotal)

		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		pipe := rdb.Pipeline()
		pipe.Incr(ctx, healthkeys.ResCount)
		pipe.IncrByFloat(ctx, healthkeys.ResTime, float64(time.Since(start).Milliseconds()))
		if status >= 500 {
			pipe.Incr(ctx, healthkeys.ReqErrors)
		}
		_, _ = pipe.Exec(ctx)
		return err
	}
}
