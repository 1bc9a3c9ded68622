package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"givehub-backend/internal/pkg/constants"
	"givehub-backend/internal/pkg/healthkeys"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return rdb, mr
}

func TestSession_RoundTrip(t *testing.T) {
	rdb, _ := setupRedis(t)
	app := fiber.New()
	app.Use(Session(rdb))
	app.Post("/login", func(c *fiber.Ctx) error {
		sid := RegenerateSessionID(c)
		SetSessionUser(c, SessionUser{ID: 42, Name: "dana", Email: "dana@x.com", Role: constants.Donor})
		cookie := SessionCookieConfig(SessionConfig{})
		cookie.Value = "s:" + sid
		c.Cookie(&cookie)
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/me", RequireAuth(), func(c *fiber.Ctx) error {
		u, _ := CurrentUser(c)
		return c.JSON(u)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	var cookie string
	for _, ck := range resp.Cookies() {
		if ck.Name == SessionCookieName {
			cookie = ck.Value
		}
	}
	require.NotEmpty(t, cookie)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", SessionCookieName+"="+cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCurrentUser_DecodesJSONNumbers(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{"id": float64(7), "role": "admin"})
		u, ok := CurrentUser(c)
		assert.True(t, ok)
		assert.Equal(t, uint(7), u.ID)
		assert.Equal(t, "admin:7", u.Subject())
		return nil
	})
	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
}

func TestDestroySubjectSessions(t *testing.T) {
	rdb, mr := setupRedis(t)
	ctx := context.Background()
	require.NoError(t, rdb.Set(ctx, SessionRedisPrefix+"a", "{}", 0).Err())
	require.NoError(t, rdb.Set(ctx, SessionRedisPrefix+"b", "{}", 0).Err())
	require.NoError(t, TrackSession(ctx, rdb, "donor:1", "a"))
	require.NoError(t, TrackSession(ctx, rdb, "donor:1", "b"))

	DestroySubjectSessions(ctx, rdb, "donor:1")
	assert.False(t, mr.Exists(SessionRedisPrefix+"a"))
	assert.False(t, mr.Exists(SessionRedisPrefix+"b"))
	assert.False(t, mr.Exists("subject_sessions:donor:1"))
}

func withUser(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{"id": uint(1), "role": role})
		return c.Next()
	}
}

func TestAuthorizePermission(t *testing.T) {
	for role, want := range map[string]int{
		constants.Admin:      fiber.StatusOK,
		constants.Superadmin: fiber.StatusOK,
		constants.Donor:      fiber.StatusForbidden,
	} {
		app := fiber.New()
		app.Use(withUser(role))
		app.Get("/", AuthorizePermission(constants.ReviewOrganizations), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, role)
	}
}

func TestErrorHandler_RecordsUnhandled(t *testing.T) {
	rdb, _ := setupRedis(t)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(rdb)})
	app.Use(Tracing())
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-Id"))

	resp, err = app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	entries, err := rdb.LRange(context.Background(), healthkeys.ErrorLog, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0], "/boom")
}

func TestHealthMarker_Counts(t *testing.T) {
	rdb, mr := setupRedis(t)
	app := fiber.New()
	app.Use(HealthMarker(rdb))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/fail", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusBadGateway) })
	app.Get("/health/json", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for _, p := range []string{"/ok", "/fail", "/health/json"} {
		_, err := app.Test(httptest.NewRequest("GET", p, nil))
		require.NoError(t, err)
	}
	total, _ := mr.Get(healthkeys.ReqTotal)
	errs, _ := mr.Get(healthkeys.ReqErrors)
	assert.Equal(t, "2", total)
	assert.Equal(t, "1", errs)
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowedSuffix: ".givehub.org", DevPassword: "letmein"}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://app.givehub.org")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://app.givehub.org", resp.Header.Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("dev-password", "letmein")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Access-Control-Allow-Origin"), "https://evil"))
}
