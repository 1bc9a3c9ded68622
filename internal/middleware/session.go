package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionConfig controls the session cookie flags.
type SessionConfig struct {
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	SessionCookieName  = "givehub.sid"
	SessionRedisPrefix = "session:"
	subjectSetPrefix   = "subject_sessions:"
	sessionMaxAge      = 24 * time.Hour

	userLocal        = "user"
	sessionDataLocal = "session_data"
	sessionIDLocal   = "session_id"
)

// SessionUser is the principal stored in the session under "user". Role is
// constants.Organization for signed-in organizations, whose ID is the organization id.
type SessionUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Subject keys the per-principal session set; users and organizations have separate id spaces.
func (u SessionUser) Subject() string {
	return fmt.Sprintf("%s:%d", u.Role, u.ID)
}

// Session loads the session named by the cookie from Redis into Locals and saves it back
// after the handler when a session id is set.
func Session(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookieName)
		if strings.HasPrefix(sessionID, "s:") {
			sessionID = strings.SplitN(sessionID[2:], ".", 2)[0]
		}

		var data map[string]interface{}
		if sessionID != "" {
			if b, err := rdb.Get(c.UserContext(), SessionRedisPrefix+sessionID).Bytes(); err == nil {
				_ = json.Unmarshal(b, &data)
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}
		c.Locals(sessionDataLocal, data)
		c.Locals(userLocal, data["user"])
		c.Locals(sessionIDLocal, sessionID)

		if err := c.Next(); err != nil {
			return err
		}

		sid, _ := c.Locals(sessionIDLocal).(string)
		updated, _ := c.Locals(sessionDataLocal).(map[string]interface{})
		if sid != "" && len(updated) > 0 {
			b, _ := json.Marshal(updated)
			rdb.Set(context.Background(), SessionRedisPrefix+sid, b, sessionMaxAge)
		}
		return nil
	}
}

func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sessionIDLocal).(string)
	return sid
}

// SetSessionUser stores user in the session. Call RegenerateSessionID first on sign-in.
func SetSessionUser(c *fiber.Ctx, user SessionUser) {
	data, _ := c.Locals(sessionDataLocal).(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
	}
	data[userLocal] = map[string]interface{}{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	}
	c.Locals(sessionDataLocal, data)
	c.Locals(userLocal, data[userLocal])
}

// CurrentUser decodes the session principal. Values read back from Redis are JSON
// numbers, so the id may arrive as float64.
func CurrentUser(c *fiber.Ctx) (SessionUser, bool) {
	m, ok := c.Locals(userLocal).(map[string]interface{})
	if !ok {
		return SessionUser{}, false
	}
	var u SessionUser
	switch v := m["id"].(type) {
	case uint:
		u.ID = v
	case int:
		u.ID = uint(v)
	case float64:
		u.ID = uint(v)
	case string:
		n, _ := strconv.ParseUint(v, 10, 64)
		u.ID = uint(n)
	}
	u.Name, _ = m["name"].(string)
	u.Email, _ = m["email"].(string)
	u.Role, _ = m["role"].(string)
	if u.ID == 0 || u.Role == "" {
		return SessionUser{}, false
	}
	return u, true
}

// RegenerateSessionID creates a new session id; the handler sets the cookie.
func RegenerateSessionID(c *fiber.Ctx) string {
	newID := uuid.New().String()
	c.Locals(sessionIDLocal, newID)
	return newID
}

// DestroySession clears the session from Locals; the caller clears the cookie and Redis.
func DestroySession(c *fiber.Ctx) {
	c.Locals(sessionDataLocal, make(map[string]interface{}))
	c.Locals(userLocal, nil)
	c.Locals(sessionIDLocal, "")
}

func SessionCookieConfig(cfg SessionConfig) fiber.Cookie {
	sameSite := "Lax"
	if cfg.AllowCrossSiteDev {
		sameSite = "None"
	}
	return fiber.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.IsProduction || cfg.AllowCrossSiteDev,
		SameSite: sameSite,
	}
}

// TrackSession records sid under its principal so all of them can be revoked together.
func TrackSession(ctx context.Context, rdb *redis.Client, subject, sid string) error {
	key := subjectSetPrefix + subject
	pipe := rdb.TxPipeline()
	pipe.SAdd(ctx, key, sid)
	pipe.Expire(ctx, key, sessionMaxAge)
	_, err := pipe.Exec(ctx)
	return err
}

func UntrackSession(ctx context.Context, rdb *redis.Client, subject, sid string) {
	_ = rdb.SRem(ctx, subjectSetPrefix+subject, sid).Err()
}

// DestroySubjectSessions deletes every session of a principal, e.g. after a password reset.
func DestroySubjectSessions(ctx context.Context, rdb *redis.Client, subject string) {
	key := subjectSetPrefix + subject
	sids, _ := rdb.SMembers(ctx, key).Result()
	keys := make([]string, 0, len(sids)+1)
	for _, sid := range sids {
		keys = append(keys, SessionRedisPrefix+sid)
	}
	keys = append(keys, key)
	rdb.Del(ctx, keys...)
}
