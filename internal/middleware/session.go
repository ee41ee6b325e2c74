package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	SessionCookieName  = "admin.sid"
	SessionRedisPrefix = "session:"
	sessionMaxAge      = 24 * time.Hour
)

// SessionUser is the shape stored in session under "user".
type SessionUser struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	ProjectID string `json:"project_id"`
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

// Session loads the session from Redis into Locals ("session_data", "user", "session_id")
// and writes it back after the handler when the session existed in Redis. Sessions are
// only created by the sign-in service. With a secret, any cookie that is not
// "s:<id>.<signature>" with a matching signature is treated as signed out.
func Session(rdb *redis.Client, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := unsignSessionID(c.Cookies(SessionCookieName), secret)

		var data map[string]interface{}
		loaded := false
		if sessionID != "" {
			b, err := rdb.Get(c.UserContext(), SessionRedisPrefix+sessionID).Bytes()
			if err == nil {
				loaded = true
				_ = json.Unmarshal(b, &data)
			} else if err != redis.Nil {
				log.Warn().Err(err).Msg("session read failed")
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}

		c.Locals("session_data", data)
		if u, ok := data["user"]; ok {
			c.Locals(userLocal, u)
		} else {
			c.Locals(userLocal, nil)
		}
		c.Locals("session_id", sessionID)

		if err := c.Next(); err != nil {
			return err
		}

		if sid, _ := c.Locals("session_id").(string); loaded && sid != "" {
			if updated, _ := c.Locals("session_data").(map[string]interface{}); updated != nil {
				b, _ := json.Marshal(updated)
				rdb.Set(context.Background(), SessionRedisPrefix+sid, b, sessionMaxAge)
			}
		}
		return nil
	}
}

// unsignSessionID returns the session id of a cookie value. The signature is HMAC-SHA256 of
// the id, base64 without padding. Without a secret, plain and signed values are accepted
// unchecked; with one, only a correctly signed value yields an id.
func unsignSessionID(raw, secret string) string {
	if !strings.HasPrefix(raw, "s:") {
		if secret != "" {
			return ""
		}
		return raw
	}
	parts := strings.SplitN(raw[2:], ".", 2)
	if secret == "" {
		return parts[0]
	}
	if len(parts) != 2 || !hmac.Equal([]byte(parts[1]), []byte(signSessionID(parts[0], secret))) {
		return ""
	}
	return parts[0]
}

func signSessionID(id, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	return base64.RawStdEncoding.EncodeToString(mac.Sum(nil))
}

// GetSessionUser decodes the session user, or nil when signed out.
func GetSessionUser(c *fiber.Ctx) *SessionUser {
	m, ok := c.Locals(userLocal).(map[string]interface{})
	if !ok {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	var u SessionUser
	if err := json.Unmarshal(b, &u); err != nil || u.UserID == "" {
		return nil
	}
	return &u
}
