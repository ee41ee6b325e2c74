package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"admin-backend/internal/pkg/trace"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
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

func TestRequireProject_FromSessionUser(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{"user_id": "u1", "project_id": "from-session"})
		return c.Next()
	})
	app.Get("/", RequireProject("fallback"), func(c *fiber.Ctx) error {
		return c.SendString(GetProjectID(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "from-session", string(body))
}

func withUser(user map[string]interface{}) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user", user)
		return c.Next()
	}
}

func TestRequireProject_Fallback(t *testing.T) {
	app := fiber.New()
	app.Use(withUser(map[string]interface{}{"user_id": "u1"}))
	app.Get("/", RequireProject("fallback"), func(c *fiber.Ctx) error {
		return c.SendString(GetProjectID(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "fallback", string(body))
}

func TestRequireProject_Anonymous(t *testing.T) {
	app := fiber.New()
	app.Get("/", RequireProject("fallback"), func(c *fiber.Ctx) error {
		return c.SendString("unreachable")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Not signed in", out["error"].(map[string]interface{})["message"])
}

func TestRequireProject_Missing(t *testing.T) {
	app := fiber.New()
	app.Use(withUser(map[string]interface{}{"user_id": "u1"}))
	app.Get("/", RequireProject(""), func(c *fiber.Ctx) error {
		return c.SendString("unreachable")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "No active project", out["error"].(map[string]interface{})["message"])
}

func TestSession_LoadsUserFromRedis(t *testing.T) {
	rdb, _ := setupRedis(t)
	b, _ := json.Marshal(map[string]interface{}{
		"user": map[string]interface{}{"user_id": "u1", "email": "admin@example.com", "project_id": "p1"},
	})
	require.NoError(t, rdb.Set(context.Background(), SessionRedisPrefix+"sid-1", b, 0).Err())

	app := fiber.New()
	app.Use(Session(rdb, ""))
	app.Get("/", func(c *fiber.Ctx) error {
		u := GetSessionUser(c)
		if u == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(u.UserID + "/" + u.ProjectID)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cookie", SessionCookieName+"=s:sid-1.signature")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "u1/p1", string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, "anonymous", string(body))
}

func TestSession_VerifiesSignature(t *testing.T) {
	rdb, _ := setupRedis(t)
	b, _ := json.Marshal(map[string]interface{}{
		"user": map[string]interface{}{"user_id": "u1", "project_id": "p1"},
	})
	require.NoError(t, rdb.Set(context.Background(), SessionRedisPrefix+"sid-1", b, 0).Err())

	app := fiber.New()
	app.Use(Session(rdb, "secret"))
	app.Get("/", func(c *fiber.Ctx) error {
		if GetSessionUser(c) == nil {
			return c.SendString("anonymous")
		}
		return c.SendString("signed-in")
	})

	for cookie, want := range map[string]string{
		"s:sid-1." + signSessionID("sid-1", "secret"): "signed-in",
		"s:sid-1." + signSessionID("sid-1", "other"):  "anonymous",
		"s:sid-1":                                      "anonymous",
		"sid-1":                                        "anonymous",
	} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Cookie", SessionCookieName+"="+cookie)
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, want, string(body), cookie)
	}
}

func TestSession_OnlyWritesBackExistingSessions(t *testing.T) {
	rdb, mr := setupRedis(t)
	require.NoError(t, rdb.Set(context.Background(), SessionRedisPrefix+"sid-1", `{"user":{"user_id":"u1"}}`, 0).Err())

	app := fiber.New()
	app.Use(Session(rdb, ""))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for _, sid := range []string{"sid-1", "attacker-chosen"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Cookie", SessionCookieName+"="+sid)
		_, err := app.Test(req)
		require.NoError(t, err)
	}

	assert.True(t, mr.Exists(SessionRedisPrefix+"sid-1"))
	assert.Greater(t, mr.TTL(SessionRedisPrefix+"sid-1"), time.Duration(0))
	assert.False(t, mr.Exists(SessionRedisPrefix+"attacker-chosen"))
}

func TestTracing(t *testing.T) {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", func(c *fiber.Ctx) error {
		assert.Equal(t, GetTraceID(c), trace.ID(c.UserContext()))
		return c.SendString(GetTraceID(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	generated := resp.Header.Get(trace.Header)
	_, err = uuid.Parse(generated)
	assert.NoError(t, err)

	incoming := uuid.New().String()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(trace.Header, incoming)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, incoming, resp.Header.Get(trace.Header))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(trace.Header, "not-a-uuid")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get(trace.Header))
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowedSuffix: ".example.org", DevPassword: "dev"}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://admin.example.org")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://admin.example.org", resp.Header.Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://evil.test")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req.Header.Set("dev-password", "dev")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCORS_AllowLocal(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowLocal: true}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestHealthMarker_CountsRequests(t *testing.T) {
	rdb, _ := setupRedis(t)
	app := fiber.New()
	app.Use(HealthMarker(rdb))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/fail", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusBadGateway) })
	app.Get("/health/json", func(c *fiber.Ctx) error { return c.SendString("{}") })

	for _, p := range []string{"/ok", "/fail", "/health/json"} {
		_, err := app.Test(httptest.NewRequest("GET", p, nil))
		require.NoError(t, err)
	}

	ctx := context.Background()
	total, err := rdb.Get(ctx, KeyReqTotal).Int()
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	failed, err := rdb.Get(ctx, KeyReqErrors).Int()
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	assert.NotEmpty(t, rdb.Get(ctx, KeyLastReq).Val())
}
