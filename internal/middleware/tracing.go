package middleware

import (
	"admin-backend/internal/pkg/trace"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const traceIDLocal = "trace_id"

// Tracing assigns a trace ID to the request (reusing an incoming X-Trace-Id), echoes it on
// the response and stores it in the user context for outbound admin API calls.
func Tracing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get(trace.Header)
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.New().String()
		}
		c.Locals(traceIDLocal, traceID)
		c.Set(trace.Header, traceID)
		c.SetUserContext(trace.WithID(c.UserContext(), traceID))
		return c.Next()
	}
}

// GetTraceID returns the trace ID from context.
func GetTraceID(c *fiber.Ctx) string {
	if id, ok := c.Locals(traceIDLocal).(string); ok {
		return id
	}
	return ""
}
