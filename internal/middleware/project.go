package middleware

import (
	"admin-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	userLocal    = "user"
	projectLocal = "project_id"
)

// RequireProject requires a signed-in session user and resolves the current project from its
// project_id, falling back to defaultProjectID. Returns 401 when signed out or when neither
// is set.
func RequireProject(defaultProjectID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := GetSessionUser(c)
		if u == nil {
			return response.Unauthorized(c, "Not signed in")
		}
		projectID := u.ProjectID
		if projectID == "" {
			projectID = defaultProjectID
		}
		if projectID == "" {
			return response.Unauthorized(c, "No active project")
		}
		c.Locals(projectLocal, projectID)
		return c.Next()
	}
}

// GetProjectID returns the project resolved by RequireProject.
func GetProjectID(c *fiber.Ctx) string {
	id, _ := c.Locals(projectLocal).(string)
	return id
}
