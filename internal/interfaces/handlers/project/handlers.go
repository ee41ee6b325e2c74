package project

import (
	"admin-backend/internal/adminapi"
	"admin-backend/internal/middleware"
	"admin-backend/internal/pkg/response"
	"admin-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers serves the project admin page. API should be the cached client so the page
// reflects the reload done after each invite.
type Handlers struct {
	API       adminapi.Client
	Templates *web.Templates
}

// GET /admin/project
func (h *Handlers) Show(c *fiber.Ctx) error {
	projectID := middleware.GetProjectID(c)
	p, err := h.API.GetProject(c.UserContext(), projectID, adminapi.ReadOptions{Reload: c.QueryBool("reload")})
	if err != nil {
		log.Warn().Err(err).Str("trace_id", middleware.GetTraceID(c)).Str("project_id", projectID).Msg("Project fetch failed")
		return response.Error(c, "Failed to load project", fiber.StatusBadGateway, nil)
	}
	body, err := h.Templates.RenderProject(p)
	if err != nil {
		return err
	}
	return response.HTML(c, fiber.StatusOK, body)
}
