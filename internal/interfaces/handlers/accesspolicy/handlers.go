package accesspolicy

import (
	"strings"

	"admin-backend/internal/adminapi"
	"admin-backend/internal/domain"
	"admin-backend/internal/middleware"
	"admin-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers backs the access-policy picker's search.
type Handlers struct {
	API adminapi.Client
}

// GET /api/v1/access-policies?name=
func (h *Handlers) Search(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	policies, err := h.API.SearchAccessPolicies(c.UserContext(), name)
	if err != nil {
		log.Warn().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("Access policy search failed")
		return response.Error(c, "Failed to search access policies", fiber.StatusBadGateway, domain.OutcomeFromError(err))
	}
	refs := make([]*domain.Reference, 0, len(policies))
	for _, p := range policies {
		refs = append(refs, p.Ref())
	}
	return response.Success(c, "Access policies fetched successfully", refs, nil)
}
