package invitations

import (
	"context"
	"errors"

	"admin-backend/internal/adminapi"
	"admin-backend/internal/application/invitelog"
	"admin-backend/internal/domain"
	"admin-backend/internal/invite"
	"admin-backend/internal/middleware"
	"admin-backend/internal/pkg/response"
	"admin-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers serves the invite page. Log is optional.
type Handlers struct {
	API       adminapi.Client
	Templates *web.Templates
	Log       *invitelog.Service
}

// GET /admin/invite
func (h *Handlers) Show(c *fiber.Ctx) error {
	form := invite.NewForm(middleware.GetProjectID(c), h.API)
	return h.render(c, fiber.StatusOK, form, h.policies(c))
}

// POST /admin/invite
func (h *Handlers) Submit(c *fiber.Ctx) error {
	ctx := c.UserContext()
	form := invite.NewForm(middleware.GetProjectID(c), h.API)
	policies := h.lazyPolicies(c)

	for _, b := range form.Bindings() {
		v := c.FormValue(b.Name)
		if b.Name == invite.FieldResourceType && !domain.IsResourceType(v) {
			continue
		}
		b.OnChange(v)
	}
	form.SetAccessPolicy(selectedPolicy(c.FormValue(invite.FieldAccessPolicy), policies))

	err := form.Submit(ctx)
	h.record(ctx, c, form)
	if err != nil {
		if !errors.Is(err, invite.ErrRequiredFields) {
			log.Warn().Err(err).
				Str("trace_id", middleware.GetTraceID(c)).
				Str("project_id", form.ProjectID()).
				Str("step", form.LastStep().String()).
				Msg("Invite failed")
		}
		return h.render(c, fiber.StatusUnprocessableEntity, form, policies())
	}
	// The success panel has no picker.
	return h.render(c, fiber.StatusOK, form, nil)
}

// selectedPolicy maps the picker's posted reference to a Reference, using the policy name as
// display when the reference is one of the listed policies. Empty means no selection, and the
// policy list is not fetched.
func selectedPolicy(value string, policies func() []domain.AccessPolicy) *domain.Reference {
	if value == "" {
		return nil
	}
	for _, p := range policies() {
		if ref := p.Ref(); ref.Reference == value {
			return ref
		}
	}
	return &domain.Reference{Reference: value}
}

// lazyPolicies searches access policies at most once per request, on first use.
func (h *Handlers) lazyPolicies(c *fiber.Ctx) func() []domain.AccessPolicy {
	var (
		loaded   bool
		policies []domain.AccessPolicy
	)
	return func() []domain.AccessPolicy {
		if !loaded {
			policies = h.policies(c)
			loaded = true
		}
		return policies
	}
}

func (h *Handlers) policies(c *fiber.Ctx) []domain.AccessPolicy {
	policies, err := h.API.SearchAccessPolicies(c.UserContext(), "")
	if err != nil {
		log.Warn().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("Access policy list unavailable")
		return nil
	}
	return policies
}

func (h *Handlers) record(ctx context.Context, c *fiber.Ctx, form *invite.Form) {
	if h.Log == nil {
		return
	}
	if _, err := h.Log.Record(ctx, form); err != nil && !errors.Is(err, invitelog.ErrNoAttempt) {
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("Invite attempt not recorded")
	}
}

func (h *Handlers) render(c *fiber.Ctx, status int, form *invite.Form, policies []domain.AccessPolicy) error {
	body, err := h.Templates.RenderInvite(form.View(policies))
	if err != nil {
		return err
	}
	return response.HTML(c, status, body)
}

// GET /api/v1/invites/recent
func (h *Handlers) Recent(c *fiber.Ctx) error {
	if h.Log == nil {
		return response.Error(c, "Invite log is not configured", fiber.StatusServiceUnavailable, nil)
	}
	attempts, err := h.Log.Recent(c.UserContext(), middleware.GetProjectID(c), c.QueryInt("limit", 20))
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Invite attempts fetched successfully", attempts, nil)
}
