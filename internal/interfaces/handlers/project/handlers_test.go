package project

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"admin-backend/internal/adminapi"
	"admin-backend/internal/domain"
	"admin-backend/internal/middleware"
	"admin-backend/internal/web"

	"github.com/PuerkitoBio/goquery"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	reads []adminapi.ReadOptions
	err   error
}

func (f *fakeAPI) InviteMember(ctx context.Context, projectID string, payload domain.InvitePayload) error {
	return nil
}

func (f *fakeAPI) GetProject(ctx context.Context, projectID string, opts adminapi.ReadOptions) (*domain.ProjectDetails, error) {
	f.reads = append(f.reads, opts)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ProjectDetails{
		Project: domain.Project{ID: projectID, Name: "Clinic"},
		Members: []domain.ProjectMember{{ID: "m1", Profile: &domain.Reference{Reference: "Practitioner/1", Display: "Ada Lovelace"}}},
	}, nil
}

func (f *fakeAPI) SearchAccessPolicies(ctx context.Context, name string) ([]domain.AccessPolicy, error) {
	return nil, nil
}

func setupProjectTest(t *testing.T, api *fakeAPI) *fiber.App {
	tmpl, err := web.Load()
	require.NoError(t, err)
	h := &Handlers{API: api, Templates: tmpl}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{"user_id": "u1"})
		return c.Next()
	})
	app.Get("/admin/project", middleware.RequireProject("proj-1"), h.Show)
	return app
}

func TestShow_ListsMembers(t *testing.T) {
	api := &fakeAPI{}
	app := setupProjectTest(t, api)

	resp, err := app.Test(httptest.NewRequest("GET", "/admin/project", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Clinic", doc.Find(`[data-testid="project-name"]`).Text())
	assert.Contains(t, doc.Find(`tr[data-member="m1"]`).Text(), "Ada Lovelace")
	assert.Equal(t, []adminapi.ReadOptions{{}}, api.reads)
}

func TestShow_Reload(t *testing.T) {
	api := &fakeAPI{}
	app := setupProjectTest(t, api)

	_, err := app.Test(httptest.NewRequest("GET", "/admin/project?reload=true", nil))
	require.NoError(t, err)
	assert.Equal(t, []adminapi.ReadOptions{{Reload: true}}, api.reads)
}

func TestShow_BackendError(t *testing.T) {
	app := setupProjectTest(t, &fakeAPI{err: errors.New("down")})
	resp, err := app.Test(httptest.NewRequest("GET", "/admin/project", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}
