package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"admin-backend/internal/domain"
	"admin-backend/internal/invite"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Paths of the HTML pages.
const (
	InvitePath  = "/admin/invite"
	ProjectPath = invite.ProjectAdminPath
)

// InvitePage is the data for the invite page.
type InvitePage struct {
	Title  string
	Action string
	View   invite.View
}

// ProjectPage is the data for the project admin page.
type ProjectPage struct {
	Title      string
	Project    *domain.ProjectDetails
	InvitePath string
}

// Templates renders the admin pages.
type Templates struct {
	invite  *template.Template
	project *template.Template
}

var funcs = template.FuncMap{
	"refLabel": refLabel,
}

func refLabel(ref *domain.Reference) string {
	if ref == nil {
		return ""
	}
	if ref.Display != "" {
		return ref.Display
	}
	return ref.Reference
}

// Load parses the embedded templates.
func Load() (*Templates, error) {
	inviteTmpl, err := template.New("invite").Funcs(funcs).ParseFS(templateFS, "templates/base.tmpl", "templates/invite.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse invite templates: %w", err)
	}
	projectTmpl, err := template.New("project").Funcs(funcs).ParseFS(templateFS, "templates/base.tmpl", "templates/project.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse project templates: %w", err)
	}
	return &Templates{invite: inviteTmpl, project: projectTmpl}, nil
}

func (t *Templates) RenderInvite(v invite.View) ([]byte, error) {
	return render(t.invite, InvitePage{Title: "Invite new member", Action: InvitePath, View: v})
}

func (t *Templates) RenderProject(p *domain.ProjectDetails) ([]byte, error) {
	title := "Project"
	if p != nil && p.Project.Name != "" {
		title = p.Project.Name
	}
	return render(t.project, ProjectPage{Title: title, Project: p, InvitePath: InvitePath})
}

func render(tmpl *template.Template, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
