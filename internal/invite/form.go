// Package invite holds the state and submit sequence of the "invite a new project member" form.
//
// A Form lives for a single page visit. It is driven by its field handlers and Submit, and is
// either editing or, after a fully successful Submit, in its terminal success state.
package invite

import (
	"context"
	"errors"
	"fmt"

	"admin-backend/internal/adminapi"
	"admin-backend/internal/domain"
)

// Field names, shared with the rendered inputs.
const (
	FieldResourceType = "resourceType"
	FieldFirstName    = "firstName"
	FieldLastName     = "lastName"
	FieldEmail        = "email"
	FieldAccessPolicy = "accessPolicy"
)

// Fields lists every input in render order.
var Fields = []string{FieldResourceType, FieldFirstName, FieldLastName, FieldEmail, FieldAccessPolicy}

var requiredFields = []string{FieldFirstName, FieldLastName, FieldEmail}

// ErrRequiredFields is returned by Submit when a required field is empty; no backend call is made.
var ErrRequiredFields = errors.New("required fields are missing")

// Backend is the pair of admin API calls the form depends on.
type Backend interface {
	InviteMember(ctx context.Context, projectID string, payload domain.InvitePayload) error
	GetProject(ctx context.Context, projectID string, opts adminapi.ReadOptions) (*domain.ProjectDetails, error)
}

// Step identifies which backend call a submit stopped at.
type Step int

const (
	StepNone Step = iota
	StepValidate
	StepInvite
	StepRefresh
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepValidate:
		return "validate"
	case StepInvite:
		return "invite"
	case StepRefresh:
		return "refresh"
	case StepDone:
		return "done"
	}
	return "none"
}

// Form is the mutable FormState plus the operations on it. Not safe for concurrent use.
type Form struct {
	projectID string
	backend   Backend

	resourceType string
	firstName    string
	lastName     string
	email        string
	accessPolicy *domain.Reference

	outcome  *domain.OperationOutcome
	success  bool
	lastStep Step
}

// NewForm returns a form in its initial editing state for projectID.
func NewForm(projectID string, backend Backend) *Form {
	return &Form{
		projectID:    projectID,
		backend:      backend,
		resourceType: string(domain.ResourceTypePractitioner),
	}
}

func (f *Form) ProjectID() string { return f.projectID }
func (f *Form) ResourceType() string { return f.resourceType }
func (f *Form) FirstName() string { return f.firstName }
func (f *Form) LastName() string { return f.lastName }
func (f *Form) Email() string { return f.email }
func (f *Form) AccessPolicy() *domain.Reference { return f.accessPolicy }
func (f *Form) Outcome() *domain.OperationOutcome { return f.outcome }
func (f *Form) Success() bool { return f.success }

// LastStep reports where the most recent Submit stopped.
func (f *Form) LastStep() Step { return f.lastStep }

func (f *Form) SetResourceType(v string) {
	if !f.success {
		f.resourceType = v
	}
}

func (f *Form) SetFirstName(v string) {
	if !f.success {
		f.firstName = v
	}
}

func (f *Form) SetLastName(v string) {
	if !f.success {
		f.lastName = v
	}
}

func (f *Form) SetEmail(v string) {
	if !f.success {
		f.email = v
	}
}

// SetAccessPolicy stores the picker's value as given; nil clears it.
func (f *Form) SetAccessPolicy(ref *domain.Reference) {
	if !f.success {
		f.accessPolicy = ref
	}
}

// Binding pairs a text input's current value with its change handler.
type Binding struct {
	Name     string
	Value    string
	OnChange func(string)
}

// Bindings returns the text input bindings in render order.
func (f *Form) Bindings() []Binding {
	return []Binding{
		{Name: FieldResourceType, Value: f.resourceType, OnChange: f.SetResourceType},
		{Name: FieldFirstName, Value: f.firstName, OnChange: f.SetFirstName},
		{Name: FieldLastName, Value: f.lastName, OnChange: f.SetLastName},
		{Name: FieldEmail, Value: f.email, OnChange: f.SetEmail},
	}
}

// Bind dispatches a raw input value to the handler for name. It reports false for names with
// no text binding.
func (f *Form) Bind(name, value string) bool {
	for _, b := range f.Bindings() {
		if b.Name == name {
			b.OnChange(value)
			return true
		}
	}
	return false
}

// MissingRequired returns the empty required fields in render order.
func (f *Form) MissingRequired() []string {
	values := map[string]string{
		FieldFirstName: f.firstName,
		FieldLastName:  f.lastName,
		FieldEmail:     f.email,
	}
	var missing []string
	for _, name := range requiredFields {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Payload snapshots the current state.
func (f *Form) Payload() domain.InvitePayload {
	p := domain.InvitePayload{
		ResourceType: f.resourceType,
		FirstName:    f.firstName,
		LastName:     f.lastName,
		Email:        f.email,
	}
	if f.accessPolicy != nil {
		ref := *f.accessPolicy
		p.AccessPolicy = &ref
	}
	return p
}

// Submit creates the invite and then reloads the project. The two calls are not atomic: if the
// invite is accepted and the reload fails, the form stays in edit mode with the reload error
// even though the member was invited. Nothing is retried or rolled back.
func (f *Form) Submit(ctx context.Context) error {
	if f.success {
		return nil
	}
	if missing := f.MissingRequired(); len(missing) > 0 {
		f.lastStep = StepValidate
		f.outcome = requiredOutcome(missing)
		return fmt.Errorf("%w: %v", ErrRequiredFields, missing)
	}

	payload := f.Payload()
	f.lastStep = StepInvite
	if err := f.backend.InviteMember(ctx, f.projectID, payload); err != nil {
		f.outcome = domain.OutcomeFromError(err)
		return fmt.Errorf("invite member: %w", err)
	}
	f.lastStep = StepRefresh
	if _, err := f.backend.GetProject(ctx, f.projectID, adminapi.ReadOptions{Reload: true}); err != nil {
		f.outcome = domain.OutcomeFromError(err)
		return fmt.Errorf("reload project: %w", err)
	}
	f.lastStep = StepDone
	f.outcome = nil
	f.success = true
	return nil
}

func requiredOutcome(missing []string) *domain.OperationOutcome {
	oo := &domain.OperationOutcome{ResourceType: "OperationOutcome"}
	for _, name := range missing {
		oo.Issue = append(oo.Issue, domain.OperationOutcomeIssue{
			Severity:   "error",
			Code:       "required",
			Details:    &domain.IssueDetails{Text: "Missing required property"},
			Expression: []string{name},
		})
	}
	return oo
}
