package invite

import "admin-backend/internal/domain"

// ProjectAdminPath is where the success panel links back to.
const ProjectAdminPath = "/admin/project"

// Option is one entry of a select input.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// FieldView is a rendered input with its current value and error text.
type FieldView struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Required bool
	Error    string
	Options  []Option
}

// View is everything the template needs. Exactly one of Fields and Success is populated.
type View struct {
	ProjectID    string
	Success      bool
	Fields       []FieldView
	Unattributed []string
	ReturnPath   string
}

// View renders the current state. policies feeds the access-policy picker; the current
// selection is always present among its options.
func (f *Form) View(policies []domain.AccessPolicy) View {
	v := View{ProjectID: f.projectID, ReturnPath: ProjectAdminPath}
	if f.success {
		v.Success = true
		return v
	}

	oo := f.outcome
	roles := make([]Option, 0, len(domain.ResourceTypes))
	for _, rt := range domain.ResourceTypes {
		roles = append(roles, Option{Value: string(rt), Label: string(rt), Selected: string(rt) == f.resourceType})
	}

	v.Fields = []FieldView{
		{Name: FieldResourceType, Label: "Role", Type: "select", Value: f.resourceType, Options: roles, Error: oo.ErrorsFor(FieldResourceType)},
		{Name: FieldFirstName, Label: "First Name", Type: "text", Value: f.firstName, Required: true, Error: oo.ErrorsFor(FieldFirstName)},
		{Name: FieldLastName, Label: "Last Name", Type: "text", Value: f.lastName, Required: true, Error: oo.ErrorsFor(FieldLastName)},
		{Name: FieldEmail, Label: "Email", Type: "email", Value: f.email, Required: true, Error: oo.ErrorsFor(FieldEmail)},
		{Name: FieldAccessPolicy, Label: "Access Policy", Type: "select", Value: f.accessPolicyValue(), Options: f.policyOptions(policies), Error: oo.ErrorsFor(FieldAccessPolicy)},
	}
	v.Unattributed = oo.Unattributed(Fields)
	return v
}

func (f *Form) accessPolicyValue() string {
	if f.accessPolicy == nil {
		return ""
	}
	return f.accessPolicy.Reference
}

func (f *Form) policyOptions(policies []domain.AccessPolicy) []Option {
	selected := f.accessPolicyValue()
	opts := []Option{{Value: "", Label: "", Selected: selected == ""}}
	found := selected == ""
	for _, p := range policies {
		ref := p.Ref()
		label := p.Name
		if label == "" {
			label = ref.Reference
		}
		opts = append(opts, Option{Value: ref.Reference, Label: label, Selected: ref.Reference == selected})
		if ref.Reference == selected {
			found = true
		}
	}
	if !found {
		label := f.accessPolicy.Display
		if label == "" {
			label = selected
		}
		opts = append(opts, Option{Value: selected, Label: label, Selected: true})
	}
	return opts
}
