package domain

// Project is the tenant a member is invited into.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectMember is one membership row of a project.
type ProjectMember struct {
	ID           string     `json:"id"`
	Profile      *Reference `json:"profile,omitempty"`
	User         *Reference `json:"user,omitempty"`
	AccessPolicy *Reference `json:"accessPolicy,omitempty"`
	Admin        bool       `json:"admin,omitempty"`
}

// ProjectDetails matches GET admin/projects/{id}.
type ProjectDetails struct {
	Project Project         `json:"project"`
	Members []ProjectMember `json:"members"`
}

// AccessPolicy is a permission policy that can be assigned to a member.
type AccessPolicy struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Ref returns a reference to the policy.
func (p AccessPolicy) Ref() *Reference {
	return &Reference{Reference: "AccessPolicy/" + p.ID, Display: p.Name}
}
