package domain

// ResourceType is the profile type created for an invited member.
type ResourceType string

const (
	ResourceTypePractitioner  ResourceType = "Practitioner"
	ResourceTypePatient       ResourceType = "Patient"
	ResourceTypeRelatedPerson ResourceType = "RelatedPerson"
)

// ResourceTypes lists the role options in display order.
var ResourceTypes = []ResourceType{
	ResourceTypePractitioner,
	ResourceTypePatient,
	ResourceTypeRelatedPerson,
}

// IsResourceType reports whether v is one of ResourceTypes.
func IsResourceType(v string) bool {
	for _, rt := range ResourceTypes {
		if string(rt) == v {
			return true
		}
	}
	return false
}

// InvitePayload is the body of POST admin/projects/{id}/invite.
type InvitePayload struct {
	ResourceType string     `json:"resourceType"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	AccessPolicy *Reference `json:"accessPolicy,omitempty"`
}
