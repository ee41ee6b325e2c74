package domain

import (
	"errors"
	"strings"
)

// Reference points at another resource, e.g. "AccessPolicy/123".
type Reference struct {
	Reference string `json:"reference"`
	Display   string `json:"display,omitempty"`
}

// OperationOutcome is the structured error body returned by the admin API.
type OperationOutcome struct {
	ResourceType string                  `json:"resourceType"`
	ID           string                  `json:"id,omitempty"`
	Issue        []OperationOutcomeIssue `json:"issue"`
}

type OperationOutcomeIssue struct {
	Severity   string        `json:"severity"`
	Code       string        `json:"code"`
	Details    *IssueDetails `json:"details,omitempty"`
	Expression []string      `json:"expression,omitempty"`
}

type IssueDetails struct {
	Text string `json:"text"`
}

const outcomeResourceType = "OperationOutcome"

// NewOutcome builds an outcome with a single error issue. An empty field leaves the
// issue unattributed.
func NewOutcome(code, text, field string) *OperationOutcome {
	issue := OperationOutcomeIssue{
		Severity: "error",
		Code:     code,
		Details:  &IssueDetails{Text: text},
	}
	if field != "" {
		issue.Expression = []string{field}
	}
	return &OperationOutcome{ResourceType: outcomeResourceType, Issue: []OperationOutcomeIssue{issue}}
}

// Text returns the issue message, falling back to its code.
func (i OperationOutcomeIssue) Text() string {
	if i.Details != nil && i.Details.Text != "" {
		return i.Details.Text
	}
	return i.Code
}

func (i OperationOutcomeIssue) keyedTo(field string) bool {
	for _, e := range i.Expression {
		if e == field {
			return true
		}
	}
	return false
}

// IssuesFor returns the issues whose expression names field.
func (o *OperationOutcome) IssuesFor(field string) []OperationOutcomeIssue {
	if o == nil {
		return nil
	}
	var out []OperationOutcomeIssue
	for _, issue := range o.Issue {
		if issue.keyedTo(field) {
			out = append(out, issue)
		}
	}
	return out
}

// ErrorsFor joins the messages of every issue keyed to field with newlines.
// Empty when the field has no issues.
func (o *OperationOutcome) ErrorsFor(field string) string {
	issues := o.IssuesFor(field)
	msgs := make([]string, 0, len(issues))
	for _, issue := range issues {
		msgs = append(msgs, issue.Text())
	}
	return strings.Join(msgs, "\n")
}

// Unattributed returns the messages of issues that are not keyed to any of the known fields.
func (o *OperationOutcome) Unattributed(known []string) []string {
	if o == nil {
		return nil
	}
	var out []string
	for _, issue := range o.Issue {
		attributed := false
		for _, f := range known {
			if issue.keyedTo(f) {
				attributed = true
				break
			}
		}
		if !attributed {
			out = append(out, issue.Text())
		}
	}
	return out
}

// OK reports whether the outcome carries no error or fatal issue.
func (o *OperationOutcome) OK() bool {
	if o == nil {
		return true
	}
	for _, issue := range o.Issue {
		if issue.Severity == "error" || issue.Severity == "fatal" {
			return false
		}
	}
	return true
}

// OutcomeError is an error that carries the backend's OperationOutcome.
type OutcomeError struct {
	StatusCode int
	Outcome    *OperationOutcome
}

func (e *OutcomeError) Error() string {
	if e.Outcome == nil || len(e.Outcome.Issue) == 0 {
		return "operation failed"
	}
	msgs := make([]string, 0, len(e.Outcome.Issue))
	for _, issue := range e.Outcome.Issue {
		msgs = append(msgs, issue.Text())
	}
	return strings.Join(msgs, "; ")
}

// OutcomeFromError turns any error into an outcome. Errors carrying an outcome return it
// unchanged; everything else becomes a single unattributed exception issue.
func OutcomeFromError(err error) *OperationOutcome {
	if err == nil {
		return nil
	}
	var oe *OutcomeError
	if errors.As(err, &oe) && oe.Outcome != nil {
		return oe.Outcome
	}
	return NewOutcome("exception", err.Error(), "")
}
