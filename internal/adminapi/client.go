package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"admin-backend/internal/domain"
	"admin-backend/internal/pkg/trace"
)

// ReadOptions tune a read. Reload skips any cached copy and asks the server not to serve
// a cached response either.
type ReadOptions struct {
	Reload bool
}

// Client is the admin API surface used by the invite page and the project page.
type Client interface {
	InviteMember(ctx context.Context, projectID string, payload domain.InvitePayload) error
	GetProject(ctx context.Context, projectID string, opts ReadOptions) (*domain.ProjectDetails, error)
	SearchAccessPolicies(ctx context.Context, name string) ([]domain.AccessPolicy, error)
}

// HTTPClient is a Client backed by the admin HTTP API.
type HTTPClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

const maxErrorBody = 1 << 20

func (c *HTTPClient) httpClient() *http.Client {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 10 * time.Second}
	}
	return c.Client
}

func (c *HTTPClient) url(path string) (string, error) {
	if c.BaseURL == "" {
		return "", ErrMissingBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"), nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	u, err := c.url(path)
	if err != nil {
		return nil, err
	}
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/fhir+json, application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if id := trace.ID(ctx); id != "" {
		req.Header.Set(trace.Header, id)
	}
	return req, nil
}

// do sends req and decodes a 2xx JSON body into out (if non-nil). Non-2xx responses become
// *domain.OutcomeError.
func (c *HTTPClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeOutcome(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func decodeOutcome(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var oo domain.OperationOutcome
	if err := json.Unmarshal(b, &oo); err == nil && oo.ResourceType == "OperationOutcome" && len(oo.Issue) > 0 {
		return &domain.OutcomeError{StatusCode: resp.StatusCode, Outcome: &oo}
	}
	text := http.StatusText(resp.StatusCode)
	if text == "" {
		text = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return &domain.OutcomeError{
		StatusCode: resp.StatusCode,
		Outcome:    domain.NewOutcome("exception", text, ""),
	}
}

// InviteMember POSTs admin/projects/{projectID}/invite.
func (c *HTTPClient) InviteMember(ctx context.Context, projectID string, payload domain.InvitePayload) error {
	if projectID == "" {
		return ErrMissingProject
	}
	req, err := c.newRequest(ctx, http.MethodPost, "admin/projects/"+url.PathEscape(projectID)+"/invite", payload)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// GetProject GETs admin/projects/{projectID}.
func (c *HTTPClient) GetProject(ctx context.Context, projectID string, opts ReadOptions) (*domain.ProjectDetails, error) {
	if projectID == "" {
		return nil, ErrMissingProject
	}
	req, err := c.newRequest(ctx, http.MethodGet, "admin/projects/"+url.PathEscape(projectID), nil)
	if err != nil {
		return nil, err
	}
	if opts.Reload {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
	}
	var out domain.ProjectDetails
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type bundle struct {
	Entry []struct {
		Resource domain.AccessPolicy `json:"resource"`
	} `json:"entry"`
}

const accessPolicySearchCount = 20

// SearchAccessPolicies searches AccessPolicy resources by name. An empty name lists the first page.
func (c *HTTPClient) SearchAccessPolicies(ctx context.Context, name string) ([]domain.AccessPolicy, error) {
	q := url.Values{}
	if name != "" {
		q.Set("name", name)
	}
	q.Set("_count", fmt.Sprint(accessPolicySearchCount))
	req, err := c.newRequest(ctx, http.MethodGet, "fhir/R4/AccessPolicy?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var b bundle
	if err := c.do(req, &b); err != nil {
		return nil, err
	}
	out := make([]domain.AccessPolicy, 0, len(b.Entry))
	for _, e := range b.Entry {
		if e.Resource.ID == "" {
			continue
		}
		out = append(out, e.Resource)
	}
	return out, nil
}
