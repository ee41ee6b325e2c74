package adminapi

import "errors"

var (
	ErrMissingBaseURL = errors.New("adminapi: ADMIN_API_BASE_URL is not set")
	ErrMissingProject = errors.New("adminapi: project id is required")
)
