package invitelog

import (
	"context"
	"encoding/json"
	"errors"

	"admin-backend/internal/domain"
	"admin-backend/internal/invite"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxRecent = 100

var ErrNoAttempt = errors.New("form was not submitted")

type Service struct {
	DB *gorm.DB
}

// Record stores the result of the form's last submit. Forms stopped by the required-field
// gate never reached the backend and are not recorded.
func (s *Service) Record(ctx context.Context, form *invite.Form) (*domain.InviteAttempt, error) {
	status, ok := statusFor(form.LastStep())
	if !ok {
		return nil, ErrNoAttempt
	}
	p := form.Payload()
	a := &domain.InviteAttempt{
		ProjectID:    form.ProjectID(),
		ResourceType: p.ResourceType,
		Email:        p.Email,
		Status:       status,
	}
	if p.AccessPolicy != nil {
		a.AccessPolicy = p.AccessPolicy.Reference
	}
	if oo := form.Outcome(); oo != nil {
		b, err := json.Marshal(oo)
		if err != nil {
			return nil, err
		}
		a.Outcome = datatypes.JSON(b)
	}
	if err := s.DB.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func statusFor(step invite.Step) (string, bool) {
	switch step {
	case invite.StepDone:
		return domain.AttemptInvited, true
	case invite.StepInvite:
		return domain.AttemptRejected, true
	case invite.StepRefresh:
		return domain.AttemptRefreshFailed, true
	}
	return "", false
}

// Recent returns the newest attempts for a project, newest first.
func (s *Service) Recent(ctx context.Context, projectID string, limit int) ([]domain.InviteAttempt, error) {
	if limit <= 0 || limit > maxRecent {
		limit = maxRecent
	}
	var out []domain.InviteAttempt
	err := s.DB.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
