package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Invite attempt statuses.
const (
	AttemptInvited       = "invited"
	AttemptRejected      = "rejected"
	AttemptRefreshFailed = "refresh_failed"
)

// InviteAttempt records one submit of the invite form.
type InviteAttempt struct {
	AttemptID    uuid.UUID      `gorm:"column:attempt_id;type:uuid;primaryKey" json:"attempt_id"`
	ProjectID    string         `gorm:"column:project_id;not null;index" json:"project_id"`
	ResourceType string         `gorm:"column:resource_type;not null" json:"resource_type"`
	Email        string         `gorm:"column:email;not null" json:"email"`
	AccessPolicy string         `gorm:"column:access_policy" json:"access_policy,omitempty"`
	Status       string         `gorm:"column:status;not null" json:"status"`
	Outcome      datatypes.JSON `gorm:"column:outcome" json:"outcome,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (InviteAttempt) TableName() string {
	return "InviteAttempts"
}

func (a *InviteAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.AttemptID == uuid.Nil {
		a.AttemptID = uuid.New()
	}
	return nil
}
