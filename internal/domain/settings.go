package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type AssignmentStrategy string

const (
	AssignmentManual       AssignmentStrategy = "manual"
	AssignmentRoundRobin   AssignmentStrategy = "round_robin"
	AssignmentLoadBalanced AssignmentStrategy = "load_balanced"
)

func (s AssignmentStrategy) Valid() bool {
	switch s {
	case AssignmentManual, AssignmentRoundRobin, AssignmentLoadBalanced:
		return true
	}
	return false
}

// SettingsID is the primary key of the single admin_settings row.
const SettingsID int64 = 1

type Settings struct {
	ID                      int64                `gorm:"primaryKey;autoIncrement:false" json:"-"`
	DefaultDefectAssignment AssignmentStrategy   `gorm:"type:varchar(32);not null" json:"defaultDefectAssignment"`
	MaxDefectsPerUser       int                  `gorm:"not null" json:"maxDefectsPerUser"`
	AutoCloseAfterDays      int                  `gorm:"not null" json:"autoCloseAfterDays"`
	NotificationSettings    NotificationSettings `gorm:"not null" json:"notificationSettings"`
	CreatedAt               time.Time            `gorm:"not null" json:"created_at"`
	UpdatedAt               time.Time            `gorm:"not null" json:"updated_at"`
}

func (Settings) TableName() string { return "admin_settings" }

// DefaultSettings is served until an admin saves the first settings row.
func DefaultSettings() Settings {
	return Settings{
		ID:                      SettingsID,
		DefaultDefectAssignment: AssignmentManual,
		MaxDefectsPerUser:       10,
		AutoCloseAfterDays:      30,
		NotificationSettings: NotificationSettings{
			EmailNotifications: true,
			SlackIntegration:   false,
			AlertOnCritical:    true,
		},
	}
}

func (s Settings) Validate() error {
	if !s.DefaultDefectAssignment.Valid() {
		return fmt.Errorf("%w: defaultDefectAssignment must be one of round_robin, load_balanced, manual", ErrValidation)
	}
	if s.MaxDefectsPerUser < 1 || s.MaxDefectsPerUser > 100 {
		return fmt.Errorf("%w: maxDefectsPerUser must be between 1 and 100", ErrValidation)
	}
	if s.AutoCloseAfterDays < 1 || s.AutoCloseAfterDays > 365 {
		return fmt.Errorf("%w: autoCloseAfterDays must be between 1 and 365", ErrValidation)
	}
	return nil
}

// NotificationSettings is stored as one jsonb column.
type NotificationSettings struct {
	EmailNotifications bool `json:"emailNotifications"`
	SlackIntegration   bool `json:"slackIntegration"`
	AlertOnCritical    bool `json:"alertOnCritical"`
}

func (NotificationSettings) GormDataType() string { return "json" }

func (NotificationSettings) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}

func (n NotificationSettings) Value() (driver.Value, error) {
	raw, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (n *NotificationSettings) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*n = NotificationSettings{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("domain.NotificationSettings: unsupported scan type %T", value)
	}
	return json.Unmarshal(raw, n)
}
