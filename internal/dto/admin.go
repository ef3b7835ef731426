package dto

import (
	"fmt"

	"defecttracker/internal/domain"
)

type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

func (r UpdateProfileRequest) Validate() error {
	if r.Username == nil && r.Email == nil {
		return fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}
	return nil
}

func (r UpdateProfileRequest) ToDomain() domain.ProfilePatch {
	return domain.ProfilePatch{Username: r.Username, Email: r.Email}
}

// UpdateSettingsRequest replaces the whole settings document, so every key is required.
type UpdateSettingsRequest struct {
	DefaultDefectAssignment *domain.AssignmentStrategy `json:"defaultDefectAssignment"`
	MaxDefectsPerUser       *int                       `json:"maxDefectsPerUser"`
	AutoCloseAfterDays      *int                       `json:"autoCloseAfterDays"`
	NotificationSettings    *struct {
		EmailNotifications *bool `json:"emailNotifications"`
		SlackIntegration   *bool `json:"slackIntegration"`
		AlertOnCritical    *bool `json:"alertOnCritical"`
	} `json:"notificationSettings"`
}

func (r UpdateSettingsRequest) Validate() error {
	if r.DefaultDefectAssignment == nil || r.MaxDefectsPerUser == nil || r.AutoCloseAfterDays == nil {
		return fmt.Errorf("%w: defaultDefectAssignment, maxDefectsPerUser and autoCloseAfterDays are required", domain.ErrValidation)
	}
	n := r.NotificationSettings
	if n == nil || n.EmailNotifications == nil || n.SlackIntegration == nil || n.AlertOnCritical == nil {
		return fmt.Errorf("%w: notificationSettings needs emailNotifications, slackIntegration and alertOnCritical", domain.ErrValidation)
	}
	return r.ToDomain().Validate()
}

// ToDomain must only be called after Validate.
func (r UpdateSettingsRequest) ToDomain() domain.Settings {
	return domain.Settings{
		DefaultDefectAssignment: *r.DefaultDefectAssignment,
		MaxDefectsPerUser:       *r.MaxDefectsPerUser,
		AutoCloseAfterDays:      *r.AutoCloseAfterDays,
		NotificationSettings: domain.NotificationSettings{
			EmailNotifications: *r.NotificationSettings.EmailNotifications,
			SlackIntegration:   *r.NotificationSettings.SlackIntegration,
			AlertOnCritical:    *r.NotificationSettings.AlertOnCritical,
		},
	}
}
