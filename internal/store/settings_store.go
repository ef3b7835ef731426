package store

import (
	"context"

	"defecttracker/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsStore struct{ db *gorm.DB }

func (s *Store) Settings() *SettingsStore { return &SettingsStore{db: s.DB} }

// Get returns the saved settings row or ErrRecordNotFound before the first save.
func (s *SettingsStore) Get(ctx context.Context) (*domain.Settings, error) {
	var row domain.Settings
	if err := s.db.WithContext(ctx).First(&row, "id = ?", domain.SettingsID).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

// Save writes the single settings row. created_at is kept from the first save.
func (s *SettingsStore) Save(ctx context.Context, row *domain.Settings) error {
	row.ID = domain.SettingsID
	return translate(s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"default_defect_assignment",
				"max_defects_per_user",
				"auto_close_after_days",
				"notification_settings",
				"updated_at",
			}),
		}).
		Create(row).Error)
}
