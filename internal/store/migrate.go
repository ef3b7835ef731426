package store

import (
	"context"

	"defecttracker/internal/domain"
)

func (s *Store) AutoMigrate(ctx context.Context) error {
	return s.DB.WithContext(ctx).AutoMigrate(
		&domain.User{},
		&domain.Tag{},
		&domain.Defect{},
		&domain.DefectVersion{},
		&domain.DefectTag{},
		&domain.Attachment{},
		&domain.Comment{},
		&domain.AuditLog{},
		&domain.SerialCounter{},
		&domain.Settings{},
	)
}

// SeedTags makes sure the default tag directory exists.
func (s *Store) SeedTags(ctx context.Context) error {
	return s.Tags().Seed(ctx, domain.DefaultTags)
}
