package store

import (
	"context"

	"defecttracker/internal/domain"

	"gorm.io/gorm"
)

type VersionStore struct{ db *gorm.DB }

func (s *Store) Versions() *VersionStore { return &VersionStore{db: s.DB} }

// NextNumber returns max(version_number)+1 for the defect, starting at 1.
func (v *VersionStore) NextNumber(ctx context.Context, defectID int64) (int, error) {
	var max int
	err := v.db.WithContext(ctx).Model(&domain.DefectVersion{}).
		Where("defect_id = ?", defectID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, translate(err)
	}
	return max + 1, nil
}

func (v *VersionStore) Create(ctx context.Context, version *domain.DefectVersion) error {
	return translate(v.db.WithContext(ctx).Create(version).Error)
}

func (v *VersionStore) List(ctx context.Context, defectID int64) ([]domain.DefectVersion, error) {
	out := make([]domain.DefectVersion, 0)
	err := v.db.WithContext(ctx).
		Where("defect_id = ?", defectID).
		Order("version_number ASC").
		Find(&out).Error
	return out, translate(err)
}

func (v *VersionStore) Get(ctx context.Context, defectID int64, number int) (*domain.DefectVersion, error) {
	var version domain.DefectVersion
	err := v.db.WithContext(ctx).
		First(&version, "defect_id = ? AND version_number = ?", defectID, number).Error
	if err != nil {
		return nil, translate(err)
	}
	return &version, nil
}
