package store

import (
	"context"

	"defecttracker/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagStore struct{ db *gorm.DB }

func (s *Store) Tags() *TagStore { return &TagStore{db: s.DB} }

func (t *TagStore) List(ctx context.Context) ([]domain.Tag, error) {
	out := make([]domain.Tag, 0)
	err := t.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, translate(err)
}

// FindByNames resolves names in one query. Unknown names are simply absent from the result.
func (t *TagStore) FindByNames(ctx context.Context, names []string) ([]domain.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var out []domain.Tag
	err := t.db.WithContext(ctx).Where("name IN ?", names).Find(&out).Error
	return out, translate(err)
}

// Seed inserts missing tags and leaves existing ones alone.
func (t *TagStore) Seed(ctx context.Context, tags []domain.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	rows := append([]domain.Tag(nil), tags...)
	return translate(t.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&rows).Error)
}

func (t *TagStore) Attach(ctx context.Context, defectID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]domain.DefectTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		links = append(links, domain.DefectTag{DefectID: defectID, TagID: id})
	}
	return translate(t.db.WithContext(ctx).Create(&links).Error)
}

func (t *TagStore) DetachAll(ctx context.Context, defectID int64) error {
	return translate(t.db.WithContext(ctx).
		Where("defect_id = ?", defectID).
		Delete(&domain.DefectTag{}).Error)
}

func (t *TagStore) ForDefect(ctx context.Context, defectID int64) ([]domain.TagRef, error) {
	out := make([]domain.TagRef, 0)
	err := t.db.WithContext(ctx).
		Table("defect_tags AS dt").
		Select("t.id, t.name, t.color").
		Joins("JOIN tags t ON t.id = dt.tag_id").
		Where("dt.defect_id = ?", defectID).
		Order("t.name ASC").
		Scan(&out).Error
	return out, translate(err)
}
