package store

import (
	"context"

	"defecttracker/internal/domain"

	"gorm.io/gorm"
)

type AttachmentStore struct{ db *gorm.DB }

func (s *Store) Attachments() *AttachmentStore { return &AttachmentStore{db: s.DB} }

func (a *AttachmentStore) AddBatch(ctx context.Context, atts []domain.Attachment) error {
	if len(atts) == 0 {
		return nil
	}
	return translate(a.db.WithContext(ctx).Create(&atts).Error)
}

func (a *AttachmentStore) ForDefect(ctx context.Context, defectID int64) ([]domain.Attachment, error) {
	out := make([]domain.Attachment, 0)
	err := a.db.WithContext(ctx).
		Where("defect_id = ?", defectID).
		Order("id ASC").
		Find(&out).Error
	return out, translate(err)
}
