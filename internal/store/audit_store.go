package store

import (
	"context"

	"defecttracker/internal/domain"

	"gorm.io/gorm"
)

type AuditStore struct{ db *gorm.DB }

func (s *Store) Audit() *AuditStore { return &AuditStore{db: s.DB} }

func (a *AuditStore) Create(ctx context.Context, entry *domain.AuditLog) error {
	return translate(a.db.WithContext(ctx).Create(entry).Error)
}

func (a *AuditStore) List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLog, error) {
	q := a.db.WithContext(ctx).Model(&domain.AuditLog{})
	if f.StartDate != nil {
		q = q.Where("created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("created_at <= ?", *f.EndDate)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != nil {
		q = q.Where("entity_id = ?", *f.EntityID)
	}

	out := make([]domain.AuditLog, 0)
	err := q.Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&out).Error
	return out, translate(err)
}
