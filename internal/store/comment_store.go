package store

import (
	"context"
	"time"

	"defecttracker/internal/domain"

	"gorm.io/gorm"
)

type CommentStore struct{ db *gorm.DB }

func (s *Store) Comments() *CommentStore { return &CommentStore{db: s.DB} }

func (c *CommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	return translate(c.db.WithContext(ctx).Create(comment).Error)
}

func (c *CommentStore) views(ctx context.Context) *gorm.DB {
	return c.db.WithContext(ctx).Table("comments AS c").
		Select("c.id, c.defect_id, c.user_id, COALESCE(u.username, '') AS username, c.content, c.created_at, c.updated_at").
		Joins("LEFT JOIN users u ON u.id = c.user_id").
		Where("c.is_deleted = ?", false)
}

// ForDefect lists live comments newest first.
func (c *CommentStore) ForDefect(ctx context.Context, defectID int64) ([]domain.CommentView, error) {
	out := make([]domain.CommentView, 0)
	err := c.views(ctx).
		Where("c.defect_id = ?", defectID).
		Order("c.created_at DESC, c.id DESC").
		Scan(&out).Error
	return out, translate(err)
}

func (c *CommentStore) GetView(ctx context.Context, id int64) (*domain.CommentView, error) {
	var out domain.CommentView
	err := c.views(ctx).Where("c.id = ?", id).Take(&out).Error
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// UpdateOwned changes the content of a live comment written by userID.
func (c *CommentStore) UpdateOwned(ctx context.Context, defectID, id, userID int64, content string, now time.Time) (bool, error) {
	res := c.db.WithContext(ctx).Model(&domain.Comment{}).
		Where("id = ? AND defect_id = ? AND user_id = ? AND is_deleted = ?", id, defectID, userID, false).
		Updates(map[string]any{"content": content, "updated_at": now})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (c *CommentStore) SoftDeleteOwned(ctx context.Context, defectID, id, userID int64, now time.Time) (bool, error) {
	res := c.db.WithContext(ctx).Model(&domain.Comment{}).
		Where("id = ? AND defect_id = ? AND user_id = ? AND is_deleted = ?", id, defectID, userID, false).
		Updates(map[string]any{"is_deleted": true, "updated_at": now})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}
