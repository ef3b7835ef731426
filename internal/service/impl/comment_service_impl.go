package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"defecttracker/internal/domain"
	"defecttracker/internal/observability/middleware"
	"defecttracker/internal/store"
)

type CommentServiceImpl struct {
	store *store.Store
	now   func() time.Time
}

func NewCommentServiceImpl(st *store.Store) *CommentServiceImpl {
	return &CommentServiceImpl{store: st, now: func() time.Time { return time.Now().UTC() }}
}

func (c *CommentServiceImpl) Create(ctx context.Context, defectID, userID int64, content string) (*domain.CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" || userID == 0 {
		return nil, fmt.Errorf("%w: comment content and author are required", domain.ErrValidation)
	}
	ok, err := c.store.Defects().Exists(ctx, defectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrDefectNotFound
	}

	now := c.now()
	comment := &domain.Comment{
		DefectID:  defectID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.store.Comments().Create(ctx, comment); err != nil {
		return nil, err
	}
	slog.Info("comment created",
		"comment_id", comment.ID,
		"defect_id", defectID,
		"user_id", userID,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return c.store.Comments().GetView(ctx, comment.ID)
}

func (c *CommentServiceImpl) List(ctx context.Context, defectID int64) ([]domain.CommentView, error) {
	ok, err := c.store.Defects().Exists(ctx, defectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrDefectNotFound
	}
	return c.store.Comments().ForDefect(ctx, defectID)
}

// Update lets the author edit a live comment. Anyone else sees ErrCommentNotFound.
func (c *CommentServiceImpl) Update(ctx context.Context, defectID, commentID, userID int64, content string) (*domain.CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", domain.ErrValidation)
	}
	updated, err := c.store.Comments().UpdateOwned(ctx, defectID, commentID, userID, content, c.now())
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domain.ErrCommentNotFound
	}
	view, err := c.store.Comments().GetView(ctx, commentID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, domain.ErrCommentNotFound
	}
	return view, err
}

func (c *CommentServiceImpl) Delete(ctx context.Context, defectID, commentID, userID int64) (bool, error) {
	deleted, err := c.store.Comments().SoftDeleteOwned(ctx, defectID, commentID, userID, c.now())
	if err != nil {
		return false, err
	}
	if deleted {
		slog.Info("comment deleted",
			"comment_id", commentID,
			"defect_id", defectID,
			"user_id", userID,
			"request_id", middleware.RequestIDFromContext(ctx),
		)
	}
	return deleted, nil
}
