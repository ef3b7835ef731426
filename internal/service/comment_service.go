package service

import (
	"context"

	"defecttracker/internal/domain"
)

type CommentService interface {
	Create(ctx context.Context, defectID, userID int64, content string) (*domain.CommentView, error)
	List(ctx context.Context, defectID int64) ([]domain.CommentView, error)
	Update(ctx context.Context, defectID, commentID, userID int64, content string) (*domain.CommentView, error)
	Delete(ctx context.Context, defectID, commentID, userID int64) (bool, error)
}
