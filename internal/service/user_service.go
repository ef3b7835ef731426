package service

import (
	"context"

	"defecttracker/internal/domain"
)

type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, patch domain.ProfilePatch) (*domain.User, error)
}
