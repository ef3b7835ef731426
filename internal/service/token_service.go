package service

import (
	"context"

	"defecttracker/internal/domain"
	"defecttracker/internal/dto"
)

type TokenService interface {
	Issue(ctx context.Context, user *domain.User) (*dto.TokenResponse, error)
	Verify(accessToken string) (userID int64, err error)
}
