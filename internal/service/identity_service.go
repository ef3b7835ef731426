package service

import (
	"context"

	"defecttracker/internal/domain"
)

type IdentityService interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	Resolve(ctx context.Context, accessToken string) (domain.Identity, error)
}
