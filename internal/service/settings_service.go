package service

import (
	"context"

	"defecttracker/internal/domain"
)

type SettingsService interface {
	Get(ctx context.Context) (*domain.Settings, error)
	Update(ctx context.Context, settings domain.Settings) (*domain.Settings, error)
}
