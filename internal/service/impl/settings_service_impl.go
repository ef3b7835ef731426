package impl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"defecttracker/internal/domain"
	"defecttracker/internal/observability/middleware"
	"defecttracker/internal/store"
)

type SettingsServiceImpl struct {
	store *store.Store
	now   func() time.Time
}

func NewSettingsServiceImpl(st *store.Store) *SettingsServiceImpl {
	return &SettingsServiceImpl{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// Get falls back to the defaults until settings are first saved.
func (s *SettingsServiceImpl) Get(ctx context.Context) (*domain.Settings, error) {
	row, err := s.store.Settings().Get(ctx)
	if errors.Is(err, store.ErrRecordNotFound) {
		def := domain.DefaultSettings()
		return &def, nil
	}
	return row, err
}

func (s *SettingsServiceImpl) Update(ctx context.Context, in domain.Settings) (*domain.Settings, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	in.CreatedAt, in.UpdatedAt = now, now
	if err := s.store.Settings().Save(ctx, &in); err != nil {
		return nil, err
	}
	slog.Info("admin settings updated",
		"assignment", in.DefaultDefectAssignment,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return s.store.Settings().Get(ctx)
}
