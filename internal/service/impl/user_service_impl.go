package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"defecttracker/internal/domain"
	"defecttracker/internal/observability/middleware"
	"defecttracker/internal/store"
)

const (
	usernameMin = 3
	usernameMax = 30
)

type UserServiceImpl struct {
	store *store.Store
	now   func() time.Time
}

func NewUserServiceImpl(st *store.Store) *UserServiceImpl {
	return &UserServiceImpl{store: st, now: func() time.Time { return time.Now().UTC() }}
}

func (s *UserServiceImpl) List(ctx context.Context) ([]domain.User, error) {
	return s.store.Users().List(ctx)
}

func (s *UserServiceImpl) Get(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	return user, err
}

// UpdateProfile changes username and/or email. A clash with another account
// returns ErrIdentityTaken.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, userID int64, patch domain.ProfilePatch) (*domain.User, error) {
	cols, err := profileColumns(patch)
	if err != nil {
		return nil, err
	}
	cols["updated_at"] = s.now()

	found, err := s.store.Users().UpdateProfile(ctx, userID, cols)
	if errors.Is(err, store.ErrDuplicateKey) {
		return nil, domain.ErrIdentityTaken
	}
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrUserNotFound
	}
	slog.Info("profile updated",
		"user_id", userID,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return s.Get(ctx, userID)
}

func profileColumns(p domain.ProfilePatch) (map[string]any, error) {
	cols := map[string]any{}
	if p.Username != nil {
		name := strings.TrimSpace(*p.Username)
		if n := utf8.RuneCountInString(name); n < usernameMin || n > usernameMax {
			return nil, fmt.Errorf("%w: username must be between %d and %d characters", domain.ErrValidation, usernameMin, usernameMax)
		}
		cols["username"] = name
	}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			return nil, fmt.Errorf("%w: email must be a valid address", domain.ErrValidation)
		}
		cols["email"] = email
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}
	return cols, nil
}
