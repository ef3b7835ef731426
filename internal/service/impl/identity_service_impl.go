package impl

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"defecttracker/internal/domain"
	"defecttracker/internal/observability/metrics"
	"defecttracker/internal/observability/middleware"
	"defecttracker/internal/service"
	"defecttracker/internal/store"
)

type userStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type IdentityServiceImpl struct {
	Users     userStore
	Passwords service.PasswordService
	Tokens    service.TokenService
}

func NewIdentityServiceImpl(st *store.Store, passwords service.PasswordService, tokens service.TokenService) *IdentityServiceImpl {
	return &IdentityServiceImpl{
		Users:     st.Users(),
		Passwords: passwords,
		Tokens:    tokens,
	}
}

// Authenticate accepts a username or, when it contains '@', an email address.
func (s *IdentityServiceImpl) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	result := "success"
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(result).Inc()
	}()

	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		result = "invalid"
		return nil, ErrEmptyCredential
	}

	var (
		user *domain.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.Users.GetByEmail(ctx, login)
	} else {
		user, err = s.Users.GetByUsername(ctx, login)
	}
	if errors.Is(err, store.ErrRecordNotFound) {
		result = "failure"
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		result = "error"
		return nil, err
	}
	if !s.Passwords.Verify(user.PasswordHash, password) {
		result = "failure"
		slog.Warn("login rejected", "user_id", user.ID, "request_id", middleware.RequestIDFromContext(ctx))
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		result = "inactive"
		return nil, domain.ErrUserInactive
	}
	return user, nil
}

// Resolve turns a bearer token into the caller's current identity. Role and
// active flag come from the user row, not from the token.
func (s *IdentityServiceImpl) Resolve(ctx context.Context, accessToken string) (domain.Identity, error) {
	userID, err := s.Tokens.Verify(accessToken)
	if err != nil {
		return domain.Identity{}, err
	}
	user, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return domain.Identity{}, domain.ErrInvalidToken
	}
	if err != nil {
		return domain.Identity{}, err
	}
	if !user.IsActive {
		return domain.Identity{}, domain.ErrUserInactive
	}
	return domain.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Active:   user.IsActive,
	}, nil
}
