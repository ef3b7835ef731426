package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"defecttracker/internal/domain"
	"defecttracker/internal/dto"
	"defecttracker/internal/observability/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenConfig struct {
	Issuer     string        // e.g. "defect-tracker"
	Audience   string        // e.g. "defect-tracker-clients"
	AccessTTL  time.Duration // e.g. 1h
	SigningKey []byte        // HS256 secret
}

type AccessClaims struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type TokenServiceImpl struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenServiceHS256(cfg TokenConfig) *TokenServiceImpl {
	return &TokenServiceImpl{cfg: cfg, now: time.Now}
}

func (t *TokenServiceImpl) Issue(ctx context.Context, user *domain.User) (*dto.TokenResponse, error) {
	now := t.now()
	claims := AccessClaims{
		Role:     string(user.Role),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	slog.Info("issued access token",
		"user_id", user.ID,
		"jti", claims.ID,
		"request_id", middleware.RequestIDFromContext(ctx),
		"trace_id", middleware.TraceIDFromContext(ctx),
	)
	return &dto.TokenResponse{
		AccessToken: signed,
		ExpiresIn:   int64(t.cfg.AccessTTL.Seconds()),
	}, nil
}

// Verify checks signature, expiry, issuer and audience and returns the subject.
func (t *TokenServiceImpl) Verify(accessToken string) (int64, error) {
	claims := &AccessClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	tok, err := parser.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		return t.cfg.SigningKey, nil
	})
	if err != nil || !tok.Valid {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if claims.Issuer != t.cfg.Issuer {
		return 0, fmt.Errorf("%w: bad issuer", domain.ErrInvalidToken)
	}
	if !slices.Contains(claims.Audience, t.cfg.Audience) {
		return 0, fmt.Errorf("%w: bad audience", domain.ErrInvalidToken)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Join(domain.ErrInvalidToken, errors.New("bad subject"))
	}
	return id, nil
}
