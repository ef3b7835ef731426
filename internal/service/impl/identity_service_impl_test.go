package impl

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"defecttracker/internal/domain"
	"defecttracker/internal/store"

	"golang.org/x/crypto/bcrypt"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[int64]*domain.User
}

func newMemoryUsers(users ...*domain.User) *memoryUsers {
	m := &memoryUsers{users: map[int64]*domain.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memoryUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (m *memoryUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.ID == id })
}

func (m *memoryUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.Username == username })
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.Email == email })
}

func newIdentityFixture(t *testing.T) (*IdentityServiceImpl, *TokenServiceImpl, *memoryUsers) {
	t.Helper()
	passwords := NewBcryptPasswordService(bcrypt.MinCost)
	hash, err := passwords.Hash("Correct#Horse1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := newMemoryUsers(
		&domain.User{ID: 1, Username: "admin", Email: "admin@example.com", PasswordHash: hash, Role: domain.RoleAdmin, IsActive: true},
		&domain.User{ID: 2, Username: "ghost", Email: "ghost@example.com", PasswordHash: hash, Role: domain.RoleUser, IsActive: false},
	)
	tokens := NewTokenServiceHS256(TokenConfig{
		Issuer:     "defect-tracker",
		Audience:   "defect-tracker-clients",
		AccessTTL:  time.Hour,
		SigningKey: []byte("test-secret"),
	})
	return &IdentityServiceImpl{Users: users, Passwords: passwords, Tokens: tokens}, tokens, users
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newIdentityFixture(t)
	tests := []struct {
		name     string
		login    string
		password string
		wantErr  error
		wantID   int64
	}{
		{name: "username", login: "admin", password: "Correct#Horse1", wantID: 1},
		{name: "email", login: "admin@example.com", password: "Correct#Horse1", wantID: 1},
		{name: "wrong password", login: "admin", password: "nope", wantErr: domain.ErrInvalidCredentials},
		{name: "unknown user", login: "nobody", password: "Correct#Horse1", wantErr: domain.ErrInvalidCredentials},
		{name: "inactive", login: "ghost", password: "Correct#Horse1", wantErr: domain.ErrUserInactive},
		{name: "empty", login: " ", password: "", wantErr: domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.Authenticate(context.Background(), tt.login, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil || u.ID != tt.wantID {
				t.Fatalf("authenticate: %+v, %v", u, err)
			}
		})
	}
}

func TestIssueAndResolve(t *testing.T) {
	svc, tokens, users := newIdentityFixture(t)
	ctx := context.Background()
	admin, _ := users.GetByID(ctx, 1)

	tok, err := tokens.Issue(ctx, admin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tok.ExpiresIn != int64(time.Hour.Seconds()) {
		t.Fatalf("unexpected expiry %d", tok.ExpiresIn)
	}

	id, err := svc.Resolve(ctx, tok.AccessToken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id.UserID != 1 || !id.IsAdmin() || !id.Active {
		t.Fatalf("unexpected identity %+v", id)
	}

	// role changes take effect without a new token
	users.mu.Lock()
	users.users[1].Role = domain.RoleUser
	users.mu.Unlock()
	id, err = svc.Resolve(ctx, tok.AccessToken)
	if err != nil || id.IsAdmin() {
		t.Fatalf("expected demoted identity, got %+v, %v", id, err)
	}

	users.mu.Lock()
	users.users[1].IsActive = false
	users.mu.Unlock()
	if _, err := svc.Resolve(ctx, tok.AccessToken); !errors.Is(err, domain.ErrUserInactive) {
		t.Fatalf("expected ErrUserInactive, got %v", err)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	_, tokens, users := newIdentityFixture(t)
	ctx := context.Background()
	admin, _ := users.GetByID(ctx, 1)

	other := NewTokenServiceHS256(TokenConfig{Issuer: "someone-else", Audience: "defect-tracker-clients", AccessTTL: time.Hour, SigningKey: []byte("test-secret")})
	foreign, err := other.Issue(ctx, admin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	expiredSvc := NewTokenServiceHS256(TokenConfig{Issuer: "defect-tracker", Audience: "defect-tracker-clients", AccessTTL: -time.Minute, SigningKey: []byte("test-secret")})
	expired, err := expiredSvc.Issue(ctx, admin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	forged := NewTokenServiceHS256(TokenConfig{Issuer: "defect-tracker", Audience: "defect-tracker-clients", AccessTTL: time.Hour, SigningKey: []byte("wrong-secret")})
	bad, err := forged.Issue(ctx, admin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for name, raw := range map[string]string{
		"garbage":      "not.a.token",
		"wrong issuer": foreign.AccessToken,
		"expired":      expired.AccessToken,
		"wrong key":    bad.AccessToken,
	} {
		if _, err := tokens.Verify(raw); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}
