package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"defecttracker/internal/domain"
	"defecttracker/internal/dto"
	"defecttracker/internal/netutil"
	"defecttracker/internal/observability/middleware"
)

const accessCookie = "accessToken"

type identityKey struct{}

func withIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller resolved by the auth middleware.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok
}

// accessToken prefers the Authorization header and falls back to the cookie.
func accessToken(r *http.Request) string {
	if raw := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[len("Bearer "):])
	}
	if c, err := r.Cookie(accessCookie); err == nil {
		return c.Value
	}
	return ""
}

func (h *handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := accessToken(r)
		if raw == "" {
			writeMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		id, err := h.svc.Identity.Resolve(r.Context(), raw)
		if err != nil {
			slog.Warn("auth rejected",
				"error", err,
				"request_id", middleware.RequestIDFromContext(r.Context()),
				"trace_id", middleware.TraceIDFromContext(r.Context()),
			)
			if statusFor(err) == http.StatusInternalServerError {
				writeError(w, r, err)
				return
			}
			writeMessage(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok || !id.IsAdmin() {
			writeMessage(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.svc.Identity.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrUserInactive) {
			h.audit(r, domain.AuditEntry{
				Type:       domain.AuditLoginFailure,
				EntityType: "users",
				Changes:    map[string]string{"username": req.Username, "reason": err.Error()},
			})
		}
		writeError(w, r, err)
		return
	}

	tok, err := h.svc.Tokens.Issue(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookie,
		Value:    tok.AccessToken,
		Path:     "/",
		MaxAge:   int(tok.ExpiresIn),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	h.audit(r, domain.AuditEntry{
		Type:       domain.AuditLoginSuccess,
		UserID:     &user.ID,
		EntityType: "users",
		EntityID:   &user.ID,
	})
	writeJSON(w, http.StatusOK, dto.LoginResponse{TokenResponse: *tok, User: dto.NewUserSummary(user)})
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       id.UserID,
		"username": id.Username,
		"role":     id.Role,
	})
}

// audit records entry with the caller's address. A failure is logged and
// never changes the response.
func (h *handler) audit(r *http.Request, entry domain.AuditEntry) {
	entry.IP = netutil.ClientIP(r)
	entry.UserAgent = r.UserAgent()
	if err := h.svc.Audit.Record(r.Context(), entry); err != nil {
		slog.Error("audit record failed",
			"type", entry.Type,
			"error", err,
			"request_id", middleware.RequestIDFromContext(r.Context()),
		)
	}
}
