package http

import (
	"net/http"

	"defecttracker/internal/domain"
	"defecttracker/internal/dto"
)

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *handler) getProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := IdentityFrom(r.Context())
	user, err := h.svc.Users.Get(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	caller, _ := IdentityFrom(r.Context())

	user, err := h.svc.Users.UpdateProfile(r.Context(), caller.UserID, req.ToDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.audit(r, domain.AuditEntry{
		Type:       domain.AuditProfileUpdate,
		UserID:     &caller.UserID,
		EntityType: "users",
		EntityID:   &user.ID,
		Changes:    req,
	})
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.Settings.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	caller, _ := IdentityFrom(r.Context())

	settings, err := h.svc.Settings.Update(r.Context(), req.ToDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	settingsID := domain.SettingsID
	h.audit(r, domain.AuditEntry{
		Type:       domain.AuditSettingsUpdate,
		UserID:     &caller.UserID,
		EntityType: "settings",
		EntityID:   &settingsID,
		Changes:    req.ToDomain(),
	})
	writeJSON(w, http.StatusOK, settings)
}
