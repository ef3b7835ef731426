package http

import (
	"net/http"
	"strconv"

	"defecttracker/internal/domain"
	"defecttracker/internal/dto"
)

func (h *handler) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Defects.ListTags(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *handler) listDefects(w http.ResponseWriter, r *http.Request) {
	filter, err := dto.ParseDefectFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.svc.Defects.ListDefects(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handler) createDefect(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDefectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	caller, _ := IdentityFrom(r.Context())

	defect, err := h.svc.Defects.Create(r.Context(), req.ToDomain(), caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.audit(r, domain.AuditEntry{
		Type:       domain.AuditDefectCreate,
		UserID:     &caller.UserID,
		EntityType: "defects",
		EntityID:   &defect.ID,
		Changes:    req,
	})
	writeJSON(w, http.StatusCreated, defect)
}

func (h *handler) getDefect(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	agg, err := h.svc.Defects.GetDefectByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func (h *handler) updateDefect(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.UpdateDefectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	caller, _ := IdentityFrom(r.Context())

	agg, err := h.svc.Defects.Update(r.Context(), id, caller.UserID, req.DefectPatch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	changes := req.Columns()
	if req.Tags.Set {
		changes["tags"] = req.Tags.Value
	}
	h.audit(r, domain.AuditEntry{
		Type:       domain.AuditDefectUpdate,
		UserID:     &caller.UserID,
		EntityType: "defects",
		EntityID:   &id,
		Changes:    changes,
	})
	writeJSON(w, http.StatusOK, agg)
}

func (h *handler) deleteDefect(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	caller, _ := IdentityFrom(r.Context())

	ok, err := h.svc.Defects.SoftDelete(r.Context(), id, caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, domain.ErrDefectNotFound)
		return
	}
	h.audit(r, domain.AuditEntry{
		Type:       domain.AuditDefectDelete,
		UserID:     &caller.UserID,
		EntityType: "defects",
		EntityID:   &id,
	})
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func (h *handler) listVersions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	versions, err := h.svc.Defects.ListVersions(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (h *handler) getVersion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	number, err := pathID(r, "versionNumber")
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.svc.Defects.GetVersion(r.Context(), id, int(number))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handler) listDeletedDefects(w http.ResponseWriter, r *http.Request) {
	defects, err := h.svc.Defects.ListDeletedDefects(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, defects)
}

func (h *handler) restoreDefect(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	caller, _ := IdentityFrom(r.Context())

	ok, err := h.svc.Defects.Restore(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, domain.ErrDefectNotFound)
		return
	}
	h.audit(r, domain.AuditEntry{
		Type:       domain.AuditDefectRestore,
		UserID:     &caller.UserID,
		EntityType: "defects",
		EntityID:   &id,
	})
	agg, err := h.svc.Defects.GetDefectByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func (h *handler) listAuditLogs(w http.ResponseWriter, r *http.Request) {
	filter, err := dto.ParseAuditFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	logs, err := h.svc.Audit.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("X-Result-Count", strconv.Itoa(len(logs)))
	writeJSON(w, http.StatusOK, logs)
}
