package http

import (
	"net/http"

	"defecttracker/internal/domain"
	"defecttracker/internal/dto"
)

func (h *handler) listComments(w http.ResponseWriter, r *http.Request) {
	defectID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	comments, err := h.svc.Comments.List(r.Context(), defectID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *handler) createComment(w http.ResponseWriter, r *http.Request) {
	defectID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	caller, _ := IdentityFrom(r.Context())

	c, err := h.svc.Comments.Create(r.Context(), defectID, caller.UserID, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.audit(r, domain.AuditEntry{
		Type:       domain.AuditCommentCreate,
		UserID:     &caller.UserID,
		EntityType: "comments",
		EntityID:   &c.ID,
		Changes:    map[string]any{"defect_id": defectID, "content": c.Content},
	})
	writeJSON(w, http.StatusCreated, c)
}

func (h *handler) updateComment(w http.ResponseWriter, r *http.Request) {
	defectID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req dto.CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	caller, _ := IdentityFrom(r.Context())

	c, err := h.svc.Comments.Update(r.Context(), defectID, commentID, caller.UserID, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.audit(r, domain.AuditEntry{
		Type:       domain.AuditCommentUpdate,
		UserID:     &caller.UserID,
		EntityType: "comments",
		EntityID:   &commentID,
		Changes:    map[string]any{"defect_id": defectID, "content": c.Content},
	})
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	defectID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	caller, _ := IdentityFrom(r.Context())

	ok, err := h.svc.Comments.Delete(r.Context(), defectID, commentID, caller.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, domain.ErrCommentNotFound)
		return
	}
	h.audit(r, domain.AuditEntry{
		Type:       domain.AuditCommentDelete,
		UserID:     &caller.UserID,
		EntityType: "comments",
		EntityID:   &commentID,
		Changes:    map[string]any{"defect_id": defectID},
	})
	writeJSON(w, http.StatusOK, map[string]any{"id": commentID, "deleted": true})
}
