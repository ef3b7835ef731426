package dto

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"defecttracker/internal/domain"
)

// ParseDefectFilter reads page, limit, status, severity and assignedTo.
func ParseDefectFilter(q url.Values) (domain.DefectFilter, error) {
	f := domain.DefectFilter{
		Status:   domain.Status(q.Get("status")),
		Severity: domain.Severity(q.Get("severity")),
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, f.Status)
	}
	if f.Severity != "" && !f.Severity.Valid() {
		return f, fmt.Errorf("%w: unknown severity %q", domain.ErrValidation, f.Severity)
	}
	var err error
	if f.Page, err = intParam(q, "page", 1); err != nil {
		return f, err
	}
	if f.Limit, err = intParam(q, "limit", 10); err != nil {
		return f, err
	}
	if f.AssignedTo, err = idParam(q, "assignedTo"); err != nil {
		return f, err
	}
	return f, nil
}

// ParseAuditFilter reads startDate, endDate, type, userId, entityType, entityId, limit and offset.
func ParseAuditFilter(q url.Values) (domain.AuditFilter, error) {
	f := domain.AuditFilter{
		Type:       domain.AuditType(q.Get("type")),
		EntityType: q.Get("entityType"),
	}
	if f.Type != "" && !f.Type.Valid() {
		return f, fmt.Errorf("%w: unknown audit type %q", domain.ErrValidation, f.Type)
	}
	var err error
	if f.StartDate, err = timeParam(q, "startDate"); err != nil {
		return f, err
	}
	if f.EndDate, err = timeParam(q, "endDate"); err != nil {
		return f, err
	}
	if f.UserID, err = idParam(q, "userId"); err != nil {
		return f, err
	}
	if f.EntityID, err = idParam(q, "entityId"); err != nil {
		return f, err
	}
	if f.Limit, err = intParam(q, "limit", 100); err != nil {
		return f, err
	}
	if f.Offset, err = intParam(q, "offset", 0); err != nil {
		return f, err
	}
	return f, nil
}

func intParam(q url.Values, key string, def int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrValidation, key)
	}
	return n, nil
}

func idParam(q url.Values, key string) (*int64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("%w: %s must be a positive integer", domain.ErrValidation, key)
	}
	return &n, nil
}

func timeParam(q url.Values, key string) (*time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s must be an RFC 3339 timestamp or a date", domain.ErrValidation, key)
}
