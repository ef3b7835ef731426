package impl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"defecttracker/internal/domain"
	"defecttracker/internal/netutil"
	"defecttracker/internal/observability/metrics"
	"defecttracker/internal/observability/middleware"
	"defecttracker/internal/store"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

// AuditServiceImpl appends audit rows. It runs outside any defect transaction,
// so a failure here never undoes the change being recorded.
type AuditServiceImpl struct {
	store *store.Store
	now   func() time.Time
}

func NewAuditServiceImpl(st *store.Store) *AuditServiceImpl {
	return &AuditServiceImpl{store: st, now: func() time.Time { return time.Now().UTC() }}
}

func (a *AuditServiceImpl) Record(ctx context.Context, entry domain.AuditEntry) error {
	result := "success"
	defer func() {
		metrics.AuditRecordsTotal.WithLabelValues(result).Inc()
	}()

	if !entry.Type.Valid() {
		result = "invalid"
		return fmt.Errorf("%w: %q", domain.ErrInvalidAuditType, entry.Type)
	}

	var changes domain.JSON
	if entry.Changes != nil {
		raw, err := json.Marshal(entry.Changes)
		if err != nil {
			result = "failure"
			return fmt.Errorf("encode audit changes: %w", err)
		}
		changes = raw
	}

	row := &domain.AuditLog{
		Type:       entry.Type,
		UserID:     entry.UserID,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Changes:    changes,
		IP:         entry.IP,
		UserAgent:  netutil.TruncateUserAgent(entry.UserAgent),
		CreatedAt:  a.now(),
	}
	if err := a.store.Audit().Create(ctx, row); err != nil {
		result = "failure"
		slog.Error("audit log write failed",
			"type", entry.Type,
			"entity_type", entry.EntityType,
			"error", err,
			"request_id", middleware.RequestIDFromContext(ctx),
		)
		return err
	}

	slog.Debug("audit log recorded",
		"audit_id", row.ID,
		"type", entry.Type,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return nil
}

func (a *AuditServiceImpl) List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLog, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAuditType, f.Type)
	}
	if f.Limit < 1 {
		f.Limit = defaultAuditLimit
	}
	if f.Limit > maxAuditLimit {
		f.Limit = maxAuditLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return a.store.Audit().List(ctx, f)
}
