package service

import (
	"context"

	"defecttracker/internal/domain"
)

type AuditService interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLog, error)
}
