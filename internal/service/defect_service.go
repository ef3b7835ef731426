package service

import (
	"context"

	"defecttracker/internal/domain"
)

type DefectService interface {
	Create(ctx context.Context, in domain.NewDefect, actorID int64) (*domain.Defect, error)
	Update(ctx context.Context, defectID, actorID int64, patch domain.DefectPatch) (*domain.DefectAggregate, error)
	SoftDelete(ctx context.Context, defectID, actorID int64) (bool, error)
	Restore(ctx context.Context, defectID int64) (bool, error)

	GetDefectByID(ctx context.Context, defectID int64) (*domain.DefectAggregate, error)
	ListDefects(ctx context.Context, filter domain.DefectFilter) (*domain.DefectPage, error)
	ListDeletedDefects(ctx context.Context) ([]domain.Defect, error)
	ListVersions(ctx context.Context, defectID int64) ([]domain.DefectVersion, error)
	GetVersion(ctx context.Context, defectID int64, number int) (*domain.DefectVersion, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
}
