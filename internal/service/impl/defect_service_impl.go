package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"defecttracker/internal/domain"
	"defecttracker/internal/observability/metrics"
	"defecttracker/internal/observability/middleware"
	"defecttracker/internal/store"
)

const (
	defaultMaxAttempts = 5
	defaultPageLimit   = 10
	maxPageLimit       = 100
)

type DefectConfig struct {
	// MaxAttempts bounds retries of a create on serial collisions and of an
	// update on version or serialization conflicts.
	MaxAttempts int
}

type serialSource interface {
	Next(ctx context.Context) (string, error)
}

type DefectServiceImpl struct {
	store       *store.Store
	serials     serialSource
	maxAttempts int
	now         func() time.Time
}

func NewDefectServiceImpl(st *store.Store, serials serialSource, cfg DefectConfig) *DefectServiceImpl {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = defaultMaxAttempts
	}
	return &DefectServiceImpl{
		store:       st,
		serials:     serials,
		maxAttempts: attempts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *DefectServiceImpl) Create(ctx context.Context, in domain.NewDefect, actorID int64) (*domain.Defect, error) {
	result := "success"
	defer func() {
		metrics.DefectMutationsTotal.WithLabelValues("create", result).Inc()
	}()

	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" || in.Severity == "" || actorID == 0 {
		result = "invalid"
		return nil, fmt.Errorf("%w: title, description, severity and actor are required", domain.ErrValidation)
	}
	if !in.Severity.Valid() {
		result = "invalid"
		return nil, fmt.Errorf("%w: unknown severity %q", domain.ErrValidation, in.Severity)
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		serialNumber, err := s.serials.Next(ctx)
		if err != nil {
			result = "failure"
			return nil, fmt.Errorf("allocate serial number: %w", err)
		}

		defect, err := s.createOnce(ctx, in, actorID, serialNumber)
		if err == nil {
			slog.Info("defect created",
				"defect_id", defect.ID,
				"serial_number", defect.SerialNumber,
				"actor_id", actorID,
				"request_id", middleware.RequestIDFromContext(ctx),
				"trace_id", middleware.TraceIDFromContext(ctx),
			)
			return defect, nil
		}
		if !errors.Is(err, errSerialTaken) {
			result = "failure"
			return nil, err
		}

		metrics.MutationRetriesTotal.WithLabelValues("create", "serial_conflict").Inc()
		slog.Warn("serial number already taken, retrying",
			"serial_number", serialNumber,
			"attempt", attempt,
			"request_id", middleware.RequestIDFromContext(ctx),
		)
	}

	result = "conflict"
	return nil, domain.ErrSerialConflict
}

func (s *DefectServiceImpl) createOnce(ctx context.Context, in domain.NewDefect, actorID int64, serialNumber string) (*domain.Defect, error) {
	now := s.now()
	defect := &domain.Defect{
		Title:        in.Title,
		Description:  in.Description,
		Severity:     in.Severity,
		Status:       domain.StatusOpen,
		SerialNumber: serialNumber,
		AssignedTo:   in.AssignedTo,
		CreatedBy:    actorID,
		IsDeleted:    false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		// 1) defect row; the unique serial index is the final word on collisions
		if err := tx.Defects().Create(ctx, defect); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				return fmt.Errorf("%w: %s", errSerialTaken, serialNumber)
			}
			return err
		}

		// 2) tag associations, unknown names dropped
		if err := attachTags(ctx, tx, defect.ID, in.Tags); err != nil {
			return err
		}

		// 3) attachments
		if len(in.Attachments) > 0 {
			atts := make([]domain.Attachment, 0, len(in.Attachments))
			for _, u := range in.Attachments {
				atts = append(atts, domain.Attachment{DefectID: defect.ID, URL: strings.TrimSpace(u), CreatedAt: now})
			}
			if err := tx.Attachments().AddBatch(ctx, atts); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defect, nil
}

func (s *DefectServiceImpl) Update(ctx context.Context, defectID, actorID int64, patch domain.DefectPatch) (*domain.DefectAggregate, error) {
	result := "success"
	defer func() {
		metrics.DefectMutationsTotal.WithLabelValues("update", result).Inc()
	}()

	if actorID == 0 {
		result = "invalid"
		return nil, fmt.Errorf("%w: actor is required", domain.ErrValidation)
	}
	if err := checkPatch(patch); err != nil {
		result = "invalid"
		return nil, err
	}

	var version int
	for attempt := 1; ; attempt++ {
		var err error
		version, err = s.updateOnce(ctx, defectID, actorID, patch)
		if err == nil {
			break
		}
		reason := retryReason(err)
		if reason == "" || attempt >= s.maxAttempts {
			switch {
			case errors.Is(err, domain.ErrDefectNotFound), errors.Is(err, domain.ErrDefectDeleted):
				result = "not_found"
			case reason != "":
				result = "conflict"
			default:
				result = "failure"
			}
			return nil, err
		}
		metrics.MutationRetriesTotal.WithLabelValues("update", reason).Inc()
		slog.Warn("defect update conflicted, retrying",
			"defect_id", defectID,
			"reason", reason,
			"attempt", attempt,
			"request_id", middleware.RequestIDFromContext(ctx),
		)
	}

	slog.Info("defect updated",
		"defect_id", defectID,
		"version", version,
		"actor_id", actorID,
		"request_id", middleware.RequestIDFromContext(ctx),
		"trace_id", middleware.TraceIDFromContext(ctx),
	)

	agg, err := s.store.Defects().GetAggregate(ctx, defectID)
	if errors.Is(err, store.ErrRecordNotFound) {
		// deleted between commit and read
		return nil, domain.ErrDefectNotFound
	}
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// updateOnce runs one update transaction and returns the version number it wrote.
func (s *DefectServiceImpl) updateOnce(ctx context.Context, defectID, actorID int64, patch domain.DefectPatch) (int, error) {
	var next int
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		now := s.now()

		// 1) lock the pre-image
		current, err := tx.Defects().GetForUpdate(ctx, defectID)
		if errors.Is(err, store.ErrRecordNotFound) {
			return domain.ErrDefectNotFound
		}
		if err != nil {
			return err
		}
		if current.IsDeleted {
			return domain.ErrDefectDeleted
		}

		// 2) next version number
		next, err = tx.Versions().NextNumber(ctx, defectID)
		if err != nil {
			return err
		}

		// 3) snapshot of the state being replaced
		if err := tx.Versions().Create(ctx, &domain.DefectVersion{
			DefectID:      defectID,
			VersionNumber: next,
			Title:         current.Title,
			Description:   current.Description,
			ModifiedBy:    actorID,
			CreatedAt:     now,
		}); err != nil {
			return err
		}

		// 4) apply present fields
		cols := patch.Columns()
		cols["updated_at"] = now
		if err := tx.Defects().Update(ctx, defectID, cols); err != nil {
			return err
		}

		// 5) tags are replaced only when the patch carries them
		if patch.Tags.Set {
			if err := tx.Tags().DetachAll(ctx, defectID); err != nil {
				return err
			}
			if err := attachTags(ctx, tx, defectID, patch.Tags.Value); err != nil {
				return err
			}
		}
		return nil
	})
	return next, err
}

func (s *DefectServiceImpl) SoftDelete(ctx context.Context, defectID, actorID int64) (bool, error) {
	deleted, err := s.store.Defects().SoftDelete(ctx, defectID, actorID, s.now())
	switch {
	case err != nil:
		metrics.DefectMutationsTotal.WithLabelValues("delete", "failure").Inc()
		return false, err
	case !deleted:
		metrics.DefectMutationsTotal.WithLabelValues("delete", "not_found").Inc()
		return false, nil
	}
	metrics.DefectMutationsTotal.WithLabelValues("delete", "success").Inc()
	slog.Info("defect soft-deleted",
		"defect_id", defectID,
		"actor_id", actorID,
		"request_id", middleware.RequestIDFromContext(ctx),
	)
	return true, nil
}

func (s *DefectServiceImpl) Restore(ctx context.Context, defectID int64) (bool, error) {
	result := "success"
	defer func() {
		metrics.DefectMutationsTotal.WithLabelValues("restore", result).Inc()
	}()

	restored := false
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		current, err := tx.Defects().GetForUpdate(ctx, defectID)
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if !current.IsDeleted {
			return domain.ErrNotRestorable
		}
		restored, err = tx.Defects().Restore(ctx, defectID, s.now())
		return err
	})
	switch {
	case errors.Is(err, domain.ErrNotRestorable):
		result = "not_restorable"
		return false, err
	case err != nil:
		result = "failure"
		return false, err
	case !restored:
		result = "not_found"
		return false, nil
	}
	slog.Info("defect restored", "defect_id", defectID, "request_id", middleware.RequestIDFromContext(ctx))
	return true, nil
}

func (s *DefectServiceImpl) GetDefectByID(ctx context.Context, defectID int64) (*domain.DefectAggregate, error) {
	agg, err := s.store.Defects().GetAggregate(ctx, defectID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, domain.ErrDefectNotFound
	}
	return agg, err
}

func (s *DefectServiceImpl) ListDefects(ctx context.Context, f domain.DefectFilter) (*domain.DefectPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageLimit
	}
	if f.Limit > maxPageLimit {
		f.Limit = maxPageLimit
	}
	defects, total, err := s.store.Defects().List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &domain.DefectPage{Defects: defects, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (s *DefectServiceImpl) ListDeletedDefects(ctx context.Context) ([]domain.Defect, error) {
	return s.store.Defects().ListDeleted(ctx)
}

func (s *DefectServiceImpl) ListVersions(ctx context.Context, defectID int64) ([]domain.DefectVersion, error) {
	ok, err := s.store.Defects().Exists(ctx, defectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrDefectNotFound
	}
	return s.store.Versions().List(ctx, defectID)
}

func (s *DefectServiceImpl) GetVersion(ctx context.Context, defectID int64, number int) (*domain.DefectVersion, error) {
	ok, err := s.store.Defects().Exists(ctx, defectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrDefectNotFound
	}
	v, err := s.store.Versions().Get(ctx, defectID, number)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, domain.ErrVersionNotFound
	}
	return v, err
}

func (s *DefectServiceImpl) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.store.Tags().List(ctx)
}

func checkPatch(p domain.DefectPatch) error {
	if p.Title.Set && strings.TrimSpace(p.Title.Value) == "" {
		return fmt.Errorf("%w: title must not be empty", domain.ErrValidation)
	}
	if p.Description.Set && strings.TrimSpace(p.Description.Value) == "" {
		return fmt.Errorf("%w: description must not be empty", domain.ErrValidation)
	}
	if p.Severity.Set && !p.Severity.Value.Valid() {
		return fmt.Errorf("%w: unknown severity %q", domain.ErrValidation, p.Severity.Value)
	}
	if p.Status.Set && !p.Status.Value.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, p.Status.Value)
	}
	return nil
}

// retryReason classifies errors that a fresh transaction can resolve.
func retryReason(err error) string {
	switch {
	case errors.Is(err, store.ErrDuplicateKey):
		return "version_conflict"
	case errors.Is(err, store.ErrSerializationFailure):
		return "serialization_failure"
	}
	return ""
}
