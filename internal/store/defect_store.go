package store

import (
	"context"
	"time"

	"defecttracker/internal/domain"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefectStore struct{ db *gorm.DB }

func (s *Store) Defects() *DefectStore { return &DefectStore{db: s.DB} }

func (d *DefectStore) Create(ctx context.Context, defect *domain.Defect) error {
	return translate(d.db.WithContext(ctx).Create(defect).Error)
}

// GetByID returns the row whatever its deletion state.
func (d *DefectStore) GetByID(ctx context.Context, id int64) (*domain.Defect, error) {
	var defect domain.Defect
	if err := d.db.WithContext(ctx).First(&defect, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &defect, nil
}

// GetForUpdate loads the row and holds a row lock until the transaction ends.
// SQLite ignores the lock clause and serializes writers instead.
func (d *DefectStore) GetForUpdate(ctx context.Context, id int64) (*domain.Defect, error) {
	var defect domain.Defect
	err := d.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&defect, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &defect, nil
}

func (d *DefectStore) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&domain.Defect{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Count(&n).Error
	return n > 0, translate(err)
}

func (d *DefectStore) Update(ctx context.Context, id int64, cols map[string]any) error {
	res := d.db.WithContext(ctx).Model(&domain.Defect{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// SoftDelete only touches live rows, so a repeated call reports false.
func (d *DefectStore) SoftDelete(ctx context.Context, id, actorID int64, now time.Time) (bool, error) {
	res := d.db.WithContext(ctx).Model(&domain.Defect{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{
			"is_deleted": true,
			"deleted_at": now,
			"deleted_by": actorID,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (d *DefectStore) Restore(ctx context.Context, id int64, now time.Time) (bool, error) {
	res := d.db.WithContext(ctx).Model(&domain.Defect{}).
		Where("id = ? AND is_deleted = ?", id, true).
		Updates(map[string]any{
			"is_deleted": false,
			"deleted_at": nil,
			"deleted_by": nil,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (d *DefectStore) List(ctx context.Context, f domain.DefectFilter) ([]domain.Defect, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("is_deleted = ?", false)
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.Severity != "" {
			db = db.Where("severity = ?", f.Severity)
		}
		if f.AssignedTo != nil {
			db = db.Where("assigned_to = ?", *f.AssignedTo)
		}
		return db
	}

	var total int64
	if err := d.db.WithContext(ctx).Model(&domain.Defect{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var out []domain.Defect
	err := d.db.WithContext(ctx).Scopes(scope).
		Order("created_at DESC, id DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return out, total, nil
}

func (d *DefectStore) ListDeleted(ctx context.Context) ([]domain.Defect, error) {
	var out []domain.Defect
	err := d.db.WithContext(ctx).
		Where("is_deleted = ?", true).
		Order("deleted_at DESC, id DESC").
		Find(&out).Error
	return out, translate(err)
}

type defectRow struct {
	domain.Defect
	CreatedByName  string
	AssignedToName *string
}

// GetAggregate reads a live defect with its names, tags, attachments and comments.
// The child reads run concurrently, so call it on the root store rather than inside a transaction.
func (d *DefectStore) GetAggregate(ctx context.Context, id int64) (*domain.DefectAggregate, error) {
	var row defectRow
	err := d.db.WithContext(ctx).
		Table("defects AS d").
		Select("d.*, COALESCE(c.username, '') AS created_by_name, a.username AS assigned_to_name").
		Joins("LEFT JOIN users c ON c.id = d.created_by").
		Joins("LEFT JOIN users a ON a.id = d.assigned_to").
		Where("d.id = ? AND d.is_deleted = ?", id, false).
		Take(&row).Error
	if err != nil {
		return nil, translate(err)
	}

	agg := &domain.DefectAggregate{
		Defect:         row.Defect,
		CreatedByName:  row.CreatedByName,
		AssignedToName: row.AssignedToName,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tags, err := (&TagStore{db: d.db}).ForDefect(gctx, id)
		agg.Tags = tags
		return err
	})
	g.Go(func() error {
		atts, err := (&AttachmentStore{db: d.db}).ForDefect(gctx, id)
		agg.Attachments = atts
		return err
	})
	g.Go(func() error {
		comments, err := (&CommentStore{db: d.db}).ForDefect(gctx, id)
		agg.Comments = comments
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return agg, nil
}
