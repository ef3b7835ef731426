package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"defecttracker/internal/domain"
	"defecttracker/pkg/db"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := db.OpenGorm(db.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "store.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	st := New(gdb)
	if err := st.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := st.SeedTags(context.Background()); err != nil {
		t.Fatalf("seed tags: %v", err)
	}
	return st
}

func insertDefect(t *testing.T, st *Store, serial string, createdBy int64, assignee *int64) *domain.Defect {
	t.Helper()
	now := time.Now().UTC()
	d := &domain.Defect{
		Title:        "Crash on save",
		Description:  "Saving a draft crashes the editor",
		Severity:     domain.SeverityHigh,
		Status:       domain.StatusOpen,
		SerialNumber: serial,
		AssignedTo:   assignee,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := st.Defects().Create(context.Background(), d); err != nil {
		t.Fatalf("insert defect %s: %v", serial, err)
	}
	return d
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "nil", in: nil, want: nil},
		{name: "not found", in: gorm.ErrRecordNotFound, want: ErrRecordNotFound},
		{name: "gorm duplicate", in: gorm.ErrDuplicatedKey, want: ErrDuplicateKey},
		{name: "pg unique", in: &pgconn.PgError{Code: "23505", ConstraintName: "ux_defects_serial_number"}, want: ErrDuplicateKey},
		{name: "pg serialization", in: &pgconn.PgError{Code: "40001"}, want: ErrSerializationFailure},
		{name: "pg deadlock", in: fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40P01"}), want: ErrSerializationFailure},
		{name: "sqlite unique", in: errors.New("UNIQUE constraint failed: defects.serial_number"), want: ErrDuplicateKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.in)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}

	other := errors.New("connection reset")
	if got := translate(other); got != other {
		t.Fatalf("unknown errors must pass through, got %v", got)
	}
}

func TestSerialCounterSeedsFromExistingRows(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	insertDefect(t, st, "BUG-2024-0041", 1, nil)
	insertDefect(t, st, "BUG-2024-0007", 1, nil)
	insertDefect(t, st, "BUG-2023-0900", 1, nil)
	insertDefect(t, st, "BUG-2024-garbage", 1, nil)

	tests := []struct {
		prefix string
		year   int
		want   int64
	}{
		{prefix: "BUG", year: 2024, want: 42},
		{prefix: "BUG", year: 2024, want: 43},
		{prefix: "BUG", year: 2025, want: 1},
		{prefix: "SEC", year: 2024, want: 1},
		{prefix: "BUG", year: 2023, want: 901},
	}
	for _, tt := range tests {
		got, err := st.Serials().Next(ctx, tt.prefix, tt.year)
		if err != nil {
			t.Fatalf("next %s/%d: %v", tt.prefix, tt.year, err)
		}
		if got != tt.want {
			t.Fatalf("next %s/%d: expected %d, got %d", tt.prefix, tt.year, tt.want, got)
		}
	}
}

func TestSerialCounterMatchesPrefixLiterally(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	insertDefect(t, st, "BUG-2024-0099", 1, nil)
	insertDefect(t, st, "B_G-2024-0003", 1, nil)
	insertDefect(t, st, "B%-2024-0500", 1, nil)

	var matched []string
	err := st.DB.Model(&domain.Defect{}).
		Where(`serial_number LIKE ? ESCAPE '\'`, escapeLike("B_G-2024-")+"%").
		Pluck("serial_number", &matched).Error
	if err != nil {
		t.Fatalf("pluck: %v", err)
	}
	if len(matched) != 1 || matched[0] != "B_G-2024-0003" {
		t.Fatalf("expected only B_G-2024-0003, got %v", matched)
	}

	if got, err := st.Serials().Next(ctx, "B_G", 2024); err != nil || got != 4 {
		t.Fatalf("next B_G/2024: expected 4, got %d, %v", got, err)
	}
	if got, err := st.Serials().Next(ctx, "B%", 2024); err != nil || got != 501 {
		t.Fatalf("next B%%/2024: expected 501, got %d, %v", got, err)
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "BUG-2024-", want: "BUG-2024-"},
		{in: "B_G-2024-", want: `B\_G-2024-`},
		{in: "50%", want: `50\%`},
		{in: `a\b`, want: `a\\b`},
	}
	for _, tt := range tests {
		if got := escapeLike(tt.in); got != tt.want {
			t.Fatalf("escapeLike(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestSerialCounterSurvivesRollback(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, err := st.Serials().Next(ctx, "BUG", 2024); err != nil {
		t.Fatalf("next: %v", err)
	}
	boom := errors.New("boom")
	err := st.WithTx(ctx, func(tx *Store) error {
		insertDefect(t, tx, "BUG-2024-0001", 1, nil)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected rollback error, got %v", err)
	}
	got, err := st.Serials().Next(ctx, "BUG", 2024)
	if err != nil || got != 2 {
		t.Fatalf("expected 2 after rollback, got %d, %v", got, err)
	}
}

func TestDuplicateSerialIsTranslated(t *testing.T) {
	st := openTestStore(t)
	insertDefect(t, st, "BUG-2024-0001", 1, nil)

	d := &domain.Defect{
		Title: "Other", Description: "Another defect entirely", Severity: domain.SeverityLow,
		Status: domain.StatusOpen, SerialNumber: "BUG-2024-0001", CreatedBy: 1,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	if err := st.Defects().Create(context.Background(), d); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestGetAggregate(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	reporter := &domain.User{Username: "carol", Email: "carol@example.com", PasswordHash: "x", Role: domain.RoleUser, IsActive: true, CreatedAt: now, UpdatedAt: now}
	if err := st.Users().Create(ctx, reporter); err != nil {
		t.Fatalf("create user: %v", err)
	}
	orphanAssignee := int64(999)
	d := insertDefect(t, st, "BUG-2024-0001", reporter.ID, &orphanAssignee)

	tags, err := st.Tags().FindByNames(ctx, []string{"Security", "Backend"})
	if err != nil || len(tags) != 2 {
		t.Fatalf("find tags: %v, %v", tags, err)
	}
	if err := st.Tags().Attach(ctx, d.ID, []int64{tags[0].ID, tags[1].ID}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := st.Attachments().AddBatch(ctx, []domain.Attachment{{DefectID: d.ID, URL: "https://files.example.com/a.png", CreatedAt: now}}); err != nil {
		t.Fatalf("attachments: %v", err)
	}
	c := &domain.Comment{DefectID: d.ID, UserID: reporter.ID, Content: "seen it too", CreatedAt: now, UpdatedAt: now}
	if err := st.Comments().Create(ctx, c); err != nil {
		t.Fatalf("comment: %v", err)
	}

	agg, err := st.Defects().GetAggregate(ctx, d.ID)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if agg.CreatedByName != "carol" || agg.AssignedToName != nil {
		t.Fatalf("unexpected names %q %v", agg.CreatedByName, agg.AssignedToName)
	}
	if len(agg.Tags) != 2 || agg.Tags[0].Name != "Backend" || agg.Tags[1].Name != "Security" {
		t.Fatalf("expected tags ordered by name, got %+v", agg.Tags)
	}
	if len(agg.Attachments) != 1 || len(agg.Comments) != 1 || agg.Comments[0].Username != "carol" {
		t.Fatalf("unexpected children %+v %+v", agg.Attachments, agg.Comments)
	}

	if ok, err := st.Defects().SoftDelete(ctx, d.ID, reporter.ID, now); err != nil || !ok {
		t.Fatalf("soft delete: %v %v", ok, err)
	}
	if _, err := st.Defects().GetAggregate(ctx, d.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("deleted defect must not be readable, got %v", err)
	}
}
