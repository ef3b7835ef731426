package impl

import (
	"context"
	"errors"
	"testing"

	"defecttracker/internal/domain"
)

func TestCommentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	comments := NewCommentServiceImpl(f.store)
	d := f.createDefect(t, "Needs discussion")

	first, err := comments.Create(ctx, d.ID, f.alice.ID, "  first comment  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Content != "first comment" || first.Username != "alice" {
		t.Fatalf("unexpected comment %+v", first)
	}
	second, err := comments.Create(ctx, d.ID, f.bob.ID, "second comment")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := comments.List(ctx, d.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	tests := []struct {
		name    string
		userID  int64
		wantErr error
	}{
		{name: "other user cannot edit", userID: f.bob.ID, wantErr: domain.ErrCommentNotFound},
		{name: "author edits", userID: f.alice.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := comments.Update(ctx, d.ID, first.ID, tt.userID, "edited comment")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil || got.Content != "edited comment" {
				t.Fatalf("update: %+v, %v", got, err)
			}
		})
	}

	if ok, err := comments.Delete(ctx, d.ID, first.ID, f.bob.ID); err != nil || ok {
		t.Fatalf("non-author delete should report false, got %v %v", ok, err)
	}
	if ok, err := comments.Delete(ctx, d.ID, first.ID, f.alice.ID); err != nil || !ok {
		t.Fatalf("author delete: %v %v", ok, err)
	}
	if _, err := comments.Update(ctx, d.ID, first.ID, f.alice.ID, "too late"); !errors.Is(err, domain.ErrCommentNotFound) {
		t.Fatalf("deleted comment must not be editable, got %v", err)
	}

	agg, err := f.defects.GetDefectByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(agg.Comments) != 1 || agg.Comments[0].ID != second.ID || agg.Comments[0].Username != "bob" {
		t.Fatalf("aggregate should only show the live comment, got %+v", agg.Comments)
	}
}

func TestCommentOnMissingOrDeletedDefect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	comments := NewCommentServiceImpl(f.store)

	if _, err := comments.Create(ctx, 404, f.alice.ID, "hello"); !errors.Is(err, domain.ErrDefectNotFound) {
		t.Fatalf("expected ErrDefectNotFound, got %v", err)
	}

	d := f.createDefect(t, "Short lived")
	if _, err := f.defects.SoftDelete(ctx, d.ID, f.alice.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := comments.Create(ctx, d.ID, f.alice.ID, "hello"); !errors.Is(err, domain.ErrDefectNotFound) {
		t.Fatalf("expected ErrDefectNotFound for deleted defect, got %v", err)
	}
	if _, err := comments.Create(ctx, d.ID, f.alice.ID, "   "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
