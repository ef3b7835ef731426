package impl

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"defecttracker/internal/domain"
	"defecttracker/internal/netutil"
)

func TestAuditRecordAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	audit := NewAuditServiceImpl(f.store)
	defectID := int64(12)

	entries := []domain.AuditEntry{
		{Type: domain.AuditLoginFailure, EntityType: "users", Changes: map[string]string{"username": "mallory"}, IP: "203.0.113.5"},
		{Type: domain.AuditDefectCreate, UserID: &f.alice.ID, EntityType: "defects", EntityID: &defectID,
			Changes: map[string]any{"title": "Broken"}, UserAgent: strings.Repeat("x", netutil.MaxUserAgentLength+50)},
		{Type: domain.AuditDefectUpdate, UserID: &f.bob.ID, EntityType: "defects", EntityID: &defectID},
	}
	for _, e := range entries {
		if err := audit.Record(ctx, e); err != nil {
			t.Fatalf("record %s: %v", e.Type, err)
		}
	}

	all, err := audit.List(ctx, domain.AuditFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Type != domain.AuditDefectUpdate {
		t.Fatalf("expected newest first, got %+v", all)
	}
	if all[2].UserID != nil {
		t.Fatalf("failed login must have no user, got %v", *all[2].UserID)
	}
	var payload map[string]string
	if err := json.Unmarshal(all[2].Changes, &payload); err != nil || payload["username"] != "mallory" {
		t.Fatalf("changes not stored as JSON: %s, %v", all[2].Changes, err)
	}
	if len(all[1].UserAgent) != netutil.MaxUserAgentLength {
		t.Fatalf("user agent not truncated: %d", len(all[1].UserAgent))
	}

	tests := []struct {
		name   string
		filter domain.AuditFilter
		want   int
	}{
		{name: "by type", filter: domain.AuditFilter{Type: domain.AuditDefectCreate}, want: 1},
		{name: "by user", filter: domain.AuditFilter{UserID: &f.bob.ID}, want: 1},
		{name: "by entity", filter: domain.AuditFilter{EntityType: "defects", EntityID: &defectID}, want: 2},
		{name: "limit", filter: domain.AuditFilter{Limit: 2}, want: 2},
		{name: "offset", filter: domain.AuditFilter{Offset: 2}, want: 1},
		{name: "future window", filter: domain.AuditFilter{StartDate: ptrTime(time.Now().UTC().Add(time.Hour))}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := audit.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("expected %d rows, got %d", tt.want, len(got))
			}
		})
	}
}

func TestAuditRejectsUnknownType(t *testing.T) {
	f := newFixture(t)
	audit := NewAuditServiceImpl(f.store)
	err := audit.Record(context.Background(), domain.AuditEntry{Type: "DEFECT_EXPLODED"})
	if !errors.Is(err, domain.ErrInvalidAuditType) {
		t.Fatalf("expected ErrInvalidAuditType, got %v", err)
	}
	if n := f.count(t, &domain.AuditLog{}, "1 = 1"); n != 0 {
		t.Fatalf("expected no rows, got %d", n)
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
