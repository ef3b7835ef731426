package impl

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"defecttracker/internal/domain"
	"defecttracker/internal/serial"
	"defecttracker/internal/store"
	"defecttracker/pkg/db"

	"github.com/prometheus/client_golang/prometheus"
	promdto "github.com/prometheus/client_model/go"
	"gorm.io/gorm"
)

var fixedClock = func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) }

type fixture struct {
	db      *gorm.DB
	store   *store.Store
	defects *DefectServiceImpl
	alice   *domain.User
	bob     *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, err := db.OpenGorm(db.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "defects.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	st := store.New(gdb)
	ctx := context.Background()
	if err := st.AutoMigrate(ctx); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := st.SeedTags(ctx); err != nil {
		t.Fatalf("seed tags: %v", err)
	}

	f := &fixture{db: gdb, store: st}
	f.alice = f.addUser(t, "alice", domain.RoleAdmin)
	f.bob = f.addUser(t, "bob", domain.RoleUser)

	gen := serial.New("BUG", st.Serials()).WithClock(fixedClock)
	f.defects = NewDefectServiceImpl(st, gen, DefectConfig{MaxAttempts: 3})
	return f
}

func (f *fixture) addUser(t *testing.T, name string, role domain.Role) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	u := &domain.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := f.store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func (f *fixture) createDefect(t *testing.T, title string, tags ...string) *domain.Defect {
	t.Helper()
	d, err := f.defects.Create(context.Background(), domain.NewDefect{
		Title:       title,
		Description: "Steps to reproduce are in the ticket",
		Severity:    domain.SeverityMedium,
		Tags:        tags,
	}, f.alice.ID)
	if err != nil {
		t.Fatalf("create defect: %v", err)
	}
	return d
}

func (f *fixture) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func tagNames(refs []domain.TagRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Name)
	}
	return out
}

type fixedSerials struct{ value string }

func (f fixedSerials) Next(context.Context) (string, error) { return f.value, nil }

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	var m promdto.Metric
	if err := vec.WithLabelValues(labels...).Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}
