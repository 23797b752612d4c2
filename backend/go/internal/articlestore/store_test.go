//go:build cgo

package articlestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"newsgraph/backend/go/internal/config"
	"newsgraph/backend/go/internal/database/sqldb"
	"newsgraph/backend/go/internal/models"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := sqldb.Open(&config.SQLConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "news.db"), MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close(db) })

	s := NewGormStore(db)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return s
}

func TestGormStore_InsertAndPrune(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()

	fresh := &models.Article{Title: "fresh", Link: "https://example.com/fresh", Date: now, Source: "test"}
	stale := &models.Article{Title: "stale", Link: "https://example.com/stale", Date: now.Add(-48 * time.Hour), Source: "test"}
	for _, a := range []*models.Article{fresh, stale} {
		if err := s.Insert(ctx, a); err != nil {
			t.Fatalf("Insert(%s) error = %v", a.Title, err)
		}
	}
	// The same record can be inserted again; the table has no uniqueness on link.
	if err := s.Insert(ctx, fresh); err != nil {
		t.Fatalf("second Insert error = %v", err)
	}

	n, err := s.Count(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Count() = %d, %v; want 3", n, err)
	}

	deleted, err := s.Prune(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune() deleted %d rows, want 1", deleted)
	}
	if n, _ := s.Count(ctx); n != 2 {
		t.Errorf("expected 2 rows after prune, got %d", n)
	}
}

func TestGormStore_PruneByIngestionTime(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// A future-dated article is still removed once the ingestion time is old.
	if err := s.Insert(ctx, &models.Article{Title: "t", Link: "l", Date: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	deleted, err := s.Prune(ctx, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected ingestion-time prune to delete 1 row, got %d", deleted)
	}
}
