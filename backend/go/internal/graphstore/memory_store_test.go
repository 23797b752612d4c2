package graphstore

import (
	"context"
	"errors"
	"testing"

	"newsgraph/backend/go/internal/models"
)

func TestMemoryStore_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	tr := models.Triple{Subject: "Apple", Predicate: "acquired", Object: "Beats Electronics", Source: "l1", Title: "t1"}

	id1, err := s.UpsertTriple(ctx, tr)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	tr.Source, tr.Title = "l2", "t2"
	id2, err := s.UpsertTriple(ctx, tr)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if id1 != id2 {
		t.Errorf("expected same edge id, got %q and %q", id1, id2)
	}
	if s.EdgeCount() != 1 || s.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes and 1 edge, got %d nodes %d edges", s.NodeCount(), s.EdgeCount())
	}
	rels, _ := s.Relations(ctx, "apple")
	if len(rels) != 1 || rels[0].Source != "l2" || rels[0].Title != "t2" {
		t.Errorf("provenance should be overwritten, got %+v", rels)
	}
}

func TestMemoryStore_CaseInsensitiveNodes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, _ = s.UpsertTriple(ctx, models.Triple{Subject: "Apple", Predicate: "acquired", Object: "Beats"})
	_, _ = s.UpsertTriple(ctx, models.Triple{Subject: " APPLE ", Predicate: "ACQUIRED", Object: "beats"})

	if s.NodeCount() != 2 || s.EdgeCount() != 1 {
		t.Errorf("expected differently-cased mentions to share nodes, got %d nodes %d edges", s.NodeCount(), s.EdgeCount())
	}
}

func TestMemoryStore_SectorExclusivity(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, _ = s.UpsertTriple(ctx, models.Triple{Subject: "X", Predicate: "operates_in_sector", Object: "Z"})
	_, _ = s.UpsertTriple(ctx, models.Triple{Subject: "X", Predicate: "acquired", Object: "W"})
	_, _ = s.UpsertTriple(ctx, models.Triple{Subject: "X", Predicate: "operates_in_sector", Object: "Y"})
	// Re-asserting the current sector must not remove it.
	_, _ = s.UpsertTriple(ctx, models.Triple{Subject: "X", Predicate: "operates_in_sector", Object: "y"})

	rels, err := s.Relations(ctx, "x")
	if err != nil {
		t.Fatalf("Relations() error = %v", err)
	}
	var sectors []string
	for _, r := range rels {
		if r.Type == "OPERATES_IN_SECTOR" {
			sectors = append(sectors, r.Object)
		}
	}
	if len(sectors) != 1 || sectors[0] != "y" {
		t.Errorf("expected exactly one sector edge to y, got %v", sectors)
	}
	if len(rels) != 2 {
		t.Errorf("non-sector edges must survive, got %+v", rels)
	}
}

func TestMemoryStore_SectorExclusivityIsPerSubject(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, _ = s.UpsertTriple(ctx, models.Triple{Subject: "A", Predicate: "operates_in_sector", Object: "Banking"})
	_, _ = s.UpsertTriple(ctx, models.Triple{Subject: "B", Predicate: "operates_in_sector", Object: "Telecom"})

	if s.EdgeCount() != 2 {
		t.Errorf("sector edges of other subjects must not be touched, got %d edges", s.EdgeCount())
	}
}

func TestMemoryStore_UnsupportedPredicate(t *testing.T) {
	_, err := NewMemoryStore().UpsertTriple(context.Background(), models.Triple{Subject: "a", Predicate: "likes", Object: "b"})
	if !errors.Is(err, ErrUnsupportedPredicate) {
		t.Errorf("expected ErrUnsupportedPredicate, got %v", err)
	}
}
