package graphstore

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"newsgraph/backend/go/internal/models"
	"newsgraph/backend/go/internal/triple"
)

type edgeKey struct {
	from, edgeType, to string
}

type edge struct {
	id            string
	source, title string
}

// MemoryStore is an in-process Store with the same write semantics as Neo4jStore.
// It backs dry runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	nodes  map[string]struct{}
	edges  map[edgeKey]*edge
	nextID int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[string]struct{}),
		edges: make(map[edgeKey]*edge),
	}
}

// UpsertTriple merges nodes and edge, enforcing sector exclusivity.
func (m *MemoryStore) UpsertTriple(ctx context.Context, t models.Triple) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	edgeType, ok := triple.EdgeType(t.Predicate)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPredicate, t.Predicate)
	}
	subj, obj := triple.NormalizeEntity(t.Subject), triple.NormalizeEntity(t.Object)

	m.mu.Lock()
	defer m.mu.Unlock()

	if edgeType == triple.SectorEdgeType {
		for k := range m.edges {
			if k.from == subj && k.edgeType == edgeType && k.to != obj {
				delete(m.edges, k)
			}
		}
	}

	m.nodes[subj] = struct{}{}
	m.nodes[obj] = struct{}{}

	key := edgeKey{from: subj, edgeType: edgeType, to: obj}
	e, exists := m.edges[key]
	if !exists {
		m.nextID++
		e = &edge{id: strconv.Itoa(m.nextID)}
		m.edges[key] = e
	}
	e.source, e.title = t.Source, t.Title
	return e.id, nil
}

// Relations lists the outgoing edges of subject ordered by type then object.
func (m *MemoryStore) Relations(ctx context.Context, subject string) ([]*models.Relation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	subj := triple.NormalizeEntity(subject)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.Relation
	for k, e := range m.edges {
		if k.from != subj {
			continue
		}
		out = append(out, &models.Relation{Subject: k.from, Type: k.edgeType, Object: k.to, Source: e.source, Title: e.title})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Object < out[j].Object
	})
	return out, nil
}

// NodeCount returns the number of distinct entities.
func (m *MemoryStore) NodeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// EdgeCount returns the number of edges.
func (m *MemoryStore) EdgeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.edges)
}
