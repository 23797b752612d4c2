// Package graphstore maps validated triples onto idempotent property-graph writes.
package graphstore

import (
	"context"
	"errors"

	"newsgraph/backend/go/internal/models"
)

// ErrUnsupportedPredicate is returned when a triple's predicate has no edge type.
// The validator normally prevents this.
var ErrUnsupportedPredicate = errors.New("unsupported predicate")

// Store is the graph write boundary.
type Store interface {
	// UpsertTriple merges both entity nodes and the typed edge between them in one
	// write transaction and overwrites the edge provenance. It returns the edge ID.
	UpsertTriple(ctx context.Context, t models.Triple) (string, error)
	// Relations lists the current outgoing edges of an entity.
	Relations(ctx context.Context, subject string) ([]*models.Relation, error)
}
