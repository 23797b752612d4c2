package graphstore

import (
	"context"
	"fmt"

	"newsgraph/backend/go/internal/database/neo4j"
	"newsgraph/backend/go/internal/models"
	"newsgraph/backend/go/internal/triple"

	driver "github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const dropOtherSectorCypher = `
MATCH (s:Entity {name: $subj})-[r:` + triple.SectorEdgeType + `]->(o:Entity)
WHERE o.name <> $obj
DELETE r`

// Edge labels cannot be parameterized in Cypher. The label comes from the closed
// vocabulary in package triple, never from model output.
const mergeTripleCypher = `
MERGE (s:Entity {name: $subj})
MERGE (o:Entity {name: $obj})
MERGE (s)-[r:%s]->(o)
SET r.source = $source, r.title = $title
RETURN elementId(r) AS rel_id`

const relationsCypher = `
MATCH (s:Entity {name: $subj})-[r]->(o:Entity)
RETURN s.name AS subject, type(r) AS type, o.name AS object, r.source AS source, r.title AS title
ORDER BY type, object`

// Neo4jStore is a Store backed by Neo4j.
type Neo4jStore struct {
	client *neo4j.Neo4jClient
}

// NewNeo4jStore creates a new Neo4jStore.
func NewNeo4jStore(client *neo4j.Neo4jClient) *Neo4jStore {
	return &Neo4jStore{client: client}
}

// EnsureSchema creates the uniqueness constraint that makes concurrent MERGEs on
// the same entity name safe across processes.
func (s *Neo4jStore) EnsureSchema(ctx context.Context) error {
	_, err := s.client.ExecuteWrite(ctx, func(tx driver.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, "CREATE CONSTRAINT entity_name IF NOT EXISTS FOR (e:Entity) REQUIRE e.name IS UNIQUE", nil)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to create entity constraint: %w", err)
	}
	return nil
}

// UpsertTriple writes one triple in a single transaction.
func (s *Neo4jStore) UpsertTriple(ctx context.Context, t models.Triple) (string, error) {
	edgeType, ok := triple.EdgeType(t.Predicate)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPredicate, t.Predicate)
	}
	params := map[string]any{
		"subj":   triple.NormalizeEntity(t.Subject),
		"obj":    triple.NormalizeEntity(t.Object),
		"source": t.Source,
		"title":  t.Title,
	}

	result, err := s.client.ExecuteWrite(ctx, func(tx driver.ManagedTransaction) (any, error) {
		if edgeType == triple.SectorEdgeType {
			if _, err := tx.Run(ctx, dropOtherSectorCypher, params); err != nil {
				return nil, err
			}
		}
		res, err := tx.Run(ctx, fmt.Sprintf(mergeTripleCypher, edgeType), params)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return "", nil
		}
		id, _, err := driver.GetRecordValue[string](res.Record(), "rel_id")
		if err != nil {
			return nil, err
		}
		return id, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to upsert triple into neo4j: %w", err)
	}
	id, _ := result.(string)
	return id, nil
}

// Relations retrieves the outgoing edges of subject.
func (s *Neo4jStore) Relations(ctx context.Context, subject string) ([]*models.Relation, error) {
	result, err := s.client.ExecuteRead(ctx, func(tx driver.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, relationsCypher, map[string]any{"subj": triple.NormalizeEntity(subject)})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}

		relations := make([]*models.Relation, 0, len(records))
		for _, record := range records {
			rel := &models.Relation{}
			rel.Subject, _, _ = driver.GetRecordValue[string](record, "subject")
			rel.Type, _, _ = driver.GetRecordValue[string](record, "type")
			rel.Object, _, _ = driver.GetRecordValue[string](record, "object")
			rel.Source, _, _ = driver.GetRecordValue[string](record, "source")
			rel.Title, _, _ = driver.GetRecordValue[string](record, "title")
			relations = append(relations, rel)
		}
		return relations, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get relations from neo4j: %w", err)
	}
	return result.([]*models.Relation), nil
}
