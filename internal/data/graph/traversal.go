package graph

import (
	"context"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/pathwise/pathwise-backend/internal/platform/neo4jdb"
)

// NextCandidate is a concept not yet completed whose prerequisite set intersects
// the user's completed set.
type NextCandidate struct {
	ConceptID    uuid.UUID
	PrereqsMet   int
	PrereqsTotal int
}

func neighborIDs(ctx context.Context, client *neo4jdb.Client, cypher string, params map[string]any) ([]uuid.UUID, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	rows, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		var ids []uuid.UUID
		for res.Next(ctx) {
			raw, _ := res.Record().Get("id")
			s, ok := raw.(string)
			if !ok {
				continue
			}
			id, err := uuid.Parse(s)
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		return ids, res.Err()
	})
	if err != nil {
		return nil, err
	}
	ids, _ := rows.([]uuid.UUID)
	return ids, nil
}

// PrerequisiteIDsOf returns the concepts the given concept depends on.
func PrerequisiteIDsOf(ctx context.Context, client *neo4jdb.Client, conceptID uuid.UUID) ([]uuid.UUID, error) {
	if !client.Available() || conceptID == uuid.Nil {
		return nil, nil
	}
	return neighborIDs(ctx, client, `
MATCH (c:Concept {id: $id})-[:PREREQUISITE]->(p:Concept)
RETURN DISTINCT p.id AS id
`, map[string]any{"id": conceptID.String()})
}

// DependentIDsOf returns the concepts that depend on the given concept.
func DependentIDsOf(ctx context.Context, client *neo4jdb.Client, conceptID uuid.UUID) ([]uuid.UUID, error) {
	if !client.Available() || conceptID == uuid.Nil {
		return nil, nil
	}
	return neighborIDs(ctx, client, `
MATCH (d:Concept)-[:PREREQUISITE]->(c:Concept {id: $id})
RETURN DISTINCT d.id AS id
`, map[string]any{"id": conceptID.String()})
}

func RelatedIDsOf(ctx context.Context, client *neo4jdb.Client, conceptID uuid.UUID) ([]uuid.UUID, error) {
	if !client.Available() || conceptID == uuid.Nil {
		return nil, nil
	}
	return neighborIDs(ctx, client, `
MATCH (c:Concept {id: $id})-[:RELATED_TO]-(r:Concept)
RETURN DISTINCT r.id AS id
`, map[string]any{"id": conceptID.String()})
}

// FindNextCandidates returns concepts outside the completed set that have at
// least one prerequisite inside it, with met/total prerequisite counts.
func FindNextCandidates(ctx context.Context, client *neo4jdb.Client, completed []uuid.UUID) ([]NextCandidate, error) {
	if !client.Available() || len(completed) == 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	done := make([]string, 0, len(completed))
	for _, id := range completed {
		if id != uuid.Nil {
			done = append(done, id.String())
		}
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	rows, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (cand:Concept)-[:PREREQUISITE]->(done:Concept)
WHERE done.id IN $completed AND NOT cand.id IN $completed
WITH DISTINCT cand
MATCH (cand)-[:PREREQUISITE]->(pre:Concept)
WITH cand, collect(DISTINCT pre.id) AS pres
RETURN cand.id AS id,
       size([p IN pres WHERE p IN $completed]) AS met,
       size(pres) AS total
`, map[string]any{"completed": done})
		if err != nil {
			return nil, err
		}
		var out []NextCandidate
		for res.Next(ctx) {
			rec := res.Record()
			rawID, _ := rec.Get("id")
			s, ok := rawID.(string)
			if !ok {
				continue
			}
			id, err := uuid.Parse(s)
			if err != nil {
				continue
			}
			met, _ := rec.Get("met")
			total, _ := rec.Get("total")
			out = append(out, NextCandidate{
				ConceptID:    id,
				PrereqsMet:   int(asInt64(met)),
				PrereqsTotal: int(asInt64(total)),
			})
		}
		return out, res.Err()
	})
	if err != nil {
		return nil, err
	}
	out, _ := rows.([]NextCandidate)
	return out, nil
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
