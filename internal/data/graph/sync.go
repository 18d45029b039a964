package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/platform/neo4jdb"
)

// The graph store is a projection of the relational rows: every writer here is
// an upsert keyed on stable ids, so the whole projection can be rebuilt from
// scratch at any time.

func UpsertConceptGraph(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, concepts []*domain.Concept, edges []*domain.ConceptEdge) error {
	if !client.Available() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)

	nodes := make([]map[string]any, 0, len(concepts))
	for _, c := range concepts {
		if c == nil || c.ID == uuid.Nil {
			continue
		}
		nodes = append(nodes, map[string]any{
			"id":         c.ID.String(),
			"slug":       c.Slug,
			"name":       c.Name,
			"category":   c.Category,
			"domain":     c.Domain,
			"difficulty": string(c.Difficulty),
			"usage":      int64(c.UsageFrequency),
			"synced_at":  now,
		})
	}

	byKind := map[domain.EdgeKind][]map[string]any{}
	for _, e := range edges {
		if e == nil || e.FromConceptID == uuid.Nil || e.ToConceptID == uuid.Nil || !domain.ValidEdgeKind(e.Kind) {
			continue
		}
		byKind[e.Kind] = append(byKind[e.Kind], map[string]any{
			"from_id":   e.FromConceptID.String(),
			"to_id":     e.ToConceptID.String(),
			"strength":  e.Strength,
			"synced_at": now,
		})
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	// Best-effort schema init; may fail for restricted users.
	if res, err := session.Run(ctx, `CREATE CONSTRAINT concept_id_unique IF NOT EXISTS FOR (c:Concept) REQUIRE c.id IS UNIQUE`, nil); err != nil {
		if log != nil {
			log.Warn("neo4j schema init failed (continuing)", "error", err)
		}
	} else {
		_, _ = res.Consume(ctx)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if len(nodes) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $nodes AS n
MERGE (c:Concept {id: n.id})
SET c += n
`, map[string]any{"nodes": nodes})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}

		for kind, rels := range byKind {
			if len(rels) == 0 {
				continue
			}
			res, err := tx.Run(ctx, `
UNWIND $rels AS r
MATCH (a:Concept {id: r.from_id})
MATCH (b:Concept {id: r.to_id})
MERGE (a)-[e:`+string(kind)+`]->(b)
SET e.strength = r.strength,
    e.synced_at = r.synced_at
`, map[string]any{"rels": rels})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

func UpsertPathMembership(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, path *domain.LearningPath, members []*domain.LearningPathConcept) error {
	if !client.Available() {
		return nil
	}
	if path == nil || path.ID == uuid.Nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	rows := make([]map[string]any, 0, len(members))
	for _, m := range members {
		if m == nil || m.ConceptID == uuid.Nil {
			continue
		}
		rows = append(rows, map[string]any{
			"path_id":          path.ID.String(),
			"concept_id":       m.ConceptID.String(),
			"sequence_order":   int64(m.SequenceOrder),
			"required_mastery": m.RequiredMastery,
			"synced_at":        now,
		})
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if res, err := tx.Run(ctx, `
MERGE (p:LearningPath {id: $path_id})
SET p.name = $name,
    p.category = $category,
    p.difficulty = $difficulty,
    p.synced_at = $synced_at
`, map[string]any{
			"path_id":    path.ID.String(),
			"name":       path.Name,
			"category":   path.Category,
			"difficulty": string(path.Difficulty),
			"synced_at":  now,
		}); err != nil {
			return nil, err
		} else if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		if len(rows) == 0 {
			return nil, nil
		}

		res, err := tx.Run(ctx, `
UNWIND $rows AS r
MATCH (p:LearningPath {id: r.path_id})
MERGE (c:Concept {id: r.concept_id})
MERGE (p)-[e:CONTAINS]->(c)
SET e.sequence_order = r.sequence_order,
    e.required_mastery = r.required_mastery,
    e.synced_at = r.synced_at
`, map[string]any{"rows": rows})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
