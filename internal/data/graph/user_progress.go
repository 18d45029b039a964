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

// UpsertUserProgress projects HAS_PROGRESS edges for analytics queries. The
// relational store stays authoritative; this projection is best-effort.
func UpsertUserProgress(ctx context.Context, client *neo4jdb.Client, log *logger.Logger, userID uuid.UUID, rows []*domain.ConceptProgress) error {
	if !client.Available() || userID == uuid.Nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	relRows := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		if r == nil || r.UserID != userID || r.ConceptID == uuid.Nil {
			continue
		}
		relRows = append(relRows, map[string]any{
			"user_id":          r.UserID.String(),
			"concept_id":       r.ConceptID.String(),
			"status":           string(r.Status),
			"progress_percent": r.ProgressPercent,
			"time_spent":       int64(r.TimeSpentMinutes),
			"synced_at":        now,
		})
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	if res, err := session.Run(ctx, `CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`, nil); err != nil {
		if log != nil {
			log.Warn("neo4j schema init failed (continuing)", "error", err)
		}
	} else {
		_, _ = res.Consume(ctx)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if res, err := tx.Run(ctx, `
MERGE (u:User {id: $user_id})
SET u.synced_at = $synced_at
`, map[string]any{"user_id": userID.String(), "synced_at": now}); err != nil {
			return nil, err
		} else if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		if len(relRows) == 0 {
			return nil, nil
		}

		res, err := tx.Run(ctx, `
UNWIND $rows AS r
MERGE (u:User {id: r.user_id})
MERGE (c:Concept {id: r.concept_id})
MERGE (u)-[s:HAS_PROGRESS]->(c)
SET s.status = r.status,
    s.progress_percent = r.progress_percent,
    s.time_spent = r.time_spent,
    s.synced_at = r.synced_at
`, map[string]any{"rows": relRows})
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
