package app

import (
	"context"

	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/platform/neo4jdb"
	"github.com/pathwise/pathwise-backend/internal/platform/openai"
	"github.com/pathwise/pathwise-backend/internal/platform/redisdb"
)

type Clients struct {
	Neo4j  *neo4jdb.Client
	Redis  *redisdb.Client
	OpenAI openai.Client
}

// wireClients treats every external client as optional: a missing or failing
// backend degrades the corresponding feature instead of blocking startup.
func wireClients(log *logger.Logger) Clients {
	log.Info("Wiring clients...")

	neo, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Warn("neo4j unavailable, graph reads fall back to relational edges", "error", err)
		neo = nil
	}

	rdb, err := redisdb.NewFromEnv(log)
	if err != nil {
		log.Warn("redis unavailable, path views are composed per request", "error", err)
		rdb = nil
	}

	oa, err := openai.NewClient(log)
	if err != nil {
		log.Warn("openai unavailable, lessons use the fallback template", "error", err)
		oa = nil
	}

	return Clients{Neo4j: neo, Redis: rdb, OpenAI: oa}
}

func (c *Clients) Close(ctx context.Context) {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Neo4j != nil {
		_ = c.Neo4j.Close(ctx)
	}
}
