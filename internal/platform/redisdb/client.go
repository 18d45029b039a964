package redisdb

import (
	"context"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type Client struct {
	RDB *goredis.Client
	log *logger.Logger
}

// NewFromEnv returns (nil, nil) when REDIS_ADDR is unset; the path-view cache is
// optional and callers treat a nil client as "cache disabled".
func NewFromEnv(log *logger.Logger) (*Client, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &Client{RDB: rdb, log: log.With("client", "RedisDB")}, nil
}

func (c *Client) Available() bool {
	return c != nil && c.RDB != nil
}

func (c *Client) Close() error {
	if c == nil || c.RDB == nil {
		return nil
	}
	return c.RDB.Close()
}
