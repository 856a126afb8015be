// Package store persists replays and per-model reward statistics in Redis.
// The writer thread and the selection loop share one Client; go-redis
// serializes access through its internal connection pool, so no further
// locking is needed around it.
package store

import (
	"context"
	"fmt"
	"strconv"

	"craft/selector"

	"github.com/redis/go-redis/v9"
)

const (
	modelsKey  = "craft:models"
	replaysKey = "craft:replays"
)

func modelKey(name string) string {
	return "craft:model:" + name
}

// Client wraps the shared Redis connection pool.
type Client struct {
	rdb *redis.Client
}

// Dial connects and verifies the connection. url is a redis:// URL.
func Dial(ctx context.Context, url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// ModelStats reads the statistics of every published model. Membership of
// the model set is controlled by the learner when it publishes a new
// version; a published model with no games yet reports zero stats.
func (c *Client) ModelStats(ctx context.Context) ([]selector.ModelStats, error) {
	names, err := c.rdb.SMembers(ctx, modelsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	if len(names) == 0 {
		return nil, nil
	}

	pipe := c.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(names))
	for i, name := range names {
		cmds[i] = pipe.HGetAll(ctx, modelKey(name))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read model stats: %w", err)
	}

	stats := make([]selector.ModelStats, len(names))
	for i, name := range names {
		fields := cmds[i].Val()
		games, err := parseInt(fields["games"])
		if err != nil {
			return nil, fmt.Errorf("bad games count for %q: %w", name, err)
		}
		reward, err := parseFloat(fields["reward"])
		if err != nil {
			return nil, fmt.Errorf("bad reward sum for %q: %w", name, err)
		}
		stats[i] = selector.ModelStats{Name: name, Games: games, TotalReward: reward}
	}
	return stats, nil
}

// PublishModel registers a model version for selection. Exposed for tools
// and tests; in production the learner publishes.
func (c *Client) PublishModel(ctx context.Context, name string) error {
	if err := c.rdb.SAdd(ctx, modelsKey, name).Err(); err != nil {
		return fmt.Errorf("failed to publish model %q: %w", name, err)
	}
	return nil
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
