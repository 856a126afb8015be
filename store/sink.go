package store

import (
	"context"
	"fmt"

	"craft/replay"

	"github.com/redis/go-redis/v9"
)

// GenerationSink persists full replays for training and bumps the reward
// statistics that feed model selection. Records are buffered and written
// playsPerWrite at a time to amortize round-trips.
type GenerationSink struct {
	c     *Client
	ctx   context.Context
	batch int
	buf   []*replay.Replay
}

func (c *Client) NewGenerationSink(ctx context.Context, playsPerWrite int) *GenerationSink {
	if playsPerWrite <= 0 {
		playsPerWrite = 1
	}
	// Shutdown cancels ctx before the writer drains its channel; the final
	// flush still has to land, so writes ignore cancellation.
	return &GenerationSink{c: c, ctx: context.WithoutCancel(ctx), batch: playsPerWrite}
}

func (s *GenerationSink) Write(r *replay.Replay) error {
	s.buf = append(s.buf, r)
	if len(s.buf) < s.batch {
		return nil
	}
	return s.Flush()
}

func (s *GenerationSink) Flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	pipe := s.c.rdb.Pipeline()
	for _, r := range s.buf {
		data, err := replay.Encode(r)
		if err != nil {
			return fmt.Errorf("failed to encode replay %s: %w", r.ID, err)
		}
		pipe.RPush(s.ctx, replaysKey, data)
		bumpStats(s.ctx, pipe, r)
	}
	if _, err := pipe.Exec(s.ctx); err != nil {
		return fmt.Errorf("failed to store replays: %w", err)
	}
	s.buf = s.buf[:0]
	return nil
}

// EvaluationSink discards replay payloads and keeps only the reward
// statistics: evaluation games exist to rank model versions, not to be
// trained on.
type EvaluationSink struct {
	c     *Client
	ctx   context.Context
	batch int
	buf   []*replay.Replay
}

func (c *Client) NewEvaluationSink(ctx context.Context, playsPerWrite int) *EvaluationSink {
	if playsPerWrite <= 0 {
		playsPerWrite = 1
	}
	return &EvaluationSink{c: c, ctx: context.WithoutCancel(ctx), batch: playsPerWrite}
}

func (s *EvaluationSink) Write(r *replay.Replay) error {
	s.buf = append(s.buf, r)
	if len(s.buf) < s.batch {
		return nil
	}
	return s.Flush()
}

func (s *EvaluationSink) Flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	pipe := s.c.rdb.Pipeline()
	for _, r := range s.buf {
		bumpStats(s.ctx, pipe, r)
	}
	if _, err := pipe.Exec(s.ctx); err != nil {
		return fmt.Errorf("failed to store evaluation stats: %w", err)
	}
	s.buf = s.buf[:0]
	return nil
}

func bumpStats(ctx context.Context, pipe redis.Pipeliner, r *replay.Replay) {
	key := modelKey(r.Name)
	pipe.HIncrBy(ctx, key, "games", 1)
	pipe.HIncrByFloat(ctx, key, "reward", float64(r.Reward))
}
