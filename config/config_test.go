package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("explicit values survive, gaps get defaults", func(t *testing.T) {
		path := writeConfig(t, `
workers: 2
batch_size: 32
simulations: 50
select_interval: 500ms
writer: evaluation
network: uniform
game:
  max_turns: 40
`)

		cfg, err := Load(path)

		require.NoError(t, err)
		require.Equal(t, 2, cfg.Workers)
		require.Equal(t, 32, cfg.BatchSize)
		require.Equal(t, 50, cfg.Simulations)
		require.Equal(t, "500ms", cfg.SelectInterval)
		require.Equal(t, "evaluation", cfg.Writer)
		require.Equal(t, 5, cfg.PollRounds, "Unset poll_rounds defaults to 5")
		require.Equal(t, "ucb1", cfg.Selector.Strategy)
		require.Equal(t, 32, cfg.ONNX.MaxBatch, "ONNX batch capacity follows batch_size")
		require.Equal(t, 40, cfg.Game.MaxTurns)
	})

	t.Run("REDIS_URL env overrides the file", func(t *testing.T) {
		path := writeConfig(t, `
redis_url: redis://filehost:6379
network: uniform
`)
		t.Setenv("REDIS_URL", "redis://envhost:6379")

		cfg, err := Load(path)

		require.NoError(t, err)
		require.Equal(t, "redis://envhost:6379", cfg.RedisURL)
	})

	t.Run("jsonl writer requires a path", func(t *testing.T) {
		path := writeConfig(t, `
writer: jsonl
network: uniform
`)

		_, err := Load(path)

		require.Error(t, err)
	})

	t.Run("unknown strategy is rejected", func(t *testing.T) {
		path := writeConfig(t, `
network: uniform
selector:
  strategy: thompson
`)

		_, err := Load(path)

		require.Error(t, err)
	})

	t.Run("bad duration is rejected", func(t *testing.T) {
		path := writeConfig(t, `
network: uniform
select_interval: soon
`)

		_, err := Load(path)

		require.Error(t, err)
	})
}

func TestParams(t *testing.T) {
	path := writeConfig(t, `
workers: 2
batch_size: 8
simulations: 25
epsilon: 0.25
select_interval: 1s
log_interval: 10s
network: uniform
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	params := cfg.Params(nil)

	require.Equal(t, 2, params.Workers)
	require.Equal(t, 8, params.BatchSize)
	require.Equal(t, 25, params.Episode.Search.Simulations)
	require.Equal(t, 0.25, params.Episode.Search.Epsilon)
	require.Equal(t, time.Second, params.SelectInterval)
	require.Equal(t, 10*time.Second, params.LogInterval)
}
