// Package config loads the process configuration: a YAML file for the
// simulation parameters plus environment variables (via an optional .env
// file) for credentials such as the Redis URL.
package config

import (
	"fmt"
	"os"
	"time"

	"craft/game"
	"craft/network"
	"craft/searcher"
	"craft/selfplay"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SelectorConfig picks and tunes the model-selection strategy.
type SelectorConfig struct {
	Strategy    string  `yaml:"strategy"` // ucb1 | optimistic
	Exploration float64 `yaml:"exploration"`
	Prior       float64 `yaml:"prior"`
}

type Config struct {
	Workers         int     `yaml:"workers"`
	BatchSize       int     `yaml:"batch_size"`
	Simulations     int     `yaml:"simulations"`
	CPuct           float64 `yaml:"c_puct"`
	Alpha           float64 `yaml:"alpha"`
	Epsilon         float64 `yaml:"epsilon"`
	StartGreedyTurn int     `yaml:"start_greedy_turn"`
	PollRounds      int     `yaml:"poll_rounds"`
	ReplayBuffer    int     `yaml:"replay_buffer"`
	DrainOnClose    bool    `yaml:"drain_on_close"`

	// Durations are strings in Go duration syntax, e.g. "2s".
	SelectInterval string `yaml:"select_interval"`
	LogInterval    string `yaml:"log_interval"`

	// Writer selects the persistence sink: "generation" stores full
	// replays in Redis, "evaluation" keeps only reward stats for the
	// bandit, "jsonl" appends replays to ReplayPath without stats, so
	// selection will starve unless something else feeds it.
	Writer        string `yaml:"writer"`
	ReplayPath    string `yaml:"replay_path"`
	PlaysPerWrite int    `yaml:"plays_per_write"`

	Selector SelectorConfig `yaml:"selector"`

	// RedisURL may be omitted in favor of the REDIS_URL environment
	// variable.
	RedisURL string `yaml:"redis_url"`
	ModelDir string `yaml:"model_dir"`

	// Network selects the inference backend: "onnx" or "uniform" (a stub
	// for smoke runs).
	Network string             `yaml:"network"`
	ONNX    network.ONNXConfig `yaml:"onnx"`

	Game game.CraftSetting `yaml:"game"`
}

// Load reads the YAML file, overlays environment variables, and fills
// defaults. A .env file next to the process is honored when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // optional; absence is not an error

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if url := os.Getenv("REDIS_URL"); url != "" {
		cfg.RedisURL = url
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 64
	}
	if c.Simulations <= 0 {
		c.Simulations = 100
	}
	if c.CPuct <= 0 {
		c.CPuct = 1.5
	}
	if c.Alpha <= 0 {
		c.Alpha = 0.3
	}
	if c.StartGreedyTurn <= 0 {
		c.StartGreedyTurn = 10
	}
	if c.PollRounds <= 0 {
		c.PollRounds = 5
	}
	if c.SelectInterval == "" {
		c.SelectInterval = "2s"
	}
	if c.LogInterval == "" {
		c.LogInterval = "5s"
	}
	if c.Writer == "" {
		c.Writer = "generation"
	}
	if c.PlaysPerWrite <= 0 {
		c.PlaysPerWrite = 16
	}
	if c.Selector.Strategy == "" {
		c.Selector.Strategy = "ucb1"
	}
	if c.Network == "" {
		c.Network = "onnx"
	}
	if c.ModelDir == "" {
		c.ModelDir = "models"
	}
	if c.ONNX.MaxBatch <= 0 {
		c.ONNX.MaxBatch = c.BatchSize
	}
	if c.ONNX.InputName == "" {
		c.ONNX.InputName = "features"
	}
	if c.ONNX.PolicyName == "" {
		c.ONNX.PolicyName = "policy"
	}
	if c.ONNX.ValueName == "" {
		c.ONNX.ValueName = "value"
	}
}

func (c *Config) validate() error {
	switch c.Writer {
	case "generation", "evaluation":
	case "jsonl":
		if c.ReplayPath == "" {
			return fmt.Errorf("config: jsonl writer requires replay_path")
		}
	default:
		return fmt.Errorf("config: unknown writer %q", c.Writer)
	}
	switch c.Selector.Strategy {
	case "ucb1", "optimistic":
	default:
		return fmt.Errorf("config: unknown selector strategy %q", c.Selector.Strategy)
	}
	switch c.Network {
	case "onnx", "uniform":
	default:
		return fmt.Errorf("config: unknown network backend %q", c.Network)
	}
	if c.ONNX.MaxBatch < c.BatchSize {
		return fmt.Errorf("config: onnx max_batch %d is below batch_size %d", c.ONNX.MaxBatch, c.BatchSize)
	}
	if _, err := time.ParseDuration(c.SelectInterval); err != nil {
		return fmt.Errorf("config: bad select_interval: %w", err)
	}
	if _, err := time.ParseDuration(c.LogInterval); err != nil {
		return fmt.Errorf("config: bad log_interval: %w", err)
	}
	return nil
}

// Params assembles the simulation parameters for the given rule set.
func (c *Config) Params(rules game.Rules) selfplay.Params {
	selectEvery, _ := time.ParseDuration(c.SelectInterval)
	logEvery, _ := time.ParseDuration(c.LogInterval)
	return selfplay.Params{
		Episode: selfplay.EpisodeParams{
			Rules: rules,
			Search: searcher.Params{
				Simulations: c.Simulations,
				CPuct:       c.CPuct,
				Alpha:       c.Alpha,
				Epsilon:     c.Epsilon,
			},
			StartGreedyTurn: c.StartGreedyTurn,
		},
		Workers:        c.Workers,
		BatchSize:      c.BatchSize,
		PollRounds:     c.PollRounds,
		SelectInterval: selectEvery,
		LogInterval:    logEvery,
		ReplayBuffer:   c.ReplayBuffer,
		DrainOnClose:   c.DrainOnClose,
	}
}
