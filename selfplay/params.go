// Package selfplay runs the simulation: worker goroutines driving pools of
// cooperatively-scheduled game sessions against a batching predictor, a
// selection loop broadcasting model versions to the workers, and a writer
// collecting the finished replays.
package selfplay

import (
	"fmt"
	"time"

	"craft/game"
	"craft/network"
	"craft/searcher"
)

// EpisodeParams shape a single self-play game.
type EpisodeParams struct {
	Rules       game.Rules
	Search      searcher.Params
	// StartGreedyTurn is the turn from which moves are picked greedily
	// instead of sampled from the search policy.
	StartGreedyTurn int
}

// Params configure the whole simulation.
type Params struct {
	Episode EpisodeParams
	// Workers is the number of worker goroutines, each with its own
	// predictor and session pool.
	Workers int
	// BatchSize is the number of concurrent sessions per worker, which is
	// also the upper bound on a single inference batch.
	BatchSize int
	// PollRounds is the number of poll-then-flush rounds a worker runs per
	// model-sync cycle.
	PollRounds int
	// SelectInterval is the pause between selection-loop iterations.
	SelectInterval time.Duration
	// LogInterval is the writer's throughput reporting interval.
	LogInterval time.Duration
	// ReplayBuffer is the capacity of the writer channel. It is sized
	// generously so a session handing off a replay never stalls its
	// worker's poll loop.
	ReplayBuffer int
	// DrainOnClose lets in-flight games finish when the model channel
	// closes instead of abandoning them mid-game.
	DrainOnClose bool
}

// InferConfig derives the tensor dimensions from the rule set.
func (p Params) InferConfig() network.InferConfig {
	return network.InferConfig{
		FeatureSize: p.Episode.Rules.FeatureSize(),
		PolicySize:  p.Episode.Rules.ActionSpace(),
	}
}

func (p Params) validate() error {
	if p.Episode.Rules == nil {
		return fmt.Errorf("selfplay: rules are required")
	}
	if p.Workers <= 0 {
		return fmt.Errorf("selfplay: workers must be positive, got %d", p.Workers)
	}
	if p.BatchSize <= 0 {
		return fmt.Errorf("selfplay: batch size must be positive, got %d", p.BatchSize)
	}
	if p.Episode.Search.Simulations <= 0 {
		return fmt.Errorf("selfplay: simulation budget must be positive, got %d", p.Episode.Search.Simulations)
	}
	return nil
}

// withDefaults fills the tunables the caller left zero.
func (p Params) withDefaults() Params {
	if p.PollRounds <= 0 {
		p.PollRounds = 5
	}
	if p.SelectInterval <= 0 {
		p.SelectInterval = 2 * time.Second
	}
	if p.LogInterval <= 0 {
		p.LogInterval = 5 * time.Second
	}
	if p.ReplayBuffer <= 0 {
		p.ReplayBuffer = 1024
	}
	return p
}
