// Package selector decides which model version the self-play workers
// should be generating with, treating the choice as a bandit over the
// reward statistics accumulated by past games.
package selector

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// ModelStats aggregates game outcomes per model version.
type ModelStats struct {
	Name        string
	Games       int
	TotalReward float64
}

// StatsSource reads the accumulated per-model statistics.
type StatsSource interface {
	ModelStats(ctx context.Context) ([]ModelStats, error)
}

// Strategy picks the best currently-deployable model. ok=false means no
// model is ready yet, a transient condition the caller logs and retries.
// An error is a hard failure that terminates the simulation.
type Strategy interface {
	GetModel(ctx context.Context) (id string, ok bool, err error)
}

// UCB1 balances exploiting the best-scoring model against trying models
// with few recorded games.
type UCB1 struct {
	source      StatsSource
	exploration float64 // the c^2 of the confidence term
}

func NewUCB1(source StatsSource, exploration float64) *UCB1 {
	if exploration <= 0 {
		exploration = 2.0
	}
	return &UCB1{source: source, exploration: exploration}
}

func (u *UCB1) GetModel(ctx context.Context) (string, bool, error) {
	stats, err := u.source.ModelStats(ctx)
	if err != nil {
		return "", false, fmt.Errorf("read model stats: %w", err)
	}
	if len(stats) == 0 {
		return "", false, nil
	}
	sortStats(stats)

	// An unplayed model has an unbounded confidence bound: play it first.
	total := 0
	for _, s := range stats {
		if s.Games == 0 {
			return s.Name, true, nil
		}
		total += s.Games
	}

	numerator := u.exploration * math.Log(float64(total))
	best := stats[0]
	bestScore := math.Inf(-1)
	for _, s := range stats {
		n := float64(s.Games)
		score := s.TotalReward/n + math.Sqrt(numerator/n)
		if score > bestScore {
			bestScore = score
			best = s
		}
	}
	return best.Name, true, nil
}

// Optimistic scores each model by an optimistic initial estimate: a prior
// reward mass is granted up front, so barely-played models look good until
// the data says otherwise.
type Optimistic struct {
	source StatsSource
	prior  float64
}

func NewOptimistic(source StatsSource, prior float64) *Optimistic {
	if prior <= 0 {
		prior = 1.0
	}
	return &Optimistic{source: source, prior: prior}
}

func (o *Optimistic) GetModel(ctx context.Context) (string, bool, error) {
	stats, err := o.source.ModelStats(ctx)
	if err != nil {
		return "", false, fmt.Errorf("read model stats: %w", err)
	}
	if len(stats) == 0 {
		return "", false, nil
	}
	sortStats(stats)

	best := stats[0]
	bestScore := math.Inf(-1)
	for _, s := range stats {
		score := (s.TotalReward + o.prior) / (float64(s.Games) + 1)
		if score > bestScore {
			bestScore = score
			best = s
		}
	}
	return best.Name, true, nil
}

// sortStats makes selection deterministic under equal scores regardless of
// the order the source returns.
func sortStats(stats []ModelStats) {
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
}
