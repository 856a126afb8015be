package searcher

import (
	"craft/game"

	"golang.org/x/exp/rand"
)

// SelectWeighted samples a move proportionally to the search policy. The
// policy is zero on unexplored moves, so only visited moves can be drawn.
func SelectWeighted(policy []float32, rng *rand.Rand) game.Move {
	sampled := rng.Float32()
	cumulative := float32(0)
	last := game.Move(0)
	for m, prob := range policy {
		if prob <= 0 {
			continue
		}
		last = game.Move(m)
		cumulative += prob
		if sampled < cumulative {
			return game.Move(m)
		}
	}
	return last // Fallback in case of rounding errors
}

// SelectGreedy returns the most-visited move, breaking ties uniformly at
// random with the session's stream.
func SelectGreedy(policy []float32, rng *rand.Rand) game.Move {
	best := game.Move(0)
	bestProb := float32(-1)
	ties := 0
	for m, prob := range policy {
		switch {
		case prob > bestProb:
			bestProb = prob
			best = game.Move(m)
			ties = 1
		case prob == bestProb:
			ties++
			if rng.Intn(ties) == 0 {
				best = game.Move(m)
			}
		}
	}
	return best
}
