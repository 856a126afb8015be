package searcher

import (
	"math"

	"craft/game"

	"golang.org/x/exp/rand"
)

type node struct {
	prior    float64
	visits   int
	total    float64 // accumulated value over all visits
	expanded bool
	moves    []game.Move
	children []*node // parallel to moves
}

// expand attaches one child per legal move, with priors taken from the
// network's policy head and renormalized over the legal set.
func (n *node) expand(legal []game.Move, policy []float32) {
	sum := 0.0
	priors := make([]float64, len(legal))
	for i, m := range legal {
		priors[i] = float64(policy[m])
		sum += priors[i]
	}
	n.moves = legal
	n.children = make([]*node, len(legal))
	for i := range legal {
		prior := priors[i]
		if sum > 0 {
			prior /= sum
		} else {
			prior = 1 / float64(len(legal))
		}
		n.children[i] = &node{prior: prior}
	}
	n.expanded = true
}

// selectChild picks the move maximizing the PUCT score
// Q + c * P * sqrt(N) / (1 + n).
func (n *node) selectChild(cPuct float64) (game.Move, *node) {
	sqrtN := math.Sqrt(float64(n.visits))
	best := -1
	bestScore := math.Inf(-1)
	for i, child := range n.children {
		q := 0.0
		if child.visits > 0 {
			q = child.total / float64(child.visits)
		}
		score := q + cPuct*child.prior*sqrtN/float64(1+child.visits)
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	if best < 0 {
		panic("searcher: selecting child of unexpanded node")
	}
	return n.moves[best], n.children[best]
}

// addNoise mixes symmetric Dirichlet noise into the priors to force root
// exploration during generation.
func (n *node) addNoise(alpha, epsilon float64, rng *rand.Rand) {
	if epsilon <= 0 || len(n.children) == 0 {
		return
	}
	noise := sampleDirichlet(alpha, len(n.children), rng)
	for i, child := range n.children {
		child.prior = (1-epsilon)*child.prior + epsilon*noise[i]
	}
}

// policy returns the visit-count distribution over the full action space.
func (n *node) policy(actionSpace int) []float32 {
	pi := make([]float32, actionSpace)
	total := 0
	for _, child := range n.children {
		total += child.visits
	}
	if total == 0 {
		return pi
	}
	for i, m := range n.moves {
		pi[m] = float32(n.children[i].visits) / float32(total)
	}
	return pi
}

// childFor returns the child reached by a move, or nil when the move was
// never expanded.
func (n *node) childFor(m game.Move) *node {
	if n == nil || !n.expanded {
		return nil
	}
	for i, move := range n.moves {
		if move == m {
			return n.children[i]
		}
	}
	return nil
}
