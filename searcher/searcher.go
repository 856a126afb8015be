// Package searcher implements the move-probability search driven by the
// batching prediction queue. Each session owns one Searcher per game; the
// search tree is kept across moves within that game and never across games.
//
// Every leaf evaluation is an enqueue-and-await round-trip against the
// queue, so a search suspends as many times as it expands nodes. Batching
// across the worker's sessions happens in the predictor, not here.
package searcher

import (
	"craft/game"
	"craft/network"
	"craft/predict"
	"craft/sched"

	"golang.org/x/exp/rand"
)

// Params are the search hyperparameters.
type Params struct {
	// Simulations is the per-move simulation budget.
	Simulations int
	// CPuct scales the exploration term of the selection rule.
	CPuct float64
	// Alpha is the Dirichlet concentration of the root noise.
	Alpha float64
	// Epsilon is the mixing weight of the root noise. Zero disables it.
	Epsilon float64
}

type Searcher struct {
	params Params
	queue  predict.Queue
	rules  game.Rules
	root   *node
}

func New(params Params, queue predict.Queue, rules game.Rules) *Searcher {
	return &Searcher{
		params: params,
		queue:  queue,
		rules:  rules,
		root:   &node{},
	}
}

// Search runs the simulation budget from the given state and returns the
// visit-count move distribution over the action space. networkID names the
// model version serving this decision point.
func (s *Searcher) Search(y *sched.Yield, state game.State, networkID string, rng *rand.Rand) ([]float32, error) {
	if s.root == nil {
		s.root = &node{}
	}
	if !s.root.expanded {
		out, err := s.evaluate(y, state, networkID)
		if err != nil {
			return nil, err
		}
		s.root.expand(state.LegalMoves(), out.Policy)
	}
	s.root.addNoise(s.params.Alpha, s.params.Epsilon, rng)

	for i := 0; i < s.params.Simulations; i++ {
		if err := s.simulate(y, state, networkID, rng); err != nil {
			return nil, err
		}
	}
	return s.root.policy(s.rules.ActionSpace()), nil
}

// Advance moves the root to the child reached by the played move, keeping
// the subtree for the next decision point.
func (s *Searcher) Advance(m game.Move) {
	s.root = s.root.childFor(m)
	if s.root == nil {
		s.root = &node{}
	}
}

func (s *Searcher) simulate(y *sched.Yield, state game.State, networkID string, rng *rand.Rand) error {
	n := s.root
	path := []*node{n}
	for n.expanded && !state.Terminated() {
		move, child := n.selectChild(s.params.CPuct)
		state = state.Play(move, rng)
		n = child
		path = append(path, n)
	}

	var value float64
	if state.Terminated() {
		value = float64(state.Reward())
	} else {
		out, err := s.evaluate(y, state, networkID)
		if err != nil {
			return err
		}
		n.expand(state.LegalMoves(), out.Policy)
		value = float64(out.Value)
	}

	for _, visited := range path {
		visited.visits++
		visited.total += value
	}
	return nil
}

// evaluate is the suspension point: enqueue the state and await the batch
// flush that resolves it.
func (s *Searcher) evaluate(y *sched.Yield, state game.State, networkID string) (network.Output, error) {
	fut := s.queue.Enqueue(networkID, state.Features())
	return fut.Await(y)
}
