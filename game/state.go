package game

import "golang.org/x/exp/rand"

// Move is an index into the rule set's action space.
type Move int

// State represents one position of a game. Implementations are immutable:
// Play returns a successor and leaves the receiver untouched, so search can
// hold references to earlier positions.
type State interface {
	// LegalMoves returns the moves playable from this state. Empty only on
	// terminated states.
	LegalMoves() []Move
	// Play applies a move and returns the successor state. Transitions may
	// be stochastic; rng is the session's private stream.
	Play(m Move, rng *rand.Rand) State
	// Terminated reports whether the game is over.
	Terminated() bool
	// Turn returns the number of moves played so far.
	Turn() int
	// Features encodes the state as the network input vector.
	Features() []float32
	// Reward returns the final scalar reward. Defined on terminated states.
	Reward() float32
}

// Rules builds initial states and fixes the tensor dimensions of a game.
type Rules interface {
	Initial(rng *rand.Rand) State
	// ActionSpace returns the size of the move-probability vector.
	ActionSpace() int
	// FeatureSize returns the length of State.Features.
	FeatureSize() int
}
