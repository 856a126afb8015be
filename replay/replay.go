// Package replay defines the training records produced by completed
// self-play games.
package replay

import (
	"craft/game"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// Sample is one decision point of a game: the state the agent saw, the
// move distribution its search produced, and the action it took. The
// action is not needed for training but makes the logs readable.
type Sample struct {
	Action     game.Move `json:"action"`
	State      []float32 `json:"state"`
	MCTSPolicy []float32 `json:"mcts_policy"`
}

// Replay is the persisted output of one completed game, tagged with the
// model version that played it. Immutable once created; ownership moves
// over the writer channel.
type Replay struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Samples   []Sample  `json:"samples"`
	LastState []float32 `json:"last_state"`
	Reward    float32   `json:"reward"`
}

// New assigns a fresh record identifier.
func New(name string, samples []Sample, lastState []float32, reward float32) *Replay {
	return &Replay{
		ID:        uuid.NewString(),
		Name:      name,
		Samples:   samples,
		LastState: lastState,
		Reward:    reward,
	}
}

// Encode serializes a replay for persistence.
func Encode(r *Replay) ([]byte, error) {
	return sonic.Marshal(r)
}

// Decode is the inverse of Encode.
func Decode(data []byte) (*Replay, error) {
	var r Replay
	if err := sonic.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
