package selfplay

import (
	"craft/game"
	"craft/predict"
	"craft/replay"
	"craft/sched"
	"craft/searcher"

	"golang.org/x/exp/rand"
)

// versionCell publishes the current model identifier to a worker's
// sessions. Written by the worker between poll rounds, read by sessions at
// decision points; all on one logical thread, so no locking.
type versionCell struct {
	id string
}

func (c *versionCell) get() string   { return c.id }
func (c *versionCell) set(id string) { c.id = id }

// sessionContext is the state one worker shares with all of its sessions.
type sessionContext struct {
	episode  EpisodeParams
	queue    predict.Queue
	version  *versionCell
	replays  chan<- *replay.Replay
	draining bool
}

// sessionLoop is the body of one session coroutine: play a game, hand off
// the replay, start over in the same slot. It unwinds on executor shutdown
// or, when draining, at the next game boundary.
func sessionLoop(y *sched.Yield, ctx *sessionContext, seed uint64) {
	rng := rand.New(rand.NewSource(seed))
	for !ctx.draining {
		rep, err := playEpisode(y, ctx, rng)
		if err != nil {
			return // executor shutdown; the partial game is lost
		}
		ctx.replays <- rep
	}
}

// playEpisode runs one full game and builds its replay record. The search
// state is fresh per game; the RNG stream persists across games.
func playEpisode(y *sched.Yield, ctx *sessionContext, rng *rand.Rand) (*replay.Replay, error) {
	ep := ctx.episode
	state := ep.Rules.Initial(rng)
	search := searcher.New(ep.Search, ctx.queue, ep.Rules)

	// The version read at the first decision point tags the replay's
	// provenance, even if a hot-swap lands mid-game.
	name := ctx.version.get()

	var samples []replay.Sample
	for !state.Terminated() {
		networkID := ctx.version.get()
		policy, err := search.Search(y, state, networkID, rng)
		if err != nil {
			return nil, err
		}

		var action game.Move
		if state.Turn() < ep.StartGreedyTurn {
			action = searcher.SelectWeighted(policy, rng)
		} else {
			action = searcher.SelectGreedy(policy, rng)
		}

		samples = append(samples, replay.Sample{
			Action:     action,
			State:      state.Features(),
			MCTSPolicy: policy,
		})
		state = state.Play(action, rng)
		search.Advance(action)
	}

	return replay.New(name, samples, state.Features(), state.Reward()), nil
}
