package selfplay

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"craft/game"
	"craft/network"
	"craft/predict"
	"craft/replay"
	"craft/sched"
	"craft/searcher"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// forcedRules is a stub game with a single legal move that terminates
// after a fixed number of turns with a fixed reward.
type forcedRules struct {
	turns  int
	reward float32
}

func (r forcedRules) Initial(rng *rand.Rand) game.State { return forcedState{rules: r} }
func (r forcedRules) ActionSpace() int                  { return 2 }
func (r forcedRules) FeatureSize() int                  { return 1 }

type forcedState struct {
	rules forcedRules
	turn  int
}

func (s forcedState) LegalMoves() []game.Move {
	if s.Terminated() {
		return nil
	}
	return []game.Move{0}
}

func (s forcedState) Play(m game.Move, rng *rand.Rand) game.State {
	s.turn++
	return s
}

func (s forcedState) Terminated() bool    { return s.turn >= s.rules.turns }
func (s forcedState) Turn() int           { return s.turn }
func (s forcedState) Features() []float32 { return []float32{float32(s.turn)} }
func (s forcedState) Reward() float32     { return s.rules.reward }

func stubParams(batchSize int) Params {
	return Params{
		Episode: EpisodeParams{
			Rules:           forcedRules{turns: 3, reward: 0.75},
			Search:          searcher.Params{Simulations: 4, CPuct: 1.5},
			StartGreedyTurn: 1,
		},
		Workers:    1,
		BatchSize:  batchSize,
		PollRounds: 5,
	}.withDefaults()
}

func TestWorkerProducesReplays(t *testing.T) {
	// One worker, one session slot, a stub network mapping every state to
	// a uniform policy and value 0.5: each finished game must yield one
	// replay with one sample per forced action and the stub reward.
	params := stubParams(1)
	models := make(chan ModelUpdate, 1)
	replays := make(chan *replay.Replay, 64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runWorker(workerContext{
			id:      0,
			params:  params,
			loader:  network.UniformLoader(0.5),
			models:  models,
			replays: replays,
		})
	}()

	models <- ModelUpdate{Name: "gen0001", Weights: nil}

	var rep *replay.Replay
	select {
	case rep = <-replays:
	case <-time.After(5 * time.Second):
		t.Fatal("worker produced no replay")
	}

	close(models)
	wg.Wait()

	require.Len(t, rep.Samples, 3, "The stub game forces exactly 3 actions")
	require.Equal(t, float32(0.75), rep.Reward)
	require.Equal(t, "gen0001", rep.Name)
	require.NotEmpty(t, rep.ID)
	for _, sample := range rep.Samples {
		require.Equal(t, game.Move(0), sample.Action, "Only one move is ever legal")
		require.Len(t, sample.MCTSPolicy, 2)
	}
}

func TestSessionsShareOneFlush(t *testing.T) {
	// Two sessions await in the same poll round; a single flush resolves
	// both, and neither observes the other's input in its own output.
	rules := forcedRules{turns: 1, reward: 0}
	p := predict.New(network.UniformLoader(0.5))
	require.NoError(t, p.LoadNetwork("m", nil))
	q := p.Queue()

	outputs := make([]network.Output, 2)
	errs := make([]error, 2)
	e := sched.New()
	for i := 0; i < 2; i++ {
		i := i
		e.Spawn(func(y *sched.Yield) {
			fut := q.Enqueue("m", []float32{float32(i + 1)})
			outputs[i], errs[i] = fut.Await(y)
		})
	}

	e.PollAll() // both sessions enqueue and suspend
	require.NoError(t, p.Flush(network.InferConfig{FeatureSize: rules.FeatureSize(), PolicySize: rules.ActionSpace()}))
	e.PollAll() // both sessions resume with their results

	require.Equal(t, 0, e.Live(), "One flush should unblock both sessions")
	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, float32(0.5), outputs[i].Value)
	}
}

func TestWorkerTerminatesOnClosedChannel(t *testing.T) {
	// Channel closed before any model arrives: the worker exits without
	// having run a single session.
	params := stubParams(2)
	models := make(chan ModelUpdate)
	replays := make(chan *replay.Replay, 8)

	done := make(chan struct{})
	go func() {
		defer close(done)
		runWorker(workerContext{
			params:  params,
			loader:  network.UniformLoader(0.5),
			models:  models,
			replays: replays,
		})
	}()

	close(models)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not terminate on channel close")
	}
	require.Empty(t, replays, "No session should have produced a replay")
}

func TestWorkerDrainOnClose(t *testing.T) {
	// With DrainOnClose set, closing the model channel lets in-flight
	// games finish instead of abandoning them.
	params := stubParams(2)
	params.DrainOnClose = true
	models := make(chan ModelUpdate, 1)
	replays := make(chan *replay.Replay, 256)

	done := make(chan struct{})
	go func() {
		defer close(done)
		runWorker(workerContext{
			params:  params,
			loader:  network.UniformLoader(0.5),
			models:  models,
			replays: replays,
		})
	}()

	models <- ModelUpdate{Name: "gen0001"}

	// Wait until both sessions are mid-stride, then close.
	select {
	case <-replays:
	case <-time.After(5 * time.Second):
		t.Fatal("worker produced no replay")
	}
	close(models)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not finish draining")
	}

	// Every replay that made it out is complete.
	close(replays)
	for rep := range replays {
		require.Len(t, rep.Samples, 3)
	}
}

type memorySink struct {
	mu      sync.Mutex
	replays int
	samples int
	flushed bool
}

func (s *memorySink) Write(r *replay.Replay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replays++
	s.samples += len(r.Samples)
	return nil
}

func (s *memorySink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushed = true
	return nil
}

type fixedStrategy struct {
	id string
}

func (f fixedStrategy) GetModel(ctx context.Context) (string, bool, error) {
	return f.id, true, nil
}

func TestRun(t *testing.T) {
	// Full pipeline smoke test: selection loop broadcasting a fixed model,
	// one worker generating games, writer counting them.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gen0001"), []byte("w"), 0644))

	params := stubParams(2)
	params.SelectInterval = 5 * time.Millisecond
	params.LogInterval = time.Minute

	sink := &memorySink{}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := Run(ctx, params, fixedStrategy{id: "gen0001"}, network.NewWeightsCache(dir), network.UniformLoader(0.5), sink)

	require.NoError(t, err, "Cancellation is a clean shutdown, not an error")
	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Greater(t, sink.replays, 0, "At least one game should complete in the window")
	require.Equal(t, sink.replays*3, sink.samples, "Every stub game has exactly 3 samples")
	require.True(t, sink.flushed, "Writer must flush on shutdown")
}
