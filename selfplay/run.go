package selfplay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"craft/network"
	"craft/replay"
	"craft/selector"
	"craft/writer"

	"github.com/rs/zerolog/log"
)

// modelChannelBuffer keeps the selection loop from ever blocking on a
// worker: workers drain their channel every model-sync cycle, which is
// orders of magnitude more often than the loop broadcasts.
const modelChannelBuffer = 16

// spawnWorkers starts the worker pool and returns the per-worker model
// channels. Closing every channel is the shutdown signal.
func spawnWorkers(p Params, loader network.Loader, replays chan<- *replay.Replay, wg *sync.WaitGroup) []chan ModelUpdate {
	senders := make([]chan ModelUpdate, p.Workers)
	for i := range senders {
		ch := make(chan ModelUpdate, modelChannelBuffer)
		senders[i] = ch
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(workerContext{
				id:      id,
				params:  p,
				loader:  loader,
				models:  ch,
				replays: replays,
			})
		}(i)
	}
	return senders
}

// Run drives the whole simulation until the selection policy fails hard or
// ctx is cancelled. It owns the worker pool, the writer goroutine and the
// selection loop, and tears all of them down before returning.
func Run(ctx context.Context, p Params, strategy selector.Strategy, cache *network.WeightsCache, loader network.Loader, sink writer.Sink) error {
	p = p.withDefaults()
	if err := p.validate(); err != nil {
		return err
	}
	log.Info().
		Int("workers", p.Workers).
		Int("batch_size", p.BatchSize).
		Int("simulations", p.Episode.Search.Simulations).
		Int("poll_rounds", p.PollRounds).
		Msg("selfplay parameters")

	replays := make(chan *replay.Replay, p.ReplayBuffer)

	var workers sync.WaitGroup
	senders := spawnWorkers(p, loader, replays, &workers)

	writerErr := make(chan error, 1)
	go func() {
		writerErr <- writer.Run(replays, sink, p.LogInterval)
	}()

	var loopErr error
	writerDown := false
loop:
	for {
		id, ok, err := strategy.GetModel(ctx)
		switch {
		case err != nil:
			log.Error().Err(err).Msg("model selection failed")
			loopErr = err
			break loop
		case !ok:
			log.Info().Msg("waiting for a deployable model...")
		default:
			weights, err := cache.Load(id)
			if err != nil {
				log.Error().Err(err).Str("model", id).Msg("failed to load model weights")
				loopErr = err
				break loop
			}
			broadcast(senders, ModelUpdate{Name: id, Weights: weights})
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("shutdown requested")
			break loop
		case err := <-writerErr:
			loopErr = fmt.Errorf("writer: %w", err)
			writerDown = true
			break loop
		case <-time.After(p.SelectInterval):
		}
	}

	// Closing the model channels stops the workers; once every producer is
	// gone the writer drains out and exits.
	for _, sender := range senders {
		close(sender)
	}
	workersDone := make(chan struct{})
	go func() {
		workers.Wait()
		close(workersDone)
	}()

	if writerDown {
		// The sink is gone; keep draining so sessions handing off replays
		// can still unwind.
		for {
			select {
			case <-replays:
			case <-workersDone:
				return loopErr
			}
		}
	}

	<-workersDone
	close(replays)
	if err := <-writerErr; err != nil {
		if loopErr != nil {
			return fmt.Errorf("writer: %w (after %v)", err, loopErr)
		}
		return fmt.Errorf("writer: %w", err)
	}
	return loopErr
}

// broadcast delivers an update to every worker without ever blocking the
// selection loop: a worker that has died or stalled simply misses this
// round and catches the next one (loading is idempotent, so nothing is
// lost).
func broadcast(senders []chan ModelUpdate, update ModelUpdate) {
	for _, sender := range senders {
		select {
		case sender <- update:
		default:
		}
	}
}
