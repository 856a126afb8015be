package selfplay

import (
	"time"

	"craft/network"
	"craft/predict"
	"craft/replay"
	"craft/sched"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ModelUpdate is one broadcast notification: a model version and its
// weights, ready to load.
type ModelUpdate struct {
	Name    string
	Weights network.Weights
}

// workerContext is everything one worker goroutine owns.
type workerContext struct {
	id      int
	params  Params
	loader  network.Loader
	models  <-chan ModelUpdate
	replays chan<- *replay.Replay
}

// runWorker owns one predictor, one executor and BatchSize sessions. It
// alternates draining model notifications, polling every session, and
// flushing the predictor. It returns when the model channel closes or a
// model fails to load.
func runWorker(ctx workerContext) {
	logger := log.With().Int("worker", ctx.id).Logger()

	// The first notification is awaited synchronously: there is nothing to
	// do before a model exists.
	first, ok := <-ctx.models
	if !ok {
		logger.Info().Msg("model channel closed before first model")
		return
	}

	predictor := predict.New(ctx.loader)
	defer predictor.Close()
	if err := predictor.LoadNetwork(first.Name, first.Weights); err != nil {
		logger.Error().Err(err).Str("model", first.Name).Msg("failed to load first model")
		return
	}

	co := &sessionContext{
		episode: ctx.params.Episode,
		queue:   predictor.Queue(),
		version: &versionCell{id: first.Name},
		replays: ctx.replays,
	}

	exec := sched.New()
	defer exec.Shutdown()
	for i := 0; i < ctx.params.BatchSize; i++ {
		// Wall-clock seeds, mixed with the slot index so sessions spawned
		// in the same nanosecond still get distinct streams.
		seed := uint64(time.Now().UnixNano()) ^ uint64(i)<<32
		exec.Spawn(func(y *sched.Yield) {
			sessionLoop(y, co, seed)
		})
	}

	inferCfg := ctx.params.InferConfig()
	for {
	drain:
		for {
			select {
			case update, ok := <-ctx.models:
				if !ok {
					if ctx.params.DrainOnClose {
						drainSessions(exec, predictor, co, inferCfg, logger)
					}
					logger.Info().Msg("model channel closed, stopping worker")
					return
				}
				if err := predictor.LoadNetwork(update.Name, update.Weights); err != nil {
					logger.Error().Err(err).Str("model", update.Name).Msg("failed to load model")
					return
				}
				co.version.set(update.Name)
			default:
				break drain
			}
		}

		for i := 0; i < ctx.params.PollRounds; i++ {
			exec.PollAll()
			if err := predictor.Flush(inferCfg); err != nil {
				logger.Error().Err(err).Msg("inference flush failed")
				return
			}
		}
	}
}

// drainSessions keeps polling until every in-flight game reaches its end.
// Sessions see the draining flag at their next game boundary and exit
// instead of restarting.
func drainSessions(exec *sched.Executor, predictor *predict.Predictor, co *sessionContext, cfg network.InferConfig, logger zerolog.Logger) {
	co.draining = true
	for exec.Live() > 0 {
		exec.PollAll()
		if err := predictor.Flush(cfg); err != nil {
			logger.Error().Err(err).Msg("inference flush failed during drain")
			return
		}
	}
}
