package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"craft/config"
	"craft/game"
	"craft/network"
	"craft/selector"
	"craft/selfplay"
	"craft/store"
	"craft/writer"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// SIGINT/SIGTERM cancel the context; the simulation tears itself down.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("simulation failed")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	rules := game.NewCraftRules(cfg.Game)
	params := cfg.Params(rules)

	client, err := store.Dial(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer client.Close()

	var strategy selector.Strategy
	switch cfg.Selector.Strategy {
	case "ucb1":
		strategy = selector.NewUCB1(client, cfg.Selector.Exploration)
	case "optimistic":
		strategy = selector.NewOptimistic(client, cfg.Selector.Prior)
	}

	var sink writer.Sink
	switch cfg.Writer {
	case "generation":
		sink = client.NewGenerationSink(ctx, cfg.PlaysPerWrite)
	case "evaluation":
		sink = client.NewEvaluationSink(ctx, cfg.PlaysPerWrite)
	case "jsonl":
		jsonl, err := writer.NewJSONLSink(cfg.ReplayPath)
		if err != nil {
			return err
		}
		defer jsonl.Close()
		sink = jsonl
	}

	var loader network.Loader
	switch cfg.Network {
	case "onnx":
		if err := network.InitRuntime(cfg.ONNX.LibraryPath); err != nil {
			return err
		}
		loader = network.ONNXLoader(cfg.ONNX, params.InferConfig())
	case "uniform":
		loader = network.UniformLoader(0.5)
	}

	cache := network.NewWeightsCache(cfg.ModelDir)
	return selfplay.Run(ctx, params, strategy, cache, loader, sink)
}
