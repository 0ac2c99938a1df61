// Command steward runs the autonomous change-management engine: agents
// propose edits to managed assets, an evaluator gates each proposal, and
// every applied change stays reversible through the version log.
//
// Usage:
//
//	steward [flags]           run the engine
//	steward ops <command>     operator utilities (history, changes, rollback)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stewardhq/steward/internal/adapter/fs"
	"github.com/stewardhq/steward/internal/adapter/memory"
	stnats "github.com/stewardhq/steward/internal/adapter/nats"
	"github.com/stewardhq/steward/internal/adapter/natskv"
	"github.com/stewardhq/steward/internal/adapter/otel"
	"github.com/stewardhq/steward/internal/adapter/postgres"
	"github.com/stewardhq/steward/internal/adapter/ristretto"
	"github.com/stewardhq/steward/internal/adapter/tiered"
	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/internal/evaluator"
	"github.com/stewardhq/steward/internal/logger"
	"github.com/stewardhq/steward/internal/port/assetstore"
	"github.com/stewardhq/steward/internal/port/cache"
	"github.com/stewardhq/steward/internal/port/changelog"
	"github.com/stewardhq/steward/internal/port/messagequeue"
	"github.com/stewardhq/steward/internal/port/versionlog"
	"github.com/stewardhq/steward/internal/resilience"
	"github.com/stewardhq/steward/internal/service"
)

const version = "0.3.0"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "ops" {
		if err := runOps(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	if err := run(os.Args[1:]); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := config.ParseFlags(args)
	if err != nil {
		return fmt.Errorf("flags: %w", err)
	}
	cfg, cfgPath, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	slog.Info("config loaded",
		"path", cfgPath,
		"storage_driver", cfg.Storage.Driver,
		"tick_interval", cfg.Engine.TickInterval.String(),
		"accept_threshold", cfg.Engine.AcceptThreshold)

	ctx := context.Background()

	otelShutdown, err := otel.Setup(ctx, cfg.Telemetry, cfg.Logging.Service, version)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()
	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Storage ---

	store, versions, changes, storageCleanup, err := buildStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storageCleanup()

	// --- NATS ---

	var queue messagequeue.Queue
	var natsQueue *stnats.Queue
	if cfg.NATS.URL != "" {
		natsQueue, err = stnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() {
			if err := natsQueue.Drain(); err != nil {
				slog.Warn("nats drain failed", "error", err)
			}
		}()
		queue = natsQueue
	}

	// --- Evaluator ---

	var eval evaluator.Evaluator = evaluator.NewHeuristic(
		cfg.Engine.AestheticWeight, cfg.Engine.FunctionalWeight)
	if cfg.Cache.Enabled {
		scoreCache, err := buildScoreCache(ctx, cfg, natsQueue)
		if err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		eval = evaluator.NewCached(eval, scoreCache, cfg.Cache.TTL)
	}

	// --- Engine ---

	engine, err := service.NewOrchestrator(service.Options{
		Store:     store,
		Versions:  versions,
		Changes:   changes,
		Evaluator: eval,
		Queue:     queue,
		Metrics:   metrics,
		Breaker:   resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout),
		Engine:    cfg.Engine,
	})
	if err != nil {
		return err
	}

	if err := seedAssets(ctx, engine, store); err != nil {
		return err
	}

	// Optional drift watcher: external edits under the asset directory are
	// re-seeded so history records them instead of silently diverging.
	if cfg.Assets.Dir != "" && cfg.Assets.Watch {
		watcher, err := fs.NewWatcher(cfg.Assets.Dir, driftHandler(ctx, engine, store))
		if err != nil {
			return fmt.Errorf("asset watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("asset watcher: %w", err)
		}
		defer watcher.Stop()
	}

	if err := engine.Start(ctx); err != nil {
		return err
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	slog.Info("shutting down")
	engine.Stop()
	return nil
}

// buildStorage selects the persistence driver. The fs store serves assets
// directly from the configured directory; the memory driver without a
// directory is for experiments and tests.
func buildStorage(ctx context.Context, cfg *config.Config) (assetstore.Store, versionlog.Log, changelog.Store, func(), error) {
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("postgres: %w", err)
		}
		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			pool.Close()
			return nil, nil, nil, nil, fmt.Errorf("migrations: %w", err)
		}
		slog.Info("postgres connected, migrations applied")
		return postgres.NewAssetStore(pool),
			postgres.NewVersionLog(pool),
			postgres.NewChangeLog(pool),
			pool.Close,
			nil
	case "memory":
		var store assetstore.Store = memory.NewAssetStore()
		if cfg.Assets.Dir != "" {
			fsStore, err := fs.NewStore(cfg.Assets.Dir)
			if err != nil {
				return nil, nil, nil, nil, fmt.Errorf("asset dir: %w", err)
			}
			store = fsStore
		}
		return store, memory.NewVersionLog(), memory.NewChangeLog(), func() {}, nil
	default:
		return nil, nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// buildScoreCache assembles the evaluation memo cache: ristretto in-process,
// tiered with a NATS JetStream KV level when a broker is connected.
func buildScoreCache(ctx context.Context, cfg *config.Config, natsQueue *stnats.Queue) (cache.Cache, error) {
	l1, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return nil, err
	}
	if natsQueue == nil {
		return l1, nil
	}
	kv, err := natsQueue.KeyValue(ctx, "steward-eval", cfg.Cache.TTL)
	if err != nil {
		slog.Warn("NATS KV unavailable, evaluation cache stays in-process", "error", err)
		return l1, nil
	}
	return tiered.New(l1, natskv.New(kv), cfg.Cache.TTL), nil
}

// seedAssets registers every key the store already knows, giving each its
// seq-0 snapshot (or a drift snapshot when persisted history disagrees).
func seedAssets(ctx context.Context, engine *service.Orchestrator, store assetstore.Store) error {
	keys, err := store.Keys(ctx)
	if err != nil {
		return fmt.Errorf("enumerate assets: %w", err)
	}
	if len(keys) == 0 {
		slog.Warn("no managed assets found; the engine will idle until assets are seeded")
		return nil
	}
	for _, key := range keys {
		content, err := store.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("seed %s: %w", key, err)
		}
		if err := engine.Seed(ctx, key, content); err != nil {
			return err
		}
	}
	slog.Info("assets seeded", "count", len(keys))
	return nil
}

// driftHandler re-seeds externally modified assets so the version log gains
// an auditable drift snapshot for each.
func driftHandler(ctx context.Context, engine *service.Orchestrator, store assetstore.Store) fs.DriftHandler {
	return func(keys []string) {
		for _, key := range keys {
			content, err := store.Get(ctx, key)
			if err != nil {
				slog.Warn("drifted asset unreadable", "asset_key", key, "error", err)
				continue
			}
			if err := engine.Seed(ctx, key, content); err != nil {
				slog.Warn("drift re-seed failed", "asset_key", key, "error", err)
			}
		}
	}
}
