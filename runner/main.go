package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/animus-labs/infersync/internal/domain"
	"github.com/animus-labs/infersync/internal/engine"
	"github.com/animus-labs/infersync/internal/inference"
	"github.com/animus-labs/infersync/internal/platform/env"
	"github.com/animus-labs/infersync/internal/platform/objectstore"
	"github.com/animus-labs/infersync/internal/platform/postgres"
	"github.com/animus-labs/infersync/internal/registry"
	"github.com/animus-labs/infersync/pipeline"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipelinesPath := env.String("INFERSYNC_PIPELINES_PATH", "pipelines.yaml")
	runOnce, err := env.Bool("INFERSYNC_RUN_ONCE", false)
	if err != nil {
		logger.Error("invalid env", "error", err)
		os.Exit(2)
	}
	interval, err := env.Duration("INFERSYNC_RUN_INTERVAL", time.Hour)
	if err != nil {
		logger.Error("invalid env", "error", err)
		os.Exit(2)
	}
	if interval <= 0 {
		logger.Error("invalid env", "env", "INFERSYNC_RUN_INTERVAL", "error", "must be positive")
		os.Exit(2)
	}

	specs, err := pipeline.LoadDefinitions(pipelinesPath)
	if err != nil {
		logger.Error("invalid pipelines file", "path", pipelinesPath, "error", err)
		os.Exit(2)
	}

	dbCfg, err := postgres.ConfigFromEnv()
	if err != nil {
		logger.Error("invalid database config", "error", err)
		os.Exit(2)
	}
	db, err := postgres.Open(ctx, dbCfg)
	if err != nil {
		logger.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	deps := pipeline.Deps{
		Logger:   logger,
		DB:       db,
		Registry: registry.New(),
	}

	providerCfg, err := inference.ConfigFromEnv()
	if err != nil {
		logger.Error("invalid provider config", "error", err)
		os.Exit(2)
	}
	invoker, err := inference.NewClient(ctx, providerCfg)
	if err != nil {
		logger.Error("provider client init failed", "error", err)
		os.Exit(2)
	}
	deps.Invoker = invoker

	if hasObjectPipelines(specs) {
		storeCfg, err := objectstore.ConfigFromEnv()
		if err != nil {
			logger.Error("invalid object store config", "error", err)
			os.Exit(2)
		}
		client, err := objectstore.NewMinIOClient(storeCfg)
		if err != nil {
			logger.Error("object store client init failed", "error", err)
			os.Exit(2)
		}
		startupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		for _, spec := range specs {
			if spec.Kind != domain.KindObject {
				continue
			}
			if err := objectstore.CheckBucket(startupCtx, client, spec.SourceBucket); err != nil {
				cancel()
				logger.Error("object store unavailable", "bucket", spec.SourceBucket, "error", err)
				os.Exit(1)
			}
		}
		cancel()
		deps.Objects = client
	}

	logger.Info("runner started",
		"pipelines", len(specs),
		"interval", interval,
		"run_once", runOnce,
	)

	runAll(ctx, logger, deps, specs)
	if runOnce {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("runner stopping")
			return
		case <-ticker.C:
			runAll(ctx, logger, deps, specs)
		}
	}
}

// runAll executes the pipelines one at a time: the merge writer's
// upsert semantics assume at most one writer per output.
func runAll(ctx context.Context, logger *slog.Logger, deps pipeline.Deps, specs []domain.PipelineSpec) {
	for _, spec := range specs {
		if ctx.Err() != nil {
			return
		}
		report, err := pipeline.Run(ctx, deps, spec)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.Error("pipeline failed", "pipeline", spec.Name, "error", err)
			continue
		}
		logger.Info("pipeline finished",
			"pipeline", spec.Name,
			"run_id", report.RunID,
			"state", string(report.State),
			"iterations", report.Iterations,
			"rows_written", report.RowsWritten,
			"elapsed", report.Elapsed,
		)
		if report.State == engine.StateTimedOut {
			logger.Warn("pipeline yielded before convergence; remaining rows resume next run",
				"pipeline", spec.Name,
				"run_id", report.RunID,
			)
		}
	}
}

func hasObjectPipelines(specs []domain.PipelineSpec) bool {
	for _, spec := range specs {
		if spec.Kind == domain.KindObject {
			return true
		}
	}
	return false
}
