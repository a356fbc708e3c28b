package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/animus-labs/infersync/internal/domain"
	"github.com/google/uuid"
)

// RunState is the terminal state of one loop run. Both states are
// successes: a timed-out run resumes on the next scheduled invocation.
type RunState string

const (
	StateConverged RunState = "converged"
	StateTimedOut  RunState = "timed_out"
)

// RunReport summarizes one loop run.
type RunReport struct {
	RunID       string
	State       RunState
	Iterations  int
	RowsWritten int64
	Elapsed     time.Duration
}

// Config assembles one engine run. BatchSize < 0 disables capping and
// collapses the loop to a single pass; capping is what makes repetition
// meaningful.
type Config struct {
	Logger        *slog.Logger
	Source        Source
	Output        Output
	Invoker       Invoker
	Policy        Policy
	Accept        AcceptFilter
	BatchSize     int
	BatchDuration time.Duration
	Now           func() time.Time
}

func (c Config) validate() error {
	if c.Source == nil {
		return errors.New("source is required")
	}
	if c.Output == nil {
		return errors.New("output is required")
	}
	if c.Invoker == nil {
		return errors.New("invoker is required")
	}
	if c.Policy == nil {
		return errors.New("policy is required")
	}
	if c.BatchSize == 0 {
		return errors.New("batch size must be resolved before the loop runs")
	}
	if c.BatchSize > 0 && c.BatchDuration <= 0 {
		return errors.New("batch duration must be positive when batching is capped")
	}
	return nil
}

// Engine drives the reconciliation loop. It is single-writer: callers
// must not run two engines against the same output concurrently.
type Engine struct {
	logger        *slog.Logger
	source        Source
	output        Output
	invoker       Invoker
	policy        Policy
	accept        AcceptFilter
	batchSize     int
	batchDuration time.Duration
	now           func() time.Time
}

func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		logger:        logger,
		source:        cfg.Source,
		output:        cfg.Output,
		invoker:       cfg.Invoker,
		policy:        cfg.Policy,
		accept:        cfg.Accept,
		batchSize:     cfg.BatchSize,
		batchDuration: cfg.BatchDuration,
		now:           now,
	}, nil
}

// Run iterates until an iteration writes zero rows (converged) or the
// wall-clock budget is exhausted (timed out). The start time is fixed
// at entry. An uncapped engine executes exactly one pass.
func (e *Engine) Run(ctx context.Context) (RunReport, error) {
	if e == nil {
		return RunReport{}, errors.New("engine not initialized")
	}
	start := e.now()
	report := RunReport{RunID: uuid.NewString()}

	for {
		written, eligible, err := e.iterate(ctx)
		report.Iterations++
		report.RowsWritten += written
		if err != nil {
			report.Elapsed = e.now().Sub(start)
			return report, fmt.Errorf("iteration %d: %w", report.Iterations, err)
		}

		elapsed := e.now().Sub(start)
		e.logger.Info("iteration complete",
			"run_id", report.RunID,
			"iteration", report.Iterations,
			"eligible", eligible,
			"written", written,
			"elapsed", elapsed,
		)

		if e.batchSize < 0 {
			// A single unbounded pass already covered every eligible row.
			report.State = StateConverged
			break
		}
		if written == 0 {
			report.State = StateConverged
			break
		}
		if elapsed >= e.batchDuration {
			report.State = StateTimedOut
			break
		}
	}

	report.Elapsed = e.now().Sub(start)
	e.logger.Info("run complete",
		"run_id", report.RunID,
		"state", string(report.State),
		"iterations", report.Iterations,
		"rows_written", report.RowsWritten,
		"elapsed", report.Elapsed,
	)
	return report, nil
}

// iterate runs one eligibility-invoke-merge pass and returns the rows
// written plus the size of the eligible set.
func (e *Engine) iterate(ctx context.Context) (int64, int, error) {
	source, err := e.source.Rows(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("read source: %w", err)
	}
	state, err := e.output.State(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("read output state: %w", err)
	}

	eligible := e.policy.Select(source, state, e.batchSize)
	if len(eligible) == 0 {
		return 0, 0, nil
	}

	candidates, err := e.invoker.Invoke(ctx, eligible)
	if err != nil {
		return 0, len(eligible), fmt.Errorf("invoke batch: %w", err)
	}

	accepted := applyAccept(candidates, e.accept)
	if len(accepted) == 0 {
		return 0, len(eligible), nil
	}
	written, err := e.output.Merge(ctx, accepted)
	if err != nil {
		return 0, len(eligible), fmt.Errorf("merge batch: %w", err)
	}
	return written, len(eligible), nil
}

// seedPass is the bootstrap-time variant of iterate: one bounded pass
// that creates the output relation from the first accepted slice.
func (e *Engine) seedPass(ctx context.Context, seedLimit int) ([]domain.Row, error) {
	source, err := e.source.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	eligible := e.policy.Select(source, OutputState{}, seedLimit)
	if len(eligible) == 0 {
		return nil, nil
	}
	candidates, err := e.invoker.Invoke(ctx, eligible)
	if err != nil {
		return nil, fmt.Errorf("invoke seed batch: %w", err)
	}
	return applyAccept(candidates, e.accept), nil
}
