package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/animus-labs/infersync/internal/registry"
)

// Bootstrap performs the pipeline's one-time initialization: it declares
// the pipeline's external dependencies and creates the output relation
// if absent, seeded with the first accepted slice so later merges always
// have a destination. Safe to call on every invocation.
func (e *Engine) Bootstrap(ctx context.Context, reg *registry.Registry, dependencies []string, seedLimit int) error {
	if e == nil {
		return errors.New("engine not initialized")
	}
	if reg == nil {
		return errors.New("dependency registry is required")
	}
	if seedLimit < 0 {
		return errors.New("seed limit must be >= 0")
	}

	for _, dep := range dependencies {
		if reg.Declare(dep) {
			e.logger.Info("dependency declared", "dependency", dep)
		}
	}

	exists, err := e.output.Exists(ctx)
	if err != nil {
		return fmt.Errorf("check output: %w", err)
	}
	if exists {
		return nil
	}

	seed, err := e.seedPass(ctx, seedLimit)
	if err != nil {
		return fmt.Errorf("seed pass: %w", err)
	}
	if err := e.output.CreateFrom(ctx, seed); err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	e.logger.Info("output created", "seed_rows", len(seed))
	return nil
}
