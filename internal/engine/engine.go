// Package engine implements the incremental batch-reconciliation loop:
// select eligible rows, invoke the remote operation on a bounded batch,
// merge accepted results into the output, and repeat until convergence
// or the wall-clock budget runs out.
package engine

import (
	"context"
	"time"

	"github.com/animus-labs/infersync/internal/domain"
)

// Source supplies the current source population. The engine treats it
// as read-only.
type Source interface {
	Rows(ctx context.Context) ([]domain.Row, error)
}

// OutputState is the snapshot of the output the eligibility policies
// work from: recorded status per identity plus the freshness high-water
// mark. It always reflects the previous iteration's committed merge.
type OutputState struct {
	Status       map[string]string
	MaxFreshness time.Time
}

// Has reports whether the output holds a row for the key.
func (s OutputState) Has(key string) bool {
	_, ok := s.Status[key]
	return ok
}

// Output is the durable result relation. Merge must be atomic with
// respect to concurrent external readers and must report the number of
// rows written.
type Output interface {
	State(ctx context.Context) (OutputState, error)
	Merge(ctx context.Context, rows []domain.Row) (int64, error)
	Exists(ctx context.Context) (bool, error)
	CreateFrom(ctx context.Context, rows []domain.Row) error
}

// Invoker issues one external operation call for a batch of eligible
// rows and returns one candidate row per input. It must not retry and
// must not mutate source or output.
type Invoker interface {
	Invoke(ctx context.Context, rows []domain.Row) ([]domain.Row, error)
}
