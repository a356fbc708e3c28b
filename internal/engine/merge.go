package engine

import (
	"github.com/animus-labs/infersync/internal/domain"
)

// AcceptFilter decides whether a candidate row may be written to the
// output. Rejected rows stay out of the output and become eligible
// again on a later iteration.
type AcceptFilter func(domain.Row) bool

// AcceptNonRetryable admits successful and terminally-failed rows and
// rejects rows whose status column reports a retryable failure.
// Terminal failures are written so the convergence check stays
// reachable even when some rows can never succeed.
func AcceptNonRetryable(statusColumn string) AcceptFilter {
	return func(row domain.Row) bool {
		return !domain.StatusRetryable(row.Status(statusColumn))
	}
}

func applyAccept(rows []domain.Row, accept AcceptFilter) []domain.Row {
	if accept == nil {
		return rows
	}
	out := make([]domain.Row, 0, len(rows))
	for _, row := range rows {
		if accept(row) {
			out = append(out, row)
		}
	}
	return out
}
