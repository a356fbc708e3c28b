package engine

import (
	"github.com/animus-labs/infersync/internal/domain"
)

// Policy computes the subset of source rows that still need processing
// this iteration. Implementations are pure over the snapshots; a
// negative cap disables truncation. Selection order carries no meaning.
type Policy interface {
	Select(source []domain.Row, output OutputState, cap int) []domain.Row
}

// IdentityRetry selects rows whose key is absent from the output or
// whose recorded status is retryable. Used for structured-row
// pipelines; freshness is never consulted.
type IdentityRetry struct {
	Keys         []string
	StatusColumn string
}

func (p IdentityRetry) Select(source []domain.Row, output OutputState, cap int) []domain.Row {
	eligible := make([]domain.Row, 0, len(source))
	for _, row := range source {
		if cap >= 0 && len(eligible) >= cap {
			break
		}
		key := row.Key(p.Keys)
		status, seen := output.Status[key]
		if !seen || domain.StatusRetryable(status) {
			eligible = append(eligible, row)
		}
	}
	return eligible
}

// FreshnessScan selects rows whose key is absent from the output, whose
// freshness timestamp exceeds the output's high-water mark, or whose
// recorded status is retryable. Transient failures on append-only
// collections are retried without waiting for a re-upload.
type FreshnessScan struct {
	Keys          []string
	UpdatedColumn string
	StatusColumn  string
}

func (p FreshnessScan) Select(source []domain.Row, output OutputState, cap int) []domain.Row {
	eligible := make([]domain.Row, 0, len(source))
	for _, row := range source {
		if cap >= 0 && len(eligible) >= cap {
			break
		}
		key := row.Key(p.Keys)
		status, seen := output.Status[key]
		switch {
		case !seen:
			eligible = append(eligible, row)
		case row.Freshness(p.UpdatedColumn).After(output.MaxFreshness):
			eligible = append(eligible, row)
		case domain.StatusRetryable(status):
			eligible = append(eligible, row)
		}
	}
	return eligible
}
