package domain

import "strings"

// RetryableStatusPrefix is the textual marker the operation provider
// emits for transient per-row failures (quota, throttling, temporary
// backend errors). Rows carrying it are excluded from the output and
// re-selected on a later iteration.
const RetryableStatusPrefix = "A retryable error occurred"

// StatusSuccess reports whether the status value marks a successful row.
// Providers leave the status column empty on success.
func StatusSuccess(status string) bool {
	return strings.TrimSpace(status) == ""
}

// StatusRetryable reports whether the status value marks a transient
// failure that is safe to reattempt.
func StatusRetryable(status string) bool {
	return strings.HasPrefix(strings.TrimSpace(status), RetryableStatusPrefix)
}

// StatusTerminal reports whether the status value is terminal: either a
// success or a permanent failure. Terminal rows are written to the
// output and never re-submitted.
func StatusTerminal(status string) bool {
	return !StatusRetryable(status)
}
