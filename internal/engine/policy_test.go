package engine

import (
	"testing"
	"time"

	"github.com/animus-labs/infersync/internal/domain"
)

func TestIdentityRetrySelect(t *testing.T) {
	policy := IdentityRetry{Keys: []string{"id"}, StatusColumn: statusCol}
	source := []domain.Row{
		{"id": "done"},
		{"id": "retry"},
		{"id": "failed"},
		{"id": "new"},
	}
	output := OutputState{Status: map[string]string{
		"done":   "",
		"retry":  "A retryable error occurred: quota exceeded",
		"failed": "INVALID_ARGUMENT: bad input",
	}}

	eligible := policy.Select(source, output, -1)
	if len(eligible) != 2 {
		t.Fatalf("expected 2 eligible rows, got %d", len(eligible))
	}
	got := map[string]bool{}
	for _, row := range eligible {
		got[row.Key([]string{"id"})] = true
	}
	if !got["retry"] || !got["new"] {
		t.Fatalf("unexpected eligible set: %v", got)
	}
}

func TestIdentityRetryCap(t *testing.T) {
	policy := IdentityRetry{Keys: []string{"id"}, StatusColumn: statusCol}
	source := []domain.Row{{"id": "a"}, {"id": "b"}, {"id": "c"}}

	eligible := policy.Select(source, OutputState{Status: map[string]string{}}, 2)
	if len(eligible) != 2 {
		t.Fatalf("cap not applied: %d rows", len(eligible))
	}
	if got := policy.Select(source, OutputState{Status: map[string]string{}}, 0); len(got) != 0 {
		t.Fatalf("zero cap should select nothing, got %d", len(got))
	}
}

func TestFreshnessScanSelect(t *testing.T) {
	policy := FreshnessScan{Keys: []string{"uri"}, UpdatedColumn: "updated", StatusColumn: statusCol}
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	source := []domain.Row{
		{"uri": "s3://b/old", "updated": base},
		{"uri": "s3://b/replaced", "updated": base.Add(4 * time.Hour)},
		{"uri": "s3://b/new", "updated": base.Add(2 * time.Hour)},
		{"uri": "s3://b/stuck", "updated": base},
	}
	output := OutputState{
		Status: map[string]string{
			"s3://b/old":      "",
			"s3://b/replaced": "",
			"s3://b/stuck":    "A retryable error occurred: backend busy",
		},
		MaxFreshness: base.Add(time.Hour),
	}

	eligible := policy.Select(source, output, -1)
	got := map[string]bool{}
	for _, row := range eligible {
		got[row.Key([]string{"uri"})] = true
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 eligible objects, got %v", got)
	}
	// Replaced object: freshness advanced past the high-water mark.
	if !got["s3://b/replaced"] {
		t.Fatalf("replaced object not re-surfaced")
	}
	// Never-seen object.
	if !got["s3://b/new"] {
		t.Fatalf("new object not selected")
	}
	// Retryable object re-surfaces even without a re-upload.
	if !got["s3://b/stuck"] {
		t.Fatalf("retryable object not re-surfaced")
	}
	if got["s3://b/old"] {
		t.Fatalf("stale successful object re-surfaced")
	}
}

func TestFreshnessScanCap(t *testing.T) {
	policy := FreshnessScan{Keys: []string{"uri"}, UpdatedColumn: "updated", StatusColumn: statusCol}
	source := []domain.Row{
		{"uri": "a", "updated": time.Unix(1, 0)},
		{"uri": "b", "updated": time.Unix(2, 0)},
		{"uri": "c", "updated": time.Unix(3, 0)},
	}
	eligible := policy.Select(source, OutputState{Status: map[string]string{}}, 1)
	if len(eligible) != 1 {
		t.Fatalf("cap not applied: %d rows", len(eligible))
	}
}
