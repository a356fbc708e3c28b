package domain

import (
	"testing"
	"time"
)

func TestRowKeySingleColumn(t *testing.T) {
	row := Row{"review_id": "r-42", "text": "fine"}
	if got := row.Key([]string{"review_id"}); got != "r-42" {
		t.Fatalf("unexpected key: %q", got)
	}
}

func TestRowKeyCompositeDoesNotCollide(t *testing.T) {
	a := Row{"tenant": "a", "id": "b-c"}
	b := Row{"tenant": "a-b", "id": "c"}
	keys := []string{"tenant", "id"}
	if a.Key(keys) == b.Key(keys) {
		t.Fatalf("composite keys collided: %q", a.Key(keys))
	}
}

func TestRowKeyNonStringComponents(t *testing.T) {
	row := Row{"id": 42, "ts": time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	if got := row.Key([]string{"id"}); got != "42" {
		t.Fatalf("unexpected key for int component: %q", got)
	}
	if got := row.Key([]string{"ts"}); got != "2025-03-01T00:00:00Z" {
		t.Fatalf("unexpected key for time component: %q", got)
	}
}

func TestRowStatusMissingColumn(t *testing.T) {
	row := Row{"id": "x"}
	if got := row.Status("translate_status"); got != "" {
		t.Fatalf("expected empty status, got %q", got)
	}
}

func TestRowFreshness(t *testing.T) {
	updated := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	row := Row{"updated": updated}
	if got := row.Freshness("updated"); !got.Equal(updated) {
		t.Fatalf("unexpected freshness: %v", got)
	}
	row = Row{"updated": "2025-06-01T12:30:00Z"}
	if got := row.Freshness("updated"); !got.Equal(updated) {
		t.Fatalf("unexpected parsed freshness: %v", got)
	}
	row = Row{"updated": "not-a-time"}
	if got := row.Freshness("updated"); !got.IsZero() {
		t.Fatalf("expected zero freshness, got %v", got)
	}
}

func TestRowCloneIsIndependent(t *testing.T) {
	row := Row{"id": "x"}
	clone := row.Clone()
	clone["id"] = "y"
	if row["id"] != "x" {
		t.Fatalf("clone mutated the original row")
	}
}
