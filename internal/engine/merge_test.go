package engine

import (
	"testing"

	"github.com/animus-labs/infersync/internal/domain"
)

func TestAcceptNonRetryable(t *testing.T) {
	accept := AcceptNonRetryable(statusCol)
	if !accept(domain.Row{statusCol: ""}) {
		t.Fatalf("success row rejected")
	}
	if !accept(domain.Row{statusCol: "PERMISSION_DENIED: model access"}) {
		t.Fatalf("terminal failure rejected; terminal rows must be written")
	}
	if accept(domain.Row{statusCol: "A retryable error occurred: quota exceeded"}) {
		t.Fatalf("retryable row accepted")
	}
	if !accept(domain.Row{"other": "x"}) {
		t.Fatalf("row without a status column should be accepted")
	}
}

func TestApplyAccept(t *testing.T) {
	rows := []domain.Row{
		{"id": "a", statusCol: ""},
		{"id": "b", statusCol: "A retryable error occurred: backend busy"},
		{"id": "c", statusCol: "INVALID_ARGUMENT"},
	}
	out := applyAccept(rows, AcceptNonRetryable(statusCol))
	if len(out) != 2 {
		t.Fatalf("expected 2 accepted rows, got %d", len(out))
	}
	if out[0]["id"] != "a" || out[1]["id"] != "c" {
		t.Fatalf("unexpected accepted rows: %v", out)
	}
	if got := applyAccept(rows, nil); len(got) != 3 {
		t.Fatalf("nil filter should pass everything, got %d", len(got))
	}
}
