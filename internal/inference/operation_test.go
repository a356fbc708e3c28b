package inference

import "testing"

func TestLookupKnownOperations(t *testing.T) {
	for _, name := range Names() {
		op, err := Lookup(name)
		if err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		if op.StatusColumn != name+"_status" {
			t.Fatalf("unexpected status column for %s: %s", name, op.StatusColumn)
		}
		if op.DefaultBatchSize <= 0 {
			t.Fatalf("operation %s has no default batch size", name)
		}
		if op.DefaultBatchDuration <= 0 {
			t.Fatalf("operation %s has no default batch duration", name)
		}
	}
}

func TestLookupNormalizesName(t *testing.T) {
	op, err := Lookup("  Translate ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.Name != "translate" {
		t.Fatalf("unexpected operation: %s", op.Name)
	}
}

func TestLookupUnknownOperation(t *testing.T) {
	if _, err := Lookup("summarize_everything"); err == nil {
		t.Fatalf("expected error for unknown operation")
	}
}
