package domain

import (
	"testing"
	"time"
)

func validStructuredSpec() PipelineSpec {
	return PipelineSpec{
		Name:          "reviews_sentiment",
		Kind:          KindStructured,
		Output:        "marts.reviews_sentiment",
		SourceQuery:   "SELECT review_id, body FROM raw.reviews",
		UniqueKeys:    []string{"review_id"},
		Operation:     "generate_text",
		Model:         "models/gemini-pro",
		BatchSize:     500,
		BatchDuration: 20 * time.Minute,
		SeedLimit:     10,
	}
}

func validObjectSpec() PipelineSpec {
	return PipelineSpec{
		Name:          "call_transcripts",
		Kind:          KindObject,
		Output:        "marts.call_transcripts",
		SourceBucket:  "recordings",
		UniqueKeys:    []string{"uri"},
		UpdatedColumn: "updated",
		Operation:     "transcribe",
		Model:         "models/speech-v2",
		BatchSize:     100,
		BatchDuration: 20 * time.Minute,
	}
}

func TestPipelineSpecValidateStructured(t *testing.T) {
	if err := validStructuredSpec().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPipelineSpecValidateObject(t *testing.T) {
	if err := validObjectSpec().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPipelineSpecValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*PipelineSpec)
	}{
		{"missing name", func(s *PipelineSpec) { s.Name = " " }},
		{"unknown kind", func(s *PipelineSpec) { s.Kind = "stream" }},
		{"missing output", func(s *PipelineSpec) { s.Output = "" }},
		{"missing operation", func(s *PipelineSpec) { s.Operation = "" }},
		{"missing model", func(s *PipelineSpec) { s.Model = "" }},
		{"no unique keys", func(s *PipelineSpec) { s.UniqueKeys = nil }},
		{"blank unique key", func(s *PipelineSpec) { s.UniqueKeys = []string{" "} }},
		{"missing source query", func(s *PipelineSpec) { s.SourceQuery = "" }},
		{"capped without duration", func(s *PipelineSpec) { s.BatchDuration = 0 }},
		{"negative seed limit", func(s *PipelineSpec) { s.SeedLimit = -1 }},
	}
	for _, tc := range cases {
		spec := validStructuredSpec()
		tc.mutate(&spec)
		if err := spec.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestPipelineSpecUncappedNeedsNoDuration(t *testing.T) {
	spec := validStructuredSpec()
	spec.BatchSize = -1
	spec.BatchDuration = 0
	if err := spec.Validate(); err != nil {
		t.Fatalf("uncapped spec should not require a duration: %v", err)
	}
}

func TestPipelineSpecObjectRejections(t *testing.T) {
	spec := validObjectSpec()
	spec.SourceBucket = ""
	if err := spec.Validate(); err == nil {
		t.Fatalf("expected error for missing source bucket")
	}
	spec = validObjectSpec()
	spec.UpdatedColumn = ""
	if err := spec.Validate(); err == nil {
		t.Fatalf("expected error for missing updated column")
	}
}
