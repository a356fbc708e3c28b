package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PipelineKind selects the eligibility policy for a pipeline.
type PipelineKind string

const (
	// KindStructured reprocesses rows absent from the output or whose
	// recorded status is retryable.
	KindStructured PipelineKind = "structured"
	// KindObject reprocesses objects absent from the output, newer than
	// the output's freshness high-water mark, or recorded as retryable.
	KindObject PipelineKind = "object"
)

// PipelineSpec is the immutable per-run configuration of one pipeline.
type PipelineSpec struct {
	Name string
	Kind PipelineKind

	// Output is the warehouse relation results are merged into.
	Output string

	// SourceQuery reads the structured source population. Object
	// pipelines use SourceBucket/SourcePrefix instead.
	SourceQuery  string
	SourceBucket string
	SourcePrefix string

	// UniqueKeys identify a row for upsert purposes.
	UniqueKeys []string

	Operation string
	Model     string

	// BatchSize caps rows considered per iteration. Zero selects the
	// operation's quota-derived default; negative disables capping and
	// collapses the loop to a single pass.
	BatchSize int

	// BatchDuration is the wall-clock ceiling for the whole loop.
	BatchDuration time.Duration

	// SeedLimit bounds the first accepted slice used to create the
	// output relation, independent of BatchSize.
	SeedLimit int

	// UpdatedColumn is the freshness timestamp column for object
	// pipelines.
	UpdatedColumn string

	// Dependencies are extra upstream resources to declare alongside
	// the source and model.
	Dependencies []string

	// Accept overrides the write-admission filter. When nil, rows with
	// a retryable status are held back and everything else is written.
	// Not representable in a YAML definition; set programmatically.
	Accept func(Row) bool

	Params Params
}

func (s PipelineSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("pipeline name is required")
	}
	if s.Kind != KindStructured && s.Kind != KindObject {
		return fmt.Errorf("unknown pipeline kind %q", s.Kind)
	}
	if strings.TrimSpace(s.Output) == "" {
		return errors.New("output relation is required")
	}
	if strings.TrimSpace(s.Operation) == "" {
		return errors.New("operation is required")
	}
	if strings.TrimSpace(s.Model) == "" {
		return errors.New("model reference is required")
	}
	if len(s.UniqueKeys) == 0 {
		return errors.New("at least one unique key is required")
	}
	for _, key := range s.UniqueKeys {
		if strings.TrimSpace(key) == "" {
			return errors.New("unique keys must be non-empty")
		}
	}
	switch s.Kind {
	case KindStructured:
		if strings.TrimSpace(s.SourceQuery) == "" {
			return errors.New("source query is required for structured pipelines")
		}
	case KindObject:
		if strings.TrimSpace(s.SourceBucket) == "" {
			return errors.New("source bucket is required for object pipelines")
		}
		if strings.TrimSpace(s.UpdatedColumn) == "" {
			return errors.New("updated column is required for object pipelines")
		}
	}
	if s.BatchSize >= 0 && s.BatchDuration <= 0 {
		return errors.New("batch duration must be positive when batching is capped")
	}
	if s.SeedLimit < 0 {
		return errors.New("seed limit must be >= 0")
	}
	return nil
}
