package pipeline

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/animus-labs/infersync/internal/domain"
	"gopkg.in/yaml.v3"
)

// Definition is one pipeline as declared in the runner's YAML file.
type Definition struct {
	Name          string         `yaml:"name"`
	Kind          string         `yaml:"kind"`
	Output        string         `yaml:"output"`
	SourceQuery   string         `yaml:"source_query"`
	SourceBucket  string         `yaml:"source_bucket"`
	SourcePrefix  string         `yaml:"source_prefix"`
	UniqueKeys    []string       `yaml:"unique_keys"`
	Operation     string         `yaml:"operation"`
	Model         string         `yaml:"model"`
	BatchSize     *int           `yaml:"batch_size"`
	BatchDuration string         `yaml:"batch_duration"`
	SeedLimit     int            `yaml:"seed_limit"`
	UpdatedColumn string         `yaml:"updated_column"`
	Dependencies  []string       `yaml:"dependencies"`
	Params        map[string]any `yaml:"params"`
}

type definitionsFile struct {
	Pipelines []Definition `yaml:"pipelines"`
}

// Spec converts the definition into a runnable pipeline spec. Zero
// batch size and duration fall back to the operation's defaults during
// resolution.
func (d Definition) Spec() (domain.PipelineSpec, error) {
	kind := domain.PipelineKind(strings.ToLower(strings.TrimSpace(d.Kind)))
	if kind == "" {
		kind = domain.KindStructured
	}

	batchSize := 0
	if d.BatchSize != nil {
		batchSize = *d.BatchSize
	}

	var batchDuration time.Duration
	if strings.TrimSpace(d.BatchDuration) != "" {
		parsed, err := time.ParseDuration(strings.TrimSpace(d.BatchDuration))
		if err != nil {
			return domain.PipelineSpec{}, fmt.Errorf("pipeline %s: parse batch_duration: %w", d.Name, err)
		}
		batchDuration = parsed
	}

	params, err := domain.ParamsFromAny(d.Params)
	if err != nil {
		return domain.PipelineSpec{}, fmt.Errorf("pipeline %s: %w", d.Name, err)
	}

	uniqueKeys := d.UniqueKeys
	updatedColumn := strings.TrimSpace(d.UpdatedColumn)
	if kind == domain.KindObject {
		if len(uniqueKeys) == 0 {
			uniqueKeys = []string{"uri"}
		}
		if updatedColumn == "" {
			updatedColumn = "updated"
		}
	}

	return domain.PipelineSpec{
		Name:          strings.TrimSpace(d.Name),
		Kind:          kind,
		Output:        strings.TrimSpace(d.Output),
		SourceQuery:   strings.TrimSpace(d.SourceQuery),
		SourceBucket:  strings.TrimSpace(d.SourceBucket),
		SourcePrefix:  strings.TrimSpace(d.SourcePrefix),
		UniqueKeys:    uniqueKeys,
		Operation:     strings.TrimSpace(d.Operation),
		Model:         strings.TrimSpace(d.Model),
		BatchSize:     batchSize,
		BatchDuration: batchDuration,
		SeedLimit:     d.SeedLimit,
		UpdatedColumn: updatedColumn,
		Dependencies:  d.Dependencies,
		Params:        params,
	}, nil
}

// LoadDefinitions reads the runner's pipeline file. Name uniqueness is
// enforced here; full validation happens when each pipeline resolves.
func LoadDefinitions(path string) ([]domain.PipelineSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipelines file: %w", err)
	}
	var file definitionsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse pipelines file: %w", err)
	}
	if len(file.Pipelines) == 0 {
		return nil, fmt.Errorf("pipelines file %s declares no pipelines", path)
	}

	seen := map[string]struct{}{}
	specs := make([]domain.PipelineSpec, 0, len(file.Pipelines))
	for _, def := range file.Pipelines {
		spec, err := def.Spec()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate pipeline name %q", spec.Name)
		}
		seen[spec.Name] = struct{}{}
		specs = append(specs, spec)
	}
	return specs, nil
}
