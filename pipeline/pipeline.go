// Package pipeline is the public surface over the reconciliation
// engine: one call runs a structured-row or object pipeline end to end,
// bootstrap included.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/animus-labs/infersync/internal/domain"
	"github.com/animus-labs/infersync/internal/engine"
	"github.com/animus-labs/infersync/internal/inference"
	"github.com/animus-labs/infersync/internal/objectsource"
	"github.com/animus-labs/infersync/internal/registry"
	"github.com/animus-labs/infersync/internal/warehouse"
)

// Deps are the external collaborators a pipeline run needs. Objects may
// be nil for structured pipelines.
type Deps struct {
	Logger   *slog.Logger
	DB       warehouse.DB
	Objects  objectsource.Lister
	Invoker  inference.Invoker
	Registry *registry.Registry
}

func (d Deps) validate() error {
	if d.DB == nil {
		return errors.New("db is required")
	}
	if d.Invoker == nil {
		return errors.New("invoker is required")
	}
	if d.Registry == nil {
		return errors.New("registry is required")
	}
	return nil
}

const defaultSeedLimit = 100

// RunStructuredPipeline reconciles a structured-row source into the
// output relation under the identity-retry policy.
func RunStructuredPipeline(ctx context.Context, deps Deps, spec domain.PipelineSpec) (engine.RunReport, error) {
	spec.Kind = domain.KindStructured
	if err := deps.validate(); err != nil {
		return engine.RunReport{}, err
	}
	op, spec, err := resolveSpec(spec)
	if err != nil {
		return engine.RunReport{}, err
	}

	source, err := warehouse.NewSourceStore(deps.DB, spec.SourceQuery)
	if err != nil {
		return engine.RunReport{}, err
	}
	output, err := warehouse.NewOutputStore(deps.DB, spec.Output, spec.UniqueKeys, op.StatusColumn, "")
	if err != nil {
		return engine.RunReport{}, err
	}
	policy := engine.IdentityRetry{Keys: spec.UniqueKeys, StatusColumn: op.StatusColumn}

	dependencies := append([]string{spec.SourceQuery, spec.Model}, spec.Dependencies...)
	return run(ctx, deps, spec, op, source, output, policy, dependencies)
}

// RunObjectPipeline reconciles an object collection into the output
// relation under the freshness-scan policy.
func RunObjectPipeline(ctx context.Context, deps Deps, spec domain.PipelineSpec) (engine.RunReport, error) {
	spec.Kind = domain.KindObject
	if len(spec.UniqueKeys) == 0 {
		spec.UniqueKeys = []string{"uri"}
	}
	if strings.TrimSpace(spec.UpdatedColumn) == "" {
		spec.UpdatedColumn = "updated"
	}
	if err := deps.validate(); err != nil {
		return engine.RunReport{}, err
	}
	if deps.Objects == nil {
		return engine.RunReport{}, errors.New("object store client is required")
	}
	op, spec, err := resolveSpec(spec)
	if err != nil {
		return engine.RunReport{}, err
	}

	source, err := objectsource.New(deps.Objects, spec.SourceBucket, spec.SourcePrefix)
	if err != nil {
		return engine.RunReport{}, err
	}
	output, err := warehouse.NewOutputStore(deps.DB, spec.Output, spec.UniqueKeys, op.StatusColumn, spec.UpdatedColumn)
	if err != nil {
		return engine.RunReport{}, err
	}
	policy := engine.FreshnessScan{
		Keys:          spec.UniqueKeys,
		UpdatedColumn: spec.UpdatedColumn,
		StatusColumn:  op.StatusColumn,
	}

	dependencies := append([]string{"bucket:" + spec.SourceBucket, spec.Model}, spec.Dependencies...)
	return run(ctx, deps, spec, op, source, output, policy, dependencies)
}

// Run dispatches on the spec's kind. Used by the runner service.
func Run(ctx context.Context, deps Deps, spec domain.PipelineSpec) (engine.RunReport, error) {
	switch spec.Kind {
	case domain.KindObject:
		return RunObjectPipeline(ctx, deps, spec)
	default:
		return RunStructuredPipeline(ctx, deps, spec)
	}
}

// resolveSpec fills operation-derived defaults and validates the result.
func resolveSpec(spec domain.PipelineSpec) (inference.Operation, domain.PipelineSpec, error) {
	op, err := inference.Lookup(spec.Operation)
	if err != nil {
		return inference.Operation{}, spec, err
	}
	if spec.BatchSize == 0 {
		spec.BatchSize = op.DefaultBatchSize
	}
	if spec.BatchDuration == 0 && spec.BatchSize >= 0 {
		spec.BatchDuration = op.DefaultBatchDuration
	}
	if spec.SeedLimit == 0 {
		spec.SeedLimit = defaultSeedLimit
	}
	if err := spec.Validate(); err != nil {
		return inference.Operation{}, spec, err
	}
	return op, spec, nil
}

func run(
	ctx context.Context,
	deps Deps,
	spec domain.PipelineSpec,
	op inference.Operation,
	source engine.Source,
	output engine.Output,
	policy engine.Policy,
	dependencies []string,
) (engine.RunReport, error) {
	logger := deps.Logger
	if logger != nil {
		logger = logger.With("pipeline", spec.Name)
	}

	accept := engine.AcceptFilter(spec.Accept)
	if accept == nil {
		accept = engine.AcceptNonRetryable(op.StatusColumn)
	}

	eng, err := engine.New(engine.Config{
		Logger:        logger,
		Source:        source,
		Output:        output,
		Invoker:       operationInvoker{client: deps.Invoker, op: op, model: spec.Model, params: spec.Params},
		Policy:        policy,
		Accept:        accept,
		BatchSize:     spec.BatchSize,
		BatchDuration: spec.BatchDuration,
	})
	if err != nil {
		return engine.RunReport{}, fmt.Errorf("configure pipeline %s: %w", spec.Name, err)
	}

	if err := eng.Bootstrap(ctx, deps.Registry, dependencies, spec.SeedLimit); err != nil {
		return engine.RunReport{}, fmt.Errorf("bootstrap pipeline %s: %w", spec.Name, err)
	}
	report, err := eng.Run(ctx)
	if err != nil {
		return report, fmt.Errorf("run pipeline %s: %w", spec.Name, err)
	}
	return report, nil
}

// operationInvoker binds the batch invoker to one operation, model and
// configuration for the duration of a run.
type operationInvoker struct {
	client inference.Invoker
	op     inference.Operation
	model  string
	params domain.Params
}

func (i operationInvoker) Invoke(ctx context.Context, rows []domain.Row) ([]domain.Row, error) {
	return i.client.Invoke(ctx, i.op, i.model, rows, i.params)
}
