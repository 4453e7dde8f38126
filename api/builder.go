package api

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/actions"
	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/stats"
	"github.com/relloyd/snowxfer/transform"
)

type builderStep func(b *transform.TransformBuilder, s *config.Settings)

// TransferBuilder configures a transfer step by step with a transform pipeline.
//
//	st, err := api.NewTransferBuilder().
//		FromSource("dbo.orders").
//		WithSchemaMapping(map[string]string{"money": "NUMBER(19,4)"}).
//		WithEnvironment("development").
//		Execute(ctx)
type TransferBuilder struct {
	o           *options
	source      string
	destination string
	steps       []builderStep
	typeMap     map[string]string
	showSteps   bool
	settings    *config.Settings
	pipeline    *transform.Pipeline
}

func NewTransferBuilder(opts ...Option) *TransferBuilder {
	return &TransferBuilder{o: newOptions(opts)}
}

// FromSource sets the source table or query.
func (b *TransferBuilder) FromSource(queryOrTable string) *TransferBuilder {
	b.source = queryOrTable
	return b
}

func (b *TransferBuilder) ToDestination(table string) *TransferBuilder {
	b.destination = table
	return b
}

// WithSchemaMapping adds schema mapping from the configured database type to Snowflake.
// Entries in custom map source types to Snowflake types and are used by the transfer.
func (b *TransferBuilder) WithSchemaMapping(custom map[string]string) *TransferBuilder {
	if len(custom) > 0 {
		if b.typeMap == nil {
			b.typeMap = make(map[string]string)
		}
		for k, v := range custom {
			b.typeMap[k] = v
		}
	}
	b.steps = append(b.steps, func(tb *transform.TransformBuilder, s *config.Settings) {
		tb.AddSchemaMapping(s.DatabaseType.String(), constants.ConnectionTypeSnowflake, custom)
	})
	return b
}

// WithQueryOptimization adds query processing for the destination.
func (b *TransferBuilder) WithQueryOptimization() *TransferBuilder {
	b.steps = append(b.steps, func(tb *transform.TransformBuilder, s *config.Settings) {
		tb.AddQueryProcessing(b.destination)
	})
	return b
}

// WithEnvironment tunes fetch size, workers and timeout for env, development or production.
func (b *TransferBuilder) WithEnvironment(env string) *TransferBuilder {
	b.steps = append(b.steps, func(tb *transform.TransformBuilder, s *config.Settings) {
		tb.AddConnectionOptimization(env)
	})
	return b
}

func (b *TransferBuilder) ShowPipelineSteps(show bool) *TransferBuilder {
	b.showSteps = show
	return b
}

func (b *TransferBuilder) loadSettings() (*config.Settings, error) {
	if b.settings == nil {
		s, err := b.o.settings()
		if err != nil {
			return nil, err
		}
		b.settings = s
	}
	return b.settings, nil
}

// BuildPipeline builds the transform pipeline. With no steps added it uses schema mapping
// followed by query processing.
func (b *TransferBuilder) BuildPipeline() (*transform.Pipeline, error) {
	s, err := b.loadSettings()
	if err != nil {
		return nil, err
	}
	steps := b.steps
	if len(steps) == 0 {
		steps = []builderStep{
			func(tb *transform.TransformBuilder, s *config.Settings) {
				tb.AddSchemaMapping(s.DatabaseType.String(), constants.ConnectionTypeSnowflake, nil)
			},
			func(tb *transform.TransformBuilder, s *config.Settings) {
				tb.AddQueryProcessing(b.destination)
			},
		}
	}
	tb := transform.NewTransformBuilder()
	for _, step := range steps {
		step(tb, s)
	}
	b.pipeline = tb.Build()
	if b.showSteps {
		var sample interface{}
		if b.source != "" {
			sample = b.source
		}
		transform.ShowPipelineSteps(b.o.out, b.pipeline, sample)
	}
	return b.pipeline, nil
}

// Execute runs the transfer. Connection tuning from the pipeline is applied to the settings first.
func (b *TransferBuilder) Execute(ctx context.Context) (stats.TransferStats, error) {
	if b.source == "" {
		return stats.TransferStats{}, errors.New("a source is required, use FromSource")
	}
	if b.pipeline == nil {
		if _, err := b.BuildPipeline(); err != nil {
			return stats.TransferStats{}, err
		}
	}
	dest := b.destination
	if dest == "" {
		dest = DeriveDestination(b.source)
	}
	b.o.progress("Executing custom pipeline: %v -> %v\n", b.source, dest)
	b.o.progress("Pipeline steps: [%v]\n", joinComma(b.pipeline.TransformNames()))
	s := b.settings.Copy()
	tr := &s.Transfer
	x, err := b.pipeline.Encode(transform.ConnectionParams{
		FetchSize:      tr.FetchSize,
		MaxWorkers:     tr.MaxWorkers,
		TimeoutSeconds: tr.QueryTimeout,
	})
	if err != nil {
		return stats.TransferStats{}, err
	}
	if p, ok := x.(transform.ConnectionParams); ok {
		tr.FetchSize = p.FetchSize
		tr.MaxWorkers = p.MaxWorkers
		tr.QueryTimeout = p.TimeoutSeconds
		b.o.log.Debug("connection params: ", p)
	}
	tr.Mode = b.o.mode
	tr.DestinationTable = dest
	query := ""
	if IsQuery(b.source) {
		query = b.source
		tr.SourceTable = ""
	} else {
		tr.SourceTable = b.source
	}
	if err = s.Validate(); err != nil {
		return stats.TransferStats{}, err
	}
	opts := []actions.DataTransferOption{actions.WithOutput(b.o.out)}
	if b.o.source != nil && b.o.target != nil {
		opts = append(opts, actions.WithConnections(b.o.source, b.o.target))
	}
	if len(b.typeMap) > 0 {
		opts = append(opts, actions.WithTypeOverrides(b.typeMap))
	}
	start := time.Now()
	st, err := actions.TransferData(ctx, b.o.log, s, query, append(opts, b.o.transferOptions...)...)
	if err != nil {
		return st, err
	}
	b.o.log.Debug("custom pipeline finished in ", time.Since(start))
	return st, nil
}
