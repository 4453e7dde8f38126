package transform

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/constants"
)

// TransformBuilder assembles a Pipeline step by step.
type TransformBuilder struct {
	transforms []Transform
}

func NewTransformBuilder() *TransformBuilder {
	return &TransformBuilder{}
}

func (b *TransformBuilder) AddSchemaMapping(sourceType string, targetType string, custom map[string]string) *TransformBuilder {
	b.transforms = append(b.transforms, NewSchemaTransform(sourceType, targetType, custom))
	return b
}

func (b *TransformBuilder) AddQueryProcessing(destination string) *TransformBuilder {
	b.transforms = append(b.transforms, NewQueryTransform(destination))
	return b
}

func (b *TransformBuilder) AddConnectionOptimization(env string) *TransformBuilder {
	b.transforms = append(b.transforms, NewConnectionTransform(env))
	return b
}

func (b *TransformBuilder) AddCustomTransform(t Transform) *TransformBuilder {
	b.transforms = append(b.transforms, t)
	return b
}

func (b *TransformBuilder) Build() *Pipeline {
	t := make([]Transform, len(b.transforms))
	copy(t, b.transforms)
	return NewPipeline(t...)
}

// CreateTransferPipeline returns the standard pipeline: schema mapping, connection tuning for env
// and, optionally, query processing.
func CreateTransferPipeline(sourceType string, env string, queryValidation bool) *Pipeline {
	b := NewTransformBuilder().
		AddSchemaMapping(sourceType, constants.ConnectionTypeSnowflake, nil).
		AddConnectionOptimization(env)
	if queryValidation {
		b.AddQueryProcessing("")
	}
	return b.Build()
}

// SourceTransformFor returns the schema transform for a supported source type.
func SourceTransformFor(sourceType string) (Transform, error) {
	switch strings.ToLower(sourceType) {
	case constants.ConnectionTypeSqlServer, constants.ConnectionTypePostgres:
		return NewSchemaTransform(strings.ToLower(sourceType), constants.ConnectionTypeSnowflake, nil), nil
	}
	return nil, errors.Errorf("unsupported source type: %v", sourceType)
}

var sampleSchema = []Column{
	{Name: "ID", Type: "int", Nullable: false},
	{Name: "Column0", Type: "varchar", Nullable: true},
	{Name: "Column1", Type: "varchar", Nullable: true},
}

// ShowPipelineSteps writes the steps of p to w. If sample is not nil each step is
// also run against a representative input.
func ShowPipelineSteps(w io.Writer, p *Pipeline, sample interface{}) {
	_, _ = fmt.Fprintln(w, "Pipeline Analysis")
	_, _ = fmt.Fprintln(w, strings.Repeat("=", 50))
	_, _ = fmt.Fprintf(w, "Pipeline has %d transforms:\n", len(p.Transforms))
	for idx, t := range p.Transforms {
		_, _ = fmt.Fprintf(w, "  %d. %v\n", idx+1, t.Name())
	}
	if sample == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "\nSample transformation with input: %v\n", sample)
	for idx, t := range p.Transforms {
		step := idx + 1
		var msg string
		var err error
		var out interface{}
		switch t.(type) {
		case *SchemaTransform:
			if out, err = t.Encode(sampleSchema); err == nil {
				msg = fmt.Sprintf("Schema mapping configured (%d columns)", len(out.([]TargetColumn)))
			}
		case *QueryTransform:
			if out, err = t.Encode(sample); err == nil {
				if m, ok := out.(QueryMetadata); ok {
					msg = "Query processed -> " + m.DestinationTable
				} else {
					msg = "Query processed -> Unknown"
				}
			}
		case *ConnectionTransform:
			if out, err = t.Encode(ConnectionParams{FetchSize: 1000, MaxWorkers: 4}); err == nil {
				msg = fmt.Sprintf("Connection optimized -> %v", out)
			}
		default:
			if _, err = t.Encode(sample); err == nil {
				msg = "Transform applied"
			}
		}
		if err != nil {
			msg = fmt.Sprintf("Transform configured (test failed: %v)", err)
		}
		_, _ = fmt.Fprintf(w, "  Step %d (%v): %v\n", step, t.Name(), msg)
	}
	_, _ = fmt.Fprintln(w, "\nPipeline Analysis Complete")
}
