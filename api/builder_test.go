package api

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/relloyd/snowxfer/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPipelineDefaults(t *testing.T) {
	m := newMocks(t, testSettings())
	b := NewTransferBuilder(m.opts...).FromSource("(SELECT * FROM t) AS x").ShowPipelineSteps(true)
	p, err := b.BuildPipeline()
	require.NoError(t, err)
	// Test 1 - schema mapping and query processing are the default steps.
	assert.Equal(t, []string{"SchemaTransform", "QueryTransform"}, p.TransformNames())
	// Test 2 - the steps are shown.
	assert.Contains(t, m.out.String(), "Pipeline has 2 transforms")
	assert.Contains(t, m.out.String(), "Query processed -> X")
}

func TestBuildPipelineSteps(t *testing.T) {
	m := newMocks(t, testSettings())
	p, err := NewTransferBuilder(m.opts...).
		WithEnvironment(transform.EnvDevelopment).
		WithSchemaMapping(map[string]string{"money": "NUMBER(19,4)"}).
		BuildPipeline()
	require.NoError(t, err)
	assert.Equal(t, []string{"ConnectionTransform", "SchemaTransform"}, p.TransformNames())
	st, ok := p.Transforms[1].(*transform.SchemaTransform)
	require.True(t, ok)
	assert.Equal(t, "NUMBER(19,4)", st.MapType("MONEY"))
	assert.Equal(t, "INTEGER", st.MapType("int"))
	assert.Empty(t, m.out.String())
}

func TestBuilderExecute(t *testing.T) {
	m := newMocks(t, testSettings())
	m.src.ExpectQuery(regexp.QuoteMeta("SELECT TOP 0 * FROM (SELECT id, amount FROM dbo.payments) AS schema_detection")).
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(
			sqlmock.NewColumn("id").OfType("INT", int64(0)),
			sqlmock.NewColumn("amount").OfType("MONEY", ""),
		))
	m.tgt.ExpectExec(regexp.QuoteMeta("CREATE OR REPLACE TABLE PAYMENTS ( ID integer, AMOUNT NUMBER(19,4) )")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	m.src.ExpectQuery(regexp.QuoteMeta("SELECT id, amount FROM dbo.payments")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount"}).AddRow(int64(1), "9.99"))
	m.expectLoad("PAYMENTS", 1)

	st, err := NewTransferBuilder(m.opts...).
		FromSource("(SELECT id, amount FROM dbo.payments) AS p").
		ToDestination("PAYMENTS").
		WithSchemaMapping(map[string]string{"money": "NUMBER(19,4)"}).
		WithEnvironment(transform.EnvDevelopment).
		Execute(context.Background())
	require.NoError(t, err)
	m.verify(t)

	// Test 1 - the custom mapping reaches the DDL and the rows are loaded.
	assert.Equal(t, int64(1), st.RowsTransferred)
	assert.Contains(t, m.out.String(), "Executing custom pipeline: (SELECT id, amount FROM dbo.payments) AS p -> PAYMENTS")
	assert.Contains(t, m.out.String(), "Pipeline steps: [SchemaTransform, ConnectionTransform]")
}

func TestBuilderExecuteRequiresSource(t *testing.T) {
	m := newMocks(t, testSettings())
	_, err := NewTransferBuilder(m.opts...).Execute(context.Background())
	require.Error(t, err)
}
