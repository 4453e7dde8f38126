package components

import (
	"testing"

	"github.com/relloyd/snowxfer/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanPartitions(t *testing.T) {
	// Test 1 - no column or a single partition gives one unfiltered partition.
	p, err := PlanPartitions("", "0", "100", 4)
	require.NoError(t, err)
	assert.Equal(t, []Partition{{ID: 0}}, p)
	p, err = PlanPartitions("id", "0", "100", 1)
	require.NoError(t, err)
	assert.Equal(t, []Partition{{ID: 0}}, p)

	// Test 2 - integer bounds.
	p, err = PlanPartitions("id", "0", "100", 4)
	require.NoError(t, err)
	assert.Equal(t, []Partition{
		{ID: 0, Where: "id < 25 OR id IS NULL"},
		{ID: 1, Where: "id >= 25 AND id < 50"},
		{ID: 2, Where: "id >= 50 AND id < 75"},
		{ID: 3, Where: "id >= 75"},
	}, p)

	// Test 3 - a span narrower than n reduces the partition count.
	p, err = PlanPartitions("id", "1", "3", 10)
	require.NoError(t, err)
	assert.Equal(t, []Partition{
		{ID: 0, Where: "id < 2 OR id IS NULL"},
		{ID: 1, Where: "id >= 2"},
	}, p)

	// Test 4 - decimal bounds.
	p, err = PlanPartitions("amount", "0.5", "1.5", 2)
	require.NoError(t, err)
	assert.Equal(t, []Partition{
		{ID: 0, Where: "amount < 1 OR amount IS NULL"},
		{ID: 1, Where: "amount >= 1"},
	}, p)

	// Test 5 - timestamp bounds.
	p, err = PlanPartitions("created", "2024-01-01", "2024-01-03", 2)
	require.NoError(t, err)
	assert.Equal(t, []Partition{
		{ID: 0, Where: "created < '2024-01-02 00:00:00' OR created IS NULL"},
		{ID: 1, Where: "created >= '2024-01-02 00:00:00'"},
	}, p)
}

func TestPlanPartitionsWideIntegerRange(t *testing.T) {
	// Test 1 - a span wider than the largest int64.
	p, err := PlanPartitions("id", "-9000000000000000000", "9000000000000000000", 4)
	require.NoError(t, err)
	assert.Equal(t, []Partition{
		{ID: 0, Where: "id < -4500000000000000000 OR id IS NULL"},
		{ID: 1, Where: "id >= -4500000000000000000 AND id < 0"},
		{ID: 2, Where: "id >= 0 AND id < 4500000000000000000"},
		{ID: 3, Where: "id >= 4500000000000000000"},
	}, p)
	// Test 2 - the full int64 range.
	p, err = PlanPartitions("id", "-9223372036854775808", "9223372036854775807", 2)
	require.NoError(t, err)
	assert.Equal(t, []Partition{
		{ID: 0, Where: "id < -1 OR id IS NULL"},
		{ID: 1, Where: "id >= -1"},
	}, p)
}

func TestPlanPartitionsErrors(t *testing.T) {
	cases := [][]string{
		{"-1e308", "1.7e308"},
		{"1", "x"},
		{"10", "5"},
		{"1.5", "abc"},
		{"2024-01-02", "2024-01-01"},
		{"2024-01-01", "7"},
		{"abc", "def"},
	}
	for idx, c := range cases {
		_, err := PlanPartitions("col", c[0], c[1], 3)
		assert.Error(t, err, "case %v", idx)
	}
}

func TestPartitionQuery(t *testing.T) {
	p := Partition{ID: 1, Where: "id >= 5"}
	assert.Equal(t, "SELECT * FROM dbo.orders", PartitionQuery("dbo.orders", Partition{}))
	assert.Equal(t, "SELECT * FROM (SELECT * FROM dbo.orders) partitioned_source WHERE id >= 5", PartitionQuery("dbo.orders", p))
	assert.Equal(t, "SELECT * FROM (SELECT a FROM t WHERE b IN (1,2)) partitioned_source WHERE id >= 5",
		PartitionQuery("(SELECT a FROM t WHERE b IN (1,2)) AS recent", p))
}

func TestInnerQuery(t *testing.T) {
	assert.Equal(t, "SELECT 1", InnerQuery(" (SELECT 1) AS x "))
	assert.Equal(t, "SELECT f(a) FROM t", InnerQuery("(SELECT f(a) FROM t) AS y"))
	assert.Equal(t, "no parens", InnerQuery("no parens"))
}

func TestSchemaDetectionQuery(t *testing.T) {
	q := "(SELECT id, name FROM dbo.customers) AS customers"
	assert.Equal(t, "SELECT TOP 0 * FROM (SELECT id, name FROM dbo.customers) AS schema_detection",
		SchemaDetectionQuery(constants.ConnectionTypeSqlServer, q))
	assert.Equal(t, "SELECT * FROM (SELECT id, name FROM dbo.customers) schema_detection WHERE 1=0",
		SchemaDetectionQuery(constants.ConnectionTypeOracle, q))
	assert.Equal(t, "SELECT * FROM (SELECT * FROM public.t) AS schema_detection LIMIT 0",
		SchemaDetectionQuery(constants.ConnectionTypePostgres, "public.t"))
}
