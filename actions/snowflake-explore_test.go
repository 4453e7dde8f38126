package actions

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms"
	"github.com/relloyd/snowxfer/rdbms/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockSnowflake(t *testing.T) (*SnowflakeExploreConfig, sqlmock.Sqlmock, *bytes.Buffer) {
	conn, mock, err := shared.NewMockConnection(constants.ConnectionTypeSnowflake)
	require.NoError(t, err)
	out := &bytes.Buffer{}
	cfg := &SnowflakeExploreConfig{
		Settings: testSettings(),
		Output:   out,
		OpenSnowflake: func(ctx context.Context, log logger.Logger, s config.Snowflake) (shared.Connector, error) {
			return conn, nil
		},
	}
	return cfg, mock, out
}

func TestRunSnowflakeTestConnection(t *testing.T) {
	log := logger.NewLogger("snowxfer", "error", false)
	cfg, mock, out := mockSnowflake(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT CURRENT_DATABASE(), CURRENT_SCHEMA(), CURRENT_WAREHOUSE()")).
		WillReturnRows(sqlmock.NewRows([]string{"d", "s", "w"}).AddRow("DB", "PUBLIC", "WH"))
	require.NoError(t, RunSnowflakeTestConnection(context.Background(), log, cfg))
	assert.Contains(t, out.String(), "PUBLIC")
	assert.Contains(t, out.String(), "acct")
}

func TestRunSnowflakeTables(t *testing.T) {
	log := logger.NewLogger("snowxfer", "error", false)
	cfg, mock, out := mockSnowflake(t)
	mock.ExpectQuery(regexp.QuoteMeta("SHOW TABLES LIKE 'ORD%'")).
		WillReturnRows(sqlmock.NewRows([]string{"created_on", "name", "database_name", "schema_name", "kind", "comment", "rows"}).
			AddRow("2024-01-01", "ORDERS", "DB", "PUBLIC", "TABLE", "", int64(12)))
	require.NoError(t, RunSnowflakeTables(context.Background(), log, cfg, "ORD%", ""))
	assert.Contains(t, out.String(), "ORDERS")
	assert.NotContains(t, out.String(), "kind")
}

func TestRunSnowflakeDDL(t *testing.T) {
	log := logger.NewLogger("snowxfer", "error", false)
	cfg, mock, out := mockSnowflake(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT GET_DDL('TABLE', 'ORDERS') AS ddl")).
		WillReturnRows(sqlmock.NewRows([]string{"ddl"}).AddRow("create or replace TABLE ORDERS (ID NUMBER(38,0));\n"))
	require.NoError(t, RunSnowflakeDDL(context.Background(), log, cfg, "ORDERS", ""))
	assert.Equal(t, "create or replace TABLE ORDERS (ID NUMBER(38,0));\n", out.String())
}

func TestRunSnowflakeSampleEmpty(t *testing.T) {
	log := logger.NewLogger("snowxfer", "error", false)
	cfg, mock, out := mockSnowflake(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM ORDERS SAMPLE (10 ROWS)")).WillReturnRows(sqlmock.NewRows([]string{"ID"}))
	require.NoError(t, RunSnowflakeSample(context.Background(), log, cfg, "ORDERS", 0))
	assert.Equal(t, "No data found in table\n", out.String())
}

func TestPick(t *testing.T) {
	r := &rdbms.ResultTable{
		Header: []string{"a", "b", "c"},
		Rows:   [][]interface{}{{1, 2, 3}},
	}
	got := pick(r, "c", "missing", "a")
	assert.Equal(t, []string{"c", "a"}, got.Header)
	assert.Equal(t, [][]interface{}{{3, 1}}, got.Rows)
	assert.Equal(t, r, pick(r, "x"))
}
