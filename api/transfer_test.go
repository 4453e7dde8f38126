package api

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/relloyd/snowxfer/actions"
	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/rdbms/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalogColumns = []string{"OWNER", "TABLE_NAME", "COLUMN_NAME", "DATA_TYPE", "DATA_LENGTH", "DATA_PRECISION", "DATA_SCALE", "NULLABLE", "COLUMN_ID"}

type mocks struct {
	src    sqlmock.Sqlmock
	tgt    sqlmock.Sqlmock
	out    *bytes.Buffer
	opts   []Option
	source shared.Connector
	target shared.Connector
}

// newMocks returns options that run against sqlmock connections with s as the configuration.
func newMocks(t *testing.T, s *config.Settings) *mocks {
	src, srcMock, err := shared.NewMockConnection(constants.ConnectionTypeSqlServer)
	require.NoError(t, err)
	tgt, tgtMock, err := shared.NewMockConnection(constants.ConnectionTypeSnowflake)
	require.NoError(t, err)
	m := &mocks{src: srcMock, tgt: tgtMock, out: &bytes.Buffer{}, source: src, target: tgt}
	m.opts = []Option{
		WithSettings(s),
		WithLogger(testLogger()),
		WithOutput(m.out),
		WithConnections(src, tgt),
		WithTransferOptions(actions.WithTempDir(t.TempDir())),
	}
	return m
}

func (m *mocks) expectOrdersTable() {
	m.src.ExpectQuery("from information_schema.columns").
		WithArgs("dbo", "orders").
		WillReturnRows(sqlmock.NewRows(catalogColumns).
			AddRow("dbo", "orders", "id", "int", nil, int64(10), int64(0), "NO", int64(1)).
			AddRow("dbo", "orders", "note", "varchar", int64(20), nil, nil, "YES", int64(2)))
}

func (m *mocks) expectLoad(table string, rows int64) {
	m.tgt.ExpectExec(`PUT 'file://.*\.csv\.gz' @%` + table + `/`).WillReturnResult(sqlmock.NewResult(0, 0))
	m.tgt.ExpectQuery(`COPY INTO ` + table + ` FROM @%` + table + `/`).
		WillReturnRows(sqlmock.NewRows([]string{"rows_loaded"}).AddRow(rows))
}

func (m *mocks) verify(t *testing.T) {
	require.NoError(t, m.src.ExpectationsWereMet())
	require.NoError(t, m.tgt.ExpectationsWereMet())
}

func TestIsQuery(t *testing.T) {
	assert.True(t, IsQuery(" (SELECT 1) AS x"))
	assert.False(t, IsQuery("dbo.orders"))
	assert.False(t, IsQuery("SELECT 1"))
}

func TestDeriveDestination(t *testing.T) {
	assert.Equal(t, "ORDERS", DeriveDestination("dbo.orders"))
	assert.Equal(t, "RECENT_ORDERS", DeriveDestination("(SELECT * FROM dbo.orders) AS recent_orders"))
	assert.Equal(t, constants.DefaultDestinationTable, DeriveDestination("(SELECT 1)"))
}

func TestApplyLimitToQuery(t *testing.T) {
	assert.Equal(t, "(SELECT TOP 10 * FROM t) AS x", ApplyLimitToQuery("(SELECT * FROM t) AS x", 10))
	assert.Equal(t, "(SELECT TOP 5 * FROM t) AS x", ApplyLimitToQuery("(SELECT TOP 5 * FROM t) AS x", 10))
}

func TestLimitTable(t *testing.T) {
	assert.Equal(t, "(SELECT TOP 10 * FROM dbo.orders) AS ORDERS", LimitTable(constants.ConnectionTypeSqlServer, "dbo.orders", "ORDERS", 10))
	assert.Equal(t, "(SELECT * FROM orders WHERE ROWNUM <= 10) ORDERS", LimitTable(constants.ConnectionTypeOracle, "orders", "ORDERS", 10))
	assert.Equal(t, "(SELECT * FROM orders LIMIT 10) AS ORDERS", LimitTable(constants.ConnectionTypePostgres, "orders", "ORDERS", 10))
}

func TestTransferQuery(t *testing.T) {
	m := newMocks(t, testSettings())
	m.src.ExpectQuery(regexp.QuoteMeta("SELECT TOP 0 * FROM (SELECT id, name FROM dbo.orders) AS schema_detection")).
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(
			sqlmock.NewColumn("id").OfType("INT", int64(0)),
			sqlmock.NewColumn("name").OfType("VARCHAR", ""),
		))
	m.tgt.ExpectExec(regexp.QuoteMeta("CREATE OR REPLACE TABLE RECENT ( ID integer, NAME varchar )")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	m.src.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM dbo.orders")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "a").AddRow(int64(2), "b"))
	m.expectLoad("RECENT", 2)

	// Test 1 - the destination is the query alias.
	st, err := Transfer(context.Background(), "(SELECT id, name FROM dbo.orders) AS recent", m.opts...)
	require.NoError(t, err)
	m.verify(t)
	assert.Equal(t, int64(2), st.RowsTransferred)

	// Test 2 - progress and the summary are printed.
	assert.Contains(t, m.out.String(), "Detected custom query")
	assert.Contains(t, m.out.String(), "Auto-derived destination: RECENT")
	assert.Contains(t, m.out.String(), "Rows Transferred: 2")
}

func TestTransferTable(t *testing.T) {
	s := testSettings()
	m := newMocks(t, s)
	m.expectOrdersTable()
	m.tgt.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS ORDERS_COPY ( ID integer not null, NOTE varchar(20) )")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	m.src.ExpectQuery(regexp.QuoteMeta("SELECT * FROM dbo.orders")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "note"}).AddRow(int64(1), "x"))
	m.expectLoad("ORDERS_COPY", 1)

	opts := append(m.opts, WithDestination("ORDERS_COPY"), WithMode(constants.TransferModeAppend), WithShowProgress(false))
	st, err := Transfer(context.Background(), "dbo.orders", opts...)
	require.NoError(t, err)
	m.verify(t)
	assert.Equal(t, int64(1), st.RowsTransferred)
	assert.Empty(t, m.out.String())
	// Test 2 - the base settings are untouched.
	assert.Equal(t, "", s.Transfer.SourceTable)
	assert.Equal(t, "", s.Transfer.Mode)
}

func TestTransferSample(t *testing.T) {
	m := newMocks(t, testSettings())
	m.src.ExpectQuery(regexp.QuoteMeta("SELECT TOP 0 * FROM (SELECT TOP 10 * FROM dbo.orders) AS schema_detection")).
		WillReturnRows(sqlmock.NewRowsWithColumnDefinition(sqlmock.NewColumn("id").OfType("INT", int64(0))))
	m.tgt.ExpectExec(regexp.QuoteMeta("CREATE OR REPLACE TABLE ORDERS_SAMPLE ( ID integer )")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	m.src.ExpectQuery(regexp.QuoteMeta("SELECT TOP 10 * FROM dbo.orders")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	m.expectLoad("ORDERS_SAMPLE", 1)

	// Test 1 - a table sample reads the first rows into a _sample table.
	st, err := TransferSample(context.Background(), "dbo.orders", 10, m.opts...)
	require.NoError(t, err)
	m.verify(t)
	assert.Equal(t, int64(1), st.RowsTransferred)
	assert.Contains(t, m.out.String(), "Sampling 10 rows for testing")
	assert.Contains(t, m.out.String(), "Using query with limit: (SELECT TOP 10 * FROM dbo.orders) AS ORDERS_SAMPLE")
}

func TestTransferInvalidSettings(t *testing.T) {
	s := testSettings()
	s.Snowflake.Account = ""
	m := newMocks(t, s)
	_, err := Transfer(context.Background(), "dbo.orders", append(m.opts, WithShowProgress(false))...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing Snowflake account")
}

func TestTransferInvalidMode(t *testing.T) {
	m := newMocks(t, testSettings())
	_, err := Transfer(context.Background(), "dbo.orders", append(m.opts, WithMode("replace"), WithShowProgress(false))...)
	require.Error(t, err)
}
