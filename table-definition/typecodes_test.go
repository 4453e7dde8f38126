package tabledefinition

import (
	"context"
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms"
	"github.com/relloyd/snowxfer/rdbms/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeCodeToSnowflake(t *testing.T) {
	log := logger.NewLogger("test-snowxfer", "error", false)
	cases := map[int]string{
		1: "varchar", 12: "varchar", -1: "varchar", -9: "varchar",
		4: "integer", -5: "integer", 5: "integer", -6: "integer",
		6: "float", 8: "float",
		2: "number(18,2)", 3: "number(18,2)",
		91:  "date",
		93:  "timestamp_ntz",
		16:  "boolean",
		999: "varchar",
	}
	for code, want := range cases {
		assert.Equal(t, want, TypeCodeToSnowflake(log, code), "code %v", code)
	}
}

func TestTypeCodeFromScanType(t *testing.T) {
	var b []byte
	cases := []struct {
		t    reflect.Type
		want int
	}{
		{reflect.TypeOf(""), TypeCodeVarchar},
		{reflect.TypeOf(int64(0)), TypeCodeBigInt},
		{reflect.TypeOf(int32(0)), TypeCodeInteger},
		{reflect.TypeOf(float64(0)), TypeCodeDouble},
		{reflect.TypeOf(float32(0)), TypeCodeFloat},
		{reflect.TypeOf(true), TypeCodeBoolean},
		{reflect.TypeOf(time.Time{}), TypeCodeTimestamp},
		{reflect.TypeOf(&time.Time{}), TypeCodeTimestamp},
		{reflect.TypeOf(sql.NullString{}), TypeCodeVarchar},
		{reflect.TypeOf(sql.NullInt64{}), TypeCodeBigInt},
		{reflect.TypeOf(sql.NullFloat64{}), TypeCodeDouble},
		{reflect.TypeOf(sql.NullBool{}), TypeCodeBoolean},
		{reflect.TypeOf(b), TypeCodeLongVarchar},
		{reflect.TypeOf(struct{}{}), TypeCodeUnknown},
		{nil, TypeCodeUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, TypeCodeFromScanType(c.t), "type %v", c.t)
	}
}

func TestColumnsFromColumnTypes(t *testing.T) {
	log := logger.NewLogger("test-snowxfer", "error", false)
	conn, mock, err := shared.NewMockConnectionExactSql(constants.ConnectionTypeSqlServer)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT TOP 0 * FROM t").WillReturnRows(sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("ID").OfType("INT", int64(0)),
		sqlmock.NewColumn("NOTE").OfType("GEOGRAPHY", ""),
		sqlmock.NewColumn("AMOUNT").OfType("DECIMAL", float64(0)).WithPrecisionAndScale(10, 2),
	))
	rows, err := conn.QueryContext(context.Background(), "SELECT TOP 0 * FROM t")
	require.NoError(t, err)
	defer rows.Close()
	colTypes, err := rows.ColumnTypes()
	require.NoError(t, err)

	mapper, err := GetMapper(constants.ConnectionTypeSqlServer)
	require.NoError(t, err)
	tabCols := ColumnsFromColumnTypes(log, colTypes, mapper)
	require.Len(t, tabCols.Columns, 3)
	assert.Equal(t, "int", tabCols.Columns[0].DataType)
	assert.Equal(t, "", tabCols.Columns[0].TargetType)
	assert.Equal(t, "varchar", tabCols.Columns[1].TargetType)
	assert.Equal(t, 10, tabCols.Columns[2].DataPrecision)
	assert.Equal(t, 2, tabCols.Columns[2].DataScale)

	ddl, err := ConvertTableDefinitionToSnowflake(log, tabCols, rdbms.SchemaTable{SchemaTable: "T"}, mapper, constants.TransferModeOverwrite)
	require.NoError(t, err)
	assert.Equal(t, "CREATE OR REPLACE TABLE T ( ID integer, NOTE varchar, AMOUNT number(10,2) )", ddl)
}
