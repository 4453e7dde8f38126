package tabledefinition

import (
	"context"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms"
	"github.com/relloyd/snowxfer/rdbms/shared"
)

// Column metadata.

var columns = []TableColumn{
	{ColName: "col1",
		DataType:      "DATE",
		DataLen:       10,
		DataPrecision: 11,
		DataScale:     5,
		Nullable:      true,
		ColID:         1},
	{ColName: "col2",
		DataType:      "VARCHAR2",
		DataLen:       20,
		DataPrecision: 21,
		DataScale:     6,
		Nullable:      true,
		ColID:         2},
	{ColName: "col3",
		DataType:      "NUMBER",
		DataLen:       30,
		DataPrecision: 31,
		DataScale:     7,
		Nullable:      false,
		ColID:         3},
}

var oraTable = TableColumns{
	TableName: "test.table",
	Owner:     "testOwner",
	Columns:   columns,
}

// Malformed NUMBER data.

var columnsBadNumber = []TableColumn{
	{ColName: "badCol",
		DataType: "NUMBER",
		DataLen:  40,
		// omit Precision but supply Scale for the test.
		DataScale: 8,
		Nullable:  false,
		ColID:     4},
}

var oraTableWithBadNumber = TableColumns{
	TableName: "testTable",
	Owner:     "testOwner",
	Columns:   columnsBadNumber,
}

// A CHAR column.

var columnsChar = []TableColumn{
	{ColName: "CharCol",
		DataType:  "CHAR",
		DataLen:   40,
		DataScale: 8,
		Nullable:  false,
		ColID:     5,
	},
}

var oraTableWithChar = TableColumns{
	TableName: "testTable",
	Owner:     "testOwner",
	Columns:   columnsChar,
}

var catalogColumns = []string{"OWNER", "TABLE_NAME", "COLUMN_NAME", "DATA_TYPE", "DATA_LENGTH", "DATA_PRECISION", "DATA_SCALE", "NULLABLE", "COLUMN_ID"}

func TestGetTableDefinition(t *testing.T) {
	log := logger.NewLogger("test-snowxfer", "error", false)
	conn, mock, err := shared.NewMockConnection(constants.ConnectionTypeOracle)
	if err != nil {
		t.Fatal(err)
	}
	mock.ExpectQuery("from all_tab_columns").
		WithArgs("test", "table").
		WillReturnRows(sqlmock.NewRows(catalogColumns).
			AddRow("TESTER", "TABLENAME", "ID", "NUMBER", int64(22), int64(10), int64(0), "NO", int64(1)).
			AddRow("TESTER", "TABLENAME", "NAME", "VARCHAR2", int64(50), nil, nil, "YES", int64(2)).
			AddRow("TESTER", "TABLENAME", "AMT", "NUMBER", []byte("22"), "10.0", float64(2), nil, int64(3)))

	// Test 1 - a column list is constructed.
	expected := TableColumns{
		Owner:     "TESTER",
		TableName: "TABLENAME",
		Columns: []TableColumn{
			{ColName: "ID", DataType: "NUMBER", DataLen: 22, DataPrecision: 10, DataScale: 0, Nullable: false, ColID: 1},
			{ColName: "NAME", DataType: "VARCHAR2", DataLen: 50, Nullable: true, ColID: 2},
			{ColName: "AMT", DataType: "NUMBER", DataLen: 22, DataPrecision: 10, DataScale: 2, Nullable: true, ColID: 3},
		},
	}
	got, err := GetTableDefinition(context.Background(), log, conn, rdbms.SchemaTable{SchemaTable: "test.table"})
	if err != nil {
		t.Fatal("test 1 - unexpected error while fetching table definition: ", err)
	}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("test 1 - table definition expected: %v; got: %v", expected, got)
	}
	if err = mock.ExpectationsWereMet(); err != nil {
		t.Fatal("test 1 - ", err)
	}
	if names := got.ColumnNames(); !reflect.DeepEqual(names, []string{"ID", "NAME", "AMT"}) {
		t.Fatal("test 1 - unexpected column names: ", names)
	}
}

func TestGetTableDefinitionWithoutSchema(t *testing.T) {
	log := logger.NewLogger("test-snowxfer", "error", false)
	conn, mock, err := shared.NewMockConnection(constants.ConnectionTypeSqlServer)
	if err != nil {
		t.Fatal(err)
	}
	// Test 1 - quotes are removed and the current schema is used.
	mock.ExpectQuery(`schema_name\(\)`).
		WithArgs("Orders").
		WillReturnRows(sqlmock.NewRows(catalogColumns).
			AddRow("dbo", "Orders", "OrderId", "int", nil, int64(10), int64(0), "NO", int64(1)))
	got, err := GetTableDefinition(context.Background(), log, conn, rdbms.SchemaTable{SchemaTable: `"Orders"`})
	if err != nil {
		t.Fatal("test 1 - ", err)
	}
	if got.Owner != "dbo" || len(got.Columns) != 1 || got.Columns[0].DataPrecision != 10 {
		t.Fatal("test 1 - unexpected table definition: ", got)
	}
	// Test 2 - no rows is an error.
	mock.ExpectQuery(`schema_name\(\)`).WithArgs("missing").WillReturnRows(sqlmock.NewRows(catalogColumns))
	if _, err = GetTableDefinition(context.Background(), log, conn, rdbms.SchemaTable{SchemaTable: "missing"}); err == nil {
		t.Fatal("test 2 - expected error when no columns are found")
	}
	// Test 3 - bad numbers are errors.
	mock.ExpectQuery(`schema_name\(\)`).WithArgs("bad").WillReturnRows(sqlmock.NewRows(catalogColumns).
		AddRow("dbo", "bad", "c", "int", "abc", nil, nil, "YES", int64(1)))
	if _, err = GetTableDefinition(context.Background(), log, conn, rdbms.SchemaTable{SchemaTable: "bad"}); err == nil {
		t.Fatal("test 3 - expected error for non-numeric DATA_LENGTH")
	}
	// Test 4 - unsupported database types are errors.
	junk, _, _ := shared.NewMockConnection("unregisteredDatabaseType123")
	if _, err = GetTableDefinition(context.Background(), log, junk, rdbms.SchemaTable{SchemaTable: "t"}); err == nil {
		t.Fatal("test 4 - expected error for unsupported database type")
	}
}

func TestConvertTableDefinitionToSnowflake(t *testing.T) {
	log := logger.NewLogger("test-snowxfer", "error", false)
	mapper, err := GetMapper(constants.ConnectionTypeOracle)
	if err != nil {
		t.Fatal(err)
	}
	testTable := rdbms.SchemaTable{SchemaTable: "test.table"}

	// TEST 1 - overwrite.
	str, err := ConvertTableDefinitionToSnowflake(log, oraTable, testTable, mapper, constants.TransferModeOverwrite)
	if err != nil {
		t.Fatal("Unable to convert Oracle table definition to Snowflake: ", err)
	}
	expected := "CREATE OR REPLACE TABLE test.table ( COL1 timestamp_ntz, COL2 varchar(20), COL3 number(31,7) not null )"
	if str != expected {
		t.Fatalf("Unexpected CREATE TABLE statement returned. Expected: '%v'; got: '%v'", expected, str)
	}

	// TEST 2 - append with known bad NUMBER data (supply scale, but no precision).
	str, err = ConvertTableDefinitionToSnowflake(log, oraTableWithBadNumber, testTable, mapper, constants.TransferModeAppend)
	if err != nil {
		t.Fatal("Unable to convert Oracle table definition to Snowflake: ", err)
	}
	expected = "CREATE TABLE IF NOT EXISTS test.table ( BADCOL number not null )"
	if str != expected {
		t.Fatalf("Unexpected CREATE TABLE statement returned. Expected: '%v'; got: '%v'", expected, str)
	}

	// TEST 3 - error mode with a CHAR column.
	str, err = ConvertTableDefinitionToSnowflake(log, oraTableWithChar, testTable, mapper, constants.TransferModeError)
	if err != nil {
		t.Fatal("Unable to convert Oracle table definition to Snowflake: ", err)
	}
	expected = "CREATE TABLE test.table ( CHARCOL varchar(40) not null )"
	if str != expected {
		t.Fatalf("Unexpected CREATE TABLE statement returned. Expected: '%v'; got: '%v'", expected, str)
	}

	// TEST 4 - unknown types, known target types and awkward names.
	cols := TableColumns{TableName: "T", Columns: []TableColumn{
		{ColName: "shape", DataType: "SDO_GEOMETRY", Nullable: true},
		{ColName: "my col", DataType: "anything", TargetType: "boolean", Nullable: true},
	}}
	str, err = ConvertTableDefinitionToSnowflake(log, cols, rdbms.SchemaTable{}, mapper, constants.TransferModeOverwrite)
	if err != nil {
		t.Fatal("test 4 - ", err)
	}
	expected = `CREATE OR REPLACE TABLE T ( SHAPE varchar, "my col" boolean )`
	if str != expected {
		t.Fatalf("test 4 - expected: '%v'; got: '%v'", expected, str)
	}

	// TEST 5 - bad mode and empty columns.
	if _, err = ConvertTableDefinitionToSnowflake(log, oraTable, testTable, mapper, "merge"); err == nil {
		t.Fatal("test 5 - expected error for unsupported mode")
	}
	if _, err = ConvertTableDefinitionToSnowflake(log, TableColumns{}, testTable, mapper, constants.TransferModeAppend); err == nil {
		t.Fatal("test 5 - expected error for no columns")
	}
}
