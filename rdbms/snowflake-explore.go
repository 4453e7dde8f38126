package rdbms

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/helper"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms/shared"
)

// SnowflakeContext is the session's current database, schema and warehouse.
type SnowflakeContext struct {
	Database  string
	Schema    string
	Warehouse string
}

func (c SnowflakeContext) String() string {
	return fmt.Sprintf("%v.%v on %v", c.Database, c.Schema, c.Warehouse)
}

// SnowflakeTestConnection confirms the session works and returns its context.
func SnowflakeTestConnection(ctx context.Context, log logger.Logger, db shared.Connector) (SnowflakeContext, error) {
	var d, s, w sql.NullString
	err := db.QueryRowContext(ctx, "SELECT CURRENT_DATABASE(), CURRENT_SCHEMA(), CURRENT_WAREHOUSE()").Scan(&d, &s, &w)
	if err != nil {
		return SnowflakeContext{}, errors.Wrap(err, "connection test failed")
	}
	c := SnowflakeContext{Database: d.String, Schema: s.String, Warehouse: w.String}
	log.Info("Connection test successful: ", c)
	return c, nil
}

// SnowflakeListTablesSql filters by name pattern or by schema, not both; pattern wins.
func SnowflakeListTablesSql(pattern string, schema string) string {
	switch {
	case pattern != "":
		return fmt.Sprintf("SHOW TABLES LIKE '%v'", helper.EscapeSingleQuotes(pattern))
	case schema != "":
		return fmt.Sprintf("SHOW TABLES IN SCHEMA %v", schema)
	default:
		return "SHOW TABLES"
	}
}

func SnowflakeListTables(ctx context.Context, log logger.Logger, db shared.Connector, pattern string, schema string) (*ResultTable, error) {
	return QueryTable(ctx, log, db, SnowflakeListTablesSql(pattern, schema))
}

func SnowflakeDescribeTable(ctx context.Context, log logger.Logger, db shared.Connector, table string) (*ResultTable, error) {
	return QueryTable(ctx, log, db, fmt.Sprintf("DESCRIBE TABLE %v", table))
}

func SnowflakeQuickSample(ctx context.Context, log logger.Logger, db shared.Connector, table string, n int) (*ResultTable, error) {
	return QueryTable(ctx, log, db, fmt.Sprintf("SELECT * FROM %v SAMPLE (%d ROWS)", table, n))
}

// SnowflakeGetDDL returns the DDL of the named object; objectType defaults to TABLE.
func SnowflakeGetDDL(ctx context.Context, db shared.Connector, objectName string, objectType string) (string, error) {
	if objectType == "" {
		objectType = "TABLE"
	}
	var ddl sql.NullString
	q := fmt.Sprintf("SELECT GET_DDL('%v', '%v') AS ddl", helper.EscapeSingleQuotes(strings.ToUpper(objectType)), helper.EscapeSingleQuotes(objectName))
	if err := db.QueryRowContext(ctx, q).Scan(&ddl); err != nil {
		return "", errors.Wrapf(err, "failed to get DDL for %v %v", objectType, objectName)
	}
	return ddl.String, nil
}

// SnowflakeTableInfo summarises a table.
type SnowflakeTableInfo struct {
	RowCount    int64    `json:"row_count"`
	Columns     []string `json:"columns"`
	ColumnCount int      `json:"column_count"`
}

func SnowflakeGetTableInfo(ctx context.Context, log logger.Logger, db shared.Connector, table string) (SnowflakeTableInfo, error) {
	retval := SnowflakeTableInfo{}
	n, err := QueryInt64(ctx, db, fmt.Sprintf("SELECT COUNT(*) AS row_count FROM %v", table))
	if err != nil {
		return retval, errors.Wrapf(err, "failed to get table info for %v", table)
	}
	retval.RowCount = n
	desc, err := SnowflakeDescribeTable(ctx, log, db, table)
	if err != nil {
		return retval, errors.Wrapf(err, "failed to get table info for %v", table)
	}
	nameIdx := desc.ColumnIndex("name")
	if nameIdx < 0 {
		return retval, fmt.Errorf("failed to get table info for %v: DESCRIBE returned no name column", table)
	}
	retval.Columns = make([]string, 0, len(desc.Rows))
	for _, r := range desc.Rows {
		s, err := helper.GetStringFromInterfacePreserveTimeZone(r[nameIdx])
		if err != nil {
			return retval, err
		}
		retval.Columns = append(retval.Columns, s)
	}
	retval.ColumnCount = len(retval.Columns)
	return retval, nil
}

// SnowflakeTableExists checks INFORMATION_SCHEMA for the table in the given or current schema.
func SnowflakeTableExists(ctx context.Context, db shared.Connector, table string) (bool, error) {
	st := SchemaTable{SchemaTable: table}
	name := strings.Trim(st.SnowflakeTableName(), `"`)
	schema := st.GetSchema()
	infoSchema := "INFORMATION_SCHEMA.TABLES"
	if d := st.GetDatabase(); d != "" {
		infoSchema = d + "." + infoSchema
	}
	var q string
	var args []interface{}
	if schema == "" {
		q = fmt.Sprintf("SELECT COUNT(*) FROM %v WHERE TABLE_SCHEMA = CURRENT_SCHEMA() AND TABLE_NAME = ?", infoSchema)
		args = []interface{}{name}
	} else {
		if !strings.HasPrefix(schema, `"`) {
			schema = strings.ToUpper(schema)
		}
		q = fmt.Sprintf("SELECT COUNT(*) FROM %v WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?", infoSchema)
		args = []interface{}{strings.Trim(schema, `"`), name}
	}
	n, err := QueryInt64(ctx, db, q, args...)
	if err != nil {
		return false, errors.Wrapf(err, "unable to check whether table %v exists", table)
	}
	return n > 0, nil
}
