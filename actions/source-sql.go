package actions

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/relloyd/snowxfer/components"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/helper"
	"github.com/relloyd/snowxfer/transform"
)

var (
	reHasLimit    = regexp.MustCompile(`(?i)\bLIMIT\b`)
	reHasTop      = regexp.MustCompile(`(?i)\bTOP\b`)
	reLeadSelect  = regexp.MustCompile(`(?i)^\s*SELECT\s+`)
	reQueryPrefix = regexp.MustCompile(`^\s*\(`)
)

// AsSubquery returns q in the "(SELECT ...) AS alias" form used for query sources.
// Queries already in that form are returned as they are.
func AsSubquery(q string) string {
	q = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(q), ";"))
	if reQueryPrefix.MatchString(q) {
		return q
	}
	return fmt.Sprintf("(%v) AS source_query", q)
}

// LimitSource wraps a table name or query source so that at most n rows are read from it.
func LimitSource(connectionType string, source string, n int) string {
	inner := components.SelectFromSource(source)
	switch connectionType {
	case constants.ConnectionTypeSqlServer:
		return fmt.Sprintf("(SELECT TOP %d * FROM (%v) AS limited_source) AS limited", n, inner)
	case constants.ConnectionTypeOracle:
		return fmt.Sprintf("(SELECT * FROM (%v) limited_source WHERE ROWNUM <= %d) limited", inner, n)
	default:
		return fmt.Sprintf("(SELECT * FROM (%v) AS limited_source LIMIT %d) AS limited", inner, n)
	}
}

// CountQuery returns a statement that counts the rows of a table name or query source.
func CountQuery(connectionType string, source string) string {
	inner := components.SelectFromSource(source)
	if connectionType == constants.ConnectionTypeOracle {
		return fmt.Sprintf("SELECT COUNT(*) FROM (%v) row_count", inner)
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM (%v) AS row_count", inner)
}

// InjectRowLimit adds TOP n for SQL Server or LIMIT n elsewhere when the query has neither.
// A SQL Server query that does not start with SELECT is left alone.
func InjectRowLimit(connectionType string, sqltext string, n int) string {
	if n <= 0 || reHasLimit.MatchString(sqltext) || reHasTop.MatchString(sqltext) {
		return sqltext
	}
	if connectionType == constants.ConnectionTypeSqlServer {
		loc := reLeadSelect.FindStringIndex(sqltext)
		if loc == nil {
			return sqltext
		}
		return fmt.Sprintf("%vSELECT TOP %d %v", sqltext[:loc[0]], n, sqltext[loc[1]:])
	}
	return fmt.Sprintf("%v LIMIT %d", strings.TrimSuffix(strings.TrimSpace(sqltext), ";"), n)
}

// PreviewSql returns a statement that reads the first n rows of table.
func PreviewSql(connectionType string, table string, n int) string {
	switch connectionType {
	case constants.ConnectionTypeSqlServer:
		return fmt.Sprintf("SELECT TOP %d * FROM %v", n, table)
	case constants.ConnectionTypeOracle:
		return fmt.Sprintf("SELECT * FROM %v WHERE ROWNUM <= %d", table, n)
	default:
		return fmt.Sprintf("SELECT * FROM %v LIMIT %d", table, n)
	}
}

// ListTablesSql returns the INFORMATION_SCHEMA query for base tables, optionally in one schema.
func ListTablesSql(connectionType string, schema string) string {
	switch connectionType {
	case constants.ConnectionTypeOracle:
		sqltext := "SELECT owner AS table_schema, table_name, 'BASE TABLE' AS table_type FROM all_tables"
		if schema != "" {
			sqltext += fmt.Sprintf(" WHERE owner = '%v'", helper.EscapeSingleQuotes(strings.ToUpper(schema)))
		}
		return sqltext + " ORDER BY owner, table_name"
	case constants.ConnectionTypeNetezza:
		sqltext := "SELECT schema AS table_schema, tablename AS table_name, 'BASE TABLE' AS table_type FROM _v_table"
		if schema != "" {
			sqltext += fmt.Sprintf(" WHERE schema = '%v'", helper.EscapeSingleQuotes(strings.ToUpper(schema)))
		}
		return sqltext + " ORDER BY schema, tablename"
	}
	tableType := "TABLE_TYPE = 'BASE TABLE'"
	if connectionType == constants.ConnectionTypeDatabricks { // MANAGED or EXTERNAL
		tableType = "TABLE_TYPE <> 'VIEW'"
	}
	sqltext := "SELECT TABLE_SCHEMA AS table_schema, TABLE_NAME AS table_name, TABLE_TYPE AS table_type FROM INFORMATION_SCHEMA.TABLES WHERE " + tableType
	if schema != "" {
		sqltext += fmt.Sprintf(" AND TABLE_SCHEMA = '%v'", helper.EscapeSingleQuotes(schema))
	}
	return sqltext + " ORDER BY TABLE_SCHEMA, TABLE_NAME"
}

// DefaultDestination returns the destination for a transfer when none was configured.
// Queries use their alias; tables use their unqualified name in upper case.
func DefaultDestination(query string, sourceTable string) string {
	if query != "" {
		return transform.DestinationFromQuery(query)
	}
	parts := strings.Split(sourceTable, ".")
	return strings.ToUpper(strings.Trim(parts[len(parts)-1], `"[]`))
}
