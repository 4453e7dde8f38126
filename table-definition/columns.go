package tabledefinition

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/helper"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms"
	"github.com/relloyd/snowxfer/rdbms/shared"
)

type mapTabDefinitionConfigT map[string]tabDefinitionConfigT

const informationSchemaColumns = `select TABLE_SCHEMA AS OWNER, TABLE_NAME, COLUMN_NAME, DATA_TYPE, COALESCE(CHARACTER_MAXIMUM_LENGTH, DATETIME_PRECISION) AS DATA_LENGTH,
							NUMERIC_PRECISION AS DATA_PRECISION, NUMERIC_SCALE AS DATA_SCALE, IS_NULLABLE AS NULLABLE,
							ORDINAL_POSITION AS COLUMN_ID
							from information_schema.columns
							where %v
							order by ORDINAL_POSITION`

// tabDefinitionConfig contains SQL statements able to get table definition data for each connection type.
// The first bind is the schema and the second is the table when withSchema is used.
// Ensure nullable is either YES or NO.
var tabDefinitionConfig = mapTabDefinitionConfigT{
	constants.ConnectionTypeOracle: {
		withSchema: `select owner, table_name, column_name, data_type, data_length, data_precision, data_scale,
							decode(nullable,'Y','YES','N','NO') nullable, column_id
							from all_tab_columns
							where owner = upper(?)
							and table_name = upper(?)
							order by column_id`, // Oracle makes the column names upper case unless quoted.
		withoutSchema: `select user as owner, table_name, column_name, data_type, data_length, data_precision, data_scale,
							decode(nullable,'Y','YES','N','NO') nullable, column_id
							from user_tab_columns
							where table_name = upper(?)
							order by column_id`,
	},
	constants.ConnectionTypeSqlServer: {
		withSchema:    fmt.Sprintf(informationSchemaColumns, "upper(table_schema) = upper(@p1) and upper(table_name) = upper(@p2)"),
		withoutSchema: fmt.Sprintf(informationSchemaColumns, "table_schema = schema_name() and upper(table_name) = upper(@p1)"),
	},
	constants.ConnectionTypePostgres: {
		withSchema:    fmt.Sprintf(informationSchemaColumns, "lower(table_schema) = lower($1) and lower(table_name) = lower($2)"),
		withoutSchema: fmt.Sprintf(informationSchemaColumns, "table_schema = current_schema() and lower(table_name) = lower($1)"),
	},
	constants.ConnectionTypeMySql: {
		withSchema:    fmt.Sprintf(informationSchemaColumns, "lower(table_schema) = lower(?) and lower(table_name) = lower(?)"),
		withoutSchema: fmt.Sprintf(informationSchemaColumns, "table_schema = database() and lower(table_name) = lower(?)"),
	},
	constants.ConnectionTypeDatabricks: {
		withSchema: `select table_schema as OWNER, table_name as TABLE_NAME, column_name as COLUMN_NAME, data_type as DATA_TYPE,
							character_maximum_length as DATA_LENGTH, numeric_precision as DATA_PRECISION, numeric_scale as DATA_SCALE,
							is_nullable as NULLABLE, ordinal_position as COLUMN_ID
							from information_schema.columns
							where lower(table_schema) = lower(?) and lower(table_name) = lower(?)
							order by ordinal_position`,
		withoutSchema: `select table_schema as OWNER, table_name as TABLE_NAME, column_name as COLUMN_NAME, data_type as DATA_TYPE,
							character_maximum_length as DATA_LENGTH, numeric_precision as DATA_PRECISION, numeric_scale as DATA_SCALE,
							is_nullable as NULLABLE, ordinal_position as COLUMN_ID
							from information_schema.columns
							where table_schema = current_schema() and lower(table_name) = lower(?)
							order by ordinal_position`,
	},
	constants.ConnectionTypeSnowflake: {
		withSchema:    fmt.Sprintf(informationSchemaColumns, "table_schema = upper(?) and table_name = upper(?)"),
		withoutSchema: fmt.Sprintf(informationSchemaColumns, "table_schema = current_schema() and table_name = upper(?)"),
	},
	constants.ConnectionTypeNetezza: {
		withSchema: `select TABLE_SCHEMA AS OWNER, TABLE_NAME, COLUMN_NAME,
						substr(data_type, 1,
						  case when instr(data_type,'(') = 0 then length(data_type) else instr(data_type,'(')-1 end
					    ) as DATA_TYPE
						, coalesce(cast(CHARACTER_MAXIMUM_LENGTH as varchar(64000)), DATETIME_PRECISION) AS DATA_LENGTH,
						    NUMERIC_PRECISION AS DATA_PRECISION, NUMERIC_SCALE AS DATA_SCALE, IS_NULLABLE AS NULLABLE,
						    ORDINAL_POSITION AS COLUMN_ID
							from information_schema.columns
							where table_schema = upper(?)
							and table_name = upper(?)
							order by ORDINAL_POSITION`,
		withoutSchema: `select TABLE_SCHEMA AS OWNER, TABLE_NAME, COLUMN_NAME,
						substr(data_type, 1,
						  case when instr(data_type,'(') = 0 then length(data_type) else instr(data_type,'(')-1 end
						) as DATA_TYPE
						, coalesce(cast(CHARACTER_MAXIMUM_LENGTH as varchar(64000)), DATETIME_PRECISION) AS DATA_LENGTH,
						    NUMERIC_PRECISION AS DATA_PRECISION, NUMERIC_SCALE AS DATA_SCALE, IS_NULLABLE AS NULLABLE,
						    ORDINAL_POSITION AS COLUMN_ID
							from information_schema.columns
							where table_schema = current_schema
							and table_name = upper(?)
							order by ORDINAL_POSITION`,
	},
}

// tabDefinitionConfigT holds SQL used to fetch a table definition from a database.
type tabDefinitionConfigT struct {
	withSchema    string
	withoutSchema string
}

// getRecord looks up and returns a value from the map t using the supplied databaseType.
// The prefix "odbc+" is trimmed from the left of databaseType.
func (t mapTabDefinitionConfigT) getRecord(databaseType string) (tabDefinitionConfigT, error) {
	dt := strings.TrimPrefix(databaseType, "odbc+")
	k, ok := t[dt]
	if !ok { // if we do not support the clean database type...
		return tabDefinitionConfigT{}, fmt.Errorf("error fetching source table definition config, unsupported database type: %q", dt)
	}
	return k, nil
}

// TableColumn defines a single table column.
// TargetType is set when the Snowflake type is already known, e.g. from a driver type code,
// and is used instead of the Mapper.
type TableColumn struct {
	ColName       string `json:"name"`
	DataType      string `json:"sourceType"`
	DataLen       int    `json:"-"`
	DataPrecision int    `json:"-"`
	DataScale     int    `json:"-"`
	Nullable      bool   `json:"nullable"`
	ColID         int    `json:"-"`
	TargetType    string `json:"targetType,omitempty"`
}

// TableColumns is a struct representing columns that you would find
// in one row of Oracle ALL_TAB_COLUMNS view or equivalent other RDBMS type.
type TableColumns struct {
	Owner     string
	TableName string
	Columns   []TableColumn
}

// ColumnNames returns the column names in order.
func (t TableColumns) ColumnNames() []string {
	retval := make([]string, len(t.Columns))
	for idx, c := range t.Columns {
		retval[idx] = c.ColName
	}
	return retval
}

// GetTableDefinition reads the catalog of the database behind db and returns the columns
// for the supplied [<schema>.]<table> combination. Schema is optional; table is not.
func GetTableDefinition(ctx context.Context, log logger.Logger, db shared.Connector, srcSchemaTable rdbms.SchemaTable) (tabCols TableColumns, err error) {
	cfg, err := tabDefinitionConfig.getRecord(db.GetType())
	if err != nil {
		return
	}
	schema := strings.Trim(srcSchemaTable.GetSchema(), `"`)
	table := strings.Trim(srcSchemaTable.GetTable(), `"`)
	var sqltext string
	var args []interface{}
	if schema != "" {
		sqltext = cfg.withSchema
		args = []interface{}{schema, table}
	} else {
		sqltext = cfg.withoutSchema
		args = []interface{}{table}
	}
	log.Debug("fetching table definition for ", srcSchemaTable.SchemaTable)
	r, err := rdbms.QueryTable(ctx, log, db, sqltext, args...)
	if err != nil {
		err = errors.Wrapf(err, "error fetching table definition for %q", srcSchemaTable.SchemaTable)
		return
	}
	get := func(row []interface{}, name string) interface{} {
		idx := r.ColumnIndex(name)
		if idx < 0 {
			return nil
		}
		return row[idx]
	}
	for _, row := range r.Rows { // for each column definition found in the schema.table...
		if tabCols.TableName == "" {
			tabCols.Owner, _ = helper.GetStringFromInterfacePreserveTimeZone(get(row, "OWNER"))
			tabCols.TableName, _ = helper.GetStringFromInterfacePreserveTimeZone(get(row, "TABLE_NAME"))
		}
		colDef := TableColumn{}
		colDef.ColName, _ = helper.GetStringFromInterfacePreserveTimeZone(get(row, "COLUMN_NAME"))
		colDef.DataType, _ = helper.GetStringFromInterfacePreserveTimeZone(get(row, "DATA_TYPE"))
		if colDef.DataLen, err = toInt(get(row, "DATA_LENGTH")); err != nil {
			err = errors.Wrap(err, "unable to convert DATA_LENGTH to an integer")
			return
		}
		if colDef.DataPrecision, err = toInt(get(row, "DATA_PRECISION")); err != nil {
			err = errors.Wrap(err, "unable to convert DATA_PRECISION to an integer")
			return
		}
		if colDef.DataScale, err = toInt(get(row, "DATA_SCALE")); err != nil {
			err = errors.Wrap(err, "unable to convert DATA_SCALE to an integer")
			return
		}
		if colDef.ColID, err = toInt(get(row, "COLUMN_ID")); err != nil {
			err = errors.Wrap(err, "unable to convert COLUMN_ID to an integer")
			return
		}
		n, _ := helper.GetStringFromInterfacePreserveTimeZone(get(row, "NULLABLE"))
		colDef.Nullable = !strings.EqualFold(n, "NO") // prefer nullable over not null!
		tabCols.Columns = append(tabCols.Columns, colDef)
	}
	if len(tabCols.Columns) == 0 {
		err = fmt.Errorf("no column metadata found for table %q", srcSchemaTable.SchemaTable)
		return
	}
	return
}

// toInt converts a catalog value to an int. NULL becomes 0.
func toInt(v interface{}) (int, error) {
	if v == nil {
		return 0, nil
	}
	s, err := helper.GetStringFromInterfacePreserveTimeZone(v)
	if err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(s)
	if err == nil {
		return i, nil
	}
	f, ferr := strconv.ParseFloat(s, 64) // some drivers return NUMBER as "10.0"
	if ferr != nil {
		return 0, err
	}
	return int(f), nil
}

// CreateTableClause returns the CREATE statement prefix for the transfer mode.
// Mode error expects the caller to have checked that the table does not exist.
func CreateTableClause(mode string) (string, error) {
	switch mode {
	case constants.TransferModeOverwrite:
		return "CREATE OR REPLACE TABLE", nil
	case constants.TransferModeAppend:
		return "CREATE TABLE IF NOT EXISTS", nil
	case constants.TransferModeError:
		return "CREATE TABLE", nil
	}
	return "", fmt.Errorf("unsupported transfer mode %q", mode)
}

var reSimpleIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// SnowflakeColumnName returns name in upper case when it is a plain identifier and quoted otherwise.
func SnowflakeColumnName(name string) string {
	if reSimpleIdentifier.MatchString(name) {
		return strings.ToUpper(name)
	}
	return helper.QuoteIdentifier(name)
}

// SnowflakeColumnType returns the Snowflake DDL type of col.
// Unknown source types become VARCHAR.
func SnowflakeColumnType(log logger.Logger, col TableColumn, mapper Mapper) string {
	if col.TargetType != "" {
		return col.TargetType
	}
	tgt, ok := mapper.Map(col.DataType)
	if !ok {
		log.Debug("unknown data type ", col.DataType, " for column ", col.ColName, "; using VARCHAR")
		return "varchar"
	}
	return tgt + mapper.Sanitise(col.DataType, col.DataLen, col.DataPrecision, col.DataScale)
}

// ConvertTableDefinitionToSnowflake converts each rec in TableColumns to snowflake
// equivalent and returns a string that is the snowflake CREATE TABLE statement for mode.
// KNOWN ISSUES: 1) not distinguishing between Oracle BYTE/CHAR semantics.
func ConvertTableDefinitionToSnowflake(log logger.Logger, tabCols TableColumns, snowSchemaTable rdbms.SchemaTable, mapper Mapper, mode string) (snowflakeTableDefinition string, err error) {
	if snowSchemaTable.SchemaTable == "" {
		snowSchemaTable.SchemaTable = tabCols.TableName
		log.Info("Using table name \"", tabCols.TableName, "\" as the target")
	}
	create, err := CreateTableClause(mode)
	if err != nil {
		return
	}
	// Remap column types.
	var fields []string
	var notNull string
	for _, col := range tabCols.Columns { // for each column...
		tgt := SnowflakeColumnType(log, col, mapper)
		if !col.Nullable { // if we should add NOT NULL...
			notNull = " not null"
		} else {
			notNull = ""
		}
		log.Debug("column = ", col.ColName,
			"; type = ", col.DataType,
			"; len = ", col.DataLen,
			"; precision = ", col.DataPrecision,
			"; scale = ", col.DataScale,
			"; nullable = ", col.Nullable,
			"; target type = ", tgt,
		)
		fields = append(fields, fmt.Sprintf("%v %v%v", SnowflakeColumnName(col.ColName), tgt, notNull))
	}
	if len(fields) == 0 {
		err = fmt.Errorf("no column metadata found to build Snowflake CREATE TABLE DDL")
		return
	}
	snowflakeTableDefinition = fmt.Sprintf("%v %v ( %v )", create, snowSchemaTable.SchemaTable, strings.Join(fields, ", "))
	log.Debug("Generated Snowflake SQL: ", snowflakeTableDefinition)
	return
}
