package tabledefinition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/relloyd/snowxfer/constants"
)

// snowflakeMaxVarcharLen is the largest VARCHAR length Snowflake accepts.
const snowflakeMaxVarcharLen = 16777216

// Mapper converts a source data type and its size attributes to Snowflake DDL.
type Mapper interface {
	// Map returns the Snowflake type for inputDataType and false if the type is unknown.
	Map(inputDataType string) (output string, ok bool)
	// Sanitise returns the size suffix, e.g. "(10,2)", for inputDataType.
	Sanitise(inputDataType string, dataLen, precision, scale int) (output string)
}

// GetMapper returns a new Mapper for the given connection type.
func GetMapper(connectionType string) (Mapper, error) {
	m, ok := mappings[strings.TrimPrefix(connectionType, "odbc+")]
	if !ok {
		return nil, fmt.Errorf("unable to find data type mapper for RDBMS type %q", connectionType)
	}
	return newDataTypeMapper(m), nil
}

var mappings = map[string][]dataTypeLink{
	constants.ConnectionTypeOracle:     OracleToSnowflakeDataTypeMapping,
	constants.ConnectionTypeSqlServer:  SqlServerToSnowflakeDataTypeMapping,
	constants.ConnectionTypeNetezza:    NetezzaToSnowflakeDataTypeMapping,
	constants.ConnectionTypePostgres:   PostgresToSnowflakeDataTypeMapping,
	constants.ConnectionTypeMySql:      MySqlToSnowflakeDataTypeMapping,
	constants.ConnectionTypeDatabricks: DatabricksToSnowflakeDataTypeMapping,
	constants.ConnectionTypeSnowflake:  SnowflakeToSnowflakeDataTypeMapping,
}

// sanitiserFuncT converts data length, precision and scale into a string ready for use in CREATE TABLE DDL.
type sanitiserFuncT func(dataLen, dataPrecision, dataScale int) string

// dataTypeMap implements Mapper.
type dataTypeMap struct {
	mapTypes      map[string]string
	mapSanitisers map[string]sanitiserFuncT
}

// Map will convert inputDataType to lower case and use it to look up the output in mapTypes.
// Size suffixes such as "(10)" are ignored when the full name is not found.
func (o dataTypeMap) Map(inputDataType string) (string, bool) {
	k, ok := o.key(inputDataType)
	if !ok {
		return "", false
	}
	return o.mapTypes[k], true
}

func (o dataTypeMap) Sanitise(inputDataType string, dataLen, dataPrecision, dataScale int) string {
	k, ok := o.key(inputDataType)
	if !ok {
		return ""
	}
	return o.mapSanitisers[k](dataLen, dataPrecision, dataScale)
}

func (o dataTypeMap) key(inputDataType string) (string, bool) {
	k := strings.ToLower(strings.TrimSpace(inputDataType))
	if _, ok := o.mapTypes[k]; ok {
		return k, true
	}
	if i := strings.Index(k, "("); i > 0 { // if there is a size suffix...
		k = strings.TrimSpace(k[:i])
		if _, ok := o.mapTypes[k]; ok {
			return k, true
		}
	}
	return "", false
}

type dataTypeLink struct {
	SourceDataType string `json:"sourceDataType"`
	TargetDataType string `json:"snowflakeDataType"`
	SanitiserFunc  sanitiserFuncT
}

func newDataTypeMapper(types []dataTypeLink) dataTypeMap {
	dtm := dataTypeMap{}
	dtm.mapTypes = make(map[string]string)
	dtm.mapSanitisers = make(map[string]sanitiserFuncT)
	for _, row := range types { // for each data type link...
		// Save the src vs target mapping.
		dtm.mapTypes[row.SourceDataType] = row.TargetDataType
		dtm.mapSanitisers[row.SourceDataType] = row.SanitiserFunc
	}
	return dtm
}

// OracleToSnowflakeDataTypeMapping contains a mapping of Oracle to Snowflake data types.
// Oracle DATE carries a time component so it becomes a timestamp.
var OracleToSnowflakeDataTypeMapping = []dataTypeLink{
	{SourceDataType: "date", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp(3)", TargetDataType: "timestamp_ntz(3)", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp(6)", TargetDataType: "timestamp_ntz(6)", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp(9)", TargetDataType: "timestamp_ntz(9)", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp(6) with time zone", TargetDataType: "timestamp_tz(6)", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp(6) with local time zone", TargetDataType: "timestamp_ltz(6)", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "varchar2", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "nvarchar2", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "char", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "nchar", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "clob", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "nclob", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "long", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "number", TargetDataType: "number", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "float", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "binary_float", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "binary_double", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "raw", TargetDataType: "binary", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "blob", TargetDataType: "binary", SanitiserFunc: sanitiseBlank},
}

// SqlServerToSnowflakeDataTypeMapping contains a mapping of SQL Server to Snowflake data types.
var SqlServerToSnowflakeDataTypeMapping = []dataTypeLink{
	// Interval types are not supported in Snowflake: https://docs.snowflake.com/en/sql-reference/data-types-datetime.html#interval-constants
	{SourceDataType: "bigint", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank}, // precision,scale = 19,0 signed, or 20,0 for unsigned
	{SourceDataType: "bit", TargetDataType: "boolean", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "char", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "date", TargetDataType: "date", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "datetime", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "datetime2", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "datetimeoffset", TargetDataType: "timestamp_tz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "decimal", TargetDataType: "number", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "float", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "int", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "image", TargetDataType: "binary", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "money", TargetDataType: "number", SanitiserFunc: sanitiseMoney},
	{SourceDataType: "numeric", TargetDataType: "number", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "ntext", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "nchar", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "nvarchar", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "real", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "smallint", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "smalldatetime", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "smallmoney", TargetDataType: "number", SanitiserFunc: sanitiseMoney},
	{SourceDataType: "time", TargetDataType: "time", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "text", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "tinyint", TargetDataType: "number", SanitiserFunc: sanitiseTinyInt},
	{SourceDataType: "uniqueidentifier", TargetDataType: "varchar", SanitiserFunc: sanitiseGuid},
	{SourceDataType: "binary", TargetDataType: "binary", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "varbinary", TargetDataType: "binary", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "varchar", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "xml", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
}

var NetezzaToSnowflakeDataTypeMapping = []dataTypeLink{
	{SourceDataType: "bigint", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "boolean", TargetDataType: "boolean", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "bpchar", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "byteint", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "char", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "character", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "character varying", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "date", TargetDataType: "date", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "decimal", TargetDataType: "number", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "double", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "double precision", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "float", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "integer", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "interval", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "json", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "jsonb", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "nchar", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "national character", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "national character varying", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "numeric", TargetDataType: "number", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "nvarchar", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "real", TargetDataType: "real", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "smallint", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "st_geometry", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "time", TargetDataType: "time", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timetz", TargetDataType: "time", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "time with time zone", TargetDataType: "time", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "varbinary", TargetDataType: "binary", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "binary varying", TargetDataType: "binary", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "varchar", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
}

// PostgresToSnowflakeDataTypeMapping covers information_schema names and the short names pgx reports.
var PostgresToSnowflakeDataTypeMapping = []dataTypeLink{
	{SourceDataType: "bigint", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "int8", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "integer", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "int4", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "smallint", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "int2", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "numeric", TargetDataType: "number", SanitiserFunc: sanitisePrecisionScaleOrFloat},
	{SourceDataType: "real", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "float4", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "double precision", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "float8", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "boolean", TargetDataType: "boolean", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "bool", TargetDataType: "boolean", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "character varying", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "varchar", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "character", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "bpchar", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "text", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "uuid", TargetDataType: "varchar", SanitiserFunc: sanitiseGuid},
	{SourceDataType: "json", TargetDataType: "variant", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "jsonb", TargetDataType: "variant", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "date", TargetDataType: "date", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp without time zone", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp with time zone", TargetDataType: "timestamp_tz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamptz", TargetDataType: "timestamp_tz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "time without time zone", TargetDataType: "time", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "time", TargetDataType: "time", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "bytea", TargetDataType: "binary", SanitiserFunc: sanitiseBlank},
}

var MySqlToSnowflakeDataTypeMapping = []dataTypeLink{
	{SourceDataType: "tinyint", TargetDataType: "number", SanitiserFunc: sanitiseTinyInt},
	{SourceDataType: "smallint", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "mediumint", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "int", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "integer", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "bigint", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "unsigned bigint", TargetDataType: "number", SanitiserFunc: sanitiseUnsignedBigInt},
	{SourceDataType: "decimal", TargetDataType: "number", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "float", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "double", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "bit", TargetDataType: "boolean", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "char", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "varchar", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "tinytext", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "text", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "mediumtext", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "longtext", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "enum", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "set", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "json", TargetDataType: "variant", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "date", TargetDataType: "date", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "datetime", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "time", TargetDataType: "time", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "year", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "binary", TargetDataType: "binary", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "varbinary", TargetDataType: "binary", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "blob", TargetDataType: "binary", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "longblob", TargetDataType: "binary", SanitiserFunc: sanitiseBlank},
}

var DatabricksToSnowflakeDataTypeMapping = []dataTypeLink{
	{SourceDataType: "tinyint", TargetDataType: "number", SanitiserFunc: sanitiseTinyInt},
	{SourceDataType: "byte", TargetDataType: "number", SanitiserFunc: sanitiseTinyInt},
	{SourceDataType: "smallint", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "short", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "int", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "integer", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "bigint", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "long", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "decimal", TargetDataType: "number", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "float", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "double", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "boolean", TargetDataType: "boolean", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "string", TargetDataType: "varchar", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "varchar", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "char", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "date", TargetDataType: "date", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp", TargetDataType: "timestamp_tz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp_ntz", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "binary", TargetDataType: "binary", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "array", TargetDataType: "variant", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "map", TargetDataType: "variant", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "struct", TargetDataType: "variant", SanitiserFunc: sanitiseBlank},
}

var SnowflakeToSnowflakeDataTypeMapping = []dataTypeLink{
	{SourceDataType: "array", TargetDataType: "array", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "bigint", TargetDataType: "bigint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "binary", TargetDataType: "binary", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "boolean", TargetDataType: "boolean", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "char", TargetDataType: "char", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "date", TargetDataType: "date", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "datetime", TargetDataType: "datetime", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "decimal", TargetDataType: "decimal", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "double", TargetDataType: "double", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "float", TargetDataType: "float", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "geography", TargetDataType: "geography", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "int", TargetDataType: "int", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "integer", TargetDataType: "integer", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "number", TargetDataType: "number", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "numeric", TargetDataType: "numeric", SanitiserFunc: sanitisePrecisionScale},
	{SourceDataType: "object", TargetDataType: "object", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "real", TargetDataType: "real", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "smallint", TargetDataType: "smallint", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "string", TargetDataType: "string", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "text", TargetDataType: "text", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "time", TargetDataType: "time", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp", TargetDataType: "timestamp", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp_ltz", TargetDataType: "timestamp_ltz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp_ntz", TargetDataType: "timestamp_ntz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "timestamp_tz", TargetDataType: "timestamp_tz", SanitiserFunc: sanitiseBlank},
	{SourceDataType: "varbinary", TargetDataType: "varbinary", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "varchar", TargetDataType: "varchar", SanitiserFunc: sanitiseDataLen},
	{SourceDataType: "variant", TargetDataType: "variant", SanitiserFunc: sanitiseBlank},
}

// SANITISER FUNCTIONS.

func sanitiseBlank(dataLen, dataPrecision, dataScale int) string {
	return ""
}

func sanitiseTinyInt(dataLen, dataPrecision, dataScale int) string {
	return "(3,0)"
}

func sanitiseUnsignedBigInt(dataLen, dataPrecision, dataScale int) string {
	return "(20,0)"
}

func sanitiseMoney(dataLen, dataPrecision, dataScale int) string {
	return "(19,4)"
}

func sanitiseGuid(dataLen, dataPrecision, dataScale int) string {
	return "(36)"
}

func sanitiseDataLen(dataLen, dataPrecision, dataScale int) string {
	if dataLen > snowflakeMaxVarcharLen {
		dataLen = snowflakeMaxVarcharLen
	}
	if dataLen > 0 { // if dataLen is valid and not negative (see SQLServer MAX types for examples of -ve values)
		return "(" + strconv.Itoa(dataLen) + ")"
	} else {
		return ""
	}
}

func sanitisePrecisionScale(dataLen, dataPrecision, dataScale int) string {
	return getDataPrecisionStr(dataPrecision) + getDataScaleStr(dataPrecision, dataScale)
}

// sanitisePrecisionScaleOrFloat keeps fractions for unconstrained numerics, which would otherwise become NUMBER(38,0).
func sanitisePrecisionScaleOrFloat(dataLen, dataPrecision, dataScale int) string {
	if dataPrecision == 0 {
		return "(38,10)"
	}
	return sanitisePrecisionScale(dataLen, dataPrecision, dataScale)
}

// HELPER FUNCTIONS.

// getDataPrecisionStr returns "(<N>" if precision N exists or "" if it doesn't.
// You can't have a precision without a scale.
func getDataPrecisionStr(dataPrecision int) string {
	if dataPrecision != 0 { // if we have a useful Precision then we'll return it...
		return "(" + strconv.Itoa(dataPrecision)
	} else {
		return ""
	}
}

// getDataScaleStr return a suffix string for dataScale N: ",<N>)" if N exists or "" if it doesn't.
func getDataScaleStr(dataPrecision int, dataScale int) string {
	if dataPrecision != 0 { // if we have a scale and useful precision...
		return "," + strconv.Itoa(dataScale) + ")"
	} else {
		return ""
	}
}
