package tabledefinition

import (
	"database/sql"
	"reflect"
	"strings"
	"time"

	"github.com/relloyd/snowxfer/logger"
)

// ODBC/JDBC style type codes reported by drivers that expose no usable type name.
const (
	TypeCodeUnknown     = 0
	TypeCodeChar        = 1
	TypeCodeNumeric     = 2
	TypeCodeDecimal     = 3
	TypeCodeInteger     = 4
	TypeCodeSmallInt    = 5
	TypeCodeFloat       = 6
	TypeCodeDouble      = 8
	TypeCodeVarchar     = 12
	TypeCodeBoolean     = 16
	TypeCodeDate        = 91
	TypeCodeTimestamp   = 93
	TypeCodeLongVarchar = -1
	TypeCodeBigInt      = -5
	TypeCodeTinyInt     = -6
	TypeCodeWideVarchar = -9
)

const (
	snowflakeTypeString   = "varchar"
	snowflakeTypeInteger  = "integer"
	snowflakeTypeDouble   = "float"
	snowflakeTypeDecimal  = "number(18,2)"
	snowflakeTypeDate     = "date"
	snowflakeTypeDateTime = "timestamp_ntz"
	snowflakeTypeBoolean  = "boolean"
)

var typeCodeMapping = map[int]string{
	TypeCodeChar:        snowflakeTypeString,
	TypeCodeVarchar:     snowflakeTypeString,
	TypeCodeLongVarchar: snowflakeTypeString,
	TypeCodeWideVarchar: snowflakeTypeString,
	TypeCodeInteger:     snowflakeTypeInteger,
	TypeCodeBigInt:      snowflakeTypeInteger,
	TypeCodeSmallInt:    snowflakeTypeInteger,
	TypeCodeTinyInt:     snowflakeTypeInteger,
	TypeCodeFloat:       snowflakeTypeDouble,
	TypeCodeDouble:      snowflakeTypeDouble,
	TypeCodeNumeric:     snowflakeTypeDecimal,
	TypeCodeDecimal:     snowflakeTypeDecimal,
	TypeCodeDate:        snowflakeTypeDate,
	TypeCodeTimestamp:   snowflakeTypeDateTime,
	TypeCodeBoolean:     snowflakeTypeBoolean,
}

// TypeCodeToSnowflake returns the Snowflake type for a driver type code.
// Unknown codes become VARCHAR.
func TypeCodeToSnowflake(log logger.Logger, code int) string {
	t, ok := typeCodeMapping[code]
	if !ok {
		log.Debug("unknown type code ", code, "; using ", snowflakeTypeString)
		return snowflakeTypeString
	}
	return t
}

var (
	typeTime        = reflect.TypeOf(time.Time{})
	typeNullTime    = reflect.TypeOf(sql.NullTime{})
	typeNullString  = reflect.TypeOf(sql.NullString{})
	typeNullInt64   = reflect.TypeOf(sql.NullInt64{})
	typeNullInt32   = reflect.TypeOf(sql.NullInt32{})
	typeNullInt16   = reflect.TypeOf(sql.NullInt16{})
	typeNullByte    = reflect.TypeOf(sql.NullByte{})
	typeNullFloat64 = reflect.TypeOf(sql.NullFloat64{})
	typeNullBool    = reflect.TypeOf(sql.NullBool{})
)

// TypeCodeFromScanType infers a type code from the Go type a driver scans a column into.
func TypeCodeFromScanType(t reflect.Type) int {
	if t == nil {
		return TypeCodeUnknown
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t {
	case typeTime, typeNullTime:
		return TypeCodeTimestamp
	case typeNullString:
		return TypeCodeVarchar
	case typeNullInt64:
		return TypeCodeBigInt
	case typeNullInt32:
		return TypeCodeInteger
	case typeNullInt16:
		return TypeCodeSmallInt
	case typeNullByte:
		return TypeCodeTinyInt
	case typeNullFloat64:
		return TypeCodeDouble
	case typeNullBool:
		return TypeCodeBoolean
	}
	switch t.Kind() {
	case reflect.String:
		return TypeCodeVarchar
	case reflect.Int64, reflect.Uint64:
		return TypeCodeBigInt
	case reflect.Int, reflect.Int32, reflect.Uint, reflect.Uint32:
		return TypeCodeInteger
	case reflect.Int16, reflect.Uint16:
		return TypeCodeSmallInt
	case reflect.Int8, reflect.Uint8:
		return TypeCodeTinyInt
	case reflect.Float32:
		return TypeCodeFloat
	case reflect.Float64:
		return TypeCodeDouble
	case reflect.Bool:
		return TypeCodeBoolean
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 { // raw bytes are usually text
			return TypeCodeLongVarchar
		}
	}
	return TypeCodeUnknown
}

// ColumnsFromColumnTypes builds column metadata from a result set, e.g. a zero row query.
// Types the mapper does not know fall back to the type code of the scan type.
func ColumnsFromColumnTypes(log logger.Logger, colTypes []*sql.ColumnType, mapper Mapper) TableColumns {
	tabCols := TableColumns{}
	for idx, ct := range colTypes {
		col := TableColumn{
			ColName:  ct.Name(),
			DataType: strings.ToLower(ct.DatabaseTypeName()),
			Nullable: true,
			ColID:    idx + 1,
		}
		if l, ok := ct.Length(); ok && l > 0 && l < int64(snowflakeMaxVarcharLen) {
			col.DataLen = int(l)
		}
		if p, s, ok := ct.DecimalSize(); ok {
			col.DataPrecision = int(p)
			col.DataScale = int(s)
		}
		if _, known := mapper.Map(col.DataType); !known {
			code := TypeCodeFromScanType(ct.ScanType())
			col.TargetType = TypeCodeToSnowflake(log, code)
			log.Debug("column ", col.ColName, " has unknown type ", col.DataType, "; type code ", code, " maps to ", col.TargetType)
		}
		tabCols.Columns = append(tabCols.Columns, col)
	}
	return tabCols
}
