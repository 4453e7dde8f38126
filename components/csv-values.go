package components

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/relloyd/snowxfer/helper"
)

const (
	csvTimestampFormat   = "2006-01-02 15:04:05.999999999"
	csvTimestampTzFormat = "2006-01-02 15:04:05.999999999 -07:00"
	csvDateFormat        = "2006-01-02"
	csvTimeFormat        = "15:04:05.999999999"
)

// CsvColumn is the source and Snowflake type of one output column; it decides how values are rendered.
type CsvColumn struct {
	Name       string
	SourceType string // lower case database type name reported by the source driver.
	TargetType string // Snowflake column type, e.g. "timestamp_tz" or "number(10,2)".
}

// FormatCsvValue renders a scanned source value for a Snowflake CSV load.
// NULL renders as "" and FormatCsvRecord flags it.
func FormatCsvValue(v interface{}, col CsvColumn) (string, error) {
	target := strings.ToLower(col.TargetType)
	switch x := v.(type) {
	case nil:
		return "", nil
	case time.Time:
		switch {
		case strings.HasPrefix(target, "timestamp_tz"):
			return x.Format(csvTimestampTzFormat), nil
		case strings.HasPrefix(target, "date"):
			return x.Format(csvDateFormat), nil
		case strings.HasPrefix(target, "time") && !strings.HasPrefix(target, "timestamp"):
			return x.Format(csvTimeFormat), nil
		default:
			return x.Format(csvTimestampFormat), nil
		}
	case []byte:
		if col.SourceType == "uniqueidentifier" && len(x) == 16 {
			var u mssql.UniqueIdentifier
			if err := u.Scan(x); err != nil {
				return "", err
			}
			return u.String(), nil
		}
		if strings.HasPrefix(target, "binary") {
			return hex.EncodeToString(x), nil
		}
		return string(x), nil
	case bool:
		if x {
			return "true", nil
		}
		return "false", nil
	}
	s, err := helper.GetStringFromInterfacePreserveTimeZone(v)
	if err != nil { // if the driver returned a type we don't know...
		return fmt.Sprintf("%v", v), nil
	}
	return s, nil
}

// FormatCsvRecord renders one row using the column at the same position.
// nulls flags the NULL values, which file.CSVFileOutput writes as empty unquoted fields.
func FormatCsvRecord(row []interface{}, cols []CsvColumn) (fields []string, nulls []bool, err error) {
	fields = make([]string, len(row))
	nulls = make([]bool, len(row))
	for idx, v := range row {
		var col CsvColumn
		if idx < len(cols) {
			col = cols[idx]
		}
		nulls[idx] = v == nil
		if fields[idx], err = FormatCsvValue(v, col); err != nil {
			return nil, nil, err
		}
	}
	return fields, nulls, nil
}
