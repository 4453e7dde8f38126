package helper

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/constants"
)

var reQuoted = regexp.MustCompile("^\"(.+)\"$")

// CsvToStringSliceTrimSpaces splits s by comma and trims spaces from each element.
// Empty elements are dropped.
func CsvToStringSliceTrimSpaces(s string) (retval []string) {
	retval = make([]string, 0)
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			retval = append(retval, v)
		}
	}
	return
}

// GetStringFromInterfacePreserveTimeZone will convert interface{} value to a string.
// Times will be in local time.
func GetStringFromInterfacePreserveTimeZone(input interface{}) (string, error) {
	return GetStringFromInterface(input, false)
}

// GetStringFromInterface will convert interface{} value to a string.
// Optionally return Times in UTC.
func GetStringFromInterface(input interface{}, useUTC bool) (retval string, err error) {
	switch v := input.(type) {
	case int, int16, int32, int64, int8, uint, uint16, uint32, uint64, uint8:
		retval = fmt.Sprintf("%d", v)
	case string:
		retval = v
	case float32:
		retval = strconv.FormatFloat(float64(v), 'f', -1, 32) // use 'f' to convert float to string without an exponent i.e. preserve all decimal points.
	case float64:
		retval = strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		if useUTC { // if caller requests UTC conversion...
			retval = v.UTC().Format(constants.TimeFormatYearSecondsTZ)
		} else { // else output Local time...
			retval = v.Format(constants.TimeFormatYearSecondsTZ)
		}
	case []uint8:
		retval = string(v)
	case bool:
		retval = strconv.FormatBool(v)
	case nil:
		retval = ""
	default:
		err = errors.Errorf("unhandled type while fetching string from interface: type = %v; value = %v", reflect.TypeOf(input), input)
	}
	return
}

// GetTrueFalseStringAsBool trims spaces from s and returns true for any of "true", "1", "yes" or "on"
// regardless of case.
func GetTrueFalseStringAsBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

// SplitRight splits s at the last occurrence of c.
// If c is not found it returns s, "".
func SplitRight(s string, c string) (string, string) {
	i := strings.LastIndex(s, c)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(c):]
}

// ToUpperIfNotQuoted converts any non-quoted strings to upper case.
func ToUpperIfNotQuoted(s []string) []string {
	for idx, v := range s {
		if !reQuoted.MatchString(v) { // if the column name is NOT quoted...
			s[idx] = strings.ToUpper(v)
		}
	}
	return s
}

// QuoteIdentifier wraps s in double quotes unless it is already quoted.
// Embedded quotes are doubled.
func QuoteIdentifier(s string) string {
	if reQuoted.MatchString(s) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// EscapeSingleQuotes doubles any single quotes so s can be used inside a SQL string literal.
func EscapeSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Truncate shortens s to max characters, replacing the tail with "..." when it was cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// InterfaceToString converts a row of driver values into strings for display.
// NULL values become "NULL".
func InterfaceToString(src []interface{}) []string {
	retval := make([]string, len(src))
	for i, v := range src {
		switch x := v.(type) {
		case nil:
			retval[i] = "NULL"
		case float64:
			retval[i] = strconv.FormatFloat(x, 'g', -1, 64)
		case []byte:
			retval[i] = string(x)
		case time.Time:
			retval[i] = x.Format(time.RFC3339Nano)
		default:
			retval[i] = fmt.Sprint(x)
		}
	}
	return retval
}
