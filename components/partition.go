package components

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/helper"
)

// Partition is one slice of the source rows. An empty Where means all rows.
type Partition struct {
	ID    int
	Where string
}

var partitionTimeFormats = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

const partitionTimeLiteralFormat = "2006-01-02 15:04:05.999999999"

// PlanPartitions splits [lower, upper) on column into n ranges of equal stride.
// The first range also takes NULLs and values below lower; the last takes everything from its start upwards.
// Bounds may be integers, decimals or timestamps, and both must be of the same kind.
// A blank column or n <= 1 returns one partition without a predicate.
func PlanPartitions(column string, lower string, upper string, n int) ([]Partition, error) {
	if column == "" || n <= 1 {
		return []Partition{{ID: 0}}, nil
	}
	bounds, err := partitionBoundaries(strings.TrimSpace(lower), strings.TrimSpace(upper), n)
	if err != nil {
		return nil, err
	}
	if len(bounds) == 0 { // if the range is too narrow to split...
		return []Partition{{ID: 0}}, nil
	}
	retval := make([]Partition, 0, len(bounds)+1)
	retval = append(retval, Partition{ID: 0, Where: fmt.Sprintf("%v < %v OR %v IS NULL", column, bounds[0], column)})
	for idx := 1; idx < len(bounds); idx++ {
		retval = append(retval, Partition{ID: idx, Where: fmt.Sprintf("%v >= %v AND %v < %v", column, bounds[idx-1], column, bounds[idx])})
	}
	retval = append(retval, Partition{ID: len(bounds), Where: fmt.Sprintf("%v >= %v", column, bounds[len(bounds)-1])})
	return retval, nil
}

// partitionBoundaries returns the n-1 inner boundaries as SQL literals.
func partitionBoundaries(lower string, upper string, n int) ([]string, error) {
	if lo, e1 := strconv.ParseInt(lower, 10, 64); e1 == nil {
		hi, err := strconv.ParseInt(upper, 10, 64)
		if err != nil {
			return nil, errors.Errorf("upper bound %q must be an integer to match lower bound %q", upper, lower)
		}
		if hi <= lo {
			return nil, errors.Errorf("upper bound %v must be greater than lower bound %v", hi, lo)
		}
		span := uint64(hi) - uint64(lo) // exact for any hi > lo, even where hi-lo overflows int64.
		if span < uint64(n) {
			n = int(span)
		}
		stride := span / uint64(n)
		retval := make([]string, 0, n-1)
		for i := 1; i < n; i++ {
			retval = append(retval, strconv.FormatInt(int64(uint64(lo)+uint64(i)*stride), 10))
		}
		return retval, nil
	}
	if lo, e1 := strconv.ParseFloat(lower, 64); e1 == nil {
		hi, err := strconv.ParseFloat(upper, 64)
		if err != nil {
			return nil, errors.Errorf("upper bound %q must be numeric to match lower bound %q", upper, lower)
		}
		if hi <= lo {
			return nil, errors.Errorf("upper bound %v must be greater than lower bound %v", upper, lower)
		}
		stride := (hi - lo) / float64(n)
		if math.IsInf(stride, 0) {
			return nil, errors.Errorf("range from %v to %v is too wide to partition", lower, upper)
		}
		retval := make([]string, 0, n-1)
		for i := 1; i < n; i++ {
			retval = append(retval, strconv.FormatFloat(lo+float64(i)*stride, 'f', -1, 64))
		}
		return retval, nil
	}
	lo, err := parsePartitionTime(lower)
	if err != nil {
		return nil, errors.Errorf("lower bound %q is not an integer, decimal or timestamp", lower)
	}
	hi, err := parsePartitionTime(upper)
	if err != nil {
		return nil, errors.Errorf("upper bound %q must be a timestamp to match lower bound %q", upper, lower)
	}
	if !hi.After(lo) {
		return nil, errors.Errorf("upper bound %v must be after lower bound %v", upper, lower)
	}
	stride := hi.Sub(lo) / time.Duration(n)
	retval := make([]string, 0, n-1)
	for i := 1; i < n; i++ {
		retval = append(retval, fmt.Sprintf("'%v'", lo.Add(time.Duration(i)*stride).Format(partitionTimeLiteralFormat)))
	}
	return retval, nil
}

func parsePartitionTime(s string) (time.Time, error) {
	var err error
	var t time.Time
	for _, f := range partitionTimeFormats {
		if t, err = time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return t, err
}

// PartitionQuery wraps a table name or a "(query) AS alias" source with the partition's predicate.
func PartitionQuery(source string, p Partition) string {
	base := SelectFromSource(source)
	if p.Where == "" {
		return base
	}
	return fmt.Sprintf("SELECT * FROM (%v) partitioned_source WHERE %v", base, p.Where)
}

// SelectFromSource returns a statement for source. A source that starts with "(" is a query
// of the form "(SELECT ...) AS alias" whose inner text is returned. Anything else is a table.
func SelectFromSource(source string) string {
	s := strings.TrimSpace(source)
	if strings.HasPrefix(s, "(") {
		return InnerQuery(s)
	}
	return fmt.Sprintf("SELECT * FROM %v", s)
}

// InnerQuery returns the text between the first "(" and the last ")" of q, or q when there are none.
func InnerQuery(q string) string {
	start := strings.Index(q, "(")
	end := strings.LastIndex(q, ")")
	if start < 0 || end <= start {
		return strings.TrimSpace(q)
	}
	return strings.TrimSpace(q[start+1 : end])
}

// SchemaDetectionQuery returns a statement that yields the columns of source without any rows.
func SchemaDetectionQuery(connectionType string, source string) string {
	inner := SelectFromSource(source)
	switch connectionType {
	case constants.ConnectionTypeSqlServer:
		return fmt.Sprintf("SELECT TOP 0 * FROM (%v) AS schema_detection", inner)
	case constants.ConnectionTypeOracle:
		return fmt.Sprintf("SELECT * FROM (%v) schema_detection WHERE 1=0", inner)
	default:
		return fmt.Sprintf("SELECT * FROM (%v) AS schema_detection LIMIT 0", inner)
	}
}

// quoteLiteral renders s as a single quoted SQL string.
func quoteLiteral(s string) string {
	return "'" + helper.EscapeSingleQuotes(s) + "'"
}
