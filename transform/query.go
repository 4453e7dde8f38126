package transform

import (
	"regexp"
	"strings"

	"github.com/relloyd/snowxfer/constants"
)

const (
	QueryTypeSimple   = "simple"
	QueryTypeCustom   = "custom"
	ComplexityLow     = "low"
	ComplexityMedium  = "medium"
	ComplexityHigh    = "high"
	queryTransformStr = "QueryTransform"
)

var reQueryAlias = regexp.MustCompile(`(?i)\)\s+AS\s+(\w+)$`)

// QueryMetadata describes a query ready for execution.
type QueryMetadata struct {
	Query               string `json:"query"`
	DestinationTable    string `json:"destination_table"`
	QueryType           string `json:"query_type"`
	EstimatedComplexity string `json:"estimated_complexity"`
}

// QueryTransform encodes a query string into QueryMetadata.
type QueryTransform struct {
	Destination   string
	originalQuery string
}

// NewQueryTransform returns a QueryTransform. When destination is empty the
// destination is derived from the query alias.
func NewQueryTransform(destination string) *QueryTransform {
	return &QueryTransform{Destination: destination}
}

func (q *QueryTransform) Name() string {
	return queryTransformStr
}

func (q *QueryTransform) Encode(x interface{}) (interface{}, error) {
	query, ok := x.(string)
	if !ok {
		return x, nil
	}
	q.originalQuery = query
	dest := q.Destination
	if dest == "" {
		dest = DestinationFromQuery(query)
	}
	qt := QueryTypeSimple
	if strings.Contains(query, "(") {
		qt = QueryTypeCustom
	}
	return QueryMetadata{
		Query:               query,
		DestinationTable:    dest,
		QueryType:           qt,
		EstimatedComplexity: EstimateComplexity(query),
	}, nil
}

// Decode returns the query held in QueryMetadata, or the last encoded query if it has none.
func (q *QueryTransform) Decode(x interface{}) (interface{}, error) {
	m, ok := x.(QueryMetadata)
	if !ok {
		return x, nil
	}
	if m.Query == "" {
		return q.originalQuery, nil
	}
	return m.Query, nil
}

// DestinationFromQuery returns the upper case alias of a query of the form "(...) AS NAME",
// or QUERY_RESULT when there is no alias.
func DestinationFromQuery(query string) string {
	m := reQueryAlias.FindStringSubmatch(strings.TrimSpace(query))
	if m == nil {
		return constants.DefaultDestinationTable
	}
	return strings.ToUpper(m[1])
}

// EstimateComplexity classifies a query by the keywords it uses.
func EstimateComplexity(query string) string {
	u := strings.ToUpper(query)
	if strings.Contains(u, "JOIN") {
		return ComplexityHigh
	}
	for _, k := range []string{"GROUP BY", "ORDER BY", "HAVING"} {
		if strings.Contains(u, k) {
			return ComplexityMedium
		}
	}
	return ComplexityLow
}
