package transform

import (
	"strings"

	"github.com/relloyd/snowxfer/constants"
)

const (
	schemaTransformStr = "SchemaTransform"
	defaultTargetType  = "STRING"
)

// Column is a source column.
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// TargetColumn is a column mapped to the target database. SourceType keeps the original type.
type TargetColumn struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	SourceType string `json:"source_type"`
}

var sqlServerSchemaMapping = map[string]string{
	"varchar":   "STRING",
	"nvarchar":  "STRING",
	"char":      "STRING",
	"nchar":     "STRING",
	"text":      "STRING",
	"ntext":     "STRING",
	"int":       "INTEGER",
	"bigint":    "BIGINT",
	"smallint":  "SMALLINT",
	"decimal":   "DECIMAL",
	"numeric":   "DECIMAL",
	"float":     "FLOAT",
	"real":      "FLOAT",
	"datetime":  "TIMESTAMP",
	"datetime2": "TIMESTAMP",
	"date":      "DATE",
	"time":      "TIME",
	"bit":       "BOOLEAN",
}

// SchemaTransform maps []Column to []TargetColumn and back.
// Types missing from the mapping become STRING.
type SchemaTransform struct {
	SourceType string
	TargetType string
	mapping    map[string]string
}

// NewSchemaTransform returns a SchemaTransform for sourceType with custom entries merged over the built in mapping.
func NewSchemaTransform(sourceType string, targetType string, custom map[string]string) *SchemaTransform {
	if targetType == "" {
		targetType = constants.ConnectionTypeSnowflake
	}
	s := &SchemaTransform{SourceType: sourceType, TargetType: targetType, mapping: make(map[string]string)}
	if strings.EqualFold(sourceType, constants.ConnectionTypeSqlServer) {
		for k, v := range sqlServerSchemaMapping {
			s.mapping[k] = v
		}
	}
	for k, v := range custom {
		s.mapping[strings.ToLower(k)] = v
	}
	return s
}

func (s *SchemaTransform) Name() string {
	return schemaTransformStr
}

// MapType returns the target type for sourceType.
func (s *SchemaTransform) MapType(sourceType string) string {
	if t, ok := s.mapping[strings.ToLower(sourceType)]; ok {
		return t
	}
	return defaultTargetType
}

func (s *SchemaTransform) Encode(x interface{}) (interface{}, error) {
	cols, ok := x.([]Column)
	if !ok {
		return x, nil
	}
	retval := make([]TargetColumn, len(cols))
	for idx, c := range cols {
		retval[idx] = TargetColumn{
			Name:       c.Name,
			Type:       s.MapType(c.Type),
			Nullable:   c.Nullable,
			SourceType: c.Type,
		}
	}
	return retval, nil
}

func (s *SchemaTransform) Decode(x interface{}) (interface{}, error) {
	cols, ok := x.([]TargetColumn)
	if !ok {
		return x, nil
	}
	retval := make([]Column, len(cols))
	for idx, c := range cols {
		t := c.SourceType
		if t == "" {
			t = c.Type
		}
		retval[idx] = Column{Name: c.Name, Type: t, Nullable: c.Nullable}
	}
	return retval, nil
}
