package rdbms

import (
	"strings"
)

// SchemaTable is an object name of the form [[<database>.]<schema>.]<object>.
// Any part may be double quoted, in which case dots inside the quotes are part of the name.
type SchemaTable struct {
	SchemaTable string `errorTxt:"[<schema>.]<object>" mandatory:"yes"`
}

func NewSchemaTable(schema string, table string) SchemaTable {
	if schema == "" {
		return SchemaTable{table}
	} else {
		return SchemaTable{schema + "." + table}
	}
}

// parts splits the name on dots that are outside double quotes.
func (st SchemaTable) parts() []string {
	retval := make([]string, 0, 3)
	inQuotes := false
	start := 0
	for idx, r := range st.SchemaTable {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == '.' && !inQuotes:
			retval = append(retval, st.SchemaTable[start:idx])
			start = idx + 1
		}
	}
	return append(retval, st.SchemaTable[start:])
}

func (st SchemaTable) GetTable() string {
	p := st.parts()
	return p[len(p)-1]
}

func (st SchemaTable) GetSchema() string {
	p := st.parts()
	if len(p) < 2 {
		return ""
	}
	return p[len(p)-2]
}

func (st SchemaTable) GetDatabase() string {
	p := st.parts()
	if len(p) < 3 {
		return ""
	}
	return p[len(p)-3]
}

// AppendSuffix adds suffix to the object name, inside its quotes if it has any.
func (st SchemaTable) AppendSuffix(suffix string) string {
	p := st.parts()
	last := p[len(p)-1]
	if len(last) > 1 && strings.HasPrefix(last, `"`) && strings.HasSuffix(last, `"`) {
		last = strings.TrimSuffix(last, `"`) + suffix + `"`
	} else {
		last = last + suffix
	}
	p[len(p)-1] = last
	return strings.Join(p, ".")
}

// AppendPrefix adds prefix in front of the object name, outside any quotes, e.g. schema.%TABLE.
func (st SchemaTable) AppendPrefix(prefix string) string {
	p := st.parts()
	p[len(p)-1] = prefix + p[len(p)-1]
	return strings.Join(p, ".")
}

// SnowflakeTableName returns the bare object name as Snowflake would resolve it:
// upper case unless it is quoted.
func (st SchemaTable) SnowflakeTableName() string {
	t := st.GetTable()
	if strings.HasPrefix(t, `"`) {
		return t
	}
	return strings.ToUpper(t)
}

func (st SchemaTable) String() string {
	return st.SchemaTable
}
