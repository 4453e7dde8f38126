package shared

import (
	"fmt"
	"regexp"

	"github.com/relloyd/snowxfer/constants"
	"github.com/xo/dburl"
)

// ConnectionDetails holds a connect string for one logical database connection.
type ConnectionDetails struct {
	Type        string `errorTxt:"database type" mandatory:"yes"`
	LogicalName string `errorTxt:"database logical name" mandatory:"yes"`
	Dsn         string `errorTxt:"data source name i.e. connect string" mandatory:"yes"`
}

var (
	reKeyValuePassword = regexp.MustCompile(`(?i)(pwd|password)=('[^']*'|\{(?:[^}]|\}\})*\}|[^; ]*)`)
	reUrlPassword      = regexp.MustCompile(`^([^:/@]+):[^@]*@`)
)

// String pretty-prints the details with the password redacted.
func (c ConnectionDetails) String() string {
	return fmt.Sprintf("%v (%v): %v", c.LogicalName, c.Type, RedactDsn(c.Type, c.Dsn))
}

// RedactDsn removes passwords and tokens from connect strings of all supported types.
func RedactDsn(connectionType string, dsn string) string {
	switch connectionType {
	case constants.ConnectionTypeOracle, constants.ConnectionTypeNetezza:
		// ODBC and nzgo use key=value pairs.
		return reKeyValuePassword.ReplaceAllString(dsn, "$1=xxxxx")
	case constants.ConnectionTypeDatabricks, constants.ConnectionTypeSnowflake, constants.ConnectionTypeMySql:
		return reUrlPassword.ReplaceAllString(dsn, "$1:xxxxx@")
	default:
		u, err := dburl.Parse(dsn)
		if err != nil {
			return reUrlPassword.ReplaceAllString(dsn, "$1:xxxxx@")
		}
		return u.Redacted()
	}
}
