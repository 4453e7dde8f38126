package api

import (
	"bytes"
	"testing"

	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() *config.Settings {
	return &config.Settings{
		DatabaseType: config.SqlServer,
		Source:       config.Source{Host: "localhost", Port: 1433, Username: "sa", Password: "pw", Database: "sales"},
		Snowflake:    config.Snowflake{Account: "acct", User: "u", Password: "p", Warehouse: "WH", Database: "DB", Schema: "PUBLIC", CreateDbIfMissing: true},
		Transfer: config.Transfer{
			BatchSize:  1000,
			FetchSize:  100,
			MaxWorkers: 1,
		},
	}
}

func testLogger() logger.Logger {
	return logger.NewLogger(constants.AppName, "error", false)
}

func TestSettingsOverrides(t *testing.T) {
	base := testSettings()
	out := &bytes.Buffer{}
	o := newOptions([]Option{
		WithSettings(base),
		WithLogger(testLogger()),
		WithOutput(out),
		WithSnowflakeDatabase("ANALYTICS"),
		WithSnowflakeSchema("RAW"),
		WithSourceDatabase("sales_archive"),
		WithConfigOverrides(map[string]interface{}{
			"role":              "LOADER",
			"fetch_size":        "5000",
			"trust_server_cert": true,
		}),
	})

	s, err := o.settings()
	require.NoError(t, err)

	// Test 1 - named overrides are applied to a copy.
	assert.Equal(t, "ANALYTICS", s.Snowflake.Database)
	assert.Equal(t, "RAW", s.Snowflake.Schema)
	assert.Equal(t, "sales_archive", s.Source.Database)
	assert.Equal(t, "DB", base.Snowflake.Database)

	// Test 2 - a database override turns off create_db_if_missing.
	assert.False(t, s.Snowflake.CreateDbIfMissing)
	assert.True(t, base.Snowflake.CreateDbIfMissing)

	// Test 3 - config_overrides keys are matched to snowflake then transfer fields.
	assert.Equal(t, "LOADER", s.Snowflake.Role)
	assert.Equal(t, 5000, s.Transfer.FetchSize)

	// Test 4 - the overrides are reported.
	assert.Contains(t, out.String(), "Configuration overrides: database=ANALYTICS, create_db_if_missing=false, schema=RAW")
	assert.Contains(t, out.String(), "transfer.fetch_size=5000")
	assert.NotContains(t, out.String(), "trust_server_cert")
}

func TestSettingsCreateDbIfMissingExplicit(t *testing.T) {
	o := newOptions([]Option{
		WithSettings(testSettings()),
		WithLogger(testLogger()),
		WithShowProgress(false),
		WithSnowflakeDatabase("ANALYTICS"),
		WithCreateDbIfMissing(true),
	})
	s, err := o.settings()
	require.NoError(t, err)
	assert.True(t, s.Snowflake.CreateDbIfMissing)
}

func TestSettingsFromLoader(t *testing.T) {
	env := map[string]string{
		"DB_TYPE":            "postgresql",
		"SOURCE_HOST":        "pg",
		"SOURCE_USERNAME":    "u",
		"SOURCE_PASSWORD":    "p",
		"SNOWFLAKE_ACCOUNT":  "acct",
		"SNOWFLAKE_USER":     "sf",
		"SNOWFLAKE_PASSWORD": "pw",
	}
	l := &config.Loader{LookupEnv: func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}}
	o := newOptions([]Option{WithLoader(l), WithLogger(testLogger()), WithShowProgress(false)})
	s, err := o.settings()
	require.NoError(t, err)
	assert.Equal(t, config.Postgres, s.DatabaseType)
	assert.Equal(t, "pg", s.Source.Host)
}

func TestDecodeKey(t *testing.T) {
	s := testSettings()
	// Test 1 - a known key is set with weak typing.
	ok, err := decodeKey(&s.Transfer, "max_workers", "8")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 8, s.Transfer.MaxWorkers)
	assert.Equal(t, 1000, s.Transfer.BatchSize)
	// Test 2 - an unknown key is reported.
	ok, err = decodeKey(&s.Snowflake, "max_workers", "8")
	require.NoError(t, err)
	assert.False(t, ok)
	// Test 3 - a value of the wrong type is an error.
	_, err = decodeKey(&s.Transfer, "max_workers", "many")
	assert.Error(t, err)
}
