package config

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/helper"
	"github.com/spf13/viper"
)

type envKind int

const (
	envString envKind = iota
	envInt
	envBool
)

type envBinding struct {
	name string // environment variable name.
	key  string // dotted settings key.
	kind envKind
}

// envBindings maps environment variable names onto settings keys.
var envBindings = []envBinding{
	{"DB_TYPE", "database_type", envString},
	{"SOURCE_HOST", "source.host", envString},
	{"SOURCE_PORT", "source.port", envInt},
	{"SOURCE_USERNAME", "source.username", envString},
	{"SOURCE_PASSWORD", "source.password", envString},
	{"SOURCE_DATABASE", "source.database", envString},
	{"SQLSERVER_DRIVER", "source.driver", envString},
	{"SQLSERVER_TRUST_SERVER_CERTIFICATE", "source.trust_server_certificate", envBool},
	{"ORACLE_SERVICE_NAME", "source.service_name", envString},
	{"DATABRICKS_SERVER_HOSTNAME", "source.server_hostname", envString},
	{"DATABRICKS_HTTP_PATH", "source.http_path", envString},
	{"DATABRICKS_ACCESS_TOKEN", "source.access_token", envString},
	{"SNOWFLAKE_ACCOUNT", "snowflake.account", envString},
	{"SNOWFLAKE_USER", "snowflake.user", envString},
	{"SNOWFLAKE_PASSWORD", "snowflake.password", envString},
	{"SNOWFLAKE_ROLE", "snowflake.role", envString},
	{"SNOWFLAKE_WAREHOUSE", "snowflake.warehouse", envString},
	{"SNOWFLAKE_DATABASE", "snowflake.database", envString},
	{"SNOWFLAKE_SCHEMA", "snowflake.schema", envString},
	{"SNOWFLAKE_PRIVATE_KEY_PATH", "snowflake.private_key_path", envString},
	{"SNOWFLAKE_AUTHENTICATOR", "snowflake.authenticator", envString},
	{"SNOWFLAKE_CREATE_DB_IF_MISSING", "snowflake.create_db_if_missing", envBool},
	{"SNOWFLAKE_STAGE", "snowflake.stage", envString},
	{"SNOWFLAKE_S3_BUCKET", "snowflake.s3_bucket", envString},
	{"SNOWFLAKE_S3_PREFIX", "snowflake.s3_prefix", envString},
	{"SNOWFLAKE_S3_REGION", "snowflake.s3_region", envString},
	{"SOURCE_TABLE", "transfer.source_table", envString},
	{"DESTINATION_TABLE", "transfer.destination_table", envString},
	{"BATCH_SIZE", "transfer.batch_size", envInt},
	{"MAX_WORKERS", "transfer.max_workers", envInt},
	{"FETCH_SIZE", "transfer.fetch_size", envInt},
	{"QUERY_TIMEOUT", "transfer.query_timeout", envInt},
	{"TRANSFER_MODE", "transfer.mode", envString},
	{"PARTITION_COLUMN", "transfer.partition_column", envString},
	{"LOWER_BOUND", "transfer.lower_bound", envString},
	{"UPPER_BOUND", "transfer.upper_bound", envString},
	{"NUM_PARTITIONS", "transfer.num_partitions", envInt},
	{"SAVE_METADATA", "transfer.save_metadata", envBool},
	{"LOG_LEVEL", "log_level", envString},
	{"LOG_FILE", "log_file", envString},
}

// EnvVarNames returns the names of all environment variables that feed the settings.
func EnvVarNames() []string {
	retval := make([]string, len(envBindings))
	for i, b := range envBindings {
		retval[i] = b.name
	}
	return retval
}

// setEnv applies the variables found via lookup to v.
// Unset and empty variables are skipped.
func setEnv(v *viper.Viper, lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		val, ok := lookup(b.name)
		if !ok || val == "" {
			continue
		}
		switch b.kind {
		case envInt:
			i, err := strconv.Atoi(val)
			if err != nil {
				return errors.Wrapf(err, "environment variable %v must be an integer", b.name)
			}
			v.Set(b.key, i)
		case envBool:
			v.Set(b.key, helper.GetTrueFalseStringAsBool(val))
		default:
			v.Set(b.key, val)
		}
	}
	return nil
}

// mapLookup adapts a map of variables, such as one read from a .env file, to setEnv.
func mapLookup(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}
