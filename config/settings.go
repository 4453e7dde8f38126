package config

import (
	"fmt"
	"strings"

	"github.com/relloyd/snowxfer/constants"
)

// DatabaseType is the kind of source database to read from.
type DatabaseType string

const (
	SqlServer  DatabaseType = constants.ConnectionTypeSqlServer
	Postgres   DatabaseType = constants.ConnectionTypePostgres
	MySql      DatabaseType = constants.ConnectionTypeMySql
	Oracle     DatabaseType = constants.ConnectionTypeOracle
	Databricks DatabaseType = constants.ConnectionTypeDatabricks
	Netezza    DatabaseType = constants.ConnectionTypeNetezza
)

var supportedDatabaseTypes = []DatabaseType{SqlServer, Postgres, MySql, Oracle, Databricks, Netezza}

var defaultPorts = map[DatabaseType]int{
	SqlServer: 1433,
	Postgres:  5432,
	MySql:     3306,
	Oracle:    1521,
	Netezza:   5480,
}

// DefaultSqlServerDriver is the default of source.driver.
// The setting is read so existing config files still load; go-mssqldb speaks TDS itself and no connection uses it.
const DefaultSqlServerDriver = "ODBC Driver 18 for SQL Server"

// IsValid returns true if d is a supported source type.
func (d DatabaseType) IsValid() bool {
	for _, v := range supportedDatabaseTypes {
		if d == v {
			return true
		}
	}
	return false
}

func (d DatabaseType) String() string {
	return string(d)
}

// DefaultPort returns the usual listener port for the database type, or 0 if there isn't one.
func (d DatabaseType) DefaultPort() int {
	return defaultPorts[d]
}

type Source struct {
	Host                   string `mapstructure:"host" yaml:"host,omitempty"`
	Port                   int    `mapstructure:"port" yaml:"port,omitempty"`
	Username               string `mapstructure:"username" yaml:"username,omitempty"`
	Password               string `mapstructure:"password" yaml:"password,omitempty"`
	Database               string `mapstructure:"database" yaml:"database,omitempty"`
	Driver                 string `mapstructure:"driver" yaml:"driver,omitempty"` // not used to connect, see DefaultSqlServerDriver.
	TrustServerCertificate bool   `mapstructure:"trust_server_certificate" yaml:"trust_server_certificate,omitempty"`
	ServiceName            string `mapstructure:"service_name" yaml:"service_name,omitempty"`
	ServerHostname         string `mapstructure:"server_hostname" yaml:"server_hostname,omitempty"`
	HttpPath               string `mapstructure:"http_path" yaml:"http_path,omitempty"`
	AccessToken            string `mapstructure:"access_token" yaml:"access_token,omitempty"`
}

// String prints the source without secrets.
func (s Source) String() string {
	if s.ServerHostname != "" {
		return fmt.Sprintf("%v%v", s.ServerHostname, s.HttpPath)
	}
	return fmt.Sprintf("%v@%v:%v/%v", s.Username, s.Host, s.Port, s.Database)
}

type Snowflake struct {
	Account           string `mapstructure:"account" yaml:"account,omitempty"`
	User              string `mapstructure:"user" yaml:"user,omitempty"`
	Password          string `mapstructure:"password" yaml:"password,omitempty"`
	Role              string `mapstructure:"role" yaml:"role,omitempty"`
	Warehouse         string `mapstructure:"warehouse" yaml:"warehouse,omitempty"`
	Database          string `mapstructure:"database" yaml:"database,omitempty"`
	Schema            string `mapstructure:"schema" yaml:"schema,omitempty"`
	PrivateKeyPath    string `mapstructure:"private_key_path" yaml:"private_key_path,omitempty"`
	PrivateKeyPem     string `mapstructure:"private_key_pem" yaml:"private_key_pem,omitempty"`
	Authenticator     string `mapstructure:"authenticator" yaml:"authenticator,omitempty"`
	CreateDbIfMissing bool   `mapstructure:"create_db_if_missing" yaml:"create_db_if_missing"`
	Stage             string `mapstructure:"stage" yaml:"stage,omitempty"`         // named external stage; empty means the table stage.
	S3Bucket          string `mapstructure:"s3_bucket" yaml:"s3_bucket,omitempty"` // bucket name or s3://bucket/prefix URL behind Stage.
	S3Prefix          string `mapstructure:"s3_prefix" yaml:"s3_prefix,omitempty"`
	S3Region          string `mapstructure:"s3_region" yaml:"s3_region,omitempty"`
}

// UsesExternalStage is true when files should be uploaded to S3 and loaded through a named stage.
func (s Snowflake) UsesExternalStage() bool {
	return s.Stage != "" && s.S3Bucket != ""
}

type Transfer struct {
	SourceTable      string `mapstructure:"source_table" yaml:"source_table,omitempty"`
	DestinationTable string `mapstructure:"destination_table" yaml:"destination_table,omitempty"`
	BatchSize        int    `mapstructure:"batch_size" yaml:"batch_size,omitempty"`
	MaxWorkers       int    `mapstructure:"max_workers" yaml:"max_workers,omitempty"`
	FetchSize        int    `mapstructure:"fetch_size" yaml:"fetch_size,omitempty"`
	QueryTimeout     int    `mapstructure:"query_timeout" yaml:"query_timeout,omitempty"` // seconds
	Mode             string `mapstructure:"mode" yaml:"mode,omitempty"`
	PartitionColumn  string `mapstructure:"partition_column" yaml:"partition_column,omitempty"`
	LowerBound       string `mapstructure:"lower_bound" yaml:"lower_bound,omitempty"`
	UpperBound       string `mapstructure:"upper_bound" yaml:"upper_bound,omitempty"`
	NumPartitions    int    `mapstructure:"num_partitions" yaml:"num_partitions,omitempty"`
	SaveMetadata     bool   `mapstructure:"save_metadata" yaml:"save_metadata,omitempty"`
}

// IsPartitioned is true when reads should be split across partition_column ranges.
func (t Transfer) IsPartitioned() bool {
	return t.PartitionColumn != "" && t.NumPartitions > 1
}

// Settings is the fully merged configuration for one run.
type Settings struct {
	DatabaseType DatabaseType `mapstructure:"database_type" yaml:"database_type"`
	Source       Source       `mapstructure:"source" yaml:"source"`
	Snowflake    Snowflake    `mapstructure:"snowflake" yaml:"snowflake"`
	Transfer     Transfer     `mapstructure:"transfer" yaml:"transfer"`
	LogLevel     string       `mapstructure:"log_level" yaml:"log_level,omitempty"`
	LogFile      string       `mapstructure:"log_file" yaml:"log_file,omitempty"`
	ConfigFile   string       `mapstructure:"config_file" yaml:"config_file,omitempty"`
}

// Copy returns an independent copy of s.
func (s *Settings) Copy() *Settings {
	c := *s
	return &c
}

// defaultLayer is the lowest precedence layer of the merge.
func defaultLayer() map[string]interface{} {
	return map[string]interface{}{
		"database_type": string(SqlServer),
		"log_level":     "info",
		"source": map[string]interface{}{
			"trust_server_certificate": true,
		},
		"snowflake": map[string]interface{}{
			"role":                 "ACCOUNTADMIN",
			"warehouse":            "COMPUTE_WH",
			"schema":               "PUBLIC",
			"create_db_if_missing": true,
		},
		"transfer": map[string]interface{}{
			"batch_size":    10000,
			"max_workers":   4,
			"fetch_size":    1000,
			"query_timeout": 300,
			"mode":          constants.TransferModeOverwrite,
		},
	}
}

// applyDerivedDefaults fills values that depend on other settings.
func (s *Settings) applyDerivedDefaults() {
	s.DatabaseType = DatabaseType(strings.ToLower(string(s.DatabaseType)))
	if s.Source.Port == 0 {
		s.Source.Port = s.DatabaseType.DefaultPort()
	}
	if s.DatabaseType == SqlServer && s.Source.Driver == "" {
		s.Source.Driver = DefaultSqlServerDriver
	}
	s.Transfer.Mode = strings.ToLower(s.Transfer.Mode)
	if s.Transfer.DestinationTable == "" {
		s.Transfer.DestinationTable = s.Transfer.SourceTable
	}
}

// ValidationError lists every problem found in the settings.
type ValidationError struct {
	Problems []string
}

func (v ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(v.Problems, "; ")
}

// Validate checks the settings needed to connect and transfer.
// A source table is not required here since a query can be supplied instead.
func (s *Settings) Validate() error {
	p := make([]string, 0)
	if !s.DatabaseType.IsValid() {
		p = append(p, fmt.Sprintf("unsupported database type %q", s.DatabaseType))
	}
	p = append(p, s.validateSource()...)
	p = append(p, s.ValidateSnowflake()...)
	p = append(p, s.validateTransfer()...)
	if len(p) > 0 {
		return ValidationError{Problems: p}
	}
	return nil
}

// ValidateSourceOnly checks the settings needed by commands that only talk to the source database.
func (s *Settings) ValidateSourceOnly() error {
	p := make([]string, 0)
	if !s.DatabaseType.IsValid() {
		p = append(p, fmt.Sprintf("unsupported database type %q", s.DatabaseType))
	}
	p = append(p, s.validateSource()...)
	if len(p) > 0 {
		return ValidationError{Problems: p}
	}
	return nil
}

// ValidateSnowflakeOnly checks the settings needed by commands that only talk to Snowflake.
func (s *Settings) ValidateSnowflakeOnly() error {
	if p := s.ValidateSnowflake(); len(p) > 0 {
		return ValidationError{Problems: p}
	}
	return nil
}

func (s *Settings) validateSource() (p []string) {
	if s.DatabaseType == Databricks {
		if s.Source.ServerHostname == "" || s.Source.HttpPath == "" || s.Source.AccessToken == "" {
			p = append(p, "server hostname, HTTP path, and access token are required")
		}
		return
	}
	if s.Source.Host == "" || s.Source.Username == "" || s.Source.Password == "" {
		p = append(p, "host, username, and password are required")
	}
	return
}

// ValidateSnowflake returns the list of problems with the Snowflake settings.
func (s *Settings) ValidateSnowflake() (p []string) {
	sf := s.Snowflake
	if sf.Account == "" {
		p = append(p, "missing Snowflake account")
	}
	if sf.User == "" {
		p = append(p, "missing Snowflake user")
	}
	if sf.Password == "" && sf.PrivateKeyPath == "" && sf.PrivateKeyPem == "" && sf.Authenticator == "" {
		p = append(p, "no Snowflake authentication method provided; supply a password, private key or authenticator")
	}
	if sf.Stage != "" && sf.S3Bucket != "" && sf.S3Region == "" {
		p = append(p, "an S3 region is required with an external stage bucket")
	}
	return
}

func (s *Settings) validateTransfer() (p []string) {
	t := s.Transfer
	switch t.Mode {
	case constants.TransferModeOverwrite, constants.TransferModeAppend, constants.TransferModeError:
	default:
		p = append(p, "mode must be 'overwrite', 'append', or 'error'")
	}
	if t.BatchSize <= 0 {
		p = append(p, "batch size must be greater than zero")
	}
	if t.MaxWorkers <= 0 {
		p = append(p, "max workers must be greater than zero")
	}
	if t.FetchSize <= 0 {
		p = append(p, "fetch size must be greater than zero")
	}
	if t.QueryTimeout < 0 {
		p = append(p, "query timeout cannot be negative")
	}
	set := 0
	for _, v := range []bool{t.PartitionColumn != "", t.LowerBound != "", t.UpperBound != "", t.NumPartitions != 0} {
		if v {
			set++
		}
	}
	if set != 0 && set != 4 {
		p = append(p, "partitioning requires partition column, lower bound, upper bound and number of partitions together")
	} else if set == 4 && t.NumPartitions < 1 {
		p = append(p, "number of partitions must be greater than zero")
	}
	return
}
