package constants

const (
	ChanSize                     = 64 // batches in flight between pipeline steps; bounds memory use together with fetch size.
	StatsCaptureFrequencySeconds = 5
	TimeFormatYearSeconds        = "20060102T150405" // used for human readable file names
	TimeFormatYearSecondsRegex   = "[0-9]{4}[0-9]{2}[0-9]{2}T[0-9]{6}"
	TimeFormatYearSecondsTZ      = "20060102T150405-0700" // a format that includes the time zone and is compatible with Snowflake.
	TimeFormatMetadataFile       = "20060102_150405"
	MetadataVersion              = "1.0"
	EmojiBang                    = "\U0001F4A5"
	AppName                      = "snowxfer"
	EnvVarPrefix                 = "SX" // prefixed for environment variables in twelveFactorMode
	ActionFuncsCommandTransfer   = "transfer"
	ActionFuncsCommandQuery      = "query"
	ActionFuncsCommandPreview    = "preview"
	ActionFuncsCommandListTables = "list-tables"
	ActionFuncsCommandTestConn   = "test-connection"
	ConnectionTypeSqlServer      = "sqlserver"
	ConnectionTypePostgres       = "postgresql"
	ConnectionTypeMySql          = "mysql"
	ConnectionTypeOracle         = "oracle"
	ConnectionTypeDatabricks     = "databricks"
	ConnectionTypeNetezza        = "netezza"
	ConnectionTypeSnowflake      = "snowflake"
	ConnectionTypeS3             = "s3"
	DefaultDestinationTable      = "QUERY_RESULT"
	TransferModeOverwrite        = "overwrite"
	TransferModeAppend           = "append"
	TransferModeError            = "error"
)
