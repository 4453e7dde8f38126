package cmd

import (
	"fmt"

	"github.com/relloyd/snowxfer/constants"
	"github.com/spf13/cobra"
)

var twelveFactorCmd = &cobra.Command{
	Use:   "12f",
	Short: `View help notes for running in Twelve-Factor mode`,
	Long: fmt.Sprintf(`
SnowXfer can be controlled by environment variables and is a good fit to run 
in serverless environments such as AWS Lambda.

To enable Twelve-Factor mode, set environment variable %[1]s_12FACTOR_MODE=1 
or %[1]s_12FACTOR_MODE=lambda to run as a Lambda handler.
Choose the command with %[1]s_COMMAND, one of: %[2]s.
Supply the table to preview or the SQL to query in %[1]s_OBJECT.

Settings are read from the usual environment variables (DB_TYPE, SOURCE_HOST, 
SNOWFLAKE_ACCOUNT, TRANSFER_MODE etc). To supply other flags documented by the 
regular command-line usage, set an equivalent environment variable using the 
following convention: 

<%[1]s>_<flag long-name in upper case with dashes as underscores>

For example, this will transfer sqlserver table dbo.orders to Snowflake:

export %[1]s_12FACTOR_MODE=1
export %[1]s_COMMAND=transfer
export DB_TYPE=sqlserver
export SOURCE_HOST=localhost
export SOURCE_USERNAME=sa
export SOURCE_PASSWORD=secret
export SOURCE_DATABASE=sales
export SNOWFLAKE_ACCOUNT=xy12345.eu-west-2.aws
export SNOWFLAKE_USER=loader
export SNOWFLAKE_PASSWORD=secret
export SNOWFLAKE_DATABASE=RAW
export %[1]s_SOURCE_TABLE=dbo.orders
export %[1]s_LIMIT=1000

Then execute the CLI tool without any arguments or flags to kick off the transfer.

`, constants.EnvVarPrefix, twelveFactorCommandNames()),
}

func init() {
	rootCmd.AddCommand(twelveFactorCmd)
}
