package cmd

import (
	"github.com/relloyd/snowxfer/actions"
	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/logger"
	"github.com/spf13/cobra"
)

var snowflakeFlags = newSettingsFlags()

var snowflakeCfg = actions.SnowflakeExploreConfig{}

var snowflakeOpts = struct {
	table      string
	pattern    string
	schema     string
	rows       int
	objectType string
}{}

var snowflakeCmd = &cobra.Command{
	Use:   "snowflake",
	Short: "Explore the destination Snowflake account",
	Long:  `Explore the Snowflake database and schema that transfers write to`,
}

// snowflakeRunE loads settings that only need to be valid for Snowflake and calls fn.
func snowflakeRunE(fn func(cmd *cobra.Command, log logger.Logger) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, log, err := snowflakeFlags.load(cmd, (*config.Settings).ValidateSnowflakeOnly)
		if err != nil {
			return err
		}
		snowflakeCfg.Settings = s
		return fn(cmd, log)
	}
}

var snowflakeTestConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Test the connection to Snowflake",
	Args:  cobra.NoArgs,
	RunE: snowflakeRunE(func(cmd *cobra.Command, log logger.Logger) error {
		ctx, cancel := commandContext()
		defer cancel()
		return actions.RunSnowflakeTestConnection(ctx, log, &snowflakeCfg)
	}),
}

var snowflakeTablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List Snowflake tables",
	Args:  cobra.NoArgs,
	RunE: snowflakeRunE(func(cmd *cobra.Command, log logger.Logger) error {
		ctx, cancel := commandContext()
		defer cancel()
		return actions.RunSnowflakeTables(ctx, log, &snowflakeCfg, snowflakeOpts.pattern, snowflakeOpts.schema)
	}),
}

var snowflakeDescribeCmd = &cobra.Command{
	Use:   "describe <table>",
	Short: "Describe the columns of a Snowflake table",
	Args:  getObjectFromArgsFunc(&snowflakeOpts.table, "<table>"),
	RunE: snowflakeRunE(func(cmd *cobra.Command, log logger.Logger) error {
		ctx, cancel := commandContext()
		defer cancel()
		return actions.RunSnowflakeDescribe(ctx, log, &snowflakeCfg, snowflakeOpts.table)
	}),
}

var snowflakeSampleCmd = &cobra.Command{
	Use:   "sample <table>",
	Short: "Show sample rows from a Snowflake table",
	Args:  getObjectFromArgsFunc(&snowflakeOpts.table, "<table>"),
	RunE: snowflakeRunE(func(cmd *cobra.Command, log logger.Logger) error {
		ctx, cancel := commandContext()
		defer cancel()
		return actions.RunSnowflakeSample(ctx, log, &snowflakeCfg, snowflakeOpts.table, snowflakeOpts.rows)
	}),
}

var snowflakeDDLCmd = &cobra.Command{
	Use:   "ddl <object>",
	Short: "Print the DDL of a Snowflake object",
	Args:  getObjectFromArgsFunc(&snowflakeOpts.table, "<object>"),
	RunE: snowflakeRunE(func(cmd *cobra.Command, log logger.Logger) error {
		ctx, cancel := commandContext()
		defer cancel()
		return actions.RunSnowflakeDDL(ctx, log, &snowflakeCfg, snowflakeOpts.table, snowflakeOpts.objectType)
	}),
}

var snowflakeInfoCmd = &cobra.Command{
	Use:   "info <table>",
	Short: "Show row count, size and dates for a Snowflake table",
	Args:  getObjectFromArgsFunc(&snowflakeOpts.table, "<table>"),
	RunE: snowflakeRunE(func(cmd *cobra.Command, log logger.Logger) error {
		ctx, cancel := commandContext()
		defer cancel()
		return actions.RunSnowflakeInfo(ctx, log, &snowflakeCfg, snowflakeOpts.table)
	}),
}

func init() {
	rootCmd.AddCommand(snowflakeCmd)
	for _, c := range []*cobra.Command{
		snowflakeTestConnectionCmd,
		snowflakeTablesCmd,
		snowflakeDescribeCmd,
		snowflakeSampleCmd,
		snowflakeDDLCmd,
		snowflakeInfoCmd,
	} {
		c.SilenceUsage = true
		c.Flags().SortFlags = false
		snowflakeCmd.AddCommand(c)
	}
	switches.addFlag(snowflakeTablesCmd, &snowflakeOpts.pattern, "pattern", "", false, "")
	switches.addFlag(snowflakeTablesCmd, &snowflakeOpts.schema, "schema", "", false, " (default: the snowflake schema setting)")
	switches.addFlag(snowflakeSampleCmd, &snowflakeOpts.rows, "rows", "10", false, "")
	switches.addFlag(snowflakeDDLCmd, &snowflakeOpts.objectType, "object-type", "TABLE", false, "")
	for _, c := range snowflakeCmd.Commands() { // for each subcommand...
		snowflakeFlags.addTo(c) // the settings flags follow the command-specific ones.
	}
}
