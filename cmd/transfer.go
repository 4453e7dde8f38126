package cmd

import (
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/relloyd/snowxfer/actions"
	"github.com/spf13/cobra"
)

var transferFlags = newSettingsFlags()

var transferCfg = actions.TransferConfig{}

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Transfer a table or query result into Snowflake",
	Long: `Transfer a source table or the result of a SQL query into a Snowflake table.

The destination table is created from the source column metadata. Use --mode to choose
what happens when it exists already:

  overwrite  replace the table (default)
  append     create the table if it is missing and add rows
  error      fail if the table exists

Name the destination of a query with an alias, e.g. --query "(SELECT * FROM dbo.orders) AS recent_orders",
or supply --destination-table.`,
	Example: `  snowxfer transfer --source-table dbo.orders
  snowxfer transfer -q "(SELECT id, total FROM sales.orders WHERE total > 100) AS big_orders" --mode append
  snowxfer transfer -c config.yaml -t public.customers -d CUSTOMERS_COPY --limit 1000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, log, err := transferFlags.load(cmd, nil) // RunTransfer validates
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()
		transferCfg.Settings = s
		_, err = actions.RunTransfer(ctx, log, &transferCfg)
		return err
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)
	transferCmd.Flags().SortFlags = false
	transferCmd.SilenceUsage = true
	transferFlags.bind(transferCmd, "transfer.source_table", new(string), "source-table", "", "")
	switches.addFlag(transferCmd, &transferCfg.Query, "query", "", false, "")
	transferFlags.bind(transferCmd, "transfer.destination_table", new(string), "destination-table", "", "")
	transferFlags.bind(transferCmd, "transfer.save_metadata", new(bool), "save-metadata", "false", "")
	transferFlags.addTo(transferCmd)
	switches.addFlag(transferCmd, &transferCfg.Limit, "limit", "0", false, "")
	transferFlags.bind(transferCmd, "transfer.mode", new(string), "mode", "", " (default: the transfer mode setting)")
	switches.addFlag(transferCmd, &transferCfg.ShowProgress, "show-progress", strconv.FormatBool(isatty.IsTerminal(os.Stdout.Fd())), false, "")
	switches.addFlag(transferCmd, &transferCfg.WebService, "web-service", "false", false, "")
	switches.addFlag(transferCmd, &transferCfg.WebPort, "port", "8080", false, "")
	switches.addFlag(transferCmd, &transferCfg.StatsDumpFrequencySeconds, "stats", "0", false, "")
}
