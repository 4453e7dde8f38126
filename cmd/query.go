package cmd

import (
	"github.com/relloyd/snowxfer/actions"
	"github.com/relloyd/snowxfer/config"
	"github.com/spf13/cobra"
)

const queryArgsDefinitionTxt string = "<SQL-optionally-quoted>"

var queryFlags = newSettingsFlags()

var queryCfg = actions.QueryConfig{}

var queryCmd = &cobra.Command{
	Use:   "query " + queryArgsDefinitionTxt,
	Short: "Run a SQL query against the source database",
	Long: `Execute a query by supplying the SQL as plain arguments. 
It's only necessary to wrap the statement in quotes if it contains special characters 
that will be interpreted by your shell. You can use a dry-run to check formatting.
Results are printed as a table, or as CSV lines with --csv.
A row limit is added as TOP or LIMIT when the query has neither.`,
	Args: getQueryFromArgsFunc(&queryCfg.Query, ""),
	RunE: func(cmd *cobra.Command, args []string) error {
		validate := (*config.Settings).ValidateSourceOnly
		if queryCfg.DryRun { // if we only print the SQL...
			validate = nil
		}
		s, log, err := queryFlags.load(cmd, validate)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()
		queryCfg.Settings = s
		return actions.RunQuery(ctx, log, &queryCfg)
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().SortFlags = false
	queryCmd.SilenceUsage = true // avoid dumping command help when a SQL syntax error occurs.
	switches.addFlag(queryCmd, &queryCfg.Limit, "limit", "0", false, "")
	switches.addFlag(queryCmd, &queryCfg.CsvOutput, "csv", "false", false, "")
	switches.addFlag(queryCmd, &queryCfg.PrintHeader, "print-header", "false", false, "")
	switches.addFlag(queryCmd, &queryCfg.DryRun, "dry-run", "false", false, "")
	queryFlags.addTo(queryCmd)
}
