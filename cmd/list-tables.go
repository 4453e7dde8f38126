package cmd

import (
	"github.com/relloyd/snowxfer/actions"
	"github.com/relloyd/snowxfer/config"
	"github.com/spf13/cobra"
)

var listTablesFlags = newSettingsFlags()

var listTablesCfg = actions.ListTablesConfig{}

var listTablesCmd = &cobra.Command{
	Use:   "list-tables",
	Short: "List the tables in the source database",
	Long:  `List the base tables found in the source database INFORMATION_SCHEMA, optionally for one schema`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, log, err := listTablesFlags.load(cmd, (*config.Settings).ValidateSourceOnly)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()
		listTablesCfg.Settings = s
		return actions.RunListTables(ctx, log, &listTablesCfg)
	},
}

func init() {
	rootCmd.AddCommand(listTablesCmd)
	listTablesCmd.Flags().SortFlags = false
	listTablesCmd.SilenceUsage = true
	switches.addFlag(listTablesCmd, &listTablesCfg.Schema, "schema", "", false, "")
	listTablesFlags.addTo(listTablesCmd)
}
