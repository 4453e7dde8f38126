package cmd

import (
	"github.com/relloyd/snowxfer/actions"
	"github.com/relloyd/snowxfer/config"
	"github.com/spf13/cobra"
)

var testConnectionFlags = newSettingsFlags()

var testConnectionCfg = actions.TestConnectionConfig{}

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Test the connection to the source database",
	Long:  `Connect to the source database and print its version`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, log, err := testConnectionFlags.load(cmd, (*config.Settings).ValidateSourceOnly)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()
		testConnectionCfg.Settings = s
		return actions.RunTestConnection(ctx, log, &testConnectionCfg)
	},
}

func init() {
	rootCmd.AddCommand(testConnectionCmd)
	testConnectionCmd.Flags().SortFlags = false
	testConnectionCmd.SilenceUsage = true
	testConnectionFlags.addTo(testConnectionCmd)
}
