package cmd

import (
	"github.com/relloyd/snowxfer/actions"
	"github.com/relloyd/snowxfer/config"
	"github.com/spf13/cobra"
)

var previewFlags = newSettingsFlags()

var previewCfg = actions.PreviewConfig{}

var previewCmd = &cobra.Command{
	Use:   "preview <[schema.]table>",
	Short: "Show the first rows of a source table",
	Long:  `Show the first rows of a source table using TOP or LIMIT as the source dialect requires`,
	Args:  getObjectFromArgsFunc(&previewCfg.Table, "<[schema.]table>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, log, err := previewFlags.load(cmd, (*config.Settings).ValidateSourceOnly)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()
		previewCfg.Settings = s
		return actions.RunPreview(ctx, log, &previewCfg)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().SortFlags = false
	previewCmd.SilenceUsage = true
	switches.addFlag(previewCmd, &previewCfg.Rows, "rows", "10", false, "")
	previewFlags.addTo(previewCmd)
}
