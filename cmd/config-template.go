package cmd

import (
	"github.com/relloyd/snowxfer/actions"
	"github.com/spf13/cobra"
)

var configTemplateCfg = actions.ConfigTemplateConfig{}

var configTemplateCmd = &cobra.Command{
	Use:   "config-template",
	Short: "Write a starter settings file",
	Long: `Write a YAML settings file with the common source, Snowflake and transfer keys.
Edit it and supply it to other commands using --config`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return actions.RunConfigTemplate(&configTemplateCfg)
	},
}

func init() {
	rootCmd.AddCommand(configTemplateCmd)
	configTemplateCmd.SilenceUsage = true
	switches.addFlag(configTemplateCmd, &configTemplateCfg.FileName, "output-file", "config.yaml", false, "")
}
