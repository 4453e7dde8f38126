package cmd

import (
	"fmt"

	"github.com/relloyd/snowxfer/actions"
	"github.com/relloyd/snowxfer/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage default flag values",
	Long: fmt.Sprintf(`Manage the defaults store in %q.
Use config-template to write a settings file for --config instead.`, config.Main.FullPath),
}

var defaultCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Configure default values for command flags",
	Long: fmt.Sprintf(`Configure default values for command flags, where:

- Defaults are stored in config file %q
- Keys match the long name of a flag, e.g. "mode" or "rows"
- Environment variables and flags supplied on the command line take precedence`, config.Main.FullPath),
}

var (
	defaultAddCfg    = actions.DefaultAddConfig{}
	defaultRemoveCfg = actions.DefaultRemoveConfig{}
)

var defaultAddCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"set"},
	Short:   "Add or set a default flag value",
	Example: `  snowxfer config defaults add --key mode --value append
  snowxfer config defaults add -k rows -v 25 --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultAddCfg.ConfigFile = config.Main
		return actions.RunDefaultAdd(&defaultAddCfg)
	},
}

var defaultListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print all default flag values",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return actions.RunDefaultList(&actions.DefaultListConfig{ConfigFile: config.Main})
	},
}

var defaultRemoveCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"rm", "del", "delete"},
	Short:   "Remove a default flag value",
	Example: `  snowxfer config defaults remove --key mode`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultRemoveCfg.ConfigFile = config.Main
		return actions.RunDefaultRemove(&defaultRemoveCfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(defaultCmd)
	defaultCmd.AddCommand(defaultAddCmd, defaultListCmd, defaultRemoveCmd)
	keyDesc := "The flag name to set a default for, e.g. \"mode\""
	// add
	f := defaultAddCmd.Flags()
	f.SortFlags = false
	f.StringVarP(&defaultAddCfg.Key, "key", "k", "", "* "+keyDesc)
	f.StringVarP(&defaultAddCfg.Value, "value", "v", "", "* The default value to set")
	f.BoolVarP(&defaultAddCfg.Force, "force", "f", false, "Overwrite existing values")
	_ = defaultAddCmd.MarkFlagRequired("key")
	_ = defaultAddCmd.MarkFlagRequired("value")
	// remove
	defaultRemoveCmd.Flags().StringVarP(&defaultRemoveCfg.Key, "key", "k", "", "* "+keyDesc)
	_ = defaultRemoveCmd.MarkFlagRequired("key")
	for _, c := range defaultCmd.Commands() {
		c.SilenceUsage = true
	}
}
