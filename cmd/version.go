package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information for SnowXfer",
	Long:  `Show version information for SnowXfer`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf(`SnowXfer
  Version:	%v
  Build date:	%v
  OS/Arch:	%v
`, version, buildDate, osArch)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
