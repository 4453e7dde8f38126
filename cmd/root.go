package cmd

import (
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Default values may be set at compile time.
	version          = "0.3.0"
	buildDate        = "2025-01-02T03:04+0000"
	osArch           = "linux"
	stackDumpOnPanic bool
)

var rootCmd = &cobra.Command{
	Use:   "snowxfer",
	Short: "Transfer tables and query results from relational databases into Snowflake",
	Long: `
                        __  __ __
  ___ _ __   _____      _\ \/ // _| ___ _ __
 / __| '_ \ / _ \ \ /\ / /\  /| |_ / _ \ '__|
 \__ \ | | | (_) \ V  V / /  \|  _|  __/ |
 |___/_| |_|\___/ \_/\_/ /_/\_\_|  \___|_|

SnowXfer copies tables and query results from SQL Server, PostgreSQL, MySQL, Oracle,
Databricks and Netezza into Snowflake. Source schemas are translated to Snowflake DDL,
rows are staged as compressed CSV and loaded with PUT and COPY INTO.
Settings come from a config file, a .env file, the environment and command-line flags,
in increasing order of precedence.`,
}

func init() {
	cobra.EnableCommandSorting = false
	rootCmd.SetGlobalNormalizationFunc(underscoresToDashes)
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// underscoresToDashes lets users type --source_table as well as --source-table.
func underscoresToDashes(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if twelveFactorMode { // if we are running based on environment variables...
		if lambdaMode { // if we should handle lambda execution...
			lambda.Start(func() error { return execute12FactorMode(twelveFactorActions) })
		} else {
			if err := execute12FactorMode(twelveFactorActions); err != nil {
				// execute12FactorMode logs the error.
				os.Exit(1)
			}
		}
	} else { // else we're using CLI args and flags via Cobra...
		if err := rootCmd.Execute(); err != nil {
			// Execute() prints the error.
			os.Exit(1)
		}
	}
}
