package cmd

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/helper"
	"github.com/spf13/cobra"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"mock": cliFlag{name: "mock", shortHand: "", desc: "mock switch for testing"},
	"config": cliFlag{name: "config", shortHand: "c",
		desc: "YAML or JSON settings file. Values in the environment and flags take precedence"},
	"env-file": cliFlag{name: "env-file", shortHand: "e",
		desc: "File of KEY=value environment settings (default: .env when it exists)"},
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"error | warn | info | debug\" (default: the log_level setting)"},
	"log-file": cliFlag{name: "log-file", shortHand: "",
		desc: "Also write log messages to this file"},
	"source-table": cliFlag{name: "source-table", shortHand: "t",
		desc: "Source [<schema>.]<table> to transfer"},
	"query": cliFlag{name: "query", shortHand: "q",
		desc: "SQL query to transfer instead of a table. Use \"(SELECT ...) AS name\" to name the destination"},
	"destination-table": cliFlag{name: "destination-table", shortHand: "d",
		desc: "Snowflake table to write to (default: the query alias or source table name)"},
	"save-metadata": cliFlag{name: "save-metadata", shortHand: "",
		desc: "Save a JSON metadata file describing the transfer"},
	"limit": cliFlag{name: "limit", shortHand: "n",
		desc: "Maximum number of rows to read from the source (0 for all rows)"},
	"mode": cliFlag{name: "mode", shortHand: "m",
		desc: "What to do when the destination table exists: \"overwrite | append | error\""},
	"show-progress": cliFlag{name: "show-progress", shortHand: "",
		desc: "Count the source rows and log progress while transferring (default: true on a terminal)"},
	"web-service": cliFlag{name: "web-service", shortHand: "w",
		desc: "Launch a web service to monitor the transfer"},
	"port": cliFlag{name: "port", shortHand: "p",
		desc: "Port for the web service to listen on"},
	"stats": cliFlag{name: "stats", shortHand: "L",
		desc: "Number of seconds between dumping step statistics (use 0 to disable)"},
	"schema": cliFlag{name: "schema", shortHand: "s",
		desc: "Schema name (omit to use all schemas or the default)"},
	"rows": cliFlag{name: "rows", shortHand: "r",
		desc: "Number of rows to show"},
	"csv": cliFlag{name: "csv", shortHand: "",
		desc: "Print results as CSV lines instead of a table"},
	"print-header": cliFlag{name: "print-header", shortHand: "x",
		desc: "Print a header for CSV query results"},
	"dry-run": cliFlag{name: "dry-run", shortHand: "",
		desc: "Print the SQL query without executing it"},
	"output-file": cliFlag{name: "output-file", shortHand: "o",
		desc: "File to write"},
	"pattern": cliFlag{name: "pattern", shortHand: "",
		desc: "Only show tables with names LIKE this pattern"},
	"object-type": cliFlag{name: "type", shortHand: "",
		desc: "Object type: TABLE, VIEW, SCHEMA, DATABASE etc"},
}

// addFlag add a flag to cobra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map, cliFlags.
// When running in twelveFactorMode, the targetVar is populated using the value of environment variable for the supplied
// name, or if not set then the supplied default value is used.
// When NOT running in twelveFactorMode, the default value is fetched from config if it exists else the supplied
// defaultValue is applied.
// The flag is marked as required in Cobra based on the value of required.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw := f.getCliFlag(name, defaultValue, config.Main.Get) // get the cliFlag details, with defaults taken from config or the supplied defaultValue
	desc := sw.desc + desc2
	switch p := targetVar.(type) {
	case *string:
		if twelveFactorMode {
			*p = sw.val
		} else {
			c.Flags().StringVarP(p, sw.name, sw.shortHand, sw.val, desc)
		}
	case *bool:
		b := helper.GetTrueFalseStringAsBool(sw.val)
		if twelveFactorMode {
			*p = b
		} else {
			c.Flags().BoolVarP(p, sw.name, sw.shortHand, b, desc)
		}
	case *int:
		i := 0
		if sw.val != "" {
			var err error
			if i, err = strconv.Atoi(sw.val); err != nil {
				fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
				os.Exit(1)
			}
		}
		if twelveFactorMode {
			*p = i
		} else {
			c.Flags().IntVarP(p, sw.name, sw.shortHand, i, desc)
		}
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	if required && !twelveFactorMode {
		_ = c.MarkFlagRequired(sw.name)
	}
}

// getCliFlag fetches the value of name from the environment, when running in twelveFactorMode,
// else read the Main config file to find it.
// If a value cannot be found then use the supplied defaultValue in its place.
func (f *cliFlags) getCliFlag(name string, defaultValue string, fnGetConfig func(key string, out interface{}) error) cliFlag {
	s, ok := switches[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	if twelveFactorMode { // if we should read env vars...
		if err := helper.ReadValueFromEnv(flagNameToEnvVar(s.name), &s.val); err != nil {
			s.val = defaultValue
		}
	} else {
		if err := fnGetConfig(s.name, &s.val); err != nil || s.val == "" {
			s.val = defaultValue
		}
	}
	return s
}

// flagNameToEnvVar will form a sanitised environment variable name using constants.EnvVarPrefix.
func flagNameToEnvVar(name string) string {
	return helper.GetPrefixedEnvVarName(name)
}

// getQueryFromArgsFunc concatenates all args into a string.
// Returns an error if there are no args.
func getQueryFromArgsFunc(query *string, customErrMsg string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			if customErrMsg != "" {
				return errors.New(customErrMsg)
			}
			return errors.New("please supply a SQL query")
		}
		*query = strings.Join(args, " ")
		return nil
	}
}

// getObjectFromArgsFunc saves the single arg in obj.
func getObjectFromArgsFunc(obj *string, what string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("requires one argument: %v", what)
		}
		*obj = args[0]
		return nil
	}
}
