package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/relloyd/snowxfer/config"
	c "github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/helper"
	"github.com/relloyd/snowxfer/logger"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures the value of twelveFactorMode is set such that other init() functions that configure
// Cobra can do the job of processing all environment variables that would contain equivalent of the CLI flag
// structures used by the actions.
func init() {
	setupTwelveFactorMode()
}

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variable.
func setupTwelveFactorMode() {
	mode := os.Getenv(envVarTwelveFactorMode)
	if mode != "" { // if variable for 12factor mode is set and we should read env vars to determine actions...
		twelveFactorMode = true
		if strings.ToLower(mode) == "lambda" {
			lambdaMode = true
		}
	} else { // else 12factor mode should be off...
		twelveFactorMode = false // explicitly turn off this mode since tests may have turned it on while others require it off.
		lambdaMode = false
	}
}

const (
	envVarTwelveFactorMode = c.EnvVarPrefix + "_" + "12FACTOR_MODE"
	envVarCommand          = c.EnvVarPrefix + "_" + "COMMAND"
	envVarObject           = c.EnvVarPrefix + "_" + "OBJECT" // the table to preview or the SQL to query.
	envVarStackDump        = c.EnvVarPrefix + "_" + "STACK_DUMP"
	envVarLogLevel         = "LOG_LEVEL"
)

var (
	twelveFactorMode bool // true if os env var envVarTwelveFactorMode is set
	lambdaMode       bool // true if os env var envVarTwelveFactorMode is "lambda"
	twelveFactorVars = map[string]string{
		envVarCommand:   "",
		envVarObject:    "",
		envVarStackDump: "",
	}
)

type twelveFactorAction struct {
	setupFunc  func(object string)
	runnerFunc func() error
}

var twelveFactorActions = map[string]twelveFactorAction{
	c.ActionFuncsCommandTransfer: {
		runnerFunc: func() error { return transferCmd.RunE(transferCmd, nil) },
	},
	c.ActionFuncsCommandQuery: {
		setupFunc:  func(object string) { queryCfg.Query = object },
		runnerFunc: func() error { return queryCmd.RunE(queryCmd, nil) },
	},
	c.ActionFuncsCommandPreview: {
		setupFunc:  func(object string) { previewCfg.Table = object },
		runnerFunc: func() error { return previewCmd.RunE(previewCmd, nil) },
	},
	c.ActionFuncsCommandListTables: {
		runnerFunc: func() error { return listTablesCmd.RunE(listTablesCmd, nil) },
	},
	c.ActionFuncsCommandTestConn: {
		runnerFunc: func() error { return testConnectionCmd.RunE(testConnectionCmd, nil) },
	},
}

// twelveFactorCommandNames lists the commands that can run in twelveFactorMode.
func twelveFactorCommandNames() string {
	names := make([]string, 0, len(twelveFactorActions))
	for k := range twelveFactorActions {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// isSensitiveEnvVar is true for variables whose values must not be logged.
func isSensitiveEnvVar(name string) bool {
	n := strings.ToUpper(name)
	return strings.Contains(n, "PASSWORD") || strings.Contains(n, "TOKEN") || strings.Contains(n, "SECRET")
}

func execute12FactorMode(acts map[string]twelveFactorAction) (err error) {
	logLevel := helper.ReadValueFromEnvWithDefault(envVarLogLevel, "warn")
	stackDumpOnPanic = stackDumpOnPanic || helper.GetTrueFalseStringAsBool(os.Getenv(envVarStackDump))
	log := logger.NewLogger(c.AppName, logLevel, stackDumpOnPanic)
	log.Info("SnowXfer is running in 12 Factor mode...")
	// Save values for the required variables.
	for k := range twelveFactorVars { // for each env variable that we need...
		twelveFactorVars[k] = os.Getenv(k)
		log.Debug(k, "=", twelveFactorVars[k])
	}
	logSettingsEnv(log)
	// Use the command to fetch the appropriate action.
	a, ok := acts[twelveFactorVars[envVarCommand]]
	if !ok {
		err = fmt.Errorf("invalid command %q supplied in %v, expected one of: %v",
			twelveFactorVars[envVarCommand], envVarCommand, twelveFactorCommandNames())
		log.Error(err.Error())
		return
	}
	if a.setupFunc != nil { // if the action needs an object as Cobra would have supplied via CLI args...
		if twelveFactorVars[envVarObject] == "" {
			err = fmt.Errorf("missing value for %v", envVarObject)
			log.Error(err.Error())
			return
		}
		a.setupFunc(twelveFactorVars[envVarObject])
	}
	// Run the action.
	err = a.runnerFunc()
	if err != nil {
		log.Error("Error: ", err)
	}
	return err
}

// logSettingsEnv logs the settings variables found in the environment with sensitive values obfuscated.
func logSettingsEnv(log logger.Logger) {
	for _, k := range config.EnvVarNames() {
		v, ok := os.LookupEnv(k)
		if !ok {
			continue
		}
		if isSensitiveEnvVar(k) { // if the env variable contains sensitive values...
			v = "<obfuscated>"
		}
		log.Debug(k, "=", v)
	}
}
