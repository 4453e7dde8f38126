package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/logger"
	"github.com/spf13/cobra"
)

const defaultEnvFile = ".env"

// settingsFlags holds the flags that feed config.Loader for one command.
type settingsFlags struct {
	configFile string
	envFile    string
	logLevel   string
	logFile    string
	bound      map[string]boundFlag // dotted settings key -> flag.
}

type boundFlag struct {
	name   string      // flag name, also the key in the defaults store.
	target interface{} // pointer to the flag value.
}

func newSettingsFlags() *settingsFlags {
	return &settingsFlags{bound: make(map[string]boundFlag)}
}

// addTo registers the flags common to every command that reads settings.
func (g *settingsFlags) addTo(c *cobra.Command) {
	switches.addFlag(c, &g.configFile, "config", "", false, "")
	switches.addFlag(c, &g.envFile, "env-file", "", false, "")
	switches.addFlag(c, &g.logLevel, "log-level", "", false, "")
	switches.addFlag(c, &g.logFile, "log-file", "", false, "")
	_ = c.MarkFlagFilename("config", "yaml", "yml", "json")
	g.bound["log_level"] = boundFlag{name: "log-level", target: &g.logLevel}
	g.bound["log_file"] = boundFlag{name: "log-file", target: &g.logFile}
}

// bind adds flag name to c and records that its value overrides the settings key.
func (g *settingsFlags) bind(c *cobra.Command, key string, target interface{}, name string, defaultValue string, desc2 string) {
	switches.addFlag(c, target, name, defaultValue, false, desc2)
	g.bound[key] = boundFlag{name: name, target: target}
}

// flagKeys maps flag names onto settings keys.
func (g *settingsFlags) flagKeys() map[string]string {
	m := make(map[string]string, len(g.bound))
	for k, f := range g.bound {
		m[f.name] = k
	}
	return m
}

// storedDefaults returns the values saved in the defaults store for the bound flags.
func (g *settingsFlags) storedDefaults(fnGetConfig func(key string, out interface{}) error) map[string]interface{} {
	m := make(map[string]interface{})
	for k, f := range g.bound {
		var val string
		if err := fnGetConfig(f.name, &val); err == nil && val != "" {
			m[k] = val
		}
	}
	return m
}

// twelveFactorValues returns the bound values that were read from SX_* variables.
// Zero values are skipped so they don't hide values from the environment or config file.
func (g *settingsFlags) twelveFactorValues() map[string]interface{} {
	m := make(map[string]interface{})
	for k, f := range g.bound {
		switch v := f.target.(type) {
		case *string:
			if *v != "" {
				m[k] = *v
			}
		case *int:
			if *v != 0 {
				m[k] = *v
			}
		case *bool:
			if *v {
				m[k] = *v
			}
		}
	}
	return m
}

// envFileOrDefault returns the env file to read, falling back to .env in the working dir when it exists.
func (g *settingsFlags) envFileOrDefault() string {
	if g.envFile != "" {
		return g.envFile
	}
	if fi, err := os.Stat(defaultEnvFile); err == nil && !fi.IsDir() {
		return defaultEnvFile
	}
	return ""
}

// loader returns the settings layers for command c.
// In twelveFactorMode there are no parsed flags so the values read from SX_* variables are overrides.
func (g *settingsFlags) loader(c *cobra.Command) *config.Loader {
	l := &config.Loader{
		ConfigFile:     g.configFile,
		EnvFile:        g.envFileOrDefault(),
		StoredDefaults: g.storedDefaults(config.Main.Get),
	}
	if twelveFactorMode {
		l.Overrides = g.twelveFactorValues()
	} else {
		l.Flags = c.Flags()
		l.FlagKeys = g.flagKeys()
	}
	return l
}

// load merges the settings layers and creates a logger from the result.
// Supply validate to check the subset of settings that the command needs.
func (g *settingsFlags) load(c *cobra.Command, validate func(s *config.Settings) error) (*config.Settings, logger.Logger, error) {
	s, err := g.loader(c).Load()
	if err != nil {
		return nil, nil, err
	}
	if validate != nil {
		if err = validate(s); err != nil {
			return nil, nil, err
		}
	}
	log, err := newLogger(s)
	if err != nil {
		return nil, nil, err
	}
	return s, log, nil
}

func newLogger(s *config.Settings) (logger.Logger, error) {
	if s.LogFile != "" {
		return logger.NewLoggerWithFile(constants.AppName, s.LogLevel, stackDumpOnPanic, s.LogFile)
	}
	return logger.NewLogger(constants.AppName, s.LogLevel, stackDumpOnPanic), nil
}

// commandContext is cancelled on interrupt so long-running commands can clean up.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
