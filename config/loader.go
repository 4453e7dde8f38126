package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader merges settings layers.
// Precedence from lowest to highest: defaults, stored defaults, config file, .env file,
// process environment, programmatic overrides, CLI flags.
type Loader struct {
	ConfigFile     string                      // optional YAML or JSON file.
	EnvFile        string                      // optional .env file; it never modifies the process environment.
	StoredDefaults map[string]interface{}      // values saved with "config defaults add", keyed by dotted name.
	Overrides      map[string]interface{}      // programmatic values keyed by dotted name, e.g. "snowflake.database", or nested maps.
	Flags          *pflag.FlagSet              // only flags changed on the command line are applied.
	FlagKeys       map[string]string           // flag name -> dotted settings key.
	LookupEnv      func(string) (string, bool) // defaults to os.LookupEnv.
}

// Load builds Settings without validating them so callers can validate the subset they need.
func (l *Loader) Load() (*Settings, error) {
	v := viper.New()
	if err := setLayer(v, defaultLayer()); err != nil {
		return nil, err
	}
	if err := setLayer(v, l.StoredDefaults); err != nil {
		return nil, errors.Wrap(err, "error in stored defaults")
	}
	if l.ConfigFile != "" {
		m, err := ReadConfigFile(l.ConfigFile)
		if err != nil {
			return nil, err
		}
		if err = setLayer(v, m); err != nil {
			return nil, errors.Wrapf(err, "error in config file %q", l.ConfigFile)
		}
	}
	if l.EnvFile != "" {
		p, err := ExpandPath(l.EnvFile)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to expand env file path %q", l.EnvFile)
		}
		vars, err := godotenv.Read(p)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read env file %q", l.EnvFile)
		}
		if err = setEnv(v, mapLookup(vars)); err != nil {
			return nil, errors.Wrapf(err, "error in env file %q", l.EnvFile)
		}
	}
	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := setEnv(v, lookup); err != nil {
		return nil, err
	}
	if err := setLayer(v, l.Overrides); err != nil {
		return nil, errors.Wrap(err, "error in overrides")
	}
	if l.Flags != nil {
		l.Flags.Visit(func(f *pflag.Flag) { // Visit skips flags that were not set.
			if key, ok := l.FlagKeys[f.Name]; ok {
				v.Set(key, f.Value.String())
			}
		})
	}
	s, err := decodeSettings(v.AllSettings())
	if err != nil {
		return nil, err
	}
	if s.ConfigFile == "" {
		s.ConfigFile = l.ConfigFile
	}
	return s, nil
}

// setLayer applies every leaf of layer to v so that it replaces values from earlier layers.
// Nested maps and dotted keys are both accepted.
// MergeConfigMap drops keys whose type differs from an earlier layer, e.g. a default int
// and a float64 read from JSON, so each leaf is Set.
func setLayer(v *viper.Viper, layer map[string]interface{}) error {
	if len(layer) == 0 {
		return nil
	}
	tmp := viper.New()
	if err := tmp.MergeConfigMap(layer); err != nil {
		return err
	}
	for _, k := range tmp.AllKeys() {
		if val := tmp.Get(k); val != nil {
			v.Set(k, val)
		}
	}
	return nil
}

// LoadFromEnv is the common case of settings from the process environment only.
func LoadFromEnv() (*Settings, error) {
	l := Loader{}
	return l.Load()
}

// ReadConfigFile reads a YAML or JSON settings file into a nested map.
// The legacy top level key "source_db" is accepted as "source".
func ReadConfigFile(fileName string) (map[string]interface{}, error) {
	p, err := ExpandPath(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to expand config file path %q", fileName)
	}
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, errors.Errorf("unsupported config file format: %q", filepath.Ext(p))
	}
	b, err := ioutil.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, FileNotFoundError{name: fileName}
	} else if err != nil {
		return nil, errors.Wrapf(err, "error reading config file %q", fileName)
	}
	m := make(map[string]interface{})
	if err = yaml.Unmarshal(b, &m); err != nil { // YAML is a superset of JSON so one parser covers both.
		return nil, errors.Wrapf(err, "error parsing config file %q", fileName)
	}
	if v, ok := m["source_db"]; ok {
		if _, exists := m["source"]; !exists {
			m["source"] = v
		}
		delete(m, "source_db")
	}
	return m, nil
}

func decodeSettings(m map[string]interface{}) (*Settings, error) {
	s := &Settings{}
	dc := &mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           s,
	}
	d, err := mapstructure.NewDecoder(dc)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create settings decoder")
	}
	if err = d.Decode(m); err != nil {
		return nil, errors.Wrap(err, "unable to decode settings")
	}
	s.applyDerivedDefaults()
	return s, nil
}
