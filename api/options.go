package api

import (
	"io"
	"os"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/relloyd/snowxfer/actions"
	"github.com/relloyd/snowxfer/config"
	"github.com/relloyd/snowxfer/constants"
	"github.com/relloyd/snowxfer/logger"
	"github.com/relloyd/snowxfer/rdbms/shared"
)

type Option func(o *options)

type options struct {
	log               logger.Logger
	out               io.Writer
	base              *config.Settings
	loader            *config.Loader
	destination       string
	limit             int
	mode              string
	showProgress      bool
	sfDatabase        string
	sfSchema          string
	sfWarehouse       string
	sourceDatabase    string
	overrides         map[string]interface{}
	createDbIfMissing *bool
	source            shared.Connector
	target            shared.Connector
	transferOptions   []actions.DataTransferOption
}

func newOptions(opts []Option) *options {
	o := &options{
		mode:         constants.TransferModeOverwrite,
		showProgress: true,
		out:          os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.NewLogger(constants.AppName, "info", false)
	}
	return o
}

// WithDestination sets the destination table. By default it is derived from the query alias or table name.
func WithDestination(table string) Option {
	return func(o *options) {
		o.destination = table
	}
}

// WithLimit caps the rows transferred, for testing.
func WithLimit(n int) Option {
	return func(o *options) {
		o.limit = n
	}
}

// WithMode sets overwrite, append or error. Default overwrite.
func WithMode(mode string) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithShowProgress prints what is happening to the output. Default true.
func WithShowProgress(show bool) Option {
	return func(o *options) {
		o.showProgress = show
	}
}

func WithSnowflakeDatabase(db string) Option {
	return func(o *options) {
		o.sfDatabase = db
	}
}

func WithSnowflakeSchema(schema string) Option {
	return func(o *options) {
		o.sfSchema = schema
	}
}

func WithSnowflakeWarehouse(wh string) Option {
	return func(o *options) {
		o.sfWarehouse = wh
	}
}

func WithSourceDatabase(db string) Option {
	return func(o *options) {
		o.sourceDatabase = db
	}
}

// WithConfigOverrides sets any other field by its config key, e.g. "role" or "fetch_size".
// Keys are matched against the snowflake, then source, then transfer settings.
func WithConfigOverrides(overrides map[string]interface{}) Option {
	return func(o *options) {
		o.overrides = overrides
	}
}

// WithCreateDbIfMissing controls creation of the Snowflake database and schema.
func WithCreateDbIfMissing(create bool) Option {
	return func(o *options) {
		o.createDbIfMissing = &create
	}
}

// WithSettings uses a copy of s as the base configuration instead of loading it from the environment.
func WithSettings(s *config.Settings) Option {
	return func(o *options) {
		o.base = s
	}
}

// WithLoader loads the base configuration with l, e.g. to read a config file or .env file.
func WithLoader(l *config.Loader) Option {
	return func(o *options) {
		o.loader = l
	}
}

func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithOutput sets where progress and summaries are printed. Default stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithConnections uses open connections instead of connecting with the settings.
// They are not closed.
func WithConnections(source shared.Connector, target shared.Connector) Option {
	return func(o *options) {
		o.source = source
		o.target = target
	}
}

// WithTransferOptions passes options through to the underlying actions.DataTransfer.
func WithTransferOptions(opts ...actions.DataTransferOption) Option {
	return func(o *options) {
		o.transferOptions = append(o.transferOptions, opts...)
	}
}

// settings returns the base configuration with the runtime overrides applied.
func (o *options) settings() (*config.Settings, error) {
	var s *config.Settings
	switch {
	case o.base != nil:
		s = o.base.Copy()
	case o.loader != nil:
		var err error
		if s, err = o.loader.Load(); err != nil {
			return nil, err
		}
	default:
		var err error
		if s, err = config.LoadFromEnv(); err != nil {
			return nil, err
		}
	}
	applied, err := applyOverrides(s, o)
	if err != nil {
		return nil, err
	}
	if len(applied) > 0 && o.showProgress {
		printf(o.out, "Configuration overrides: %v\n", joinComma(applied))
	}
	return s, nil
}

// applyOverrides changes s and returns a description of each change.
// A database override turns off create_db_if_missing unless it was requested explicitly.
func applyOverrides(s *config.Settings, o *options) ([]string, error) {
	var applied []string
	if o.sfDatabase != "" {
		s.Snowflake.Database = o.sfDatabase
		applied = append(applied, "database="+o.sfDatabase)
		if o.createDbIfMissing == nil {
			s.Snowflake.CreateDbIfMissing = false
			applied = append(applied, "create_db_if_missing=false")
		}
	}
	if o.sfSchema != "" {
		s.Snowflake.Schema = o.sfSchema
		applied = append(applied, "schema="+o.sfSchema)
	}
	if o.sfWarehouse != "" {
		s.Snowflake.Warehouse = o.sfWarehouse
		applied = append(applied, "warehouse="+o.sfWarehouse)
	}
	if o.sourceDatabase != "" {
		s.Source.Database = o.sourceDatabase
		applied = append(applied, "source_db="+o.sourceDatabase)
	}
	if o.createDbIfMissing != nil {
		s.Snowflake.CreateDbIfMissing = *o.createDbIfMissing
		applied = append(applied, "create_db_if_missing="+boolStr(*o.createDbIfMissing))
	}
	keys := make([]string, 0, len(o.overrides))
	for k := range o.overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := o.overrides[k]
		targets := []struct {
			prefix string
			ptr    interface{}
		}{
			{"", &s.Snowflake},
			{"source.", &s.Source},
			{"transfer.", &s.Transfer},
		}
		found := false
		for _, t := range targets {
			ok, err := decodeKey(t.ptr, k, v)
			if err != nil {
				return applied, errors.Wrapf(err, "unable to apply config override %q", k)
			}
			if ok {
				applied = append(applied, t.prefix+k+"="+toString(v))
				found = true
				break
			}
		}
		if !found {
			o.log.Warn("ignoring unknown config override: ", k)
		}
	}
	return applied, nil
}

// decodeKey sets the field of target tagged with key. It returns false when there is no such field.
func decodeKey(target interface{}, key string, value interface{}) (bool, error) {
	md := &mapstructure.Metadata{}
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Metadata:         md,
		Result:           target,
	})
	if err != nil {
		return false, err
	}
	if err = d.Decode(map[string]interface{}{key: value}); err != nil {
		return false, err
	}
	return len(md.Keys) > 0, nil
}
