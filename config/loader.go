package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/penwyp/UsagePivot/errors"
	"github.com/penwyp/UsagePivot/logging"
)

// ErrSourceNotFound is returned by sources that have nothing to contribute
var ErrSourceNotFound = stderrors.New("configuration source not found")

// Source layers settings onto the shared viper instance
type Source interface {
	Name() string
	Apply(v *viper.Viper) error
	Priority() int
}

// Validator validates configuration
type Validator interface {
	Validate(cfg *Config) error
}

// Loader loads configuration from multiple sources over DefaultConfig
type Loader struct {
	sources    []Source
	validators []Validator
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		sources:    make([]Source, 0),
		validators: make([]Validator, 0),
	}
}

// AddSource adds a configuration source
func (l *Loader) AddSource(source Source) {
	l.sources = append(l.sources, source)
}

// AddValidator adds a configuration validator
func (l *Loader) AddValidator(validator Validator) {
	l.validators = append(l.validators, validator)
}

// Load applies every source in priority order, lowest first, so that later
// sources override earlier ones. Sources reporting ErrSourceNotFound are
// skipped; any other source error aborts.
func (l *Loader) Load() (*Config, error) {
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	v := viper.New()
	for key, value := range flattenKeys(DefaultConfig()) {
		v.SetDefault(key, value)
	}

	for _, source := range l.sources {
		if err := source.Apply(v); err != nil {
			if stderrors.Is(err, ErrSourceNotFound) {
				logging.LogDebugf("config source %s skipped: %v", source.Name(), err)
				continue
			}
			return nil, errors.Wrap(errors.ErrorTypeConfig, "failed to load configuration", err).
				WithContext("source", source.Name())
		}
	}

	config, err := decode(v)
	if err != nil {
		return nil, err
	}

	// Validate final configuration
	for _, validator := range l.validators {
		if err := validator.Validate(config); err != nil {
			return nil, errors.Wrap(errors.ErrorTypeConfig, "configuration validation failed", err)
		}
	}

	return config, nil
}

// decode reads the merged settings using the yaml field names
func decode(v *viper.Viper) (*Config, error) {
	var config Config
	err := v.Unmarshal(&config, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeConfig, "failed to decode configuration", err)
	}
	return &config, nil
}

// FileSource loads configuration from a file
type FileSource struct {
	path     string
	optional bool
}

// NewFileSource creates a source for an explicitly requested file; a
// missing file is an error
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// NewOptionalFileSource creates a source that is skipped when the file does
// not exist
func NewOptionalFileSource(path string) *FileSource {
	return &FileSource{path: path, optional: true}
}

// Name returns the source name
func (f *FileSource) Name() string {
	return fmt.Sprintf("file:%s", f.path)
}

// Priority returns the source priority (higher overrides lower)
func (f *FileSource) Priority() int {
	return 100
}

// Path returns the expanded file path
func (f *FileSource) Path() string {
	return os.ExpandEnv(f.path)
}

// Apply merges the file into v
func (f *FileSource) Apply(v *viper.Viper) error {
	expandedPath := f.Path()

	if _, err := os.Stat(expandedPath); os.IsNotExist(err) {
		if f.optional {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, expandedPath)
		}
		return fmt.Errorf("configuration file not found: %s", expandedPath)
	}

	v.SetConfigFile(expandedPath)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", expandedPath, err)
	}
	return nil
}

// FirstExisting returns the first of paths that exists after env expansion
func FirstExisting(paths []string) (string, bool) {
	for _, p := range paths {
		expanded := os.ExpandEnv(p)
		if _, err := os.Stat(expanded); err == nil {
			return expanded, true
		}
	}
	return "", false
}

// EnvSource loads configuration from environment variables, after loading
// any dotenv files into the process environment
type EnvSource struct {
	prefix   string
	dotenvs  []string
	lookupFn func(string) (string, bool)
}

// NewEnvSource creates a new environment variable configuration source
func NewEnvSource(prefix string, dotenvs ...string) *EnvSource {
	return &EnvSource{
		prefix:   prefix,
		dotenvs:  dotenvs,
		lookupFn: os.LookupEnv,
	}
}

// Name returns the source name
func (e *EnvSource) Name() string {
	return fmt.Sprintf("env:%s", e.prefix)
}

// Priority returns the source priority (higher overrides lower)
func (e *EnvSource) Priority() int {
	return 200
}

// Apply sets every key whose variable is present, e.g.
// USAGEPIVOT_APP_LOG_LEVEL for app.log_level
func (e *EnvSource) Apply(v *viper.Viper) error {
	if err := LoadDotEnv(e.dotenvs...); err != nil {
		return err
	}

	for key, def := range flattenKeys(DefaultConfig()) {
		value, ok := e.lookupFn(EnvKey(e.prefix, key))
		if !ok || value == "" {
			continue
		}
		if _, isMap := def.(map[string]string); isMap {
			v.Set(key, parsePairs(value))
			continue
		}
		v.Set(key, value)
	}
	return nil
}

// FlagSource loads configuration from command-line flags
type FlagSource struct {
	flags    *pflag.FlagSet
	bindings map[string]string
}

// StandardFlagBindings maps flag names to configuration keys. A key prefixed
// with "!" receives the negated boolean.
var StandardFlagBindings = map[string]string{
	"log-level":  "app.log_level",
	"log-file":   "app.log_file",
	"timezone":   "app.timezone",
	"verbose":    "app.verbose",
	"debug":      "debug.enabled",
	"cache":      "cache.enabled",
	"cache-dir":  "cache.dir",
	"output-dir": "report.output_dir",
	"print":      "report.print",
	"view":       "report.view",
	"watch":      "report.watch",
	"no-users":   "!report.include_users",
	"theme":      "ui.theme",
	"no-color":   "ui.no_color",
}

// NewFlagSource creates a new flag configuration source
func NewFlagSource(flags *pflag.FlagSet) *FlagSource {
	return &FlagSource{
		flags:    flags,
		bindings: StandardFlagBindings,
	}
}

// Name returns the source name
func (f *FlagSource) Name() string {
	return "flags"
}

// Priority returns the source priority (higher overrides lower)
func (f *FlagSource) Priority() int {
	return 300
}

// Apply sets the keys of flags the user changed
func (f *FlagSource) Apply(v *viper.Viper) error {
	var firstErr error

	f.flags.VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed || firstErr != nil {
			return
		}
		key, ok := f.bindings[flag.Name]
		if !ok {
			return
		}

		if negated := strings.TrimPrefix(key, "!"); negated != key {
			b, err := strconv.ParseBool(flag.Value.String())
			if err != nil {
				firstErr = fmt.Errorf("flag --%s: %w", flag.Name, err)
				return
			}
			v.Set(negated, !b)
			return
		}
		v.Set(key, flag.Value.String())
	})

	return firstErr
}
