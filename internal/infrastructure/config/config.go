// Package config provides configuration loading for the vcs-prompt application.
// Settings are resolved once per invocation with the precedence
// flag > environment (VCS_PROMPT_*) > config file > default.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/MyCarrier-DevOps/vcs-prompt/internal/domain"
)

// Environment variable names.
const (
	// EnvPrefix prefixes every setting read from the environment.
	EnvPrefix = "VCS_PROMPT"

	// EnvConfigFile names an explicit config file, bypassing the search path.
	EnvConfigFile = "VCS_PROMPT_CONFIG"

	// EnvXDGConfigHome is the base directory searched for config.yaml.
	EnvXDGConfigHome = "XDG_CONFIG_HOME"
)

// Setting keys. Flags, environment variables and config file entries share these names.
const (
	KeyCwd           = "cwd"
	KeyDepth         = "ancestor-bookmark-depth"
	KeyDisplayLimit  = "bookmarks-display-limit"
	KeyTruncateName  = "truncate-name"
	KeyIDLength      = "id-length"
	KeyStripPrefix   = "strip-bookmark-prefix"
	KeyBackend       = "backend"
	KeyJJSymbol      = "jj-symbol"
	KeyGitSymbol     = "git-symbol"
	KeyNoSymbol      = "no-symbol"
	KeyNoColor       = "no-color"
	KeyNoPrefixColor = "no-prefix-color"
	KeyVerbose       = "verbose"
	KeyLogLevel      = "log-level"
	KeyLogFormat     = "log-format"
)

const (
	configName    = "config"
	configType    = "yaml"
	appDir        = "vcs-prompt"
	listSeparator = ","
)

// Default values.
const (
	DefaultLogLevel  = "error"
	DefaultLogFormat = "text"
)

// Configuration errors.
var (
	// ErrInvalidConfig indicates a setting that is out of range or unknown.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfigFileUnreadable indicates a config file that exists but cannot be parsed.
	ErrConfigFileUnreadable = errors.New("failed to read config file")
)

// Config holds all application configuration.
type Config struct {
	// Cwd is the directory to inspect. Empty means the process working directory.
	Cwd string `yaml:"cwd,omitempty"`

	// Resolve holds the options consumed by the resolver.
	Resolve domain.ResolveOptions `yaml:"resolve"`

	// Display holds the output styling options.
	Display domain.DisplayOptions `yaml:"display"`

	// LogLevel is the logging level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// LogFormat is text or json.
	LogFormat string `yaml:"log_format"`

	// File is the config file that was read, if any.
	File string `yaml:"config_file,omitempty"`
}

// displayToggles lists the per-backend hide flags.
var displayToggles = []string{"prefix", "name", "id", "status"}

func hideKey(backend domain.BackendKind, part string) string {
	return "no-" + string(backend) + "-" + part
}

// RegisterFlags defines every configuration flag on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyCwd, "", "directory to inspect (defaults to the current directory)")
	fs.Int(KeyDepth, domain.DefaultAncestorDepth, "how many ancestors to search for bookmarks (0 = working copy only)")
	fs.Int(KeyDisplayLimit, domain.DefaultDisplayLimit, "maximum bookmarks to display (0 = unlimited)")
	fs.Int(KeyTruncateName, 0, "maximum bookmark name length (0 = unlimited)")
	fs.Int(KeyIDLength, domain.DefaultIDLength, "displayed change or commit id length")
	fs.StringSlice(KeyStripPrefix, nil, "prefixes to strip from bookmark names (repeatable or comma separated)")
	fs.String(KeyBackend, "", "force a backend (git or jj)")
	fs.String(KeyJJSymbol, domain.DefaultJJSymbol, "symbol shown before jj ids")
	fs.String(KeyGitSymbol, domain.DefaultGitSymbol, "symbol shown before git ids")
	fs.Bool(KeyNoSymbol, false, "hide the backend symbol")
	fs.Bool(KeyNoColor, false, "disable colors")
	fs.Bool(KeyNoPrefixColor, false, "disable unique change-id prefix highlighting")
	for _, backend := range []domain.BackendKind{domain.BackendJJ, domain.BackendGit} {
		for _, part := range displayToggles {
			fs.Bool(hideKey(backend, part), false, fmt.Sprintf("hide the %s %s", backend, part))
		}
	}
	fs.BoolP(KeyVerbose, "v", false, "log debug information to stderr")
	fs.String(KeyLogFormat, DefaultLogFormat, "log format (text or json)")
}

// Load resolves the configuration from flags, environment, config file and defaults.
// fs may be nil, in which case only environment, file and defaults apply.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	file, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	cfg.File = file
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDepth, domain.DefaultAncestorDepth)
	v.SetDefault(KeyDisplayLimit, domain.DefaultDisplayLimit)
	v.SetDefault(KeyTruncateName, 0)
	v.SetDefault(KeyIDLength, domain.DefaultIDLength)
	v.SetDefault(KeyJJSymbol, domain.DefaultJJSymbol)
	v.SetDefault(KeyGitSymbol, domain.DefaultGitSymbol)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
}

// readConfigFile loads VCS_PROMPT_CONFIG when set, otherwise the first config.yaml
// found under $XDG_CONFIG_HOME/vcs-prompt or ~/.config/vcs-prompt. A missing file
// in the search path is not an error; a missing explicit file is.
func readConfigFile(v *viper.Viper) (string, error) {
	if explicit := os.Getenv(EnvConfigFile); explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrConfigFileUnreadable, explicit, err)
		}
		return v.ConfigFileUsed(), nil
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	for _, dir := range searchPath() {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %w", ErrConfigFileUnreadable, err)
	}
	return v.ConfigFileUsed(), nil
}

func searchPath() []string {
	var dirs []string
	if xdg := os.Getenv(EnvXDGConfigHome); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, appDir))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", appDir))
	}
	return dirs
}

func fromViper(v *viper.Viper) (*Config, error) {
	backend, err := domain.ParseBackendKind(v.GetString(KeyBackend))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, KeyBackend, err)
	}

	p := &parser{v: v}
	resolve := domain.ResolveOptions{
		MaxDepth:       p.intValue(KeyDepth),
		DisplayLimit:   p.intValue(KeyDisplayLimit),
		TruncateLength: p.intValue(KeyTruncateName),
		IDLength:       p.intValue(KeyIDLength),
		StripPrefixes:  stringSlice(v.Get(KeyStripPrefix)),
		Backend:        backend,
	}

	display := domain.DisplayOptions{
		JJSymbol:  v.GetString(KeyJJSymbol),
		GitSymbol: v.GetString(KeyGitSymbol),
		JJ:        p.displayFlags(domain.BackendJJ),
		Git:       p.displayFlags(domain.BackendGit),
	}
	if p.boolValue(KeyNoSymbol) {
		display.JJSymbol = ""
		display.GitSymbol = ""
	}

	logLevel := strings.ToLower(v.GetString(KeyLogLevel))
	if p.boolValue(KeyVerbose) {
		logLevel = "debug"
	}

	if p.err != nil {
		return nil, p.err
	}
	if err := validate(resolve); err != nil {
		return nil, err
	}

	logFormat := strings.ToLower(v.GetString(KeyLogFormat))
	if logFormat != "text" && logFormat != "json" {
		return nil, fmt.Errorf("%w: %s must be text or json, got %q", ErrInvalidConfig, KeyLogFormat, logFormat)
	}

	return &Config{
		Cwd:       v.GetString(KeyCwd),
		Resolve:   resolve,
		Display:   display,
		LogLevel:  logLevel,
		LogFormat: logFormat,
	}, nil
}

// parser reads typed values and keeps the first conversion error.
// viper's GetInt and GetBool turn malformed values into zero values instead.
type parser struct {
	v   *viper.Viper
	err error
}

func (p *parser) intValue(key string) int {
	n, err := cast.ToIntE(p.v.Get(key))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidConfig, key, fmt.Sprint(p.v.Get(key)))
	}
	return n
}

func (p *parser) boolValue(key string) bool {
	b, err := cast.ToBoolE(p.v.Get(key))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%w: %s must be a boolean, got %q", ErrInvalidConfig, key, fmt.Sprint(p.v.Get(key)))
	}
	return b
}

func (p *parser) displayFlags(backend domain.BackendKind) domain.DisplayFlags {
	flags := domain.AllVisible()
	flags.ShowPrefix = !p.boolValue(hideKey(backend, "prefix"))
	flags.ShowName = !p.boolValue(hideKey(backend, "name"))
	flags.ShowID = !p.boolValue(hideKey(backend, "id"))
	flags.ShowStatus = !p.boolValue(hideKey(backend, "status"))
	flags.ShowColor = !p.boolValue(KeyNoColor)
	flags.ShowPrefixColor = !p.boolValue(KeyNoPrefixColor)
	return flags
}

func validate(o domain.ResolveOptions) error {
	checks := []struct {
		key   string
		value int
		min   int
	}{
		{KeyDepth, o.MaxDepth, 0},
		{KeyDisplayLimit, o.DisplayLimit, 0},
		{KeyTruncateName, o.TruncateLength, 0},
		{KeyIDLength, o.IDLength, 1},
	}
	for _, c := range checks {
		if c.value < c.min {
			return fmt.Errorf("%w: %s must be at least %d, got %d", ErrInvalidConfig, c.key, c.min, c.value)
		}
	}
	return nil
}

// stringSlice accepts a comma separated string (environment), a string list
// (flags) or a YAML sequence (config file). Blank entries are dropped.
func stringSlice(raw any) []string {
	var items []string
	switch val := raw.(type) {
	case nil:
		return nil
	case string:
		items = strings.Split(val, listSeparator)
	case []string:
		items = val
	case []any:
		for _, item := range val {
			items = append(items, fmt.Sprint(item))
		}
	default:
		items = []string{fmt.Sprint(val)}
	}

	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
