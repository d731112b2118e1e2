// Package config loads the molang command line configuration.
//
// The configuration is a TOML file, molang.toml by default:
//
//	[parser]
//	max_depth = 256
//	cache_size = 512
//
//	[format]
//	indent = "  "
//	long_prefixes = true
//
//	[check]
//	signatures = ["queries.yaml"]
//	target_version = "1.21.0"
//	strict_queries = true
//
//	[watch]
//	debounce = "150ms"
//
//	[log]
//	level = "info"
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sandrolain/gomolang"
	"github.com/sandrolain/gomolang/pkg/cache"
	"github.com/sandrolain/gomolang/pkg/codegen"
	"github.com/sandrolain/gomolang/pkg/functions"
	"github.com/sandrolain/gomolang/pkg/parser"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "molang.toml"

// Config holds the complete CLI configuration
type Config struct {
	Parser ParserConfig `toml:"parser"`
	Format FormatConfig `toml:"format"`
	Check  CheckConfig  `toml:"check"`
	Watch  WatchConfig  `toml:"watch"`
	Log    LogConfig    `toml:"log"`

	// dir is the directory of the loaded file; relative paths resolve against it.
	dir string
}

// ParserConfig holds parser settings
type ParserConfig struct {
	MaxDepth  int `toml:"max_depth"`
	CacheSize int `toml:"cache_size"`
}

// FormatConfig holds formatter settings
type FormatConfig struct {
	Indent       string `toml:"indent"`
	ForceParens  bool   `toml:"force_parens"`
	Minify       bool   `toml:"minify"`
	LongPrefixes bool   `toml:"long_prefixes"`
}

// CheckConfig holds semantic checker settings
type CheckConfig struct {
	Signatures    []string `toml:"signatures"`
	TargetVersion string   `toml:"target_version"`
	StrictQueries bool     `toml:"strict_queries"`
}

// WatchConfig holds file watcher settings
type WatchConfig struct {
	Debounce Duration `toml:"debounce"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("failed to parse config: unknown key %q", undecoded[0].String())
	}

	cfg.dir = filepath.Dir(path)
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Resolve loads path when given. Without a path it loads DefaultFile from the
// working directory if present, and falls back to Default otherwise.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return Load(DefaultFile)
	}
	return Default(), nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Parser.MaxDepth == 0 {
		c.Parser.MaxDepth = parser.DefaultMaxDepth
	}
	if c.Parser.CacheSize == 0 {
		c.Parser.CacheSize = cache.DefaultCapacity
	}
	if c.Watch.Debounce.Duration == 0 {
		c.Watch.Debounce.Duration = 100 * time.Millisecond
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
}

func (c *Config) validate() error {
	if c.Parser.MaxDepth < 0 {
		return fmt.Errorf("parser.max_depth must not be negative")
	}
	if c.Parser.CacheSize < 0 {
		return fmt.Errorf("parser.cache_size must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ParseLevel converts a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// Options returns the toolchain options described by the configuration.
func (c *Config) Options(logger *slog.Logger) []gomolang.Option {
	return []gomolang.Option{
		gomolang.WithMaxDepth(c.Parser.MaxDepth),
		gomolang.WithCacheSize(c.Parser.CacheSize),
		gomolang.WithStrictQueries(c.Check.StrictQueries),
		gomolang.WithTargetVersion(c.Check.TargetVersion),
		gomolang.WithLogger(logger),
	}
}

// FormatOptions returns the formatter settings.
func (c *Config) FormatOptions() codegen.Options {
	return codegen.Options{
		Indent:       c.Format.Indent,
		ForceParens:  c.Format.ForceParens,
		Minify:       c.Format.Minify,
		LongPrefixes: c.Format.LongPrefixes,
	}
}

// Table returns the builtin functions merged with every signature file.
// Later files override earlier ones.
func (c *Config) Table() (functions.Table, error) {
	table := functions.Builtins()
	for _, path := range c.Check.Signatures {
		path = os.ExpandEnv(path)
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		extra, err := functions.LoadFile(path)
		if err != nil {
			return nil, err
		}
		table = table.Merge(extra)
	}
	return table, nil
}
