// Package gomolang provides a fast, error-tolerant toolchain for Molang, the
// expression language of Minecraft Bedrock resource and behavior packs.
//
// The toolchain parses source text into an arena-resident syntax tree,
// reporting every problem as a diagnostic instead of stopping at the first
// one. On top of the tree it offers a formatter that prints canonical source
// and a semantic checker that validates calls against a function table.
//
// # Quick Start
//
//	// Parse and inspect diagnostics
//	res := gomolang.Parse("math.cos(q.anim_time * 38) * 10")
//	if !res.Ok() {
//	    log.Fatal(res.Err())
//	}
//
//	// Format source
//	out, err := gomolang.Format("v.x=1;return v.x", codegen.Options{Indent: "  "})
//
//	// Parse and check in one step
//	diags := gomolang.Check("math.clamp(v.x, 0)", functions.Builtins())
//
//	// Reuse a toolchain with a parse cache
//	tc := gomolang.New(gomolang.WithCaching(true))
//	res = tc.Parse("q.is_sneaking ? 1 : 0")
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/sandrolain/gomolang/pkg/parser
//   - Codegen: github.com/sandrolain/gomolang/pkg/codegen
//   - Semantic checker: github.com/sandrolain/gomolang/pkg/semantic
//   - Functions: github.com/sandrolain/gomolang/pkg/functions
//   - Types: github.com/sandrolain/gomolang/pkg/types
package gomolang

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sandrolain/gomolang/pkg/cache"
	"github.com/sandrolain/gomolang/pkg/codegen"
	"github.com/sandrolain/gomolang/pkg/functions"
	"github.com/sandrolain/gomolang/pkg/parser"
	"github.com/sandrolain/gomolang/pkg/semantic"
	"github.com/sandrolain/gomolang/pkg/types"
)

// Version returns the current version of gomolang.
func Version() string {
	return "v0.1.0-dev"
}

// Option configures a Toolchain.
type Option func(*Options)

// Options holds toolchain configuration.
type Options struct {
	// MaxDepth limits parser nesting. Zero uses parser.DefaultMaxDepth.
	MaxDepth int
	// Caching enables caching of parsed programs by source text.
	// Only programs without diagnostics are cached.
	Caching bool
	// CacheSize sets the maximum number of cached programs.
	// Only used when Caching is true and no explicit Cache is provided.
	// Defaults to cache.DefaultCapacity.
	CacheSize int
	// Cache is a custom program cache. If non-nil, Caching is implicitly enabled.
	Cache *cache.Cache
	// StrictQueries reports calls to query functions missing from the table.
	StrictQueries bool
	// TargetVersion reports functions newer than this engine version.
	TargetVersion string
	// Debug enables debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
}

// WithMaxDepth sets the maximum parser nesting depth.
func WithMaxDepth(depth int) Option {
	return func(opts *Options) {
		opts.MaxDepth = depth
	}
}

// WithCaching enables or disables program caching.
func WithCaching(enabled bool) Option {
	return func(opts *Options) {
		opts.Caching = enabled
	}
}

// WithCacheSize sets the capacity of the program cache.
func WithCacheSize(size int) Option {
	return func(opts *Options) {
		opts.CacheSize = size
	}
}

// WithCache shares an existing cache between toolchains.
func WithCache(c *cache.Cache) Option {
	return func(opts *Options) {
		opts.Cache = c
	}
}

// WithStrictQueries enables or disables reporting of unknown queries.
func WithStrictQueries(strict bool) Option {
	return func(opts *Options) {
		opts.StrictQueries = strict
	}
}

// WithTargetVersion sets the engine version checked programs must run on.
func WithTargetVersion(version string) Option {
	return func(opts *Options) {
		opts.TargetVersion = version
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) Option {
	return func(opts *Options) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// Toolchain bundles parsing, formatting and checking with shared options.
//
// A Toolchain is safe for concurrent use.
type Toolchain struct {
	opts   Options
	logger *slog.Logger
	cache  *cache.Cache // non-nil when Caching is enabled
}

// New creates a Toolchain.
func New(opts ...Option) *Toolchain {
	options := Options{
		MaxDepth: parser.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.MaxDepth <= 0 {
		options.MaxDepth = parser.DefaultMaxDepth
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	var c *cache.Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		c = cache.New(options.CacheSize)
	}

	return &Toolchain{
		opts:   options,
		logger: options.Logger,
		cache:  c,
	}
}

// Cache returns the program cache, or nil if caching is disabled.
func (tc *Toolchain) Cache() *cache.Cache {
	return tc.cache
}

func (tc *Toolchain) parserOptions() []parser.ParseOption {
	return []parser.ParseOption{
		parser.WithMaxDepth(tc.opts.MaxDepth),
		parser.WithDebug(tc.opts.Debug),
		parser.WithLogger(tc.logger),
	}
}

// cacheKey separates entries parsed under different depth limits.
func (tc *Toolchain) cacheKey(source string) string {
	if tc.opts.MaxDepth == parser.DefaultMaxDepth {
		return source
	}
	return strconv.Itoa(tc.opts.MaxDepth) + "\x00" + source
}

// Parse parses source. With caching enabled a clean program is parsed once
// and then shared by every later call with the same source.
func (tc *Toolchain) Parse(source string) *parser.Result {
	if tc.cache == nil {
		return parser.Parse(nil, source, tc.parserOptions()...)
	}

	var res *parser.Result
	prog, _ := tc.cache.GetOrParse(tc.cacheKey(source), func() (*types.Program, error) {
		res = parser.Parse(nil, source, tc.parserOptions()...)
		return res.Program, res.Err()
	})
	if res == nil {
		if tc.opts.Debug {
			tc.logger.Debug("parse cache hit", "bytes", len(source))
		}
		return &parser.Result{Program: prog}
	}
	return res
}

// Format parses source and prints it canonically. It fails when the source
// has syntax errors.
func (tc *Toolchain) Format(source string, opts codegen.Options) (string, error) {
	res := tc.Parse(source)
	if !res.Ok() {
		return "", res.Err()
	}
	return codegen.Generate(res.Program, opts), nil
}

// Checker returns a semantic checker configured from the toolchain options.
func (tc *Toolchain) Checker(table functions.Table) (*semantic.Checker, error) {
	return semantic.NewChecker(table,
		semantic.WithStrictQueries(tc.opts.StrictQueries),
		semantic.WithTargetVersion(tc.opts.TargetVersion),
		semantic.WithDebug(tc.opts.Debug),
		semantic.WithLogger(tc.logger))
}

// Check parses source and runs the semantic checker over the result. Syntax
// diagnostics come first, followed by semantic ones. A parse that gave up
// early is not checked.
func (tc *Toolchain) Check(source string, table functions.Table) types.Diagnostics {
	res := tc.Parse(source)
	diags := append(types.Diagnostics(nil), res.Errors...)
	if res.Panicked {
		return diags
	}

	checker, err := tc.Checker(table)
	if err != nil {
		tc.logger.Warn("ignoring target version", "error", err)
		checker, _ = semantic.NewChecker(table,
			semantic.WithStrictQueries(tc.opts.StrictQueries),
			semantic.WithLogger(tc.logger))
	}
	return append(diags, checker.Check(res.Program)...)
}

// Parse parses source with a one-off toolchain.
//
// Example:
//
//	res := gomolang.Parse("q.a + v.b * 2")
//	fmt.Println(types.Dump(res.Program.Arena(), res.Program.Root()))
func Parse(source string, opts ...Option) *parser.Result {
	return New(opts...).Parse(source)
}

// MustParse is like Parse but panics if the source has any diagnostic.
// It simplifies safe initialization of global variables.
func MustParse(source string, opts ...Option) *types.Program {
	res := Parse(source, opts...)
	if !res.Ok() {
		panic(fmt.Sprintf("gomolang: Parse(%q): %v", source, res.Err()))
	}
	return res.Program
}

// Format parses source and prints it canonically.
func Format(source string, format codegen.Options, opts ...Option) (string, error) {
	return New(opts...).Format(source, format)
}

// Check parses source and checks it against table.
func Check(source string, table functions.Table, opts ...Option) types.Diagnostics {
	return New(opts...).Check(source, table)
}
