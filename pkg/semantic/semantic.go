// Package semantic checks parsed Molang programs for errors the grammar
// cannot express.
//
// The checker walks the tree once, depth first, and never modifies it. It
// reports:
//   - scope and namespace misuse, such as calling a variable, indexing
//     geometry.* or using array.* without an index
//   - calls whose argument count does not match the function table
//   - functions newer than the configured target version
//   - assignments to read-only context.* variables
//   - break and continue outside loop or for_each
//   - empty blocks
//   - string operands to operators other than == and !=
//
// # Example
//
//	res := parser.Parse(nil, "math.clamp(q.health, 0)")
//	diags := semantic.Check(res.Program, functions.Builtins())
//	for _, d := range diags {
//	    fmt.Println(d) // T0410 at 0..23: math.clamp takes 3 arguments, got 2
//	}
package semantic

import (
	"fmt"
	"log/slog"

	"github.com/Masterminds/semver/v3"

	"github.com/sandrolain/gomolang/pkg/functions"
	"github.com/sandrolain/gomolang/pkg/types"
)

// CheckOption configures the checker.
type CheckOption func(*CheckOptions)

// CheckOptions holds checker configuration.
type CheckOptions struct {
	// StrictQueries reports calls to query.* functions missing from the
	// table. By default unknown queries are accepted.
	StrictQueries bool
	// TargetVersion, when set, reports functions introduced after it.
	TargetVersion string
	// Debug enables debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
}

// WithStrictQueries enables or disables reporting of unknown queries.
func WithStrictQueries(strict bool) CheckOption {
	return func(opts *CheckOptions) {
		opts.StrictQueries = strict
	}
}

// WithTargetVersion sets the engine version programs must run on, e.g. "1.20.0".
func WithTargetVersion(version string) CheckOption {
	return func(opts *CheckOptions) {
		opts.TargetVersion = version
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enable bool) CheckOption {
	return func(opts *CheckOptions) {
		opts.Debug = enable
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) CheckOption {
	return func(opts *CheckOptions) {
		opts.Logger = logger
	}
}

// Checker validates programs against a function table.
//
// A Checker holds no per-program state and is safe for concurrent use.
type Checker struct {
	table  functions.Table
	opts   CheckOptions
	target *semver.Version
	logger *slog.Logger
}

// NewChecker creates a checker. It fails when the target version is not a
// valid semantic version.
func NewChecker(table functions.Table, opts ...CheckOption) (*Checker, error) {
	options := CheckOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if table == nil {
		table = functions.Table{}
	}

	c := &Checker{
		table:  table,
		opts:   options,
		logger: options.Logger,
	}

	if options.TargetVersion != "" {
		v, err := semver.NewVersion(options.TargetVersion)
		if err != nil {
			return nil, fmt.Errorf("invalid target version %q: %w", options.TargetVersion, err)
		}
		c.target = v
	}

	return c, nil
}

// Check reports the semantic diagnostics of program in source order.
func (c *Checker) Check(program *types.Program) types.Diagnostics {
	w := &walker{
		checker: c,
		arena:   program.Arena(),
	}
	w.statements(program.Root())

	if c.opts.Debug {
		c.logger.Debug("semantic check finished",
			"statements", len(program.Statements()),
			"diagnostics", len(w.diags))
	}
	return w.diags
}

// Check validates program against table. An invalid target version is
// logged and version gating is skipped.
func Check(program *types.Program, table functions.Table, opts ...CheckOption) types.Diagnostics {
	c, err := NewChecker(table, opts...)
	if err != nil {
		c, _ = NewChecker(table, append(opts[:len(opts):len(opts)], WithTargetVersion(""))...)
		c.logger.Warn("ignoring target version", "error", err)
	}
	return c.Check(program)
}
