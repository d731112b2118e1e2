// Package parser implements an error-tolerant Molang parser.
//
// The parser uses a hand-written recursive descent approach with Pratt-style
// operator precedence. It never stops at the first problem: malformed input
// produces diagnostics together with a well-formed tree in which the broken
// regions are replaced by error placeholder nodes.
//
// # Architecture
//
// The parser consists of three main components:
//   - Lexer: Tokenizes the source into a stream of tokens, never failing
//   - Parser: Builds the AST into an arena owned by the caller
//   - Recovery: Resynchronizes at statement boundaries after a syntax error
//
// # Example
//
//	arena := types.NewArena(src)
//	res := parser.Parse(arena, "math.cos(q.anim_time * 38) * 10")
//	if !res.Ok() {
//	    log.Fatal(res.Err())
//	}
//	fmt.Println(types.Dump(arena, res.Program.Root()))
//
// # Failure modes
//
// Recoverable errors (an unexpected token, a missing semicolon, a malformed
// number) are reported and parsing continues. Two conditions abort the parse:
// an unterminated string or block comment, and nesting deeper than the
// configured maximum. In both cases Result.Panicked is set and the program
// holds only the top-level statements completed before the failure.
package parser

import (
	"log/slog"

	"github.com/sandrolain/gomolang/pkg/types"
)

// DefaultMaxDepth is the nesting limit used when none is configured.
const DefaultMaxDepth = 256

// ParseOption configures parsing behavior.
type ParseOption func(*ParseOptions)

// ParseOptions holds parser configuration.
type ParseOptions struct {
	// MaxDepth limits expression nesting to prevent stack exhaustion.
	MaxDepth int
	// Debug enables debug logging of recovery decisions.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
}

// WithMaxDepth sets the maximum nesting depth.
func WithMaxDepth(depth int) ParseOption {
	return func(opts *ParseOptions) {
		opts.MaxDepth = depth
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enable bool) ParseOption {
	return func(opts *ParseOptions) {
		opts.Debug = enable
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ParseOption {
	return func(opts *ParseOptions) {
		opts.Logger = logger
	}
}

// Result is the outcome of a parse. Program is never nil.
type Result struct {
	Program  *types.Program
	Errors   types.Diagnostics
	Panicked bool
}

// Ok reports whether the source parsed without any diagnostic.
func (r *Result) Ok() bool {
	return !r.Panicked && len(r.Errors) == 0
}

// Err returns the diagnostics joined into one error, or nil.
func (r *Result) Err() error {
	return r.Errors.Err()
}

// Parse parses source into arena and returns the program with its diagnostics.
//
// The arena is reset before use, so every handle from an earlier parse into the
// same arena becomes invalid. A nil arena allocates a fresh one.
//
// Example:
//
//	res := parser.Parse(nil, "v.x = 1; return v.x;")
//	for _, d := range res.Errors {
//	    fmt.Println(d)
//	}
func Parse(arena *types.Arena, source string, opts ...ParseOption) *Result {
	return NewParser(arena, source, opts...).Parse()
}
