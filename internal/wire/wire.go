// Package wire defines the JSON messages exchanged by the WebAssembly
// entrypoints.
//
// A request names an operation and carries the source:
//
//	{ "op": "check", "source": "math.clamp(v.x, 0)", "options": { "strict_queries": true } }
//
// The response holds the operation output and every diagnostic with both its
// byte span and its line and column:
//
//	{ "ok": false, "diagnostics": [ { "code": "T0410", "line": 1, "column": 1, ... } ] }
package wire

import (
	"fmt"

	"github.com/sandrolain/gomolang"
	"github.com/sandrolain/gomolang/pkg/codegen"
	"github.com/sandrolain/gomolang/pkg/functions"
	"github.com/sandrolain/gomolang/pkg/render"
	"github.com/sandrolain/gomolang/pkg/types"
)

// Operations understood by Handle.
const (
	OpParse  = "parse"
	OpFormat = "format"
	OpCheck  = "check"
)

// Options mirrors the toolchain and formatter settings.
type Options struct {
	MaxDepth      int    `json:"max_depth,omitempty"`
	StrictQueries bool   `json:"strict_queries,omitempty"`
	TargetVersion string `json:"target_version,omitempty"`
	Indent        string `json:"indent,omitempty"`
	ForceParens   bool   `json:"force_parens,omitempty"`
	Minify        bool   `json:"minify,omitempty"`
	LongPrefixes  bool   `json:"long_prefixes,omitempty"`
}

// Request is one operation on one source.
type Request struct {
	Op      string  `json:"op"`
	Source  string  `json:"source"`
	Options Options `json:"options"`
}

// Diagnostic is a diagnostic with its position resolved.
type Diagnostic struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Hint     string `json:"hint,omitempty"`
	Start    uint32 `json:"start"`
	End      uint32 `json:"end"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Response is the outcome of a Request. Tree is set by parse, Output by
// format.
type Response struct {
	OK          bool         `json:"ok"`
	Tree        string       `json:"tree,omitempty"`
	Output      string       `json:"output,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// Convert resolves the positions of diagnostics reported on source.
func Convert(source string, ds types.Diagnostics) []Diagnostic {
	if len(ds) == 0 {
		return nil
	}
	out := make([]Diagnostic, 0, len(ds))
	for _, d := range ds {
		line, col := render.Position(source, int(d.Span.Start))
		out = append(out, Diagnostic{
			Code:     string(d.Code),
			Severity: d.Severity.String(),
			Message:  d.Message,
			Hint:     d.Hint,
			Start:    d.Span.Start,
			End:      d.Span.End,
			Line:     line,
			Column:   col,
		})
	}
	return out
}

// Handle runs req against the builtin function table.
func Handle(req Request) Response {
	opts := []gomolang.Option{
		gomolang.WithMaxDepth(req.Options.MaxDepth),
		gomolang.WithStrictQueries(req.Options.StrictQueries),
		gomolang.WithTargetVersion(req.Options.TargetVersion),
	}
	tc := gomolang.New(opts...)

	switch req.Op {
	case OpParse:
		res := tc.Parse(req.Source)
		return Response{
			OK:          res.Ok(),
			Tree:        types.Dump(res.Program.Arena(), res.Program.Root()),
			Diagnostics: Convert(req.Source, res.Errors),
		}
	case OpFormat:
		res := tc.Parse(req.Source)
		if !res.Ok() {
			return Response{Diagnostics: Convert(req.Source, res.Errors)}
		}
		return Response{
			OK: true,
			Output: codegen.Generate(res.Program, codegen.Options{
				Indent:       req.Options.Indent,
				ForceParens:  req.Options.ForceParens,
				Minify:       req.Options.Minify,
				LongPrefixes: req.Options.LongPrefixes,
			}),
		}
	case OpCheck:
		if _, err := tc.Checker(nil); err != nil {
			return Response{Error: err.Error()}
		}
		diags := tc.Check(req.Source, functions.Builtins())
		return Response{
			OK:          !diags.HasErrors(),
			Diagnostics: Convert(req.Source, diags),
		}
	default:
		return Response{Error: fmt.Sprintf("unknown operation %q", req.Op)}
	}
}
