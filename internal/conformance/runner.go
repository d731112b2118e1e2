package conformance

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sandrolain/gomolang"
	"github.com/sandrolain/gomolang/pkg/codegen"
	"github.com/sandrolain/gomolang/pkg/functions"
	"github.com/sandrolain/gomolang/pkg/types"
)

// TestResult is the outcome of running one case.
type TestResult struct {
	Passed   bool
	Failures []string
}

func (r *TestResult) failf(format string, args ...any) {
	r.Passed = false
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

// Message joins the failures into one line per mismatch.
func (r *TestResult) Message() string {
	return strings.Join(r.Failures, "\n")
}

func codeList(ds types.Diagnostics) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, string(d.Code))
	}
	return out
}

// Run executes one case against table.
func Run(tc *TestCase, table functions.Table) *TestResult {
	result := &TestResult{Passed: true}
	opts := []gomolang.Option{
		gomolang.WithStrictQueries(tc.Strict),
		gomolang.WithTargetVersion(tc.Target),
	}
	toolchain := gomolang.New(opts...)

	res := toolchain.Parse(tc.Source)
	if got := codeList(res.Errors); !slices.Equal(got, tc.Syntax) {
		result.failf("syntax diagnostics = %v, want %v", got, tc.Syntax)
	}
	if res.Panicked != tc.Panicked {
		result.failf("panicked = %v, want %v", res.Panicked, tc.Panicked)
	}

	if tc.Tree != "" {
		if got := types.Dump(res.Program.Arena(), res.Program.Root()); got != tc.Tree {
			result.failf("tree mismatch\n  Expected: %s\n  Got:      %s", tc.Tree, got)
		}
	}

	if tc.Format != nil {
		if got := codegen.Generate(res.Program, codegen.Options{}); got != *tc.Format {
			result.failf("format mismatch\n  Expected: %q\n  Got:      %q", *tc.Format, got)
		}
	}

	if tc.Semantic != nil {
		all := codeList(toolchain.Check(tc.Source, table))
		got := all[len(res.Errors):]
		if !slices.Equal(got, *tc.Semantic) {
			result.failf("semantic diagnostics = %v, want %v", got, *tc.Semantic)
		}
	}
	return result
}
