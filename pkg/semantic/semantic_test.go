package semantic_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/sandrolain/gomolang/pkg/functions"
	"github.com/sandrolain/gomolang/pkg/parser"
	"github.com/sandrolain/gomolang/pkg/semantic"
	"github.com/sandrolain/gomolang/pkg/types"
)

func parseOK(t *testing.T, input string) *types.Program {
	t.Helper()
	res := parser.Parse(nil, input)
	if !res.Ok() {
		t.Fatalf("Failed to parse %q: %v", input, res.Err())
	}
	return res.Program
}

func codes(diags types.Diagnostics) []types.ErrorCode {
	out := make([]types.ErrorCode, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func testTable(t *testing.T) functions.Table {
	t.Helper()
	custom, err := functions.NewTable(
		functions.Signature{Name: "query.position", MinArgs: 0, MaxArgs: 1},
		functions.Signature{Name: "query.is_item_name_any", MinArgs: 2, MaxArgs: functions.Variadic},
		functions.Signature{Name: "query.has_trim", MaxArgs: 0, Since: "1.21.0"},
		functions.Signature{Name: "mod.scale", MinArgs: 1, MaxArgs: 1},
	)
	if err != nil {
		t.Fatal(err)
	}
	return functions.Builtins().Merge(custom)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []types.ErrorCode
	}{
		// Valid programs
		{"math call", "math.cos(q.anim_time * 38) * 10", nil},
		{"math constant", "math.pi * 2", nil},
		{"query call", "q.position(1) + query.position()", nil},
		{"unknown query is allowed", "q.is_sneaking ? 1 : 0", nil},
		{"unknown query call warns", "q.is_sneaking() ? 1 : 0", []types.ErrorCode{types.ErrUnknownFunction}},
		{"variadic query", "q.is_item_name_any('slot.weapon.mainhand', 0, 'minecraft:bow', 'minecraft:crossbow')", nil},
		{"indexed array", "array.skins[q.variant]", nil},
		{"geometry value", "geometry.default", nil},
		{"custom namespace", "mod.scale(2)", nil},
		{"context read", "v.owner = c.other_entity;", nil},
		{"break in loop", "loop(10, { v.i > 5 ? break; v.i = v.i + 1; });", nil},
		{"continue in for_each", "for_each(t.e, q.entities, { t.e.dead ? continue; });", nil},
		{"string equality", "'a' == 'b' && 'a' != 'b'", nil},
		{"string default", "v.name ?? 'steve'", nil},
		{"filled block", "{ 1; };", nil},

		// Arity
		{"too few arguments", "math.clamp(v.x, 0)", []types.ErrorCode{types.ErrArgumentCountMismatch}},
		{"too many arguments", "math.cos(1, 2)", []types.ErrorCode{types.ErrArgumentCountMismatch}},
		{"query arity", "q.position(1, 2)", []types.ErrorCode{types.ErrArgumentCountMismatch}},
		{"variadic minimum", "q.is_item_name_any('slot')", []types.ErrorCode{types.ErrArgumentCountMismatch}},
		{"nested arity", "math.abs(math.max(1))", []types.ErrorCode{types.ErrArgumentCountMismatch}},

		// Namespaces and scopes
		{"unknown math function", "math.tau(1)", []types.ErrorCode{types.ErrUnknownFunction}},
		{"unknown math member", "math.tau", []types.ErrorCode{types.ErrUnknownFunction}},
		{"unknown namespace", "foo.bar", []types.ErrorCode{types.ErrUnknownNamespace}},
		{"unknown namespace call", "foo.bar(1)", []types.ErrorCode{types.ErrUnknownNamespace}},
		{"bare namespace", "math + 1", []types.ErrorCode{types.ErrUnknownNamespace}},
		{"bare identifier", "health", []types.ErrorCode{types.ErrUnknownNamespace}},
		{"calling a variable", "v.speed(2)", []types.ErrorCode{types.ErrNotCallable}},
		{"calling a temp", "t.x()", []types.ErrorCode{types.ErrNotCallable}},
		{"calling a member", "v.a.b()", []types.ErrorCode{types.ErrNotCallable}},
		{"calling geometry", "geometry.default()", []types.ErrorCode{types.ErrNotCallable}},
		{"calling a call result", "math.pi()()", []types.ErrorCode{types.ErrNotCallable}},
		{"indexing texture", "texture.default[0]", []types.ErrorCode{types.ErrNotIndexable}},
		{"indexing math", "math.pi[0]", []types.ErrorCode{types.ErrNotIndexable}},
		{"indexing a literal", "1[0]", []types.ErrorCode{types.ErrNotIndexable}},
		{"unindexed array", "array.skins", []types.ErrorCode{types.ErrMissingIndex}},
		{"calling array", "array.skins(0)", []types.ErrorCode{types.ErrNotCallable}},

		// Statements
		{"assigning context", "context.foo = 0;", []types.ErrorCode{types.ErrContextReadOnly}},
		{"compound context assignment", "c.foo.bar += 1;", []types.ErrorCode{types.ErrContextReadOnly}},
		{"break outside loop", "break;", []types.ErrorCode{types.ErrBreakOutsideLoop}},
		{"conditional break outside loop", "v.a ? break;", []types.ErrorCode{types.ErrBreakOutsideLoop}},
		{"continue outside loop", "continue;", []types.ErrorCode{types.ErrContinueOutsideLoop}},
		{"break after loop", "loop(1, { v.a = 1; }); break;", []types.ErrorCode{types.ErrBreakOutsideLoop}},
		{"empty block", "{}", []types.ErrorCode{types.ErrEmptyBlock}},
		{"empty loop body", "loop(1, {});", []types.ErrorCode{types.ErrEmptyBlock}},

		// Strings
		{"string addition", "'foo' + 'bar'", []types.ErrorCode{types.ErrInvalidTypeOperation}},
		{"string compared to number", "'foo' == 1", []types.ErrorCode{types.ErrInvalidTypeOperation}},
		{"number plus string", "1 + 'bar'", []types.ErrorCode{types.ErrInvalidTypeOperation}},

		// Ordering
		{
			"several problems in source order",
			"v.a = math.cos(); c.b = 1; 'x' * 2;",
			[]types.ErrorCode{types.ErrArgumentCountMismatch, types.ErrContextReadOnly, types.ErrInvalidTypeOperation},
		},
	}

	table := testTable(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := codes(semantic.Check(parseOK(t, tt.input), table))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("diagnostic %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCheckStrictQueries(t *testing.T) {
	prog := parseOK(t, "q.is_sneaking() + q.position()")
	table := testTable(t)

	lenient := semantic.Check(prog, table)
	if len(lenient) != 1 || lenient[0].Code != types.ErrUnknownFunction {
		t.Fatalf("lenient check = %v", codes(lenient))
	}
	if lenient[0].Severity != types.SeverityWarning || lenient[0].Hint == "" {
		t.Errorf("lenient diagnostic = %+v, want a warning with a hint", lenient[0])
	}
	if lenient.HasErrors() {
		t.Error("a lenient unknown query should not count as an error")
	}

	diags := semantic.Check(prog, table, semantic.WithStrictQueries(true))
	if len(diags) != 1 || diags[0].Code != types.ErrUnknownFunction {
		t.Fatalf("strict check = %v", codes(diags))
	}
	if diags[0].Severity != types.SeverityError {
		t.Errorf("strict severity = %s", diags[0].Severity)
	}
	if !strings.Contains(diags[0].Message, "query.is_sneaking") {
		t.Errorf("message = %q", diags[0].Message)
	}
	if diags[0].Span != types.NewSpan(0, 15) {
		t.Errorf("span = %v, want 0..15", diags[0].Span)
	}
}

func TestCheckTargetVersion(t *testing.T) {
	table := testTable(t)

	tests := []struct {
		target string
		input  string
		want   int
	}{
		{"", "math.sign(v.x) + q.has_trim()", 0},
		{"1.21.0", "math.sign(v.x) + q.has_trim()", 0},
		{"1.20.80", "math.sign(v.x) + q.has_trim()", 1},
		{"1.20.0", "math.sign(v.x) + q.has_trim()", 2},
		{"1.0.0", "math.cos(v.x)", 0},
	}

	for _, tt := range tests {
		t.Run(tt.target+" "+tt.input, func(t *testing.T) {
			diags := semantic.Check(parseOK(t, tt.input), table, semantic.WithTargetVersion(tt.target))
			if len(diags) != tt.want {
				t.Fatalf("got %v, want %d diagnostics", codes(diags), tt.want)
			}
			for _, d := range diags {
				if d.Code != types.ErrUnavailableFunction {
					t.Errorf("code = %s", d.Code)
				}
			}
		})
	}
}

func TestNewCheckerInvalidVersion(t *testing.T) {
	if _, err := semantic.NewChecker(nil, semantic.WithTargetVersion("next")); err == nil {
		t.Error("expected an error for an invalid target version")
	}
}

func TestCheckIgnoresInvalidVersion(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	diags := semantic.Check(parseOK(t, "math.sign(1)"), functions.Builtins(),
		semantic.WithTargetVersion("next"),
		semantic.WithLogger(logger))
	if len(diags) != 0 {
		t.Errorf("got %v", codes(diags))
	}
	if !strings.Contains(buf.String(), "ignoring target version") {
		t.Errorf("expected a warning, log = %q", buf.String())
	}
}

func TestCheckDiagnosticDetails(t *testing.T) {
	src := "v.x = math.clamp(1, 2);"
	diags := semantic.Check(parseOK(t, src), functions.Builtins())
	if len(diags) != 1 {
		t.Fatalf("got %v", codes(diags))
	}
	d := diags[0]
	if got := d.Span.Text(src); got != "math.clamp(1, 2)" {
		t.Errorf("span text = %q", got)
	}
	if d.Message != "math.clamp takes 3 arguments, got 2" {
		t.Errorf("message = %q", d.Message)
	}

	diags = semantic.Check(parseOK(t, "context.x = 1;"), nil)
	if len(diags) != 1 || diags[0].Hint == "" {
		t.Errorf("context assignment should carry a hint: %v", diags)
	}
}

func TestCheckDoesNotMutate(t *testing.T) {
	prog := parseOK(t, "v.a = math.cos(q.b); c.x = 'a' + 1; break;")
	before := types.Dump(prog.Arena(), prog.Root())
	semantic.Check(prog, functions.Builtins())
	if after := types.Dump(prog.Arena(), prog.Root()); after != before {
		t.Errorf("tree changed:\n  before: %s\n  after:  %s", before, after)
	}
}

func TestCheckerReuse(t *testing.T) {
	c, err := semantic.NewChecker(functions.Builtins(), semantic.WithDebug(true))
	if err != nil {
		t.Fatal(err)
	}
	first := c.Check(parseOK(t, "loop(2, { break; });"))
	second := c.Check(parseOK(t, "break;"))
	if len(first) != 0 || len(second) != 1 {
		t.Errorf("first = %v, second = %v", codes(first), codes(second))
	}
}
