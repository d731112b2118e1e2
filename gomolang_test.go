package gomolang_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/sandrolain/gomolang"
	"github.com/sandrolain/gomolang/pkg/cache"
	"github.com/sandrolain/gomolang/pkg/codegen"
	"github.com/sandrolain/gomolang/pkg/functions"
	"github.com/sandrolain/gomolang/pkg/parser"
	"github.com/sandrolain/gomolang/pkg/types"
)

func TestVersion(t *testing.T) {
	if !strings.HasPrefix(gomolang.Version(), "v") {
		t.Errorf("Version() = %q", gomolang.Version())
	}
}

func TestParse(t *testing.T) {
	res := gomolang.Parse("math.cos(q.anim_time * 38) * 10")
	if !res.Ok() {
		t.Fatalf("unexpected diagnostics: %v", res.Err())
	}
	want := parser.Parse(nil, "math.cos(q.anim_time * 38) * 10").Program
	if !types.Equal(res.Program.Arena(), res.Program.Root(), want.Arena(), want.Root()) {
		t.Errorf("tree = %s", types.Dump(res.Program.Arena(), res.Program.Root()))
	}

	res = gomolang.Parse("v.a = ;")
	if res.Ok() || len(res.Errors) != 1 || res.Errors[0].Code != types.ErrExpectedExpression {
		t.Errorf("errors = %v", res.Errors)
	}
}

func TestParseMaxDepth(t *testing.T) {
	src := strings.Repeat("(", 20) + "1" + strings.Repeat(")", 20)
	if res := gomolang.Parse(src); !res.Ok() {
		t.Fatalf("default depth: %v", res.Err())
	}
	res := gomolang.Parse(src, gomolang.WithMaxDepth(8))
	if !res.Panicked {
		t.Fatal("expected the parse to give up")
	}
	if res.Errors[0].Code != types.ErrDepthExceeded {
		t.Errorf("code = %s", res.Errors[0].Code)
	}
}

func TestMustParse(t *testing.T) {
	prog := gomolang.MustParse("v.x = 1; return v.x;")
	if len(prog.Statements()) != 2 {
		t.Errorf("got %d statements", len(prog.Statements()))
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("MustParse should panic on invalid source")
		}
		if msg, _ := r.(string); !strings.HasPrefix(msg, `gomolang: Parse("1 +"):`) {
			t.Errorf("panic message = %v", r)
		}
	}()
	gomolang.MustParse("1 +")
}

func TestCaching(t *testing.T) {
	tc := gomolang.New(gomolang.WithCaching(true), gomolang.WithCacheSize(4))
	if tc.Cache() == nil || tc.Cache().Capacity() != 4 {
		t.Fatal("caching toolchain should own a cache of capacity 4")
	}

	first := tc.Parse("q.is_sneaking ? 1 : 0")
	second := tc.Parse("q.is_sneaking ? 1 : 0")
	if !first.Ok() || !second.Ok() {
		t.Fatal("unexpected diagnostics")
	}
	if first.Program != second.Program {
		t.Error("a cached parse should return the same program")
	}

	bad := tc.Parse("1 +")
	if bad.Ok() {
		t.Fatal("expected diagnostics")
	}
	if again := tc.Parse("1 +"); len(again.Errors) != 1 {
		t.Error("a failed parse must report its diagnostics every time")
	}
	if tc.Cache().Len() != 1 {
		t.Errorf("Len() = %d, want 1", tc.Cache().Len())
	}

	if gomolang.New().Cache() != nil {
		t.Error("caching is off by default")
	}
}

func TestSharedCache(t *testing.T) {
	shared := cache.New(8)
	a := gomolang.New(gomolang.WithCache(shared))
	b := gomolang.New(gomolang.WithCache(shared))

	if a.Parse("v.x").Program != b.Parse("v.x").Program {
		t.Error("toolchains sharing a cache should share programs")
	}

	// A different depth limit must not reuse entries
	c := gomolang.New(gomolang.WithCache(shared), gomolang.WithMaxDepth(16))
	if c.Parse("v.x").Program == a.Parse("v.x").Program {
		t.Error("entries parsed under different limits should be separate")
	}
	if shared.Len() != 2 {
		t.Errorf("Len() = %d, want 2", shared.Len())
	}
}

func TestFormat(t *testing.T) {
	src := "v.x=1;return v.x"
	res := parser.Parse(nil, src)
	want := codegen.Generate(res.Program, codegen.Options{Minify: true})

	got, err := gomolang.Format(src, codegen.Options{Minify: true})
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}

	if _, err := gomolang.Format("v.x = ;", codegen.Options{}); err == nil {
		t.Error("formatting invalid source should fail")
	}
}

func TestCheck(t *testing.T) {
	table := functions.Builtins()

	tests := []struct {
		name  string
		input string
		opts  []gomolang.Option
		want  []types.ErrorCode
	}{
		{"clean", "math.cos(q.anim_time * 38) * 10", nil, nil},
		{"semantic only", "math.clamp(v.x, 0)", nil, []types.ErrorCode{types.ErrArgumentCountMismatch}},
		{
			"syntax before semantic",
			"c.a = 1; v.b = ;",
			nil,
			[]types.ErrorCode{types.ErrExpectedExpression, types.ErrContextReadOnly},
		},
		{"lenient queries", "q.unknown_thing()", nil, []types.ErrorCode{types.ErrUnknownFunction}},
		{"strict queries", "q.unknown_thing()", []gomolang.Option{gomolang.WithStrictQueries(true)}, []types.ErrorCode{types.ErrUnknownFunction}},
		{"target version", "math.sign(v.x)", []gomolang.Option{gomolang.WithTargetVersion("1.20.0")}, []types.ErrorCode{types.ErrUnavailableFunction}},
		{"aborted parse is not checked", "break; 'abc", nil, []types.ErrorCode{types.ErrStringNotClosed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := gomolang.Check(tt.input, table, tt.opts...)
			if len(diags) != len(tt.want) {
				t.Fatalf("got %v, want %v", diags, tt.want)
			}
			for i, d := range diags {
				if d.Code != tt.want[i] {
					t.Errorf("diagnostic %d = %s, want %s", i, d.Code, tt.want[i])
				}
			}
		})
	}
}

func TestCheckInvalidTargetVersion(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	diags := gomolang.Check("math.sign(1)", functions.Builtins(),
		gomolang.WithTargetVersion("soon"),
		gomolang.WithLogger(logger))
	if len(diags) != 0 {
		t.Errorf("got %v", diags)
	}
	if !strings.Contains(buf.String(), "ignoring target version") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestChecker(t *testing.T) {
	tc := gomolang.New(gomolang.WithTargetVersion("bogus"))
	if _, err := tc.Checker(functions.Builtins()); err == nil {
		t.Error("an invalid target version should be rejected")
	}
}

func BenchmarkParseCached(b *testing.B) {
	tc := gomolang.New(gomolang.WithCaching(true))
	src := "v.speed = math.clamp(q.modified_move_speed * 2, 0, 1); return v.speed > 0.5 ? q.anim_time : 0;"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tc.Parse(src)
	}
}
