package cmd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

type runResult struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(append([]string{"--no-color"}, args...), strings.NewReader(stdin), &stdout, &stderr)
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseCommand(t *testing.T) {
	r := run(t, "", "parse", "-e", "v.x = 1;")
	if r.err != nil {
		t.Fatalf("err = %v, stderr = %s", r.err, r.stderr)
	}
	want := "(program (assign = (variable variable x) (number 1)))\n"
	if r.stdout != want {
		t.Errorf("stdout = %q, want %q", r.stdout, want)
	}

	r = run(t, "q.a; q.b", "parse", "--statements")
	if r.err != nil {
		t.Fatal(r.err)
	}
	if lines := strings.Count(r.stdout, "\n"); lines != 2 {
		t.Errorf("got %d lines:\n%s", lines, r.stdout)
	}
}

func TestParseCommandErrors(t *testing.T) {
	r := run(t, "", "parse", "-e", "v.x = ;")
	if !errors.Is(r.err, errProblems) {
		t.Fatalf("err = %v", r.err)
	}
	if !strings.Contains(r.stdout, "(error)") {
		t.Errorf("the recovered tree should still be printed: %q", r.stdout)
	}
	if !strings.Contains(r.stderr, "<expr>:1:7: error[S0203]") {
		t.Errorf("stderr = %q", r.stderr)
	}
	if strings.Contains(r.stderr, "molang:") {
		t.Errorf("reported problems should not be repeated as an error: %q", r.stderr)
	}
}

func TestFmtCommand(t *testing.T) {
	r := run(t, "v.a=1;return v.a", "fmt")
	if r.err != nil {
		t.Fatal(r.err)
	}
	if r.stdout != "v.a = 1; return v.a;\n" {
		t.Errorf("stdout = %q", r.stdout)
	}

	r = run(t, "", "fmt", "--minify", "-e", "v.a = 1 ; return v.a")
	if r.stdout != "v.a=1;return v.a;\n" {
		t.Errorf("minified = %q", r.stdout)
	}

	r = run(t, "", "fmt", "--long-prefixes", "-e", "q.a")
	if r.stdout != "query.a\n" {
		t.Errorf("long prefixes = %q", r.stdout)
	}
}

func TestFmtWriteAndList(t *testing.T) {
	dir := t.TempDir()
	messy := writeTemp(t, dir, "messy.molang", "v.a=1;return v.a")
	clean := writeTemp(t, dir, "clean.molang", "q.a + 1\n")

	r := run(t, "", "fmt", "-l", messy, clean)
	if !errors.Is(r.err, errProblems) {
		t.Fatalf("err = %v", r.err)
	}
	if strings.TrimSpace(r.stdout) != filepath.ToSlash(messy) {
		t.Errorf("listed = %q", r.stdout)
	}

	if r = run(t, "", "fmt", "-w", messy, clean); r.err != nil {
		t.Fatal(r.err)
	}
	data, err := os.ReadFile(messy)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "v.a = 1; return v.a;\n" {
		t.Errorf("written = %q", data)
	}

	if r = run(t, "", "fmt", "-l", messy, clean); r.err != nil || r.stdout != "" {
		t.Errorf("after -w nothing should differ: %q, %v", r.stdout, r.err)
	}
}

func TestFmtRejectsSyntaxErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "bad.molang", "v.a = ;")

	r := run(t, "", "fmt", "-w", path)
	if !errors.Is(r.err, errProblems) {
		t.Fatalf("err = %v", r.err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "v.a = ;" {
		t.Errorf("file with errors was modified: %q", data)
	}
}

func TestCheckCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		stderr  []string
	}{
		{"clean", []string{"-e", "math.cos(q.anim_time * 38) * 10"}, false, nil},
		{
			"arity",
			[]string{"-e", "math.clamp(v.x, 0)"},
			true,
			[]string{"<expr>:1:1: error[T0410]: math.clamp takes 3 arguments, got 2", "1 error, 0 warnings"},
		},
		{
			"unknown query warns",
			[]string{"-e", "q.is_sneaking()"},
			false,
			[]string{"<expr>:1:1: warning[T0411]: unknown function `query.is_sneaking`", "0 errors, 1 warning"},
		},
		{
			"strict",
			[]string{"--strict", "-e", "q.is_sneaking()"},
			true,
			[]string{"error[T0411]", "1 error, 0 warnings"},
		},
		{
			"target",
			[]string{"--target", "1.20.0", "-e", "math.sign(v.x)"},
			true,
			[]string{"T0430"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, "", append([]string{"check"}, tt.args...)...)
			if (r.err != nil) != tt.wantErr {
				t.Fatalf("err = %v, stderr = %s", r.err, r.stderr)
			}
			for _, want := range tt.stderr {
				if !strings.Contains(r.stderr, want) {
					t.Errorf("stderr lacks %q:\n%s", want, r.stderr)
				}
			}
		})
	}
}

func TestCheckWithConfig(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "queries.toml", `
[[functions]]
name = "query.position"
min_args = 0
max_args = 1
`)
	cfg := writeTemp(t, dir, "molang.toml", `
[check]
signatures = ["queries.toml"]
strict_queries = true
`)

	if r := run(t, "", "--config", cfg, "check", "-e", "q.position(1)"); r.err != nil {
		t.Errorf("known query: %v\n%s", r.err, r.stderr)
	}
	if r := run(t, "", "--config", cfg, "check", "-e", "q.position(1, 2)"); r.err == nil {
		t.Error("arity from the signature file should be enforced")
	}
	if r := run(t, "", "--config", cfg, "check", "--strict=false", "-e", "q.unknown()"); r.err != nil {
		t.Errorf("flag should override the config: %v", r.err)
	}

	r := run(t, "", "--config", filepath.Join(dir, "missing.toml"), "check", "-e", "1")
	if r.err == nil || !strings.Contains(r.stderr, "config file not found") {
		t.Errorf("stderr = %q", r.stderr)
	}
}

func TestFuncsCommand(t *testing.T) {
	r := run(t, "", "funcs", "math")
	if r.err != nil {
		t.Fatal(r.err)
	}
	if !strings.Contains(r.stdout, "math.clamp") || strings.Contains(r.stdout, "query.") {
		t.Errorf("stdout = %q", r.stdout)
	}

	if r = run(t, "", "funcs", "nope"); r.err == nil {
		t.Error("expected an error for an unknown namespace")
	}
}

func TestVersionCommand(t *testing.T) {
	r := run(t, "", "version")
	if r.err != nil || !strings.HasPrefix(r.stdout, "molang v") {
		t.Errorf("stdout = %q, err = %v", r.stdout, r.err)
	}
}

func TestLogLevelFlag(t *testing.T) {
	r := run(t, "", "--log-level", "loud", "parse", "-e", "1")
	if r.err == nil || !strings.Contains(r.stderr, "unknown log level") {
		t.Errorf("stderr = %q", r.stderr)
	}
}

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"v.a = 1;", false},
		{"q.a + 1", false},
		{"1 +", true},
		{"loop(10, {", true},
		{"v.a = math.cos(", true},
		{"'unterminated", true},
		{"/* open", true},
		{"1 + + 2", false},
		{"v.a = ; v.b = 1", false},
	}

	for _, tt := range tests {
		if got := incomplete(tt.src); got != tt.want {
			t.Errorf("incomplete(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestSessionEval(t *testing.T) {
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	repl, _, err := root.Find([]string{"repl"})
	if err != nil {
		t.Fatal(err)
	}
	a := &app{noColor: true}
	if err := a.setup(repl, nil); err != nil {
		t.Fatal(err)
	}
	table, err := a.cfg.Table()
	if err != nil {
		t.Fatal(err)
	}
	s := &session{app: a, tc: a.toolchain(), table: table, format: a.cfg.FormatOptions(), mode: modeTree}

	s.eval(repl, "q.a + 1")
	if !strings.Contains(stdout.String(), "(binary +") {
		t.Errorf("tree mode output = %q", stdout.String())
	}

	stdout.Reset()
	s.eval(repl, ":fmt")
	s.eval(repl, "v.a=1;return v.a")
	if !strings.Contains(stdout.String(), "v.a = 1; return v.a;") {
		t.Errorf("fmt mode output = %q", stdout.String())
	}

	stderr.Reset()
	s.eval(repl, "math.cos()")
	if !strings.Contains(stderr.String(), "<repl:3>:1:1: error[T0410]") {
		t.Errorf("diagnostics = %q", stderr.String())
	}

	if !s.eval(repl, ":quit") {
		t.Error(":quit should end the session")
	}
}

func TestWatchLoop(t *testing.T) {
	dir := t.TempDir()
	w, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		t.Fatal(err)
	}

	var (
		mu      sync.Mutex
		handled []string
	)
	done := make(chan struct{}, 1)
	handle := func(path string) {
		mu.Lock()
		handled = append(handled, filepath.Base(path))
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
	}
	wants := func(path string) bool {
		return filepath.Ext(path) == sourceExt
	}

	ctx, cancel := context.WithCancel(context.Background())
	loopErr := make(chan error, 1)
	go func() {
		loopErr <- watchLoop(ctx, w, 20*time.Millisecond, wants, handle, slog.Default())
	}()

	writeTemp(t, dir, "ignored.txt", "x")
	path := writeTemp(t, dir, "anim.molang", "v.a = 1;")
	if err := os.WriteFile(path, []byte("v.a = 2;"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("no change was handled")
	}
	cancel()
	if err := <-loopErr; err != nil {
		t.Errorf("watchLoop() = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, name := range handled {
		if name != "anim.molang" {
			t.Errorf("handled %q", name)
		}
	}
}
