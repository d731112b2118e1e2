package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/sandrolain/gomolang"
	"github.com/sandrolain/gomolang/pkg/codegen"
	"github.com/sandrolain/gomolang/pkg/functions"
	"github.com/sandrolain/gomolang/pkg/types"
)

const (
	historyFile = ".molang_history"
	promptMain  = "molang> "
	promptCont  = "   ...> "
)

// replMode selects what the REPL prints for a clean program.
type replMode string

const (
	modeTree  replMode = "tree"
	modeFmt   replMode = "fmt"
	modeCheck replMode = "check"
)

// session evaluates REPL entries. It is separate from the terminal so that
// it can run against plain readers and writers.
type session struct {
	app    *app
	tc     *gomolang.Toolchain
	table  functions.Table
	format codegen.Options
	mode   replMode
	n      int
}

func (a *app) replCmd() *cobra.Command {
	var flags checkFlags

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive Molang shell",
		Long: `Reads Molang programs line by line and prints their syntax tree, their
formatted form or their diagnostics. Input that ends in the middle of an
expression continues on the next line; an empty line submits it as is.

Commands:
  :tree   print syntax trees (default)
  :fmt    print formatted source
  :check  print diagnostics only
  :quit   exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.cfg.Table()
			if err != nil {
				return err
			}
			s := &session{
				app:    a,
				tc:     a.toolchain(append(flags.options(cmd), gomolang.WithCaching(true))...),
				table:  table,
				format: a.cfg.FormatOptions(),
				mode:   modeTree,
			}
			return s.run(cmd)
		},
	}

	flags.register(cmd)
	return cmd
}

func (s *session) run(cmd *cobra.Command) error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "molang %s, :quit to exit\n", gomolang.Version())
	for {
		src, ok := readEntry(ln)
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if quit := s.eval(cmd, src); quit {
			return nil
		}
	}
}

// readEntry reads lines until they form a complete program.
func readEntry(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !incomplete(src) {
			return src, true
		}
	}
}

// incomplete reports whether src stops in the middle of a program, so that
// more input could still make it valid.
func incomplete(src string) bool {
	res := gomolang.Parse(src)
	if res.Ok() {
		return false
	}
	end := uint32(len(strings.TrimRight(src, " \t\r\n")))
	for _, d := range res.Errors {
		switch d.Code {
		case types.ErrStringNotClosed, types.ErrCommentNotClosed:
			return true
		case types.ErrExpectedExpression, types.ErrExpectedToken, types.ErrMissingSemicolon:
			if d.Span.Start >= end {
				return true
			}
		}
	}
	return false
}

// eval handles one entry and reports whether the session should end.
func (s *session) eval(cmd *cobra.Command, src string) bool {
	out := cmd.OutOrStdout()
	src = strings.TrimSpace(src)

	if strings.HasPrefix(src, ":") {
		switch command := strings.ToLower(src); command {
		case ":quit", ":q", ":exit":
			return true
		case ":tree", ":fmt", ":check":
			s.mode = replMode(command[1:])
			fmt.Fprintf(out, "mode: %s\n", s.mode)
		default:
			fmt.Fprintln(out, "unknown command, try :tree, :fmt, :check or :quit")
		}
		return false
	}

	s.n++
	in := input{name: fmt.Sprintf("<repl:%d>", s.n), source: src}
	res := s.tc.Parse(src)
	diags := s.tc.Check(src, s.table)
	if err := s.app.report(cmd, in, diags); err != nil {
		s.app.logger.Warn("failed to render diagnostics", "error", err)
	}
	if !res.Ok() {
		return false
	}

	switch s.mode {
	case modeTree:
		fmt.Fprintln(out, types.Dump(res.Program.Arena(), res.Program.Root()))
	case modeFmt:
		fmt.Fprintln(out, codegen.Generate(res.Program, s.format))
	case modeCheck:
		if len(diags) == 0 {
			fmt.Fprintln(out, "ok")
		}
	}
	return false
}
