// Package cmd implements the molang command line tool.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gomolang"
	"github.com/sandrolain/gomolang/internal/config"
	"github.com/sandrolain/gomolang/pkg/render"
	"github.com/sandrolain/gomolang/pkg/types"
)

// errProblems signals that diagnostics were already reported to the user.
var errProblems = errors.New("problems found")

// app holds the state shared by all subcommands.
type app struct {
	cfgFile  string
	logLevel string
	noColor  bool

	cfg    *config.Config
	logger *slog.Logger
	debug  bool
}

// input is one source text together with the name used in diagnostics.
type input struct {
	name   string
	source string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "molang",
		Short: "Molang toolchain",
		Long: `molang parses, formats and checks Molang, the expression language of
Minecraft Bedrock resource and behavior packs.

Settings are read from molang.toml in the working directory, or from the
file given with --config.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./molang.toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		a.parseCmd(),
		a.fmtCmd(),
		a.checkCmd(),
		a.funcsCmd(),
		a.replCmd(),
		a.watchCmd(),
		versionCmd(),
	)
	return root
}

// Execute runs the molang command.
func Execute() error {
	return execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err != nil && !errors.Is(err, errProblems) {
		fmt.Fprintf(stderr, "molang: %v\n", err)
	}
	return err
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Resolve(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	name := cfg.Log.Level
	if a.logLevel != "" {
		name = a.logLevel
	}
	level, err := config.ParseLevel(name)
	if err != nil {
		return err
	}
	a.debug = level <= slog.LevelDebug
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// toolchain builds a toolchain from the configuration plus extra options.
func (a *app) toolchain(extra ...gomolang.Option) *gomolang.Toolchain {
	opts := append(a.cfg.Options(a.logger), gomolang.WithDebug(a.debug))
	return gomolang.New(append(opts, extra...)...)
}

func (a *app) styles() render.Styles {
	if a.noColor {
		return render.PlainStyles()
	}
	return render.DefaultStyles()
}

// report renders diagnostics to the command's error stream.
func (a *app) report(cmd *cobra.Command, in input, diags types.Diagnostics) error {
	if len(diags) == 0 {
		return nil
	}
	w := cmd.ErrOrStderr()
	if err := render.Diagnostics(w, in.name, in.source, diags, a.styles()); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// readInputs reads every named file. No argument, or "-", reads standard
// input. A non-empty expr is used instead of any file.
func readInputs(cmd *cobra.Command, args []string, expr string) ([]input, error) {
	if expr != "" {
		return []input{{name: "<expr>", source: expr}}, nil
	}
	if len(args) == 0 {
		args = []string{"-"}
	}

	inputs := make([]input, 0, len(args))
	for _, arg := range args {
		if arg == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return nil, fmt.Errorf("failed to read stdin: %w", err)
			}
			inputs = append(inputs, input{name: "<stdin>", source: string(data)})
			continue
		}
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read source: %w", err)
		}
		inputs = append(inputs, input{name: filepath.ToSlash(arg), source: string(data)})
	}
	return inputs, nil
}
