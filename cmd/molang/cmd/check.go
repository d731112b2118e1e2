package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gomolang"
	"github.com/sandrolain/gomolang/pkg/functions"
	"github.com/sandrolain/gomolang/pkg/types"
)

// checkFlags holds the checker settings shared by check, repl and watch.
type checkFlags struct {
	strict bool
	target string
}

func (f *checkFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.strict, "strict", false, "report calls to unknown query functions")
	cmd.Flags().StringVar(&f.target, "target", "", "engine version the sources must run on, e.g. 1.20.0")
}

// options returns toolchain overrides for the flags the user set.
func (f *checkFlags) options(cmd *cobra.Command) []gomolang.Option {
	var opts []gomolang.Option
	if cmd.Flags().Changed("strict") {
		opts = append(opts, gomolang.WithStrictQueries(f.strict))
	}
	if cmd.Flags().Changed("target") {
		opts = append(opts, gomolang.WithTargetVersion(f.target))
	}
	return opts
}

// summary counts diagnostics by severity.
type summary struct {
	errors   int
	warnings int
}

func (s *summary) add(diags types.Diagnostics) {
	for _, d := range diags {
		if d.Severity == types.SeverityWarning {
			s.warnings++
		} else {
			s.errors++
		}
	}
}

func (s summary) String() string {
	return fmt.Sprintf("%d %s, %d %s",
		s.errors, plural(s.errors, "error"),
		s.warnings, plural(s.warnings, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func (a *app) checkCmd() *cobra.Command {
	var (
		expr  string
		flags checkFlags
	)

	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Check Molang sources for syntax and semantic errors",
		Long: `Parses each source and validates it against the builtin math functions
and every signature file listed in the configuration. Exits with status 1
when any error is found; warnings alone do not fail.

Examples:
  molang check animations/*.molang
  molang check --strict --target 1.20.0 anim.molang
  molang check -e "math.clamp(v.x, 0)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readInputs(cmd, args, expr)
			if err != nil {
				return err
			}
			table, err := a.cfg.Table()
			if err != nil {
				return err
			}

			tc := a.toolchain(flags.options(cmd)...)
			var sum summary
			for _, in := range inputs {
				diags := tc.Check(in.source, table)
				sum.add(diags)
				if err := a.report(cmd, in, diags); err != nil {
					return err
				}
			}

			if sum.errors+sum.warnings > 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), sum)
			}
			if sum.errors > 0 {
				return errProblems
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&expr, "expr", "e", "", "check this expression instead of files")
	flags.register(cmd)
	return cmd
}

func (a *app) funcsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "funcs [namespace]",
		Short: "List the known function signatures",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.cfg.Table()
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) == 1 {
				if !table.HasNamespace(args[0]) {
					return fmt.Errorf("unknown namespace %q", args[0])
				}
				prefix = functions.Normalize(args[0] + ".")
			}
			for _, name := range table.Names() {
				if !strings.HasPrefix(name, prefix) {
					continue
				}
				sig, _ := table.Lookup(name)
				line := fmt.Sprintf("%-32s %s", sig.Name, sig.Arity())
				if sig.Since != "" {
					line += "  since " + sig.Since
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}
