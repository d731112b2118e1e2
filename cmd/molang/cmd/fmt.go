package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gomolang/pkg/codegen"
)

func (a *app) fmtCmd() *cobra.Command {
	var (
		write  bool
		list   bool
		expr   string
		format codegen.Options
	)

	cmd := &cobra.Command{
		Use:   "fmt [file...]",
		Short: "Format Molang sources",
		Long: `Prints each source in canonical form. Sources with syntax errors are
reported and left untouched.

Examples:
  molang fmt anim.molang
  molang fmt -w animations/*.molang
  molang fmt -l animations/*.molang
  molang fmt --minify -e "v.x = 1 ; return v.x"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readInputs(cmd, args, expr)
			if err != nil {
				return err
			}

			opts := a.cfg.FormatOptions()
			flags := cmd.Flags()
			if flags.Changed("indent") {
				opts.Indent = format.Indent
			}
			if flags.Changed("minify") {
				opts.Minify = format.Minify
			}
			if flags.Changed("force-parens") {
				opts.ForceParens = format.ForceParens
			}
			if flags.Changed("long-prefixes") {
				opts.LongPrefixes = format.LongPrefixes
			}

			tc := a.toolchain()
			failed := false
			for _, in := range inputs {
				res := tc.Parse(in.source)
				if !res.Ok() {
					if err := a.report(cmd, in, res.Errors); err != nil {
						return err
					}
					failed = true
					continue
				}

				out := codegen.Generate(res.Program, opts)
				if !strings.HasSuffix(out, "\n") {
					out += "\n"
				}

				switch {
				case list:
					if out != in.source {
						fmt.Fprintln(cmd.OutOrStdout(), in.name)
						failed = true
					}
				case write && in.name != "<stdin>" && in.name != "<expr>":
					if out == in.source {
						continue
					}
					if err := writeFile(in.name, out); err != nil {
						return err
					}
					a.logger.Info("formatted", "file", in.name)
				default:
					fmt.Fprint(cmd.OutOrStdout(), out)
				}
			}
			if failed {
				return errProblems
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the source files")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list files whose formatting differs and fail")
	cmd.Flags().StringVarP(&expr, "expr", "e", "", "format this expression instead of files")
	cmd.Flags().StringVar(&format.Indent, "indent", "", "indentation for multi-line output")
	cmd.Flags().BoolVar(&format.Minify, "minify", false, "drop all optional whitespace")
	cmd.Flags().BoolVar(&format.ForceParens, "force-parens", false, "parenthesize every nested operator")
	cmd.Flags().BoolVar(&format.LongPrefixes, "long-prefixes", false, "print query/variable/temp/context in full")
	return cmd
}

// writeFile replaces path, keeping its permissions.
func writeFile(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
