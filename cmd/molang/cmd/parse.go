package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandrolain/gomolang/pkg/types"
)

func (a *app) parseCmd() *cobra.Command {
	var (
		expr       string
		statements bool
	)

	cmd := &cobra.Command{
		Use:   "parse [file...]",
		Short: "Print the syntax tree of Molang sources",
		Long: `Parses each source and prints its syntax tree as an S-expression.
Syntax errors are reported on stderr; the tree still shows the recovered
structure with error placeholders.

Examples:
  molang parse anim.molang
  molang parse -e "math.cos(q.anim_time * 38) * 10"
  echo "v.x = 1;" | molang parse --statements`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readInputs(cmd, args, expr)
			if err != nil {
				return err
			}

			tc := a.toolchain()
			failed := false
			for _, in := range inputs {
				res := tc.Parse(in.source)
				prog := res.Program
				if statements {
					for _, id := range prog.Statements() {
						fmt.Fprintln(cmd.OutOrStdout(), types.Dump(prog.Arena(), id))
					}
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), types.Dump(prog.Arena(), prog.Root()))
				}
				if err := a.report(cmd, in, res.Errors); err != nil {
					return err
				}
				failed = failed || !res.Ok()
			}
			if failed {
				return errProblems
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&expr, "expr", "e", "", "parse this expression instead of files")
	cmd.Flags().BoolVar(&statements, "statements", false, "print one tree per top-level statement")
	return cmd
}
