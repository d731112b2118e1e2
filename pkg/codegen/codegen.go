// Package codegen prints Molang syntax trees back to source text.
//
// The output re-parses into a tree structurally equal to the input: the
// printer emits the minimal parentheses needed to preserve grouping, derived
// from the same precedence levels the parser uses. Printing depends only on the
// tree's structure, never on the original spelling, so formatting a formatted
// program is a no-op.
//
// # Example
//
//	res := parser.Parse(nil, "Query.A+ (v.b*2)")
//	fmt.Println(codegen.Generate(res.Program, codegen.Options{}))
//	// q.A + v.b * 2
package codegen

import (
	"math"
	"strconv"
	"strings"

	"github.com/sandrolain/gomolang/pkg/types"
)

// ErrorMarker is printed in place of error placeholder nodes.
const ErrorMarker = "<error>"

// Options configures the printer.
type Options struct {
	// Indent, when non-empty, prints top-level statements and block contents
	// on separate lines indented with this string.
	Indent string
	// ForceParens wraps every nested operator expression in parentheses.
	ForceParens bool
	// Minify drops all optional whitespace. It takes precedence over Indent.
	Minify bool
	// LongPrefixes prints query/variable/temp/context instead of q/v/t/c.
	LongPrefixes bool
}

// Precedence levels, low to high. They mirror the parser's binding powers.
const (
	precLowest = iota
	precAssign
	precCoalesce
	precConditional
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precPrimary
)

var binaryPrec = [...]int{
	types.OpCoalesce:  precCoalesce,
	types.OpOr:        precOr,
	types.OpAnd:       precAnd,
	types.OpEq:        precEquality,
	types.OpNotEq:     precEquality,
	types.OpLess:      precRelational,
	types.OpLessEq:    precRelational,
	types.OpGreater:   precRelational,
	types.OpGreaterEq: precRelational,
	types.OpAdd:       precAdditive,
	types.OpSub:       precAdditive,
	types.OpMul:       precMultiplicative,
	types.OpDiv:       precMultiplicative,
}

// Generate prints a whole program.
func Generate(program *types.Program, opts Options) string {
	g := newGenerator(program.Arena(), opts)
	g.program(program.Root())
	return g.sb.String()
}

// GenerateNode prints a single subtree, expression or statement.
func GenerateNode(arena *types.Arena, id types.NodeID, opts Options) string {
	g := newGenerator(arena, opts)
	if arena.Kind(id) == types.NodeProgram {
		g.program(id)
	} else {
		g.statement(id)
	}
	return g.sb.String()
}

type generator struct {
	arena *types.Arena
	opts  Options
	sb    strings.Builder
	level int
}

func newGenerator(arena *types.Arena, opts Options) *generator {
	if opts.Minify {
		opts.Indent = ""
	}
	g := &generator{arena: arena, opts: opts}
	g.sb.Grow(len(arena.Source()))
	return g
}

// space writes s surrounded by spaces unless minifying.
func (g *generator) space(s string) {
	if g.opts.Minify {
		g.sb.WriteString(s)
		return
	}
	g.sb.WriteByte(' ')
	g.sb.WriteString(s)
	g.sb.WriteByte(' ')
}

// comma writes an argument separator.
func (g *generator) comma() {
	g.sb.WriteByte(',')
	if !g.opts.Minify {
		g.sb.WriteByte(' ')
	}
}

func (g *generator) newline() {
	g.sb.WriteByte('\n')
	for i := 0; i < g.level; i++ {
		g.sb.WriteString(g.opts.Indent)
	}
}

func (g *generator) program(id types.NodeID) {
	stmts := g.arena.List(id)

	// A lone expression is a simple program and takes no semicolon
	if len(stmts) == 1 && g.arena.Kind(stmts[0]) == types.NodeExpressionStatement {
		g.expr(g.arena.Get(stmts[0]).X)
		return
	}

	for i, s := range stmts {
		if i > 0 {
			switch {
			case g.opts.Indent != "":
				g.newline()
			case !g.opts.Minify:
				g.sb.WriteByte(' ')
			}
		}
		g.statement(s)
		g.sb.WriteByte(';')
	}
}

// block prints braces around statements that each end with ';'.
func (g *generator) block(id types.NodeID) {
	stmts := g.arena.List(id)
	if len(stmts) == 0 {
		g.sb.WriteString("{}")
		return
	}

	g.sb.WriteByte('{')
	if g.opts.Indent != "" {
		g.level++
		for _, s := range stmts {
			g.newline()
			g.statement(s)
			g.sb.WriteByte(';')
		}
		g.level--
		g.newline()
		g.sb.WriteByte('}')
		return
	}

	for _, s := range stmts {
		if !g.opts.Minify {
			g.sb.WriteByte(' ')
		}
		g.statement(s)
		g.sb.WriteByte(';')
	}
	if !g.opts.Minify {
		g.sb.WriteByte(' ')
	}
	g.sb.WriteByte('}')
}

func (g *generator) group(id types.NodeID) {
	g.sb.WriteByte('(')
	for i, s := range g.arena.List(id) {
		if i > 0 && !g.opts.Minify {
			g.sb.WriteByte(' ')
		}
		g.statement(s)
		g.sb.WriteByte(';')
	}
	g.sb.WriteByte(')')
}

func (g *generator) statement(id types.NodeID) {
	n := g.arena.Get(id)

	switch n.Kind {
	case types.NodeExpressionStatement:
		g.expr(n.X)
	case types.NodeAssignment:
		g.assignment(n)
	case types.NodeReturn:
		g.sb.WriteString("return")
		if n.X != types.NoNode {
			g.sb.WriteByte(' ')
			g.expr(n.X)
		}
	case types.NodeLoop:
		g.sb.WriteString("loop(")
		g.expr(n.X)
		g.comma()
		g.body(n.Y)
		g.sb.WriteByte(')')
	case types.NodeForEach:
		g.sb.WriteString("for_each(")
		g.expr(n.X)
		g.comma()
		g.expr(n.Y)
		g.comma()
		g.body(n.Z)
		g.sb.WriteByte(')')
	default:
		g.expr(id)
	}
}

func (g *generator) body(id types.NodeID) {
	if g.arena.Kind(id) == types.NodeBlock {
		g.block(id)
		return
	}
	g.expr(id)
}

func (g *generator) assignment(n *types.Node) {
	g.expr(n.X)
	g.space(n.Op.String())
	if g.arena.Kind(n.Y) == types.NodeAssignment {
		g.assignment(g.arena.Get(n.Y))
		return
	}
	g.expr(n.Y)
}

// precedence returns the level of the operator at the root of id.
func (g *generator) precedence(id types.NodeID) int {
	n := g.arena.Get(id)
	switch n.Kind {
	case types.NodeBinary:
		return binaryPrec[n.Op]
	case types.NodeUnary:
		return precUnary
	case types.NodeNumber:
		// A negative literal prints with its sign and groups like a negation
		if math.Signbit(n.Num) {
			return precUnary
		}
		return precPrimary
	case types.NodeTernary, types.NodeConditional, types.NodeArrow:
		return precConditional
	case types.NodeAssignment:
		return precAssign
	case types.NodeMemberAccess, types.NodeArrayAccess, types.NodeCall:
		return precPostfix
	default:
		return precPrimary
	}
}

// isOperator reports whether id is an operator expression, the kind of
// node ForceParens wraps.
func (g *generator) isOperator(id types.NodeID) bool {
	switch g.arena.Kind(id) {
	case types.NodeBinary, types.NodeUnary, types.NodeTernary, types.NodeConditional, types.NodeArrow:
		return true
	default:
		return false
	}
}

// endsOpen reports whether the printed form of id ends in a conditional
// branch. Such a branch extends as far right as possible and would swallow
// any operator printed after it.
func (g *generator) endsOpen(id types.NodeID) bool {
	n := g.arena.Get(id)
	switch n.Kind {
	case types.NodeTernary, types.NodeConditional, types.NodeArrow:
		return true
	case types.NodeBinary:
		if g.wraps(n.Y, binaryPrec[n.Op]+1, false) {
			return false
		}
		return g.endsOpen(n.Y)
	default:
		return false
	}
}

// wraps reports whether an operand needs parentheses. least is the lowest
// precedence that can appear there bare; followed reports whether more
// operator tokens are printed after the operand.
func (g *generator) wraps(id types.NodeID, least int, followed bool) bool {
	return g.precedence(id) < least ||
		(g.opts.ForceParens && g.isOperator(id)) ||
		(followed && g.endsOpen(id))
}

// operand prints a child of an operator, parenthesized when needed.
func (g *generator) operand(id types.NodeID, least int, followed bool) {
	if g.wraps(id, least, followed) {
		g.sb.WriteByte('(')
		g.expr(id)
		g.sb.WriteByte(')')
		return
	}
	g.expr(id)
}

// leadsWithNumber reports whether the printed form of id starts with an
// unsigned number literal.
func (g *generator) leadsWithNumber(id types.NodeID) bool {
	for {
		n := g.arena.Get(id)
		switch n.Kind {
		case types.NodeMemberAccess, types.NodeArrayAccess, types.NodeCall:
			if g.precedence(n.X) < precPostfix {
				return false
			}
			id = n.X
		case types.NodeNumber:
			return !math.Signbit(n.Num)
		default:
			return false
		}
	}
}

// expr prints an expression.
func (g *generator) expr(id types.NodeID) {
	n := g.arena.Get(id)

	switch n.Kind {
	case types.NodeError, types.NodeInvalid:
		g.sb.WriteString(ErrorMarker)
	case types.NodeNumber:
		g.sb.WriteString(formatNumber(n.Num))
	case types.NodeString:
		g.sb.WriteByte('\'')
		g.sb.WriteString(g.arena.Text(id))
		g.sb.WriteByte('\'')
	case types.NodeBoolean:
		g.sb.WriteString(strconv.FormatBool(n.Bool()))
	case types.NodeThis:
		g.sb.WriteString("this")
	case types.NodeBreak:
		g.sb.WriteString("break")
	case types.NodeContinue:
		g.sb.WriteString("continue")
	case types.NodeIdentifier:
		g.sb.WriteString(g.arena.Text(id))
	case types.NodeVariable:
		if g.opts.LongPrefixes {
			g.sb.WriteString(n.Scope.String())
		} else {
			g.sb.WriteString(n.Scope.Short())
		}
		g.sb.WriteByte('.')
		g.sb.WriteString(g.arena.Text(id))
	case types.NodeMemberAccess:
		g.operand(n.X, precPostfix, true)
		g.sb.WriteByte('.')
		g.sb.WriteString(g.arena.Text(id))
	case types.NodeArrayAccess:
		g.operand(n.X, precPostfix, true)
		g.sb.WriteByte('[')
		g.expr(n.Y)
		g.sb.WriteByte(']')
	case types.NodeCall:
		g.operand(n.X, precPostfix, true)
		g.sb.WriteByte('(')
		for i, arg := range g.arena.List(id) {
			if i > 0 {
				g.comma()
			}
			g.expr(arg)
		}
		g.sb.WriteByte(')')
	case types.NodeUnary:
		g.sb.WriteString(n.Op.String())
		if n.Op == types.OpNegate && g.leadsWithNumber(n.X) {
			// -(1) must not re-lex as the literal -1
			g.sb.WriteByte('(')
			g.expr(n.X)
			g.sb.WriteByte(')')
			return
		}
		g.operand(n.X, precUnary, false)
	case types.NodeBinary:
		prec := binaryPrec[n.Op]
		g.operand(n.X, prec, true)
		g.space(n.Op.String())
		g.operand(n.Y, prec+1, false)
	case types.NodeTernary:
		g.operand(n.X, precOr, true)
		g.space("?")
		// A conditional in the consequent would claim the ':'
		g.operand(n.Y, precConditional+1, true)
		g.space(":")
		g.operand(n.Z, precCoalesce, false)
	case types.NodeConditional:
		g.operand(n.X, precOr, true)
		g.space("?")
		g.operand(n.Y, precCoalesce, false)
	case types.NodeArrow:
		g.operand(n.X, precOr, true)
		g.space("->")
		g.operand(n.Y, precCoalesce, false)
	case types.NodeBlock:
		g.block(id)
	case types.NodeGroup:
		g.group(id)
	case types.NodeAssignment:
		g.assignment(n)
	case types.NodeReturn, types.NodeLoop, types.NodeForEach, types.NodeExpressionStatement:
		g.statement(id)
	default:
		g.sb.WriteString(ErrorMarker)
	}
}

// formatNumber prints the shortest representation that parses back to n.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}
