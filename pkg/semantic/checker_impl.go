package semantic

import (
	"fmt"
	"strings"

	"github.com/sandrolain/gomolang/pkg/functions"
	"github.com/sandrolain/gomolang/pkg/types"
)

// Namespaces reachable through bare identifiers.
const (
	nsMath     = "math"
	nsArray    = "array"
	nsGeometry = "geometry"
	nsMaterial = "material"
	nsTexture  = "texture"
)

// usage describes how a member access is consumed by its parent.
type usage uint8

const (
	useValue usage = iota
	useCall
	useIndex
)

// walker holds the state of one Check call.
type walker struct {
	checker *Checker
	arena   *types.Arena
	loops   int // enclosing loop and for_each bodies
	diags   types.Diagnostics
}

func (w *walker) report(code types.ErrorCode, span types.Span, message string) *types.Diagnostic {
	d := types.NewDiagnostic(code, span, message)
	w.diags = append(w.diags, d)
	return d
}

// statements visits the statement list of a program, block or group.
func (w *walker) statements(id types.NodeID) {
	for _, stmt := range w.arena.List(id) {
		w.visit(stmt)
	}
}

// visit checks one node and then its children, in source order.
func (w *walker) visit(id types.NodeID) {
	n := w.arena.Get(id)

	switch n.Kind {
	case types.NodeInvalid, types.NodeError,
		types.NodeNumber, types.NodeString, types.NodeBoolean,
		types.NodeThis, types.NodeVariable:
		// Leaves
	case types.NodeIdentifier:
		w.identifier(id)
	case types.NodeMemberAccess:
		w.member(id, useValue)
	case types.NodeArrayAccess:
		w.index(id, n)
	case types.NodeCall:
		w.call(id, n)
	case types.NodeUnary:
		w.visit(n.X)
	case types.NodeBinary:
		w.binary(n)
		w.visit(n.X)
		w.visit(n.Y)
	case types.NodeTernary, types.NodeConditional, types.NodeArrow:
		w.visit(n.X)
		w.visit(n.Y)
		if n.Z != types.NoNode {
			w.visit(n.Z)
		}
	case types.NodeAssignment:
		w.assignment(n)
		w.visit(n.X)
		w.visit(n.Y)
	case types.NodeReturn:
		if n.X != types.NoNode {
			w.visit(n.X)
		}
	case types.NodeExpressionStatement:
		w.visit(n.X)
	case types.NodeBlock:
		if len(w.arena.List(id)) == 0 {
			w.report(types.ErrEmptyBlock, n.Span, "block must contain at least one statement")
		}
		w.statements(id)
	case types.NodeGroup, types.NodeProgram:
		w.statements(id)
	case types.NodeLoop:
		w.visit(n.X)
		w.loops++
		w.visit(n.Y)
		w.loops--
	case types.NodeForEach:
		w.visit(n.X)
		w.visit(n.Y)
		w.loops++
		w.visit(n.Z)
		w.loops--
	case types.NodeBreak:
		if w.loops == 0 {
			w.report(types.ErrBreakOutsideLoop, n.Span, "`break` is only supported inside `loop` and `for_each`")
		}
	case types.NodeContinue:
		if w.loops == 0 {
			w.report(types.ErrContinueOutsideLoop, n.Span, "`continue` is only supported inside `loop` and `for_each`")
		}
	}
}

// namespace returns the lower-cased namespace of a member access rooted at
// a bare identifier, or "" for any other member access.
func (w *walker) namespace(n *types.Node) string {
	if w.arena.Kind(n.X) != types.NodeIdentifier {
		return ""
	}
	return strings.ToLower(w.arena.Text(n.X))
}

// knownNamespace reports whether ns may appear as a bare identifier.
func (w *walker) knownNamespace(ns string) bool {
	switch ns {
	case nsMath, nsArray, nsGeometry, nsMaterial, nsTexture:
		return true
	default:
		return w.checker.table.HasNamespace(ns)
	}
}

// identifier checks a bare identifier used as a value.
func (w *walker) identifier(id types.NodeID) {
	name := w.arena.Text(id)
	if w.knownNamespace(strings.ToLower(name)) {
		w.report(types.ErrUnknownNamespace, w.arena.Span(id), fmt.Sprintf("namespace `%s` cannot be used as a value", name)).
			WithHint(fmt.Sprintf("access a member such as `%s.name`", name))
		return
	}
	w.report(types.ErrUnknownNamespace, w.arena.Span(id), fmt.Sprintf("unknown namespace `%s`", name))
}

// member checks a member access consumed as use.
func (w *walker) member(id types.NodeID, use usage) {
	n := w.arena.Get(id)
	ns := w.namespace(n)
	if ns == "" {
		w.visit(n.X)
		return
	}

	name := ns + "." + w.arena.Text(id)
	span := n.Span

	switch ns {
	case nsArray:
		if use != useIndex {
			w.report(types.ErrMissingIndex, span, fmt.Sprintf("`%s` must be indexed", name)).
				WithHint(fmt.Sprintf("use `%s[index]`", name))
		}
	case nsGeometry, nsMaterial, nsTexture:
		if use == useIndex {
			w.report(types.ErrNotIndexable, span, fmt.Sprintf("`%s.*` values cannot be indexed", ns))
		}
	case nsMath:
		if use == useIndex {
			w.report(types.ErrNotIndexable, span, fmt.Sprintf("`%s` cannot be indexed", name))
		} else if _, ok := w.checker.table.Lookup(name); !ok {
			w.report(types.ErrUnknownFunction, span, fmt.Sprintf("unknown function `%s`", name))
		}
	default:
		if !w.knownNamespace(ns) {
			w.report(types.ErrUnknownNamespace, w.arena.Span(n.X), fmt.Sprintf("unknown namespace `%s`", w.arena.Text(n.X)))
		}
	}
}

// index checks target[index].
func (w *walker) index(id types.NodeID, n *types.Node) {
	target := w.arena.Get(n.X)
	switch target.Kind {
	case types.NodeMemberAccess:
		w.member(n.X, useIndex)
	case types.NodeNumber, types.NodeString, types.NodeBoolean:
		w.report(types.ErrNotIndexable, w.arena.Span(id), fmt.Sprintf("a %s cannot be indexed", target.Kind))
	default:
		w.visit(n.X)
	}
	w.visit(n.Y)
}

// call checks callee(args...).
func (w *walker) call(id types.NodeID, n *types.Node) {
	args := w.arena.List(id)
	callee := w.arena.Get(n.X)

	switch {
	case callee.Kind == types.NodeVariable && callee.Scope == types.ScopeQuery:
		w.function(id, "query."+w.arena.Text(n.X), len(args), w.checker.opts.StrictQueries)
	case callee.Kind == types.NodeVariable:
		w.report(types.ErrNotCallable, callee.Span, fmt.Sprintf("`%s.*` values cannot be called", callee.Scope)).
			WithHint("only `query.*` and `math.*` functions can be called")
	case callee.Kind == types.NodeMemberAccess && w.namespace(callee) != "":
		ns := w.namespace(callee)
		name := ns + "." + w.arena.Text(n.X)
		switch ns {
		case nsArray, nsGeometry, nsMaterial, nsTexture:
			w.report(types.ErrNotCallable, callee.Span, fmt.Sprintf("`%s.*` values cannot be called", ns))
		default:
			if w.knownNamespace(ns) {
				w.function(id, name, len(args), true)
			} else {
				w.report(types.ErrUnknownNamespace, w.arena.Span(callee.X), fmt.Sprintf("unknown namespace `%s`", w.arena.Text(callee.X)))
			}
		}
	default:
		w.visit(n.X)
		w.report(types.ErrNotCallable, callee.Span, "expression is not callable").
			WithHint("only `query.*` and `math.*` functions can be called")
	}

	for _, arg := range args {
		w.visit(arg)
	}
}

// function checks a call to a named function against the table. Unknown
// functions are errors when strict is set and warnings otherwise.
func (w *walker) function(id types.NodeID, name string, argc int, strict bool) {
	span := w.arena.Span(id)
	name = functions.Normalize(name)

	sig, ok := w.checker.table.Lookup(name)
	if !ok {
		d := w.report(types.ErrUnknownFunction, span, fmt.Sprintf("unknown function `%s`", name))
		if !strict {
			d.WithSeverity(types.SeverityWarning).
				WithHint("add a signature for it to check its arguments")
		}
		return
	}

	if !sig.Accepts(argc) {
		w.report(types.ErrArgumentCountMismatch, span,
			fmt.Sprintf("%s takes %s, got %d", name, arguments(sig), argc))
	}

	if target := w.checker.target; !sig.AvailableIn(target) {
		w.report(types.ErrUnavailableFunction, span,
			fmt.Sprintf("%s requires version %s, target is %s", name, sig.Since, target)).
			WithHint("raise the target version or avoid this function")
	}
}

// arguments spells out the arity of sig, e.g. "1 argument" or "2 to 3 arguments".
func arguments(sig functions.Signature) string {
	arity := sig.Arity()
	if arity == "1" {
		return "1 argument"
	}
	return arity + " arguments"
}

// assignment reports writes to context.* variables.
func (w *walker) assignment(n *types.Node) {
	root := n.X
	for {
		k := w.arena.Kind(root)
		if k != types.NodeMemberAccess && k != types.NodeArrayAccess {
			break
		}
		root = w.arena.Get(root).X
	}

	target := w.arena.Get(root)
	if target.Kind == types.NodeVariable && target.Scope == types.ScopeContext {
		w.report(types.ErrContextReadOnly, n.Span, "`context.*` variables are read-only").
			WithHint("try using `variable.*` or `temp.*` instead")
	}
}

// binary reports string operands outside equality comparisons. Coalescing
// to a string default is allowed.
func (w *walker) binary(n *types.Node) {
	left := w.arena.Kind(n.X) == types.NodeString
	right := w.arena.Kind(n.Y) == types.NodeString
	if !left && !right {
		return
	}
	switch n.Op {
	case types.OpCoalesce:
		return
	case types.OpEq, types.OpNotEq:
		if left && right {
			return
		}
	}
	w.report(types.ErrInvalidTypeOperation, n.Span, "strings only support `==` and `!=` operators")
}
