package types

import "math"

// NodeKind identifies the type of an AST node.
type NodeKind uint8

// AST node kinds. The set is closed: every pass over the tree switches on it.
const (
	// NodeInvalid is the zero kind; it is never allocated.
	NodeInvalid NodeKind = iota
	// NodeError is a placeholder for a production that could not be completed.
	NodeError

	// Literals
	NodeNumber  // 1.5
	NodeString  // 'text'
	NodeBoolean // true/false

	// References
	NodeIdentifier // math, geometry, array
	NodeVariable   // q.name, v.name, t.name, c.name
	NodeThis       // this

	// Postfix
	NodeArrayAccess  // target[index]
	NodeMemberAccess // target.member
	NodeCall         // callee(args...)

	// Operators
	NodeUnary       // -x, !x
	NodeBinary      // x + y, x ?? y
	NodeTernary     // c ? a : b
	NodeConditional // c ? a
	NodeArrow       // c -> body

	// Statements
	NodeAssignment          // target = value
	NodeReturn              // return value
	NodeExpressionStatement // expression used as a statement
	NodeBlock               // { s; s; }
	NodeGroup               // ( s; s; )
	NodeLoop                // loop(count, { ... })
	NodeForEach             // for_each(v.x, collection, { ... })
	NodeBreak               // break
	NodeContinue            // continue
	NodeProgram             // tree root
)

var nodeKindNames = [...]string{
	NodeInvalid:             "invalid",
	NodeError:               "error",
	NodeNumber:              "number",
	NodeString:              "string",
	NodeBoolean:             "boolean",
	NodeIdentifier:          "identifier",
	NodeVariable:            "variable",
	NodeThis:                "this",
	NodeArrayAccess:         "index",
	NodeMemberAccess:        "member",
	NodeCall:                "call",
	NodeUnary:               "unary",
	NodeBinary:              "binary",
	NodeTernary:             "ternary",
	NodeConditional:         "conditional",
	NodeArrow:               "arrow",
	NodeAssignment:          "assign",
	NodeReturn:              "return",
	NodeExpressionStatement: "expr",
	NodeBlock:               "block",
	NodeGroup:               "group",
	NodeLoop:                "loop",
	NodeForEach:             "for_each",
	NodeBreak:               "break",
	NodeContinue:            "continue",
	NodeProgram:             "program",
}

// String returns a string representation of the node kind.
func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "(unknown)"
}

// IsStatement reports whether nodes of this kind only appear in statement position.
func (k NodeKind) IsStatement() bool {
	switch k {
	case NodeAssignment, NodeReturn, NodeExpressionStatement, NodeLoop,
		NodeForEach, NodeBreak, NodeContinue, NodeProgram:
		return true
	default:
		return false
	}
}

// Operator is the operator of a unary, binary or assignment node.
type Operator uint8

const (
	OpNone Operator = iota

	// Binary
	OpAdd       // +
	OpSub       // -
	OpMul       // *
	OpDiv       // /
	OpEq        // ==
	OpNotEq     // !=
	OpLess      // <
	OpLessEq    // <=
	OpGreater   // >
	OpGreaterEq // >=
	OpAnd       // &&
	OpOr        // ||
	OpCoalesce  // ??

	// Unary
	OpNegate // -
	OpNot    // !

	// Assignment
	OpAssign    // =
	OpAddAssign // +=
	OpSubAssign // -=
	OpMulAssign // *=
	OpDivAssign // /=
)

var operatorSymbols = [...]string{
	OpNone:      "",
	OpAdd:       "+",
	OpSub:       "-",
	OpMul:       "*",
	OpDiv:       "/",
	OpEq:        "==",
	OpNotEq:     "!=",
	OpLess:      "<",
	OpLessEq:    "<=",
	OpGreater:   ">",
	OpGreaterEq: ">=",
	OpAnd:       "&&",
	OpOr:        "||",
	OpCoalesce:  "??",
	OpNegate:    "-",
	OpNot:       "!",
	OpAssign:    "=",
	OpAddAssign: "+=",
	OpSubAssign: "-=",
	OpMulAssign: "*=",
	OpDivAssign: "/=",
}

// String returns the source symbol of the operator.
func (o Operator) String() string {
	if int(o) < len(operatorSymbols) {
		return operatorSymbols[o]
	}
	return "(unknown)"
}

// Scope is the namespace prefix of a scoped variable.
type Scope uint8

const (
	ScopeNone Scope = iota
	ScopeQuery
	ScopeVariable
	ScopeTemp
	ScopeContext
)

// String returns the long form of the scope prefix.
func (s Scope) String() string {
	switch s {
	case ScopeQuery:
		return "query"
	case ScopeVariable:
		return "variable"
	case ScopeTemp:
		return "temp"
	case ScopeContext:
		return "context"
	default:
		return ""
	}
}

// Short returns the one-letter form of the scope prefix.
func (s Scope) Short() string {
	switch s {
	case ScopeQuery:
		return "q"
	case ScopeVariable:
		return "v"
	case ScopeTemp:
		return "t"
	case ScopeContext:
		return "c"
	default:
		return ""
	}
}

// NodeID is a handle to a node inside an Arena. The zero value is NoNode.
type NodeID uint32

// NoNode is the nil handle.
const NoNode NodeID = 0

// Node is a single AST node. Fields are interpreted per Kind:
//
//	NodeNumber        Num, Data = raw text
//	NodeString        Data = contents without quotes
//	NodeBoolean       Num = 1 or 0
//	NodeIdentifier    Data = name
//	NodeVariable      Scope, Data = name
//	NodeArrayAccess   X = target, Y = index
//	NodeMemberAccess  X = target, Data = member name
//	NodeCall          X = callee, Data = argument list
//	NodeUnary         Op, X = operand
//	NodeBinary        Op, X = left, Y = right
//	NodeTernary       X = condition, Y = consequent, Z = alternate
//	NodeConditional   X = condition, Y = consequent
//	NodeArrow         X = condition, Y = body
//	NodeAssignment    Op, X = target, Y = value
//	NodeReturn        X = value (may be NoNode)
//	NodeExpressionStatement X = expression
//	NodeBlock, NodeGroup, NodeProgram  Data = statement list
//	NodeLoop          X = count, Y = body
//	NodeForEach       X = variable, Y = collection, Z = body
//
// Data is a byte span into the source for text-bearing kinds and a range
// into the arena's child-list pool for list-bearing kinds.
type Node struct {
	Kind  NodeKind
	Op    Operator
	Scope Scope
	Span  Span
	X     NodeID
	Y     NodeID
	Z     NodeID
	Data  Span
	Num   float64
}

// HasList reports whether Data refers to a child list rather than source text.
func (n *Node) HasList() bool {
	switch n.Kind {
	case NodeCall, NodeBlock, NodeGroup, NodeProgram:
		return true
	default:
		return false
	}
}

// Bool returns the value of a NodeBoolean.
func (n *Node) Bool() bool {
	return n.Num != 0
}

// arenaMinNodes is the minimum number of nodes pre-allocated by NewArena.
const arenaMinNodes = 64

// Arena owns every node and child list created during one parse.
//
// Nodes live in one contiguous slice addressed by NodeID; child lists live in a
// second flat slice. Text is never copied: identifier names and string contents
// are spans into the source held by the arena. Dropping the arena releases the
// whole tree at once.
//
// # Thread safety
//
// Arena is NOT safe for concurrent mutation. Once a parse returns the arena is
// only read, and concurrent readers are safe.
type Arena struct {
	source string
	nodes  []Node
	lists  []NodeID
}

// NewArena allocates an arena for the given source, pre-sized from its length.
func NewArena(source string) *Arena {
	a := &Arena{}
	a.Reset(source)
	return a
}

// Reset clears the arena for a new source, keeping the allocated storage.
// Every handle obtained before Reset becomes meaningless.
func (a *Arena) Reset(source string) {
	hint := len(source)/2 + 1
	if hint < arenaMinNodes {
		hint = arenaMinNodes
	}
	if cap(a.nodes) < hint {
		a.nodes = make([]Node, 1, hint)
	} else {
		a.nodes = a.nodes[:1]
	}
	a.nodes[0] = Node{}
	if a.lists == nil {
		a.lists = make([]NodeID, 0, hint/2)
	} else {
		a.lists = a.lists[:0]
	}
	a.source = source
}

// Source returns the text the arena's spans refer to.
func (a *Arena) Source() string {
	return a.source
}

// Len returns the number of allocated nodes.
func (a *Arena) Len() int {
	return len(a.nodes) - 1
}

// Alloc stores n and returns its handle.
func (a *Arena) Alloc(n Node) NodeID {
	if uint64(len(a.nodes)) >= math.MaxUint32 {
		panic("types: arena node limit exceeded")
	}
	a.nodes = append(a.nodes, n)
	return NodeID(len(a.nodes) - 1)
}

// AllocList copies ids into the child-list pool and returns their range.
func (a *Arena) AllocList(ids []NodeID) Span {
	start := len(a.lists)
	a.lists = append(a.lists, ids...)
	return NewSpan(start, len(a.lists))
}

// Get returns the node for id. The returned node must not be modified.
// Get(NoNode) returns a node of kind NodeInvalid.
func (a *Arena) Get(id NodeID) *Node {
	if int(id) >= len(a.nodes) {
		return &a.nodes[0]
	}
	return &a.nodes[id]
}

// Kind returns the kind of node id.
func (a *Arena) Kind(id NodeID) NodeKind {
	return a.Get(id).Kind
}

// Span returns the span of node id.
func (a *Arena) Span(id NodeID) Span {
	return a.Get(id).Span
}

// Text returns the source text referenced by a text-bearing node.
func (a *Arena) Text(id NodeID) string {
	n := a.Get(id)
	if n.HasList() {
		return ""
	}
	return n.Data.Text(a.source)
}

// List returns the child list of a list-bearing node (call arguments, block,
// group or program statements).
func (a *Arena) List(id NodeID) []NodeID {
	n := a.Get(id)
	if !n.HasList() {
		return nil
	}
	return a.lists[n.Data.Start:n.Data.End:n.Data.End]
}

// Children appends the direct children of id to buf in source order.
func (a *Arena) Children(id NodeID, buf []NodeID) []NodeID {
	n := a.Get(id)
	for _, c := range [...]NodeID{n.X, n.Y, n.Z} {
		if c != NoNode {
			buf = append(buf, c)
		}
	}
	if n.HasList() {
		buf = append(buf, a.List(id)...)
	}
	return buf
}
