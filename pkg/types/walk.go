package types

import (
	"strconv"
	"strings"
)

// Inspect traverses the tree rooted at id in depth-first pre-order, calling f
// for each node. If f returns false, the children of that node are skipped.
func Inspect(a *Arena, id NodeID, f func(id NodeID, n *Node) bool) {
	if id == NoNode {
		return
	}
	if !f(id, a.Get(id)) {
		return
	}
	var buf [4]NodeID
	for _, c := range a.Children(id, buf[:0]) {
		Inspect(a, c, f)
	}
}

// Equal reports whether two subtrees have the same shape, kinds, operators and
// values. Spans are ignored, so trees from different sources can be compared.
func Equal(a *Arena, x NodeID, b *Arena, y NodeID) bool {
	if (x == NoNode) != (y == NoNode) {
		return false
	}
	if x == NoNode {
		return true
	}
	nx, ny := a.Get(x), b.Get(y)
	if nx.Kind != ny.Kind || nx.Op != ny.Op || nx.Scope != ny.Scope {
		return false
	}
	switch nx.Kind {
	case NodeNumber, NodeBoolean:
		if nx.Num != ny.Num {
			return false
		}
	case NodeString, NodeIdentifier, NodeVariable, NodeMemberAccess:
		if a.Text(x) != b.Text(y) {
			return false
		}
	}
	var bx, by [4]NodeID
	cx, cy := a.Children(x, bx[:0]), b.Children(y, by[:0])
	if len(cx) != len(cy) {
		return false
	}
	// X/Y/Z presence must match, not only the count.
	if (nx.X == NoNode) != (ny.X == NoNode) || (nx.Y == NoNode) != (ny.Y == NoNode) || (nx.Z == NoNode) != (ny.Z == NoNode) {
		return false
	}
	for i := range cx {
		if !Equal(a, cx[i], b, cy[i]) {
			return false
		}
	}
	return true
}

// Dump renders the subtree rooted at id as an S-expression, e.g.
//
//	(binary + (variable query a) (number 2))
func Dump(a *Arena, id NodeID) string {
	var sb strings.Builder
	dump(&sb, a, id)
	return sb.String()
}

func dump(sb *strings.Builder, a *Arena, id NodeID) {
	if id == NoNode {
		sb.WriteString("()")
		return
	}
	n := a.Get(id)
	sb.WriteByte('(')
	sb.WriteString(n.Kind.String())
	switch n.Kind {
	case NodeNumber:
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatFloat(n.Num, 'g', -1, 64))
	case NodeString:
		sb.WriteString(" '")
		sb.WriteString(a.Text(id))
		sb.WriteByte('\'')
	case NodeBoolean:
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatBool(n.Bool()))
	case NodeIdentifier:
		sb.WriteByte(' ')
		sb.WriteString(a.Text(id))
	case NodeVariable:
		sb.WriteByte(' ')
		sb.WriteString(n.Scope.String())
		sb.WriteByte(' ')
		sb.WriteString(a.Text(id))
	case NodeUnary, NodeBinary, NodeAssignment:
		sb.WriteByte(' ')
		sb.WriteString(n.Op.String())
	}
	var buf [4]NodeID
	for _, c := range a.Children(id, buf[:0]) {
		sb.WriteByte(' ')
		dump(sb, a, c)
	}
	if n.Kind == NodeMemberAccess {
		sb.WriteByte(' ')
		sb.WriteString(a.Text(id))
	}
	sb.WriteByte(')')
}
