// Package types defines the syntax tree model shared by the gomolang packages.
//
// This package contains type definitions for:
//   - Span: byte ranges into the source text
//   - Arena, Node, NodeID: the arena-resident AST
//   - Program: a parsed Molang program (tree root plus its arena)
//   - Diagnostic: structured syntax and semantic errors with codes
package types

// Program is a parsed Molang program.
//
// A Program is immutable once returned by the parser. It is safe for
// concurrent use by multiple goroutines as long as nobody resets its arena.
type Program struct {
	arena *Arena
	root  NodeID
}

// NewProgram wraps the root node of a parse.
func NewProgram(arena *Arena, root NodeID) *Program {
	return &Program{arena: arena, root: root}
}

// Arena returns the arena owning the program's nodes.
func (p *Program) Arena() *Arena {
	return p.arena
}

// Root returns the NodeProgram handle.
func (p *Program) Root() NodeID {
	return p.root
}

// Source returns the source text the program was parsed from.
func (p *Program) Source() string {
	return p.arena.Source()
}

// Statements returns the top-level statements in source order.
func (p *Program) Statements() []NodeID {
	return p.arena.List(p.root)
}

// Span returns the span of the whole program.
func (p *Program) Span() Span {
	return p.arena.Span(p.root)
}

// IsComplex reports whether the program has more than one statement or any
// statement other than a plain expression.
func (p *Program) IsComplex() bool {
	stmts := p.Statements()
	if len(stmts) != 1 {
		return len(stmts) > 1
	}
	return p.arena.Kind(stmts[0]) != NodeExpressionStatement
}

// String returns the source text of the program.
func (p *Program) String() string {
	return p.arena.Source()
}
