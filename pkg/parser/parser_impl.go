package parser

import (
	"fmt"
	"log/slog"

	"github.com/sandrolain/gomolang/pkg/types"
)

// Parser implements a recursive descent parser for Molang.
// It uses Pratt's "Top Down Operator Precedence" algorithm for the binary,
// conditional and postfix operators.
//
// A Parser is single use: create one per source with NewParser.
type Parser struct {
	lexer    *Lexer
	arena    *types.Arena
	source   string
	current  Token
	prevEnd  uint32 // end of the last consumed token
	consumed int    // number of tokens consumed so far
	errors   types.Diagnostics
	opts     ParseOptions
	logger   *slog.Logger
	depth    int

	// scratch collects child lists while they are being parsed; the innermost
	// list is always on top. topLen counts the completed top-level statements
	// at its bottom.
	scratch []types.NodeID
	topLen  int
}

// NewParser creates a parser that builds its tree into arena.
func NewParser(arena *types.Arena, source string, opts ...ParseOption) *Parser {
	options := ParseOptions{
		MaxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.MaxDepth <= 0 {
		options.MaxDepth = DefaultMaxDepth
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	if arena == nil {
		arena = types.NewArena(source)
	} else {
		arena.Reset(source)
	}

	p := &Parser{
		lexer:  NewLexer(source),
		arena:  arena,
		source: source,
		opts:   options,
		logger: options.Logger,
	}

	// Read the first token
	p.advance()
	p.consumed = 0

	return p
}

// Parse parses the whole source.
func (p *Parser) Parse() (res *Result) {
	res = &Result{}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(bailout); !ok {
			panic(r)
		}
		p.scratch = p.scratch[:p.topLen]
		res.Program = p.program(p.arena.AllocList(p.scratch))
		res.Errors = p.errors
		res.Panicked = true
	}()

	list := p.parseStatements(TokenEOF, types.NoNode, 0, 0)
	res.Program = p.program(list)
	res.Errors = p.errors
	return res
}

func (p *Parser) program(list types.Span) *types.Program {
	root := p.arena.Alloc(types.Node{
		Kind: types.NodeProgram,
		Span: types.NewSpan(0, len(p.source)),
		Data: list,
	})
	return types.NewProgram(p.arena, root)
}

// Binding powers. Higher values bind more tightly.
const (
	bpLowest         = 0
	bpCoalesce       = 10 // ??
	bpConditional    = 20 // ? : and ->
	bpOr             = 30 // ||
	bpAnd            = 40 // &&
	bpEquality       = 50 // == !=
	bpRelational     = 60 // < <= > >=
	bpAdditive       = 70 // + -
	bpMultiplicative = 80 // * /
	bpUnary          = 90 // - !
	bpPostfix        = 100
)

// precedence maps infix and postfix tokens to their binding power.
var precedence = [...]int{
	TokenCoalesce:     bpCoalesce,
	TokenCondition:    bpConditional,
	TokenArrow:        bpConditional,
	TokenOr:           bpOr,
	TokenAnd:          bpAnd,
	TokenEqual:        bpEquality,
	TokenNotEqual:     bpEquality,
	TokenLess:         bpRelational,
	TokenLessEqual:    bpRelational,
	TokenGreater:      bpRelational,
	TokenGreaterEqual: bpRelational,
	TokenPlus:         bpAdditive,
	TokenMinus:        bpAdditive,
	TokenMult:         bpMultiplicative,
	TokenDiv:          bpMultiplicative,
	TokenDot:          bpPostfix,
	TokenBracketOpen:  bpPostfix,
	TokenParenOpen:    bpPostfix,
}

var binaryOps = [...]types.Operator{
	TokenCoalesce:     types.OpCoalesce,
	TokenOr:           types.OpOr,
	TokenAnd:          types.OpAnd,
	TokenEqual:        types.OpEq,
	TokenNotEqual:     types.OpNotEq,
	TokenLess:         types.OpLess,
	TokenLessEqual:    types.OpLessEq,
	TokenGreater:      types.OpGreater,
	TokenGreaterEqual: types.OpGreaterEq,
	TokenPlus:         types.OpAdd,
	TokenMinus:        types.OpSub,
	TokenMult:         types.OpMul,
	TokenDiv:          types.OpDiv,
}

// getPrecedence returns the binding power of a token type.
func getPrecedence(tt TokenType) int {
	if int(tt) < len(precedence) {
		return precedence[tt]
	}
	return 0
}

// assignOp returns the assignment operator spelled by tt.
func assignOp(tt TokenType) (types.Operator, bool) {
	switch tt {
	case TokenAssign:
		return types.OpAssign, true
	case TokenPlusAssign:
		return types.OpAddAssign, true
	case TokenMinusAssign:
		return types.OpSubAssign, true
	case TokenMultAssign:
		return types.OpMulAssign, true
	case TokenDivAssign:
		return types.OpDivAssign, true
	default:
		return types.OpNone, false
	}
}

func scopeOf(tt TokenType) types.Scope {
	switch tt {
	case TokenQuery:
		return types.ScopeQuery
	case TokenVariable:
		return types.ScopeVariable
	case TokenTemp:
		return types.ScopeTemp
	case TokenContext:
		return types.ScopeContext
	default:
		return types.ScopeNone
	}
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.prevEnd = p.current.Span.End
	p.consumed++
	p.current = p.lexer.Next(!endsOperand(p.current.Type))
}

func (p *Parser) at(tt TokenType) bool {
	return p.current.Type == tt
}

// match consumes the current token if it has type tt.
func (p *Parser) match(tt TokenType) bool {
	if p.current.Type != tt {
		return false
	}
	p.advance()
	return true
}

// expect consumes a token of type tt, reporting a diagnostic when the current
// token differs. The offending token is left in place.
func (p *Parser) expect(tt TokenType) bool {
	if p.match(tt) {
		return true
	}
	p.unexpected(types.ErrExpectedToken, tt.String())
	return false
}

// node allocates n with a span running from start to the end of the last
// consumed token, widened to cover its fixed children.
func (p *Parser) node(n types.Node, start uint32) types.NodeID {
	n.Span = types.Span{Start: start, End: max(p.prevEnd, start)}
	for _, c := range [...]types.NodeID{n.X, n.Y, n.Z} {
		if c != types.NoNode {
			n.Span = n.Span.Cover(p.arena.Span(c))
		}
	}
	return p.arena.Alloc(n)
}

// errorNode allocates an empty placeholder for a production that could not
// be parsed.
func (p *Parser) errorNode(at uint32) types.NodeID {
	return p.arena.Alloc(types.Node{
		Kind: types.NodeError,
		Span: types.Span{Start: at, End: at},
	})
}

// allocList moves the scratch entries above base into the arena.
func (p *Parser) allocList(base int) types.Span {
	list := p.arena.AllocList(p.scratch[base:])
	p.scratch = p.scratch[:base]
	return list
}

// parseStatements parses statements until end (or the end of input) and
// returns them as an arena list. When first is set it is an already parsed
// statement that opens the list; mark and errs describe where it started.
func (p *Parser) parseStatements(end TokenType, first types.NodeID, mark, errs int) types.Span {
	base := len(p.scratch)
	top := end == TokenEOF

	push := func(stmt types.NodeID) {
		p.scratch = append(p.scratch, stmt)
		if top {
			p.topLen = len(p.scratch)
		}
	}

	if first != types.NoNode {
		push(first)
		p.endStatement(end, mark, errs)
	}

	for !p.at(end) && !p.at(TokenEOF) {
		if p.match(TokenSemicolon) {
			continue
		}
		mark, errs := p.consumed, len(p.errors)
		push(p.parseStatement())
		p.endStatement(end, mark, errs)
	}

	if top {
		return p.arena.AllocList(p.scratch[base:])
	}
	return p.allocList(base)
}

// parseStatement parses one statement without its terminating semicolon.
func (p *Parser) parseStatement() types.NodeID {
	t := p.current

	switch t.Type {
	case TokenReturn:
		p.advance()
		var value types.NodeID
		switch p.current.Type {
		case TokenSemicolon, TokenEOF, TokenBraceClose, TokenParenClose:
		default:
			value = p.parseExpression(bpLowest)
		}
		return p.node(types.Node{Kind: types.NodeReturn, X: value}, t.Span.Start)
	case TokenBreak:
		p.advance()
		return p.node(types.Node{Kind: types.NodeBreak}, t.Span.Start)
	case TokenContinue:
		p.advance()
		return p.node(types.Node{Kind: types.NodeContinue}, t.Span.Start)
	case TokenLoop:
		return p.parseLoop()
	case TokenForEach:
		return p.parseForEach()
	}

	return p.finishStatement(p.parseExpression(bpLowest))
}

// finishStatement turns a parsed expression into an assignment when an
// assignment operator follows, or into an expression statement.
func (p *Parser) finishStatement(expr types.NodeID) types.NodeID {
	if op, ok := assignOp(p.current.Type); ok {
		return p.parseAssignment(expr, op)
	}
	return p.node(types.Node{Kind: types.NodeExpressionStatement, X: expr}, p.arena.Span(expr).Start)
}

// parseAssignment parses the right-hand side of an assignment to target.
// Assignments chain to the right: v.a = v.b = 1.
func (p *Parser) parseAssignment(target types.NodeID, op types.Operator) types.NodeID {
	p.enter()
	defer p.leave()

	p.advance()

	switch p.arena.Kind(assignRoot(p.arena, target)) {
	case types.NodeVariable, types.NodeError:
	default:
		p.report(types.ErrInvalidAssignTarget, p.arena.Span(target), "invalid assignment target").
			WithHint("assign to a scoped variable such as `v.name`")
	}

	value := p.parseExpression(bpLowest)
	if next, ok := assignOp(p.current.Type); ok {
		value = p.parseAssignment(value, next)
	}

	return p.node(types.Node{
		Kind: types.NodeAssignment,
		Op:   op,
		X:    target,
		Y:    value,
	}, p.arena.Span(target).Start)
}

// assignRoot follows member and index accesses down to the node they
// start from: v.a.b[0] resolves to v.a.
func assignRoot(a *types.Arena, id types.NodeID) types.NodeID {
	for {
		switch a.Kind(id) {
		case types.NodeMemberAccess, types.NodeArrayAccess:
			id = a.Get(id).X
		default:
			return id
		}
	}
}

// parseExpression parses an expression with operator precedence.
// rbp is the right binding power (minimum precedence).
func (p *Parser) parseExpression(rbp int) types.NodeID {
	p.enter()

	// Parse prefix expression (nud - null denotation)
	left := p.parsePrefix()

	// Parse infix expressions while precedence allows (led - left denotation)
	for rbp < getPrecedence(p.current.Type) {
		left = p.parseInfix(left)
	}

	p.leave()
	return left
}

// parsePrefix parses an expression that doesn't require a left-hand side.
func (p *Parser) parsePrefix() types.NodeID {
	t := p.current

	switch t.Type {
	case TokenNumber:
		p.advance()
		return p.node(types.Node{Kind: types.NodeNumber, Num: t.Num, Data: t.Span}, t.Span.Start)
	case TokenString:
		p.advance()
		return p.node(types.Node{
			Kind: types.NodeString,
			Data: types.Span{Start: t.Span.Start + 1, End: t.Span.End - 1},
		}, t.Span.Start)
	case TokenTrue, TokenFalse:
		p.advance()
		var num float64
		if t.Type == TokenTrue {
			num = 1
		}
		return p.node(types.Node{Kind: types.NodeBoolean, Num: num}, t.Span.Start)
	case TokenThis:
		p.advance()
		return p.node(types.Node{Kind: types.NodeThis}, t.Span.Start)
	case TokenName:
		p.advance()
		return p.node(types.Node{Kind: types.NodeIdentifier, Data: t.Span}, t.Span.Start)
	case TokenQuery, TokenVariable, TokenTemp, TokenContext:
		return p.parseVariable()
	case TokenMinus, TokenNot:
		return p.parseUnary()
	case TokenParenOpen:
		return p.parseParenthesized()
	case TokenBraceOpen:
		return p.parseBlock()
	case TokenBreak:
		// q.done ? break
		p.advance()
		return p.node(types.Node{Kind: types.NodeBreak}, t.Span.Start)
	case TokenContinue:
		p.advance()
		return p.node(types.Node{Kind: types.NodeContinue}, t.Span.Start)
	case TokenLoop, TokenForEach:
		p.report(types.ErrLoopInExpression, t.Span, fmt.Sprintf("%s cannot be used as a value", t.Type)).
			WithHint("move the loop into its own statement")
		if t.Type == TokenLoop {
			return p.parseLoop()
		}
		return p.parseForEach()
	case TokenInvalidNumber:
		p.report(types.ErrInvalidNumber, t.Span, "invalid number literal")
		p.advance()
		return p.errorNode(t.Span.Start)
	default:
		p.unexpected(types.ErrExpectedExpression, "expression")
		return p.errorNode(p.prevEnd)
	}
}

// parseInfix parses an expression that continues left (led - left denotation).
func (p *Parser) parseInfix(left types.NodeID) types.NodeID {
	t := p.current
	start := p.arena.Span(left).Start

	switch t.Type {
	case TokenDot:
		p.advance()
		if !p.current.Type.IsWord() {
			p.unexpected(types.ErrExpectedToken, "member name")
			return p.errorNode(p.prevEnd)
		}
		name := p.current.Span
		p.advance()
		return p.node(types.Node{Kind: types.NodeMemberAccess, X: left, Data: name}, start)
	case TokenBracketOpen:
		p.advance()
		index := p.parseExpression(bpLowest)
		p.expect(TokenBracketClose)
		return p.node(types.Node{Kind: types.NodeArrayAccess, X: left, Y: index}, start)
	case TokenParenOpen:
		return p.parseCall(left)
	case TokenCondition:
		p.advance()
		consequent := p.parseExpression(bpLowest)
		if !p.match(TokenColon) {
			return p.node(types.Node{Kind: types.NodeConditional, X: left, Y: consequent}, start)
		}
		alternate := p.parseExpression(bpLowest)
		return p.node(types.Node{Kind: types.NodeTernary, X: left, Y: consequent, Z: alternate}, start)
	case TokenArrow:
		p.advance()
		body := p.parseExpression(bpLowest)
		return p.node(types.Node{Kind: types.NodeArrow, X: left, Y: body}, start)
	default:
		p.advance()
		right := p.parseExpression(getPrecedence(t.Type))
		return p.node(types.Node{Kind: types.NodeBinary, Op: binaryOps[t.Type], X: left, Y: right}, start)
	}
}

// parseVariable parses a scoped variable such as q.anim_time or v.x.
func (p *Parser) parseVariable() types.NodeID {
	t := p.current
	p.advance()

	if !p.expect(TokenDot) {
		return p.errorNode(p.prevEnd)
	}
	// Keywords are valid names here: v.loop, t.q
	if !p.current.Type.IsWord() {
		p.unexpected(types.ErrExpectedToken, "variable name")
		return p.errorNode(p.prevEnd)
	}
	name := p.current.Span
	p.advance()

	return p.node(types.Node{Kind: types.NodeVariable, Scope: scopeOf(t.Type), Data: name}, t.Span.Start)
}

// parseUnary parses a negation or logical not.
func (p *Parser) parseUnary() types.NodeID {
	t := p.current
	p.advance()

	operand := p.parseExpression(bpUnary)

	op := types.OpNegate
	if t.Type == TokenNot {
		op = types.OpNot
	}
	return p.node(types.Node{Kind: types.NodeUnary, Op: op, X: operand}, t.Span.Start)
}

// parseCall parses the argument list of a call. Trailing commas are accepted.
func (p *Parser) parseCall(callee types.NodeID) types.NodeID {
	p.advance()

	base := len(p.scratch)
	for !p.at(TokenParenClose) && !p.at(TokenEOF) {
		p.scratch = append(p.scratch, p.parseExpression(bpLowest))
		if !p.match(TokenComma) {
			break
		}
	}
	p.expect(TokenParenClose)

	return p.node(types.Node{
		Kind: types.NodeCall,
		X:    callee,
		Data: p.allocList(base),
	}, p.arena.Span(callee).Start)
}

// parseParenthesized parses either a grouping "(expr)", which produces no
// node of its own, or a complex expression "(s1; s2;)".
func (p *Parser) parseParenthesized() types.NodeID {
	open := p.current
	p.advance()

	if p.at(TokenParenClose) {
		p.report(types.ErrEmptyParentheses, open.Span.Cover(p.current.Span), "empty parentheses")
		p.advance()
		return p.errorNode(open.Span.Start)
	}

	mark, errs := p.consumed, len(p.errors)

	var first types.NodeID
	switch p.current.Type {
	case TokenReturn, TokenBreak, TokenContinue, TokenLoop, TokenForEach:
		first = p.parseStatement()
	default:
		expr := p.parseExpression(bpLowest)
		if p.match(TokenParenClose) {
			return expr
		}
		first = p.finishStatement(expr)
	}

	list := p.parseStatements(TokenParenClose, first, mark, errs)
	p.expect(TokenParenClose)

	return p.node(types.Node{Kind: types.NodeGroup, Data: list}, open.Span.Start)
}

// parseBlock parses "{ s1; s2; }".
func (p *Parser) parseBlock() types.NodeID {
	open := p.current
	p.advance()

	p.enter()
	list := p.parseStatements(TokenBraceClose, types.NoNode, 0, 0)
	p.expect(TokenBraceClose)
	p.leave()

	return p.node(types.Node{Kind: types.NodeBlock, Data: list}, open.Span.Start)
}

// parseBody parses the block argument of loop and for_each.
func (p *Parser) parseBody() types.NodeID {
	if p.at(TokenBraceOpen) {
		return p.parseBlock()
	}
	p.unexpected(types.ErrExpectedToken, TokenBraceOpen.String())
	return p.errorNode(p.prevEnd)
}

// parseLoop parses "loop(count, { ... })".
func (p *Parser) parseLoop() types.NodeID {
	t := p.current
	p.advance()

	n := types.Node{Kind: types.NodeLoop}
	if !p.expect(TokenParenOpen) {
		return p.errorNode(p.prevEnd)
	}

	n.X = p.parseExpression(bpLowest)
	if p.expect(TokenComma) {
		n.Y = p.parseBody()
		p.expect(TokenParenClose)
	} else {
		n.Y = p.errorNode(p.prevEnd)
	}

	return p.node(n, t.Span.Start)
}

// parseForEach parses "for_each(v.item, collection, { ... })".
func (p *Parser) parseForEach() types.NodeID {
	t := p.current
	p.advance()

	n := types.Node{Kind: types.NodeForEach}
	if !p.expect(TokenParenOpen) {
		return p.errorNode(p.prevEnd)
	}

	n.X = p.parseExpression(bpLowest)
	p.checkForEachVariable(n.X)

	if !p.expect(TokenComma) {
		n.Y = p.errorNode(p.prevEnd)
		n.Z = p.errorNode(p.prevEnd)
		return p.node(n, t.Span.Start)
	}

	n.Y = p.parseExpression(bpLowest)
	if p.expect(TokenComma) {
		n.Z = p.parseBody()
		p.expect(TokenParenClose)
	} else {
		n.Z = p.errorNode(p.prevEnd)
	}

	return p.node(n, t.Span.Start)
}

// checkForEachVariable reports a loop variable that is not rooted in the
// variable or temp scope.
func (p *Parser) checkForEachVariable(id types.NodeID) {
	root := id
	for {
		switch p.arena.Kind(root) {
		case types.NodeMemberAccess, types.NodeArrayAccess:
			root = p.arena.Get(root).X
			continue
		case types.NodeError:
			return
		case types.NodeVariable:
			switch p.arena.Get(root).Scope {
			case types.ScopeVariable, types.ScopeTemp:
				return
			}
		}
		break
	}
	p.report(types.ErrForEachVariable, p.arena.Span(id), "for_each variable must be a `variable` or `temp` variable").
		WithHint("use a name such as `t.item`")
}
