package parser

import (
	"fmt"

	"github.com/sandrolain/gomolang/pkg/types"
)

// bailout is the panic value used to abort a parse on an unrecoverable error.
// It never escapes Parser.Parse.
type bailout struct{}

// report records a diagnostic.
func (p *Parser) report(code types.ErrorCode, span types.Span, message string) *types.Diagnostic {
	d := types.NewDiagnostic(code, span, message)
	p.errors = append(p.errors, d)
	return d
}

// errorSpan locates a problem at the current token. At the end of input the
// span sits right after the last consumed token.
func (p *Parser) errorSpan() types.Span {
	if p.current.Type == TokenEOF {
		return types.Span{Start: p.prevEnd, End: p.prevEnd}
	}
	return p.current.Span
}

// unexpected reports that the current token is not what the grammar needs.
func (p *Parser) unexpected(code types.ErrorCode, expected string) *types.Diagnostic {
	p.checkFatal()

	if p.current.Type == TokenUnknown {
		return p.report(types.ErrUnknownCharacter, p.current.Span, "unknown character")
	}
	return p.report(code, p.errorSpan(), fmt.Sprintf("expected %s, found %s", expected, p.current.Type))
}

// checkFatal aborts the parse when the current token is an unterminated
// string or comment. Neither leaves anything to resynchronize on.
func (p *Parser) checkFatal() {
	switch p.current.Type {
	case TokenUnterminatedString:
		p.report(types.ErrStringNotClosed, p.current.Span, "unterminated string literal").
			WithHint("close the string with `'`")
		p.bail("unterminated string")
	case TokenUnterminatedComment:
		p.report(types.ErrCommentNotClosed, p.current.Span, "unterminated block comment").
			WithHint("close the comment with `*/`")
		p.bail("unterminated comment")
	}
}

// enter increments the nesting depth, aborting the parse past the limit.
func (p *Parser) enter() {
	p.depth++
	if p.depth > p.opts.MaxDepth {
		p.report(types.ErrDepthExceeded, p.errorSpan(),
			fmt.Sprintf("expression nested deeper than %d levels", p.opts.MaxDepth))
		p.bail("depth exceeded")
	}
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) bail(reason string) {
	if p.opts.Debug {
		p.logger.Debug("parse aborted",
			"reason", reason,
			"offset", p.current.Span.Start,
			"statements", p.topLen)
	}
	panic(bailout{})
}

// endStatement consumes the separator after a statement. A statement that
// is not followed by a separator is an error; after any error in the
// statement the parser resynchronizes before the next one.
func (p *Parser) endStatement(end TokenType, mark, errs int) {
	if p.match(TokenSemicolon) {
		return
	}

	if p.at(TokenEOF) || p.at(end) {
		// Top-level statements may omit the final semicolon
		if p.at(end) && end != TokenEOF && len(p.errors) == errs {
			p.report(types.ErrMissingSemicolon, p.errorSpan(), fmt.Sprintf("expected `;`, found %s", p.current.Type)).
				WithHint("statements inside braces and parentheses end with `;`")
		}
		return
	}

	if len(p.errors) == errs {
		p.unexpected(types.ErrMissingSemicolon, "`;`")
	}
	p.synchronize(end, mark)
	p.match(TokenSemicolon)
}

// synchronize skips tokens until a statement boundary: a semicolon, the
// closing token of the enclosing list, the end of input, or a token that can
// start a statement. Tokens are skipped until the parser has moved past mark,
// so resynchronization always makes progress.
func (p *Parser) synchronize(end TokenType, mark int) {
	start := p.current.Span.Start
	skipped := 0

	for !p.at(TokenEOF) && !p.at(TokenSemicolon) && !p.at(end) {
		if p.consumed > mark && canStartStatement(p.current.Type) {
			break
		}
		p.checkFatal()
		p.advance()
		skipped++
	}

	if p.opts.Debug {
		p.logger.Debug("resynchronized",
			"skipped", skipped,
			"span", types.Span{Start: start, End: max(start, p.prevEnd)}.String())
	}
}

// canStartStatement reports whether a token can begin a statement.
func canStartStatement(tt TokenType) bool {
	switch tt {
	case TokenNumber, TokenInvalidNumber, TokenString, TokenName,
		TokenQuery, TokenVariable, TokenTemp, TokenContext,
		TokenTrue, TokenFalse, TokenThis,
		TokenReturn, TokenBreak, TokenContinue, TokenLoop, TokenForEach,
		TokenParenOpen, TokenBraceOpen, TokenMinus, TokenNot:
		return true
	default:
		return false
	}
}
