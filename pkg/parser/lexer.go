package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/gomolang/pkg/types"
)

const eof = -1

// Lexer converts Molang source into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go" technique.
//
// The lexer never fails. Malformed input produces one of the invalid token
// types (see TokenType.IsInvalid) and scanning continues after it.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all subsequent calls.
//
// The signed parameter determines how a minus sign directly followed by a
// digit is interpreted:
//   - The sign of a number literal (when signed is true), as in "v.x = -1"
//   - The subtraction operator (when signed is false), as in "v.x-1"
//
// The parser must track context to determine which interpretation is correct;
// see endsOperand.
func (l *Lexer) Next(signed bool) Token {
	if t, ok := l.skipTrivia(); !ok {
		return t
	}

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	// Number literals, including a leading sign or dot
	if isDigit(ch) || (ch == '.' && isDigit(l.peek(0))) ||
		(signed && ch == '-' && (isDigit(l.peek(0)) || (l.peek(0) == '.' && isDigit(l.peek(1))))) {
		l.backup()
		return l.scanNumber()
	}

	// Check for two-character symbols first (e.g., ==, ->, ??)
	if rts := lookupSymbol2(ch); rts != nil {
		for _, rt := range rts {
			if l.acceptRune(rt.r) {
				return l.newToken(rt.tt)
			}
		}
	}

	// Check for single-character symbols
	if tt := lookupSymbol1(ch); tt > 0 {
		return l.newToken(tt)
	}

	// String literals are single quoted and have no escapes
	if ch == '\'' {
		return l.scanString()
	}

	// Names and keywords
	if isNameStart(ch) {
		l.backup()
		return l.scanName()
	}

	return l.newToken(TokenUnknown)
}

// Offset returns the byte offset of the next unread character.
func (l *Lexer) Offset() int {
	return l.current
}

// scanString reads a string literal from the current position.
// The opening quote has already been consumed.
func (l *Lexer) scanString() Token {
	end := strings.IndexByte(l.input[l.current:], '\'')
	if end < 0 {
		l.current = l.length
		t := l.newToken(TokenUnterminatedString)
		t.Value = t.Value[1:]
		return t
	}
	l.current += end + 1
	t := l.newToken(TokenString)
	t.Value = t.Value[1 : len(t.Value)-1]
	return t
}

// scanNumber reads a number literal from the current position.
// Format: -?[0-9]*(\.[0-9]+)?([eE][+-]?[0-9]+)?[fF]?
//
// A literal directly followed by name characters or by a second fraction
// (12abc, 1.2.3) is consumed whole and reported as TokenInvalidNumber.
func (l *Lexer) scanNumber() Token {
	l.acceptRune('-')
	l.acceptAll(isDigit)

	// Decimal part
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		l.acceptRune('.')
		l.acceptAll(isDigit)
	}

	valid := true

	// Exponent part
	if l.acceptRunes2('e', 'E') {
		l.acceptRunes2('+', '-')
		if !l.acceptAll(isDigit) {
			valid = false
		}
	}

	end := l.current

	// Float suffix, kept out of the value
	if valid && (l.peek(0) == 'f' || l.peek(0) == 'F') && !isNameChar(l.peek(1)) {
		l.nextRune()
	}

	// Trailing garbage makes the whole run invalid
	if isNameChar(l.peek(0)) || (l.peek(0) == '.' && isDigit(l.peek(1))) {
		valid = false
		l.acceptAll(func(r rune) bool {
			return isNameChar(r) || r == '.'
		})
	}

	if !valid {
		return l.newToken(TokenInvalidNumber)
	}

	num, err := strconv.ParseFloat(l.input[l.start:end], 64)
	if err != nil {
		return l.newToken(TokenInvalidNumber)
	}

	t := l.newToken(TokenNumber)
	t.Num = num
	return t
}

// scanName reads a name or keyword from the current position.
// Names contain ASCII letters, digits and underscores and do not start with a digit.
func (l *Lexer) scanName() Token {
	l.acceptAll(isNameChar)

	t := l.newToken(TokenName)
	if tt := lookupKeyword(t.Value); tt > 0 {
		t.Type = tt
	}
	return t
}

// skipTrivia skips whitespace and comments. It returns false together with a
// TokenUnterminatedComment when a block comment runs to the end of the input.
func (l *Lexer) skipTrivia() (Token, bool) {
	for {
		l.acceptAll(isWhitespace)
		l.ignore()

		if l.peek(0) != '/' {
			return Token{}, true
		}

		switch l.peek(1) {
		case '/':
			// Line comment runs to the end of the line
			if nl := strings.IndexByte(l.input[l.current:], '\n'); nl >= 0 {
				l.current += nl
			} else {
				l.current = l.length
			}
		case '*':
			end := strings.Index(l.input[l.current+2:], "*/")
			if end < 0 {
				l.current = l.length
				return l.newToken(TokenUnterminatedComment), false
			}
			l.current += end + 4
		default:
			return Token{}, true
		}
	}
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type: TokenEOF,
		Span: types.NewSpan(l.current, l.current),
	}
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:  tt,
		Value: l.input[l.start:l.current],
		Span:  types.NewSpan(l.start, l.current),
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

// peek returns the byte at offset n past the current position as a rune,
// or eof. Every character of interest to the scanner is ASCII.
func (l *Lexer) peek(n int) rune {
	if l.current+n >= l.length {
		return eof
	}
	return rune(l.input[l.current+n])
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) acceptRunes2(r1, r2 rune) bool {
	return l.accept(func(c rune) bool {
		return c == r1 || c == r2
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

// Scan tokenizes the whole input, deciding the meaning of '-' the same way
// the parser does. The returned slice always ends with a TokenEOF.
func Scan(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	prev := TokenEOF
	for {
		t := l.Next(!endsOperand(prev))
		tokens = append(tokens, t)
		if t.Type == TokenEOF {
			return tokens
		}
		prev = t.Type
	}
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNameStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isNameChar(r rune) bool {
	return isNameStart(r) || isDigit(r)
}
