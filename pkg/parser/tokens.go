package parser

import "github.com/sandrolain/gomolang/pkg/types"

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota

	// Invalid markers. The lexer never fails; it reports anomalies as tokens
	// and leaves the diagnostics to the parser.
	TokenUnknown             // a byte sequence that starts no token
	TokenInvalidNumber       // 1e, 1.2.3, 12abc
	TokenUnterminatedString  // 'abc<EOF>
	TokenUnterminatedComment // /* abc<EOF>

	// Literals
	TokenNumber // 123, 3.14, .5, 1e-10, 1.5f
	TokenString // 'hello'
	TokenName   // anim_time, math

	// Scope prefixes
	TokenQuery    // query, q
	TokenVariable // variable, v
	TokenTemp     // temp, t
	TokenContext  // context, c

	// Keywords
	TokenTrue     // true
	TokenFalse    // false
	TokenThis     // this
	TokenReturn   // return
	TokenBreak    // break
	TokenContinue // continue
	TokenLoop     // loop
	TokenForEach  // for_each

	// Grouping symbols
	TokenParenOpen    // (
	TokenParenClose   // )
	TokenBracketOpen  // [
	TokenBracketClose // ]
	TokenBraceOpen    // {
	TokenBraceClose   // }

	// Basic symbols
	TokenDot       // .
	TokenComma     // ,
	TokenColon     // :
	TokenSemicolon // ;
	TokenCondition // ?
	TokenCoalesce  // ??
	TokenArrow     // ->

	// Arithmetic operators
	TokenPlus  // +
	TokenMinus // -
	TokenMult  // *
	TokenDiv   // /
	TokenNot   // !

	// Assignment operators
	TokenAssign      // =
	TokenPlusAssign  // +=
	TokenMinusAssign // -=
	TokenMultAssign  // *=
	TokenDivAssign   // /=

	// Comparison operators
	TokenEqual        // ==
	TokenNotEqual     // !=
	TokenLess         // <
	TokenLessEqual    // <=
	TokenGreater      // >
	TokenGreaterEqual // >=

	// Logical operators
	TokenAnd // &&
	TokenOr  // ||
)

var tokenNames = [...]string{
	TokenEOF:                 "end of input",
	TokenUnknown:             "unknown character",
	TokenInvalidNumber:       "invalid number",
	TokenUnterminatedString:  "unterminated string",
	TokenUnterminatedComment: "unterminated comment",
	TokenNumber:              "number",
	TokenString:              "string",
	TokenName:                "identifier",
	TokenQuery:               "`query`",
	TokenVariable:            "`variable`",
	TokenTemp:                "`temp`",
	TokenContext:             "`context`",
	TokenTrue:                "`true`",
	TokenFalse:               "`false`",
	TokenThis:                "`this`",
	TokenReturn:              "`return`",
	TokenBreak:               "`break`",
	TokenContinue:            "`continue`",
	TokenLoop:                "`loop`",
	TokenForEach:             "`for_each`",
	TokenParenOpen:           "`(`",
	TokenParenClose:          "`)`",
	TokenBracketOpen:         "`[`",
	TokenBracketClose:        "`]`",
	TokenBraceOpen:           "`{`",
	TokenBraceClose:          "`}`",
	TokenDot:                 "`.`",
	TokenComma:               "`,`",
	TokenColon:               "`:`",
	TokenSemicolon:           "`;`",
	TokenCondition:           "`?`",
	TokenCoalesce:            "`??`",
	TokenArrow:               "`->`",
	TokenPlus:                "`+`",
	TokenMinus:               "`-`",
	TokenMult:                "`*`",
	TokenDiv:                 "`/`",
	TokenNot:                 "`!`",
	TokenAssign:              "`=`",
	TokenPlusAssign:          "`+=`",
	TokenMinusAssign:         "`-=`",
	TokenMultAssign:          "`*=`",
	TokenDivAssign:           "`/=`",
	TokenEqual:               "`==`",
	TokenNotEqual:            "`!=`",
	TokenLess:                "`<`",
	TokenLessEqual:           "`<=`",
	TokenGreater:             "`>`",
	TokenGreaterEqual:        "`>=`",
	TokenAnd:                 "`&&`",
	TokenOr:                  "`||`",
}

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	if int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return "(unknown)"
}

// IsInvalid reports whether the token marks a lexical anomaly.
func (tt TokenType) IsInvalid() bool {
	return tt >= TokenUnknown && tt <= TokenUnterminatedComment
}

// IsScope reports whether the token is a scope prefix keyword.
func (tt TokenType) IsScope() bool {
	return tt >= TokenQuery && tt <= TokenContext
}

// IsWord reports whether the token is spelled like an identifier, which makes
// it usable as a member name after a dot.
func (tt TokenType) IsWord() bool {
	return tt == TokenName || (tt >= TokenQuery && tt <= TokenForEach)
}

// Token represents a lexical token in a Molang expression.
type Token struct {
	Type  TokenType  // Type of the token
	Value string     // Lexeme; for strings the contents without quotes
	Span  types.Span // Byte range in the input, quotes included
	Num   float64    // Decoded value of a TokenNumber
}

// symbols1 maps single-character symbols to token types.
var symbols1 = [...]TokenType{
	'(': TokenParenOpen,
	')': TokenParenClose,
	'[': TokenBracketOpen,
	']': TokenBracketClose,
	'{': TokenBraceOpen,
	'}': TokenBraceClose,
	'.': TokenDot,
	',': TokenComma,
	':': TokenColon,
	';': TokenSemicolon,
	'?': TokenCondition,
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenMult,
	'/': TokenDiv,
	'!': TokenNot,
	'=': TokenAssign,
	'<': TokenLess,
	'>': TokenGreater,
}

// runeTokenType pairs a rune with its corresponding token type.
type runeTokenType struct {
	r  rune
	tt TokenType
}

// symbols2 maps two-character symbol sequences to token types.
// The key is the first character of the sequence.
var symbols2 = [...][]runeTokenType{
	'=': {{'=', TokenEqual}},
	'!': {{'=', TokenNotEqual}},
	'<': {{'=', TokenLessEqual}},
	'>': {{'=', TokenGreaterEqual}},
	'&': {{'&', TokenAnd}},
	'|': {{'|', TokenOr}},
	'?': {{'?', TokenCoalesce}},
	'-': {{'>', TokenArrow}, {'=', TokenMinusAssign}},
	'+': {{'=', TokenPlusAssign}},
	'*': {{'=', TokenMultAssign}},
	'/': {{'=', TokenDivAssign}},
}

const (
	symbol1Count = rune(len(symbols1))
	symbol2Count = rune(len(symbols2))
)

// lookupSymbol1 returns the token type for a single-character symbol.
// Returns 0 if the rune is not a valid symbol.
func lookupSymbol1(r rune) TokenType {
	if r < 0 || r >= symbol1Count {
		return 0
	}
	return symbols1[r]
}

// lookupSymbol2 returns possible two-character symbol completions.
// Returns nil if the rune cannot start a two-character symbol.
func lookupSymbol2(r rune) []runeTokenType {
	if r < 0 || r >= symbol2Count {
		return nil
	}
	return symbols2[r]
}

// lookupKeyword returns the token type for a keyword.
// Returns 0 if the string is not a recognized keyword.
func lookupKeyword(s string) TokenType {
	switch s {
	case "query", "Query", "q":
		return TokenQuery
	case "variable", "Variable", "v":
		return TokenVariable
	case "temp", "Temp", "t":
		return TokenTemp
	case "context", "Context", "c":
		return TokenContext
	case "true":
		return TokenTrue
	case "false":
		return TokenFalse
	case "this":
		return TokenThis
	case "return":
		return TokenReturn
	case "break":
		return TokenBreak
	case "continue":
		return TokenContinue
	case "loop":
		return TokenLoop
	case "for_each":
		return TokenForEach
	default:
		return 0
	}
}

// endsOperand reports whether an operator may follow a token of this type.
// After such a token a '-' is the subtraction operator, elsewhere it may
// start a signed number literal.
//
// Keywords count as operands because they double as member names (v.q - 1).
// The exception is return, whose value may be a negative literal.
func endsOperand(tt TokenType) bool {
	switch tt {
	case TokenNumber, TokenInvalidNumber, TokenString,
		TokenParenClose, TokenBracketClose, TokenBraceClose:
		return true
	case TokenReturn:
		return false
	default:
		return tt.IsWord()
	}
}
