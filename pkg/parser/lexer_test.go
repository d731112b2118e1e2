package parser_test

import (
	"testing"

	"github.com/sandrolain/gomolang/pkg/parser"
	"github.com/sandrolain/gomolang/pkg/types"
)

type lexerTestCase struct {
	name     string
	input    string
	expected []parser.Token
}

// tok builds an expected token; Num is only compared for numbers.
func tok(tt parser.TokenType, value string, start, end int) parser.Token {
	return parser.Token{Type: tt, Value: value, Span: types.NewSpan(start, end)}
}

func num(value string, n float64, start, end int) parser.Token {
	t := tok(parser.TokenNumber, value, start, end)
	t.Num = n
	return t
}

func TestLexerWhitespace(t *testing.T) {
	tests := []lexerTestCase{
		{
			name:     "no whitespace",
			input:    "abc",
			expected: []parser.Token{tok(parser.TokenName, "abc", 0, 3)},
		},
		{
			name:     "leading whitespace",
			input:    "   abc",
			expected: []parser.Token{tok(parser.TokenName, "abc", 3, 6)},
		},
		{
			name:     "mixed whitespace",
			input:    " \t\n\r\vabc ",
			expected: []parser.Token{tok(parser.TokenName, "abc", 5, 8)},
		},
		{
			name:  "line comment",
			input: "1 // one\n2",
			expected: []parser.Token{
				num("1", 1, 0, 1),
				num("2", 2, 9, 10),
			},
		},
		{
			name:  "block comment",
			input: "1 /* one\n */ 2",
			expected: []parser.Token{
				num("1", 1, 0, 1),
				num("2", 2, 13, 14),
			},
		},
		{
			name:     "comment at end of input",
			input:    "x // done",
			expected: []parser.Token{tok(parser.TokenName, "x", 0, 1)},
		},
	}

	runLexerTests(t, tests)
}

func TestLexerStrings(t *testing.T) {
	tests := []lexerTestCase{
		{
			name:     "simple string",
			input:    `'world'`,
			expected: []parser.Token{tok(parser.TokenString, "world", 0, 7)},
		},
		{
			name:     "empty string",
			input:    `''`,
			expected: []parser.Token{tok(parser.TokenString, "", 0, 2)},
		},
		{
			name:     "backslash is literal",
			input:    `'a\nb'`,
			expected: []parser.Token{tok(parser.TokenString, `a\nb`, 0, 6)},
		},
		{
			name:     "newline inside string",
			input:    "'a\nb'",
			expected: []parser.Token{tok(parser.TokenString, "a\nb", 0, 5)},
		},
		{
			name:     "unterminated string",
			input:    `'hello`,
			expected: []parser.Token{tok(parser.TokenUnterminatedString, "hello", 0, 6)},
		},
		{
			name:     "double quotes are not strings",
			input:    `"`,
			expected: []parser.Token{tok(parser.TokenUnknown, `"`, 0, 1)},
		},
	}

	runLexerTests(t, tests)
}

func TestLexerNumbers(t *testing.T) {
	tests := []lexerTestCase{
		{name: "integer", input: "123", expected: []parser.Token{num("123", 123, 0, 3)}},
		{name: "zero", input: "0", expected: []parser.Token{num("0", 0, 0, 1)}},
		{name: "decimal", input: "3.14", expected: []parser.Token{num("3.14", 3.14, 0, 4)}},
		{name: "leading dot", input: ".5", expected: []parser.Token{num(".5", 0.5, 0, 2)}},
		{name: "exponent", input: "1e3", expected: []parser.Token{num("1e3", 1000, 0, 3)}},
		{name: "signed exponent", input: "2.5E-2", expected: []parser.Token{num("2.5E-2", 0.025, 0, 6)}},
		{name: "float suffix", input: "1.5f", expected: []parser.Token{num("1.5f", 1.5, 0, 4)}},
		{name: "negative literal", input: "-1", expected: []parser.Token{num("-1", -1, 0, 2)}},
		{name: "negative fraction", input: "-.25", expected: []parser.Token{num("-.25", -0.25, 0, 4)}},
		{
			name:  "trailing dot is member access",
			input: "1.x",
			expected: []parser.Token{
				num("1", 1, 0, 1),
				tok(parser.TokenDot, ".", 1, 2),
				tok(parser.TokenName, "x", 2, 3),
			},
		},
		{name: "missing exponent digits", input: "1e", expected: []parser.Token{tok(parser.TokenInvalidNumber, "1e", 0, 2)}},
		{name: "two fractions", input: "1.2.3", expected: []parser.Token{tok(parser.TokenInvalidNumber, "1.2.3", 0, 5)}},
		{name: "letters after digits", input: "12abc", expected: []parser.Token{tok(parser.TokenInvalidNumber, "12abc", 0, 5)}},
		{name: "out of range", input: "1e999", expected: []parser.Token{tok(parser.TokenInvalidNumber, "1e999", 0, 5)}},
	}

	runLexerTests(t, tests)
}

func TestLexerMinus(t *testing.T) {
	tests := []lexerTestCase{
		{
			name:  "subtraction after name",
			input: "a-1",
			expected: []parser.Token{
				tok(parser.TokenName, "a", 0, 1),
				tok(parser.TokenMinus, "-", 1, 2),
				num("1", 1, 2, 3),
			},
		},
		{
			name:  "negative operand",
			input: "a - -1",
			expected: []parser.Token{
				tok(parser.TokenName, "a", 0, 1),
				tok(parser.TokenMinus, "-", 2, 3),
				num("-1", -1, 4, 6),
			},
		},
		{
			name:  "subtraction after parenthesis",
			input: "(1)-1",
			expected: []parser.Token{
				tok(parser.TokenParenOpen, "(", 0, 1),
				num("1", 1, 1, 2),
				tok(parser.TokenParenClose, ")", 2, 3),
				tok(parser.TokenMinus, "-", 3, 4),
				num("1", 1, 4, 5),
			},
		},
		{
			name:  "subtraction after keyword member",
			input: "v.q-1",
			expected: []parser.Token{
				tok(parser.TokenVariable, "v", 0, 1),
				tok(parser.TokenDot, ".", 1, 2),
				tok(parser.TokenQuery, "q", 2, 3),
				tok(parser.TokenMinus, "-", 3, 4),
				num("1", 1, 4, 5),
			},
		},
		{
			name:  "negative literal after return",
			input: "return -1",
			expected: []parser.Token{
				tok(parser.TokenReturn, "return", 0, 6),
				num("-1", -1, 7, 9),
			},
		},
		{
			name:  "negation of a name",
			input: "-a",
			expected: []parser.Token{
				tok(parser.TokenMinus, "-", 0, 1),
				tok(parser.TokenName, "a", 1, 2),
			},
		},
	}

	runLexerTests(t, tests)
}

func TestLexerSymbols(t *testing.T) {
	input := "( ) [ ] { } . , : ; ? ?? -> + - * / ! = += -= *= /= == != < <= > >= && ||"
	want := []parser.TokenType{
		parser.TokenParenOpen, parser.TokenParenClose,
		parser.TokenBracketOpen, parser.TokenBracketClose,
		parser.TokenBraceOpen, parser.TokenBraceClose,
		parser.TokenDot, parser.TokenComma, parser.TokenColon, parser.TokenSemicolon,
		parser.TokenCondition, parser.TokenCoalesce, parser.TokenArrow,
		parser.TokenPlus, parser.TokenMinus, parser.TokenMult, parser.TokenDiv, parser.TokenNot,
		parser.TokenAssign, parser.TokenPlusAssign, parser.TokenMinusAssign,
		parser.TokenMultAssign, parser.TokenDivAssign,
		parser.TokenEqual, parser.TokenNotEqual,
		parser.TokenLess, parser.TokenLessEqual, parser.TokenGreater, parser.TokenGreaterEqual,
		parser.TokenAnd, parser.TokenOr,
		parser.TokenEOF,
	}

	got := parser.Scan(input)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(got), len(want))
	}
	for i, tk := range got {
		if tk.Type != want[i] {
			t.Errorf("token %d: type = %v, want %v", i, tk.Type, want[i])
		}
	}
}

func TestLexerKeywords(t *testing.T) {
	tests := []struct {
		input string
		want  parser.TokenType
	}{
		{"q", parser.TokenQuery},
		{"query", parser.TokenQuery},
		{"Query", parser.TokenQuery},
		{"v", parser.TokenVariable},
		{"variable", parser.TokenVariable},
		{"t", parser.TokenTemp},
		{"temp", parser.TokenTemp},
		{"c", parser.TokenContext},
		{"context", parser.TokenContext},
		{"true", parser.TokenTrue},
		{"false", parser.TokenFalse},
		{"this", parser.TokenThis},
		{"return", parser.TokenReturn},
		{"break", parser.TokenBreak},
		{"continue", parser.TokenContinue},
		{"loop", parser.TokenLoop},
		{"for_each", parser.TokenForEach},
		{"math", parser.TokenName},
		{"Math", parser.TokenName},
		{"QUERY", parser.TokenName},
		{"_private", parser.TokenName},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parser.Scan(tt.input)
			if got[0].Type != tt.want {
				t.Errorf("type = %v, want %v", got[0].Type, tt.want)
			}
		})
	}
}

func TestLexerInvalid(t *testing.T) {
	tests := []lexerTestCase{
		{
			name:     "lone ampersand",
			input:    "&",
			expected: []parser.Token{tok(parser.TokenUnknown, "&", 0, 1)},
		},
		{
			name:  "unknown character keeps scanning",
			input: "# 1",
			expected: []parser.Token{
				tok(parser.TokenUnknown, "#", 0, 1),
				num("1", 1, 2, 3),
			},
		},
		{
			name:     "multibyte character",
			input:    "é",
			expected: []parser.Token{tok(parser.TokenUnknown, "é", 0, 2)},
		},
		{
			name:     "unterminated comment",
			input:    "/* open",
			expected: []parser.Token{tok(parser.TokenUnterminatedComment, "/* open", 0, 7)},
		},
	}

	runLexerTests(t, tests)
}

func TestLexerEOFIsSticky(t *testing.T) {
	l := parser.NewLexer("x ")
	l.Next(true)
	for i := 0; i < 3; i++ {
		tk := l.Next(true)
		if tk.Type != parser.TokenEOF {
			t.Fatalf("call %d: type = %v, want end of input", i, tk.Type)
		}
		if tk.Span != types.NewSpan(2, 2) {
			t.Errorf("call %d: span = %v, want 2..2", i, tk.Span)
		}
	}
}

func runLexerTests(t *testing.T, tests []lexerTestCase) {
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tokens := parser.Scan(test.input)
			if last := tokens[len(tokens)-1]; last.Type != parser.TokenEOF {
				t.Fatalf("last token = %v, want end of input", last.Type)
			}
			tokens = tokens[:len(tokens)-1]

			if len(tokens) != len(test.expected) {
				t.Errorf("got %d tokens, want %d\nGot: %v\nWant: %v",
					len(tokens), len(test.expected), tokens, test.expected)
				return
			}

			for i, tk := range tokens {
				exp := test.expected[i]
				if tk.Type != exp.Type {
					t.Errorf("token %d: type = %v, want %v", i, tk.Type, exp.Type)
				}
				if tk.Value != exp.Value {
					t.Errorf("token %d: value = %q, want %q", i, tk.Value, exp.Value)
				}
				if tk.Span != exp.Span {
					t.Errorf("token %d: span = %v, want %v", i, tk.Span, exp.Span)
				}
				if tk.Type == parser.TokenNumber && tk.Num != exp.Num {
					t.Errorf("token %d: num = %v, want %v", i, tk.Num, exp.Num)
				}
			}
		})
	}
}
