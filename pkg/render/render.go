// Package render formats diagnostics for people.
//
// Diagnostics only carry byte spans. This package maps spans back to line and
// column numbers and prints the offending source line with the span
// underlined:
//
//	anim.molang:1:4: error[S0203]: expected expression, found end of input
//	  1 | 1 +
//	    |    ^
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sandrolain/gomolang/pkg/types"
)

// Position converts a byte offset into a 1-based line and column. Columns
// count runes. Offsets past the end of source map to the end.
func Position(source string, offset int) (line, col int) {
	if offset > len(source) {
		offset = len(source)
	}
	if offset < 0 {
		offset = 0
	}
	start := strings.LastIndexByte(source[:offset], '\n') + 1
	line = strings.Count(source[:start], "\n") + 1
	col = utf8.RuneCountInString(source[start:offset]) + 1
	return line, col
}

// lineAt returns the bounds of the line holding offset, without the line
// terminator.
func lineAt(source string, offset int) (start, end int) {
	start = strings.LastIndexByte(source[:offset], '\n') + 1
	end = len(source)
	if i := strings.IndexByte(source[offset:], '\n'); i >= 0 {
		end = offset + i
	}
	if end > start && source[end-1] == '\r' {
		end--
	}
	return start, end
}

// Diagnostic writes one diagnostic with its source context. name labels the
// source, typically a file name.
func Diagnostic(w io.Writer, name, source string, d *types.Diagnostic, styles Styles) error {
	offset := min(int(d.Span.Start), len(source))
	line, col := Position(source, offset)

	severity := styles.paint(styles.Error, fmt.Sprintf("%s[%s]", d.Severity, d.Code))
	if d.Severity == types.SeverityWarning {
		severity = styles.paint(styles.Warning, fmt.Sprintf("%s[%s]", d.Severity, d.Code))
	}

	var sb strings.Builder
	sb.WriteString(styles.paint(styles.Location, fmt.Sprintf("%s:%d:%d:", name, line, col)))
	sb.WriteByte(' ')
	sb.WriteString(severity)
	sb.WriteString(": ")
	sb.WriteString(styles.paint(styles.Message, d.Message))
	sb.WriteByte('\n')

	start, end := lineAt(source, offset)
	number := strconv.Itoa(line)
	blank := strings.Repeat(" ", len(number))

	sb.WriteString(styles.paint(styles.Gutter, "  "+number+" |"))
	if end > start {
		sb.WriteByte(' ')
		sb.WriteString(source[start:end])
	}
	sb.WriteByte('\n')

	// Pad with the line's own tabs so the caret lines up
	sb.WriteString(styles.paint(styles.Gutter, "  "+blank+" |"))
	sb.WriteByte(' ')
	for _, r := range source[start:offset] {
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	width := utf8.RuneCountInString(source[offset:min(int(d.Span.End), end)])
	sb.WriteString(styles.paint(styles.Caret, strings.Repeat("^", max(width, 1))))
	sb.WriteByte('\n')

	if d.Hint != "" {
		sb.WriteString(styles.paint(styles.Gutter, "  "+blank+" ="))
		sb.WriteByte(' ')
		sb.WriteString(styles.paint(styles.Hint, "hint: "+d.Hint))
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// Diagnostics writes every diagnostic in ds, separated by blank lines.
func Diagnostics(w io.Writer, name, source string, ds types.Diagnostics, styles Styles) error {
	for i, d := range ds {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := Diagnostic(w, name, source, d, styles); err != nil {
			return err
		}
	}
	return nil
}
