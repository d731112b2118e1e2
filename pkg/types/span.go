package types

import "fmt"

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start uint32
	End   uint32
}

// NewSpan creates a span from int offsets.
func NewSpan(start, end int) Span {
	return Span{Start: uint32(start), End: uint32(end)}
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return int(s.End - s.Start)
}

// IsEmpty reports whether the span covers no bytes.
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	out := s
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

// Text slices the source with the span.
// Out of range spans are clamped to the source length.
func (s Span) Text(source string) string {
	end := int(s.End)
	if end > len(source) {
		end = len(source)
	}
	start := int(s.Start)
	if start > end {
		start = end
	}
	return source[start:end]
}

// String returns a string representation of the span.
func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}
