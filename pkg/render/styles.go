package render

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorAccent  = lipgloss.Color("#06B6D4") // Cyan
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
	ColorText    = lipgloss.Color("#F8FAFC") // Slate 50
)

// Styles controls how diagnostics are colored.
type Styles struct {
	// Plain disables styling entirely; text is written as is.
	Plain bool

	Location lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Message  lipgloss.Style
	Gutter   lipgloss.Style
	Caret    lipgloss.Style
	Hint     lipgloss.Style
}

// DefaultStyles returns the colored terminal styles. lipgloss drops the
// colors by itself when the output is not a terminal.
func DefaultStyles() Styles {
	return Styles{
		Location: lipgloss.NewStyle().Foreground(ColorMuted),
		Error:    lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Warning:  lipgloss.NewStyle().Foreground(ColorWarning).Bold(true),
		Message:  lipgloss.NewStyle().Foreground(ColorText).Bold(true),
		Gutter:   lipgloss.NewStyle().Foreground(ColorAccent),
		Caret:    lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Hint:     lipgloss.NewStyle().Foreground(ColorAccent).Italic(true),
	}
}

// PlainStyles returns styles that write text unchanged.
func PlainStyles() Styles {
	return Styles{Plain: true}
}

func (s Styles) paint(style lipgloss.Style, text string) string {
	if s.Plain || text == "" {
		return text
	}
	return style.Render(text)
}
