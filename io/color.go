package argsio

import (
	"fmt"

	"github.com/fatih/color"
)

// Style is a set of SGR attributes rendered through fatih/color.
type Style []color.Attribute

// NewStyle creates a style from the given attributes.
func NewStyle(attrs ...color.Attribute) Style { return Style(attrs) }

// Sprint returns text styled when m allows colour; otherwise text unchanged.
func (s Style) Sprint(m *IOManager, text string) string {
	if len(s) == 0 || !m.SupportsColor() {
		return text
	}
	c := color.New(s...)
	// The package-level NoColor default reads os.Stdout; m has already decided.
	c.EnableColor()
	return c.Sprint(text)
}

// Sprintf formats the content with fmt.Sprintf and then applies the style.
func (s Style) Sprintf(m *IOManager, format string, a ...any) string {
	return s.Sprint(m, fmt.Sprintf(format, a...))
}

// Bold returns s in bold when color is supported; otherwise s unchanged.
func (m *IOManager) Bold(s string) string { return NewStyle(color.Bold).Sprint(m, s) }

// Faint returns s in faint intensity when supported; otherwise s unchanged.
func (m *IOManager) Faint(s string) string { return NewStyle(color.Faint).Sprint(m, s) }

// Italic returns s in italic when supported; otherwise s unchanged.
func (m *IOManager) Italic(s string) string { return NewStyle(color.Italic).Sprint(m, s) }

// Underline returns s underlined when supported; otherwise s unchanged.
func (m *IOManager) Underline(s string) string { return NewStyle(color.Underline).Sprint(m, s) }

// Theme holds the colours of diagnostic labels and hints.
type Theme struct {
	Error, Warning, Hint Style
}

// DefaultTheme uses the bright half of the 16-colour palette, which every
// colour-capable terminal renders.
func DefaultTheme() Theme {
	return Theme{
		Error:   NewStyle(color.FgHiRed, color.Bold),
		Warning: NewStyle(color.FgHiYellow, color.Bold),
		Hint:    NewStyle(color.FgHiBlack),
	}
}
