package argsio

import (
	"fmt"
	"strings"
)

// Logger writes the diagnostics a command-line driver prints: help and
// version text on the output stream, and one-message errors and warnings on
// the error stream.
//
// An error reads "Error: <message>." with an optional hint indented on the
// next line. Only the label and the hint are coloured, so the message text is
// identical with and without a terminal.
type Logger struct {
	io    *IOManager
	theme Theme
}

// NewLogger creates a logger bound to m.
func NewLogger(m *IOManager) *Logger {
	return &Logger{io: m, theme: DefaultTheme()}
}

// WithTheme replaces the colours used for labels and hints.
func (l *Logger) WithTheme(theme Theme) *Logger {
	l.theme = theme
	return l
}

// Text prints text on the output stream with exactly one trailing newline.
func (l *Logger) Text(text string) {
	fmt.Fprintln(l.io.Out(), strings.TrimRight(text, "\n"))
}

// Error prints "Error: <msg>." and, when hint is non-empty, the hint on an
// indented line below it.
func (l *Logger) Error(msg, hint string) {
	l.report(l.theme.Error, "Error", msg, hint)
}

// Errorf is Error without a hint, with msg built by fmt.Sprintf.
func (l *Logger) Errorf(format string, a ...any) {
	l.Error(fmt.Sprintf(format, a...), "")
}

// Warnf prints "Warning: <msg>." on the error stream.
func (l *Logger) Warnf(format string, a ...any) {
	l.report(l.theme.Warning, "Warning", fmt.Sprintf(format, a...), "")
}

func (l *Logger) report(label Style, name, msg, hint string) {
	var b strings.Builder
	b.WriteString(label.Sprint(l.io, name+":"))
	b.WriteByte(' ')
	b.WriteString(msg)
	b.WriteByte('.')
	if hint != "" {
		b.WriteString("\n  ")
		b.WriteString(l.theme.Hint.Sprint(l.io, hint))
	}
	b.WriteByte('\n')
	fmt.Fprint(l.io.Err(), b.String())
}
