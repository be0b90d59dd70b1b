package args

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

func (p *Parser) lookup(name string) *valueCell {
	idx, ok := p.options[name]
	if !ok {
		return nil
	}
	return &p.cells[idx]
}

func (p *Parser) cell(name string) (*valueCell, error) {
	if c := p.lookup(name); c != nil {
		return c, nil
	}
	return nil, &NameError{Name: name, Reason: "is not a registered flag or option"}
}

// Found reports whether the flag or option appeared at least once.
func (p *Parser) Found(name string) (bool, error) {
	c, err := p.cell(name)
	if err != nil {
		return false, err
	}
	return c.count() > 0, nil
}

// Count returns how many times the flag or option appeared.
func (p *Parser) Count(name string) (int, error) {
	c, err := p.cell(name)
	if err != nil {
		return 0, err
	}
	return c.count(), nil
}

// Value returns the last parsed value, or the fallback given at registration.
func (p *Parser) Value(name string) (any, error) {
	c, err := p.cell(name)
	if err != nil {
		return nil, err
	}
	return c.value(), nil
}

// Values returns every parsed value in command-line order.
func (p *Parser) Values(name string) ([]any, error) {
	c, err := p.cell(name)
	if err != nil {
		return nil, err
	}
	return slices.Clone(c.values), nil
}

// MustFound is like Found but panics on an unregistered name.
func (p *Parser) MustFound(name string) bool {
	found, err := p.Found(name)
	if err != nil {
		panic(err)
	}
	return found
}

// MustCount is like Count but panics on an unregistered name.
func (p *Parser) MustCount(name string) int {
	n, err := p.Count(name)
	if err != nil {
		panic(err)
	}
	return n
}

// MustValue is like Value but panics on an unregistered name.
func (p *Parser) MustValue(name string) any {
	v, err := p.Value(name)
	if err != nil {
		panic(err)
	}
	return v
}

// StringValue returns the current value of a string option.
func (p *Parser) StringValue(name string) (string, error) {
	return typedValue[string](p, name, KindString)
}

// IntValue returns the current value of an int option.
func (p *Parser) IntValue(name string) (int, error) {
	return typedValue[int](p, name, KindInt)
}

// FloatValue returns the current value of a float option.
func (p *Parser) FloatValue(name string) (float64, error) {
	return typedValue[float64](p, name, KindFloat)
}

// StringValues returns every value of a string option.
func (p *Parser) StringValues(name string) ([]string, error) {
	return typedValues[string](p, name, KindString)
}

// IntValues returns every value of an int option.
func (p *Parser) IntValues(name string) ([]int, error) {
	return typedValues[int](p, name, KindInt)
}

// FloatValues returns every value of a float option.
func (p *Parser) FloatValues(name string) ([]float64, error) {
	return typedValues[float64](p, name, KindFloat)
}

func typedCell(p *Parser, name string, kind Kind) (*valueCell, error) {
	c, err := p.cell(name)
	if err != nil {
		return nil, err
	}
	if c.kind != kind {
		return nil, &NameError{Name: name, Reason: "is not " + kind.article() + " option"}
	}
	return c, nil
}

// typedValue returns the zero value for a nil fallback.
func typedValue[T any](p *Parser, name string, kind Kind) (T, error) {
	var zero T
	c, err := typedCell(p, name, kind)
	if err != nil {
		return zero, err
	}
	v, _ := c.value().(T)
	return v, nil
}

func typedValues[T any](p *Parser, name string, kind Kind) ([]T, error) {
	c, err := typedCell(p, name, kind)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(c.values))
	for _, v := range c.values {
		out = append(out, v.(T))
	}
	return out, nil
}

// Args returns a copy of the positional arguments at this level.
func (p *Parser) Args() []string { return slices.Clone(p.args) }

// HasArgs reports whether any positional arguments were parsed.
func (p *Parser) HasArgs() bool { return len(p.args) > 0 }

// NumArgs returns the number of positional arguments.
func (p *Parser) NumArgs() int { return len(p.args) }

// Arg returns the i-th positional argument.
func (p *Parser) Arg(i int) (string, bool) {
	if i < 0 || i >= len(p.args) {
		return "", false
	}
	return p.args[i], true
}

// ArgsAsInts converts every positional argument to an int.
func (p *Parser) ArgsAsInts() ([]int, error) {
	out := make([]int, 0, len(p.args))
	for _, arg := range p.args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, &ParseError{
				Type:    ErrorTypeInvalidArgument,
				Message: fmt.Sprintf("cannot parse '%s' as an integer", arg),
				Parser:  p,
				Cause:   err,
			}
		}
		out = append(out, n)
	}
	return out, nil
}

// ArgsAsFloats converts every positional argument to a float64.
func (p *Parser) ArgsAsFloats() ([]float64, error) {
	out := make([]float64, 0, len(p.args))
	for _, arg := range p.args {
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, &ParseError{
				Type:    ErrorTypeInvalidArgument,
				Message: fmt.Sprintf("cannot parse '%s' as a floating-point value", arg),
				Parser:  p,
				Cause:   err,
			}
		}
		out = append(out, f)
	}
	return out, nil
}

// CommandName returns the alias of the command matched at this level, or "".
func (p *Parser) CommandName() string { return p.commandName }

// CommandParser returns the parser of the matched command, or nil.
func (p *Parser) CommandParser() *Parser { return p.commandParser }

// HasCommand reports whether a command was matched at this level.
func (p *Parser) HasCommand() bool { return p.commandParser != nil }

// Parent returns the parser this command was registered on, or nil for a root.
func (p *Parser) Parent() *Parser { return p.parent }

func (p *Parser) HelpText() string { return p.helptext }
func (p *Parser) Version() string  { return p.version }

// Context returns the context of the last parse. For a command with a
// callback it is the callback's own context, which Timeout middleware may
// cancel and which is cancelled once the callback returns.
func (p *Parser) Context() context.Context {
	if p.ctx == nil {
		return context.Background()
	}
	return p.ctx
}

// String dumps the parse results for debugging.
func (p *Parser) String() string {
	var flags, opts []string
	for _, name := range slices.Sorted(maps.Keys(p.options)) {
		c := p.lookup(name)
		if c.kind == KindBool {
			flags = append(flags, fmt.Sprintf("  %s: %d", name, c.count()))
		} else {
			opts = append(opts, fmt.Sprintf("  %s: (%v) %v", name, c.fallback, c.values))
		}
	}

	var args []string
	for _, arg := range p.args {
		args = append(args, "  "+arg)
	}

	var command []string
	if p.commandName != "" {
		command = append(command, "  "+p.commandName)
	}

	var b strings.Builder
	writeSection(&b, "Flags:", flags)
	writeSection(&b, "\nOptions:", opts)
	writeSection(&b, "\nArguments:", args)
	writeSection(&b, "\nCommand:", command)
	return strings.TrimSuffix(b.String(), "\n")
}

func writeSection(b *strings.Builder, title string, lines []string) {
	b.WriteString(title)
	b.WriteString("\n")
	if len(lines) == 0 {
		lines = []string{"  [none]"}
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
}
