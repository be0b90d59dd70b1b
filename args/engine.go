package args

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dzonerzy/go-args/internal/intern"
)

// parseStream consumes tokens for this level. A matched command takes the
// rest of the stream, so dispatch ends the loop.
func (p *Parser) parseStream(ctx context.Context, s *argStream) error {
	isFirst := true
	optionParsing := true

	for s.hasNext() {
		arg := s.next()
		first := isFirst
		isFirst = false

		var err error
		switch {
		case !optionParsing:
			p.args = append(p.args, arg)

		case arg == "--":
			optionParsing = false

		case strings.HasPrefix(arg, "--"):
			body := arg[2:]
			if strings.Contains(body, "=") {
				err = p.handleEquals("--", body)
			} else {
				err = p.handleLong(body, s)
			}

		case strings.HasPrefix(arg, "-"):
			body := arg[1:]
			switch {
			case body == "" || startsWithDigit(body):
				p.args = append(p.args, arg)
			case strings.Contains(body, "="):
				err = p.handleEquals("-", body)
			default:
				err = p.handleShort(body, s)
			}

		case first && p.commands[arg] != nil:
			return p.dispatch(ctx, arg, p.commands[arg], s)

		case first && arg == "help" && len(p.commands) > 0:
			return p.handleHelpCommand(s)

		default:
			p.args = append(p.args, arg)
		}

		if err != nil {
			return err
		}
	}
	return nil
}

// dispatch hands the remaining stream to child and runs its callback.
func (p *Parser) dispatch(ctx context.Context, name string, child *Parser, s *argStream) error {
	p.commandName = name
	p.commandParser = child
	child.ctx = ctx

	if err := child.parseStream(ctx, s); err != nil {
		return err
	}
	if child.callback == nil {
		return nil
	}
	return child.runCallback(ctx, name)
}

func (p *Parser) handleHelpCommand(s *argStream) error {
	if !s.hasNext() {
		return p.usageError(ErrorTypeMissingValue, "", "the help command requires an argument")
	}
	name := s.next()
	child, ok := p.commands[name]
	if !ok {
		err := p.usageError(ErrorTypeUnknownCommand, "", "'%s' is not a recognised command", name)
		err.Command = name
		return err
	}
	return &HelpRequest{Parser: child}
}

// handleEquals handles --name=value and -n=value. Only the first '=' splits.
func (p *Parser) handleEquals(prefix, body string) error {
	name, value, _ := strings.Cut(body, "=")
	flag := prefix + name

	cell := p.lookup(name)
	switch {
	case cell == nil:
		return p.usageError(ErrorTypeUnknownFlag, flag, "%s is not a recognised option", flag)
	case cell.kind == KindBool:
		return p.usageError(ErrorTypeInvalidFlag, flag, "invalid format for boolean flag %s", flag)
	case value == "":
		return p.usageError(ErrorTypeMissingValue, flag, "missing argument for %s", flag)
	}
	return p.appendValue(cell, flag, value)
}

func (p *Parser) handleLong(name string, s *argStream) error {
	flag := "--" + name

	if cell := p.lookup(name); cell != nil {
		if cell.kind == KindBool {
			cell.appendFlag()
			return nil
		}
		if !s.hasNext() {
			return p.usageError(ErrorTypeMissingValue, flag, "missing argument for %s", flag)
		}
		return p.appendValue(cell, flag, s.next())
	}

	switch {
	case name == "help" && p.helptext != "":
		return &HelpRequest{Parser: p}
	case name == "version" && p.version != "":
		return &VersionRequest{Parser: p}
	}
	return p.usageError(ErrorTypeUnknownFlag, flag, "%s is not a recognised option", flag)
}

// handleShort walks a condensed group such as -xsi. Each value-bearing
// character takes the next token from the stream, in order.
func (p *Parser) handleShort(group string, s *argStream) error {
	condensed := utf8.RuneCountInString(group) > 1

	for _, c := range group {
		name := intern.InternRune(c)
		flag := "-" + name

		if cell := p.lookup(name); cell != nil {
			if cell.kind == KindBool {
				cell.appendFlag()
				continue
			}
			if !s.hasNext() {
				if condensed {
					return p.usageError(ErrorTypeMissingValue, flag, "missing argument for '%c' option in -%s", c, group)
				}
				return p.usageError(ErrorTypeMissingValue, flag, "missing argument for %s", flag)
			}
			if err := p.appendValue(cell, flag, s.next()); err != nil {
				return err
			}
			continue
		}

		switch {
		case c == 'h' && p.helptext != "":
			return &HelpRequest{Parser: p}
		case c == 'v' && p.version != "":
			return &VersionRequest{Parser: p}
		case condensed:
			return p.usageError(ErrorTypeUnknownFlag, flag, "'%c' in -%s is not a recognised option", c, group)
		default:
			return p.usageError(ErrorTypeUnknownFlag, flag, "%s is not a recognised option", flag)
		}
	}
	return nil
}

func (p *Parser) appendValue(cell *valueCell, flag, raw string) error {
	if err := cell.tryAppend(raw, flag); err != nil {
		err.Parser = p
		return err
	}
	return nil
}

func (p *Parser) usageError(typ ErrorType, flag, format string, a ...any) *ParseError {
	return &ParseError{
		Type:    typ,
		Message: fmt.Sprintf(format, a...),
		Flag:    flag,
		Parser:  p,
	}
}

// startsWithDigit reports whether s begins with a decimal digit, as in -9.
func startsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsDigit(r)
}
