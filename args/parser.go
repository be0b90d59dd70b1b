// Package args parses command lines into flags, options, positional
// arguments and nested commands.
//
// A Parser is built by registering flags, options and commands, then fed an
// argument list with Parse. Help, version and usage errors are returned as
// error values; the App driver turns them into output and exit codes.
package args

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"

	"github.com/dzonerzy/go-args/internal/intern"
	"github.com/dzonerzy/go-args/middleware"
)

// Callback runs after a command's parser has consumed the rest of the
// command line. name is the alias the user typed.
type Callback func(name string, cmd *Parser) error

// Parser holds the registrations and parse results for one program level:
// the root program or a single command.
type Parser struct {
	helptext string
	version  string

	// Cells are addressed by index; aliases of one flag share an index.
	cells    []valueCell
	options  map[string]int
	commands map[string]*Parser

	args          []string
	commandName   string
	commandParser *Parser

	callback   Callback
	parent     *Parser
	middleware []middleware.Middleware

	ctx context.Context
}

// NewParser creates a root parser. A non-empty helptext enables -h and
// --help; a non-empty version enables -v and --version. Surrounding
// whitespace is trimmed from both.
func NewParser(helptext, version string) *Parser {
	return &Parser{
		helptext: strings.TrimSpace(helptext),
		version:  strings.TrimSpace(version),
		options:  make(map[string]int),
		commands: make(map[string]*Parser),
	}
}

// Flag registers a boolean flag under the whitespace-separated aliases.
func (p *Parser) Flag(aliases string) *Parser {
	return p.register(aliases, valueCell{kind: KindBool, fallback: false})
}

// Option registers an option of the given kind. A non-nil fallback must have
// the kind's Go type (string, int or float64). KindBool registers a flag;
// use CustomOption for KindCustom.
func (p *Parser) Option(aliases string, kind Kind, fallback any) *Parser {
	var ok bool
	switch kind {
	case KindBool:
		_, ok = fallback.(bool)
	case KindString:
		_, ok = fallback.(string)
	case KindInt:
		_, ok = fallback.(int)
	case KindFloat:
		_, ok = fallback.(float64)
	default:
		panic(&NameError{Name: aliases, Reason: fmt.Sprintf("cannot be registered with kind %s", kind)})
	}
	if fallback != nil && !ok {
		panic(&NameError{Name: aliases, Reason: fmt.Sprintf("has a %T fallback for kind %s", fallback, kind)})
	}

	if kind == KindBool {
		return p.Flag(aliases)
	}
	return p.register(aliases, valueCell{kind: kind, fallback: fallback})
}

// StringOption registers an option holding strings.
func (p *Parser) StringOption(aliases, fallback string) *Parser {
	return p.register(aliases, valueCell{kind: KindString, fallback: fallback})
}

// IntOption registers an option holding base-10 integers.
func (p *Parser) IntOption(aliases string, fallback int) *Parser {
	return p.register(aliases, valueCell{kind: KindInt, fallback: fallback})
}

// FloatOption registers an option holding float64 values.
func (p *Parser) FloatOption(aliases string, fallback float64) *Parser {
	return p.register(aliases, valueCell{kind: KindFloat, fallback: fallback})
}

// CustomOption registers an option whose values are produced by conv.
func (p *Parser) CustomOption(aliases string, conv Converter, fallback any) *Parser {
	if conv == nil {
		panic(&NameError{Name: aliases, Reason: "requires a converter"})
	}
	return p.register(aliases, valueCell{kind: KindCustom, convert: conv, fallback: fallback})
}

// Command registers a command and returns its parser so flags, options and
// nested commands can be registered on it. helptext enables -h and --help on
// the command. cb may be nil.
func (p *Parser) Command(aliases, helptext string, cb Callback) *Parser {
	names := p.claim(aliases)

	child := NewParser(helptext, "")
	child.callback = cb
	child.parent = p
	for _, name := range names {
		p.commands[name] = child
	}
	return child
}

// Use appends middleware wrapping this parser's own callback and the
// callbacks of every command below it. Middleware registered on an ancestor
// runs first.
func (p *Parser) Use(mw ...middleware.Middleware) *Parser {
	p.middleware = append(p.middleware, mw...)
	return p
}

func (p *Parser) register(aliases string, cell valueCell) *Parser {
	names := p.claim(aliases)

	p.cells = append(p.cells, cell)
	idx := len(p.cells) - 1
	for _, name := range names {
		p.options[name] = idx
	}
	return p
}

// claim splits aliases and panics if any of them is already taken at this level.
func (p *Parser) claim(aliases string) []string {
	fields := strings.Fields(aliases)
	if len(fields) == 0 {
		panic(&NameError{Name: aliases, Reason: "is not a valid alias list"})
	}

	names := make([]string, 0, len(fields))
	for _, field := range fields {
		name := intern.Intern(field)
		_, isOption := p.options[name]
		_, isCommand := p.commands[name]
		if isOption || isCommand {
			panic(&NameError{Name: name, Reason: "is already registered"})
		}
		for _, seen := range names {
			if seen == name {
				panic(&NameError{Name: name, Reason: "is repeated in the alias list"})
			}
		}
		names = append(names, name)
	}
	return names
}

// Parse parses args, typically os.Args[1:]. Results from a previous call are
// discarded first, for this parser and every command below it.
//
// The returned error is nil, a *HelpRequest, a *VersionRequest, a *ParseError
// or the error returned by a command callback.
func (p *Parser) Parse(args []string) error {
	return p.ParseContext(context.Background(), args)
}

// ParseContext is Parse with a context that command callbacks run under.
//
// Timeout middleware can return before an abandoned callback goroutine
// finishes. Such a callback may keep reading its *Parser, so the tree must
// not be parsed again until it has returned.
func (p *Parser) ParseContext(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p.reset()
	p.ctx = ctx

	stream := newArgStream(args)
	defer stream.release()
	return p.parseStream(ctx, stream)
}

// ParseOS parses os.Args[1:].
func (p *Parser) ParseOS() error {
	return p.Parse(os.Args[1:])
}

// ParseString splits line with shell quoting rules and parses the result.
func (p *Parser) ParseString(line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return &ParseError{
			Type:    ErrorTypeInvalidArgument,
			Message: fmt.Sprintf("cannot split command line: %v", err),
			Parser:  p,
			Cause:   err,
		}
	}
	return p.Parse(tokens)
}

func (p *Parser) reset() {
	for i := range p.cells {
		p.cells[i].reset()
	}
	clear(p.args)
	p.args = p.args[:0]
	p.commandName = ""
	p.commandParser = nil
	p.ctx = nil
	for _, child := range p.commands {
		child.reset()
	}
}
