package args

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/dzonerzy/go-args/internal/fuzzy"
)

// ErrorType represents error categories for parse failures.
// These categories drive suggestion logic and exit-code mapping (via ExitCodeManager).
type ErrorType string

const (
	ErrorTypeUnknownFlag     ErrorType = "unknown_flag"
	ErrorTypeUnknownCommand  ErrorType = "unknown_command"
	ErrorTypeInvalidFlag     ErrorType = "invalid_flag"
	ErrorTypeInvalidValue    ErrorType = "invalid_value"
	ErrorTypeMissingValue    ErrorType = "missing_value"
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"
)

// Sentinels for errors.Is.
var (
	ErrHelp        = errors.New("help requested")
	ErrVersion     = errors.New("version requested")
	ErrProgramming = errors.New("programming error")
)

// ParseError is a user-facing usage error. It always ends the parse call.
type ParseError struct {
	Type       ErrorType
	Message    string
	Flag       string // as typed, dashes included
	Command    string
	Suggestion string
	Parser     *Parser // the parser level that rejected the input
	Cause      error
}

func (e *ParseError) Error() string {
	return e.Message
}

func (e *ParseError) Unwrap() error { return e.Cause }

// HelpRequest is returned by Parse when -h, --help or "help <command>" asks
// for the help text of Parser.
type HelpRequest struct {
	Parser *Parser
}

func (r *HelpRequest) Error() string { return ErrHelp.Error() }
func (r *HelpRequest) Unwrap() error { return ErrHelp }

// VersionRequest is returned by Parse when -v or --version asks for the
// version text of Parser.
type VersionRequest struct {
	Parser *Parser
}

func (r *VersionRequest) Error() string { return ErrVersion.Error() }
func (r *VersionRequest) Unwrap() error { return ErrVersion }

// NameError reports misuse of the registration or query API, such as asking
// for an option that was never registered.
type NameError struct {
	Name   string
	Reason string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("'%s' %s", e.Name, e.Reason)
}

func (e *NameError) Unwrap() error { return ErrProgramming }

// Outcome classifies the error returned by Parse.
type Outcome int

const (
	Continue Outcome = iota
	HelpRequested
	VersionRequested
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case HelpRequested:
		return "help"
	case VersionRequested:
		return "version"
	default:
		return "failed"
	}
}

// OutcomeOf maps an error returned by Parse to its Outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return Continue
	case errors.Is(err, ErrHelp):
		return HelpRequested
	case errors.Is(err, ErrVersion):
		return VersionRequested
	default:
		return Failed
	}
}

// ErrorHandler decorates parse errors with "did you mean" suggestions before
// App prints them.
type ErrorHandler struct {
	suggestCommands bool
	suggestFlags    bool
	maxDistance     int
	customHandlers  map[ErrorType]func(*ParseError) *ParseError
}

// NewErrorHandler creates a new error handler with defaults
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{
		suggestCommands: false, // Disabled by default - user must opt-in
		suggestFlags:    false, // Disabled by default - user must opt-in
		maxDistance:     2,
		customHandlers:  make(map[ErrorType]func(*ParseError) *ParseError),
	}
}

// SuggestCommands enables/disables command suggestions
func (eh *ErrorHandler) SuggestCommands(enabled bool) *ErrorHandler {
	eh.suggestCommands = enabled
	return eh
}

// SuggestFlags enables/disables flag suggestions
func (eh *ErrorHandler) SuggestFlags(enabled bool) *ErrorHandler {
	eh.suggestFlags = enabled
	return eh
}

// MaxDistance sets the maximum edit distance for suggestions
func (eh *ErrorHandler) MaxDistance(distance int) *ErrorHandler {
	eh.maxDistance = distance
	return eh
}

// Handle registers a custom handler for a specific error type. It runs before
// suggestions are added and may return a replacement error.
func (eh *ErrorHandler) Handle(typ ErrorType, handler func(*ParseError) *ParseError) *ErrorHandler {
	eh.customHandlers[typ] = handler
	return eh
}

// Process applies custom handlers and fills in Suggestion when enabled.
func (eh *ErrorHandler) Process(err *ParseError) *ParseError {
	if handler, exists := eh.customHandlers[err.Type]; exists {
		if replaced := handler(err); replaced != nil {
			err = replaced
		}
	}

	if err.Suggestion != "" || err.Parser == nil {
		return err
	}

	switch err.Type { // exhaustive over ErrorType
	case ErrorTypeUnknownFlag:
		if eh.suggestFlags {
			err.Suggestion = eh.flagSuggestion(err)
		}
	case ErrorTypeUnknownCommand:
		if eh.suggestCommands {
			err.Suggestion = eh.commandSuggestion(err)
		}
	case ErrorTypeInvalidFlag, ErrorTypeInvalidValue, ErrorTypeMissingValue, ErrorTypeInvalidArgument:
		// No suggestions for these.
	}
	return err
}

func (eh *ErrorHandler) flagSuggestion(err *ParseError) string {
	p := err.Parser
	names := slices.Collect(maps.Keys(p.options))
	if p.helptext != "" {
		names = append(names, "help", "h")
	}
	if p.version != "" {
		names = append(names, "version", "v")
	}

	if best := fuzzy.Option(err.Flag, names, eh.maxDistance); best != "" {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}
	return ""
}

func (eh *ErrorHandler) commandSuggestion(err *ParseError) string {
	names := slices.Collect(maps.Keys(err.Parser.commands))
	if best := fuzzy.Command(err.Command, names, eh.maxDistance); best != "" {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}
	return ""
}
