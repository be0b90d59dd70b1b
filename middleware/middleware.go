// Package middleware wraps go-args command callbacks: Logger, Recovery,
// Timeout and Validator.
package middleware

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"
)

// The args package imports this one; *args.Parser callbacks are adapted to
// ActionFunc and their invocation state satisfies Context.

// Context describes the command invocation a middleware wraps. It is
// implemented by the args package for every matched command that has a
// callback.
type Context interface {
	// Context returns the context the callback runs under. Timeout cancels it.
	Context() context.Context

	// Done is shorthand for Context().Done().
	Done() <-chan struct{}

	// Cancel cancels the callback context. Idempotent.
	Cancel()

	// Command describes the matched command.
	Command() Command

	// Args returns the positional arguments collected by the command parser.
	Args() []string

	// Found reports whether the named flag or option appeared on the command
	// line. Unregistered names report false.
	Found(name string) bool

	// Value returns the current value of the named flag or option, or nil for
	// an unregistered name.
	Value(name string) any

	// Set stores a key/value pair shared between middleware.
	Set(key string, value any)

	// Get retrieves a value previously stored via Set, or nil.
	Get(key string) any
}

// Command identifies the matched command. Name is the alias the user typed.
type Command interface {
	Name() string
	Description() string
}

// ActionFunc represents command action function signature
type ActionFunc func(ctx Context) error

// Middleware defines the middleware function signature
type Middleware func(next ActionFunc) ActionFunc

// MiddlewareChain represents a chain of middleware functions
type MiddlewareChain []Middleware

// Apply applies the middleware chain to an ActionFunc. Middleware are wrapped
// in the order they appear in the chain.
func (chain MiddlewareChain) Apply(action ActionFunc) ActionFunc {
	for i := len(chain) - 1; i >= 0; i-- {
		action = chain[i](action)
	}
	return action
}

// Use returns a new chain with the provided middleware appended.
func (chain MiddlewareChain) Use(middleware ...Middleware) MiddlewareChain {
	out := make(MiddlewareChain, 0, len(chain)+len(middleware))
	out = append(out, chain...)
	return append(out, middleware...)
}

// Chain creates a new middleware chain from the provided middleware, preserving
// order.
func Chain(middleware ...Middleware) MiddlewareChain {
	return MiddlewareChain(middleware)
}

// Error types for middleware

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Value   any
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// TimeoutError represents a timeout error
type TimeoutError struct {
	Duration time.Duration
	Command  string
}

func (e *TimeoutError) Error() string {
	return "command '" + e.Command + "' timed out after " + e.Duration.String()
}

// RecoveryError represents a panic recovery
type RecoveryError struct {
	Panic   any
	Command string
	Stack   []byte
}

func (e *RecoveryError) Error() string {
	return "command '" + e.Command + "' panicked: " + toString(e.Panic)
}

// Configuration types

// MiddlewareConfig contains configuration for middleware behavior
type MiddlewareConfig struct {
	LogLevel         LogLevel
	LogOutput        LogOutput
	LogFormat        LogFormat
	Writer           io.Writer // overrides LogOutput when set
	IncludeArgs      bool
	PrintStack       bool
	StackSize        int
	DefaultTimeout   time.Duration
	CustomValidators map[string]ValidatorFunc
}

// LogLevel represents logging levels
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelNone:
		return "none"
	case LogLevelError:
		return "error"
	case LogLevelWarn:
		return "warn"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	default:
		return "LogLevel(" + strconv.Itoa(int(l)) + ")"
	}
}

// LogOutput represents log output destinations
type LogOutput int

const (
	LogOutputStderr LogOutput = iota
	LogOutputStdout
	LogOutputNone
)

// LogFormat represents log formats
type LogFormat int

const (
	LogFormatText LogFormat = iota
	LogFormatJSON
)

// Configuration options

type MiddlewareOption func(config *MiddlewareConfig)

func DefaultConfig() *MiddlewareConfig {
	return &MiddlewareConfig{
		LogLevel:         LogLevelInfo,
		LogOutput:        LogOutputStderr,
		LogFormat:        LogFormatText,
		IncludeArgs:      true,
		PrintStack:       true,
		StackSize:        4096,
		DefaultTimeout:   30 * time.Second,
		CustomValidators: make(map[string]ValidatorFunc),
	}
}

func WithLogLevel(level LogLevel) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogLevel = level
	}
}

func WithTimeout(timeout time.Duration) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.DefaultTimeout = timeout
	}
}

func WithStackTrace(enabled bool) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.PrintStack = enabled
	}
}

// WithWriter sends log lines and panic traces to w.
func WithWriter(w io.Writer) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.Writer = w
	}
}

// WithLogFormat selects text or JSON log lines.
func WithLogFormat(format LogFormat) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogFormat = format
	}
}

// WithoutArgs omits positional arguments from log lines.
func WithoutArgs() MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.IncludeArgs = false
	}
}

// Utility functions

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

// outputWriter resolves where log lines and panic traces go.
func outputWriter(config *MiddlewareConfig) io.Writer {
	if config.Writer != nil {
		return config.Writer
	}
	return getLogWriter(config.LogOutput)
}

func getCommandName(ctx Context) string {
	cmd := ctx.Command()
	if cmd == nil {
		return "unknown"
	}
	return cmd.Name()
}
