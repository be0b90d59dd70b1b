package middleware

import (
	"fmt"
	"runtime"
	"sync"
)

// Recovery creates a middleware that turns a panicking callback into a
// *RecoveryError so the parse returns an error instead of crashing.
func Recovery(options ...MiddlewareOption) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}

	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					recoveryErr := &RecoveryError{
						Panic:   r,
						Command: getCommandName(ctx),
						Stack:   captureStack(config),
					}
					if w := outputWriter(config); w != nil && config.PrintStack && len(recoveryErr.Stack) > 0 {
						fmt.Fprintf(w, "PANIC in command '%s': %v\n", recoveryErr.Command, r)
						fmt.Fprintf(w, "Stack trace:\n%s\n", recoveryErr.Stack)
					}
					err = recoveryErr
				}
			}()

			return next(ctx)
		}
	}
}

// RecoveryWithHandler creates a recovery middleware with a custom panic handler
func RecoveryWithHandler(
	handler func(panicVal any, command string, stack []byte) error,
	options ...MiddlewareOption,
) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}

	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = handler(r, getCommandName(ctx), captureStack(config))
				}
			}()

			return next(ctx)
		}
	}
}

// RecoveryToError converts panics to errors without printing stack traces.
func RecoveryToError() Middleware {
	return Recovery(WithStackTrace(false))
}

// NoopRecovery lets panics propagate.
func NoopRecovery() Middleware {
	return func(next ActionFunc) ActionFunc {
		return next
	}
}

// RecoveryStats tracks recovered panics per command. Safe for concurrent use.
type RecoveryStats struct {
	mu            sync.Mutex
	TotalPanics   int
	CommandPanics map[string]int
	LastPanic     *RecoveryError
}

// NewRecoveryStats creates a new recovery statistics tracker
func NewRecoveryStats() *RecoveryStats {
	return &RecoveryStats{
		CommandPanics: make(map[string]int),
	}
}

func (s *RecoveryStats) record(e *RecoveryError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalPanics++
	s.CommandPanics[e.Command]++
	s.LastPanic = e
}

// RecoveryWithStats recovers like RecoveryToError and records each panic.
func RecoveryWithStats(stats *RecoveryStats, options ...MiddlewareOption) Middleware {
	options = append([]MiddlewareOption{WithStackTrace(false)}, options...)
	return RecoveryWithHandler(func(panicVal any, command string, stack []byte) error {
		e := &RecoveryError{Panic: panicVal, Command: command, Stack: stack}
		stats.record(e)
		return e
	}, options...)
}

func captureStack(config *MiddlewareConfig) []byte {
	if !config.PrintStack || config.StackSize <= 0 {
		return nil
	}
	stack := make([]byte, config.StackSize)
	return stack[:runtime.Stack(stack, false)]
}
