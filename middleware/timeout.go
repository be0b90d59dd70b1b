package middleware

import (
	"context"
	"time"
)

// Timeout creates a middleware that enforces a timeout on a command callback.
// On expiry the callback context is cancelled and a *TimeoutError returned; the
// callback goroutine is not killed and should watch ctx.Done().
func Timeout(duration time.Duration) Middleware {
	return timeoutMiddleware(func(Context) time.Duration { return duration }, nil)
}

// TimeoutWithDefault creates a timeout middleware with the default timeout from config
func TimeoutWithDefault(options ...MiddlewareOption) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}
	return Timeout(config.DefaultTimeout)
}

// TimeoutPerCommand creates a timeout middleware with different timeouts per
// command alias. Aliases missing from commandTimeouts use defaultTimeout.
func TimeoutPerCommand(commandTimeouts map[string]time.Duration, defaultTimeout time.Duration) Middleware {
	return DynamicTimeout(func(ctx Context) time.Duration {
		if timeout, ok := commandTimeouts[getCommandName(ctx)]; ok {
			return timeout
		}
		return defaultTimeout
	})
}

// TimeoutWithCallback creates a timeout middleware that calls onTimeout when the
// command exceeds duration. The callback runs after the timeout is reached.
func TimeoutWithCallback(duration time.Duration, onTimeout func(command string, duration time.Duration)) Middleware {
	return timeoutMiddleware(func(Context) time.Duration { return duration }, onTimeout)
}

// DynamicTimeout creates a timeout middleware where duration is computed at
// runtime from the Context. If the computed duration is <= 0, the action runs
// without a timeout.
func DynamicTimeout(timeoutFunc func(ctx Context) time.Duration) Middleware {
	return timeoutMiddleware(timeoutFunc, nil)
}

// TimeoutFromOption reads the timeout from a parsed option. Int and float
// values are seconds, strings use time.ParseDuration, and time.Duration values
// from custom converters are used as-is. Anything else falls back to
// defaultTimeout.
func TimeoutFromOption(name string, defaultTimeout time.Duration) Middleware {
	return DynamicTimeout(func(ctx Context) time.Duration {
		switch v := ctx.Value(name).(type) {
		case time.Duration:
			return v
		case int:
			return time.Duration(v) * time.Second
		case float64:
			return time.Duration(v * float64(time.Second))
		case string:
			if d, err := time.ParseDuration(v); err == nil {
				return d
			}
		}
		return defaultTimeout
	})
}

// NoTimeout creates a middleware that doesn't enforce any timeout
func NoTimeout() Middleware {
	return func(next ActionFunc) ActionFunc {
		return next
	}
}

func timeoutMiddleware(
	timeoutFunc func(ctx Context) time.Duration,
	onTimeout func(command string, duration time.Duration),
) Middleware {
	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) error {
			duration := timeoutFunc(ctx)
			if duration <= 0 {
				return next(ctx)
			}

			timeoutCtx, cancel := context.WithTimeout(ctx.Context(), duration)
			defer cancel()

			resultChan := make(chan error, 1)
			go func() {
				defer func() {
					if r := recover(); r != nil {
						resultChan <- &RecoveryError{
							Panic:   r,
							Command: getCommandName(ctx),
						}
					}
				}()
				resultChan <- next(ctx)
			}()

			select {
			case err := <-resultChan:
				return err
			case <-ctx.Done():
				return ctx.Context().Err()
			case <-timeoutCtx.Done():
				if err := ctx.Context().Err(); err != nil {
					return err
				}
				command := getCommandName(ctx)
				if onTimeout != nil {
					onTimeout(command, duration)
				}
				ctx.Cancel()
				return &TimeoutError{
					Duration: duration,
					Command:  command,
				}
			}
		}
	}
}
