package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dzonerzy/go-args/internal/pool"
)

// outcome classifies how a command callback finished.
type outcome string

const (
	outcomeStart   outcome = "start"
	outcomeOK      outcome = "ok"
	outcomeError   outcome = "error"
	outcomeInvalid outcome = "invalid"
	outcomeTimeout outcome = "timeout"
	outcomePanic   outcome = "panic"
)

func classify(err error) outcome {
	var (
		timeoutErr    *TimeoutError
		recoveryErr   *RecoveryError
		validationErr *ValidationError
	)
	switch {
	case err == nil:
		return outcomeOK
	case errors.As(err, &timeoutErr):
		return outcomeTimeout
	case errors.As(err, &recoveryErr):
		return outcomePanic
	case errors.As(err, &validationErr):
		return outcomeInvalid
	default:
		return outcomeError
	}
}

// level is the least verbose LogLevel that still prints this outcome.
func (o outcome) level() LogLevel {
	switch o {
	case outcomeStart:
		return LogLevelDebug
	case outcomeOK:
		return LogLevelInfo
	case outcomeInvalid:
		return LogLevelWarn
	default:
		return LogLevelError
	}
}

// record is one log line about one callback run.
type record struct {
	start     time.Time
	command   string
	args      []string
	outcome   outcome
	duration  time.Duration
	err       error
	requestID string
}

var lineBuffers = pool.NewPoolWithReset(
	func() *bytes.Buffer { return new(bytes.Buffer) },
	func(b *bytes.Buffer) { b.Reset() },
)

// Logger creates a middleware that logs one line per command callback: the
// alias the user typed, its positional arguments, how it finished and how
// long it took. A "request_id" stored with Set by any middleware is included.
//
// Successful runs log at LogLevelInfo, validation failures at LogLevelWarn,
// other failures at LogLevelError. LogLevelDebug adds a line when the
// callback starts.
func Logger(options ...MiddlewareOption) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}

	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) error {
			w := outputWriter(config)
			if config.LogLevel == LogLevelNone || w == nil {
				return next(ctx)
			}

			rec := record{
				start:   time.Now(),
				command: getCommandName(ctx),
				outcome: outcomeStart,
			}
			if config.IncludeArgs {
				rec.args = ctx.Args()
			}
			emit(w, config, &rec)

			err := next(ctx)

			rec.duration = time.Since(rec.start)
			rec.outcome = classify(err)
			rec.err = err
			if id, ok := ctx.Get("request_id").(string); ok {
				rec.requestID = id
			}
			emit(w, config, &rec)
			return err
		}
	}
}

func emit(w io.Writer, config *MiddlewareConfig, rec *record) {
	if rec.outcome.level() > config.LogLevel {
		return
	}

	buf := lineBuffers.Get()
	defer lineBuffers.Put(buf)

	if config.LogFormat == LogFormatJSON {
		writeJSONLine(buf, rec)
	} else {
		writeTextLine(buf, rec)
	}

	//nolint:errcheck,gosec // Logging is best-effort; ignore write errors.
	w.Write(buf.Bytes())
}

// writeTextLine renders rec as logfmt key=value pairs.
func writeTextLine(buf *bytes.Buffer, rec *record) {
	buf.WriteString(rec.start.Format(time.RFC3339))
	writeField(buf, "level", rec.outcome.level().String())
	writeField(buf, "command", rec.command)
	writeField(buf, "outcome", string(rec.outcome))
	if rec.outcome != outcomeStart {
		writeField(buf, "duration", rec.duration.String())
	}
	if len(rec.args) > 0 {
		buf.WriteString(" args=[")
		for i, arg := range rec.args {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(logfmtValue(arg))
		}
		buf.WriteByte(']')
	}
	if rec.err != nil {
		writeField(buf, "error", rec.err.Error())
	}
	if rec.requestID != "" {
		writeField(buf, "request_id", rec.requestID)
	}
	buf.WriteByte('\n')
}

func writeField(buf *bytes.Buffer, key, value string) {
	buf.WriteByte(' ')
	buf.WriteString(key)
	buf.WriteByte('=')
	buf.WriteString(logfmtValue(value))
}

// logfmtValue quotes v when it would not survive as a bare logfmt value.
func logfmtValue(v string) string {
	if v == "" || strings.ContainsAny(v, " =\"\\\t\r\n[]") {
		return strconv.Quote(v)
	}
	return v
}

type jsonLine struct {
	Timestamp  string            `json:"timestamp"`
	Level      string            `json:"level"`
	Command    string            `json:"command"`
	Outcome    string            `json:"outcome"`
	DurationMS int64             `json:"duration_ms,omitempty"`
	Args       []string          `json:"args,omitempty"`
	Error      string            `json:"error,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

func writeJSONLine(buf *bytes.Buffer, rec *record) {
	line := jsonLine{
		Timestamp:  rec.start.Format(time.RFC3339),
		Level:      rec.outcome.level().String(),
		Command:    rec.command,
		Outcome:    string(rec.outcome),
		DurationMS: rec.duration.Milliseconds(),
		Args:       rec.args,
	}
	if rec.err != nil {
		line.Error = rec.err.Error()
	}
	if rec.requestID != "" {
		line.Metadata = map[string]string{"request_id": rec.requestID}
	}
	// Encode appends the newline.
	_ = json.NewEncoder(buf).Encode(line)
}

func getLogWriter(output LogOutput) io.Writer {
	switch output {
	case LogOutputStdout:
		return os.Stdout
	case LogOutputNone:
		return nil
	default:
		return os.Stderr
	}
}

// LoggerWithWriter creates a logger middleware that writes to a specific writer
func LoggerWithWriter(writer io.Writer, options ...MiddlewareOption) Middleware {
	return Logger(append(options, WithWriter(writer))...)
}

// DebugLogger also logs when each callback starts.
func DebugLogger() Middleware {
	return Logger(WithLogLevel(LogLevelDebug))
}

// JSONLogger creates a logger that outputs JSON format
func JSONLogger() Middleware {
	return Logger(WithLogFormat(LogFormatJSON))
}

// SilentLogger creates a logger that doesn't output anything (useful for testing)
func SilentLogger() Middleware {
	return Logger(func(config *MiddlewareConfig) {
		config.LogOutput = LogOutputNone
	})
}
