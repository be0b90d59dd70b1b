package middleware

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// MockContext implements Context for testing
type MockContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	args     []string
	command  *MockCommand
	values   map[string]any
	metadata map[string]any
}

func NewMockContext() *MockContext {
	ctx, cancel := context.WithCancel(context.Background())
	return &MockContext{
		ctx:      ctx,
		cancel:   cancel,
		command:  &MockCommand{name: "test", description: "test command"},
		values:   make(map[string]any),
		metadata: make(map[string]any),
	}
}

func (m *MockContext) Context() context.Context  { return m.ctx }
func (m *MockContext) Done() <-chan struct{}     { return m.ctx.Done() }
func (m *MockContext) Cancel()                   { m.cancel() }
func (m *MockContext) Args() []string            { return m.args }
func (m *MockContext) Command() Command          { return m.command }
func (m *MockContext) Set(key string, value any) { m.metadata[key] = value }
func (m *MockContext) Get(key string) any        { return m.metadata[key] }
func (m *MockContext) Value(name string) any     { return m.values[name] }

func (m *MockContext) Found(name string) bool {
	_, ok := m.values[name]
	return ok
}

func (m *MockContext) SetValue(name string, value any) { m.values[name] = value }
func (m *MockContext) SetArgs(args []string)           { m.args = args }

type MockCommand struct {
	name        string
	description string
}

func (m *MockCommand) Name() string        { return m.name }
func (m *MockCommand) Description() string { return m.description }

func successAction(Context) error { return nil }
func errorAction(Context) error   { return errors.New("test error") }
func panicAction(Context) error   { panic("test panic") }

func slowAction(ctx Context) error {
	select {
	case <-time.After(200 * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Context().Err()
	}
}

func TestMiddlewareChain(t *testing.T) {
	var order []string
	trace := func(name string) Middleware {
		return func(next ActionFunc) ActionFunc {
			return func(ctx Context) error {
				order = append(order, name+">")
				err := next(ctx)
				order = append(order, "<"+name)
				return err
			}
		}
	}

	chain := Chain(trace("a"), trace("b"))
	extended := chain.Use(trace("c"))
	if len(chain) != 2 || len(extended) != 3 {
		t.Fatalf("Use must not modify the receiver: %d, %d", len(chain), len(extended))
	}

	if err := extended.Apply(successAction)(NewMockContext()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "a> b> c> <c <b <a"
	if got := strings.Join(order, " "); got != want {
		t.Errorf("order = %q, want %q", got, want)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewMockContext()
	ctx.SetArgs([]string{"a1", "a b"})

	if err := LoggerWithWriter(&buf)(successAction)(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"level=info", "command=test", "outcome=ok", `args=[a1 "a b"]`} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestLoggerWithError(t *testing.T) {
	var buf bytes.Buffer
	err := LoggerWithWriter(&buf, WithoutArgs())(errorAction)(NewMockContext())
	if err == nil || err.Error() != "test error" {
		t.Fatalf("expected test error, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "level=error") || !strings.Contains(out, `error="test error"`) {
		t.Errorf("unexpected log line: %q", out)
	}
	if strings.Contains(out, "args=") {
		t.Errorf("args should be omitted: %q", out)
	}
}

func TestLoggerOutcomes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", &ValidationError{Message: "bad"}, "level=warn command=test outcome=invalid"},
		{"timeout", &TimeoutError{Command: "test", Duration: time.Second}, "level=error command=test outcome=timeout"},
		{"panic", &RecoveryError{Command: "test", Panic: "x"}, "level=error command=test outcome=panic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			action := func(Context) error { return tt.err }
			_ = LoggerWithWriter(&buf)(action)(NewMockContext())
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("log %q missing %q", buf.String(), tt.want)
			}
		})
	}
}

func TestLoggerReadsRequestIDAfterRun(t *testing.T) {
	var buf bytes.Buffer
	tag := func(next ActionFunc) ActionFunc {
		return func(ctx Context) error {
			ctx.Set("request_id", "r-7")
			return next(ctx)
		}
	}
	_ = Chain(LoggerWithWriter(&buf), tag).Apply(successAction)(NewMockContext())
	if !strings.Contains(buf.String(), "request_id=r-7") {
		t.Errorf("log %q missing request id", buf.String())
	}
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level LogLevel
		act   ActionFunc
		lines int
	}{
		{"none", LogLevelNone, successAction, 0},
		{"error level skips success", LogLevelError, successAction, 0},
		{"error level logs errors", LogLevelError, errorAction, 1},
		{"debug logs start and end", LogLevelDebug, successAction, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			_ = LoggerWithWriter(&buf, WithLogLevel(tt.level))(tt.act)(NewMockContext())
			if got := strings.Count(buf.String(), "\n"); got != tt.lines {
				t.Errorf("got %d lines, want %d: %q", got, tt.lines, buf.String())
			}
		})
	}
}

func TestLoggerConstructors(t *testing.T) {
	for _, mw := range []Middleware{DebugLogger(), JSONLogger(), SilentLogger()} {
		if mw == nil {
			t.Fatal("constructor returned nil middleware")
		}
	}
	if err := SilentLogger()(successAction)(NewMockContext()); err != nil {
		t.Fatalf("silent logger changed the result: %v", err)
	}
	if LogLevelWarn.String() != "warn" || LogLevel(9).String() != "LogLevel(9)" {
		t.Fatalf("unexpected level names")
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	err := Recovery(WithWriter(&buf))(panicAction)(NewMockContext())

	var recoveryErr *RecoveryError
	if !errors.As(err, &recoveryErr) {
		t.Fatalf("expected RecoveryError, got %T", err)
	}
	if recoveryErr.Panic != "test panic" || recoveryErr.Command != "test" {
		t.Errorf("unexpected recovery error: %+v", recoveryErr)
	}
	if len(recoveryErr.Stack) == 0 {
		t.Error("expected a captured stack")
	}
	if !strings.Contains(buf.String(), "PANIC in command 'test': test panic") {
		t.Errorf("expected panic banner, got %q", buf.String())
	}
	if recoveryErr.Error() != "command 'test' panicked: test panic" {
		t.Errorf("Error() = %q", recoveryErr.Error())
	}
}

func TestRecoveryToError(t *testing.T) {
	err := RecoveryToError()(panicAction)(NewMockContext())
	var recoveryErr *RecoveryError
	if !errors.As(err, &recoveryErr) {
		t.Fatalf("expected RecoveryError, got %v", err)
	}
	if recoveryErr.Stack != nil {
		t.Error("stack should not be captured when traces are disabled")
	}
}

func TestRecoveryWithHandlerAndStats(t *testing.T) {
	sentinel := errors.New("handled")
	err := RecoveryWithHandler(func(p any, command string, _ []byte) error {
		if p != "test panic" || command != "test" {
			t.Errorf("handler got %v, %q", p, command)
		}
		return sentinel
	})(panicAction)(NewMockContext())
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected handler error, got %v", err)
	}

	stats := NewRecoveryStats()
	mw := RecoveryWithStats(stats)
	_ = mw(panicAction)(NewMockContext())
	_ = mw(panicAction)(NewMockContext())
	if stats.TotalPanics != 2 || stats.CommandPanics["test"] != 2 || stats.LastPanic == nil {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestNoopRecovery(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected the panic to propagate")
		}
	}()
	_ = NoopRecovery()(panicAction)(NewMockContext())
}

func TestTimeout(t *testing.T) {
	ctx := NewMockContext()
	err := Timeout(20 * time.Millisecond)(slowAction)(ctx)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if timeoutErr.Command != "test" || timeoutErr.Duration != 20*time.Millisecond {
		t.Errorf("unexpected timeout error: %+v", timeoutErr)
	}
	select {
	case <-ctx.Done():
	default:
		t.Error("timeout should cancel the callback context")
	}
}

func TestTimeoutSuccessAndPanic(t *testing.T) {
	if err := Timeout(time.Second)(successAction)(NewMockContext()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var recoveryErr *RecoveryError
	if err := Timeout(time.Second)(panicAction)(NewMockContext()); !errors.As(err, &recoveryErr) {
		t.Fatalf("expected panic to become RecoveryError, got %v", err)
	}
}

func TestTimeoutExternalCancel(t *testing.T) {
	ctx := NewMockContext()
	ctx.Cancel()
	err := Timeout(time.Second)(func(Context) error {
		time.Sleep(50 * time.Millisecond)
		return nil
	})(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTimeoutVariants(t *testing.T) {
	var fired atomic.Bool
	err := TimeoutWithCallback(10*time.Millisecond, func(command string, d time.Duration) {
		fired.Store(command == "test" && d == 10*time.Millisecond)
	})(slowAction)(NewMockContext())
	if err == nil || !fired.Load() {
		t.Fatalf("expected callback timeout, err=%v fired=%v", err, fired.Load())
	}

	perCommand := TimeoutPerCommand(map[string]time.Duration{"test": 10 * time.Millisecond}, time.Minute)
	var timeoutErr *TimeoutError
	if err := perCommand(slowAction)(NewMockContext()); !errors.As(err, &timeoutErr) {
		t.Fatalf("expected per-command timeout, got %v", err)
	}

	if err := TimeoutWithDefault(WithTimeout(time.Second))(successAction)(NewMockContext()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := NoTimeout()(slowAction)(NewMockContext()); err != nil {
		t.Fatalf("NoTimeout should let the action finish: %v", err)
	}
	if err := DynamicTimeout(func(Context) time.Duration { return 0 })(slowAction)(NewMockContext()); err != nil {
		t.Fatalf("zero duration should disable the timeout: %v", err)
	}
}

func TestTimeoutFromOption(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		expired bool
	}{
		{"duration string", "10ms", true},
		{"duration value", 10 * time.Millisecond, true},
		{"float seconds", 0.01, true},
		{"int seconds", 5, false},
		{"unset uses default", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewMockContext()
			if tt.value != nil {
				ctx.SetValue("timeout", tt.value)
			}
			err := TimeoutFromOption("timeout", time.Minute)(slowAction)(ctx)
			var timeoutErr *TimeoutError
			if got := errors.As(err, &timeoutErr); got != tt.expired {
				t.Fatalf("expired = %v, want %v (err=%v)", got, tt.expired, err)
			}
		})
	}
}

func TestRequireFound(t *testing.T) {
	ctx := NewMockContext()
	ctx.SetValue("output", "out.txt")

	mw := Validate(Required("output", "input", "level"))
	err := mw(successAction)(ctx)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Message != "missing required option(s): input, level" {
		t.Errorf("Message = %q", validationErr.Message)
	}

	ctx.SetValue("input", "in.txt")
	ctx.SetValue("level", 3)
	if err := mw(successAction)(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireArgs(t *testing.T) {
	tests := []struct {
		args    []string
		min     int
		max     int
		wantErr bool
	}{
		{nil, 1, -1, true},
		{[]string{"a"}, 1, -1, false},
		{[]string{"a", "b", "c"}, 0, 2, true},
		{[]string{"a", "b"}, 0, 2, false},
	}
	for _, tt := range tests {
		ctx := NewMockContext()
		ctx.SetArgs(tt.args)
		err := RequireArgs(tt.min, tt.max)(ctx)
		if (err != nil) != tt.wantErr {
			t.Errorf("RequireArgs(%d, %d) on %v: err = %v", tt.min, tt.max, tt.args, err)
		}
	}
}

func TestCustomValidatorWrapsErrors(t *testing.T) {
	cause := errors.New("port out of range")
	mw := Validate(Custom("port_range", func(Context) error { return cause }))

	err := mw(successAction)(NewMockContext())
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Field != "port_range" || !errors.Is(err, cause) {
		t.Errorf("unexpected error: %+v", validationErr)
	}
	if err.Error() != "validation failed: port out of range" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidatorOrdering(t *testing.T) {
	var order []string
	record := func(name string) ValidatorFunc {
		return func(Context) error {
			order = append(order, name)
			return nil
		}
	}

	mw := Validator(WithCustomValidators(map[string]ValidatorFunc{
		"b": record("b"),
		"a": record("a"),
		"c": record("c"),
	}))
	if err := mw(successAction)(NewMockContext()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(order, ""); got != "abc" {
		t.Errorf("validators ran in order %q, want abc", got)
	}
}

func TestFileSystemValidator(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		values  map[string]any
		wantErr bool
	}{
		{"existing paths", map[string]any{"input": file, "workdir": dir}, false},
		{"unset options are skipped", map[string]any{}, false},
		{"missing file", map[string]any{"input": filepath.Join(dir, "nope")}, true},
		{"directory given as file", map[string]any{"input": dir}, true},
		{"file given as directory", map[string]any{"workdir": file}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewMockContext()
			for k, v := range tt.values {
				ctx.SetValue(k, v)
			}
			err := FileSystemValidator([]string{"input"}, []string{"workdir"})(successAction)(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConditionalRequired(t *testing.T) {
	whenVerbose := func(ctx Context) error {
		if ctx.Found("verbose") {
			return nil
		}
		return errors.New("not verbose")
	}
	validator := ConditionalRequired(whenVerbose, "logfile")

	ctx := NewMockContext()
	if err := validator(ctx); err != nil {
		t.Fatalf("condition not met, expected nil, got %v", err)
	}

	ctx.SetValue("verbose", true)
	if err := validator(ctx); err == nil {
		t.Fatal("expected logfile to be required")
	}

	ctx.SetValue("logfile", "run.log")
	if err := validator(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNoopValidator(t *testing.T) {
	if err := NoopValidator()(errorAction)(NewMockContext()); err == nil || err.Error() != "test error" {
		t.Fatalf("expected action error to pass through, got %v", err)
	}
}

func TestMiddlewareIntegration(t *testing.T) {
	var buf bytes.Buffer
	chain := Chain(
		LoggerWithWriter(&buf),
		RecoveryToError(),
		Timeout(time.Second),
		Validate(Required("name")),
	)

	ctx := NewMockContext()
	ctx.SetValue("name", "demo")
	if err := chain.Apply(successAction)(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := chain.Apply(panicAction)(ctx)
	var recoveryErr *RecoveryError
	if !errors.As(err, &recoveryErr) {
		t.Fatalf("expected RecoveryError through the chain, got %v", err)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Errorf("expected one log line per invocation, got %q", buf.String())
	}
}
