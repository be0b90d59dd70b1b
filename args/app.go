package args

import (
	"context"
	"errors"
	"os"

	argsio "github.com/dzonerzy/go-args/io"
	"github.com/dzonerzy/go-args/middleware"
)

// App drives a root Parser: it prints help and version text, reports errors
// on the error stream and maps the result to an exit code.
type App struct {
	root         *Parser
	ioManager    *argsio.IOManager
	logger       *argsio.Logger
	errorHandler *ErrorHandler
	exitCodes    *ExitCodeManager
}

// NewApp creates a driver for root bound to process stdio.
func NewApp(root *Parser) *App {
	a := &App{
		root:         root,
		errorHandler: NewErrorHandler(),
	}
	return a.WithIO(argsio.New())
}

// WithIO replaces the IO manager used for help, version and error output.
func (a *App) WithIO(m *argsio.IOManager) *App {
	a.ioManager = m
	a.logger = argsio.NewLogger(m)
	return a
}

// IO returns the IO manager.
func (a *App) IO() *argsio.IOManager { return a.ioManager }

// Parser returns the root parser.
func (a *App) Parser() *Parser { return a.root }

// ErrorHandler returns the handler that adds suggestions to parse errors.
func (a *App) ErrorHandler() *ErrorHandler { return a.errorHandler }

// ExitCodes returns the exit-code manager for this app. Use it to override
// defaults or register custom mappings. Resolution precedence is:
// ExitError > help/version > CLI category (DefineCLI) > concrete error type (DefineError) > defaults.
func (a *App) ExitCodes() *ExitCodeManager {
	if a.exitCodes == nil {
		a.exitCodes = newExitCodeManager()
	}
	return a.exitCodes
}

// Use adds middleware around every command callback.
func (a *App) Use(mw ...middleware.Middleware) *App {
	a.root.Use(mw...)
	return a
}

// Run runs the application with os.Args[1:].
func (a *App) Run() error {
	return a.RunContext(context.Background())
}

// RunContext runs the application with a context for cancellation
func (a *App) RunContext(ctx context.Context) error {
	return a.RunWithArgs(ctx, os.Args[1:])
}

// RunWithArgs parses args and performs the output the result calls for.
// Help and version text go to the output stream; failures are printed as
// "Error: <message>." on the error stream. The parse error is returned
// unchanged so callers can inspect it.
func (a *App) RunWithArgs(ctx context.Context, args []string) error {
	err := a.root.ParseContext(ctx, args)
	if err == nil {
		return nil
	}

	var (
		help     *HelpRequest
		version  *VersionRequest
		parseErr *ParseError
		exitErr  *ExitError
	)
	switch {
	case errors.As(err, &help):
		a.logger.Text(help.Parser.HelpText())
	case errors.As(err, &version):
		a.logger.Text(version.Parser.Version())
	case errors.As(err, &parseErr):
		parseErr = a.errorHandler.Process(parseErr)
		a.logger.Error(parseErr.Message, parseErr.Suggestion)
	case errors.As(err, &exitErr) && exitErr.Err == nil:
		// Silent exit with a chosen code.
	default:
		a.logger.Error(err.Error(), "")
	}
	return err
}

// ExitCode maps an error returned by Run to a process exit code.
func (a *App) ExitCode(err error) int {
	return a.ExitCodes().resolve(err)
}

// RunAndGetExitCode executes the app and returns the mapped exit code according
// to ExitCodes(). Useful for embedding in your own main() without os.Exit.
func (a *App) RunAndGetExitCode() int {
	return a.ExitCode(a.Run())
}

// RunAndExit executes the app and terminates the process with the mapped exit
// code. Equivalent to os.Exit(a.RunAndGetExitCode()).
func (a *App) RunAndExit() {
	os.Exit(a.RunAndGetExitCode())
}
