package args

import (
	"errors"
	"reflect"

	"github.com/dzonerzy/go-args/middleware"
)

// ExitError is returned from a command callback to request a specific exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "exit"
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCodeDefaults holds common default codes.
type ExitCodeDefaults struct {
	Success         int // default: 0
	GeneralError    int // default: 1, also used for usage errors
	MisusageError   int // default: 2
	ValidationError int // default: 3
	TimeoutError    int // default: 124
	PermissionError int // default: 126
	NotFoundError   int // default: 127
}

func defaultExitDefaults() ExitCodeDefaults {
	return ExitCodeDefaults{
		Success:         0,
		GeneralError:    1,
		MisusageError:   2,
		ValidationError: 3,
		TimeoutError:    124,
		PermissionError: 126,
		NotFoundError:   127,
	}
}

// ExitCodeManager maps errors returned by Run to process exit codes.
type ExitCodeManager struct {
	codesByName map[string]int
	codesByType []typeCode
	codesByCLI  map[ErrorType]int
	defaults    ExitCodeDefaults
}

// typeCode is one DefineError mapping. Mappings are tried in registration order.
type typeCode struct {
	typ  reflect.Type
	code int
}

func newExitCodeManager() *ExitCodeManager {
	return &ExitCodeManager{
		codesByName: make(map[string]int),
		codesByCLI:  make(map[ErrorType]int),
		defaults:    defaultExitDefaults(),
	}
}

// Define registers a named exit code for documentation or lookup via Code.
// It does not affect resolution.
func (e *ExitCodeManager) Define(name string, code int) *ExitCodeManager {
	e.codesByName[name] = code
	return e
}

// Code returns a code registered with Define.
func (e *ExitCodeManager) Code(name string) (int, bool) {
	code, ok := e.codesByName[name]
	return code, ok
}

// DefineError maps a concrete error value (by its dynamic type) to an exit
// code. A matching type takes precedence over the defaults but is secondary
// to an ExitError returned by a callback. When an error chain matches several
// types, the one defined first wins; redefining a type keeps its position.
func (e *ExitCodeManager) DefineError(err error, code int) *ExitCodeManager {
	if err == nil {
		return e
	}
	t := reflect.TypeOf(err)
	for i := range e.codesByType {
		if e.codesByType[i].typ == t {
			e.codesByType[i].code = code
			return e
		}
	}
	e.codesByType = append(e.codesByType, typeCode{typ: t, code: code})
	return e
}

// DefineCLI overrides the exit code for one parse error category. Parse
// errors without a mapping exit with GeneralError.
func (e *ExitCodeManager) DefineCLI(typ ErrorType, code int) *ExitCodeManager {
	e.codesByCLI[typ] = code
	return e
}

// Default replaces the manager's default codes, including the codes used for
// middleware timeouts, validation failures and recovered panics.
func (e *ExitCodeManager) Default(d ExitCodeDefaults) *ExitCodeManager {
	e.defaults = d
	return e
}

// resolve converts an error to an exit code according to registered mappings.
// Precedence:
//  1. ExitError (requested code)
//  2. help and version requests (Success)
//  3. ParseError category mapping (DefineCLI)
//  4. Concrete error type mapping (DefineError), in registration order
//  5. Middleware errors (TimeoutError, ValidationError, RecoveryError)
//  6. GeneralError
func (e *ExitCodeManager) resolve(err error) int {
	if err == nil {
		return e.defaults.Success
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	if errors.Is(err, ErrHelp) || errors.Is(err, ErrVersion) {
		return e.defaults.Success
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if code, ok := e.codesByCLI[parseErr.Type]; ok {
			return code
		}
		return e.defaults.GeneralError
	}

	for _, tc := range e.codesByType {
		if errors.As(err, reflect.New(tc.typ).Interface()) {
			return tc.code
		}
	}

	var (
		timeoutErr    *middleware.TimeoutError
		validationErr *middleware.ValidationError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return e.defaults.TimeoutError
	case errors.As(err, &validationErr):
		return e.defaults.ValidationError
	}
	// Recovered panics and everything else.
	return e.defaults.GeneralError
}
