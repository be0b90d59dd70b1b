package middleware

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ValidatorFunc validates a command invocation after parsing and before the
// callback runs. Use it for rules the parser does not know about: required
// options, argument counts, file system checks.
type ValidatorFunc func(ctx Context) error

// Validator creates a middleware that runs the validators registered through
// WithCustomValidators, in name order.
func Validator(options ...MiddlewareOption) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}
	return ValidatorWithCustom(config.CustomValidators)
}

// ValidatorWithCustom composes a middleware that runs the provided named
// validators before the action, in name order. The map key is used in error
// reporting.
func ValidatorWithCustom(validators map[string]ValidatorFunc) Middleware {
	named := make([]NamedValidator, 0, len(validators))
	for name, fn := range validators {
		named = append(named, NamedValidator{Name: name, Fn: fn})
	}
	sort.Slice(named, func(i, j int) bool { return named[i].Name < named[j].Name })
	return Validate(named...)
}

// NamedValidator associates a human-readable name with a ValidatorFunc for
// clearer error reporting and easier composition.
type NamedValidator struct {
	Name string
	Fn   ValidatorFunc
}

// Custom wraps an arbitrary ValidatorFunc with a name for reporting.
func Custom(name string, fn ValidatorFunc) NamedValidator {
	return NamedValidator{Name: name, Fn: fn}
}

// Required returns a NamedValidator for RequireFound.
func Required(names ...string) NamedValidator {
	return NamedValidator{Name: "required", Fn: RequireFound(names...)}
}

// File returns a NamedValidator that ensures the given options name existing files.
func File(names ...string) NamedValidator {
	return NamedValidator{Name: "file_exists", Fn: FileExists(names...)}
}

// Dir returns a NamedValidator that ensures the given options name existing directories.
func Dir(names ...string) NamedValidator {
	return NamedValidator{Name: "directory_exists", Fn: DirectoryExists(names...)}
}

// Validate composes a set of NamedValidators into a single Middleware. They
// run in order and the first failure stops the callback.
//
// Example:
//
//	cmd.Use(middleware.Validate(
//	    middleware.Required("output"),
//	    middleware.File("input"),
//	))
func Validate(validators ...NamedValidator) Middleware {
	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) error {
			for _, v := range validators {
				if v.Name == "" || v.Fn == nil {
					continue
				}
				if err := v.Fn(ctx); err != nil {
					validationErr := &ValidationError{}
					if errors.As(err, &validationErr) {
						return validationErr
					}
					return &ValidationError{
						Field:   v.Name,
						Message: "validation failed",
						Cause:   err,
					}
				}
			}
			return next(ctx)
		}
	}
}

// RequireFound fails unless every named flag or option appeared on the
// command line.
func RequireFound(names ...string) ValidatorFunc {
	return func(ctx Context) error {
		var missing []string
		for _, name := range names {
			if !ctx.Found(name) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return &ValidationError{
				Field:   strings.Join(missing, ", "),
				Message: "missing required option(s): " + strings.Join(missing, ", "),
			}
		}
		return nil
	}
}

// RequireArgs fails unless the number of positional arguments is within
// [minArgs, maxArgs]. A negative maxArgs means no upper bound.
func RequireArgs(minArgs, maxArgs int) ValidatorFunc {
	return func(ctx Context) error {
		n := len(ctx.Args())
		switch {
		case n < minArgs:
			return &ValidationError{
				Field:   "args",
				Value:   n,
				Message: fmt.Sprintf("expected at least %d argument(s), got %d", minArgs, n),
			}
		case maxArgs >= 0 && n > maxArgs:
			return &ValidationError{
				Field:   "args",
				Value:   n,
				Message: fmt.Sprintf("expected at most %d argument(s), got %d", maxArgs, n),
			}
		}
		return nil
	}
}

// ConditionalRequired makes options required when condition returns nil.
func ConditionalRequired(condition ValidatorFunc, requiredNames ...string) ValidatorFunc {
	return func(ctx Context) error {
		if err := condition(ctx); err != nil {
			return nil
		}
		var missing []string
		for _, name := range requiredNames {
			if !ctx.Found(name) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return &ValidationError{
				Field:   strings.Join(missing, ", "),
				Message: "options required when condition is met: " + strings.Join(missing, ", "),
			}
		}
		return nil
	}
}

// FileExists ensures the given string options, when set, name existing files.
func FileExists(names ...string) ValidatorFunc {
	return pathValidator("file", validateFileExists, names)
}

// DirectoryExists ensures the given string options, when set, name existing directories.
func DirectoryExists(names ...string) ValidatorFunc {
	return pathValidator("directory", validateDirectoryExists, names)
}

func pathValidator(kind string, check func(string) error, names []string) ValidatorFunc {
	return func(ctx Context) error {
		for _, name := range names {
			path, ok := ctx.Value(name).(string)
			if !ok || path == "" {
				continue
			}
			if err := check(path); err != nil {
				return &ValidationError{
					Field:   name,
					Value:   path,
					Message: fmt.Sprintf("%s validation failed for option '%s'", kind, name),
					Cause:   err,
				}
			}
		}
		return nil
	}
}

func validateFileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func validateDirectoryExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// NoopValidator creates a validator that doesn't perform any validation.
func NoopValidator() Middleware {
	return func(next ActionFunc) ActionFunc {
		return next
	}
}

// FileSystemValidator creates a validator that checks file and directory existence.
func FileSystemValidator(fileOptions, dirOptions []string) Middleware {
	var validators []NamedValidator
	if len(fileOptions) > 0 {
		validators = append(validators, File(fileOptions...))
	}
	if len(dirOptions) > 0 {
		validators = append(validators, Dir(dirOptions...))
	}
	return Validate(validators...)
}

// WithCustomValidators adds custom validators to the middleware config
func WithCustomValidators(validators map[string]ValidatorFunc) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		if config.CustomValidators == nil {
			config.CustomValidators = make(map[string]ValidatorFunc)
		}
		for name, validator := range validators {
			config.CustomValidators[name] = validator
		}
	}
}
