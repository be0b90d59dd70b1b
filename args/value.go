package args

import (
	"fmt"
	"strconv"
)

// Kind is the declared value kind of a flag or option.
type Kind int

const (
	KindBool Kind = iota
	KindString
	KindInt
	KindFloat
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindCustom:
		return "custom"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// article returns the kind name prefixed with "a" or "an".
func (k Kind) article() string {
	if k == KindInt {
		return "an int"
	}
	return "a " + k.String()
}

// Converter turns the raw text of a custom option into a value.
type Converter func(raw string) (any, error)

// valueCell holds everything parsed for one flag or option. Every alias of
// the flag or option resolves to the same cell.
type valueCell struct {
	kind     Kind
	convert  Converter
	fallback any
	values   []any
}

// value returns the last parsed value, or the fallback when nothing was parsed.
func (c *valueCell) value() any {
	if len(c.values) == 0 {
		return c.fallback
	}
	return c.values[len(c.values)-1]
}

func (c *valueCell) count() int { return len(c.values) }

func (c *valueCell) reset() {
	clear(c.values)
	c.values = c.values[:0]
}

func (c *valueCell) appendFlag() { c.values = append(c.values, true) }

// tryAppend converts raw according to the cell kind and appends the result.
// flag is the option as the user typed it, dashes included. Nothing is
// appended on failure.
func (c *valueCell) tryAppend(raw, flag string) *ParseError {
	var (
		v   any
		err error
	)

	switch c.kind {
	case KindString:
		v = raw
	case KindInt:
		if v, err = strconv.Atoi(raw); err != nil {
			return &ParseError{
				Type:    ErrorTypeInvalidValue,
				Message: fmt.Sprintf("cannot parse '%s' as an integer", raw),
				Flag:    flag,
				Cause:   err,
			}
		}
	case KindFloat:
		if v, err = strconv.ParseFloat(raw, 64); err != nil {
			return &ParseError{
				Type:    ErrorTypeInvalidValue,
				Message: fmt.Sprintf("cannot parse '%s' as a floating-point value", raw),
				Flag:    flag,
				Cause:   err,
			}
		}
	case KindCustom:
		if v, err = c.convert(raw); err != nil {
			return &ParseError{
				Type:    ErrorTypeInvalidValue,
				Message: fmt.Sprintf("invalid value '%s' for %s: %v", raw, flag, err),
				Flag:    flag,
				Cause:   err,
			}
		}
	case KindBool:
		return &ParseError{
			Type:    ErrorTypeInvalidFlag,
			Message: "invalid format for boolean flag " + flag,
			Flag:    flag,
		}
	}

	c.values = append(c.values, v)
	return nil
}
