// Package diagnostics holds the runtime's error taxonomy. Runtime type,
// unknown field and arity errors reach the caller of the failing function
// unchanged. Generator errors never leave a compilation attempt.
package diagnostics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/tiervm/internal/typesystem"
)

// RuntimeError is implemented by every member of the taxonomy.
type RuntimeError interface {
	error
	Kind() string
}

// RuntimeTypeError reports a value of the wrong runtime category reaching a
// primitive, a branch condition or a field access.
type RuntimeTypeError struct {
	Op       string // primitive or construct that rejected the value
	Expected string // e.g. "integer", "boolean", "object"
	Got      string // runtime type name of the offending value
}

func (e *RuntimeTypeError) Error() string {
	if e.Got != "" {
		return fmt.Sprintf("%s: %s expected, got %s", e.Op, e.Expected, e.Got)
	}
	return fmt.Sprintf("%s: %s expected", e.Op, e.Expected)
}
func (e *RuntimeTypeError) Kind() string { return "RuntimeType" }

func NewRuntimeTypeError(op, expected, got string) *RuntimeTypeError {
	return &RuntimeTypeError{Op: op, Expected: expected, Got: got}
}

// UnknownFieldError reports a field name missing from an object's current
// definition.
type UnknownFieldError struct {
	Definition string
	Field      string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("no such field: %s.%s", e.Definition, e.Field)
}
func (e *UnknownFieldError) Kind() string { return "UnknownField" }

func NewUnknownFieldError(definition, field string) *UnknownFieldError {
	return &UnknownFieldError{Definition: definition, Field: field}
}

// ArityError reports an invocation whose argument count differs from the
// callee's parameter count.
type ArityError struct {
	Function string
	Expected int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: expected %d arguments, got %d", e.Function, e.Expected, e.Got)
}
func (e *ArityError) Kind() string { return "Arity" }

func NewArityError(function string, expected, got int) *ArityError {
	return &ArityError{Function: function, Expected: expected, Got: got}
}

// GeneratorInternalError reports an operand category combination a
// primitive cannot specialize. It is fatal to the compilation attempt only.
type GeneratorInternalError struct {
	Op       string
	Operands []typesystem.Category
	Msg      string
}

func (e *GeneratorInternalError) Error() string {
	var sb strings.Builder
	sb.WriteString("internal generator error: ")
	sb.WriteString(e.Op)
	if len(e.Operands) > 0 {
		sb.WriteString("(")
		for i, c := range e.Operands {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(c.String())
		}
		sb.WriteString(")")
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	return sb.String()
}
func (e *GeneratorInternalError) Kind() string { return "GeneratorInternal" }

func NewGeneratorInternalError(op string, msg string, operands ...typesystem.Category) *GeneratorInternalError {
	return &GeneratorInternalError{Op: op, Operands: operands, Msg: msg}
}

func IsRuntimeTypeError(err error) bool {
	var target *RuntimeTypeError
	return errors.As(err, &target)
}

func IsUnknownFieldError(err error) bool {
	var target *UnknownFieldError
	return errors.As(err, &target)
}

func IsArityError(err error) bool {
	var target *ArityError
	return errors.As(err, &target)
}

func IsGeneratorInternalError(err error) bool {
	var target *GeneratorInternalError
	return errors.As(err, &target)
}

// KindOf returns the taxonomy member of err, or "" for errors outside it.
func KindOf(err error) string {
	var re RuntimeError
	if errors.As(err, &re) {
		return re.Kind()
	}
	return ""
}
