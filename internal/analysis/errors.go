// Package analysis implements the semantic stages run over every parsed
// function before code generation: type inference, lifetime analysis,
// and IR validation.
package analysis

import (
	"fmt"

	"github.com/exp-lang/exp/internal/ssa"
)

// Code classifies a semantic error.
type Code int

const (
	codeInvalid Code = iota
	CodeTypeMismatch
	CodeTypeNotCallable
	CodeTypeNotIndexable
	CodeTupleIndexNotImmediate
	CodeTupleIndexOutOfBounds
	CodeReturnTypeUnknown
	CodeUndefinedSymbol
)

// String implements fmt.Stringer.
func (c Code) String() string {
	switch c {
	case CodeTypeMismatch:
		return "TYPECHECK_TYPE_MISMATCH"
	case CodeTypeNotCallable:
		return "TYPECHECK_TYPE_NOT_CALLABLE"
	case CodeTypeNotIndexable:
		return "TYPECHECK_TYPE_NOT_INDEXABLE"
	case CodeTupleIndexNotImmediate:
		return "TYPECHECK_TUPLE_INDEX_NOT_IMMEDIATE"
	case CodeTupleIndexOutOfBounds:
		return "TYPECHECK_TUPLE_INDEX_OUT_OF_BOUNDS"
	case CodeReturnTypeUnknown:
		return "TYPECHECK_RETURN_TYPE_UNKNOWN"
	case CodeUndefinedSymbol:
		return "TYPECHECK_UNDEFINED_SYMBOL"
	default:
		panic(fmt.Sprintf("BUG: invalid error code %d", int(c)))
	}
}

// Error is one semantic failure. The compile driver stores the first
// Error on the context and skips every later stage for that symbol.
type Error struct {
	Code    Code
	Message string
}

// Error implements error.
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errTypeMismatch(expected, actual *ssa.Type) *Error {
	return &Error{
		Code:    CodeTypeMismatch,
		Message: fmt.Sprintf("Expected type: [%s] Actual type: [%s]", expected, actual),
	}
}

func errNotInteger(actual *ssa.Type) *Error {
	return &Error{
		Code:    CodeTypeMismatch,
		Message: fmt.Sprintf("Expected an integer type. Actual type: [%s]", actual),
	}
}

func errNotCallable(actual *ssa.Type) *Error {
	return &Error{
		Code:    CodeTypeNotCallable,
		Message: fmt.Sprintf("Type: [%s]", actual),
	}
}

func errNotIndexable(actual *ssa.Type) *Error {
	return &Error{
		Code:    CodeTypeNotIndexable,
		Message: fmt.Sprintf("Type: [%s]", actual),
	}
}

func errArgumentCount(formal, actual int) *Error {
	return &Error{
		Code:    CodeTypeMismatch,
		Message: fmt.Sprintf("Expected [%d] arguments. Have [%d] arguments.", formal, actual),
	}
}

func errTupleIndexNotImmediate() *Error {
	return &Error{Code: CodeTupleIndexNotImmediate}
}

func errTupleIndexOutOfBounds(index int32, bounds int) *Error {
	return &Error{
		Code:    CodeTupleIndexOutOfBounds,
		Message: fmt.Sprintf("Index: [%d] Bounds: [0..%d]", index, bounds),
	}
}

func errReturnTypeUnknown() *Error {
	return &Error{Code: CodeReturnTypeUnknown}
}

func errUndefinedSymbol(name string) *Error {
	return &Error{
		Code:    CodeUndefinedSymbol,
		Message: fmt.Sprintf("Name: [%s]", name),
	}
}
