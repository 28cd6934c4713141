package runtime

import (
	"errors"
	"fmt"

	"github.com/example/loxgo/token"
)

// Runtime error kinds. Match them with errors.Is against an *Error.
var (
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrUndefinedProperty = errors.New("undefined property")
	ErrOperandType       = errors.New("wrong operand type")
	ErrDivisionByZero    = fmt.Errorf("%w: division by zero", ErrOperandType)
	ErrArity             = errors.New("wrong argument count")
	ErrNotCallable       = errors.New("not callable")
	ErrNotInstance       = errors.New("not an instance")
	ErrSuperclass        = errors.New("invalid superclass")
)

// Error is a language-level runtime error. Token locates it in the source.
type Error struct {
	Token   token.Token
	Kind    error
	Message string
}

func NewError(tok token.Token, kind error, format string, args ...any) *Error {
	return &Error{Token: tok, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func (e *Error) Line() int { return e.Token.Line }
