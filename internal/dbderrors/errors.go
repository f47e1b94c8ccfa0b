// Package dbderrors defines the error taxonomy shared across the core:
// config/model/SQL/template/database failures plus the soft validation
// error tree. Kinds are compared with errors.Is via Kind equality, and
// causes are wrapped with github.com/pkg/errors so %+v retains the
// underlying driver/parse error.
package dbderrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies one of the taxonomy's error categories (spec.md §7).
type Kind string

const (
	KindConfig          Kind = "ConfigError"
	KindInvalidModel    Kind = "InvalidModel"
	KindInvalidFK       Kind = "InvalidForeignKey"
	KindUnsupportedType Kind = "UnsupportedType"
	KindUnsupportedFile Kind = "UnsupportedDataFile"
	KindSqlParse        Kind = "SqlParseError"
	KindTemplate        Kind = "TemplateError"
	KindDatabase        Kind = "DatabaseError"
)

// Error is the core's single error type. Message is the human-readable
// text; Cause (if any) is the wrapped underlying error.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: errors.WithStack(cause)}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Error with the same Kind, so callers
// can do errors.Is(err, dbderrors.New(dbderrors.KindConfig, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WrapDatabase wraps a driver error with the task id and phase it failed
// in (the executor passes "drop", "create", "create index", "ddl" or
// "load"), per spec.md §7's propagation rule.
func WrapDatabase(cause error, taskID, phase string) *Error {
	return Wrap(KindDatabase, cause, fmt.Sprintf("database error in phase %q for task %q", phase, taskID))
}
