package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrFileNotFound = errors.New("file not found")

	ErrInvalidToken = errors.New("token is invalid or expired")
)

// Kind classifies a failed operation. The transport layer maps it to a
// status code; services never deal with HTTP codes directly.
type Kind int

const (
	KindValidation Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	default:
		return "internal"
	}
}

// FieldError is a single violation bound to the input field that caused it.
// It marshals as a one-entry object, e.g. {"email": "Email invalid"}
type FieldError struct {
	Field   string
	Message string
}

func (fe FieldError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{fe.Field: fe.Message})
}

// Error is the failure of a service operation: a kind plus an ordered list
// of field violations. The list order is part of the wire contract and must
// survive all the way to the response body. Fields may be empty: register
// reports unknown directory failures as an empty-list 422.
type Error struct {
	Kind   Kind
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Kind.String()
	}

	parts := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return e.Kind.String() + ": " + strings.Join(parts, "; ")
}

func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

func Unauthenticated(fields ...FieldError) *Error {
	return &Error{Kind: KindUnauthenticated, Fields: fields}
}

func Forbidden(fields ...FieldError) *Error {
	return &Error{Kind: KindForbidden, Fields: fields}
}

func NotFound(fields ...FieldError) *Error {
	return &Error{Kind: KindNotFound, Fields: fields}
}
