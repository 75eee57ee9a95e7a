// Package exoerr defines the classified failures produced by the page-load
// pipeline.
//
// Every failure that reaches a published state is an *Error carrying one of
// the Kind codes below. Kind follows the failure/v2 error code convention;
// Error.Failure converts a pipeline error into a failure error for the CLI.
package exoerr

import (
	"errors"
	"fmt"

	"github.com/morikuni/failure/v2"
)

// Kind classifies an Error
type Kind string

const (
	// Network covers transport failures, non-success HTTP status and body read errors
	Network Kind = "Network"
	// URLParse covers malformed input and disallowed schemes
	URLParse Kind = "UrlParse"
	// Core is reserved for failures of the surrounding program
	Core Kind = "Core"
	// Unknown is the catch-all; no path currently produces it
	Unknown Kind = "Unknown"
)

func (k Kind) ErrorCode() string {
	return string(k)
}

// Error is a classified pipeline failure. It is immutable; copying the value
// clones it.
type Error struct {
	Kind   Kind
	Detail string
}

// New returns an error of the given kind with a human readable detail
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Newf is New with a format string
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

func (e *Error) Error() string {
	switch e.Kind {
	case Network:
		return "Network error: " + e.Detail
	case URLParse:
		return "URL parsing error: " + e.Detail
	case Core:
		return "Browser core error: " + e.Detail
	default:
		return "Unknown error"
	}
}

// Is reports whether target is an *Error of the same kind.
// Use KindOf to classify an error by Kind alone.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// Failure converts e into a failure error so that CLI code can report it with
// failure.MessageOf and match it with failure.Is. A bare *Error carries no
// failure code.
func (e *Error) Failure() error {
	return failure.New(e.Kind,
		failure.Message(e.Error()),
		failure.Context{
			"kind": string(e.Kind),
		},
	)
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// From classifies an arbitrary error. *Error values pass through unchanged;
// anything else becomes a kind-classified error whose detail is err's message.
func From(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return New(kind, err.Error())
}
