// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package elections

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can branch on it
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
	KindConflict
	KindUnsupported
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	case KindUnsupported:
		return "unsupported"
	case KindUpstream:
		return "upstream_sync_failed"
	default:
		return "internal"
	}
}

// Error is a categorized failure with a human-readable message
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrConflict)
// works regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrBadRequest   = &Error{Kind: KindBadRequest, Message: "bad request"}
	ErrConflict     = &Error{Kind: KindConflict, Message: "conflict"}
	ErrUnsupported  = &Error{Kind: KindUnsupported, Message: "not implemented while ledger mirroring is enabled"}
	ErrUpstreamSync = &Error{Kind: KindUpstream, Message: "upstream sync failed"}
)

// KindOf returns the category of err, KindInternal for uncategorized errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func notFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func badRequest(format string, args ...any) error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func unsupported(format string, args ...any) error {
	return &Error{Kind: KindUnsupported, Message: fmt.Sprintf(format, args...)}
}

func upstream(op string, err error) error {
	return &Error{Kind: KindUpstream, Message: "blockchain sync failed during " + op, Err: err}
}
