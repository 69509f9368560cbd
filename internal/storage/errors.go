package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of a failed response body is kept on an Error.
const maxErrorBody = 4 << 10

// Kind classifies storage failures. A Kind is itself an error so it can be
// used as an errors.Is target.
type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindConfig
	KindNotFound
	KindIO
	KindBackend
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfig:
		return "config"
	case KindNotFound:
		return "not found"
	case KindIO:
		return "io"
	case KindBackend:
		return "backend"
	default:
		return "unknown"
	}
}

func (k Kind) Error() string { return "storage: " + k.String() }

// Sentinels matching any *Error of the same kind.
var (
	ErrValidation error = KindValidation
	ErrConfig     error = KindConfig
	ErrNotFound   error = KindNotFound
	ErrIO         error = KindIO
	ErrBackend    error = KindBackend
)

// ErrUnsupported is wrapped in a Backend error when a backend cannot perform an operation.
var ErrUnsupported = errors.New("operation not supported by this backend")

// Error is the single error type returned by storage backends.
type Error struct {
	Kind Kind
	Op   string
	Key  string
	// StatusCode and Body are set for unexpected remote responses.
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("storage: ")
	b.WriteString(e.Op)
	if e.Key != "" {
		fmt.Fprintf(&b, " %q", e.Key)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Body != "" {
		b.WriteString(": ")
		b.WriteString(e.Body)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or zero.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// IsNotFound reports whether err means the object is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable reports whether waiting could change the outcome of err.
// Validation and Config errors are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch KindOf(err) {
	case KindValidation, KindConfig:
		return false
	}
	return true
}

func newError(kind Kind, op, key string, err error) *Error {
	return &Error{Kind: kind, Op: op, Key: key, Err: err}
}

func validationError(op, key, msg string) *Error {
	return newError(KindValidation, op, key, errors.New(msg))
}

func unsupported(op, key string) *Error {
	return newError(KindBackend, op, key, ErrUnsupported)
}

// statusError builds a Backend error from an unexpected response, keeping a
// bounded copy of its body.
func statusError(op, key string, resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &Error{
		Kind:       KindBackend,
		Op:         op,
		Key:        key,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
