package common

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the transfer engine. Every error returned by a
// generator, parser or loader wraps one of these when its cause is known.
var (
	ErrConnectivity   = errors.New("connectivity error")
	ErrMalformedInput = errors.New("malformed input")
	ErrEncoding       = errors.New("encoding error")
	ErrTransaction    = errors.New("transaction error")
)

type kindError struct {
	kind error
	msg  string
	err  error
}

func (e *kindError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *kindError) Unwrap() []error {
	if e.err != nil {
		return []error{e.kind, e.err}
	}
	return []error{e.kind}
}

func wrapKind(kind error, err error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...), err: err}
}

// Malformedf reports input whose structure cannot be decoded.
func Malformedf(format string, args ...any) error {
	return wrapKind(ErrMalformedInput, nil, format, args...)
}

// Malformed wraps a decoder error as malformed input.
func Malformed(err error, format string, args ...any) error {
	return wrapKind(ErrMalformedInput, err, format, args...)
}

// Encodingf reports a value that cannot be rendered for the target format.
func Encodingf(format string, args ...any) error {
	return wrapKind(ErrEncoding, nil, format, args...)
}

// Connectivity wraps a failure to obtain or use a database connection.
func Connectivity(err error, format string, args ...any) error {
	return wrapKind(ErrConnectivity, err, format, args...)
}

// Transaction wraps a failure while executing or committing a batch.
func Transaction(err error, format string, args ...any) error {
	return wrapKind(ErrTransaction, err, format, args...)
}

// ErrorKind names the error kind of err for logs and result details.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConnectivity):
		return "connectivity"
	case errors.Is(err, ErrMalformedInput):
		return "malformed_input"
	case errors.Is(err, ErrEncoding):
		return "encoding"
	case errors.Is(err, ErrTransaction):
		return "transaction"
	}
	return "io"
}
