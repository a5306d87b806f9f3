package errs

import (
	"errors"
	"fmt"
)

// Codes of the RPC error contract.
const (
	CodeBadInput   = 1
	CodePathEscape = 2
	CodeNotAFile   = 3
	CodeUnexpected = 666
)

// RPCError is the `{code, text}` body returned by every RPC endpoint when
// the operation fails.
type RPCError struct {
	Code int    `json:"code"`
	Text string `json:"text"`

	cause error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Text)
}

func (e *RPCError) Unwrap() error {
	return e.cause
}

// NewRPCError builds an RPCError with a formatted text.
func NewRPCError(code int, format string, args ...any) *RPCError {
	return &RPCError{Code: code, Text: fmt.Sprintf(format, args...)}
}

// BadInput reports a malformed or incomplete request (code 1).
func BadInput(format string, args ...any) *RPCError {
	return NewRPCError(CodeBadInput, format, args...)
}

// MissingAttribute reports a mandatory input key that is absent (code 1).
func MissingAttribute(name string) *RPCError {
	return BadInput("Missing mandatory input attribute: %q!", name)
}

// PathEscape reports a path resolving outside of the sandbox root (code 2).
func PathEscape(format string, args ...any) *RPCError {
	return NewRPCError(CodePathEscape, format, args...)
}

// NotAFile reports a read on a missing file or a directory (code 3).
func NotAFile(path string) *RPCError {
	return NewRPCError(CodeNotAFile, "Not a file: %s", path)
}

// Unexpected wraps any other failure (code 666). The text is the error
// message, the original error stays reachable through errors.Unwrap.
func Unexpected(err error) *RPCError {
	return &RPCError{Code: CodeUnexpected, Text: err.Error(), cause: err}
}

// AsRPCError returns err as an *RPCError, wrapping it as Unexpected when it
// is not one already. A nil error yields nil.
func AsRPCError(err error) *RPCError {
	if err == nil {
		return nil
	}
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return Unexpected(err)
}

// WithCause attaches the underlying error, kept for logs and errors.Is.
func (e *RPCError) WithCause(err error) *RPCError {
	e.cause = err
	return e
}
