package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// Failure codes shared across the service. Permission and hardware failures
// degrade the affected feature; write failures surface to the caller.
const (
	CodePermissionDenied    = 1001
	CodePositionUnavailable = 1002
	CodeDeviceUnavailable   = 1003
	CodeWriteRejected       = 2001
	CodeUploadFailed        = 2002
)

// Error carries a code, message, wrapped cause and a captured stack.
type Error struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Err     error      `json:"-"`
	Stack   string     `json:"stack,omitempty"`
	Context []KeyValue `json:"context,omitempty"`
}

type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(message string) *Error {
	return &Error{Message: message, Stack: captureStack()}
}

func Errorf(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Stack: captureStack()}
}

func WithCode(code int, message string) *Error {
	return &Error{Code: code, Message: message, Stack: captureStack()}
}

func WithCodef(code int, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Stack: captureStack()}
}

func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	code := 0
	if e, ok := err.(*Error); ok {
		code = e.Code
	}
	return &Error{Code: code, Message: message, Err: err, Stack: captureStack()}
}

func Wrapf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithContext returns a copy of the error with an extra key-value attached.
func (e *Error) WithContext(key, value string) *Error {
	if e == nil {
		return nil
	}
	out := *e
	out.Context = append(append([]KeyValue(nil), e.Context...), KeyValue{Key: key, Value: value})
	return &out
}

// GetCode walks the chain for the first non-zero code.
func GetCode(err error) int {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Code != 0 {
				return e.Code
			}
			err = e.Err
			continue
		}
		return 0
	}
	return 0
}

func GetMessage(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code int) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Code == code {
				return true
			}
			err = e.Err
			continue
		}
		return false
	}
	return false
}

func Cause(err error) error {
	for err != nil {
		e, ok := err.(*Error)
		if !ok || e.Err == nil {
			return err
		}
		err = e.Err
	}
	return err
}

func captureStack() string {
	buf := make([]byte, 1024)
	n := runtime.Stack(buf, false)
	lines := strings.Split(string(buf[:n]), "\n")
	if len(lines) > 6 {
		lines = lines[6:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
