package qoi

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes codec failures
type ErrorCode int

const (
	// ErrorCodeInvalidArgument is raised before any processing when the
	// caller passes bad geometry, an unsupported channel count or
	// colorspace, or a pixel buffer shorter than width*height*channels.
	ErrorCodeInvalidArgument ErrorCode = iota + 1

	// ErrorCodeBadMagic means the stream does not start with "qoif".
	ErrorCodeBadMagic

	// ErrorCodeTruncatedData means an operation needs trailing bytes
	// beyond the end of the operation region.
	ErrorCodeTruncatedData
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeInvalidArgument:
		return "InvalidArgument"
	case ErrorCodeBadMagic:
		return "BadMagic"
	case ErrorCodeTruncatedData:
		return "TruncatedData"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// CodecError is an error from QOI encoding or decoding
type CodecError struct {
	Code    ErrorCode
	Message string
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewCodecError creates a new CodecError
func NewCodecError(code ErrorCode, message string) *CodecError {
	return &CodecError{Code: code, Message: message}
}

func errCodef(code ErrorCode, format string, args ...any) error {
	return &CodecError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsCodecError checks if an error is a CodecError and returns it
func AsCodecError(err error) (*CodecError, bool) {
	var cerr *CodecError
	if errors.As(err, &cerr) {
		return cerr, true
	}
	return nil, false
}
