package ioquery

import (
	"fmt"
	"strings"
)

// QueryError wraps a failure while querying one pixel.
type QueryError struct {
	Pixel int64
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query for pixel %d failed: %v", e.Pixel, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// DecodeError wraps a failure decoding a string-encoded array column.
type DecodeError struct {
	SourceID int64
	Column   string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf(
		"source %d: cannot decode column %s: %v",
		e.SourceID, e.Column, e.Err,
	)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ArrayElementError reports a non-numeric element in an encoded array.
type ArrayElementError struct {
	Index int
	Token string
	Err   error
}

func (e *ArrayElementError) Error() string {
	return fmt.Sprintf(
		"element %d (%q) is not a number", e.Index, strings.TrimSpace(e.Token),
	)
}

func (e *ArrayElementError) Unwrap() error { return e.Err }

// WorkMemError is returned when the configured work_mem override is
// not a recognizable size literal. The value is spliced into SET
// LOCAL, so anything else is rejected outright.
type WorkMemError struct {
	Value string
}

func (e *WorkMemError) Error() string {
	return fmt.Sprintf("invalid work_mem value %q", e.Value)
}
