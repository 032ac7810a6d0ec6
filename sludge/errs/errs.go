// Package errs classifies failures of the SLUDGE resource codecs.
//
// A FormatError means the bytes of a resource are not a valid instance of
// the format being decoded; a ResourceError means the resource could not be
// located or allocated at all. Both are fatal to the operation that raised
// them: no codec returns partially decoded data.
package errs

import (
	"errors"
	"fmt"
	"io"
)

var (
	ErrFormat   = errors.New("sludge: format error")
	ErrResource = errors.New("sludge: resource error")
)

// NoResource is used when the failing stream is not tied to a resource id.
const NoResource = -1

type FormatError struct {
	Op       string
	Resource int
	Err      error
}

func (e *FormatError) Error() string {
	if e.Resource == NoResource {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: resource %d: %v", e.Op, e.Resource, e.Err)
}

func (e *FormatError) Unwrap() []error { return []error{ErrFormat, e.Err} }

type ResourceError struct {
	Resource int
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource %d: %v", e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() []error { return []error{ErrResource, e.Err} }

func Format(op string, format string, args ...any) error {
	return &FormatError{Op: op, Resource: NoResource, Err: fmt.Errorf(format, args...)}
}

func Resource(id int, err error) error {
	return &ResourceError{Resource: id, Err: err}
}

// WithResource attaches a resource id to a FormatError produced by a codec
// that only saw a stream. Other errors are returned unchanged.
func WithResource(err error, id int) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.Resource == NoResource {
		return &FormatError{Op: fe.Op, Resource: id, Err: fe.Err}
	}
	return err
}

// Stream converts a read failure inside a decode into a FormatError. Running
// out of bytes is always reported as io.ErrUnexpectedEOF.
func Stream(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FormatError
	if errors.As(err, &fe) {
		return err
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.ErrUnexpectedEOF
	}
	return &FormatError{Op: op, Resource: NoResource, Err: err}
}
