// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"context"
	"errors"
	"fmt"
)

// Kind is the class of a decode error.
type Kind int

const (
	// UnsupportedFormat indicates the container or codec was not recognized.
	UnsupportedFormat Kind = iota + 1
	// CorruptStream indicates the format was recognized but the payload
	// was structurally invalid.
	CorruptStream
	// DecodeFailure indicates per-frame pixel extraction failed.
	DecodeFailure
	// Cancelled indicates the caller aborted the decode.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case UnsupportedFormat:
		return "unsupported format"
	case CorruptStream:
		return "corrupt stream"
	case DecodeFailure:
		return "decode failure"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sentinel errors for use with errors.Is.
var (
	ErrUnsupportedFormat = &DecodeError{Kind: UnsupportedFormat}
	ErrCorruptStream     = &DecodeError{Kind: CorruptStream}
	ErrDecodeFailure     = &DecodeError{Kind: DecodeFailure}
	ErrCancelled         = &DecodeError{Kind: Cancelled}
)

// DecodeError is the error returned by decoders and Controller.Load.
type DecodeError struct {
	Kind Kind

	// Format is the detected format, if known.
	Format string
	// Frame is the index of the frame being decoded when
	// the error occurred, or -1 if it is not frame specific.
	Frame int

	Err error
}

// NewDecodeError returns a DecodeError for a failure that is not
// specific to a single frame.
func NewDecodeError(kind Kind, format string, err error) *DecodeError {
	return &DecodeError{Kind: kind, Format: format, Frame: -1, Err: err}
}

func (e *DecodeError) Error() string {
	var prefix string
	switch {
	case e.Format != "" && e.Frame >= 0:
		prefix = fmt.Sprintf("%s: frame %d: %s", e.Format, e.Frame, e.Kind)
	case e.Format != "":
		prefix = fmt.Sprintf("%s: %s", e.Format, e.Kind)
	default:
		prefix = e.Kind.String()
	}
	if e.Err == nil {
		return prefix
	}
	return prefix + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is returns whether target is a DecodeError sentinel with the same Kind.
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	if !ok {
		return false
	}
	return t.Err == nil && t.Format == "" && t.Kind == e.Kind
}

// IsCancelled returns whether err indicates a caller-requested abort.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Cancellation returns a Cancelled DecodeError for the provided context
// error at the given frame.
func Cancellation(format string, frame int, err error) *DecodeError {
	return &DecodeError{Kind: Cancelled, Format: format, Frame: frame, Err: err}
}
