// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package animation provides animated image playback.
//
// A [Decoder] populates a [Store] of frames from an encoded byte stream. A
// [Controller] owns a loaded Store and a [Clock], and drives playback from a
// host [Scheduler], notifying listeners when the current frame changes.
package animation

import (
	"context"
	"io"
)

// Decoder is an image decoder that populates a Store from an encoded
// byte stream.
type Decoder interface {
	// Decode decodes the data in r into a Store. Decode must check
	// ctx for cancellation before each frame and must release any
	// surfaces it has allocated if it returns a non-nil error.
	Decode(ctx context.Context, r io.Reader) (*Store, error)
}
