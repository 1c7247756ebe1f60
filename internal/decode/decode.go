// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package decode provides image decoders that produce animation frame
// stores from encoded image data.
package decode

import (
	"context"
	"errors"
	"image"
	"io"
	"time"

	"github.com/kortschak/flick/internal/animation"
)

var (
	_ animation.Decoder = Image{}
	_ animation.Decoder = Codec{}
	_ animation.Decoder = Auto{}
)

// Auto is an animation.Decoder that selects the Codec decoder for
// animated GIF, APNG and animated WebP data, and the Image decoder
// for everything else.
type Auto struct {
	Image Image
	Codec Codec
}

// Decode implements the animation.Decoder interface.
func (d Auto) Decode(ctx context.Context, r io.Reader) (*animation.Store, error) {
	rp := reader(ctx, r)
	if d.Select(rp) == "codec" {
		return d.Codec.decode(ctx, rp)
	}
	return d.Image.decode(ctx, rp)
}

// Select returns the name of the decoder that Auto will use for the
// data held in r, either "codec" or "image".
func (d Auto) Select(r ReadPeeker) string {
	switch Sniff(r) {
	case GIF, APNG:
		return "codec"
	case WebP:
		if IsAnimatedWebP(r) {
			return "codec"
		}
	}
	return "image"
}

// builder accumulates the frames of a decode, honouring cancellation
// and releasing the accumulated surfaces on failure.
type builder struct {
	ctx      context.Context
	format   string
	alloc    *animation.Allocator
	progress func(frame, total int)
	total    int

	minDuration time.Duration

	frames []animation.Frame
}

func newBuilder(ctx context.Context, format string, alloc *animation.Allocator, progress func(frame, total int)) *builder {
	if alloc == nil {
		alloc = animation.DefaultAllocator
	}
	return &builder{ctx: ctx, format: format, alloc: alloc, progress: progress}
}

// check returns a cancellation error if the decode context is done
// before frame i is decoded.
func (b *builder) check(i int) error {
	err := b.ctx.Err()
	if err != nil {
		return animation.Cancellation(b.format, i, err)
	}
	return nil
}

// add appends a copy of canvas as the next frame.
func (b *builder) add(canvas *image.RGBA, source animation.Alpha, d time.Duration) {
	if d < b.minDuration {
		d = b.minDuration
	}
	s := b.alloc.Allocate(canvas.Rect, source)
	copy(s.Image().Pix, canvas.Pix)
	s.Seal()
	b.frames = append(b.frames, animation.Frame{Surface: s, Duration: d})
	if b.progress != nil {
		b.progress(len(b.frames)-1, b.total)
	}
}

// fail releases all accumulated frames and returns err.
func (b *builder) fail(err error) error {
	animation.ReleaseFrames(b.frames)
	b.frames = nil
	return err
}

// store returns a store holding the accumulated frames.
func (b *builder) store(meta animation.Meta) (*animation.Store, error) {
	meta.Format = b.format
	s, err := animation.NewStore(b.frames, meta)
	b.frames = nil
	return s, err
}

// containerError classifies an error returned by a container level
// decode of the data for format.
func (b *builder) containerError(err error) error {
	if ctxErr := b.ctx.Err(); ctxErr != nil {
		return animation.Cancellation(b.format, len(b.frames), ctxErr)
	}
	if errors.Is(err, image.ErrFormat) {
		return animation.NewDecodeError(animation.UnsupportedFormat, b.format, err)
	}
	return animation.NewDecodeError(animation.CorruptStream, b.format, err)
}

// frameError returns a decode failure for frame i.
func (b *builder) frameError(i int, err error) error {
	return &animation.DecodeError{Kind: animation.DecodeFailure, Format: b.format, Frame: i, Err: err}
}
