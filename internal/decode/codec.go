// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"context"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/kortschak/flick/internal/animation"
)

// Codec is the animated image decoder. It decodes GIF, APNG and WebP
// using format specific codecs with access to individual frames and
// their timing.
type Codec struct {
	// Allocator is used to allocate frame surfaces. If it is nil
	// animation.DefaultAllocator is used.
	Allocator *animation.Allocator

	// Progress is called after each frame is decoded with the
	// index of the frame and the number of frames in the image.
	Progress func(frame, total int)

	// Resolution is the image density used when the data does not
	// specify one.
	Resolution animation.Resolution

	// MinFrameDuration is the shortest frame duration. Shorter
	// frame durations are extended to MinFrameDuration.
	MinFrameDuration time.Duration
}

// Decode implements the animation.Decoder interface.
func (d Codec) Decode(ctx context.Context, r io.Reader) (*animation.Store, error) {
	return d.decode(ctx, reader(ctx, r))
}

func (d Codec) decode(ctx context.Context, r ReadPeeker) (*animation.Store, error) {
	format := Sniff(r)
	b := newBuilder(ctx, format, d.Allocator, d.Progress)
	b.minDuration = d.MinFrameDuration
	if err := b.check(0); err != nil {
		return nil, err
	}
	res := d.Resolution
	switch format {
	case GIF:
		return decodeGIF(b, r, res)
	case PNG, APNG:
		if _, pr := pngInfo(r); pr != (animation.Resolution{}) {
			res = pr
		}
		return decodeAPNG(b, r, res)
	case WebP:
		return decodeWebP(b, r, res)
	case Unknown:
		return nil, animation.NewDecodeError(animation.UnsupportedFormat, "", image.ErrFormat)
	default:
		return nil, animation.NewDecodeError(animation.UnsupportedFormat, format, fmt.Errorf("no animation codec for %s", format))
	}
}
