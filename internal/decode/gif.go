// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"errors"
	"image"
	"image/gif"
	"time"

	"golang.org/x/image/draw"

	"github.com/kortschak/flick/internal/animation"
)

// gifDelay is the unit of GIF frame delays.
const gifDelay = 10 * time.Millisecond

// decodeGIF decodes all frames of the GIF held by r, compositing each
// frame onto the logical screen according to the frame's disposal method.
func decodeGIF(b *builder, r ReadPeeker, res animation.Resolution) (*animation.Store, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, b.containerError(err)
	}
	if len(g.Image) == 0 {
		return nil, animation.NewDecodeError(animation.CorruptStream, b.format, errors.New("no frames"))
	}
	b.total = len(g.Image)

	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		for _, f := range g.Image {
			screen = screen.Union(f.Bounds())
		}
		screen = image.Rect(0, 0, screen.Max.X, screen.Max.Y)
	}
	canvas := image.NewRGBA(screen)
	var previous *image.RGBA
	for i, f := range g.Image {
		err := b.check(i)
		if err != nil {
			return nil, b.fail(err)
		}
		if f == nil {
			return nil, b.fail(b.frameError(i, errors.New("missing frame image")))
		}
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			if previous == nil {
				previous = image.NewRGBA(screen)
			}
			copy(previous.Pix, canvas.Pix)
		}
		draw.Draw(canvas, f.Bounds(), f, f.Bounds().Min, draw.Over)

		var delay time.Duration
		if i < len(g.Delay) {
			delay = time.Duration(g.Delay[i]) * gifDelay
		}
		b.add(canvas, animation.ClassifyAlpha(f), delay)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, f.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			copy(canvas.Pix, previous.Pix)
		}
	}
	return b.store(animation.Meta{
		Bounds:     screen,
		Resolution: res,
		LoopCount:  gifLoopCount(g.LoopCount),
	})
}

// gifLoopCount converts a GIF NETSCAPE2.0 loop count, which counts
// repeats after the first display, to a number of iterations.
func gifLoopCount(n int) animation.Iterations {
	switch {
	case n == 0:
		return animation.Infinite
	case n < 0:
		return 1
	default:
		return animation.Iterations(n + 1)
	}
}
