// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"errors"
	"image"
	"time"

	"github.com/kettek/apng"
	"golang.org/x/image/draw"

	"github.com/kortschak/flick/internal/animation"
)

// decodeAPNG decodes all animation frames of the APNG held by r,
// compositing each frame onto the canvas according to the frame's blend
// and dispose operations. The default image is only used if it is the
// only frame present.
func decodeAPNG(b *builder, r ReadPeeker, res animation.Resolution) (*animation.Store, error) {
	p, err := apng.DecodeAll(r)
	if err != nil {
		return nil, b.containerError(err)
	}
	frames := make([]apng.Frame, 0, len(p.Frames))
	for _, f := range p.Frames {
		if !f.IsDefault {
			frames = append(frames, f)
		}
	}
	if len(frames) == 0 {
		frames = p.Frames
	}
	if len(frames) == 0 || p.Frames[0].Image == nil {
		return nil, animation.NewDecodeError(animation.CorruptStream, b.format, errors.New("no frames"))
	}
	b.total = len(frames)

	// The first frame of the image data always covers the canvas.
	size := p.Frames[0].Image.Bounds().Size()
	screen := image.Rectangle{Max: size}
	canvas := image.NewRGBA(screen)
	var previous *image.RGBA
	for i, f := range frames {
		err := b.check(i)
		if err != nil {
			return nil, b.fail(err)
		}
		if f.Image == nil {
			return nil, b.fail(b.frameError(i, errors.New("missing frame image")))
		}
		src := f.Image.Bounds()
		dst := image.Rectangle{Min: image.Pt(f.XOffset, f.YOffset)}
		dst.Max = dst.Min.Add(src.Size())
		if !dst.In(screen) {
			return nil, b.fail(b.frameError(i, errors.New("frame outside canvas")))
		}

		dispose := f.DisposeOp
		if i == 0 && dispose == apng.DISPOSE_OP_PREVIOUS {
			dispose = apng.DISPOSE_OP_BACKGROUND
		}
		if dispose == apng.DISPOSE_OP_PREVIOUS {
			if previous == nil {
				previous = image.NewRGBA(screen)
			}
			copy(previous.Pix, canvas.Pix)
		}

		op := draw.Over
		if f.BlendOp == apng.BLEND_OP_SOURCE {
			op = draw.Src
		}
		draw.Draw(canvas, dst, f.Image, src.Min, op)

		b.add(canvas, animation.ClassifyAlpha(f.Image), apngDelay(f.DelayNumerator, f.DelayDenominator))

		switch dispose {
		case apng.DISPOSE_OP_BACKGROUND:
			draw.Draw(canvas, dst, image.Transparent, image.Point{}, draw.Src)
		case apng.DISPOSE_OP_PREVIOUS:
			copy(canvas.Pix, previous.Pix)
		}
	}
	return b.store(animation.Meta{
		Bounds:     screen,
		Resolution: res,
		LoopCount:  animation.Iterations(p.LoopCount),
	})
}

// apngDelay returns the duration of an APNG frame delay of num/den
// seconds. A zero denominator is treated as 100.
func apngDelay(num, den uint16) time.Duration {
	if den == 0 {
		den = 100
	}
	return time.Duration(num) * time.Second / time.Duration(den)
}
