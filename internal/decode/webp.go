// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"errors"
	"image"
	"time"

	"github.com/gen2brain/webp"
	"golang.org/x/image/draw"

	"github.com/kortschak/flick/internal/animation"
)

// decodeWebP decodes all frames of the WebP held by r. The codec
// returns frames already composited onto the full canvas.
func decodeWebP(b *builder, r ReadPeeker, res animation.Resolution) (*animation.Store, error) {
	w, err := webp.DecodeAll(r)
	if err != nil {
		return nil, b.containerError(err)
	}
	if w == nil || len(w.Image) == 0 || w.Image[0] == nil {
		return nil, animation.NewDecodeError(animation.CorruptStream, b.format, errors.New("no frames"))
	}
	b.total = len(w.Image)

	screen := image.Rectangle{Max: w.Image[0].Bounds().Size()}
	canvas := image.NewRGBA(screen)
	for i, f := range w.Image {
		err := b.check(i)
		if err != nil {
			return nil, b.fail(err)
		}
		if f == nil {
			return nil, b.fail(b.frameError(i, errors.New("missing frame image")))
		}
		if f.Bounds().Size() != screen.Size() {
			return nil, b.fail(b.frameError(i, errors.New("frame size does not match canvas")))
		}
		draw.Draw(canvas, screen, f, f.Bounds().Min, draw.Src)
		var delay time.Duration
		if i < len(w.Delay) {
			delay = time.Duration(w.Delay[i]) * time.Millisecond
		}
		b.add(canvas, animation.ClassifyAlpha(f), delay)
	}
	return b.store(animation.Meta{
		Bounds:     screen,
		Resolution: res,
		LoopCount:  animation.Infinite,
	})
}
