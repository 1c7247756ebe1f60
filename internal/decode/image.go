// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder.
	_ "image/png"  // Register PNG decoder.
	"io"

	_ "golang.org/x/image/bmp" // Register BMP decoder.
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // Register TIFF decoder.
	xwebp "golang.org/x/image/webp"

	"github.com/kortschak/flick/internal/animation"
)

// Image is the general image decoder. It decodes any format registered
// with the image package as a single frame, and decodes every frame of
// GIF data. Animated PNG data is decoded as its default still image
// and animated WebP data is not supported.
type Image struct {
	// Allocator is used to allocate frame surfaces. If it is nil
	// animation.DefaultAllocator is used.
	Allocator *animation.Allocator

	// Progress is called after each frame is decoded with the
	// index of the frame and the number of frames in the image.
	Progress func(frame, total int)

	// Resolution is the image density used when the data does not
	// specify one.
	Resolution animation.Resolution
}

// Decode implements the animation.Decoder interface.
func (d Image) Decode(ctx context.Context, r io.Reader) (*animation.Store, error) {
	return d.decode(ctx, reader(ctx, r))
}

func (d Image) decode(ctx context.Context, r ReadPeeker) (*animation.Store, error) {
	format := Sniff(r)
	b := newBuilder(ctx, format, d.Allocator, d.Progress)
	if err := b.check(0); err != nil {
		return nil, err
	}
	res := d.Resolution
	switch format {
	case Unknown:
		return nil, animation.NewDecodeError(animation.UnsupportedFormat, "", image.ErrFormat)
	case GIF:
		return decodeGIF(b, r, res)
	case PNG, APNG:
		if _, pr := pngInfo(r); pr != (animation.Resolution{}) {
			res = pr
		}
		// The image decoder has no access to the animation frames.
		b.format = PNG
	case WebP:
		if IsAnimatedWebP(r) {
			return nil, animation.NewDecodeError(animation.UnsupportedFormat, WebP, errors.New("animated webp requires an animation codec"))
		}
	}

	var (
		img image.Image
		err error
	)
	if format == WebP {
		img, err = xwebp.Decode(r)
	} else {
		img, _, err = image.Decode(r)
	}
	if err != nil {
		return nil, b.containerError(err)
	}
	b.total = 1
	if err := b.check(0); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, b.frameError(0, fmt.Errorf("empty image: %v", bounds))
	}
	canvas := image.NewRGBA(image.Rectangle{Max: bounds.Size()})
	draw.Draw(canvas, canvas.Rect, img, bounds.Min, draw.Src)
	b.add(canvas, animation.ClassifyAlpha(img), 0)
	return b.store(animation.Meta{
		Bounds:     canvas.Rect,
		Resolution: res,
		LoopCount:  animation.Infinite,
	})
}
