// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"image"
	"sync"
	"sync/atomic"
)

// Alpha is an alpha channel convention.
type Alpha int

const (
	// Opaque indicates every pixel is fully opaque.
	Opaque Alpha = iota
	// Premultiplied indicates color channels are premultiplied by alpha.
	Premultiplied
	// Straight indicates color channels are not premultiplied by alpha.
	Straight
)

func (a Alpha) String() string {
	switch a {
	case Opaque:
		return "opaque"
	case Premultiplied:
		return "premultiplied"
	case Straight:
		return "straight"
	default:
		return "unknown"
	}
}

// ClassifyAlpha returns the alpha convention of img.
func ClassifyAlpha(img image.Image) Alpha {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return Opaque
	}
	switch img.(type) {
	case *image.NRGBA, *image.NRGBA64:
		return Straight
	default:
		// The image/color convention is premultiplied.
		return Premultiplied
	}
}

// Surface is a renderer-consumable pixel buffer. Pixels are held in
// premultiplied 8-bit RGBA order. A Surface is owned by the Store that
// holds it and must not be used after the Store is released.
type Surface struct {
	img    *image.RGBA
	source Alpha
	alpha  Alpha

	once  sync.Once
	owner *Allocator
}

// Image returns the surface's pixels, or nil if the surface has been
// released.
func (s *Surface) Image() *image.RGBA {
	if s == nil {
		return nil
	}
	return s.img
}

// Bounds returns the bounds of the surface.
func (s *Surface) Bounds() image.Rectangle {
	if s == nil || s.img == nil {
		return image.Rectangle{}
	}
	return s.img.Rect
}

// Alpha returns the alpha convention of the pixel buffer. It is either
// Opaque, allowing renderers to copy without blending, or Premultiplied.
func (s *Surface) Alpha() Alpha { return s.alpha }

// SourceAlpha returns the alpha convention of the decoded source image.
func (s *Surface) SourceAlpha() Alpha { return s.source }

// Seal sets the buffer's alpha convention from the pixels written after
// allocation. Decoders must call Seal when they have finished writing.
func (s *Surface) Seal() {
	if s.img == nil {
		return
	}
	if s.img.Opaque() {
		s.alpha = Opaque
	} else {
		s.alpha = Premultiplied
	}
}

// Release returns the surface's buffer to its allocator. Release is
// idempotent.
func (s *Surface) Release() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.owner != nil {
			s.owner.release(s.img)
		}
		s.img = nil
	})
}

// Allocator allocates surfaces and tracks the number that are live.
// The zero value is ready to use.
type Allocator struct {
	live  atomic.Int64
	total atomic.Int64

	mu   sync.Mutex
	pool map[int][][]uint8
}

// DefaultAllocator is the Allocator used when none is specified.
var DefaultAllocator = &Allocator{}

// Allocate returns a new zeroed surface with the provided bounds for a
// source with the given alpha convention.
func (a *Allocator) Allocate(r image.Rectangle, source Alpha) *Surface {
	n := 4 * r.Dx() * r.Dy()
	pix := a.reuse(n)
	if pix == nil {
		pix = make([]uint8, n)
	}
	a.live.Add(1)
	a.total.Add(1)
	alpha := Premultiplied
	if source == Opaque {
		alpha = Opaque
	}
	return &Surface{
		img:    &image.RGBA{Pix: pix, Stride: 4 * r.Dx(), Rect: r},
		source: source,
		alpha:  alpha,
		owner:  a,
	}
}

// Live returns the number of allocated surfaces that have not been
// released.
func (a *Allocator) Live() int { return int(a.live.Load()) }

// Total returns the number of surfaces allocated over the lifetime of
// the allocator.
func (a *Allocator) Total() int { return int(a.total.Load()) }

// reuse returns a zeroed pixel slice of length n from the free list
// if one is available.
func (a *Allocator) reuse(n int) []uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	l := a.pool[n]
	if len(l) == 0 {
		return nil
	}
	pix := l[len(l)-1]
	a.pool[n] = l[:len(l)-1]
	clear(pix)
	return pix
}

// maxFree is the maximum number of buffers retained per size.
const maxFree = 64

func (a *Allocator) release(img *image.RGBA) {
	a.live.Add(-1)
	if img == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pool == nil {
		a.pool = make(map[int][][]uint8)
	}
	n := len(img.Pix)
	if len(a.pool[n]) < maxFree {
		a.pool[n] = append(a.pool[n], img.Pix)
	}
}
