// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"
)

// Frame is a single decoded image and its display duration.
type Frame struct {
	Surface  *Surface
	Duration time.Duration
}

// Resolution is the pixel density of an image in dots per inch.
type Resolution struct {
	X, Y float64
}

// DefaultResolution is used when an image does not specify its density.
var DefaultResolution = Resolution{X: 96, Y: 96}

// Meta holds container level information about a decoded image.
type Meta struct {
	// Format is the name of the container format.
	Format string

	// Bounds is the canvas size. If it is empty the bounds of
	// the first frame are used.
	Bounds image.Rectangle

	// Resolution is the image density. If it is zero,
	// DefaultResolution is used.
	Resolution Resolution

	// LoopCount is the container's requested iteration count.
	// Zero means infinite iterations.
	LoopCount Iterations
}

// Store is the ordered set of frames for a decoded image. A Store is
// immutable after construction until it is released.
type Store struct {
	frames    []Frame
	durations []time.Duration
	total     time.Duration
	meta      Meta

	once sync.Once
}

// NewStore returns a Store holding the provided frames in display order.
// It is an error to provide no frames, a negative duration, or more than
// one frame with a zero total duration. If NewStore returns an error it
// releases every surface in frames.
func NewStore(frames []Frame, meta Meta) (*Store, error) {
	s := &Store{frames: frames, meta: meta}
	err := s.init()
	if err != nil {
		s.Release()
		return nil, NewDecodeError(CorruptStream, meta.Format, err)
	}
	return s, nil
}

func (s *Store) init() error {
	if len(s.frames) == 0 {
		return errors.New("no frames")
	}
	s.durations = make([]time.Duration, len(s.frames))
	for i, f := range s.frames {
		if f.Surface == nil {
			return fmt.Errorf("missing surface for frame %d", i)
		}
		if f.Duration < 0 {
			return fmt.Errorf("negative duration for frame %d: %v", i, f.Duration)
		}
		s.durations[i] = f.Duration
		s.total += f.Duration
	}
	if len(s.frames) > 1 && s.total <= 0 {
		return fmt.Errorf("animated sequence of %d frames has no duration", len(s.frames))
	}
	if s.meta.Bounds.Empty() {
		s.meta.Bounds = s.frames[0].Surface.Bounds()
	}
	if s.meta.Resolution == (Resolution{}) {
		s.meta.Resolution = DefaultResolution
	}
	return nil
}

// Len returns the number of frames in the store.
func (s *Store) Len() int { return len(s.frames) }

// Frame returns the ith frame.
func (s *Store) Frame(i int) Frame { return s.frames[i] }

// Durations returns a copy of the frame durations in display order.
func (s *Store) Durations() []time.Duration {
	return append([]time.Duration(nil), s.durations...)
}

// Total returns the sum of all frame durations.
func (s *Store) Total() time.Duration { return s.total }

// Bounds returns the canvas bounds of the image.
func (s *Store) Bounds() image.Rectangle { return s.meta.Bounds }

// Resolution returns the density of the image.
func (s *Store) Resolution() Resolution { return s.meta.Resolution }

// Format returns the name of the image's container format.
func (s *Store) Format() string { return s.meta.Format }

// LoopCount returns the number of iterations requested by the
// image container.
func (s *Store) LoopCount() Iterations { return s.meta.LoopCount }

// IsAnimated returns whether the store holds more than one frame.
func (s *Store) IsAnimated() bool { return len(s.frames) > 1 }

// Release releases every surface held by the store. Release is
// idempotent.
func (s *Store) Release() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		for _, f := range s.frames {
			f.Surface.Release()
		}
	})
}

// ReleaseFrames releases the surfaces of frames. It is intended for use
// by decoders abandoning a partial decode.
func ReleaseFrames(frames []Frame) {
	for _, f := range frames {
		f.Surface.Release()
	}
}
