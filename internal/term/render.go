// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package term

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// Renderer draws successive frames to an xterm compatible terminal,
// overwriting the previous frame.
type Renderer struct {
	w io.Writer

	// cols and lines is the space available to a rendered
	// frame in terminal characters.
	cols, lines int

	// Invert renders light pixels as dots.
	Invert bool

	rows   int
	hidden bool
	buf    bytes.Buffer
}

// NewRenderer returns a Renderer writing to w that fits frames within
// cols by lines characters. One line is reserved for the cursor.
func NewRenderer(w io.Writer, cols, lines int) *Renderer {
	return &Renderer{w: w, cols: max(cols, 1), lines: max(lines-1, 1)}
}

// Pixels returns the maximum frame size in pixels.
func (r *Renderer) Pixels() image.Point {
	return image.Point{X: r.cols * Cell.X, Y: r.lines * Cell.Y}
}

// Render fits img to the renderer's size and draws it in place of any
// previously rendered frame.
func (r *Renderer) Render(img image.Image) error {
	r.buf.Reset()
	if !r.hidden {
		r.buf.WriteString(hideCursor)
		r.hidden = true
	}
	if r.rows > 0 {
		fmt.Fprintf(&r.buf, resetCursor, r.rows)
	}
	px := r.Pixels()
	var fitted image.Image = img
	if b := img.Bounds(); b.Dx() > px.X || b.Dy() > px.Y {
		fitted = imaging.Fit(img, px.X, px.Y, imaging.Box)
	}
	r.rows = encode(&r.buf, Monochrome(fitted, r.Invert))
	_, err := r.w.Write(r.buf.Bytes())
	return err
}

// Close restores the terminal cursor.
func (r *Renderer) Close() error {
	if !r.hidden {
		return nil
	}
	r.hidden = false
	_, err := io.WriteString(r.w, showCursor)
	return err
}

// Xterm control sequences.
const (
	// resetCursor moves the cursor to the start of the line and up
	// the given number of lines.
	resetCursor = "\033[999D\033[%dA"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?12l\033[?25h"
)
