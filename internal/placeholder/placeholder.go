// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package placeholder renders text images shown in place of images that
// could not be loaded.
package placeholder

import (
	"image"
	"image/color"
	"strings"

	"github.com/bbrks/wrap/v2"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Face is the font used to render placeholder text.
var Face = basicfont.Face7x13

const ellipsis = "..."

// Image returns an image of the given size filled with bg and holding msg
// drawn in fg, centered and broken at word boundaries. Text that does not
// fit is truncated with an ellipsis.
func Image(size image.Point, msg string, fg, bg color.Color) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(dst, dst.Rect, image.NewUniform(bg), image.Point{}, draw.Src)

	rows, cols := Grid(size, Face)
	lines := Lines(msg, rows, cols)
	if len(lines) == 0 {
		return dst
	}
	top := (size.Y - len(lines)*Face.Height) / 2
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fg),
		Face: Face,
	}
	for i, l := range lines {
		w := d.MeasureString(l).Round()
		d.Dot = fixed.P((size.X-w)/2, top+Face.Ascent+i*Face.Height)
		d.DrawString(l)
	}
	return dst
}

// Grid returns the number of text rows and columns of face that fit
// within size.
func Grid(size image.Point, face *basicfont.Face) (rows, cols int) {
	if face.Height <= 0 || face.Advance <= 0 {
		return 0, 0
	}
	return size.Y / face.Height, size.X / face.Advance
}

// Lines returns msg wrapped to at most cols columns with at most rows
// lines. If msg does not fit, the last line ends with an ellipsis.
func Lines(msg string, rows, cols int) []string {
	msg = strings.TrimSpace(msg)
	if rows <= 0 || cols <= 0 || msg == "" {
		return nil
	}
	w := wrap.NewWrapper()
	w.StripTrailingNewline = true
	w.CutLongWords = true
	lines := strings.Split(w.Wrap(msg, cols), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	if len(lines) <= rows {
		return lines
	}
	lines = lines[:rows]
	last := []rune(lines[rows-1])
	n := cols - len(ellipsis)
	switch {
	case n <= 0:
		lines[rows-1] = ellipsis[:min(cols, len(ellipsis))]
	case len(last) > n:
		lines[rows-1] = string(last[:n]) + ellipsis
	default:
		lines[rows-1] = string(last) + ellipsis
	}
	return lines
}
