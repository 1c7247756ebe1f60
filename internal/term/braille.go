// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package term renders images to a text terminal using braille patterns.
package term

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"golang.org/x/image/draw"
)

// Cell is the size in pixels of a single braille character.
var Cell = image.Point{X: 2, Y: 4}

// Braille is an 8 dot braille pattern indexed by x and y position
// within the cell.
type Braille [2][4]bool

// dots is the Unicode dot number bit for each position.
//
//	(1)(4)
//	(2)(5)
//	(3)(6)
//	(7)(8)
var dots = [2][4]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// Rune returns the Unicode braille pattern for b.
func (b Braille) Rune() rune {
	r := rune(0x2800)
	for x, col := range b {
		for y, set := range col {
			if set {
				r |= dots[x][y]
			}
		}
	}
	return r
}

func (b Braille) String() string { return string(b.Rune()) }

// palette is the monochrome palette images are dithered to. Index
// zero is ink.
var palette = color.Palette{color.Black, color.White, color.Transparent}

// Monochrome returns img dithered to black, white and transparent
// using Floyd-Steinberg error diffusion. If invert is true, the image
// is inverted before dithering so light pixels become ink.
func Monochrome(img image.Image, invert bool) *image.Paletted {
	if invert {
		img = inverted{img}
	}
	dst := image.NewPaletted(img.Bounds(), palette)
	draw.FloydSteinberg.Draw(dst, dst.Rect, img, img.Bounds().Min)
	return dst
}

// Encode writes img to w as lines of braille characters, one character
// for each Cell of pixels. Black pixels are rendered as dots.
func Encode(w io.Writer, img *image.Paletted) error {
	var buf bytes.Buffer
	encode(&buf, img)
	_, err := w.Write(buf.Bytes())
	return err
}

// encode appends the braille rendering of img to buf and returns the
// number of lines written.
func encode(buf *bytes.Buffer, img *image.Paletted) int {
	var lines int
	r := img.Rect
	for py := r.Min.Y; py < r.Max.Y; py += Cell.Y {
		for px := r.Min.X; px < r.Max.X; px += Cell.X {
			var b Braille
			for y := 0; y < Cell.Y && py+y < r.Max.Y; y++ {
				for x := 0; x < Cell.X && px+x < r.Max.X; x++ {
					b[x][y] = img.ColorIndexAt(px+x, py+y) == 0
				}
			}
			buf.WriteRune(b.Rune())
		}
		buf.WriteByte('\n')
		lines++
	}
	return lines
}

// inverted is an image with inverted color channels and the same alpha.
type inverted struct {
	image.Image
}

func (img inverted) At(x, y int) color.Color {
	r, g, b, a := img.Image.At(x, y).RGBA()
	return color.RGBA64{R: uint16(a - r), G: uint16(a - g), B: uint16(a - b), A: uint16(a)}
}

func (img inverted) ColorModel() color.Model { return color.RGBA64Model }
