// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package placeholder

import (
	"image"
	"image/color"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

var linesTests = []struct {
	name string
	msg  string
	rows int
	cols int
	want []string
}{
	{
		name: "fits",
		msg:  "no such file",
		rows: 2, cols: 20,
		want: []string{"no such file"},
	},
	{
		name: "wrapped",
		msg:  "gif: corrupt stream: unexpected EOF",
		rows: 3, cols: 16,
		want: []string{"gif: corrupt", "stream:", "unexpected EOF"},
	},
	{
		name: "truncated",
		msg:  "gif: corrupt stream: unexpected EOF",
		rows: 2, cols: 16,
		want: []string{"gif: corrupt", "stream:..."},
	},
	{
		name: "long_word",
		msg:  "abcdefghijklmnop",
		rows: 3, cols: 6,
		want: []string{"abcdef", "ghijkl", "mnop"},
	},
	{
		name: "narrow",
		msg:  "failure",
		rows: 1, cols: 2,
		want: []string{".."},
	},
	{
		name: "empty",
		msg:  "   ",
		rows: 4, cols: 10,
		want: nil,
	},
	{
		name: "no_room",
		msg:  "failure",
		rows: 0, cols: 10,
		want: nil,
	},
}

func TestLines(t *testing.T) {
	for _, test := range linesTests {
		t.Run(test.name, func(t *testing.T) {
			got := Lines(test.msg, test.rows, test.cols)
			if !cmp.Equal(got, test.want) {
				t.Errorf("unexpected lines:\n--- want:\n+++ got:\n%s", cmp.Diff(test.want, got))
			}
			if len(got) > test.rows {
				t.Errorf("too many lines: got:%d max:%d", len(got), test.rows)
			}
			for _, l := range got {
				if n := utf8.RuneCountInString(l); n > test.cols {
					t.Errorf("line too long: %q has %d runes, max:%d", l, n, test.cols)
				}
			}
		})
	}
}

func TestImage(t *testing.T) {
	size := image.Pt(140, 52)
	fg := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	bg := color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	img := Image(size, "gif: corrupt stream", fg, bg)
	if img.Bounds() != (image.Rectangle{Max: size}) {
		t.Fatalf("unexpected bounds: got:%v want:%v", img.Bounds(), image.Rectangle{Max: size})
	}
	if got := img.RGBAAt(0, 0); got != bg {
		t.Errorf("unexpected corner color: got:%v want:%v", got, bg)
	}
	var ink int
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			if img.RGBAAt(x, y) != bg {
				ink++
			}
		}
	}
	if ink == 0 {
		t.Error("no text rendered")
	}

	blank := Image(image.Pt(3, 3), "too small", fg, bg)
	for i := 0; i < len(blank.Pix); i += 4 {
		if blank.Pix[i] != bg.R {
			t.Fatalf("unexpected text in undersized image")
		}
	}
}
