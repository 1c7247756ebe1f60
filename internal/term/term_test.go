// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package term

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"
)

func TestBrailleRune(t *testing.T) {
	for _, test := range []struct {
		name string
		b    Braille
		want rune
	}{
		{name: "empty", want: '⠀'},
		{name: "dot1", b: Braille{{true}}, want: '⠁'},
		{name: "dot7", b: Braille{{false, false, false, true}}, want: '⡀'},
		{name: "dot4", b: Braille{{}, {true}}, want: '⠈'},
		{name: "dot8", b: Braille{{}, {false, false, false, true}}, want: '⢀'},
		{name: "left", b: Braille{{true, true, true, true}}, want: '⡇'},
		{name: "full", b: Braille{{true, true, true, true}, {true, true, true, true}}, want: '⣿'},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := test.b.Rune()
			if got != test.want {
				t.Errorf("unexpected rune: got:%q want:%q", got, test.want)
			}
		})
	}
}

// halves returns an image with the left half black and the right
// half white.
func halves(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, image.Rect(0, 0, w/2, h), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(w/2, 0, w, h), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func TestEncode(t *testing.T) {
	for _, test := range []struct {
		name   string
		img    image.Image
		invert bool
		want   string
	}{
		{
			name: "halves",
			img:  halves(4, 8),
			want: "⣿⠀\n⣿⠀\n",
		},
		{
			name:   "halves_inverted",
			img:    halves(4, 8),
			invert: true,
			want:   "⠀⣿\n⠀⣿\n",
		},
		{
			name: "ragged",
			img:  halves(6, 5),
			want: "⣿⡇⠀\n⠉⠁⠀\n",
		},
		{
			name: "transparent",
			img:  image.NewRGBA(image.Rect(0, 0, 2, 4)),
			want: "⠀\n",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Encode(&buf, Monochrome(test.img, test.invert))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := buf.String(); got != test.want {
				t.Errorf("unexpected encoding:\ngot:\n%s\nwant:\n%s", got, test.want)
			}
		})
	}
}

func TestRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, 2, 3)
	if got, want := r.Pixels(), image.Pt(4, 8); got != want {
		t.Errorf("unexpected pixel size: got:%v want:%v", got, want)
	}

	err := r.Render(halves(4, 8))
	if err != nil {
		t.Fatalf("unexpected error rendering first frame: %v", err)
	}
	first := buf.String()
	if !strings.HasPrefix(first, hideCursor) {
		t.Errorf("expected hidden cursor: %q", first)
	}
	if strings.Contains(first, "\033[999D") {
		t.Errorf("unexpected cursor reset on first frame: %q", first)
	}

	buf.Reset()
	err = r.Render(halves(8, 16))
	if err != nil {
		t.Fatalf("unexpected error rendering second frame: %v", err)
	}
	second := buf.String()
	want := "\033[999D\033[2A"
	if !strings.HasPrefix(second, want) {
		t.Errorf("expected cursor reset prefix %q: %q", want, second)
	}
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(second, want), "\n"), "\n")
	if len(lines) != 2 {
		t.Errorf("unexpected number of lines for fitted frame: got:%d want:2\n%s", len(lines), second)
	}

	buf.Reset()
	err = r.Close()
	if err != nil {
		t.Fatalf("unexpected error closing: %v", err)
	}
	if buf.String() != showCursor {
		t.Errorf("unexpected close output: got:%q want:%q", buf.String(), showCursor)
	}
}
