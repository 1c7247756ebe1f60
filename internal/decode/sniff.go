// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decode

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"io"

	"github.com/kortschak/flick/internal/animation"
)

// Format names.
const (
	GIF     = "gif"
	PNG     = "png"
	APNG    = "apng"
	JPEG    = "jpeg"
	BMP     = "bmp"
	TIFF    = "tiff"
	WebP    = "webp"
	Unknown = ""
)

// ReadPeeker is an io.Reader that can also peek n bytes ahead.
type ReadPeeker interface {
	io.Reader
	Peek(n int) ([]byte, error)
}

// peekSize is the buffer size used for sniffing. PNG acTL and pHYs
// chunks are only found if they start within this many bytes.
const peekSize = 64 << 10

// AsReadPeeker converts an io.Reader to a ReadPeeker.
func AsReadPeeker(r io.Reader) ReadPeeker {
	if r, ok := r.(ReadPeeker); ok {
		return r
	}
	return bufio.NewReaderSize(r, peekSize)
}

// hasMagic returns whether r starts with the provided magic bytes.
// A '?' in magic matches any byte.
func hasMagic(magic string, r ReadPeeker) bool {
	b, err := r.Peek(len(magic))
	if err != nil || len(b) != len(magic) {
		return false
	}
	for i, c := range b {
		if magic[i] != c && magic[i] != '?' {
			return false
		}
	}
	return true
}

const pngMagic = "\x89PNG\r\n\x1a\n"

// Sniff returns the format of the data held by r without consuming it.
// PNG data with an animation control chunk is reported as APNG.
func Sniff(r ReadPeeker) string {
	switch {
	case hasMagic("GIF8?a", r):
		return GIF
	case hasMagic(pngMagic, r):
		if animated, _ := pngInfo(r); animated {
			return APNG
		}
		return PNG
	case hasMagic("\xff\xd8", r):
		return JPEG
	case hasMagic("BM", r):
		return BMP
	case hasMagic("II*\x00", r), hasMagic("MM\x00*", r):
		return TIFF
	case hasMagic("RIFF????WEBP", r):
		return WebP
	default:
		return Unknown
	}
}

// IsAnimatedWebP returns whether the WebP data held by r has the
// extended format animation flag set.
func IsAnimatedWebP(r ReadPeeker) bool {
	// RIFF header, WEBP, VP8X chunk header then flags.
	b, err := r.Peek(21)
	if err != nil || len(b) < 21 {
		return false
	}
	if string(b[12:16]) != "VP8X" {
		return false
	}
	const animationFlag = 1 << 1
	return b[20]&animationFlag != 0
}

// pngInfo scans the PNG chunks visible to r.Peek before the first IDAT
// chunk and reports whether an acTL chunk is present and the resolution
// given by a pHYs chunk, if any.
func pngInfo(r ReadPeeker) (animated bool, res animation.Resolution) {
	b, _ := r.Peek(peekSize)
	b, ok := bytes.CutPrefix(b, []byte(pngMagic))
	if !ok {
		return false, res
	}
	for len(b) >= 8 {
		n := int(binary.BigEndian.Uint32(b[:4]))
		typ := string(b[4:8])
		if n < 0 || len(b) < 8+n {
			break
		}
		data := b[8 : 8+n]
		switch typ {
		case "acTL":
			animated = true
		case "pHYs":
			const perMetre = 1
			if len(data) == 9 && data[8] == perMetre {
				const inchesPerMetre = 39.3700787
				res.X = float64(binary.BigEndian.Uint32(data[0:4])) / inchesPerMetre
				res.Y = float64(binary.BigEndian.Uint32(data[4:8])) / inchesPerMetre
			}
		case "IDAT", "IEND":
			return animated, res
		}
		// Length, type, data and CRC.
		if len(b) < 12+n {
			break
		}
		b = b[12+n:]
	}
	return animated, res
}

// ctxReader is an io.Reader that fails with the context's error once the
// context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r ctxReader) Read(p []byte) (int, error) {
	err := r.ctx.Err()
	if err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// reader returns a ReadPeeker over r that observes ctx.
func reader(ctx context.Context, r io.Reader) ReadPeeker {
	return bufio.NewReaderSize(ctxReader{ctx: ctx, r: r}, peekSize)
}
