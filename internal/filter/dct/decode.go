// seehuhn.de/go/pclxl - decoding of PCL XL raster images
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package dct implements the JPEG decompression filter for raster data.
//
// The decoder collects the compressed data of one block and decodes it once
// the data is complete.  The decoded pixels are then drained row by row.
package dct

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"

	"seehuhn.de/go/pclxl/internal/cursor"
)

// ErrTruncated is returned by Close, if the compressed data ended before
// the decoder could produce its output.
var ErrTruncated = errors.New("incomplete JPEG data")

// Decoder decodes one JPEG compressed block.
type Decoder struct {
	length int    // length of the compressed data, 0 if unknown
	in     []byte // compressed data collected so far
	inDone bool
	eoi    eoiScanner

	out    []byte // decoded pixel data
	outPos int

	width, height, channels int
}

// maxInitialBuffer limits the memory reserved before any compressed data
// has arrived.
const maxInitialBuffer = 64 << 10

// NewDecoder returns a decoder for a block of length bytes of compressed
// data.  If length is zero, the compressed data extends up to and including
// the end-of-image marker.  Markers inside marker segments do not count.
func NewDecoder(length int) *Decoder {
	d := &Decoder{length: length}
	if length > 0 {
		d.in = make([]byte, 0, min(length, maxInitialBuffer))
	}
	return d
}

// Process consumes compressed data from src and writes decoded bytes to
// dst.  It returns the number of bytes written.
//
// No output is produced until the whole compressed block has been
// consumed.  Input beyond the end of the block is not consumed.
func (d *Decoder) Process(dst []byte, src *cursor.Cursor) (int, error) {
	if !d.inDone {
		if d.length > 0 {
			d.in = append(d.in, src.Next(d.length-len(d.in))...)
			d.inDone = len(d.in) == d.length
		} else {
			avail := src.Bytes()
			end := d.eoi.find(avail)
			if end < 0 {
				end = len(avail)
			} else {
				d.inDone = true
			}
			d.in = append(d.in, src.Next(end)...)
		}
		if !d.inDone {
			return 0, nil
		}

		out, err := d.decode()
		d.in = nil
		if err != nil {
			return 0, err
		}
		d.out = out
	}

	n := copy(dst, d.out[d.outPos:])
	d.outPos += n
	return n, nil
}

// InputDone reports whether the whole compressed block has been consumed.
func (d *Decoder) InputDone() bool {
	return d.inDone
}

// Remaining returns the number of decoded bytes not yet returned by Process.
func (d *Decoder) Remaining() int {
	return len(d.out) - d.outPos
}

// Size returns the dimensions of the decoded image, and the number of bytes
// per pixel.  The values are only available after the first byte of output
// has been produced.
func (d *Decoder) Size() (width, height, channels int) {
	return d.width, d.height, d.channels
}

// Close releases the buffers held by the decoder.
// If the compressed block is incomplete, ErrTruncated is returned.
func (d *Decoder) Close() error {
	inDone := d.inDone
	d.in = nil
	d.out = nil
	d.outPos = 0
	if !inDone {
		return ErrTruncated
	}
	return nil
}

// decode converts the collected JPEG data into raw pixel bytes.
//
// The output contains interleaved channel bytes, row by row, with no padding.
// For color images, the output is RGB (3 bytes per pixel).
// For grayscale images, the output is 1 byte per pixel.
// For CMYK images, the output is 4 bytes per pixel.
func (d *Decoder) decode() ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(d.in))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	var buf []byte

	switch img := img.(type) {
	case *image.YCbCr:
		d.channels = 3
		buf = make([]byte, w*h*3)
		i := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				yi := img.YOffset(x, y)
				ci := img.COffset(x, y)
				r, g, b := color.YCbCrToRGB(img.Y[yi], img.Cb[ci], img.Cr[ci])
				buf[i] = r
				buf[i+1] = g
				buf[i+2] = b
				i += 3
			}
		}

	case *image.Gray:
		d.channels = 1
		buf = make([]byte, w*h)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			srcOff := (y-bounds.Min.Y)*img.Stride + (bounds.Min.X - img.Rect.Min.X)
			dstOff := (y - bounds.Min.Y) * w
			copy(buf[dstOff:dstOff+w], img.Pix[srcOff:srcOff+w])
		}

	case *image.CMYK:
		d.channels = 4
		buf = make([]byte, w*h*4)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			srcOff := (y-bounds.Min.Y)*img.Stride + (bounds.Min.X-img.Rect.Min.X)*4
			dstOff := (y - bounds.Min.Y) * w * 4
			copy(buf[dstOff:dstOff+w*4], img.Pix[srcOff:srcOff+w*4])
		}

	default:
		// generic fallback: produce RGB
		d.channels = 3
		buf = make([]byte, w*h*3)
		i := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, b, _ := img.At(x, y).RGBA()
				buf[i] = uint8(r >> 8)
				buf[i+1] = uint8(g >> 8)
				buf[i+2] = uint8(b >> 8)
				i += 3
			}
		}
	}

	d.width = w
	d.height = h
	return buf, nil
}

type eoiState int

const (
	eoiMarker   eoiState = iota // between segments, expecting a marker
	eoiLenHigh                  // first byte of a segment length
	eoiLenLow                   // second byte of a segment length
	eoiSkip                     // inside a marker segment
	eoiScan                     // inside entropy coded data
)

// eoiScanner finds the end-of-image marker (FF D9) of a JPEG stream.
// Marker segments are skipped using their length field, so that markers
// inside APPn segments, for example in an embedded thumbnail, are ignored.
type eoiScanner struct {
	state eoiState
	ff    bool // the previous byte was 0xFF
	sos   bool // the current segment is a start-of-scan header
	hi    byte
	skip  int
}

// find returns the position in data just after the end-of-image marker,
// or -1 if data does not contain the end of the image.  The scanner keeps
// its state between calls.
func (s *eoiScanner) find(data []byte) int {
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch s.state {
		case eoiMarker, eoiScan:
			if !s.ff {
				s.ff = b == 0xFF
				continue
			}
			switch {
			case b == 0xFF:
				// fill byte
			case b == 0xD9:
				s.ff = false
				return i + 1
			case s.state == eoiScan && b == 0x00,
				b >= 0xD0 && b <= 0xD7, b == 0xD8, b == 0x01:
				// stuffed byte or marker without a segment
				s.ff = false
			default:
				s.ff = false
				s.sos = b == 0xDA
				s.state = eoiLenHigh
			}
		case eoiLenHigh:
			s.hi = b
			s.state = eoiLenLow
		case eoiLenLow:
			s.skip = (int(s.hi)<<8 | int(b)) - 2
			s.state = eoiSkip
			if s.skip <= 0 {
				s.endSegment()
			}
		case eoiSkip:
			k := min(s.skip, len(data)-i)
			s.skip -= k
			i += k - 1
			if s.skip == 0 {
				s.endSegment()
			}
		}
	}
	return -1
}

func (s *eoiScanner) endSegment() {
	if s.sos {
		s.state = eoiScan
	} else {
		s.state = eoiMarker
	}
}
