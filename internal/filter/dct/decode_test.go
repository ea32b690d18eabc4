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

package dct

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"seehuhn.de/go/pclxl/internal/cursor"
)

func makeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 100})
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func grayImage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 100
	}
	return img
}

func near(a, b byte) bool {
	d := int(a) - int(b)
	return d >= -2 && d <= 2
}

func TestGray(t *testing.T) {
	data := makeJPEG(t, grayImage(16, 8))

	for _, chunk := range []int{1, 7, len(data)} {
		t.Run(fmt.Sprintf("chunk_%d", chunk), func(t *testing.T) {
			d := NewDecoder(len(data))
			var out []byte
			buf := make([]byte, 5)
			rest := data
			for len(rest) > 0 || d.Remaining() > 0 {
				k := min(chunk, len(rest))
				src := cursor.New(rest[:k])
				n, err := d.Process(buf, src)
				if err != nil {
					t.Fatal(err)
				}
				rest = rest[src.Consumed():]
				out = append(out, buf[:n]...)
				if n == 0 && k == 0 {
					break
				}
			}

			w, h, ch := d.Size()
			if w != 16 || h != 8 || ch != 1 {
				t.Fatalf("Size() = %d, %d, %d", w, h, ch)
			}
			if len(out) != 16*8 {
				t.Fatalf("got %d bytes", len(out))
			}
			for i, b := range out {
				if !near(b, 100) {
					t.Fatalf("byte %d: got %d, want 100", i, b)
				}
			}
			if err := d.Close(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestRGB(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			img.Set(x, y, color.RGBA{R: 200, G: 50, B: 50, A: 255})
		}
	}
	data := makeJPEG(t, img)

	d := NewDecoder(len(data))
	out := make([]byte, 8*8*3)
	n, err := d.Process(out, cursor.New(data))
	if err != nil {
		t.Fatal(err)
	}
	if n != len(out) {
		t.Fatalf("got %d bytes, want %d", n, len(out))
	}
	if _, _, ch := d.Size(); ch != 3 {
		t.Errorf("got %d channels", ch)
	}
	for i := 0; i < len(out); i += 3 {
		if !near(out[i], 200) || !near(out[i+1], 50) || !near(out[i+2], 50) {
			t.Fatalf("pixel %d: % d", i/3, out[i:i+3])
		}
	}
}

func TestUnknownLength(t *testing.T) {
	data := makeJPEG(t, grayImage(8, 8))
	trailer := []byte{0xB2, 0x42}
	input := append(bytes.Clone(data), trailer...)

	d := NewDecoder(0)
	out := make([]byte, 64)

	// the marker is split between the two calls
	src := cursor.New(input[:len(data)-1])
	n, err := d.Process(out, src)
	if err != nil || n != 0 {
		t.Fatalf("n=%d, err=%v", n, err)
	}
	src = cursor.New(input[len(data)-1:])
	n, err = d.Process(out, src)
	if err != nil {
		t.Fatal(err)
	}
	if n != 64 {
		t.Errorf("got %d bytes", n)
	}
	if src.Len() != len(trailer) {
		t.Errorf("%d bytes left in input, want %d", src.Len(), len(trailer))
	}
}

func TestTruncated(t *testing.T) {
	data := makeJPEG(t, grayImage(8, 8))
	d := NewDecoder(len(data))
	n, err := d.Process(make([]byte, 64), cursor.New(data[:10]))
	if err != nil || n != 0 {
		t.Fatalf("n=%d, err=%v", n, err)
	}
	if d.InputDone() {
		t.Error("InputDone() = true")
	}
	if err := d.Close(); !errors.Is(err, ErrTruncated) {
		t.Errorf("Close() = %v", err)
	}
}

func TestCorrupt(t *testing.T) {
	data := bytes.Repeat([]byte{0x55}, 20)
	d := NewDecoder(len(data))
	_, err := d.Process(make([]byte, 10), cursor.New(data))
	if err == nil {
		t.Error("corrupt data accepted")
	}
}

func TestLargeLength(t *testing.T) {
	data := makeJPEG(t, grayImage(8, 8))

	d := NewDecoder(1 << 30)
	if c := cap(d.in); c > maxInitialBuffer {
		t.Fatalf("%d bytes reserved before any input", c)
	}
	n, err := d.Process(make([]byte, 64), cursor.New(data))
	if err != nil || n != 0 {
		t.Fatalf("n=%d, err=%v", n, err)
	}
	if d.InputDone() {
		t.Error("input complete after a short block")
	}
	if err := d.Close(); !errors.Is(err, ErrTruncated) {
		t.Errorf("Close() = %v, want %v", err, ErrTruncated)
	}
}

func TestMarkerInSegment(t *testing.T) {
	data := makeJPEG(t, grayImage(8, 8))

	// An APP1 segment which contains an end-of-image marker, like an
	// embedded thumbnail.
	app1 := []byte{0xFF, 0xE1, 0x00, 0x08, 0xFF, 0xD8, 0xFF, 0xD9, 0xFF, 0xD9}
	input := append([]byte{}, data[:2]...)
	input = append(input, app1...)
	input = append(input, data[2:]...)
	input = append(input, 0x42)

	for _, chunk := range []int{1, 3, len(input)} {
		t.Run(fmt.Sprintf("chunk_%d", chunk), func(t *testing.T) {
			d := NewDecoder(0)
			out := make([]byte, 64)
			rest := input
			total := 0
			for len(rest) > 0 && !d.InputDone() {
				src := cursor.New(rest[:min(chunk, len(rest))])
				n, err := d.Process(out[total:], src)
				if err != nil {
					t.Fatal(err)
				}
				total += n
				rest = rest[src.Consumed():]
			}
			if total != 64 {
				t.Errorf("got %d bytes of output", total)
			}
			if len(rest) != 1 {
				t.Errorf("%d bytes left in input, want 1", len(rest))
			}
			for i, v := range out[:total] {
				if !near(v, 100) {
					t.Fatalf("pixel %d = %d", i, v)
				}
			}
		})
	}
}
