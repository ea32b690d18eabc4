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

// Package sink provides destinations for the rows of decoded PCL XL images.
//
// An [Image] assembles the rows into a Go image.  A [PatternStore] keeps
// decoded raster patterns until they go out of scope.
package sink

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pclxl"
	"seehuhn.de/go/pclxl/pximage"
)

var errTooManyRows = errors.New("too many rows")

// MaxImageBytes is the largest amount of pixel memory NewImage allocates
// for one image.
const MaxImageBytes = 1 << 30

// Image collects the rows of an image into an [image.Image].
//
// Gray images are stored as *image.Gray, RGB images as *image.RGBA, and
// indexed images as *image.Paletted.  Rows which are never delivered stay
// zero (transparent for RGB images, black otherwise).
type Image struct {
	params pximage.Params
	img    draw.Image
	y      int
	closed bool
}

// NewImage allocates a sink for an image with the given parameters.
// Images which need more than MaxImageBytes of pixel memory are rejected
// with an [pclxl.InsufficientMemory] error.
func NewImage(p *pximage.Params) (*Image, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	bytesPerPixel := int64(1)
	if p.ColorMapping == pclxl.DirectPixel && p.ColorSpace == pclxl.RGB {
		bytesPerPixel = 4
	}
	size := int64(p.SourceWidth) * int64(p.SourceHeight) * bytesPerPixel
	if size > MaxImageBytes {
		return nil, pclxl.Errorf("", pclxl.InsufficientMemory,
			fmt.Errorf("%dx%d image needs %d bytes", p.SourceWidth, p.SourceHeight, size))
	}

	rect := image.Rect(0, 0, p.SourceWidth, p.SourceHeight)
	var img draw.Image
	switch {
	case p.ColorMapping == pclxl.IndexedPixel:
		img = image.NewPaletted(rect, palette(p))
	case p.ColorSpace == pclxl.Gray:
		img = image.NewGray(rect)
	default:
		img = image.NewRGBA(rect)
	}

	s := &Image{
		params: *p,
		img:    img,
	}
	return s, nil
}

func palette(p *pximage.Params) color.Palette {
	comps := p.ColorSpace.Components()
	n := len(p.Palette) / comps
	pal := make(color.Palette, n)
	for i := range pal {
		entry := p.Palette[i*comps : (i+1)*comps]
		if comps == 1 {
			pal[i] = color.Gray{Y: entry[0]}
		} else {
			pal[i] = color.RGBA{R: entry[0], G: entry[1], B: entry[2], A: 255}
		}
	}
	return pal
}

// DeliverRow implements the [pximage.Sink] interface.
func (s *Image) DeliverRow(row []byte) error {
	if s.y >= s.params.SourceHeight {
		return errTooManyRows
	}

	bits := s.params.ColorDepth.Bits()
	w := s.params.SourceWidth
	switch img := s.img.(type) {
	case *image.Paletted:
		pix := img.Pix[s.y*img.Stride:]
		for x := range w {
			pix[x] = sample(row, x, bits)
		}
	case *image.Gray:
		pix := img.Pix[s.y*img.Stride:]
		for x := range w {
			pix[x] = expand(sample(row, x, bits), bits)
		}
	case *image.RGBA:
		pix := img.Pix[s.y*img.Stride:]
		for x := range w {
			pix[4*x] = expand(sample(row, 3*x, bits), bits)
			pix[4*x+1] = expand(sample(row, 3*x+1, bits), bits)
			pix[4*x+2] = expand(sample(row, 3*x+2, bits), bits)
			pix[4*x+3] = 255
		}
	}
	s.y++
	return nil
}

// Close marks the image as finished.
func (s *Image) Close() error {
	s.closed = true
	return nil
}

// Rows returns the number of rows delivered so far.
func (s *Image) Rows() int {
	return s.y
}

// Complete reports whether all rows of the image have been delivered.
func (s *Image) Complete() bool {
	return s.y == s.params.SourceHeight
}

// Params returns the parameters of the image.
func (s *Image) Params() *pximage.Params {
	return &s.params
}

// Image returns the image at its source resolution.
func (s *Image) Image() image.Image {
	return s.img
}

// Render draws the image at its destination size onto a white background.
// The argument scale gives the number of device pixels per user unit.
// If the image has no destination size, the source size is used.
// If interp is nil, nearest neighbor interpolation is used.
func (s *Image) Render(scale float64, interp xdraw.Transformer) *image.RGBA {
	sw := float64(s.params.SourceWidth)
	sh := float64(s.params.SourceHeight)
	dw, dh := s.params.DestinationSize[0]*scale, s.params.DestinationSize[1]*scale
	if dw <= 0 || dh <= 0 {
		dw, dh = sw, sh
	}
	if interp == nil {
		interp = xdraw.NearestNeighbor
	}

	w := max(1, int(math.Round(dw)))
	h := max(1, int(math.Round(dh)))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	m := matrix.Scale(float64(w)/sw, float64(h)/sh)
	aff := f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
	interp.Transform(dst, aff, s.img, s.img.Bounds(), draw.Over, nil)
	return dst
}

// sample returns the i-th value of the given bit depth from row.
func sample(row []byte, i, bits int) byte {
	switch bits {
	case 1:
		return (row[i/8] >> (7 - i%8)) & 1
	case 4:
		return (row[i/2] >> (4 * (1 - i%2))) & 0x0F
	default:
		return row[i]
	}
}

// expand scales a value of the given bit depth to the range 0-255.
func expand(v byte, bits int) byte {
	switch bits {
	case 1:
		return v * 255
	case 4:
		return v * 17
	default:
		return v
	}
}
