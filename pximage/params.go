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

package pximage

import (
	"fmt"

	"seehuhn.de/go/pclxl"
	"seehuhn.de/go/pclxl/bitmap"
)

// maxRowBytes limits the size of the row buffer.
const maxRowBytes = 1 << 24

// Kind distinguishes images from raster patterns.
type Kind int

// These are the possible values of Kind.
const (
	Image Kind = iota
	RasterPattern
)

func (k Kind) String() string {
	switch k {
	case Image:
		return "Image"
	case RasterPattern:
		return "RastPattern"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Params describes an image or a raster pattern.
// The fields correspond to the attributes of the BeginImage and
// BeginRastPattern operators, together with the current color space.
type Params struct {
	Kind Kind

	// ColorSpace is the color space of the image.
	// Valid values are [pclxl.Gray] and [pclxl.RGB].
	ColorSpace pclxl.ColorSpace

	// ColorMapping specifies whether pixel values are colors or indices
	// into Palette.
	ColorMapping pclxl.ColorMapping

	// ColorDepth gives the number of bits per pixel value.
	ColorDepth pclxl.ColorDepth

	// Palette holds the palette for indexed images.  Every entry has one
	// byte for each component of ColorSpace.
	Palette []byte

	// SourceWidth and SourceHeight give the size of the image in pixels.
	SourceWidth  int
	SourceHeight int

	// DestinationSize gives the size of the image on the page, in user
	// units.  This is (0, 0) if not specified.
	DestinationSize [2]float64

	// PatternID and Persistence are only used for raster patterns.
	PatternID   int
	Persistence pclxl.PatternPersistence
}

// Components returns the number of pixel values per pixel in the raster
// data.  This is 1 for indexed images.
func (p *Params) Components() int {
	if p.ColorMapping == pclxl.IndexedPixel {
		return 1
	}
	return p.ColorSpace.Components()
}

// DataPerRow returns the length of an unpadded row of the image.
func (p *Params) DataPerRow() int {
	return bitmap.DataPerRow(p.SourceWidth, p.ColorDepth.Bits(), p.Components())
}

// Validate checks that the parameters describe a valid image.
func (p *Params) Validate() error {
	if p.Kind != Image && p.Kind != RasterPattern {
		return pclxl.Errorf("", pclxl.IllegalAttributeValue,
			fmt.Errorf("invalid kind %d", int(p.Kind)))
	}

	comps := p.ColorSpace.Components()
	if comps == 0 {
		return pclxl.Errorf("", pclxl.IllegalAttributeValue,
			fmt.Errorf("unsupported color space %s", p.ColorSpace))
	}
	bits := p.ColorDepth.Bits()
	if bits == 0 {
		return pclxl.Errorf("", pclxl.IllegalAttributeValue,
			fmt.Errorf("invalid color depth %d", int(p.ColorDepth)))
	}

	switch p.ColorMapping {
	case pclxl.DirectPixel:
		// pass
	case pclxl.IndexedPixel:
		if p.Palette == nil {
			return pclxl.Errorf("", pclxl.MissingPalette, nil)
		}
		if want := (1 << bits) * comps; len(p.Palette) != want {
			return pclxl.Errorf("", pclxl.PaletteSizeMismatch,
				fmt.Errorf("palette has %d bytes, expected %d", len(p.Palette), want))
		}
	default:
		return pclxl.Errorf("", pclxl.IllegalAttributeValue,
			fmt.Errorf("invalid color mapping %d", int(p.ColorMapping)))
	}

	if p.SourceWidth <= 0 {
		return pclxl.Errorf("", pclxl.IllegalAttributeValue,
			fmt.Errorf("invalid SourceWidth %d", p.SourceWidth))
	}
	if p.SourceHeight < 1 {
		return pclxl.Errorf("", pclxl.IllegalAttributeValue,
			fmt.Errorf("invalid SourceHeight %d", p.SourceHeight))
	}
	rowBits := int64(p.SourceWidth) * int64(bits) * int64(p.Components())
	if (rowBits+7)/8 > maxRowBytes {
		return pclxl.Errorf("", pclxl.InsufficientMemory,
			fmt.Errorf("rows of %d bits are too large", rowBits))
	}
	if p.DestinationSize[0] < 0 || p.DestinationSize[1] < 0 {
		return pclxl.Errorf("", pclxl.IllegalAttributeValue,
			fmt.Errorf("invalid DestinationSize %g", p.DestinationSize))
	}

	return nil
}

// Block describes the data of one ReadImage or ReadRastPattern operator.
type Block struct {
	// StartLine is the index of the first row in the block.  This must be
	// equal to the number of rows read so far.
	StartLine int

	// BlockHeight is the number of rows in the block.
	BlockHeight int

	// CompressMode is the compression method of the block.
	CompressMode pclxl.CompressMode

	// PadBytesMultiple is the row alignment of uncompressed and RLE data.
	// If this is zero, the default value 4 is used.
	PadBytesMultiple int

	// BlockByteLength is the length of the data of the block, or 0 if
	// unknown.
	BlockByteLength int
}
