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

package pclxl

import "strconv"

// ColorSpace is the value of the ColorSpace attribute.
type ColorSpace int

// These are the color spaces supported for raster images.
const (
	Gray ColorSpace = 1
	RGB  ColorSpace = 2
)

// Components returns the number of color components of the color space,
// or 0 if the color space is not supported.
func (cs ColorSpace) Components() int {
	switch cs {
	case Gray:
		return 1
	case RGB:
		return 3
	default:
		return 0
	}
}

func (cs ColorSpace) String() string {
	switch cs {
	case Gray:
		return "eGray"
	case RGB:
		return "eRGB"
	default:
		return "ColorSpace(" + strconv.Itoa(int(cs)) + ")"
	}
}

// ColorDepth is the value of the ColorDepth and PaletteDepth attributes.
type ColorDepth int

// These are the valid color depths.
const (
	Depth1Bit ColorDepth = 0
	Depth4Bit ColorDepth = 1
	Depth8Bit ColorDepth = 2
)

// Bits returns the number of bits per component, or 0 if the depth is
// invalid.
func (d ColorDepth) Bits() int {
	switch d {
	case Depth1Bit:
		return 1
	case Depth4Bit:
		return 4
	case Depth8Bit:
		return 8
	default:
		return 0
	}
}

func (d ColorDepth) String() string {
	switch d {
	case Depth1Bit:
		return "e1Bit"
	case Depth4Bit:
		return "e4Bit"
	case Depth8Bit:
		return "e8Bit"
	default:
		return "ColorDepth(" + strconv.Itoa(int(d)) + ")"
	}
}

// ColorMapping is the value of the ColorMapping attribute.
type ColorMapping int

// These are the valid color mappings.
const (
	DirectPixel  ColorMapping = 0
	IndexedPixel ColorMapping = 1
)

func (m ColorMapping) String() string {
	switch m {
	case DirectPixel:
		return "eDirectPixel"
	case IndexedPixel:
		return "eIndexedPixel"
	default:
		return "ColorMapping(" + strconv.Itoa(int(m)) + ")"
	}
}

// CompressMode is the value of the CompressMode attribute.  It selects
// the encoding of the data of one ReadImage or ReadRastPattern block.
type CompressMode int

// These are the compression methods for raster data.
const (
	NoCompression       CompressMode = 0
	RLECompression      CompressMode = 1
	JPEGCompression     CompressMode = 2
	DeltaRowCompression CompressMode = 3
)

// IsValid reports whether m is one of the four supported modes.
func (m CompressMode) IsValid() bool {
	return m >= NoCompression && m <= DeltaRowCompression
}

// IsPadded reports whether rows encoded with m are padded to a multiple of
// PadBytesMultiple.  JPEG and delta row data is never padded.
func (m CompressMode) IsPadded() bool {
	return m == NoCompression || m == RLECompression
}

func (m CompressMode) String() string {
	switch m {
	case NoCompression:
		return "eNoCompression"
	case RLECompression:
		return "eRLECompression"
	case JPEGCompression:
		return "eJPEGCompression"
	case DeltaRowCompression:
		return "eDeltaRowCompression"
	default:
		return "CompressMode(" + strconv.Itoa(int(m)) + ")"
	}
}

// PatternPersistence is the value of the PatternPersistence attribute.
type PatternPersistence int

// These are the lifetimes of raster patterns.
const (
	TempPattern    PatternPersistence = 0
	PagePattern    PatternPersistence = 1
	SessionPattern PatternPersistence = 2
)

func (p PatternPersistence) String() string {
	switch p {
	case TempPattern:
		return "eTempPattern"
	case PagePattern:
		return "ePagePattern"
	case SessionPattern:
		return "eSessionPattern"
	default:
		return "PatternPersistence(" + strconv.Itoa(int(p)) + ")"
	}
}
