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

package pxl

import "fmt"

// DataType is the element type of an attribute value.
type DataType byte

// These are the element types of PCL XL attribute values.
const (
	UByte DataType = iota
	UInt16
	UInt32
	SInt16
	SInt32
	Real32
)

func (t DataType) size() int {
	switch t {
	case UByte:
		return 1
	case UInt16, SInt16:
		return 2
	default:
		return 4
	}
}

func (t DataType) String() string {
	switch t {
	case UByte:
		return "ubyte"
	case UInt16:
		return "uint16"
	case UInt32:
		return "uint32"
	case SInt16:
		return "sint16"
	case SInt32:
		return "sint32"
	case Real32:
		return "real32"
	default:
		return fmt.Sprintf("DataType(%d)", int(t))
	}
}

// Shape describes how many elements an attribute value has.
type Shape byte

// These are the possible shapes of attribute values.
const (
	Scalar Shape = iota
	XY
	Box
	Array
)

// Tags used in the binary stream.
const (
	tagScalar    = 0xc0 // + DataType
	tagArray     = 0xc8 // + DataType
	tagXY        = 0xd0 // + DataType
	tagBox       = 0xe0 // + DataType
	tagAttrUByte = 0xf8
	tagAttrU16   = 0xf9
	tagData      = 0xfa
	tagDataUByte = 0xfb
)

// Operator is a PCL XL operator tag.
type Operator byte

// These are the operators which are interpreted by this package.
const (
	BeginSession     Operator = 0x41
	EndSession       Operator = 0x42
	BeginPage        Operator = 0x43
	EndPage          Operator = 0x44
	SetColorSpace    Operator = 0x6a
	BeginImage       Operator = 0xb0
	ReadImage        Operator = 0xb1
	EndImage         Operator = 0xb2
	BeginRastPattern Operator = 0xb3
	ReadRastPattern  Operator = 0xb4
	EndRastPattern   Operator = 0xb5
	BeginScan        Operator = 0xb6
	EndScan          Operator = 0xb8
	ScanLineRel      Operator = 0xb9
)

func isOperator(b byte) bool {
	return b >= 0x41 && b <= 0xbf
}

var operatorNames = map[Operator]string{
	0x41: "BeginSession",
	0x42: "EndSession",
	0x43: "BeginPage",
	0x44: "EndPage",
	0x47: "Comment",
	0x48: "OpenDataSource",
	0x49: "CloseDataSource",
	0x4f: "BeginFontHeader",
	0x50: "ReadFontHeader",
	0x51: "EndFontHeader",
	0x52: "BeginChar",
	0x53: "ReadChar",
	0x54: "EndChar",
	0x55: "RemoveFont",
	0x56: "SetCharAttributes",
	0x60: "PopGS",
	0x61: "PushGS",
	0x62: "SetClipReplace",
	0x63: "SetBrushSource",
	0x64: "SetCharAngle",
	0x65: "SetCharScale",
	0x66: "SetCharShear",
	0x67: "SetClipIntersect",
	0x68: "SetClipRectangle",
	0x69: "SetClipToPage",
	0x6a: "SetColorSpace",
	0x6b: "SetCursor",
	0x6c: "SetCursorRel",
	0x6d: "SetHalftoneMethod",
	0x6e: "SetFillMode",
	0x6f: "SetFont",
	0x70: "SetLineDash",
	0x71: "SetLineCap",
	0x72: "SetLineJoin",
	0x73: "SetMiterLimit",
	0x74: "SetPageDefaultCTM",
	0x75: "SetPageOrigin",
	0x76: "SetPageRotation",
	0x77: "SetPageScale",
	0x78: "SetPatternTxMode",
	0x79: "SetPenSource",
	0x7a: "SetPenWidth",
	0x7b: "SetROP",
	0x7c: "SetSourceTxMode",
	0x7d: "SetCharBoldValue",
	0x7f: "SetClipMode",
	0x80: "SetPathToClip",
	0x81: "SetCharSubMode",
	0x84: "CloseSubPath",
	0x85: "NewPath",
	0x86: "PaintPath",
	0x91: "ArcPath",
	0x93: "BezierPath",
	0x95: "BezierRelPath",
	0x96: "Chord",
	0x97: "ChordPath",
	0x98: "Ellipse",
	0x99: "EllipsePath",
	0x9b: "LinePath",
	0x9d: "LineRelPath",
	0x9e: "Pie",
	0x9f: "PiePath",
	0xa0: "Rectangle",
	0xa1: "RectanglePath",
	0xa2: "RoundRectangle",
	0xa3: "RoundRectanglePath",
	0xa8: "Text",
	0xa9: "TextPath",
	0xb0: "BeginImage",
	0xb1: "ReadImage",
	0xb2: "EndImage",
	0xb3: "BeginRastPattern",
	0xb4: "ReadRastPattern",
	0xb5: "EndRastPattern",
	0xb6: "BeginScan",
	0xb8: "EndScan",
	0xb9: "ScanLineRel",
}

func (op Operator) String() string {
	if name, ok := operatorNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Operator(0x%02x)", byte(op))
}

// Attribute is a PCL XL attribute ID.
type Attribute uint16

// These are the attributes used by the image operators.
const (
	PaletteDepth       Attribute = 2
	ColorSpaceAttr     Attribute = 3
	PaletteData        Attribute = 6
	ColorDepth         Attribute = 98
	BlockHeight        Attribute = 99
	ColorMapping       Attribute = 100
	CompressMode       Attribute = 101
	DestinationBox     Attribute = 102
	DestinationSize    Attribute = 103
	PatternPersistence Attribute = 104
	PatternDefineID    Attribute = 105
	SourceHeight       Attribute = 107
	SourceWidth        Attribute = 108
	StartLine          Attribute = 109
	PadBytesMultiple   Attribute = 110
	BlockByteLength    Attribute = 111
)

var attributeNames = map[Attribute]string{
	2:   "PaletteDepth",
	3:   "ColorSpace",
	6:   "PaletteData",
	98:  "ColorDepth",
	99:  "BlockHeight",
	100: "ColorMapping",
	101: "CompressMode",
	102: "DestinationBox",
	103: "DestinationSize",
	104: "PatternPersistence",
	105: "PatternDefineID",
	107: "SourceHeight",
	108: "SourceWidth",
	109: "StartLine",
	110: "PadBytesMultiple",
	111: "BlockByteLength",
}

func (a Attribute) String() string {
	if name, ok := attributeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Attribute(%d)", uint16(a))
}
