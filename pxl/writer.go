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

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"seehuhn.de/go/pclxl"
	"seehuhn.de/go/pclxl/bitmap"
	"seehuhn.de/go/pclxl/internal/filter/deltarow"
	"seehuhn.de/go/pclxl/internal/filter/runlength"
	"seehuhn.de/go/pclxl/pximage"
)

// Writer writes a binary, little-endian PCL XL stream.
//
// Errors are sticky: after the first error, all methods do nothing and
// Flush returns the error.
type Writer struct {
	w   *bufio.Writer
	err error
	tmp [4]byte

	// state for encoding raster data
	rowLen  int
	mode    pclxl.CompressMode
	delta   *deltarow.Encoder
	payload bytes.Buffer
}

// NewWriter returns a writer which writes to w.  The stream header is
// written immediately.
func NewWriter(w io.Writer) *Writer {
	pw := &Writer{w: bufio.NewWriter(w)}
	_, pw.err = pw.w.WriteString(") HP-PCL XL;2;1;Comment seehuhn.de/go/pclxl\n")
	return pw
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

func (w *Writer) write(b ...byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

func (w *Writer) elem(t DataType, x float64) {
	buf := w.tmp[:t.size()]
	switch t {
	case UByte:
		buf[0] = byte(x)
	case UInt16:
		binary.LittleEndian.PutUint16(buf, uint16(x))
	case SInt16:
		binary.LittleEndian.PutUint16(buf, uint16(int16(x)))
	case UInt32:
		binary.LittleEndian.PutUint32(buf, uint32(x))
	case SInt32:
		binary.LittleEndian.PutUint32(buf, uint32(int32(x)))
	case Real32:
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(x)))
	}
	w.write(buf...)
}

// Value writes an attribute value.
func (w *Writer) Value(v Value) {
	switch v.Shape {
	case XY:
		w.write(tagXY + byte(v.Type))
	case Box:
		w.write(tagBox + byte(v.Type))
	case Array:
		w.write(tagArray + byte(v.Type))
		if len(v.Elems) < 256 {
			w.write(tagScalar+byte(UByte), byte(len(v.Elems)))
		} else {
			w.write(tagScalar + byte(UInt16))
			w.elem(UInt16, float64(len(v.Elems)))
		}
	default:
		w.write(tagScalar + byte(v.Type))
	}
	for _, x := range v.Elems {
		w.elem(v.Type, x)
	}
}

// Attr writes an attribute with the given value.
func (w *Writer) Attr(id Attribute, v Value) {
	w.Value(v)
	if id < 256 {
		w.write(tagAttrUByte, byte(id))
	} else {
		w.write(tagAttrU16)
		w.elem(UInt16, float64(id))
	}
}

// AttrUByte writes an attribute with a ubyte value.
func (w *Writer) AttrUByte(id Attribute, x int) {
	w.Attr(id, Value{Type: UByte, Elems: []float64{float64(x)}})
}

// AttrUInt16 writes an attribute with a uint16 value.
func (w *Writer) AttrUInt16(id Attribute, x int) {
	w.Attr(id, Value{Type: UInt16, Elems: []float64{float64(x)}})
}

// AttrUInt32 writes an attribute with a uint32 value.
func (w *Writer) AttrUInt32(id Attribute, x int) {
	w.Attr(id, Value{Type: UInt32, Elems: []float64{float64(x)}})
}

// AttrBytes writes an attribute with a ubyte array value.
func (w *Writer) AttrBytes(id Attribute, data []byte) {
	v := Value{Type: UByte, Shape: Array, Elems: make([]float64, len(data))}
	for i, b := range data {
		v.Elems[i] = float64(b)
	}
	w.Attr(id, v)
}

// Op writes an operator.
func (w *Writer) Op(op Operator) {
	w.write(byte(op))
}

// Data writes a block of embedded data.
func (w *Writer) Data(data []byte) {
	if len(data) < 256 {
		w.write(tagDataUByte, byte(len(data)))
	} else {
		w.write(tagData)
		w.elem(UInt32, float64(len(data)))
	}
	w.write(data...)
}

// SetColorSpace writes a SetColorSpace operator.  If palette is not nil, it
// is included with PaletteDepth e8Bit.
func (w *Writer) SetColorSpace(cs pclxl.ColorSpace, palette []byte) {
	w.AttrUByte(ColorSpaceAttr, int(cs))
	if palette != nil {
		w.AttrUByte(PaletteDepth, int(pclxl.Depth8Bit))
		w.AttrBytes(PaletteData, palette)
	}
	w.Op(SetColorSpace)
}

// Begin writes BeginImage or BeginRastPattern, depending on p.Kind.
// The color space must have been set using SetColorSpace.
func (w *Writer) Begin(p *pximage.Params) {
	w.AttrUByte(ColorMapping, int(p.ColorMapping))
	w.AttrUByte(ColorDepth, int(p.ColorDepth))
	w.AttrUInt16(SourceWidth, p.SourceWidth)
	w.AttrUInt16(SourceHeight, p.SourceHeight)
	w.Attr(DestinationSize, Value{
		Type:  UInt16,
		Shape: XY,
		Elems: []float64{p.DestinationSize[0], p.DestinationSize[1]},
	})
	op := BeginImage
	if p.Kind == pximage.RasterPattern {
		w.AttrUInt16(PatternDefineID, p.PatternID)
		w.AttrUByte(PatternPersistence, int(p.Persistence))
		op = BeginRastPattern
	}
	w.Op(op)

	w.rowLen = p.DataPerRow()
	w.mode = -1
	w.delta = nil
}

// ReadBlock writes ReadImage or ReadRastPattern with the given
// pre-encoded data.
func (w *Writer) ReadBlock(kind pximage.Kind, b *pximage.Block, data []byte) {
	w.AttrUInt16(StartLine, b.StartLine)
	w.AttrUInt16(BlockHeight, b.BlockHeight)
	w.AttrUByte(CompressMode, int(b.CompressMode))
	if b.PadBytesMultiple != 0 {
		w.AttrUByte(PadBytesMultiple, b.PadBytesMultiple)
	}
	if b.BlockByteLength != 0 {
		w.AttrUInt32(BlockByteLength, b.BlockByteLength)
	}
	if kind == pximage.RasterPattern {
		w.Op(ReadRastPattern)
	} else {
		w.Op(ReadImage)
	}
	w.Data(data)
}

var errRowsMode = errors.New("compression method not supported by ReadRows")

// ReadRows encodes rows using the given compression method and writes them
// as one ReadImage or ReadRastPattern block.  Delta row compression uses
// the previous block of the image as the seed, if that block also used
// delta row compression.
func (w *Writer) ReadRows(kind pximage.Kind, startLine int, mode pclxl.CompressMode, padMultiple int, rows [][]byte) error {
	if w.err != nil {
		return w.err
	}
	if mode == pclxl.JPEGCompression || !mode.IsValid() {
		return errRowsMode
	}
	if padMultiple == 0 {
		padMultiple = bitmap.DefaultPadBytesMultiple
	}
	if mode != pclxl.DeltaRowCompression || w.mode != pclxl.DeltaRowCompression {
		w.delta = deltarow.NewEncoder(w.rowLen)
	}
	w.mode = mode

	w.payload.Reset()
	padded := make([]byte, bitmap.PaddedLen(w.rowLen, padMultiple))
	var rle *runlength.Writer
	if mode == pclxl.RLECompression {
		rle = runlength.NewWriter(&w.payload)
	}
	var buf []byte
	for i, row := range rows {
		if len(row) != w.rowLen {
			return fmt.Errorf("row %d: length %d, expected %d", startLine+i, len(row), w.rowLen)
		}
		switch mode {
		case pclxl.NoCompression:
			copy(padded, row)
			w.payload.Write(padded)
		case pclxl.RLECompression:
			copy(padded, row)
			rle.Write(padded)
			rle.Flush()
		case pclxl.DeltaRowCompression:
			var err error
			buf, err = w.delta.AppendRow(buf[:0], row)
			if err != nil {
				return fmt.Errorf("row %d: %w", startLine+i, err)
			}
			w.payload.Write(buf)
		}
	}

	b := &pximage.Block{
		StartLine:    startLine,
		BlockHeight:  len(rows),
		CompressMode: mode,
	}
	if mode.IsPadded() {
		b.PadBytesMultiple = padMultiple
	}
	w.ReadBlock(kind, b, w.payload.Bytes())
	return w.err
}

// End writes EndImage or EndRastPattern.
func (w *Writer) End(kind pximage.Kind) {
	if kind == pximage.RasterPattern {
		w.Op(EndRastPattern)
	} else {
		w.Op(EndImage)
	}
}
