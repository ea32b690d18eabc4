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
	"errors"
	"fmt"
	"io"

	"seehuhn.de/go/pclxl"
	"seehuhn.de/go/pclxl/pximage"
)

// DefaultChunkSize is the default size of the pieces of embedded data
// passed to the image decoder.
const DefaultChunkSize = 4096

// Stats summarises a PCL XL job.
type Stats struct {
	Sessions  int
	Pages     int
	Operators int
	Images    int
	Patterns  int
	Rows      int
	DataBytes int64
}

// Interpreter executes the image related operators of a PCL XL stream.
// All other operators are skipped, together with their embedded data.
type Interpreter struct {
	// NewImage is called for every BeginImage operator and returns the sink
	// for the rows of the image.  If NewImage is nil, the image is decoded
	// and the rows are discarded.
	NewImage func(p *pximage.Params) (pximage.Sink, error)

	// NewPattern is like NewImage, but for BeginRastPattern.
	NewPattern func(p *pximage.Params) (pximage.Sink, error)

	// PageDone, if not nil, is called for every EndPage operator.
	PageDone func(page int) error

	// SessionDone, if not nil, is called for every EndSession operator.
	SessionDone func() error

	// Trace, if not nil, is called for every operator before it is
	// executed.
	Trace func(op Operator, attrs Attributes, offset int64)

	// ChunkSize is the size of the pieces of embedded data passed to the
	// image decoder.  If this is zero, DefaultChunkSize is used.
	ChunkSize int

	Stats Stats

	s       *Scanner
	ctrl    pximage.Controller
	attrs   Attributes
	pending *Value
	buf     []byte

	colorSpace pclxl.ColorSpace
	palette    []byte
}

// Run interprets the PCL XL stream read from r.
//
// Processing stops at the first error.  Errors are reported together with
// the operator name and the stream offset of the operator.
func (in *Interpreter) Run(r io.Reader) error {
	in.s = NewScanner(r)
	in.attrs = make(Attributes)
	in.pending = nil
	in.colorSpace = pclxl.Gray
	in.palette = nil
	chunk := in.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	in.buf = make([]byte, chunk)

	err := in.run()
	if in.ctrl.Active() {
		in.ctrl.End()
	}
	return err
}

func (in *Interpreter) run() error {
	for {
		tok, err := in.s.Next()
		if err == io.EOF {
			if in.pending != nil || len(in.attrs) > 0 {
				return &SyntaxError{Offset: in.s.Offset(), Msg: "attributes without operator"}
			}
			return nil
		} else if err != nil {
			return err
		}

		switch tok.Kind {
		case ValueToken:
			if in.pending != nil {
				return &SyntaxError{Offset: tok.Offset, Msg: "value without attribute ID"}
			}
			in.pending = &tok.Value
		case AttributeToken:
			if in.pending == nil {
				return &SyntaxError{Offset: tok.Offset, Msg: fmt.Sprintf("no value for attribute %s", tok.Attribute)}
			}
			in.attrs[tok.Attribute] = *in.pending
			in.pending = nil
		case OperatorToken:
			if in.pending != nil {
				return &SyntaxError{Offset: tok.Offset, Msg: "value without attribute ID"}
			}
			in.Stats.Operators++
			if in.Trace != nil {
				in.Trace(tok.Operator, in.attrs, tok.Offset)
			}
			err := in.execute(tok.Operator)
			if err != nil {
				return fmt.Errorf("offset %d: %w", tok.Offset, err)
			}
			clear(in.attrs)
		case DataToken:
			// data of an operator which is not interpreted
		}
	}
}

func (in *Interpreter) execute(op Operator) error {
	if in.ctrl.Active() {
		kind := in.ctrl.Params().Kind
		switch {
		case kind == pximage.Image && (op == ReadImage || op == EndImage):
		case kind == pximage.RasterPattern && (op == ReadRastPattern || op == EndRastPattern):
		default:
			return pclxl.Errorf(op.String(), pclxl.IllegalOperatorSequence,
				fmt.Errorf("inside %s", "Begin"+kind.String()))
		}
	}

	switch op {
	case BeginSession:
		in.Stats.Sessions++
		in.colorSpace = pclxl.Gray
		in.palette = nil
	case EndSession:
		if in.SessionDone != nil {
			return in.SessionDone()
		}
	case BeginPage:
		in.Stats.Pages++
	case EndPage:
		if in.PageDone != nil {
			return in.PageDone(in.Stats.Pages)
		}
	case SetColorSpace:
		return in.setColorSpace()
	case BeginImage:
		return in.begin(op, pximage.Image)
	case BeginRastPattern:
		return in.begin(op, pximage.RasterPattern)
	case ReadImage, ReadRastPattern:
		return in.read(op)
	case EndImage, EndRastPattern:
		if !in.ctrl.Active() {
			return pclxl.Errorf(op.String(), pclxl.IllegalOperatorSequence,
				errors.New("no current image"))
		}
		return in.ctrl.End()
	}
	return nil
}

func (in *Interpreter) setColorSpace() error {
	op := SetColorSpace.String()
	cs, err := in.required(op, ColorSpaceAttr)
	if err != nil {
		return err
	}

	depth, hasDepth, err := in.attrs.Int(PaletteDepth)
	if err != nil {
		return pclxl.Errorf(op, pclxl.IllegalAttributeValue, err)
	}
	data, hasData := in.attrs[PaletteData]
	if hasDepth != hasData {
		return pclxl.Errorf(op, pclxl.MissingAttribute,
			errors.New("PaletteDepth and PaletteData must be used together"))
	}

	var palette []byte
	if hasData {
		if pclxl.ColorDepth(depth) != pclxl.Depth8Bit {
			return pclxl.Errorf(op, pclxl.IllegalAttributeValue,
				fmt.Errorf("unsupported PaletteDepth %d", depth))
		}
		palette, err = data.Bytes()
		if err != nil {
			return pclxl.Errorf(op, pclxl.IllegalAttributeValue, fmt.Errorf("PaletteData: %w", err))
		}
	}

	space := pclxl.ColorSpace(cs)
	if space.Components() == 0 {
		return pclxl.Errorf(op, pclxl.IllegalAttributeValue, fmt.Errorf("unsupported color space %d", cs))
	}
	in.colorSpace = space
	in.palette = palette
	return nil
}

func (in *Interpreter) begin(op Operator, kind pximage.Kind) error {
	name := op.String()
	p := &pximage.Params{
		Kind:       kind,
		ColorSpace: in.colorSpace,
	}

	mapping, err := in.required(name, ColorMapping)
	if err != nil {
		return err
	}
	p.ColorMapping = pclxl.ColorMapping(mapping)
	depth, err := in.required(name, ColorDepth)
	if err != nil {
		return err
	}
	p.ColorDepth = pclxl.ColorDepth(depth)
	if p.SourceWidth, err = in.required(name, SourceWidth); err != nil {
		return err
	}
	if p.SourceHeight, err = in.required(name, SourceHeight); err != nil {
		return err
	}
	if p.ColorMapping == pclxl.IndexedPixel {
		p.Palette = in.palette
	}

	dest, ok := in.attrs[DestinationSize]
	if !ok {
		return pclxl.Errorf(name, pclxl.MissingAttribute, errors.New(DestinationSize.String()))
	}
	p.DestinationSize, err = dest.XY()
	if err != nil {
		return pclxl.Errorf(name, pclxl.IllegalAttributeValue, fmt.Errorf("DestinationSize: %w", err))
	}

	newSink := in.NewImage
	if kind == pximage.RasterPattern {
		if p.PatternID, err = in.required(name, PatternDefineID); err != nil {
			return err
		}
		persist, err := in.required(name, PatternPersistence)
		if err != nil {
			return err
		}
		p.Persistence = pclxl.PatternPersistence(persist)
		if p.Persistence < pclxl.TempPattern || p.Persistence > pclxl.SessionPattern {
			return pclxl.Errorf(name, pclxl.IllegalAttributeValue,
				fmt.Errorf("invalid PatternPersistence %d", persist))
		}
		newSink = in.NewPattern
	}

	// validate before asking for a sink
	if err := p.Validate(); err != nil {
		var e *pclxl.Error
		if errors.As(err, &e) && e.Op == "" {
			e.Op = name
		}
		return err
	}

	var sink pximage.Sink = discard{}
	if newSink != nil {
		sink, err = newSink(p)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	err = in.ctrl.Begin(p, sink)
	if err != nil {
		return err
	}
	if kind == pximage.Image {
		in.Stats.Images++
	} else {
		in.Stats.Patterns++
	}
	return nil
}

func (in *Interpreter) read(op Operator) error {
	name := op.String()
	if !in.ctrl.Active() {
		return pclxl.Errorf(name, pclxl.IllegalOperatorSequence, errors.New("no current image"))
	}

	b := &pximage.Block{}
	var err error
	if b.StartLine, err = in.required(name, StartLine); err != nil {
		return err
	}
	if b.BlockHeight, err = in.required(name, BlockHeight); err != nil {
		return err
	}
	mode, err := in.required(name, CompressMode)
	if err != nil {
		return err
	}
	b.CompressMode = pclxl.CompressMode(mode)
	if b.PadBytesMultiple, _, err = in.attrs.Int(PadBytesMultiple); err != nil {
		return pclxl.Errorf(name, pclxl.IllegalAttributeValue, err)
	}
	if b.BlockByteLength, _, err = in.attrs.Int(BlockByteLength); err != nil {
		return pclxl.Errorf(name, pclxl.IllegalAttributeValue, err)
	}

	tok, err := in.s.Next()
	if err == io.EOF || err == nil && tok.Kind != DataToken {
		return pclxl.Errorf(name, pclxl.MissingData, errors.New("no embedded data"))
	} else if err != nil {
		return err
	}
	if b.BlockByteLength == 0 && b.CompressMode == pclxl.JPEGCompression {
		b.BlockByteLength = tok.DataLen
	}

	if err := in.ctrl.ReadBlock(b); err != nil {
		return err
	}
	before := in.ctrl.RowsDelivered()
	err = in.feed(name, tok.DataLen)
	in.Stats.Rows += in.ctrl.RowsDelivered() - before
	return err
}

// feed passes n bytes of embedded data to the image decoder.  Data after
// the end of the block is ignored.
func (in *Interpreter) feed(op string, n int) error {
	if n == 0 {
		// A block without rows completes without input.
		_, done, err := in.ctrl.Feed(nil)
		if err != nil {
			return err
		}
		if !done {
			return pclxl.Errorf(op, pclxl.MissingData, errors.New("no raster data"))
		}
		return nil
	}

	for n > 0 {
		k, err := io.ReadFull(in.s, in.buf[:min(len(in.buf), n)])
		n -= k
		in.Stats.DataBytes += int64(k)
		if err != nil {
			return in.s.truncated(err)
		}
		_, done, err := in.ctrl.Feed(in.buf[:k])
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return pclxl.Errorf(op, pclxl.MissingData,
		fmt.Errorf("raster data ends after %d rows", in.ctrl.RowsDelivered()))
}

func (in *Interpreter) required(op string, id Attribute) (int, error) {
	x, ok, err := in.attrs.Int(id)
	if err != nil {
		return 0, pclxl.Errorf(op, pclxl.IllegalAttributeValue, err)
	}
	if !ok {
		return 0, pclxl.Errorf(op, pclxl.MissingAttribute, errors.New(id.String()))
	}
	return x, nil
}

type discard struct{}

func (discard) DeliverRow([]byte) error { return nil }
