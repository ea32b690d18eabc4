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
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/pclxl"
	"seehuhn.de/go/pclxl/internal/filter/deltarow"
	"seehuhn.de/go/pclxl/internal/filter/runlength"
)

type recorder struct {
	rows   [][]byte
	closed   bool
	failAt   int
	closeErr error
}

var errSink = errors.New("sink failed")

func (r *recorder) DeliverRow(row []byte) error {
	if r.failAt > 0 && len(r.rows)+1 == r.failAt {
		return errSink
	}
	r.rows = append(r.rows, bytes.Clone(row))
	return nil
}

func (r *recorder) Close() error {
	r.closed = true
	return r.closeErr
}

func grayParams(width, height int) *Params {
	return &Params{
		ColorSpace:   pclxl.Gray,
		ColorMapping: pclxl.DirectPixel,
		ColorDepth:   pclxl.Depth8Bit,
		SourceWidth:  width,
		SourceHeight: height,
	}
}

// feed passes data to c in pieces of the given size, until the block is
// complete.  It returns the number of bytes used.
func feed(c *Controller, data []byte, chunk int) (int, error) {
	used := 0
	for used < len(data) {
		k := min(chunk, len(data)-used)
		n, done, err := c.Feed(data[used : used+k])
		used += n
		if err != nil {
			return used, err
		}
		if done {
			return used, nil
		}
	}
	// the last rows may not need any more input
	_, done, err := c.Feed(nil)
	if err != nil {
		return used, err
	}
	if !done {
		return used, errors.New("block incomplete")
	}
	return used, nil
}

func TestBeginValidation(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(p *Params)
		want   pclxl.ErrorKind
	}{
		{"zero width", func(p *Params) { p.SourceWidth = 0 }, pclxl.IllegalAttributeValue},
		{"zero height", func(p *Params) { p.SourceHeight = 0 }, pclxl.IllegalAttributeValue},
		{"color space", func(p *Params) { p.ColorSpace = 5 }, pclxl.IllegalAttributeValue},
		{"color depth", func(p *Params) { p.ColorDepth = 3 }, pclxl.IllegalAttributeValue},
		{"color mapping", func(p *Params) { p.ColorMapping = 2 }, pclxl.IllegalAttributeValue},
		{"no palette", func(p *Params) { p.ColorMapping = pclxl.IndexedPixel }, pclxl.MissingPalette},
		{"short palette", func(p *Params) {
			p.ColorMapping = pclxl.IndexedPixel
			p.ColorDepth = pclxl.Depth1Bit
			p.ColorSpace = pclxl.RGB
			p.Palette = []byte{0, 0, 0, 255, 255}
		}, pclxl.PaletteSizeMismatch},
		{"huge", func(p *Params) { p.SourceWidth = 1 << 30 }, pclxl.InsufficientMemory},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := grayParams(10, 10)
			tc.modify(p)
			var c Controller
			err := c.Begin(p, &recorder{})
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			var e *pclxl.Error
			if !errors.As(err, &e) || e.Op != "BeginImage" {
				t.Errorf("unexpected error %#v", err)
			}
			if c.Active() {
				t.Error("controller active after failed Begin")
			}
		})
	}
}

func TestIndexedPalette(t *testing.T) {
	p := &Params{
		ColorSpace:   pclxl.RGB,
		ColorMapping: pclxl.IndexedPixel,
		ColorDepth:   pclxl.Depth1Bit,
		Palette:      []byte{0, 0, 0, 255, 255, 255},
		SourceWidth:  9,
		SourceHeight: 1,
	}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if n := p.DataPerRow(); n != 2 {
		t.Errorf("DataPerRow() = %d, want 2", n)
	}
}

func TestStreaming(t *testing.T) {
	want := [][]byte{
		{1, 2, 3},
		{4, 4, 4},
		{4, 9, 4},
		{0, 9, 0},
	}

	// rows 0 and 1: RLE, padded to 4 bytes
	rleBuf := &bytes.Buffer{}
	w := runlength.NewWriter(rleBuf)
	for _, row := range want[:2] {
		w.Write(append(bytes.Clone(row), 0))
		w.Flush()
	}

	// rows 2 and 3: delta row, starting from an all-zero seed row
	enc := deltarow.NewEncoder(3)
	var delta []byte
	for _, row := range want[2:] {
		delta, _ = enc.AppendRow(delta, row)
	}

	for _, chunk := range []int{1, 2, 5, 1000} {
		t.Run(fmt.Sprintf("chunk_%d", chunk), func(t *testing.T) {
			var c Controller
			sink := &recorder{}
			if err := c.Begin(grayParams(3, 4), sink); err != nil {
				t.Fatal(err)
			}

			err := c.ReadBlock(&Block{StartLine: 0, BlockHeight: 2, CompressMode: pclxl.RLECompression})
			if err != nil {
				t.Fatal(err)
			}
			n, err := feed(&c, rleBuf.Bytes(), chunk)
			if err != nil {
				t.Fatal(err)
			}
			if n != rleBuf.Len() {
				t.Errorf("RLE block used %d of %d bytes", n, rleBuf.Len())
			}

			err = c.ReadBlock(&Block{StartLine: 2, BlockHeight: 2, CompressMode: pclxl.DeltaRowCompression})
			if err != nil {
				t.Fatal(err)
			}
			n, err = feed(&c, delta, chunk)
			if err != nil {
				t.Fatal(err)
			}
			if n != len(delta) {
				t.Errorf("delta row block used %d of %d bytes", n, len(delta))
			}

			if !c.Complete() {
				t.Error("image not complete")
			}
			if err := c.End(); err != nil {
				t.Fatal(err)
			}
			if !sink.closed {
				t.Error("sink not closed")
			}
			if diff := cmp.Diff(want, sink.rows); diff != "" {
				t.Errorf("rows (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFeedStopsAtBlockEnd(t *testing.T) {
	var c Controller
	sink := &recorder{}
	if err := c.Begin(grayParams(2, 2), sink); err != nil {
		t.Fatal(err)
	}
	err := c.ReadBlock(&Block{BlockHeight: 1, CompressMode: pclxl.NoCompression, PadBytesMultiple: 1})
	if err != nil {
		t.Fatal(err)
	}
	n, done, err := c.Feed([]byte{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatal(err)
	}
	if !done || n != 2 {
		t.Errorf("n=%d, done=%t", n, done)
	}
	if c.Complete() {
		t.Error("image complete after one of two rows")
	}
	if c.RowsDelivered() != 1 {
		t.Errorf("RowsDelivered() = %d", c.RowsDelivered())
	}
}

func TestOverflowAborts(t *testing.T) {
	var c Controller
	sink := &recorder{}
	if err := c.Begin(grayParams(2, 3), sink); err != nil {
		t.Fatal(err)
	}
	err := c.ReadBlock(&Block{BlockHeight: 3, CompressMode: pclxl.DeltaRowCompression})
	if err != nil {
		t.Fatal(err)
	}
	data := []byte{
		0x03, 0x00, 0x20, 1, 2, // row 0: fine
		0x04, 0x00, 0x40, 1, 2, 3, // row 1: three bytes into a row of two
	}
	_, _, err = c.Feed(data)
	if !errors.Is(err, pclxl.RasterOverflow) {
		t.Fatalf("got %v, want RasterOverflow", err)
	}
	var e *pclxl.Error
	if !errors.As(err, &e) || e.Op != "ReadImage" {
		t.Errorf("unexpected error %#v", err)
	}
	if c.Active() {
		t.Error("controller still active")
	}
	if !sink.closed {
		t.Error("sink not closed")
	}
	if diff := cmp.Diff([][]byte{{1, 2}}, sink.rows); diff != "" {
		t.Errorf("rows (-want +got):\n%s", diff)
	}

	// the controller can be reused
	if err := c.Begin(grayParams(1, 1), &recorder{}); err != nil {
		t.Error(err)
	}
}

func TestSinkError(t *testing.T) {
	var c Controller
	sink := &recorder{failAt: 2}
	if err := c.Begin(grayParams(1, 3), sink); err != nil {
		t.Fatal(err)
	}
	err := c.ReadBlock(&Block{BlockHeight: 3, CompressMode: pclxl.NoCompression, PadBytesMultiple: 1})
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = c.Feed([]byte{1, 2, 3})
	if !errors.Is(err, errSink) {
		t.Errorf("got %v", err)
	}
	if c.Active() {
		t.Error("controller still active")
	}
}

func TestBlockChecks(t *testing.T) {
	var c Controller
	if err := c.Begin(grayParams(4, 4), &recorder{}); err != nil {
		t.Fatal(err)
	}

	err := c.ReadBlock(&Block{StartLine: 1, BlockHeight: 1})
	if !errors.Is(err, pclxl.IllegalAttributeValue) {
		t.Errorf("wrong start line: got %v", err)
	}
	err = c.ReadBlock(&Block{StartLine: 0, BlockHeight: 5})
	if !errors.Is(err, pclxl.IllegalAttributeValue) {
		t.Errorf("too many rows: got %v", err)
	}
	err = c.ReadBlock(&Block{BlockHeight: 1, CompressMode: 9})
	if !errors.Is(err, pclxl.IllegalAttributeValue) {
		t.Errorf("bad mode: got %v", err)
	}

	err = c.ReadBlock(&Block{BlockHeight: 2})
	if err != nil {
		t.Fatal(err)
	}
	err = c.ReadBlock(&Block{BlockHeight: 2})
	if !errors.Is(err, pclxl.IllegalOperatorSequence) {
		t.Errorf("nested block: got %v", err)
	}
}

func TestJPEGRequires8Bit(t *testing.T) {
	var c Controller
	p := grayParams(8, 8)
	p.ColorDepth = pclxl.Depth4Bit
	if err := c.Begin(p, &recorder{}); err != nil {
		t.Fatal(err)
	}
	err := c.ReadBlock(&Block{BlockHeight: 8, CompressMode: pclxl.JPEGCompression})
	if !errors.Is(err, pclxl.IllegalAttributeValue) {
		t.Errorf("got %v", err)
	}
}

func TestSequenceErrors(t *testing.T) {
	var c Controller
	if err := c.End(); !errors.Is(err, pclxl.IllegalOperatorSequence) {
		t.Errorf("End without Begin: %v", err)
	}
	if _, _, err := c.Feed([]byte{1}); !errors.Is(err, pclxl.IllegalOperatorSequence) {
		t.Errorf("Feed without block: %v", err)
	}
	if err := c.ReadBlock(&Block{BlockHeight: 1}); !errors.Is(err, pclxl.IllegalOperatorSequence) {
		t.Errorf("ReadBlock without Begin: %v", err)
	}

	if err := c.Begin(grayParams(1, 1), &recorder{}); err != nil {
		t.Fatal(err)
	}
	if err := c.Begin(grayParams(1, 1), &recorder{}); !errors.Is(err, pclxl.IllegalOperatorSequence) {
		t.Errorf("nested Begin: %v", err)
	}
}

func TestEndDiscardsPartialRow(t *testing.T) {
	var c Controller
	sink := &recorder{}
	if err := c.Begin(grayParams(4, 1), sink); err != nil {
		t.Fatal(err)
	}
	if err := c.ReadBlock(&Block{BlockHeight: 1}); err != nil {
		t.Fatal(err)
	}
	_, done, err := c.Feed([]byte{1, 2})
	if err != nil || done {
		t.Fatalf("done=%t, err=%v", done, err)
	}
	if err := c.End(); err != nil {
		t.Error(err)
	}
	if len(sink.rows) != 0 {
		t.Errorf("got %d rows", len(sink.rows))
	}
}

func TestAbortCloseError(t *testing.T) {
	var c Controller
	errClose := errors.New("close failed")
	sink := &recorder{failAt: 2, closeErr: errClose}
	if err := c.Begin(grayParams(1, 3), sink); err != nil {
		t.Fatal(err)
	}
	err := c.ReadBlock(&Block{BlockHeight: 3, CompressMode: pclxl.NoCompression, PadBytesMultiple: 1})
	if err != nil {
		t.Fatal(err)
	}
	n, _, err := c.Feed([]byte{1, 2, 3})
	if !errors.Is(err, errSink) || !errors.Is(err, errClose) {
		t.Errorf("got %v", err)
	}
	if n != 2 {
		t.Errorf("%d bytes used, want 2", n)
	}
	if !sink.closed {
		t.Error("sink not closed")
	}
}

func TestInvalidKind(t *testing.T) {
	p := grayParams(4, 4)
	p.Kind = 7
	err := p.Validate()
	if !errors.Is(err, pclxl.IllegalAttributeValue) {
		t.Errorf("got %v", err)
	}
}
