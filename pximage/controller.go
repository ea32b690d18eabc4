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

// Package pximage drives the decoding of PCL XL images and raster patterns.
//
// A [Controller] follows one image from BeginImage to EndImage (or one
// raster pattern from BeginRastPattern to EndRastPattern).  The raster data
// of each ReadImage block is passed to [Controller.Feed] in pieces of any
// size, and the decoded rows are delivered to a [Sink] in order.
package pximage

import (
	"errors"
	"fmt"

	"seehuhn.de/go/pclxl"
	"seehuhn.de/go/pclxl/bitmap"
	"seehuhn.de/go/pclxl/internal/cursor"
)

// Sink receives the decoded rows of an image.
//
// DeliverRow is called once for each row, in order.  The row has length
// [Params.DataPerRow] and is not padded.  The slice is only valid during the
// call; a sink which needs the data later must copy it.
//
// If a sink also has a method Close() error, this is called when the image
// ends.
type Sink interface {
	DeliverRow(row []byte) error
}

type stage int

const (
	awaitingBegin stage = iota
	streaming
	complete
)

// Controller decodes one image or raster pattern at a time.
// The zero value is ready to use.
//
// A Controller must not be used concurrently from different goroutines.
type Controller struct {
	stage   stage
	params  Params
	sink    Sink
	rd      *bitmap.Reader
	row     []byte
	rows    int
	inBlock bool
	src     cursor.Cursor
}

// Begin starts a new image.  The rows of the image will be delivered to
// sink.
func (c *Controller) Begin(p *Params, sink Sink) error {
	op := "Begin" + p.Kind.String()
	if c.stage != awaitingBegin {
		return pclxl.Errorf(op, pclxl.IllegalOperatorSequence,
			errors.New("previous image not ended"))
	}
	if err := p.Validate(); err != nil {
		return withOp(err, op)
	}

	c.params = *p
	c.sink = sink
	rowLen := p.DataPerRow()
	c.rd = bitmap.NewReader(rowLen)
	c.row = make([]byte, rowLen)
	c.rows = 0
	c.inBlock = false
	c.stage = streaming
	return nil
}

// Params returns the parameters of the current image.
func (c *Controller) Params() *Params {
	return &c.params
}

// Active reports whether an image has been started and not yet ended.
func (c *Controller) Active() bool {
	return c.stage != awaitingBegin
}

// Complete reports whether all rows of the current image have been
// delivered.
func (c *Controller) Complete() bool {
	return c.stage == complete
}

// RowsDelivered returns the number of rows of the current image which have
// been delivered to the sink.
func (c *Controller) RowsDelivered() int {
	return c.rows
}

// ReadBlock starts a block of raster data.
func (c *Controller) ReadBlock(b *Block) error {
	op := c.readOp()
	if c.stage == awaitingBegin {
		return pclxl.Errorf(op, pclxl.IllegalOperatorSequence, errors.New("no current image"))
	}
	if c.inBlock {
		return pclxl.Errorf(op, pclxl.IllegalOperatorSequence,
			errors.New("previous block incomplete"))
	}
	if b.StartLine != c.rows {
		return pclxl.Errorf(op, pclxl.IllegalAttributeValue,
			fmt.Errorf("StartLine is %d, expected %d", b.StartLine, c.rows))
	}
	if b.BlockHeight < 0 || b.StartLine+b.BlockHeight > c.params.SourceHeight {
		return pclxl.Errorf(op, pclxl.IllegalAttributeValue,
			fmt.Errorf("BlockHeight %d exceeds image height", b.BlockHeight))
	}
	if b.CompressMode == pclxl.JPEGCompression &&
		(c.params.ColorDepth != pclxl.Depth8Bit || c.params.ColorMapping != pclxl.DirectPixel) {
		return pclxl.Errorf(op, pclxl.IllegalAttributeValue,
			errors.New("JPEG compression requires 8-bit direct color"))
	}

	err := c.rd.BeginBlock(bitmap.Block{
		Mode:             b.CompressMode,
		Rows:             b.BlockHeight,
		PadBytesMultiple: b.PadBytesMultiple,
		ByteLength:       b.BlockByteLength,
	})
	if err != nil {
		return withOp(err, op)
	}
	c.inBlock = true
	return nil
}

// Feed passes the next piece of raster data of the current block to the
// decoder.  Completed rows are delivered to the sink.
//
// Feed returns when either data is used up (done is false, more data is
// needed) or when the block is complete (done is true).  In the latter case
// n gives the number of bytes used, and any remaining bytes do not belong
// to the block.
//
// If an error occurs, the image is ended as if End had been called.  Rows
// which were delivered before the error are not affected.
func (c *Controller) Feed(data []byte) (n int, done bool, err error) {
	op := c.readOp()
	if !c.inBlock {
		return 0, false, pclxl.Errorf(op, pclxl.IllegalOperatorSequence, errors.New("no current block"))
	}

	c.src.Reset(data)
	for {
		out, status, err := c.rd.Read(c.row, &c.src)
		if err != nil {
			n := c.src.Consumed()
			return n, false, c.abort(withOp(err, op))
		}

		switch status {
		case bitmap.RowComplete:
			err = c.sink.DeliverRow(out)
			if err != nil {
				n := c.src.Consumed()
				return n, false, c.abort(fmt.Errorf("%s: row %d: %w", op, c.rows, err))
			}
			c.rows++

		case bitmap.BlockComplete:
			c.rd.EndBlock()
			c.inBlock = false
			if c.rows >= c.params.SourceHeight {
				c.stage = complete
			}
			return c.src.Consumed(), true, nil

		default:
			return c.src.Consumed(), false, nil
		}
	}
}

// End finishes the current image.  Resources held by the decoders are
// released and the sink is closed.  A partially decoded row is discarded.
func (c *Controller) End() error {
	if c.stage == awaitingBegin {
		return pclxl.Errorf("End"+c.params.Kind.String(), pclxl.IllegalOperatorSequence,
			errors.New("no current image"))
	}
	sink := c.sink
	c.teardown()
	if closer, ok := sink.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// abort ends the image after cause occurred.  An error from closing the
// sink is joined to cause.
func (c *Controller) abort(cause error) error {
	sink := c.sink
	c.teardown()
	if closer, ok := sink.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			return errors.Join(cause, err)
		}
	}
	return cause
}

func (c *Controller) teardown() {
	if c.rd != nil {
		c.rd.Close()
	}
	c.rd = nil
	c.row = nil
	c.sink = nil
	c.inBlock = false
	c.src.Reset(nil)
	c.stage = awaitingBegin
}

func (c *Controller) readOp() string {
	return "Read" + c.params.Kind.String()
}

// withOp fills in the operator name of a *pclxl.Error.
func withOp(err error, op string) error {
	var e *pclxl.Error
	if errors.As(err, &e) && e.Op == "" {
		e.Op = op
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
