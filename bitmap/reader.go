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

// Package bitmap reads the rows of PCL XL raster data.
//
// A [Reader] reconstructs the rows of one image or raster pattern from the
// data of its ReadImage or ReadRastPattern blocks.  Data can be supplied in
// pieces of any size; when a piece is used up in the middle of a row, the
// Reader keeps the partial row and continues when the next piece arrives.
package bitmap

import (
	"errors"
	"fmt"

	"seehuhn.de/go/pclxl"
	"seehuhn.de/go/pclxl/internal/cursor"
)

// DefaultPadBytesMultiple is the row padding used if a block does not
// specify PadBytesMultiple.
const DefaultPadBytesMultiple = 4

// Status describes the outcome of a call to [Reader.Read].
type Status int

// These are the possible values of Status.
const (
	// NeedMore indicates that the input is used up before the row could be
	// completed.  The partial row is kept for the next call.
	NeedMore Status = iota

	// RowComplete indicates that a row has been reconstructed.
	RowComplete

	// BlockComplete indicates that all rows of the current block have been
	// read.  No input is consumed.
	BlockComplete
)

func (s Status) String() string {
	switch s {
	case NeedMore:
		return "NeedMore"
	case RowComplete:
		return "RowComplete"
	case BlockComplete:
		return "BlockComplete"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Block describes the data of one ReadImage or ReadRastPattern operator.
type Block struct {
	// Mode is the compression method used for the block.
	Mode pclxl.CompressMode

	// Rows is the number of rows in the block (BlockHeight).
	Rows int

	// PadBytesMultiple is the row alignment of uncompressed and RLE data.
	// If this is zero, DefaultPadBytesMultiple is used.
	PadBytesMultiple int

	// ByteLength is the number of bytes of data in the block
	// (BlockByteLength), or 0 if unknown.  JPEG data with unknown length
	// extends to the end-of-image marker.
	ByteLength int
}

// DataPerRow returns the number of bytes in an unpadded row of width
// pixels.
func DataPerRow(width, bitsPerComponent, components int) int {
	return (width*bitsPerComponent*components + 7) / 8
}

// PaddedLen rounds n up to a multiple of m.
func PaddedLen(n, m int) int {
	if m <= 1 {
		return n
	}
	return (n + m - 1) / m * m
}

// codec is implemented by the decoders for the different compression
// methods.
type codec interface {
	// readRow continues to read the current row.  The returned slice is
	// either row, or a slice of the input which holds the row.
	readRow(r *Reader, row []byte, src *cursor.Cursor) (out []byte, done bool, err error)

	// close releases the resources held by the codec.
	close()
}

// Reader reconstructs rows from raster data.
type Reader struct {
	rowLen int

	block     Block
	padded    int   // length of a row in the input, including padding
	pos       int64 // position in the padded, uncompressed data of the block
	rows      int   // rows completed in the current block
	inBlock   bool
	blockDone bool

	mode  pclxl.CompressMode
	codec codec
}

// NewReader returns a Reader for rows of rowLen bytes.
func NewReader(rowLen int) *Reader {
	return &Reader{rowLen: rowLen}
}

// RowLen returns the length of the rows returned by the reader.
func (r *Reader) RowLen() int {
	return r.rowLen
}

// Position returns the offset of the next byte in the logical, padded data
// stream of the current block.
func (r *Reader) Position() int64 {
	return r.pos
}

// RowsRead returns the number of rows completed in the current block.
func (r *Reader) RowsRead() int {
	return r.rows
}

// BeginBlock starts a new block of data.
//
// The state of the RLE and delta row decoders carries over from the
// previous block if the compression method stays the same.
func (r *Reader) BeginBlock(b Block) error {
	if !b.Mode.IsValid() {
		return pclxl.Errorf("", pclxl.IllegalAttributeValue,
			fmt.Errorf("invalid compression mode %d", int(b.Mode)))
	}
	if b.Rows < 0 {
		return pclxl.Errorf("", pclxl.IllegalAttributeValue,
			fmt.Errorf("invalid block height %d", b.Rows))
	}
	if b.PadBytesMultiple == 0 {
		b.PadBytesMultiple = DefaultPadBytesMultiple
	} else if b.PadBytesMultiple < 1 || b.PadBytesMultiple > 255 {
		return pclxl.Errorf("", pclxl.IllegalAttributeValue,
			fmt.Errorf("invalid PadBytesMultiple %d", b.PadBytesMultiple))
	}
	if b.ByteLength < 0 {
		return pclxl.Errorf("", pclxl.IllegalAttributeValue,
			fmt.Errorf("invalid BlockByteLength %d", b.ByteLength))
	}

	if r.codec != nil && (r.mode != b.Mode || b.Mode == pclxl.JPEGCompression) {
		r.codec.close()
		r.codec = nil
	}
	if r.codec == nil {
		switch b.Mode {
		case pclxl.NoCompression:
			r.codec = rawCodec{}
		case pclxl.RLECompression:
			r.codec = &rleCodec{}
		case pclxl.JPEGCompression:
			r.codec = &jpegCodec{}
		case pclxl.DeltaRowCompression:
			r.codec = newDeltaRowCodec(r.rowLen)
		}
		r.mode = b.Mode
	}

	r.block = b
	r.padded = r.rowLen
	if b.Mode.IsPadded() {
		r.padded = PaddedLen(r.rowLen, b.PadBytesMultiple)
	}
	r.pos = 0
	r.rows = 0
	r.inBlock = true
	r.blockDone = false
	return nil
}

var errNoBlock = errors.New("no active block")

// Read continues reading the current row from src.  The buffer row must
// have length RowLen() and must be the same for all calls which contribute
// to one row.
//
// If the status is RowComplete, the returned slice holds the row.  This is
// either row itself, or a slice of the input data.  The slice is only
// valid until the next call to Read.
func (r *Reader) Read(row []byte, src *cursor.Cursor) ([]byte, Status, error) {
	if !r.inBlock {
		return nil, NeedMore, pclxl.Errorf("", pclxl.IllegalOperatorSequence, errNoBlock)
	}
	if r.blockDone || r.rows >= r.block.Rows {
		r.blockDone = true
		return nil, BlockComplete, nil
	}

	out, done, err := r.codec.readRow(r, row, src)
	if err != nil {
		return nil, NeedMore, err
	}
	if !done {
		return nil, NeedMore, nil
	}
	r.rows++
	return out, RowComplete, nil
}

// EndBlock finishes the current block.  An error is returned if the block
// is incomplete.
func (r *Reader) EndBlock() error {
	if !r.inBlock {
		return nil
	}
	complete := r.blockDone || r.rows >= r.block.Rows
	r.inBlock = false
	if !complete {
		return pclxl.Errorf("", pclxl.MissingData,
			fmt.Errorf("%d of %d rows read", r.rows, r.block.Rows))
	}
	return nil
}

// Close releases the decoder state, including the delta row seed row.
func (r *Reader) Close() {
	if r.codec != nil {
		r.codec.close()
		r.codec = nil
	}
	r.inBlock = false
}
