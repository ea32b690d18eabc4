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

// Package deltarow implements the delta row compression method of PCL XL.
//
// Every row is encoded relative to the previous row (the seed row).  The
// encoded row starts with a 16-bit little-endian byte count, followed by
// that many bytes of commands.  Each command byte holds the number of bytes
// to replace minus one in bits 7-5, and the number of bytes to keep from the
// seed row in bits 4-0.  A keep count of 31 is extended by the following
// bytes, up to and including the first byte which is not 255.  The bytes to
// replace follow the command.  A byte count of 0 repeats the seed row.
package deltarow

import (
	"errors"

	"seehuhn.de/go/pclxl/internal/cursor"
)

// ErrOverflow indicates that the commands for a row address bytes beyond
// the end of the row.
var ErrOverflow = errors.New("delta row data exceeds row length")

type state int

const (
	nextIsByteCountLow state = iota
	partialByteCountHigh
	nextIsCmd
	partialOffset
	partialCount
)

// Decoder reconstructs delta row compressed rows.  Input can be supplied in
// pieces of any size; the decoder keeps its position between calls.
type Decoder struct {
	seed []byte

	state     state
	inRow     bool // the output row has been initialized from the seed row
	countLow  byte
	remaining int // command bytes of the current row still to be read
	copyLeft  int // bytes of the current command still to be replaced
	pos       int // position in the output row
}

// NewDecoder returns a decoder for rows of rowLen bytes.
// The initial seed row is all zeros.
func NewDecoder(rowLen int) *Decoder {
	return &Decoder{seed: make([]byte, rowLen)}
}

// RowLen returns the length of the rows produced by the decoder.
func (d *Decoder) RowLen() int {
	return len(d.seed)
}

// Seed returns the current seed row.  The returned slice must not be
// modified.
func (d *Decoder) Seed() []byte {
	return d.seed
}

// Pos returns the position in the current row at which the next replaced
// byte would be stored.
func (d *Decoder) Pos() int {
	if !d.inRow {
		return 0
	}
	return d.pos
}

// Reset clears the seed row and discards a partially decoded row.
func (d *Decoder) Reset() {
	clear(d.seed)
	d.state = nextIsByteCountLow
	d.inRow = false
}

// Decode continues to decode the current row into row, which must have
// length RowLen() and must be the same buffer for all calls contributing to
// one row.
//
// If the row is completed, Decode returns true and row holds the
// reconstructed data.  The row then also becomes the new seed row.
// If src is exhausted first, Decode returns false; the next call continues
// with the same row.
func (d *Decoder) Decode(row []byte, src *cursor.Cursor) (bool, error) {
	if !d.inRow {
		copy(row, d.seed)
		d.inRow = true
		d.pos = 0
	}

	for {
		switch d.state {
		case nextIsByteCountLow:
			b, err := src.ReadByte()
			if err != nil {
				return false, nil
			}
			d.countLow = b
			d.state = partialByteCountHigh

		case partialByteCountHigh:
			b, err := src.ReadByte()
			if err != nil {
				return false, nil
			}
			d.remaining = int(d.countLow) | int(b)<<8
			if d.remaining == 0 {
				return d.finishRow(row), nil
			}
			d.state = nextIsCmd

		case nextIsCmd:
			b, err := src.ReadByte()
			if err != nil {
				return false, nil
			}
			d.remaining--
			d.copyLeft = int(b>>5) + 1
			skip := int(b & 0x1f)
			if err := d.skip(skip); err != nil {
				return false, err
			}
			switch {
			case d.remaining == 0:
				return d.finishRow(row), nil
			case skip == 31:
				d.state = partialOffset
			default:
				d.state = partialCount
			}

		case partialOffset:
			b, err := src.ReadByte()
			if err != nil {
				return false, nil
			}
			d.remaining--
			if err := d.skip(int(b)); err != nil {
				return false, err
			}
			if d.remaining == 0 {
				return d.finishRow(row), nil
			} else if b != 255 {
				d.state = partialCount
			}

		case partialCount:
			n := min(d.copyLeft, d.remaining, src.Len())
			if n == 0 {
				return false, nil
			}
			if d.pos+n > len(row) {
				return false, ErrOverflow
			}
			copy(row[d.pos:], src.Next(n))
			d.pos += n
			d.copyLeft -= n
			d.remaining -= n
			if d.remaining == 0 {
				return d.finishRow(row), nil
			} else if d.copyLeft == 0 {
				d.state = nextIsCmd
			}
		}
	}
}

func (d *Decoder) skip(n int) error {
	d.pos += n
	if d.pos > len(d.seed) {
		return ErrOverflow
	}
	return nil
}

func (d *Decoder) finishRow(row []byte) bool {
	copy(d.seed, row)
	d.state = nextIsByteCountLow
	d.inRow = false
	return true
}
