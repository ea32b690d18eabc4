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

// Package cursor implements a read position in a caller-supplied buffer.
//
// The decoders in this module are fed input in pieces of arbitrary size.
// A Cursor keeps track of how much of the current piece has been used.
package cursor

import "io"

// Cursor is a read position in a byte slice.
// The zero value is an empty cursor.
type Cursor struct {
	buf []byte
	pos int
}

// New returns a cursor which reads from the start of buf.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Reset makes c read from the start of buf.
func (c *Cursor) Reset(buf []byte) {
	c.buf = buf
	c.pos = 0
}

// Len returns the number of bytes which have not yet been consumed.
func (c *Cursor) Len() int {
	return len(c.buf) - c.pos
}

// Consumed returns the number of bytes consumed since the last reset.
func (c *Cursor) Consumed() int {
	return c.pos
}

// Bytes returns the unconsumed bytes, without consuming them.
// The returned slice aliases the underlying buffer.
func (c *Cursor) Bytes() []byte {
	return c.buf[c.pos:]
}

// Next consumes n bytes and returns them.  If fewer than n bytes are
// available, all remaining bytes are consumed.
func (c *Cursor) Next(n int) []byte {
	n = min(n, c.Len())
	res := c.buf[c.pos : c.pos+n]
	c.pos += n
	return res
}

// ReadByte consumes and returns the next byte.
// If the cursor is exhausted, io.EOF is returned.
func (c *Cursor) ReadByte() (byte, error) {
	if c.pos >= len(c.buf) {
		return 0, io.EOF
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}
