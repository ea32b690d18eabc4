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

// Package runlength implements the PackBits run-length encoding used for
// RLE compressed raster data in PCL XL.
//
// A length byte n in the range 0 to 127 is followed by n+1 literal bytes.
// A length byte n in the range 129 to 255 is followed by a single byte which
// is repeated 257-n times.  The length byte 128 is ignored.
package runlength

import (
	"seehuhn.de/go/pclxl/internal/cursor"
)

// Decoder decodes run-length encoded data which arrives in pieces.
// The zero value is ready to use.
type Decoder struct {
	literal   bool
	count     int // bytes left in the current run
	value     byte
	needValue bool // a repeat length was read, but not the repeated byte
}

// Reset discards any partially decoded run.
func (d *Decoder) Reset() {
	*d = Decoder{}
}

// Decode decodes data from src into dst, until either dst is full or src is
// exhausted.  It returns the number of bytes written to dst.
//
// The state of a run which is cut off by the end of src or dst is kept, so
// that the next call continues where this one stopped.
func (d *Decoder) Decode(dst []byte, src *cursor.Cursor) int {
	n := 0
	for n < len(dst) {
		if d.needValue {
			b, err := src.ReadByte()
			if err != nil {
				break
			}
			d.value = b
			d.needValue = false
			continue
		}

		if d.count > 0 {
			count := min(d.count, len(dst)-n)
			if d.literal {
				count = copy(dst[n:n+count], src.Next(count))
				if count == 0 {
					break
				}
			} else {
				for i := range count {
					dst[n+i] = d.value
				}
			}
			n += count
			d.count -= count
			continue
		}

		length, err := src.ReadByte()
		if err != nil {
			break
		}
		switch {
		case length == 128:
			// no-op

		case length < 128:
			d.count = int(length) + 1 // 1, ..., 128
			d.literal = true

		default: // length > 128
			d.count = 257 - int(length) // 2, ..., 128
			d.literal = false
			d.needValue = true
		}
	}
	return n
}

// InRun reports whether the decoder is inside a run, i.e. whether more
// output is pending before the next length byte is read.
func (d *Decoder) InRun() bool {
	return d.count > 0 || d.needValue
}
