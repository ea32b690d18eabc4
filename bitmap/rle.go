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

package bitmap

import (
	"seehuhn.de/go/pclxl/internal/cursor"
	"seehuhn.de/go/pclxl/internal/filter/runlength"
)

// rleCodec reads run-length encoded rows.  The padding bytes at the end of
// each row are part of the encoded data and are decoded and discarded.
type rleCodec struct {
	dec runlength.Decoder
	pad []byte
}

func (c *rleCodec) readRow(r *Reader, row []byte, src *cursor.Cursor) ([]byte, bool, error) {
	posInRow := int(r.pos % int64(r.padded))

	if posInRow < r.rowLen {
		n := c.dec.Decode(row[posInRow:r.rowLen], src)
		posInRow += n
		r.pos += int64(n)
	}
	if posInRow >= r.rowLen && posInRow < r.padded {
		need := r.padded - posInRow
		if len(c.pad) < need {
			c.pad = make([]byte, r.padded-r.rowLen)
		}
		n := c.dec.Decode(c.pad[:need], src)
		posInRow += n
		r.pos += int64(n)
	}

	if posInRow < r.padded {
		return nil, false, nil
	}
	return row, true, nil
}

func (c *rleCodec) close() {
	c.dec.Reset()
}
