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
	"seehuhn.de/go/pclxl"
	"seehuhn.de/go/pclxl/internal/cursor"
	"seehuhn.de/go/pclxl/internal/filter/deltarow"
)

// deltaRowCodec reads delta row compressed rows.  Delta row data is never
// padded.
type deltaRowCodec struct {
	dec *deltarow.Decoder
}

func newDeltaRowCodec(rowLen int) *deltaRowCodec {
	return &deltaRowCodec{dec: deltarow.NewDecoder(rowLen)}
}

func (c *deltaRowCodec) readRow(r *Reader, row []byte, src *cursor.Cursor) ([]byte, bool, error) {
	done, err := c.dec.Decode(row, src)
	if err != nil {
		return nil, false, pclxl.Errorf("", pclxl.RasterOverflow, err)
	}
	if !done {
		r.pos = int64(r.rows)*int64(r.rowLen) + int64(c.dec.Pos())
		return nil, false, nil
	}
	r.pos = int64(r.rows+1) * int64(r.rowLen)
	return row, true, nil
}

func (c *deltaRowCodec) close() {
	c.dec = nil
}
