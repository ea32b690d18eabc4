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
)

// rawCodec reads uncompressed, padded rows.
type rawCodec struct{}

func (rawCodec) readRow(r *Reader, row []byte, src *cursor.Cursor) ([]byte, bool, error) {
	posInRow := int(r.pos % int64(r.padded))

	// If the whole row is available, use the input data directly.
	if posInRow == 0 && src.Len() >= r.padded {
		data := src.Next(r.padded)
		r.pos += int64(r.padded)
		return data[:r.rowLen], true, nil
	}

	used := src.Next(r.padded - posInRow)
	if posInRow < r.rowLen {
		copy(row[posInRow:r.rowLen], used)
	}
	r.pos += int64(len(used))
	if posInRow+len(used) < r.padded {
		return nil, false, nil
	}
	return row, true, nil
}

func (rawCodec) close() {}
