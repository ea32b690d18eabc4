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
	"fmt"

	"seehuhn.de/go/pclxl"
	"seehuhn.de/go/pclxl/internal/cursor"
	"seehuhn.de/go/pclxl/internal/filter/dct"
)

// jpegCodec reads JPEG compressed rows.  JPEG rows are never padded.
// A new JPEG decoder is used for every block.
type jpegCodec struct {
	dec      *dct.Decoder
	checked  bool
	posInRow int
}

func (c *jpegCodec) readRow(r *Reader, row []byte, src *cursor.Cursor) ([]byte, bool, error) {
	if c.dec == nil {
		c.dec = dct.NewDecoder(r.block.ByteLength)
		c.checked = false
		c.posInRow = 0
	}

	n, err := c.dec.Process(row[c.posInRow:r.rowLen], src)
	if err != nil {
		c.close()
		return nil, false, pclxl.Errorf("", pclxl.CorruptData, err)
	}
	if !c.checked && n > 0 {
		w, h, ch := c.dec.Size()
		if w*ch != r.rowLen || h < r.block.Rows {
			c.close()
			return nil, false, pclxl.Errorf("", pclxl.IllegalAttributeValue,
				fmt.Errorf("JPEG image is %dx%d with %d channels, expected %d bytes per row and %d rows",
					w, h, ch, r.rowLen, r.block.Rows))
		}
		c.checked = true
	}
	c.posInRow += n
	r.pos += int64(n)

	if c.posInRow < r.rowLen {
		if c.dec.InputDone() && c.dec.Remaining() == 0 {
			c.close()
			return nil, false, pclxl.Errorf("", pclxl.CorruptData,
				fmt.Errorf("JPEG data ends after %d rows", r.rows))
		}
		return nil, false, nil
	}

	c.posInRow = 0
	if r.rows+1 >= r.block.Rows {
		// All rows of the block are done, the decoder is no longer needed.
		// The caller gets the row before the next block starts.
		c.close()
	}
	return row, true, nil
}

func (c *jpegCodec) close() {
	if c.dec != nil {
		// Close only fails for incomplete data.  After an error this has
		// been reported already, and an incomplete block is reported as
		// MissingData by EndBlock or by the caller.
		c.dec.Close()
		c.dec = nil
	}
}
