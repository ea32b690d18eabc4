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

package deltarow

import (
	"errors"
)

// ErrRowTooLong indicates that the encoded form of a row does not fit into
// the 16-bit byte count.
var ErrRowTooLong = errors.New("delta row encoding too long")

// maxReplace is the largest number of bytes a single command can replace.
const maxReplace = 8

// AppendRow appends the delta row encoding of row, relative to seed, to dst.
// The slices row and seed must have the same length.
// If row equals seed, the encoding is a byte count of zero.
func AppendRow(dst, seed, row []byte) ([]byte, error) {
	start := len(dst)
	dst = append(dst, 0, 0)

	last := 0 // position after the last replaced byte
	i := 0
	for i < len(row) {
		if row[i] == seed[i] {
			i++
			continue
		}

		j := i + 1
		for j < len(row) && j-i < maxReplace && row[j] != seed[j] {
			j++
		}

		skip := i - last
		cmd := byte(j-i-1) << 5
		if skip < 31 {
			dst = append(dst, cmd|byte(skip))
		} else {
			dst = append(dst, cmd|31)
			skip -= 31
			for skip >= 255 {
				dst = append(dst, 255)
				skip -= 255
			}
			dst = append(dst, byte(skip))
		}
		dst = append(dst, row[i:j]...)

		last = j
		i = j
	}

	n := len(dst) - start - 2
	if n > 0xFFFF {
		return dst[:start], ErrRowTooLong
	}
	dst[start] = byte(n)
	dst[start+1] = byte(n >> 8)
	return dst, nil
}

// Encoder encodes a sequence of rows.  It keeps track of the seed row.
type Encoder struct {
	seed []byte
}

// NewEncoder returns an encoder for rows of rowLen bytes.
func NewEncoder(rowLen int) *Encoder {
	return &Encoder{seed: make([]byte, rowLen)}
}

// AppendRow appends the encoding of the next row to dst.
func (e *Encoder) AppendRow(dst, row []byte) ([]byte, error) {
	if len(row) != len(e.seed) {
		return dst, errors.New("wrong row length")
	}
	dst, err := AppendRow(dst, e.seed, row)
	if err != nil {
		return dst, err
	}
	copy(e.seed, row)
	return dst, nil
}
