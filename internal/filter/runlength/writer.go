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

package runlength

import (
	"io"
)

// Writer encodes data in run-length format.
// No end-of-data marker is written.
type Writer struct {
	w           io.Writer
	buf         [129]byte
	used        int
	repeatCount int
	repeatVal   byte
}

// NewWriter returns a new Writer which writes the encoded data to w.
// The Writer must be flushed to write all data.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write implements the io.Writer interface.
func (w *Writer) Write(p []byte) (n int, err error) {
	for n < len(p) {
		b := p[n]
		if w.repeatCount > 0 {
			if b == w.repeatVal && w.repeatCount < 128 {
				w.repeatCount++
				n++
				continue
			}

			err = w.flushRepeat()
			if err != nil {
				return n, err
			}
		}

		w.buf[1+w.used] = b
		w.used++
		n++

		if w.used >= 3 {
			idx := 1 + w.used - 3
			if w.buf[idx] == w.buf[idx+1] && w.buf[idx+1] == w.buf[idx+2] {
				literalCount := w.used - 3
				if literalCount > 0 {
					err = w.flushLiteral(literalCount)
					if err != nil {
						return n, err
					}
				}
				w.repeatCount = 3
				w.repeatVal = w.buf[idx]
				w.used = 0
				continue
			}
		}

		if w.used == 128 {
			err = w.flushLiteral(128)
			if err != nil {
				return n, err
			}
		}
	}

	return n, nil
}

func (w *Writer) flushLiteral(count int) error {
	w.buf[0] = byte(count - 1)
	_, err := w.w.Write(w.buf[0 : count+1])
	w.used = 0
	return err
}

func (w *Writer) flushRepeat() error {
	w.buf[0] = byte(257 - w.repeatCount)
	w.buf[1] = w.repeatVal
	_, err := w.w.Write(w.buf[0:2])
	w.repeatCount = 0
	return err
}

// Flush writes the pending run to the underlying writer.  After Flush, the
// data written so far can be decoded on its own.
func (w *Writer) Flush() error {
	if w.repeatCount > 0 {
		err := w.flushRepeat()
		if err != nil {
			return err
		}
	}

	if w.used > 0 {
		err := w.flushLiteral(w.used)
		if err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the remaining bytes.
// The underlying writer is not closed.
func (w *Writer) Close() error {
	return w.Flush()
}
