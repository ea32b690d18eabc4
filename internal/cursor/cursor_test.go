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

package cursor

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCursor(t *testing.T) {
	c := New([]byte{1, 2, 3, 4, 5})

	b, err := c.ReadByte()
	if err != nil || b != 1 {
		t.Fatalf("ReadByte() = %d, %v", b, err)
	}
	if c.Len() != 4 || c.Consumed() != 1 {
		t.Errorf("Len() = %d, Consumed() = %d", c.Len(), c.Consumed())
	}

	if diff := cmp.Diff([]byte{2, 3, 4, 5}, c.Bytes()); diff != "" {
		t.Errorf("Bytes() (-want +got):\n%s", diff)
	}
	if c.Consumed() != 1 {
		t.Errorf("Bytes() consumed data")
	}

	if diff := cmp.Diff([]byte{2, 3}, c.Next(2)); diff != "" {
		t.Errorf("Next(2) (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]byte{4, 5}, c.Next(10)); diff != "" {
		t.Errorf("Next(10) (-want +got):\n%s", diff)
	}

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	_, err = c.ReadByte()
	if err != io.EOF {
		t.Errorf("ReadByte() on empty cursor: %v", err)
	}
	if n := len(c.Next(1)); n != 0 {
		t.Errorf("Next(1) on empty cursor returned %d bytes", n)
	}

	c.Reset([]byte{9})
	if c.Len() != 1 || c.Consumed() != 0 {
		t.Errorf("after Reset: Len() = %d, Consumed() = %d", c.Len(), c.Consumed())
	}
}

func TestZeroCursor(t *testing.T) {
	var c Cursor
	if c.Len() != 0 {
		t.Errorf("Len() = %d", c.Len())
	}
	if _, err := c.ReadByte(); err != io.EOF {
		t.Errorf("ReadByte() = %v", err)
	}
}
