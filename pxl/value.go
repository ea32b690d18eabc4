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

package pxl

import (
	"errors"
	"fmt"
	"strings"
)

// Value is the value of an attribute.
//
// All element types are stored as float64.  This is exact for every PCL XL
// data type.
type Value struct {
	Type  DataType
	Shape Shape
	Elems []float64
}

var (
	errNotScalar  = errors.New("not a scalar value")
	errNotInteger = errors.New("not an integer value")
	errNotXY      = errors.New("not an xy value")
	errNotBytes   = errors.New("not a ubyte array")
)

// Int returns the value of an integer scalar.
func (v Value) Int() (int, error) {
	if v.Shape != Scalar || len(v.Elems) != 1 {
		return 0, errNotScalar
	}
	if v.Type == Real32 {
		return 0, errNotInteger
	}
	return int(v.Elems[0]), nil
}

// Real returns the value of a scalar of any type.
func (v Value) Real() (float64, error) {
	if v.Shape != Scalar || len(v.Elems) != 1 {
		return 0, errNotScalar
	}
	return v.Elems[0], nil
}

// XY returns the components of an xy pair.
func (v Value) XY() ([2]float64, error) {
	if v.Shape != XY || len(v.Elems) != 2 {
		return [2]float64{}, errNotXY
	}
	return [2]float64{v.Elems[0], v.Elems[1]}, nil
}

// Bytes returns the elements of a ubyte array.
func (v Value) Bytes() ([]byte, error) {
	if v.Shape != Array || v.Type != UByte {
		return nil, errNotBytes
	}
	res := make([]byte, len(v.Elems))
	for i, x := range v.Elems {
		res[i] = byte(x)
	}
	return res, nil
}

func (v Value) String() string {
	b := &strings.Builder{}
	switch v.Shape {
	case XY:
		b.WriteString(v.Type.String() + "_xy")
	case Box:
		b.WriteString(v.Type.String() + "_box")
	case Array:
		fmt.Fprintf(b, "%s_array[%d]", v.Type, len(v.Elems))
		return b.String()
	default:
		b.WriteString(v.Type.String())
	}
	for _, x := range v.Elems {
		fmt.Fprintf(b, " %g", x)
	}
	return b.String()
}

// Attributes holds the attribute list of an operator.
type Attributes map[Attribute]Value

// Int returns the value of an integer attribute.
func (a Attributes) Int(id Attribute) (int, bool, error) {
	v, ok := a[id]
	if !ok {
		return 0, false, nil
	}
	x, err := v.Int()
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", id, err)
	}
	return x, true, nil
}
