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

package pclxl

import (
	"strconv"
)

// ErrorKind classifies the errors reported while decoding PCL XL images.
//
// ErrorKind implements the error interface, so that callers can test for a
// kind using [errors.Is]:
//
//	if errors.Is(err, pclxl.RasterOverflow) { ... }
type ErrorKind int

// These are the error kinds used by this module.
const (
	IllegalAttributeValue ErrorKind = iota + 1
	MissingAttribute
	MissingPalette
	PaletteSizeMismatch
	RasterOverflow
	InsufficientMemory
	IllegalOperatorSequence
	MissingData
	CorruptData
)

func (k ErrorKind) Error() string {
	switch k {
	case IllegalAttributeValue:
		return "illegal attribute value"
	case MissingAttribute:
		return "missing attribute"
	case MissingPalette:
		return "missing palette"
	case PaletteSizeMismatch:
		return "image palette mismatch"
	case RasterOverflow:
		return "raster data record overflow"
	case InsufficientMemory:
		return "insufficient memory"
	case IllegalOperatorSequence:
		return "illegal operator sequence"
	case MissingData:
		return "missing data"
	case CorruptData:
		return "corrupt raster data"
	default:
		return "error " + strconv.Itoa(int(k))
	}
}

// Error is the error type returned when decoding fails.
type Error struct {
	// Op is the name of the operation which failed, e.g. "ReadImage".
	Op string

	// Kind classifies the error.
	Kind ErrorKind

	// Err, if non-nil, gives details about the error.
	Err error
}

func (err *Error) Error() string {
	msg := err.Kind.Error()
	if err.Op != "" {
		msg = err.Op + ": " + msg
	}
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err *Error) Unwrap() error {
	return err.Err
}

// Is reports whether target is the ErrorKind of err.
func (err *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == err.Kind
}

// Errorf returns a new *Error.  If detail is non-nil it is stored in the Err
// field.
func Errorf(op string, kind ErrorKind, detail error) error {
	return &Error{Op: op, Kind: kind, Err: detail}
}
