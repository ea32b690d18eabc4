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
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// TokenKind identifies the different kinds of tokens in a PCL XL stream.
type TokenKind int

// These are the possible token kinds.
const (
	ValueToken TokenKind = iota
	AttributeToken
	OperatorToken
	DataToken
)

// Token is one syntactic element of a PCL XL stream.
type Token struct {
	Kind   TokenKind
	Offset int64

	Value     Value     // for ValueToken
	Attribute Attribute // for AttributeToken
	Operator  Operator  // for OperatorToken
	DataLen   int       // for DataToken
}

// SyntaxError describes a malformed PCL XL stream.
type SyntaxError struct {
	Offset int64
	Msg    string
}

func (err *SyntaxError) Error() string {
	return fmt.Sprintf("pxl: offset %d: %s", err.Offset, err.Msg)
}

// ErrASCII is returned for streams which use the ASCII binding.
var ErrASCII = errors.New("pxl: ASCII binding not supported")

var (
	uel        = []byte("\x1b%-12345X")
	streamName = []byte(" HP-PCL XL")
)

// Scanner splits a binary PCL XL stream into tokens.
//
// Leading UEL sequences and PJL lines are skipped.  The stream ends at the
// end of input or at the next UEL sequence.
type Scanner struct {
	r     *bufio.Reader
	order binary.ByteOrder
	pos   int64

	header  string
	started bool
	dataLen int
	buf     [4]byte
}

// NewScanner returns a scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{
		r: bufio.NewReader(r),
	}
}

// Header returns the stream header line, without the trailing newline.
// The value is available after the first call to Next.
func (s *Scanner) Header() string {
	return s.header
}

// ByteOrder returns the byte order used by the stream.
// The value is available after the first call to Next.
func (s *Scanner) ByteOrder() binary.ByteOrder {
	return s.order
}

// Offset returns the number of bytes consumed so far.
func (s *Scanner) Offset() int64 {
	return s.pos
}

func (s *Scanner) readHeader() error {
	for {
		start := s.pos
		line, err := s.r.ReadBytes('\n')
		s.pos += int64(len(line))
		if err == io.EOF {
			return &SyntaxError{Offset: start, Msg: "missing stream header"}
		} else if err != nil {
			return err
		}
		line = bytes.TrimRight(line, "\r\n")
		for bytes.HasPrefix(line, uel) {
			line = line[len(uel):]
		}

		switch {
		case len(line) == 0 || bytes.HasPrefix(line, []byte("@PJL")):
			continue
		case bytes.HasPrefix(line[1:], streamName):
			switch line[0] {
			case ')':
				s.order = binary.LittleEndian
			case '(':
				s.order = binary.BigEndian
			case '\'':
				return ErrASCII
			default:
				return &SyntaxError{Offset: start, Msg: "invalid binding"}
			}
			s.header = string(line)
			return nil
		default:
			return &SyntaxError{Offset: start, Msg: "not a PCL XL stream"}
		}
	}
}

// Next returns the next token.  At the end of the stream, io.EOF is
// returned.
//
// Any embedded data of a DataToken which has not been consumed using
// Read is skipped.
func (s *Scanner) Next() (*Token, error) {
	if !s.started {
		if err := s.readHeader(); err != nil {
			return nil, err
		}
		s.started = true
	}
	if s.dataLen > 0 {
		n, err := s.r.Discard(s.dataLen)
		s.pos += int64(n)
		s.dataLen -= n
		if err != nil {
			return nil, s.truncated(err)
		}
	}

	var tag byte
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if !isSpace(b) {
			tag = b
			break
		}
		s.pos++
	}
	if tag == uel[0] {
		return nil, io.EOF
	}

	start := s.pos
	s.pos++
	tok := &Token{Offset: start}

	switch {
	case isOperator(tag):
		tok.Kind = OperatorToken
		tok.Operator = Operator(tag)

	case tag >= tagScalar && tag <= tagScalar+byte(Real32):
		v, err := s.readElems(DataType(tag-tagScalar), Scalar, 1)
		if err != nil {
			return nil, err
		}
		tok.Value = v
	case tag >= tagXY && tag <= tagXY+byte(Real32):
		v, err := s.readElems(DataType(tag-tagXY), XY, 2)
		if err != nil {
			return nil, err
		}
		tok.Value = v
	case tag >= tagBox && tag <= tagBox+byte(Real32):
		v, err := s.readElems(DataType(tag-tagBox), Box, 4)
		if err != nil {
			return nil, err
		}
		tok.Value = v
	case tag >= tagArray && tag <= tagArray+byte(Real32):
		n, err := s.readArrayLen()
		if err != nil {
			return nil, err
		}
		v, err := s.readElems(DataType(tag-tagArray), Array, n)
		if err != nil {
			return nil, err
		}
		tok.Value = v

	case tag == tagAttrUByte:
		id, err := s.readUint(UByte)
		if err != nil {
			return nil, err
		}
		tok.Kind = AttributeToken
		tok.Attribute = Attribute(id)
	case tag == tagAttrU16:
		id, err := s.readUint(UInt16)
		if err != nil {
			return nil, err
		}
		tok.Kind = AttributeToken
		tok.Attribute = Attribute(id)

	case tag == tagData:
		n, err := s.readUint(UInt32)
		if err != nil {
			return nil, err
		}
		if n > math.MaxInt32 {
			return nil, &SyntaxError{Offset: start, Msg: "embedded data too long"}
		}
		tok.Kind = DataToken
		tok.DataLen = int(n)
	case tag == tagDataUByte:
		n, err := s.readUint(UByte)
		if err != nil {
			return nil, err
		}
		tok.Kind = DataToken
		tok.DataLen = int(n)

	default:
		return nil, &SyntaxError{Offset: start, Msg: fmt.Sprintf("unknown tag 0x%02x", tag)}
	}

	if tok.Kind == DataToken {
		s.dataLen = tok.DataLen
	}
	return tok, nil
}

// Read reads embedded data following a DataToken.  At the end of the data
// block, io.EOF is returned.
func (s *Scanner) Read(p []byte) (int, error) {
	if s.dataLen == 0 {
		return 0, io.EOF
	}
	if len(p) > s.dataLen {
		p = p[:s.dataLen]
	}
	n, err := s.r.Read(p)
	s.pos += int64(n)
	s.dataLen -= n
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

// DataLeft returns the number of bytes of embedded data not yet read.
func (s *Scanner) DataLeft() int {
	return s.dataLen
}

func (s *Scanner) readArrayLen() (int, error) {
	start := s.pos
	tag, err := s.r.ReadByte()
	if err != nil {
		return 0, s.truncated(err)
	}
	s.pos++
	var n uint32
	switch tag {
	case tagScalar + byte(UByte):
		n, err = s.readUint(UByte)
	case tagScalar + byte(UInt16):
		n, err = s.readUint(UInt16)
	default:
		return 0, &SyntaxError{Offset: start, Msg: "invalid array length"}
	}
	return int(n), err
}

func (s *Scanner) readUint(t DataType) (uint32, error) {
	buf := s.buf[:t.size()]
	n, err := io.ReadFull(s.r, buf)
	s.pos += int64(n)
	if err != nil {
		return 0, s.truncated(err)
	}
	switch len(buf) {
	case 1:
		return uint32(buf[0]), nil
	case 2:
		return uint32(s.order.Uint16(buf)), nil
	default:
		return s.order.Uint32(buf), nil
	}
}

func (s *Scanner) readElems(t DataType, shape Shape, n int) (Value, error) {
	v := Value{Type: t, Shape: shape, Elems: make([]float64, n)}
	for i := range v.Elems {
		u, err := s.readUint(t)
		if err != nil {
			return Value{}, err
		}
		var x float64
		switch t {
		case SInt16:
			x = float64(int16(u))
		case SInt32:
			x = float64(int32(u))
		case Real32:
			x = float64(math.Float32frombits(u))
		default:
			x = float64(u)
		}
		v.Elems[i] = x
	}
	return v, nil
}

func (s *Scanner) truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return &SyntaxError{Offset: s.pos, Msg: "unexpected end of stream"}
	}
	return err
}

func isSpace(b byte) bool {
	switch b {
	case 0x00, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x20:
		return true
	}
	return false
}
