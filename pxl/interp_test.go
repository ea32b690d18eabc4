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
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/pclxl"
	"seehuhn.de/go/pclxl/pximage"
	"seehuhn.de/go/pclxl/sink"
)

var testRows = [][]byte{
	{0, 0, 0, 0, 0},
	{9, 9, 9, 9, 1},
	{9, 8, 9, 9, 1},
	{200, 8, 9, 9, 2},
}

func grayImage() *pximage.Params {
	return &pximage.Params{
		Kind:            pximage.Image,
		ColorSpace:      pclxl.Gray,
		ColorMapping:    pclxl.DirectPixel,
		ColorDepth:      pclxl.Depth8Bit,
		SourceWidth:     5,
		SourceHeight:    4,
		DestinationSize: [2]float64{10, 8},
	}
}

// writeJob writes a job with one image and one raster pattern.
func writeJob(t *testing.T) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	buf.WriteString("\x1b%-12345X@PJL ENTER LANGUAGE=PCLXL\n")
	w := NewWriter(buf)
	w.Op(BeginSession)
	w.Op(BeginPage)

	w.SetColorSpace(pclxl.Gray, nil)
	w.Begin(grayImage())
	if err := w.ReadRows(pximage.Image, 0, pclxl.RLECompression, 0, testRows[:2]); err != nil {
		t.Fatal(err)
	}
	if err := w.ReadRows(pximage.Image, 2, pclxl.DeltaRowCompression, 0, testRows[2:]); err != nil {
		t.Fatal(err)
	}
	w.End(pximage.Image)

	// an operator with embedded data which is not interpreted
	w.Op(Operator(0x50))
	w.Data([]byte{1, 2, 3, 4})

	w.SetColorSpace(pclxl.RGB, []byte{255, 0, 0, 0, 0, 255})
	w.Begin(&pximage.Params{
		Kind:         pximage.RasterPattern,
		ColorSpace:   pclxl.RGB,
		ColorMapping: pclxl.IndexedPixel,
		ColorDepth:   pclxl.Depth1Bit,
		SourceWidth:  3,
		SourceHeight: 2,
		PatternID:    7,
		Persistence:  pclxl.SessionPattern,
	})
	if err := w.ReadRows(pximage.RasterPattern, 0, pclxl.NoCompression, 1, [][]byte{{0b10100000}, {0b01000000}}); err != nil {
		t.Fatal(err)
	}
	w.End(pximage.RasterPattern)

	w.Op(EndPage)
	w.Op(EndSession)
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	buf.WriteString("\x1b%-12345X")
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	job := writeJob(t)

	for _, chunk := range []int{1, 3, 0} {
		t.Run(fmt.Sprintf("chunk_%d", chunk), func(t *testing.T) {
			var images []*sink.Image
			store := &sink.PatternStore{}
			var pagesDone int
			in := &Interpreter{
				NewImage: func(p *pximage.Params) (pximage.Sink, error) {
					img, err := sink.NewImage(p)
					images = append(images, img)
					return img, err
				},
				NewPattern: store.NewSink,
				PageDone: func(page int) error {
					pagesDone = page
					store.EndPage()
					return nil
				},
				ChunkSize: chunk,
			}
			err := in.Run(bytes.NewReader(job))
			if err != nil {
				t.Fatal(err)
			}

			if len(images) != 1 {
				t.Fatalf("got %d images", len(images))
			}
			if !images[0].Complete() {
				t.Error("image incomplete")
			}
			gray := images[0].Image().(*image.Gray)
			if d := cmp.Diff(bytes.Join(testRows, nil), gray.Pix); d != "" {
				t.Errorf("image pixels (-want +got):\n%s", d)
			}
			if got := images[0].Params().DestinationSize; got != [2]float64{10, 8} {
				t.Errorf("DestinationSize = %v", got)
			}

			if d := cmp.Diff([]int{7}, store.IDs()); d != "" {
				t.Errorf("patterns (-want +got):\n%s", d)
			}
			pat, _ := store.Get(7)
			pal := pat.Image.Image().(*image.Paletted)
			if d := cmp.Diff([]uint8{1, 0, 1, 0, 1, 0}, pal.Pix); d != "" {
				t.Errorf("pattern pixels (-want +got):\n%s", d)
			}

			wantStats := Stats{
				Sessions:  1,
				Pages:     1,
				Operators: 14,
				Images:    1,
				Patterns:  1,
				Rows:      6,
			}
			gotStats := in.Stats
			gotStats.DataBytes = 0
			if d := cmp.Diff(wantStats, gotStats); d != "" {
				t.Errorf("stats (-want +got):\n%s", d)
			}
			if pagesDone != 1 {
				t.Errorf("PageDone called with %d", pagesDone)
			}
		})
	}
}

func TestTrace(t *testing.T) {
	job := writeJob(t)
	var ops []string
	in := &Interpreter{
		Trace: func(op Operator, attrs Attributes, offset int64) {
			if op == BeginImage {
				w, _, _ := attrs.Int(SourceWidth)
				ops = append(ops, fmt.Sprintf("%s(%d)", op, w))
				return
			}
			ops = append(ops, op.String())
		},
	}
	if err := in.Run(bytes.NewReader(job)); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"BeginSession", "BeginPage", "SetColorSpace", "BeginImage(5)",
		"ReadImage", "ReadImage", "EndImage", "ReadFontHeader",
		"SetColorSpace", "BeginRastPattern", "ReadRastPattern",
		"EndRastPattern", "EndPage", "EndSession",
	}
	if d := cmp.Diff(want, ops); d != "" {
		t.Errorf("operators (-want +got):\n%s", d)
	}
}

func TestJPEGBlock(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 8, 3))
	for i := range src.Pix {
		src.Pix[i] = 128
	}
	jpegData := &bytes.Buffer{}
	if err := jpeg.Encode(jpegData, src, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatal(err)
	}

	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	p := grayImage()
	p.SourceWidth = 8
	p.SourceHeight = 3
	w.SetColorSpace(pclxl.Gray, nil)
	w.Begin(p)
	w.ReadBlock(pximage.Image, &pximage.Block{
		BlockHeight:  3,
		CompressMode: pclxl.JPEGCompression,
	}, jpegData.Bytes())
	w.End(pximage.Image)
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	var img *sink.Image
	in := &Interpreter{
		NewImage: func(p *pximage.Params) (pximage.Sink, error) {
			var err error
			img, err = sink.NewImage(p)
			return img, err
		},
		ChunkSize: 7,
	}
	if err := in.Run(buf); err != nil {
		t.Fatal(err)
	}
	if !img.Complete() {
		t.Fatalf("only %d rows decoded", img.Rows())
	}
	for i, v := range img.Image().(*image.Gray).Pix {
		if v < 126 || v > 130 {
			t.Fatalf("pixel %d = %d", i, v)
		}
	}
}

func TestErrors(t *testing.T) {
	cases := []struct {
		name  string
		write func(w *Writer)
		want  pclxl.ErrorKind
	}{
		{"missing attribute", func(w *Writer) {
			w.AttrUByte(ColorMapping, 0)
			w.AttrUByte(ColorDepth, 2)
			w.AttrUInt16(SourceWidth, 4)
			w.Op(BeginImage)
		}, pclxl.MissingAttribute},
		{"missing color space", func(w *Writer) {
			w.Op(SetColorSpace)
		}, pclxl.MissingAttribute},
		{"operator inside image", func(w *Writer) {
			w.Begin(grayImage())
			w.Op(BeginPage)
		}, pclxl.IllegalOperatorSequence},
		{"read without image", func(w *Writer) {
			w.ReadBlock(pximage.Image, &pximage.Block{BlockHeight: 1}, []byte{1, 2, 3, 4, 5, 0, 0, 0})
		}, pclxl.IllegalOperatorSequence},
		{"end without image", func(w *Writer) {
			w.End(pximage.RasterPattern)
		}, pclxl.IllegalOperatorSequence},
		{"missing palette", func(w *Writer) {
			p := grayImage()
			p.ColorMapping = pclxl.IndexedPixel
			w.Begin(p)
		}, pclxl.MissingPalette},
		{"bad persistence", func(w *Writer) {
			w.Begin(&pximage.Params{
				Kind:         pximage.RasterPattern,
				ColorDepth:   pclxl.Depth8Bit,
				SourceWidth:  1,
				SourceHeight: 1,
				Persistence:  5,
			})
		}, pclxl.IllegalAttributeValue},
		{"short data", func(w *Writer) {
			w.Begin(grayImage())
			w.ReadBlock(pximage.Image, &pximage.Block{BlockHeight: 2}, []byte{1, 2, 3, 4, 5, 0, 0, 0, 1})
		}, pclxl.MissingData},
		{"no data", func(w *Writer) {
			w.Begin(grayImage())
			w.AttrUInt16(StartLine, 0)
			w.AttrUInt16(BlockHeight, 1)
			w.AttrUByte(CompressMode, 0)
			w.Op(ReadImage)
			w.Op(EndImage)
		}, pclxl.MissingData},
		{"overflow", func(w *Writer) {
			w.Begin(grayImage())
			w.ReadBlock(pximage.Image, &pximage.Block{
				BlockHeight:  1,
				CompressMode: pclxl.DeltaRowCompression,
			}, []byte{9, 0, 0xe4, 1, 2, 3, 4, 5, 6, 7, 8})
		}, pclxl.RasterOverflow},
		{"wrong start line", func(w *Writer) {
			w.Begin(grayImage())
			w.ReadBlock(pximage.Image, &pximage.Block{StartLine: 1, BlockHeight: 1}, make([]byte, 8))
		}, pclxl.IllegalAttributeValue},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			w := NewWriter(buf)
			w.SetColorSpace(pclxl.Gray, nil)
			c.write(w)
			if err := w.Flush(); err != nil {
				t.Fatal(err)
			}

			in := &Interpreter{}
			err := in.Run(buf)
			if !errors.Is(err, c.want) {
				t.Errorf("got %v, expected %v", err, c.want)
			}
		})
	}
}

func TestTrailingBlockData(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	w.SetColorSpace(pclxl.Gray, nil)
	p := grayImage()
	p.SourceHeight = 1
	w.Begin(p)
	w.ReadBlock(pximage.Image, &pximage.Block{BlockHeight: 1, PadBytesMultiple: 1},
		[]byte{1, 2, 3, 4, 5, 99, 99, 99})
	w.End(pximage.Image)
	w.Op(EndPage)
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	var img *sink.Image
	pages := 0
	in := &Interpreter{
		NewImage: func(p *pximage.Params) (pximage.Sink, error) {
			var err error
			img, err = sink.NewImage(p)
			return img, err
		},
		PageDone: func(int) error { pages++; return nil },
	}
	if err := in.Run(buf); err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]byte{1, 2, 3, 4, 5}, img.Image().(*image.Gray).Pix); d != "" {
		t.Errorf("pixels (-want +got):\n%s", d)
	}
	if pages != 1 {
		t.Errorf("EndPage not executed after trailing data")
	}
}
