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

// Package pclxl provides the types shared by the packages which decode
// raster images in PCL XL print jobs.
//
// PCL XL transfers image and raster pattern data in blocks.  Each block uses
// one of four compression methods ([NoCompression], [RLECompression],
// [JPEGCompression] and [DeltaRowCompression]).  The decoders can be fed the
// data of a block in arbitrary pieces, and reconstruct the rows of the image
// one at a time.
//
// The main entry points are:
//
//   - [seehuhn.de/go/pclxl/pximage.Controller], which drives one image or
//     raster pattern from BeginImage to EndImage and hands the decoded rows
//     to a sink.
//   - [seehuhn.de/go/pclxl/pxl.Interpreter], which reads a binary PCL XL
//     stream and runs the image operators found in it.
//   - [seehuhn.de/go/pclxl/sink], which assembles decoded rows into Go
//     images.
package pclxl
