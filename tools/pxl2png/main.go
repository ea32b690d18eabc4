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

package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/exp/maps"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"seehuhn.de/go/pclxl/pximage"
	"seehuhn.de/go/pclxl/pxl"
	"seehuhn.de/go/pclxl/sink"

	"seehuhn.de/go/pclxl/tools/internal/buildinfo"
	"seehuhn.de/go/pclxl/tools/internal/profile"
)

// config holds all command-line flag values.
type config struct {
	dest    bool
	scale   float64
	list    bool
	verbose bool
	chunk   int
}

func main() {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile := flag.String("memprofile", "", "write memory profile to `file`")

	var cfg config
	flag.BoolVar(&cfg.dest, "dest", false, "scale images to their destination size")
	flag.Float64Var(&cfg.scale, "scale", 1, "device pixels per user unit, used with -dest")
	flag.BoolVar(&cfg.list, "list", false, "list the operators of the job")
	flag.BoolVar(&cfg.verbose, "v", false, "print statistics")
	flag.IntVar(&cfg.chunk, "chunk", pxl.DefaultChunkSize, "size of raster data pieces passed to the decoder")
	help := flag.Bool("help", false, "show help information")
	version := flag.Bool("version", false, "print the version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pxl2png - extract the images of a PCL XL job\n")
		fmt.Fprintf(os.Stderr, "%s\n\n", buildinfo.Short("pxl2png"))
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  pxl2png [options] <job.pxl> [prefix]\n\n")
		fmt.Fprintf(os.Stderr, "Arguments:\n")
		fmt.Fprintf(os.Stderr, "  job.pxl   PCL XL job, optionally compressed (.gz, .zst), or - for stdin\n")
		fmt.Fprintf(os.Stderr, "  prefix    prefix of the output file names, or - to write the first\n")
		fmt.Fprintf(os.Stderr, "            image to stdout\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}
	if *version {
		fmt.Println(buildinfo.Long("pxl2png"))
		return
	}

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(cfg, *cpuprofile, *memprofile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config, cpuprofile, memprofile string) (err error) {
	prof, err := profile.Start(cpuprofile, memprofile)
	if err != nil {
		return err
	}
	defer func() {
		if err2 := prof.Stop(); err == nil {
			err = err2
		}
	}()

	inName := flag.Arg(0)
	prefix := flag.Arg(1)
	if prefix == "" && inName == "-" {
		prefix = "stdin"
	} else if prefix == "" {
		prefix = strings.TrimSuffix(filepath.Base(inName), filepath.Ext(inName))
		prefix = strings.TrimSuffix(prefix, ".pxl")
	}
	if prefix == "-" && term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("refusing to write PNG data to a terminal")
	}

	in, err := openJob(inName)
	if err != nil {
		return err
	}
	defer in.Close()

	x := &extractor{
		cfg:     cfg,
		prefix:  prefix,
		store:   &sink.PatternStore{},
		written: make(map[*sink.Pattern]bool),
	}
	interp := &pxl.Interpreter{
		NewImage:    x.newImage,
		NewPattern:  x.newPattern,
		PageDone:    x.pageDone,
		SessionDone: x.sessionDone,
		ChunkSize:   cfg.chunk,
	}
	if cfg.list {
		interp.Trace = listOperator
	}

	err = interp.Run(in)
	// patterns still in the store have not been written yet
	if err2 := x.writePatterns(); err == nil {
		err = err2
	}
	if cfg.verbose {
		printStats(&interp.Stats, x.files)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", inName, err)
	}
	return nil
}

type readCloser struct {
	io.Reader
	close func() error
}

func (rc readCloser) Close() error {
	return rc.close()
}

// openJob opens the input file and undoes any gzip or zstd compression.
func openJob(name string) (io.ReadCloser, error) {
	var f *os.File
	if name == "-" {
		f = os.Stdin
	} else {
		var err error
		f, err = os.Open(name)
		if err != nil {
			return nil, err
		}
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return readCloser{zr, func() error {
			zr.Close()
			return f.Close()
		}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return readCloser{zr, func() error {
			zr.Close()
			return f.Close()
		}}, nil
	default:
		return f, nil
	}
}

// extractor writes the images and patterns of a job to PNG files.
type extractor struct {
	cfg     config
	prefix  string
	page    int
	images  int
	files   int
	store   *sink.PatternStore
	written map[*sink.Pattern]bool
}

// pngSink writes the image to a file when it ends.
type pngSink struct {
	*sink.Image
	name string
	x    *extractor
}

func (s *pngSink) Close() error {
	if err := s.Image.Close(); err != nil {
		return err
	}
	return s.x.write(s.name, s.Image)
}

func (x *extractor) newImage(p *pximage.Params) (pximage.Sink, error) {
	img, err := sink.NewImage(p)
	if err != nil {
		return nil, err
	}
	x.images++
	name := fmt.Sprintf("%s-p%03d-%02d.png", x.prefix, x.page+1, x.images)
	return &pngSink{Image: img, name: name, x: x}, nil
}

func (x *extractor) newPattern(p *pximage.Params) (pximage.Sink, error) {
	return x.store.NewSink(p)
}

func (x *extractor) pageDone(page int) error {
	if err := x.writePatterns(); err != nil {
		return err
	}
	x.store.EndPage()
	x.page = page
	x.images = 0
	return nil
}

func (x *extractor) sessionDone() error {
	if err := x.writePatterns(); err != nil {
		return err
	}
	x.store.EndSession()
	clear(x.written)
	return nil
}

// writePatterns writes all patterns in the store which have not been
// written before.
func (x *extractor) writePatterns() error {
	for _, id := range x.store.IDs() {
		pat, _ := x.store.Get(id)
		if x.written[pat] {
			continue
		}
		x.written[pat] = true
		name := fmt.Sprintf("%s-pattern%d.png", x.prefix, id)
		if err := x.write(name, pat.Image); err != nil {
			return err
		}
	}
	return nil
}

func (x *extractor) write(name string, img *sink.Image) error {
	var out image.Image = img.Image()
	if x.cfg.dest {
		out = img.Render(x.cfg.scale, nil)
	}

	if x.prefix == "-" {
		if x.files > 0 {
			return nil
		}
		x.files++
		return png.Encode(os.Stdout, out)
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	err = png.Encode(f, out)
	if err2 := f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return err
	}
	x.files++
	if !img.Complete() {
		fmt.Fprintf(os.Stderr, "%s: incomplete, %d of %d rows\n",
			name, img.Rows(), img.Params().SourceHeight)
	}
	return nil
}

func listOperator(op pxl.Operator, attrs pxl.Attributes, offset int64) {
	var b strings.Builder
	fmt.Fprintf(&b, "%8d %s", offset, op)
	ids := maps.Keys(attrs)
	slices.Sort(ids)
	for _, id := range ids {
		fmt.Fprintf(&b, " %s=%s", id, attrs[id])
	}
	fmt.Fprintln(os.Stderr, b.String())
}

func printStats(st *pxl.Stats, files int) {
	p := message.NewPrinter(language.English)
	p.Fprintf(os.Stderr, "sessions:   %d\n", st.Sessions)
	p.Fprintf(os.Stderr, "pages:      %d\n", st.Pages)
	p.Fprintf(os.Stderr, "operators:  %d\n", st.Operators)
	p.Fprintf(os.Stderr, "images:     %d\n", st.Images)
	p.Fprintf(os.Stderr, "patterns:   %d\n", st.Patterns)
	p.Fprintf(os.Stderr, "rows:       %d\n", st.Rows)
	p.Fprintf(os.Stderr, "data bytes: %d\n", st.DataBytes)
	p.Fprintf(os.Stderr, "PNG files:  %d\n", files)
}
