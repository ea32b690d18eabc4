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

// Package profile enables CPU and memory profiling for the command line tools.
package profile

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// Profiler collects the profiles requested on the command line.
type Profiler struct {
	cpu        *os.File
	memprofile string
}

// Start begins CPU profiling if cpuprofile is non-empty.  If memprofile is
// non-empty, a memory profile is written there when Stop is called.
func Start(cpuprofile, memprofile string) (*Profiler, error) {
	p := &Profiler{memprofile: memprofile}
	if cpuprofile == "" {
		return p, nil
	}

	f, err := os.Create(cpuprofile)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("could not start CPU profile: %w", err)
	}
	p.cpu = f
	return p, nil
}

// Stop ends CPU profiling and writes the memory profile.
func (p *Profiler) Stop() error {
	var errs []error
	if p.cpu != nil {
		pprof.StopCPUProfile()
		errs = append(errs, p.cpu.Close())
		p.cpu = nil
	}
	if p.memprofile != "" {
		errs = append(errs, writeHeap(p.memprofile))
		p.memprofile = ""
	}
	return errors.Join(errs...)
}

func writeHeap(name string) error {
	allocs := pprof.Lookup("allocs")
	if allocs == nil {
		return errors.New("could not lookup memory profile")
	}
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	runtime.GC()
	err = allocs.WriteTo(f, 0)
	if err2 := f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	return nil
}
