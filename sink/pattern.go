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

package sink

import (
	"fmt"
	"slices"

	"golang.org/x/exp/maps"

	"seehuhn.de/go/pclxl"
	"seehuhn.de/go/pclxl/pximage"
)

// Pattern is a decoded raster pattern.
type Pattern struct {
	ID          int
	Persistence pclxl.PatternPersistence
	*Image
}

// PatternStore holds the raster patterns defined in a session.
// Defining a pattern with an ID which is already in use replaces the
// previous pattern.
type PatternStore struct {
	patterns map[int]*Pattern
}

// NewSink returns a sink for the raster pattern described by p.  The
// pattern is added to the store when the sink is closed.
func (s *PatternStore) NewSink(p *pximage.Params) (pximage.Sink, error) {
	if p.Kind != pximage.RasterPattern {
		return nil, fmt.Errorf("%s is not a raster pattern", p.Kind)
	}
	img, err := NewImage(p)
	if err != nil {
		return nil, err
	}
	return &patternSink{store: s, Image: img}, nil
}

type patternSink struct {
	store *PatternStore
	*Image
}

func (ps *patternSink) Close() error {
	if err := ps.Image.Close(); err != nil {
		return err
	}
	p := ps.Image.Params()
	ps.store.add(&Pattern{ID: p.PatternID, Persistence: p.Persistence, Image: ps.Image})
	return nil
}

func (s *PatternStore) add(p *Pattern) {
	if s.patterns == nil {
		s.patterns = make(map[int]*Pattern)
	}
	s.patterns[p.ID] = p
}

// Get returns the pattern with the given ID.
func (s *PatternStore) Get(id int) (*Pattern, bool) {
	p, ok := s.patterns[id]
	return p, ok
}

// IDs returns the IDs of all stored patterns, in increasing order.
func (s *PatternStore) IDs() []int {
	ids := maps.Keys(s.patterns)
	slices.Sort(ids)
	return ids
}

// Len returns the number of stored patterns.
func (s *PatternStore) Len() int {
	return len(s.patterns)
}

// EndPage removes the temporary and page patterns.
func (s *PatternStore) EndPage() {
	for id, p := range s.patterns {
		if p.Persistence != pclxl.SessionPattern {
			delete(s.patterns, id)
		}
	}
}

// EndSession removes all patterns.
func (s *PatternStore) EndSession() {
	clear(s.patterns)
}
