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

// Package buildinfo reports the version of the command line tools.
package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// Version returns the main module path and its version.  For development
// builds the version is the abbreviated VCS revision, with "+dirty" appended
// for modified trees.  If no version is known, version is empty.
func Version() (path, version string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	path = info.Main.Path
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return path, v
	}

	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			version = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(version) > 8 {
		version = version[:8]
	}
	if version != "" && dirty {
		version += "+dirty"
	}
	return path, version
}

// Short returns a short version string for a CLI tool, e.g.
// "pxl2png (seehuhn.de/go/pclxl v0.1.0)".
func Short(toolName string) string {
	path, version := Version()
	if version == "" {
		return toolName
	}
	return toolName + " (" + path + " " + version + ")"
}

// Long returns Short followed by the Go version used for the build.
func Long(toolName string) string {
	return Short(toolName) + ", " + runtime.Version()
}
