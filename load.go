// File: load.go
package main

import (
	"fmt"
	"path/filepath"
	"strings"
)

// LoadOptions tunes LoadTrajectory.
type LoadOptions struct {
	Stride int // keep every Stride-th frame; <= 1 keeps all
}

// LoadTrajectory reads the topology from topPath and the frames from trajPath.
// The trajectory format is picked from the file extension.
func LoadTrajectory(topPath, trajPath string, opts LoadOptions) (*Trajectory, error) {
	top, topFrames, err := ReadPDB(topPath)
	if err != nil {
		return nil, err
	}

	var frames []Frame
	switch ext := strings.ToLower(filepath.Ext(trajPath)); ext {
	case ".xtc":
		frames, err = ReadXTC(trajPath)
	case ".dcd":
		frames, err = ReadDCD(trajPath)
		if err == nil && len(topFrames) > 0 && topFrames[0].Box != nil {
			// DCD 不带盒子时用拓扑的 CRYST1
			for i := range frames {
				frames[i].Box = topFrames[0].Box
			}
		}
	case ".pdb", ".ent":
		if trajPath == topPath {
			frames = topFrames
		} else {
			_, frames, err = ReadPDB(trajPath)
		}
	default:
		return nil, fmt.Errorf("%s: %w", trajPath, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}

	for i := range frames {
		if n := len(frames[i].Coords); n != top.NumAtoms() {
			return nil, fmt.Errorf("%s frame %d has %d atoms, %s has %d: %w",
				trajPath, i, n, topPath, top.NumAtoms(), ErrAtomCountMismatch)
		}
	}

	if opts.Stride > 1 {
		kept := make([]Frame, 0, (len(frames)+opts.Stride-1)/opts.Stride)
		for i := 0; i < len(frames); i += opts.Stride {
			kept = append(kept, frames[i])
		}
		frames = kept
	}
	return &Trajectory{Topology: top, Frames: frames}, nil
}
