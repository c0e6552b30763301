// File: dcd.go
package main

import (
	"fmt"

	chem "github.com/rmera/gochem"
	"github.com/rmera/gochem/traj/dcd"
	v3 "github.com/rmera/gochem/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadDCD reads every frame of a CHARMM/NAMD DCD file, converting Å to nm.
// The frames carry no box; LoadTrajectory falls back to the topology's CRYST1.
func ReadDCD(path string) ([]Frame, error) {
	traj, err := dcd.New(path)
	if err != nil {
		return nil, fmt.Errorf("open dcd %s: %w", path, err)
	}
	defer traj.Close()

	natoms := traj.Len()
	if natoms <= 0 {
		return nil, fmt.Errorf("dcd %s: %w", path, ErrNoAtoms)
	}

	var frames []Frame
	for {
		coords := v3.Zeros(natoms)
		if err := traj.Next(coords); err != nil {
			if _, ok := err.(chem.LastFrameError); ok {
				break
			}
			return nil, fmt.Errorf("dcd %s frame %d: %w", path, len(frames), err)
		}
		frames = append(frames, Frame{Step: len(frames), Coords: dcdCoords(coords, natoms)})
	}
	return frames, nil
}

// dcdCoords copies an n×3 gochem matrix (Å) into nm vectors.
func dcdCoords(m *v3.Matrix, n int) []r3.Vec {
	out := make([]r3.Vec, n)
	for i := range out {
		out[i] = r3.Vec{
			X: m.At(i, 0) * angstromToNm,
			Y: m.At(i, 1) * angstromToNm,
			Z: m.At(i, 2) * angstromToNm,
		}
	}
	return out
}
