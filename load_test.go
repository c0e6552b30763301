package main

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// twoAtomTop is an UNK ligand atom and one ALA atom.
func twoAtomTop(t *testing.T) string {
	t.Helper()
	atoms := []pdbAtom{
		{rec: "HETATM", name: "C1", resName: "UNK", chain: "A", seq: 1, elem: "C"},
		{name: "CA", resName: "ALA", chain: "B", seq: 1, x: 3, elem: "C"},
	}
	return writeTemp(t, "top.pdb", []byte(pdbText(atoms)))
}

func TestLoadTrajectory_XTC(t *testing.T) {
	top := twoAtomTop(t)
	var raw []byte
	for i, d := range []float64{0.3, 0.6, 0.2} {
		raw = append(raw, xtcSmallFrame(t, int32(i), float32(i), [9]float32{}, []r3.Vec{{}, {X: d}})...)
	}
	traj, err := LoadTrajectory(top, writeTemp(t, "traj.xtc", raw), LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, traj.NumFrames())
	require.Equal(t, 2, traj.Topology.NumAtoms())

	traj, err = LoadTrajectory(top, writeTemp(t, "traj.xtc", raw), LoadOptions{Stride: 2})
	require.NoError(t, err)
	require.Equal(t, 2, traj.NumFrames())
	require.InDelta(t, 0.2, traj.Frames[1].Coords[1].X, 1e-6)
}

func TestLoadTrajectory_DCD(t *testing.T) {
	top := twoAtomTop(t)
	frames := [][]r3.Vec{{{}, {X: 3}}, {{}, {X: 7}}}
	path := writeTemp(t, "traj.DCD", dcdFile(t, binary.LittleEndian, frames, nil))

	traj, err := LoadTrajectory(top, path, LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, traj.NumFrames())
	require.InDelta(t, 0.7, traj.Frames[1].Coords[1].X, 1e-6)
}

func TestLoadTrajectory_DCDUsesTopologyBox(t *testing.T) {
	atoms := []pdbAtom{
		{rec: "HETATM", name: "C1", resName: "UNK", chain: "A", seq: 1, elem: "C"},
		{name: "CA", resName: "ALA", chain: "B", seq: 1, x: 3, elem: "C"},
	}
	text := "CRYST1   30.000   40.000   50.000  90.00  90.00  90.00 P 1           1\n" + pdbText(atoms)
	top := writeTemp(t, "top.pdb", []byte(text))
	path := writeTemp(t, "traj.dcd", dcdFile(t, binary.LittleEndian, [][]r3.Vec{{{}, {X: 29}}}, nil))

	traj, err := LoadTrajectory(top, path, LoadOptions{})
	require.NoError(t, err)
	require.NotNil(t, traj.Frames[0].Box)
	require.InDelta(t, 3.0, traj.Frames[0].Box[0].X, 1e-9)

	dm, err := ComputeDistances(traj, []AtomPair{{0, 1}}, DistanceOptions{Periodic: true})
	require.NoError(t, err)
	require.InDelta(t, 0.1, dm.At(0, 0), 1e-6, "minimum image across the CRYST1 box")
}

func TestLoadTrajectory_PDBAsTrajectory(t *testing.T) {
	top := twoAtomTop(t)
	traj, err := LoadTrajectory(top, top, LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, traj.NumFrames())
	require.InDelta(t, 0.3, traj.Frames[0].Coords[1].X, 1e-9)
}

func TestLoadTrajectory_Errors(t *testing.T) {
	top := twoAtomTop(t)

	three := xtcSmallFrame(t, 0, 0, [9]float32{}, []r3.Vec{{}, {}, {}})
	_, err := LoadTrajectory(top, writeTemp(t, "big.xtc", three), LoadOptions{})
	require.ErrorIs(t, err, ErrAtomCountMismatch)

	_, err = LoadTrajectory(top, writeTemp(t, "traj.trr", []byte{0}), LoadOptions{})
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadTrajectory("/nonexistent/top.pdb", top, LoadOptions{})
	require.Error(t, err)

	_, err = LoadTrajectory(top, "/nonexistent/traj.xtc", LoadOptions{})
	require.Error(t, err)
}
