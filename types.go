// File: types.go
package main

import "gonum.org/v1/gonum/spatial/r3"

// Atom is one ATOM/HETATM record of the topology.
type Atom struct {
	Index   int    // 0-based position in the topology
	Serial  int    // serial number as written in the file
	Name    string // atom name, e.g. "CA"
	Element string
	Residue *Residue
}

// Residue groups consecutive atoms sharing chain, name and sequence number.
type Residue struct {
	Index   int    // 0-based, unique across the topology
	Name    string // standardized name, e.g. "HIS" for CHARMM "HSD"
	PDBName string // name as written in the file
	SeqNum  int    // resSeq column of the PDB file
	InsCode byte
	Chain   *Chain
	Atoms   []int // atom indices
}

// Chain is a run of residues ended by TER or a change of chain identifier.
type Chain struct {
	Index    int
	ID       string
	Residues []*Residue
}

// Topology is the static atom/residue/chain description of the system.
type Topology struct {
	Atoms    []Atom
	Residues []*Residue
	Chains   []*Chain
}

// Atom returns the atom at the given 0-based index.
func (t *Topology) Atom(idx int) *Atom {
	return &t.Atoms[idx]
}

func (t *Topology) NumAtoms() int { return len(t.Atoms) }

// Frame is one time-sampled snapshot of every atom position (nm).
type Frame struct {
	Step   int
	Time   float64 // ps
	Box    *Box    // nil when the file carries no unit cell
	Coords []r3.Vec
}

// Box holds the three periodic cell vectors, one per row (nm).
type Box [3]r3.Vec

// Trajectory is the ordered frame sequence bound to a fixed topology.
type Trajectory struct {
	Topology *Topology
	Frames   []Frame
}

func (t *Trajectory) NumFrames() int { return len(t.Frames) }

// AtomPair is one (ligand atom, protein atom) index pair.
type AtomPair [2]int

// ResiduePair keys the interaction counter by residue index.
type ResiduePair struct {
	A, B int
}

// ReportEntry is one bar of the final chart.
type ReportEntry struct {
	Label    string  `json:"label"`
	ResidueA string  `json:"residue_a"`
	IndexA   int     `json:"index_a"`
	ResidueB string  `json:"residue_b"`
	IndexB   int     `json:"index_b"`
	Count    int     `json:"count"`
	TimeNs   float64 `json:"time_ns"`
}

// Report is written as JSON next to the chart when -json is given.
type Report struct {
	RunID       string        `json:"run_id"`
	Topology    string        `json:"topology"`
	Trajectory  string        `json:"trajectory"`
	Frames      int           `json:"frames"`
	Pairs       int           `json:"pairs"`
	Threshold   float64       `json:"threshold_nm"`
	FramesPerNs float64       `json:"frames_per_ns"`
	Entries     []ReportEntry `json:"entries"`
}
