package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleAtoms() []pdbAtom {
	return []pdbAtom{
		{name: "N", resName: "ALA", chain: "A", seq: 1, x: 0, y: 0, z: 0, elem: "N"},
		{name: "CA", resName: "ALA", chain: "A", seq: 1, x: 1.5, y: 0, z: 0, elem: "C"},
		{name: "N", resName: "GLY", chain: "A", seq: 2, x: 3, y: 0, z: 0, elem: "N"},
		{name: "CA", resName: "GLY", chain: "A", seq: 2, x: 4.5, y: 0, z: 0},
		{rec: "HETATM", name: "C1", resName: "UNK", chain: "B", seq: 1, x: 10, y: 10, z: 10, elem: "C"},
		{rec: "HETATM", name: "O1", resName: "UNK", chain: "B", seq: 1, x: 11, y: 10, z: 10, elem: "O"},
	}
}

func TestParsePDB_Topology(t *testing.T) {
	top, frames, err := parsePDB(strings.NewReader(pdbText(sampleAtoms())))
	require.NoError(t, err)

	require.Equal(t, 6, top.NumAtoms())
	require.Len(t, top.Residues, 3)
	require.Len(t, top.Chains, 2)

	require.Equal(t, "ALA", top.Residues[0].Name)
	require.Equal(t, []int{0, 1}, top.Residues[0].Atoms)
	require.Equal(t, "GLY", top.Residues[1].Name)
	require.Equal(t, 2, top.Residues[1].SeqNum)
	require.Equal(t, "UNK", top.Residues[2].Name)
	require.Equal(t, 2, top.Residues[2].Index)
	require.Equal(t, "B", top.Residues[2].Chain.ID)

	require.Equal(t, "CA", top.Atom(3).Name)
	require.Equal(t, "C", top.Atom(3).Element, "element guessed from atom name")
	require.Equal(t, 5, top.Atom(4).Serial)
	require.Same(t, top.Residues[2], top.Atom(5).Residue)

	require.Len(t, frames, 1)
	require.InDelta(t, 0.15, frames[0].Coords[1].X, 1e-9, "Å converted to nm")
	require.InDelta(t, 1.1, frames[0].Coords[5].X, 1e-9)
	require.Nil(t, frames[0].Box)
}

func TestParsePDB_TERStartsNewChain(t *testing.T) {
	atoms := sampleAtoms()[:4]
	text := pdbLine(1, atoms[0]) + "\n" + pdbLine(2, atoms[1]) + "\nTER\n" +
		pdbLine(3, atoms[2]) + "\n" + pdbLine(4, atoms[3]) + "\nEND\n"

	top, _, err := parsePDB(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, top.Chains, 2)
	require.Equal(t, 1, top.Residues[1].Chain.Index)
}

func TestParsePDB_Models(t *testing.T) {
	atoms := sampleAtoms()[:2]
	var sb strings.Builder
	sb.WriteString("CRYST1   30.000   40.000   50.000  90.00  90.00  90.00 P 1           1\n")
	for m := 0; m < 3; m++ {
		sb.WriteString("MODEL        1\n")
		for i, a := range atoms {
			a.x += float64(m)
			sb.WriteString(pdbLine(i+1, a) + "\n")
		}
		sb.WriteString("ENDMDL\n")
	}
	sb.WriteString("END\n")

	top, frames, err := parsePDB(strings.NewReader(sb.String()))
	require.NoError(t, err)
	require.Equal(t, 2, top.NumAtoms(), "topology comes from the first model only")
	require.Len(t, frames, 3)
	require.InDelta(t, 0.2, frames[2].Coords[0].X, 1e-9)
	require.Equal(t, 2, frames[2].Step)

	require.NotNil(t, frames[0].Box)
	require.True(t, frames[0].Box.Orthorhombic())
	require.InDelta(t, 3.0, frames[0].Box[0].X, 1e-9)
	require.InDelta(t, 5.0, frames[0].Box[2].Z, 1e-9)
}

func TestParsePDB_ModelAtomMismatch(t *testing.T) {
	atoms := sampleAtoms()
	text := "MODEL        1\n" + pdbLine(1, atoms[0]) + "\n" + pdbLine(2, atoms[1]) + "\nENDMDL\n" +
		"MODEL        2\n" + pdbLine(1, atoms[0]) + "\nENDMDL\n"

	_, _, err := parsePDB(strings.NewReader(text))
	require.ErrorIs(t, err, ErrAtomCountMismatch)
}

func TestParsePDB_Errors(t *testing.T) {
	_, _, err := parsePDB(strings.NewReader("REMARK nothing here\nEND\n"))
	require.ErrorIs(t, err, ErrNoAtoms)

	_, _, err = parsePDB(strings.NewReader("ATOM      1  N   ALA A   1\n"))
	require.Error(t, err)

	bad := pdbLine(1, sampleAtoms()[0])
	bad = bad[:30] + "   abc.de" + bad[39:]
	_, _, err = parsePDB(strings.NewReader(bad + "\n"))
	require.Error(t, err)

	_, _, err = ReadPDB("/nonexistent/top.pdb")
	require.Error(t, err)
}

func TestGuessElement(t *testing.T) {
	require.Equal(t, "Cl", guessElement("CL", "CL1"))
	require.Equal(t, "N", guessElement("", "N"))
	require.Equal(t, "H", guessElement("", "1HB"))
	require.Equal(t, "", guessElement("", "123"))
}

func TestParsePDB_StandardResidueNames(t *testing.T) {
	atoms := []pdbAtom{
		{name: "CA", resName: "HSD", chain: "A", seq: 1, elem: "C"},
		{name: "CA", resName: "CYX", chain: "A", seq: 2, elem: "C"},
		{name: "OH2", resName: "TIP3", chain: "W", seq: 1, elem: "O"},
		{rec: "HETATM", name: "C1", resName: "UNK", chain: "L", seq: 1, elem: "C"},
	}
	top, _, err := parsePDB(strings.NewReader(pdbText(atoms)))
	require.NoError(t, err)
	require.Len(t, top.Residues, 4)

	for i, want := range []struct{ name, raw, chain string }{
		{"HIS", "HSD", "A"},
		{"CYS", "CYX", "A"},
		{"HOH", "TIP3", "W"},
		{"UNK", "UNK", "L"},
	} {
		res := top.Residues[i]
		require.Equal(t, want.name, res.Name)
		require.Equal(t, want.raw, res.PDBName, "four-letter names are read whole")
		require.Equal(t, want.chain, res.Chain.ID)
	}

	for _, expr := range []string{"resname HSD", "resname HIS", "protein and resseq 1"} {
		idx, err := Select(top, expr)
		require.NoError(t, err)
		require.Equal(t, []int{0}, idx, expr)
	}
	idx, err := Select(top, "water")
	require.NoError(t, err)
	require.Equal(t, []int{2}, idx)
}

func TestStandardResidueName(t *testing.T) {
	for raw, want := range map[string]string{
		"HSE": "HIS", "HIP": "HIS", "CYM": "CYS", "ASH": "ASP", "GLH": "GLU",
		"LYN": "LYS", "WAT": "HOH", "SOL": "HOH", "ARG": "ARG", "UNK": "UNK",
	} {
		require.Equal(t, want, standardResidueName(raw), raw)
	}
}
