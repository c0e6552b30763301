// File: pdb.go
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/spatial/r3"
)

// angstrom → nm
const angstromToNm = 0.1

// ReadPDB parses a PDB file into a topology (first MODEL) and one frame per
// MODEL. A file without MODEL records yields a single frame.
func ReadPDB(path string) (*Topology, []Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	top, frames, err := parsePDB(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read pdb %s: %w", path, err)
	}
	return top, frames, nil
}

// parsePDB is the reader behind ReadPDB.
func parsePDB(r io.Reader) (*Topology, []Frame, error) {
	sc := bufio.NewScanner(r)
	top := &Topology{}

	var (
		frames   []Frame
		coords   []r3.Vec
		box      *Box
		inModel  bool
		building = true // 只有第一个 MODEL 用来建拓扑
		chain    *Chain
		res      *Residue
		lineNo   int
	)

	flush := func() error {
		if len(coords) == 0 {
			return nil
		}
		if len(frames) > 0 && len(coords) != len(top.Atoms) {
			return fmt.Errorf("model %d has %d atoms, want %d: %w",
				len(frames)+1, len(coords), len(top.Atoms), ErrAtomCountMismatch)
		}
		frames = append(frames, Frame{Step: len(frames), Box: box, Coords: coords})
		coords = nil
		building = false
		chain, res = nil, nil
		return nil
	}

	for sc.Scan() {
		lineNo++
		line := sc.Text()
		rec := strings.TrimSpace(pdbCol(line, 0, 6))
		switch rec {
		case "CRYST1":
			box = parseCryst1(line)
		case "MODEL":
			if inModel {
				if err := flush(); err != nil {
					return nil, nil, err
				}
			}
			inModel = true
		case "ENDMDL":
			if err := flush(); err != nil {
				return nil, nil, err
			}
			inModel = false
		case "TER":
			if building {
				chain, res = nil, nil
			}
		case "ATOM", "HETATM":
			if len(line) < 54 {
				return nil, nil, fmt.Errorf("line %d: short %s record", lineNo, rec)
			}
			x, errX := strconv.ParseFloat(strings.TrimSpace(line[30:38]), 64)
			y, errY := strconv.ParseFloat(strings.TrimSpace(line[38:46]), 64)
			z, errZ := strconv.ParseFloat(strings.TrimSpace(line[46:54]), 64)
			if errX != nil || errY != nil || errZ != nil {
				return nil, nil, fmt.Errorf("line %d: bad coordinates %q", lineNo, line[30:54])
			}
			coords = append(coords, r3.Vec{X: x * angstromToNm, Y: y * angstromToNm, Z: z * angstromToNm})
			if !building {
				continue
			}

			chainID := pdbCol(line, 21, 22)
			resName := strings.TrimSpace(pdbCol(line, 17, 21))
			seq := parseIntSafe(pdbCol(line, 22, 26))
			ins := byte(' ')
			if len(line) > 26 {
				ins = line[26]
			}
			if chain == nil || chain.ID != chainID {
				chain = &Chain{Index: len(top.Chains), ID: chainID}
				top.Chains = append(top.Chains, chain)
				res = nil
			}
			if res == nil || res.SeqNum != seq || res.InsCode != ins || res.PDBName != resName {
				res = &Residue{
					Index:   len(top.Residues),
					Name:    standardResidueName(resName),
					PDBName: resName,
					SeqNum:  seq,
					InsCode: ins,
					Chain:   chain,
				}
				top.Residues = append(top.Residues, res)
				chain.Residues = append(chain.Residues, res)
			}
			name := strings.TrimSpace(pdbCol(line, 12, 16))
			idx := len(top.Atoms)
			top.Atoms = append(top.Atoms, Atom{
				Index:   idx,
				Serial:  parseIntSafe(pdbCol(line, 6, 11)),
				Name:    name,
				Element: guessElement(strings.TrimSpace(pdbCol(line, 76, 78)), name),
				Residue: res,
			})
			res.Atoms = append(res.Atoms, idx)
		case "END":
			if err := flush(); err != nil {
				return nil, nil, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	if err := flush(); err != nil {
		return nil, nil, err
	}
	if len(top.Atoms) == 0 {
		return nil, nil, ErrNoAtoms
	}
	return top, frames, nil
}

// pdbCol returns line[a:b] clipped to the line length.
func pdbCol(line string, a, b int) string {
	if a >= len(line) {
		return ""
	}
	if b > len(line) {
		b = len(line)
	}
	return line[a:b]
}

// parseCryst1 reads the unit cell; a 1 Å cube is the placeholder some tools
// write for "no box" and is treated as absent.
func parseCryst1(line string) *Box {
	a := parseFloatSafe(pdbCol(line, 6, 15))
	b := parseFloatSafe(pdbCol(line, 15, 24))
	c := parseFloatSafe(pdbCol(line, 24, 33))
	if a <= 1 && b <= 1 && c <= 1 {
		return nil
	}
	alpha := parseFloatSafe(pdbCol(line, 33, 40))
	beta := parseFloatSafe(pdbCol(line, 40, 47))
	gamma := parseFloatSafe(pdbCol(line, 47, 54))
	return BoxFromLengthsAngles(a*angstromToNm, b*angstromToNm, c*angstromToNm, alpha, beta, gamma)
}

// guessElement falls back to the atom name when columns 77-78 are blank.
// residueAliases maps force-field residue names to the standard PDB ones.
var residueAliases = map[string]string{
	"HSD": "HIS", "HSE": "HIS", "HSP": "HIS", "HID": "HIS", "HIE": "HIS", "HIP": "HIS", "HIN": "HIS",
	"CYX": "CYS", "CYM": "CYS",
	"ASH": "ASP",
	"GLH": "GLU",
	"LYN": "LYS",
	"WAT": "HOH", "SOL": "HOH", "H2O": "HOH", "TIP": "HOH", "TIP3": "HOH", "TIP4": "HOH",
	"TIP5": "HOH", "T3P": "HOH", "T4P": "HOH", "T5P": "HOH", "SPC": "HOH",
}

func standardResidueName(name string) string {
	if std, ok := residueAliases[name]; ok {
		return std
	}
	return name
}

func guessElement(elem, atomName string) string {
	if elem != "" {
		return strings.ToUpper(elem[:1]) + strings.ToLower(elem[1:])
	}
	for _, r := range atomName {
		if unicode.IsLetter(r) {
			return string(unicode.ToUpper(r))
		}
	}
	return ""
}

func parseIntSafe(s string) int {
	n := 0
	fmt.Sscanf(strings.TrimSpace(s), "%d", &n)
	return n
}

func parseFloatSafe(s string) float64 {
	f := 0.0
	fmt.Sscanf(strings.TrimSpace(s), "%f", &f)
	return f
}
