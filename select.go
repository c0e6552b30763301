// File: select.go
package main

import (
	"fmt"
	"strconv"
	"strings"
)

var proteinResidues = map[string]bool{
	"ALA": true, "ARG": true, "ASN": true, "ASP": true, "CYS": true,
	"GLN": true, "GLU": true, "GLY": true, "HIS": true, "ILE": true,
	"LEU": true, "LYS": true, "MET": true, "PHE": true, "PRO": true,
	"SER": true, "THR": true, "TRP": true, "TYR": true, "VAL": true,
	// protonation states and force-field variants
	"ASH": true, "ASX": true, "CYM": true, "CYX": true, "GLH": true,
	"GLX": true, "HID": true, "HIE": true, "HIP": true, "HSD": true,
	"HSE": true, "HSP": true, "LYN": true, "MSE": true, "SEC": true,
	"PYL": true,
	// caps
	"ACE": true, "NME": true, "NMA": true, "NH2": true,
}

var waterResidues = map[string]bool{
	"HOH": true, "WAT": true, "SOL": true, "TIP": true, "TIP3": true,
	"TIP4": true, "TIP5": true, "T3P": true, "T4P": true, "SPC": true,
}

var backboneNames = map[string]bool{"N": true, "CA": true, "C": true, "O": true}

// Predicate decides whether an atom belongs to a selection.
type Predicate func(a *Atom) bool

// Select returns the sorted indices of atoms matching expr, e.g.
// "resname UNK", "protein", "protein and not name H*".
// An expression matching nothing yields an empty slice.
func Select(top *Topology, expr string) ([]int, error) {
	pred, err := ParseSelection(expr)
	if err != nil {
		return nil, err
	}
	idx := []int{}
	for i := range top.Atoms {
		if pred(&top.Atoms[i]) {
			idx = append(idx, i)
		}
	}
	return idx, nil
}

// ParseSelection compiles a selection expression into a Predicate.
func ParseSelection(expr string) (Predicate, error) {
	p := &selParser{toks: tokenizeSelection(expr)}
	if len(p.toks) == 0 {
		return nil, fmt.Errorf("empty expression: %w", ErrBadSelection)
	}
	pred, err := p.or()
	if err != nil {
		return nil, fmt.Errorf("%q: %w", expr, err)
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("%q: unexpected %q: %w", expr, p.toks[p.pos], ErrBadSelection)
	}
	return pred, nil
}

func tokenizeSelection(expr string) []string {
	expr = strings.ReplaceAll(expr, "(", " ( ")
	expr = strings.ReplaceAll(expr, ")", " ) ")
	return strings.Fields(expr)
}

type selParser struct {
	toks []string
	pos  int
}

func (p *selParser) peek() string {
	if p.pos < len(p.toks) {
		return strings.ToLower(p.toks[p.pos])
	}
	return ""
}

func (p *selParser) or() (Predicate, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.peek() == "or" {
		p.pos++
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(a *Atom) bool { return l(a) || right(a) }
	}
	return left, nil
}

func (p *selParser) and() (Predicate, error) {
	left, err := p.not()
	if err != nil {
		return nil, err
	}
	for p.peek() == "and" {
		p.pos++
		right, err := p.not()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(a *Atom) bool { return l(a) && right(a) }
	}
	return left, nil
}

func (p *selParser) not() (Predicate, error) {
	if p.peek() == "not" {
		p.pos++
		inner, err := p.not()
		if err != nil {
			return nil, err
		}
		return func(a *Atom) bool { return !inner(a) }, nil
	}
	return p.primary()
}

func (p *selParser) primary() (Predicate, error) {
	tok := p.peek()
	if tok == "" {
		return nil, fmt.Errorf("unexpected end: %w", ErrBadSelection)
	}
	p.pos++
	switch tok {
	case "(":
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, fmt.Errorf("missing ')': %w", ErrBadSelection)
		}
		p.pos++
		return inner, nil
	case "all", "everything":
		return func(*Atom) bool { return true }, nil
	case "none", "nothing":
		return func(*Atom) bool { return false }, nil
	case "protein", "is_protein":
		return func(a *Atom) bool { return proteinResidues[a.Residue.Name] }, nil
	case "water", "is_water":
		return func(a *Atom) bool { return waterResidues[a.Residue.Name] }, nil
	case "backbone":
		return func(a *Atom) bool { return proteinResidues[a.Residue.Name] && backboneNames[a.Name] }, nil
	case "resname":
		return p.stringArgs(tok,
			func(a *Atom) string { return a.Residue.Name },
			func(a *Atom) string { return a.Residue.PDBName })
	case "name":
		return p.stringArgs(tok, func(a *Atom) string { return a.Name })
	case "element", "symbol":
		return p.stringArgs(tok, func(a *Atom) string { return a.Element })
	case "chainid":
		return p.intArgs(tok, func(a *Atom) int { return a.Residue.Chain.Index })
	case "resid":
		return p.intArgs(tok, func(a *Atom) int { return a.Residue.Index })
	case "resseq":
		return p.intArgs(tok, func(a *Atom) int { return a.Residue.SeqNum })
	case "index":
		return p.intArgs(tok, func(a *Atom) int { return a.Index })
	}
	return nil, fmt.Errorf("unknown keyword %q: %w", tok, ErrBadSelection)
}

// args consumes value tokens up to the next operator or parenthesis.
func (p *selParser) args() []string {
	var vals []string
	for p.pos < len(p.toks) {
		switch p.peek() {
		case "and", "or", "not", "(", ")":
			return vals
		}
		vals = append(vals, p.toks[p.pos])
		p.pos++
	}
	return vals
}

// stringArgs matches any of the values against any of the fields; a trailing
// '*' is a prefix wildcard.
func (p *selParser) stringArgs(kw string, fields ...func(*Atom) string) (Predicate, error) {
	vals := p.args()
	if len(vals) == 0 {
		return nil, fmt.Errorf("%s needs a value: %w", kw, ErrBadSelection)
	}
	exact := make(map[string]bool, len(vals))
	var prefixes []string
	for _, v := range vals {
		if strings.HasSuffix(v, "*") {
			prefixes = append(prefixes, strings.TrimSuffix(v, "*"))
		} else {
			exact[v] = true
		}
	}
	return func(a *Atom) bool {
		for _, field := range fields {
			s := field(a)
			if s == "" {
				continue
			}
			if exact[s] {
				return true
			}
			for _, pre := range prefixes {
				if strings.HasPrefix(s, pre) {
					return true
				}
			}
		}
		return false
	}, nil
}

// intArgs matches any of the values; "lo to hi" is an inclusive range.
func (p *selParser) intArgs(kw string, field func(*Atom) int) (Predicate, error) {
	vals := p.args()
	if len(vals) == 0 {
		return nil, fmt.Errorf("%s needs a value: %w", kw, ErrBadSelection)
	}
	type span struct{ lo, hi int }
	var spans []span
	for i := 0; i < len(vals); i++ {
		lo, err := strconv.Atoi(vals[i])
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", kw, vals[i], ErrBadSelection)
		}
		hi := lo
		if i+2 < len(vals) && strings.EqualFold(vals[i+1], "to") {
			hi, err = strconv.Atoi(vals[i+2])
			if err != nil {
				return nil, fmt.Errorf("%s %q: %w", kw, vals[i+2], ErrBadSelection)
			}
			i += 2
		}
		spans = append(spans, span{lo, hi})
	}
	return func(a *Atom) bool {
		v := field(a)
		for _, s := range spans {
			if v >= s.lo && v <= s.hi {
				return true
			}
		}
		return false
	}, nil
}
