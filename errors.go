// File: errors.go
package main

import "errors"

// Sentinel errors. Callers match them with errors.Is; readers wrap them with
// the offending path or frame number.
var (
	// ErrNoAtoms is returned when a topology file holds no ATOM/HETATM records.
	ErrNoAtoms = errors.New("residence: no atoms in topology")

	// ErrAtomCountMismatch is returned when trajectory frames and topology disagree.
	ErrAtomCountMismatch = errors.New("residence: atom count mismatch between topology and trajectory")

	// ErrUnsupportedFormat is returned for a trajectory extension we cannot read.
	ErrUnsupportedFormat = errors.New("residence: unsupported trajectory format")

	// ErrBadMagic marks a binary trajectory whose header is not recognised.
	ErrBadMagic = errors.New("residence: bad trajectory magic")

	// ErrTruncated marks a frame cut short by end of file.
	ErrTruncated = errors.New("residence: truncated trajectory frame")

	// ErrBadSelection is returned by Select for an expression it cannot parse.
	ErrBadSelection = errors.New("residence: bad selection expression")
)
