package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// pdbAtom is one row handed to pdbLines.
type pdbAtom struct {
	rec     string
	name    string
	resName string
	chain   string
	seq     int
	x, y, z float64 // Å
	elem    string
}

func pdbLine(serial int, a pdbAtom) string {
	rec := a.rec
	if rec == "" {
		rec = "ATOM"
	}
	return fmt.Sprintf("%-6s%5d %-4s %-4s%1s%4d%1s   %8.3f%8.3f%8.3f%6.2f%6.2f          %2s",
		rec, serial, a.name, a.resName, a.chain, a.seq, "", a.x, a.y, a.z, 1.0, 0.0, a.elem)
}

func pdbText(atoms []pdbAtom) string {
	var sb strings.Builder
	for i, a := range atoms {
		sb.WriteString(pdbLine(i+1, a))
		sb.WriteByte('\n')
	}
	sb.WriteString("END\n")
	return sb.String()
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// xtcSmallFrame encodes an uncompressed (≤ 9 atom) XTC frame.
func xtcSmallFrame(t *testing.T, step int32, time float32, box [9]float32, coords []r3.Vec) []byte {
	t.Helper()
	require.LessOrEqual(t, len(coords), 9)
	var buf bytes.Buffer
	w := func(v any) { require.NoError(t, binary.Write(&buf, binary.BigEndian, v)) }
	w(int32(xtcMagic))
	w(int32(len(coords)))
	w(step)
	w(time)
	w(box)
	w(int32(len(coords)))
	for _, c := range coords {
		w([3]float32{float32(c.X), float32(c.Y), float32(c.Z)})
	}
	return buf.Bytes()
}

// bitWriter packs bits MSB-first, the order bitReader consumes them.
type bitWriter struct {
	bits []byte // one entry per bit
}

func (w *bitWriter) put(n int, v uint32) {
	for i := n - 1; i >= 0; i-- {
		w.bits = append(w.bits, byte(v>>uint(i)&1))
	}
}

// putInts writes a value the way bitReader.ints reads nbits of it back.
func (w *bitWriter) putInts(nbits int, v uint32) {
	for nbits > 8 {
		w.put(8, v&0xff)
		v >>= 8
		nbits -= 8
	}
	if nbits > 0 {
		w.put(nbits, v)
	}
}

func (w *bitWriter) bytes() []byte {
	out := make([]byte, (len(w.bits)+7)/8)
	for i, b := range w.bits {
		out[i/8] |= b << uint(7-i%8)
	}
	return out
}

// dcdWriter emits Fortran unformatted records.
type dcdWriter struct {
	t     *testing.T
	order binary.ByteOrder
	buf   bytes.Buffer
}

func (d *dcdWriter) record(parts ...any) {
	var body bytes.Buffer
	for _, p := range parts {
		require.NoError(d.t, binary.Write(&body, d.order, p))
	}
	require.NoError(d.t, binary.Write(&d.buf, d.order, int32(body.Len())))
	d.buf.Write(body.Bytes())
	require.NoError(d.t, binary.Write(&d.buf, d.order, int32(body.Len())))
}

// dcdFile builds a CHARMM-style DCD holding frames (Å) and optional cells.
func dcdFile(t *testing.T, order binary.ByteOrder, frames [][]r3.Vec, cells [][6]float64) []byte {
	t.Helper()
	d := &dcdWriter{t: t, order: order}
	var icntrl [20]int32
	icntrl[0] = int32(len(frames))
	icntrl[1] = 10 // istart
	icntrl[2] = 5  // nsavc
	icntrl[9] = int32(math.Float32bits(2.0))
	if cells != nil {
		icntrl[10] = 1
	}
	icntrl[19] = 24
	d.record([]byte("CORD"), icntrl)

	title := make([]byte, 80)
	copy(title, "REMARKS test")
	d.record(int32(1), title)

	natoms := 0
	if len(frames) > 0 {
		natoms = len(frames[0])
	}
	d.record(int32(natoms))

	for i, fr := range frames {
		if cells != nil {
			d.record(cells[i])
		}
		xs := make([]float32, len(fr))
		ys := make([]float32, len(fr))
		zs := make([]float32, len(fr))
		for k, c := range fr {
			xs[k], ys[k], zs[k] = float32(c.X), float32(c.Y), float32(c.Z)
		}
		d.record(xs)
		d.record(ys)
		d.record(zs)
	}
	return d.buf.Bytes()
}
