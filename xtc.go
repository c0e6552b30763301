// File: xtc.go
package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	xtcMagic    = 1995
	xtcFirstIdx = 9
)

// xtcMagicInts[i]^3 fits in i bits; the compressor picks the run width from it.
var xtcMagicInts = [...]int{
	0, 0, 0, 0, 0, 0, 0, 0, 0,
	8, 10, 12, 16, 20, 25, 32, 40, 50, 64,
	80, 101, 128, 161, 203, 256, 322, 406, 512, 645,
	812, 1024, 1290, 1625, 2048, 2580, 3250, 4096, 5060, 6501,
	8192, 10321, 13003, 16384, 20642, 26007, 32768, 41285, 52015, 65536,
	82570, 104031, 131072, 165140, 208063, 262144, 330280, 416127, 524287, 660561,
	832255, 1048576, 1321122, 1664510, 2097152, 2642245, 3329021, 4194304, 5284491, 6658042,
	8388607, 10568983, 13316085, 16777216,
}

// ReadXTC reads every frame of a GROMACS XTC file.
func ReadXTC(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	xr := &xtcReader{r: bufio.NewReader(f)}
	var frames []Frame
	for {
		fr, err := xr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read xtc %s frame %d: %w", path, len(frames), err)
		}
		frames = append(frames, fr)
	}
	return frames, nil
}

// xtcReader decodes consecutive XDR frames from r.
type xtcReader struct {
	r io.Reader
}

func (x *xtcReader) int32() (int32, error) {
	var v int32
	err := binary.Read(x.r, binary.BigEndian, &v)
	return v, err
}

// next returns io.EOF only on a clean frame boundary.
func (x *xtcReader) next() (Frame, error) {
	magic, err := x.int32()
	if err != nil {
		if err == io.EOF {
			return Frame{}, io.EOF
		}
		return Frame{}, truncated(err)
	}
	if magic != xtcMagic {
		return Frame{}, fmt.Errorf("magic %d: %w", magic, ErrBadMagic)
	}

	var hdr struct {
		NAtoms int32
		Step   int32
		Time   float32
		Box    [9]float32
		LSize  int32
	}
	if err := binary.Read(x.r, binary.BigEndian, &hdr); err != nil {
		return Frame{}, truncated(err)
	}
	if hdr.NAtoms < 0 || hdr.LSize != hdr.NAtoms {
		return Frame{}, fmt.Errorf("atom count %d vs coordinate count %d: %w", hdr.NAtoms, hdr.LSize, ErrAtomCountMismatch)
	}

	fr := Frame{Step: int(hdr.Step), Time: float64(hdr.Time)}
	b := hdr.Box
	if b != [9]float32{} {
		fr.Box = &Box{
			{X: float64(b[0]), Y: float64(b[1]), Z: float64(b[2])},
			{X: float64(b[3]), Y: float64(b[4]), Z: float64(b[5])},
			{X: float64(b[6]), Y: float64(b[7]), Z: float64(b[8])},
		}
	}

	n := int(hdr.NAtoms)
	if n <= 9 {
		raw := make([]float32, 3*n)
		if err := binary.Read(x.r, binary.BigEndian, raw); err != nil {
			return Frame{}, truncated(err)
		}
		fr.Coords = make([]r3.Vec, n)
		for i := range fr.Coords {
			fr.Coords[i] = r3.Vec{X: float64(raw[3*i]), Y: float64(raw[3*i+1]), Z: float64(raw[3*i+2])}
		}
		return fr, nil
	}

	coords, err := x.compressed(n)
	if err != nil {
		return Frame{}, err
	}
	fr.Coords = coords
	return fr, nil
}

// compressed decodes the xdr3dfcoord block of n atoms.
func (x *xtcReader) compressed(n int) ([]r3.Vec, error) {
	var hdr struct {
		Precision float32
		MinInt    [3]int32
		MaxInt    [3]int32
		SmallIdx  int32
		ByteCount int32
	}
	if err := binary.Read(x.r, binary.BigEndian, &hdr); err != nil {
		return nil, truncated(err)
	}
	if hdr.Precision <= 0 {
		return nil, fmt.Errorf("precision %g: %w", hdr.Precision, ErrBadMagic)
	}
	if hdr.SmallIdx < xtcFirstIdx || int(hdr.SmallIdx) >= len(xtcMagicInts) || hdr.ByteCount < 0 {
		return nil, fmt.Errorf("small index %d, %d bytes: %w", hdr.SmallIdx, hdr.ByteCount, ErrBadMagic)
	}

	// XDR opaque data is padded to a multiple of 4.
	padded := (int(hdr.ByteCount) + 3) &^ 3
	data := make([]byte, padded)
	if _, err := io.ReadFull(x.r, data); err != nil {
		return nil, truncated(err)
	}
	return decodeXTCCoords(data[:hdr.ByteCount], n, hdr.Precision, hdr.MinInt, hdr.MaxInt, int(hdr.SmallIdx))
}

func decodeXTCCoords(data []byte, n int, precision float32, minInt, maxInt [3]int32, smallIdx int) ([]r3.Vec, error) {
	var sizeInt [3]uint32
	var bitSizeInt [3]int
	bitSize := 0
	for i := 0; i < 3; i++ {
		sizeInt[i] = uint32(maxInt[i] - minInt[i] + 1)
	}
	if (sizeInt[0] | sizeInt[1] | sizeInt[2]) > 0xffffff {
		for i := 0; i < 3; i++ {
			bitSizeInt[i] = sizeOfInt(sizeInt[i])
		}
	} else {
		bitSize = sizeOfInts(sizeInt[:])
	}

	smaller := xtcMagicInts[max(xtcFirstIdx, smallIdx-1)] / 2
	smallNum := xtcMagicInts[smallIdx] / 2
	sizeSmall := [3]uint32{uint32(xtcMagicInts[smallIdx]), uint32(xtcMagicInts[smallIdx]), uint32(xtcMagicInts[smallIdx])}

	inv := 1 / float64(precision)
	out := make([]r3.Vec, 0, n)
	emit := func(c [3]int) {
		out = append(out, r3.Vec{X: float64(c[0]) * inv, Y: float64(c[1]) * inv, Z: float64(c[2]) * inv})
	}

	br := &bitReader{buf: data}
	run := 0
	for i := 0; i < n; {
		var this [3]int
		if bitSize == 0 {
			for k := 0; k < 3; k++ {
				this[k] = br.bits(bitSizeInt[k])
			}
		} else {
			br.ints(bitSize, sizeInt, &this)
		}
		i++
		for k := 0; k < 3; k++ {
			this[k] += int(minInt[k])
		}
		prev := this

		isSmaller := 0
		if br.bits(1) == 1 {
			run = br.bits(5)
			isSmaller = run % 3
			run -= isSmaller
			isSmaller--
		}
		if run > 0 {
			for k := 0; k < run; k += 3 {
				br.ints(smallIdx, sizeSmall, &this)
				i++
				for d := 0; d < 3; d++ {
					this[d] += prev[d] - smallNum
				}
				if k == 0 {
					// 水分子：第一个和第二个原子对调
					this, prev = prev, this
					emit(prev)
				} else {
					prev = this
				}
				emit(this)
			}
		} else {
			emit(this)
		}
		if br.err != nil {
			return nil, br.err
		}

		smallIdx += isSmaller
		if smallIdx < xtcFirstIdx || smallIdx >= len(xtcMagicInts) {
			return nil, fmt.Errorf("small index %d out of range: %w", smallIdx, ErrBadMagic)
		}
		if isSmaller < 0 {
			smallNum = smaller
			if smallIdx > xtcFirstIdx {
				smaller = xtcMagicInts[smallIdx-1] / 2
			} else {
				smaller = 0
			}
		} else if isSmaller > 0 {
			smaller = smallNum
			smallNum = xtcMagicInts[smallIdx] / 2
		}
		m := uint32(xtcMagicInts[smallIdx])
		sizeSmall = [3]uint32{m, m, m}
	}
	if len(out) != n {
		return nil, fmt.Errorf("decoded %d coordinates, want %d: %w", len(out), n, ErrAtomCountMismatch)
	}
	return out, nil
}

// bitReader reads big-endian bit fields the way xdrfile packs them.
type bitReader struct {
	buf      []byte
	cnt      int
	lastBits uint
	lastByte uint32
	err      error
}

func (b *bitReader) nextByte() uint32 {
	if b.cnt >= len(b.buf) {
		if b.err == nil {
			b.err = ErrTruncated
		}
		return 0
	}
	v := b.buf[b.cnt]
	b.cnt++
	return uint32(v)
}

// bits returns the next n (≤ 32) bits.
func (b *bitReader) bits(n int) int {
	mask := uint32(1)<<uint(n) - 1
	if n >= 32 {
		mask = math.MaxUint32
	}
	var num uint32
	for n >= 8 {
		b.lastByte = b.lastByte<<8 | b.nextByte()
		num |= (b.lastByte >> b.lastBits) << uint(n-8)
		n -= 8
	}
	if n > 0 {
		if b.lastBits < uint(n) {
			b.lastBits += 8
			b.lastByte = b.lastByte<<8 | b.nextByte()
		}
		b.lastBits -= uint(n)
		num |= (b.lastByte >> b.lastBits) & (uint32(1)<<uint(n) - 1)
	}
	return int(num & mask)
}

// ints unpacks three integers that were multiplied together into nbits bits.
func (b *bitReader) ints(nbits int, sizes [3]uint32, nums *[3]int) {
	var bytes [32]uint32
	nbytes := 0
	for nbits > 8 {
		bytes[nbytes] = uint32(b.bits(8))
		nbytes++
		nbits -= 8
	}
	if nbits > 0 {
		bytes[nbytes] = uint32(b.bits(nbits))
		nbytes++
	}
	for i := 2; i > 0; i-- {
		var num uint32
		for j := nbytes - 1; j >= 0; j-- {
			num = num<<8 | bytes[j]
			p := num / sizes[i]
			bytes[j] = p
			num -= p * sizes[i]
		}
		nums[i] = int(num)
	}
	nums[0] = int(int32(bytes[0] | bytes[1]<<8 | bytes[2]<<16 | bytes[3]<<24))
}

// sizeOfInt is the number of bits needed to store values below size.
func sizeOfInt(size uint32) int {
	n := 0
	for num := uint64(1); uint64(size) >= num && n < 32; num <<= 1 {
		n++
	}
	return n
}

// sizeOfInts is the number of bits needed to store the product of sizes.
func sizeOfInts(sizes []uint32) int {
	var bytes [32]uint32
	bytes[0] = 1
	nbytes := 1
	for _, s := range sizes {
		var tmp uint32
		cnt := 0
		for ; cnt < nbytes; cnt++ {
			tmp = bytes[cnt]*s + tmp
			bytes[cnt] = tmp & 0xff
			tmp >>= 8
		}
		for tmp != 0 {
			bytes[cnt] = tmp & 0xff
			cnt++
			tmp >>= 8
		}
		nbytes = cnt
	}
	nbits := 0
	nbytes--
	for num := uint32(1); bytes[nbytes] >= num; num *= 2 {
		nbits++
	}
	return nbits + nbytes*8
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
