// File: distance.go
package main

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// DistanceOptions tunes ComputeDistances.
type DistanceOptions struct {
	Periodic bool // minimum-image distances when a frame carries a box
	Workers  int  // frames computed concurrently; <= 1 runs inline
}

// DistanceMatrix holds one row per frame and one column per atom pair (nm).
type DistanceMatrix struct {
	frames, pairs int
	m             *mat.Dense // nil when frames or pairs is zero
}

// Dims returns (frames, pairs).
func (d *DistanceMatrix) Dims() (int, int) { return d.frames, d.pairs }

func (d *DistanceMatrix) At(frame, pair int) float64 { return d.m.At(frame, pair) }

// Row returns the distances of one frame. The slice aliases the matrix.
func (d *DistanceMatrix) Row(frame int) []float64 {
	if d.m == nil {
		return nil
	}
	return d.m.RawRowView(frame)
}

// AtomPairs returns ligand × protein, ligand-major: len = |ligand|·|protein|.
func AtomPairs(ligand, protein []int) []AtomPair {
	pairs := make([]AtomPair, 0, len(ligand)*len(protein))
	for _, i := range ligand {
		for _, j := range protein {
			pairs = append(pairs, AtomPair{i, j})
		}
	}
	return pairs
}

// ComputeDistances fills the frame × pair distance matrix.
func ComputeDistances(traj *Trajectory, pairs []AtomPair, opts DistanceOptions) (*DistanceMatrix, error) {
	n := traj.NumFrames()
	dm := &DistanceMatrix{frames: n, pairs: len(pairs)}
	if n == 0 || len(pairs) == 0 {
		return dm, nil
	}

	natoms := traj.Topology.NumAtoms()
	for _, p := range pairs {
		if p[0] < 0 || p[0] >= natoms || p[1] < 0 || p[1] >= natoms {
			return nil, fmt.Errorf("pair %v outside %d atoms", p, natoms)
		}
	}

	imagers := make([]*imager, n)
	if opts.Periodic {
		for i := range traj.Frames {
			im, err := newImager(traj.Frames[i].Box)
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}
			imagers[i] = im
		}
	}

	dm.m = mat.NewDense(n, len(pairs), nil)
	fill := func(i int) {
		row := dm.m.RawRowView(i)
		coords := traj.Frames[i].Coords
		im := imagers[i]
		for k, p := range pairs {
			row[k] = im.dist(coords[p[0]], coords[p[1]])
		}
	}

	if opts.Workers <= 1 {
		for i := 0; i < n; i++ {
			fill(i)
		}
		return dm, nil
	}

	// 每个 worker 只写自己那一行
	jobs := make(chan int, opts.Workers*2)
	wg := new(sync.WaitGroup)
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fill(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return dm, nil
}

// imager applies the minimum-image convention for one box. A nil *imager
// measures plain Euclidean distance.
type imager struct {
	box   Box
	ortho bool
	inv   *mat.Dense
}

func newImager(box *Box) (*imager, error) {
	// 没有盒子或者盒子退化时按普通距离算
	if box == nil || box[0].X <= 0 || box[1].Y <= 0 || box[2].Z <= 0 {
		return nil, nil
	}
	im := &imager{box: *box, ortho: box.Orthorhombic()}
	if im.ortho {
		return im, nil
	}
	b := mat.NewDense(3, 3, []float64{
		box[0].X, box[0].Y, box[0].Z,
		box[1].X, box[1].Y, box[1].Z,
		box[2].X, box[2].Y, box[2].Z,
	})
	im.inv = mat.NewDense(3, 3, nil)
	if err := im.inv.Inverse(b); err != nil {
		return nil, fmt.Errorf("box inverse: %w", err)
	}
	return im, nil
}

func (im *imager) dist(p, q r3.Vec) float64 {
	d := r3.Sub(q, p)
	if im == nil {
		return r3.Norm(d)
	}
	if im.ortho {
		d.X -= im.box[0].X * math.Round(d.X/im.box[0].X)
		d.Y -= im.box[1].Y * math.Round(d.Y/im.box[1].Y)
		d.Z -= im.box[2].Z * math.Round(d.Z/im.box[2].Z)
		return r3.Norm(d)
	}

	// r = s·B, so s = r·B⁻¹; wrap s into [-0.5, 0.5) then try the 27 neighbours.
	var s mat.VecDense
	s.MulVec(im.inv.T(), mat.NewVecDense(3, []float64{d.X, d.Y, d.Z}))
	for k := 0; k < 3; k++ {
		s.SetVec(k, s.AtVec(k)-math.Round(s.AtVec(k)))
	}
	base := r3.Add(r3.Add(r3.Scale(s.AtVec(0), im.box[0]), r3.Scale(s.AtVec(1), im.box[1])), r3.Scale(s.AtVec(2), im.box[2]))
	best := r3.Norm(base)
	for i := -1.0; i <= 1; i++ {
		for j := -1.0; j <= 1; j++ {
			for k := -1.0; k <= 1; k++ {
				shift := r3.Add(r3.Add(r3.Scale(i, im.box[0]), r3.Scale(j, im.box[1])), r3.Scale(k, im.box[2]))
				if l := r3.Norm(r3.Add(base, shift)); l < best {
					best = l
				}
			}
		}
	}
	return best
}

// Orthorhombic reports whether every off-diagonal box component is zero.
func (b *Box) Orthorhombic() bool {
	const eps = 1e-6
	return math.Abs(b[0].Y) < eps && math.Abs(b[0].Z) < eps &&
		math.Abs(b[1].X) < eps && math.Abs(b[1].Z) < eps &&
		math.Abs(b[2].X) < eps && math.Abs(b[2].Y) < eps
}

// BoxFromLengthsAngles builds cell vectors from edge lengths and angles in
// degrees, with a along x and b in the xy plane.
func BoxFromLengthsAngles(a, b, c, alpha, beta, gamma float64) *Box {
	const deg = math.Pi / 180
	ca, cb, cg := math.Cos(alpha*deg), math.Cos(beta*deg), math.Cos(gamma*deg)
	sg := math.Sin(gamma * deg)
	// 90° 的余弦不是精确的 0
	if math.Abs(alpha-90) < 1e-6 {
		ca = 0
	}
	if math.Abs(beta-90) < 1e-6 {
		cb = 0
	}
	if math.Abs(gamma-90) < 1e-6 {
		cg, sg = 0, 1
	}
	cy := (ca - cb*cg) / sg
	cz := math.Sqrt(math.Max(0, 1-cb*cb-cy*cy))
	return &Box{
		{X: a},
		{X: b * cg, Y: b * sg},
		{X: c * cb, Y: c * cy, Z: c * cz},
	}
}
