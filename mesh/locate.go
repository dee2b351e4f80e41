package mesh

import (
	"math"

	"github.com/notargets/goles/utils"
)

type BoundingBox struct {
	Min, Max []float64
}

func NewBoundingBox(coords [][]float64) (box BoundingBox) {
	dim := len(coords)
	box = BoundingBox{
		Min: utils.ConstArray(dim, math.Inf(1)),
		Max: utils.ConstArray(dim, math.Inf(-1)),
	}
	for d := 0; d < dim; d++ {
		for _, x := range coords[d] {
			box.Min[d] = math.Min(box.Min[d], x)
			box.Max[d] = math.Max(box.Max[d], x)
		}
	}
	return
}

func (bb BoundingBox) PointInside(x []float64) (within bool) {
	for d := range bb.Min {
		if x[d] < bb.Min[d] || x[d] > bb.Max[d] {
			return false
		}
	}
	return true
}

// bucketGrid bins elements into a uniform background grid for point location.
type bucketGrid struct {
	box   BoundingBox
	n     []int
	h     []float64
	cells [][]int32
}

func newBucketGrid(m *Mesh) (bg *bucketGrid) {
	var (
		dim     = m.Dim
		perSide = int(math.Ceil(math.Pow(float64(m.K), 1./float64(dim))))
		total   = 1
	)
	if perSide < 1 {
		perSide = 1
	}
	bg = &bucketGrid{
		box: NewBoundingBox(m.Coords),
		n:   make([]int, dim),
		h:   make([]float64, dim),
	}
	for d := 0; d < dim; d++ {
		bg.n[d] = perSide
		bg.h[d] = (bg.box.Max[d] - bg.box.Min[d]) / float64(perSide)
		if bg.h[d] <= 0 {
			bg.h[d] = 1
		}
		total *= perSide
	}
	bg.cells = make([][]int32, total)
	lo, hi := make([]int, dim), make([]int, dim)
	for k, verts := range m.EToV {
		for d := 0; d < dim; d++ {
			xmin, xmax := math.Inf(1), math.Inf(-1)
			for _, v := range verts {
				xmin = math.Min(xmin, m.Coords[d][v])
				xmax = math.Max(xmax, m.Coords[d][v])
			}
			lo[d], hi[d] = bg.cellCoord(d, xmin), bg.cellCoord(d, xmax)
		}
		bg.visit(lo, hi, func(cell int) {
			bg.cells[cell] = append(bg.cells[cell], int32(k))
		})
	}
	return
}

func (bg *bucketGrid) cellCoord(d int, x float64) (c int) {
	c = int((x - bg.box.Min[d]) / bg.h[d])
	if c < 0 {
		c = 0
	}
	if c >= bg.n[d] {
		c = bg.n[d] - 1
	}
	return
}

func (bg *bucketGrid) visit(lo, hi []int, f func(cell int)) {
	switch len(lo) {
	case 2:
		for j := lo[1]; j <= hi[1]; j++ {
			for i := lo[0]; i <= hi[0]; i++ {
				f(i + bg.n[0]*j)
			}
		}
	case 3:
		for k := lo[2]; k <= hi[2]; k++ {
			for j := lo[1]; j <= hi[1]; j++ {
				for i := lo[0]; i <= hi[0]; i++ {
					f(i + bg.n[0]*(j+bg.n[1]*k))
				}
			}
		}
	}
}

func (bg *bucketGrid) candidates(x []float64) []int32 {
	var cell, stride = 0, 1
	for d := range bg.n {
		cell += bg.cellCoord(d, x[d]) * stride
		stride *= bg.n[d]
	}
	return bg.cells[cell]
}

// Barycentric returns the barycentric coordinates of x relative to element k.
func (m *Mesh) Barycentric(k int, x []float64) (lambda [4]float64) {
	var (
		verts = m.EToV[k]
		grad  = m.BasisGrad[k]
		v0    = verts[0]
	)
	lambda[0] = 1
	for a := 1; a <= m.Dim; a++ {
		var l float64
		for d := 0; d < m.Dim; d++ {
			l += grad[a][d] * (x[d] - m.Coords[d][v0])
		}
		lambda[a] = l
		lambda[0] -= l
	}
	return
}

func minLambda(lambda [4]float64, n int) (lmin float64) {
	lmin = lambda[0]
	for a := 1; a < n; a++ {
		lmin = math.Min(lmin, lambda[a])
	}
	return
}

/*
Locate finds the element containing x. When x lies outside the mesh the closest element among the
candidates is returned with its negative barycentric weights zeroed and the rest renormalised, so
sampled values stay bounded by that element's vertex values.
*/
func (m *Mesh) Locate(x []float64) (k int, lambda [4]float64, inside bool) {
	var (
		nv    = m.Dim + 1
		best  = math.Inf(-1)
		cands = m.locator.candidates(x)
	)
	k = -1
	for _, kk := range cands {
		l := m.Barycentric(int(kk), x)
		lmin := minLambda(l, nv)
		if lmin >= -1.e-10 {
			return int(kk), l, true
		}
		if lmin > best {
			best, k, lambda = lmin, int(kk), l
		}
	}
	if k == -1 {
		for kk := 0; kk < m.K; kk++ {
			l := m.Barycentric(kk, x)
			lmin := minLambda(l, nv)
			if lmin >= -1.e-10 {
				return kk, l, true
			}
			if lmin > best {
				best, k, lambda = lmin, kk, l
			}
		}
	}
	var sum float64
	for a := 0; a < nv; a++ {
		if lambda[a] < 0 {
			lambda[a] = 0
		}
		sum += lambda[a]
	}
	for a := 0; a < nv; a++ {
		lambda[a] /= sum
	}
	return
}

// Sample evaluates the CG1 field src at the point x.
func (m *Mesh) Sample(x []float64, src []float64) (val float64) {
	k, lambda, _ := m.Locate(x)
	for a, v := range m.EToV[k] {
		val += lambda[a] * src[v]
	}
	return
}
