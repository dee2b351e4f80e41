package les

import (
	"fmt"

	"github.com/notargets/goles/utils"
)

/*
NewTophatMatrix assembles the CG1 consistent mass matrix

	M_ab = sum_K |K| (1 + delta_ab) / ((d+1)(d+2))

and normalises its rows, so each row of the result is a set of non negative weights summing to one over
the vertex and its edge neighbors.
*/
func NewTophatMatrix(geo Geometry) (G utils.CSR) {
	var (
		N     = geo.NumNodes()
		d     = float64(geo.SpatialDim())
		coeff = 1. / ((d + 1) * (d + 2))
		M     = utils.NewDOK(N, N)
	)
	for k := 0; k < geo.NumElements(); k++ {
		vol := geo.ElementVolume(k) * coeff
		verts := geo.ElementNodes(k)
		for a, va := range verts {
			for b, vb := range verts {
				if a == b {
					M.AddAt(va, vb, 2*vol)
				} else {
					M.AddAt(va, vb, vol)
				}
			}
		}
	}
	G = M.ToCSR()
	sums := G.RowSums()
	for i := range sums {
		if sums[i] <= 0 {
			panic(fmt.Errorf("node %d is not attached to any element", i))
		}
		sums[i] = 1. / sums[i]
	}
	G.ScaleRows(sums)
	G.SetReadOnly("tophat filter")
	return
}

/*
FilterOperator applies Iterations passes of

	dst = Weight*G*src + (1 - Weight)*src

The test filter is one full pass, the grid filter one pass at weight 0.75. Passes run in sequence, each
pass reads the output of the previous one; rows within a pass are computed in parallel.
dst and src may be the same slice.
*/
type FilterOperator struct {
	Name       string
	G          utils.CSR
	Iterations int
	Weight     float64
	Partitions *utils.PartitionMap
	work       []float64
}

func NewFilterOperator(name string, G utils.CSR, iterations int, weight float64, pm *utils.PartitionMap) (fo *FilterOperator) {
	nr, nc := G.Dims()
	if nr != nc {
		panic(fmt.Errorf("filter %s needs a square matrix, have %dx%d", name, nr, nc))
	}
	if iterations < 0 || weight <= 0 || weight > 1 {
		panic(fmt.Errorf("filter %s: invalid iterations %d or weight %g", name, iterations, weight))
	}
	return &FilterOperator{
		Name:       name,
		G:          G,
		Iterations: iterations,
		Weight:     weight,
		Partitions: pm,
		work:       make([]float64, nr),
	}
}

func (fo *FilterOperator) Apply(dst, src []float64) {
	var (
		n = len(fo.work)
		w = fo.Weight
	)
	if len(dst) != n || len(src) != n {
		panic(fmt.Errorf("filter %s: have %d -> %d values, need %d", fo.Name, len(src), len(dst), n))
	}
	if fo.Iterations == 0 {
		copy(dst, src)
		return
	}
	cur := src
	for pass := 0; pass < fo.Iterations; pass++ {
		fo.Partitions.ParallelFor(func(np, iMin, iMax int) {
			fo.G.MulVecRange(fo.work, cur, iMin, iMax)
		})
		// Every row of work must be complete before any of cur is overwritten
		fo.Partitions.ParallelFor(func(np, iMin, iMax int) {
			for i := iMin; i < iMax; i++ {
				dst[i] = w*fo.work[i] + (1-w)*cur[i]
			}
		})
		cur = dst
	}
}

func (fo *FilterOperator) ApplyField(dst, src *Field) { fo.Apply(dst.Data, src.Data) }

func (fo *FilterOperator) ApplyVector(dst, src VectorField) {
	if len(dst) != len(src) {
		panic(fmt.Errorf("filter %s: vector dimension mismatch %d != %d", fo.Name, len(dst), len(src)))
	}
	for d := range dst {
		fo.Apply(dst[d].Data, src[d].Data)
	}
}

func (fo *FilterOperator) ApplyTensor(dst, src *SymTensor) {
	if len(dst.Comp) != len(src.Comp) {
		panic(fmt.Errorf("filter %s: tensor %s and %s differ in shape", fo.Name, dst.Name, src.Name))
	}
	for c := range dst.Comp {
		fo.Apply(dst.Comp[c].Data, src.Comp[c].Data)
	}
}
