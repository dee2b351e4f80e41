package mesh

import (
	"fmt"
)

/*
NodalGradient projects the element-wise constant gradient of the CG1 field src onto the vertices
using the lumped (volume weighted) L2 projection:

	grad_i = sum_{k in E(i)} |K| grad(src)|_K / sum_{k in E(i)} |K|

dst[d] receives the d-th derivative. A linear field is reproduced exactly at every vertex.
*/
func (m *Mesh) NodalGradient(src []float64, dst [][]float64) {
	var (
		dim = m.Dim
		gk  = make([]float64, m.K*dim)
	)
	if len(src) != m.NVerts || len(dst) != dim {
		panic(fmt.Errorf("gradient shape mismatch: src %d (want %d), dst %d (want %d)",
			len(src), m.NVerts, len(dst), dim))
	}
	m.EPartition.ParallelFor(func(np, kMin, kMax int) {
		for k := kMin; k < kMax; k++ {
			verts, grad := m.EToV[k], m.BasisGrad[k]
			for d := 0; d < dim; d++ {
				var g float64
				for a, v := range verts {
					g += src[v] * grad[a][d]
				}
				gk[k*dim+d] = g
			}
		}
	})
	m.Partitions.ParallelFor(func(np, iMin, iMax int) {
		acc := make([]float64, dim)
		for i := iMin; i < iMax; i++ {
			for d := range acc {
				acc[d] = 0
			}
			for _, pair := range m.VtoE[m.vtoeStart[i]:m.vtoeStart[i+1]] {
				k := int(pair[1])
				for d := 0; d < dim; d++ {
					acc[d] += m.Volume[k] * gk[k*dim+d]
				}
			}
			for d := 0; d < dim; d++ {
				dst[d][i] = acc[d] / m.NodeVolume[i]
			}
		}
	})
}

// DG0ToCG1 projects an element-wise constant field onto the vertices with volume weighting.
func (m *Mesh) DG0ToCG1(src, dst []float64) {
	if len(src) != m.K || len(dst) != m.NVerts {
		panic(fmt.Errorf("DG0 to CG1 shape mismatch: src %d (want %d), dst %d (want %d)",
			len(src), m.K, len(dst), m.NVerts))
	}
	m.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			var acc float64
			for _, pair := range m.VtoE[m.vtoeStart[i]:m.vtoeStart[i+1]] {
				k := int(pair[1])
				acc += m.Volume[k] * src[k]
			}
			dst[i] = acc / m.NodeVolume[i]
		}
	})
}

// LumpedMass returns the row sums of the CG1 consistent mass matrix, |K|/(Dim+1) per touching element.
func (m *Mesh) LumpedMass() (ml []float64) {
	ml = make([]float64, m.NVerts)
	for i := range ml {
		ml[i] = m.NodeVolume[i] / float64(m.Dim+1)
	}
	return
}
