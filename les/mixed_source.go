package les

// MixedSourceAssembler builds the explicit momentum source source_i = -dLeonard_ij/dx_j.
type MixedSourceAssembler struct {
	ta      *TensorAlgebra
	ss      *ScaleSimilarity
	Leonard *SymTensor
}

func NewMixedSourceAssembler(ta *TensorAlgebra, ss *ScaleSimilarity) *MixedSourceAssembler {
	return &MixedSourceAssembler{
		ta:      ta,
		ss:      ss,
		Leonard: NewSymTensor("Leonard", ta.Dim, ta.N),
	}
}

func (ms *MixedSourceAssembler) Assemble(u VectorField, source VectorField) {
	ms.ss.ComputeLeonard(u, ms.Leonard)
	ms.ta.Divergence(ms.Leonard, source)
	ms.ta.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for _, f := range source {
			for i := iMin; i < iMax; i++ {
				f.Data[i] = -f.Data[i]
			}
		}
	})
}
