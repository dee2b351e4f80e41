package les

import (
	"math"

	"github.com/notargets/goles/utils"
)

const (
	// CsMax is the upper clip of the dynamic coefficient, negative values (backscatter) pass through
	CsMax = 0.09
	// JMMTol is the denominator below which the coefficient is taken as zero
	JMMTol = 1.e-32
)

type CoefficientSolver struct {
	F          *FilterOperator
	Smoothing  int // test filter passes applied to the clipped ratio
	Partitions *utils.PartitionMap
	Clipped    int // points clipped at CsMax in the last Solve
}

func NewCoefficientSolver(F *FilterOperator, pm *utils.PartitionMap) *CoefficientSolver {
	return &CoefficientSolver{F: F, Smoothing: 2, Partitions: pm}
}

// Ratio sets Cs = min(JLM/JMM, CsMax), with Cs = 0 where JMM is below JMMTol.
func (cs *CoefficientSolver) Ratio(JLM, JMM, Cs *Field) {
	checkLen("coefficient", Cs.Len(), JLM, JMM)
	clipped := make([]int, cs.Partitions.ParallelDegree)
	cs.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			c := utils.SafeDivide(JLM.Data[i], JMM.Data[i], JMMTol)
			if c > CsMax {
				c = CsMax
				clipped[np]++
			}
			Cs.Data[i] = c
		}
	})
	cs.Clipped = 0
	for _, c := range clipped {
		cs.Clipped += c
	}
}

// Solve computes the clipped ratio and smooths it with the test filter.
func (cs *CoefficientSolver) Solve(JLM, JMM, Cs *Field) {
	cs.Ratio(JLM, JMM, Cs)
	for n := 0; n < cs.Smoothing; n++ {
		cs.F.ApplyField(Cs, Cs)
	}
	// The filter forms convex combinations, this only absorbs rounding
	cs.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			Cs.Data[i] = math.Min(Cs.Data[i], CsMax)
		}
	})
}
