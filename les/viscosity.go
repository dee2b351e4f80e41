package les

import (
	"math"

	"github.com/notargets/goles/utils"
)

/*
EddyViscosity overwrites nut from the coefficient, length scale and strain magnitude, clamps it at zero and
applies the constraints in order, so a later constraint wins on shared nodes.
*/
type EddyViscosity struct {
	Constraints []Constraint
	Partitions  *utils.PartitionMap
}

// Dynamic sets nut = Cs delta^2 |S|.
func (ev *EddyViscosity) Dynamic(Cs, deltaSq, magS, nut *Field) {
	checkLen("eddy viscosity", nut.Len(), Cs, deltaSq, magS)
	ev.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			nut.Data[i] = math.Max(0, Cs.Data[i]*deltaSq.Data[i]*magS.Data[i])
		}
	})
	ev.constrain(nut)
}

// Static sets nut = CsConst^2 delta^2 |S|, with delta^2 the projected vol^(2/dim).
func (ev *EddyViscosity) Static(CsConst float64, deltaSq, magS, nut *Field) {
	checkLen("eddy viscosity", nut.Len(), deltaSq, magS)
	c2 := CsConst * CsConst
	ev.Partitions.ParallelFor(func(np, iMin, iMax int) {
		for i := iMin; i < iMax; i++ {
			nut.Data[i] = math.Max(0, c2*deltaSq.Data[i]*magS.Data[i])
		}
	})
	ev.constrain(nut)
}

func (ev *EddyViscosity) constrain(nut *Field) {
	for _, bc := range ev.Constraints {
		bc.Apply(nut.Data)
	}
}
