package KinematicLES

import (
	"math"

	"github.com/notargets/goles/les"
	"github.com/notargets/goles/types"
)

// Shear layer thickness parameter and perturbation amplitude
const (
	ShearRho   = 30.
	ShearDelta = 0.05
)

/*
AnalyticVelocity prescribes a divergence free velocity at the native dof coordinates. The flow is
not solved for, each field decays viscously in time with rate Nu.
*/
type AnalyticVelocity struct {
	Case       types.CaseType
	Nu         float64
	Lx, Ly, Lz float64
}

func (av AnalyticVelocity) waveNumbers(dim int) (kx, ky, kz, k2 float64) {
	kx, ky = 2*math.Pi/av.Lx, 2*math.Pi/av.Ly
	k2 = kx*kx + ky*ky
	if dim == 3 {
		kz = 2 * math.Pi / av.Lz
		k2 += kz * kz
	}
	return
}

// Evaluate fills u at time t from the dof coordinates X (Dim x Ndof).
func (av AnalyticVelocity) Evaluate(t float64, X [][]float64, u les.VectorField) {
	var (
		dim            = len(X)
		kx, ky, kz, k2 = av.waveNumbers(dim)
		decay          = math.Exp(-av.Nu * k2 * t)
		zfac           = func(i int) float64 { return 1. }
	)
	if dim == 3 {
		zfac = func(i int) float64 { return math.Cos(kz * X[2][i]) }
		u[2].Fill(0)
	}
	switch av.Case {
	case types.TaylorGreen:
		for i := range X[0] {
			x, y := X[0][i], X[1][i]
			u[0].Data[i] = math.Sin(kx*x) * math.Cos(ky*y) * zfac(i) * decay
			u[1].Data[i] = -(kx / ky) * math.Cos(kx*x) * math.Sin(ky*y) * zfac(i) * decay
		}
	case types.ShearLayer:
		pert := math.Exp(-av.Nu * kx * kx * t)
		for i := range X[0] {
			x, y := X[0][i], X[1][i]/av.Ly
			if y <= 0.5 {
				u[0].Data[i] = math.Tanh(ShearRho * (y - 0.25))
			} else {
				u[0].Data[i] = math.Tanh(ShearRho * (0.75 - y))
			}
			u[1].Data[i] = ShearDelta * math.Sin(kx*x) * pert
		}
	}
}
