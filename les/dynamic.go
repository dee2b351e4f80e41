package les

import (
	log "github.com/sirupsen/logrus"
)

/*
Dynamic is the Lagrangian dynamic closure, optionally mixed with the scale similarity source (DMM1, DMM2).
A recompute runs

	filter velocity -> L, M (and H) -> Lagrangian averages -> Cs -> nut -> mixed source

and a reuse only refreshes nut from the current strain with the existing Cs, plus the mixed source once
a coefficient has been computed.
*/
type Dynamic struct {
	*closureBase
	F, G    *FilterOperator
	ss      *ScaleSimilarity
	la      *LagrangianAverager
	cs      *CoefficientSolver
	ms      *MixedSourceAssembler
	L, M, H *SymTensor
}

func newDynamic(cb *closureBase) (dy *Dynamic, err error) {
	var (
		st     = cb.state
		dim, N = cb.ta.Dim, cb.ta.N
		pm     = cb.ta.Partitions
		tophat = NewTophatMatrix(cb.geo)
	)
	if st.Schedule, err = NewSchedule(cb.cfg.RecomputeInterval); err != nil {
		return
	}
	st.JLM = NewField("JLM", N)
	st.JMM = NewField("JMM", N)
	st.Cs = NewField("Cs", N)
	dy = &Dynamic{
		closureBase: cb,
		F:           NewFilterOperator("test", tophat, 1, 1, pm),
		G:           NewFilterOperator("grid", tophat, 1, cb.cfg.GridFilterWeight, pm),
		L:           NewSymTensor("Lij", dim, N),
		M:           NewSymTensor("Mij", dim, N),
	}
	dy.ss = NewScaleSimilarity(cb.ta, dy.F, dy.G)
	dy.la = NewLagrangianAverager(cb.cfg.Relaxation, st.Delta, cb.ta, cb.geo)
	if cb.cfg.AverageStart == AverageFromInitial {
		dy.la.Initialize(st.JLM, st.JMM)
	}
	dy.cs = NewCoefficientSolver(dy.F, pm)
	if cb.cfg.Model.IsMixed() {
		dy.H = NewSymTensor("Hij", dim, N)
		dy.ms = NewMixedSourceAssembler(cb.ta, dy.ss)
		st.Source = NewVectorField("source", dim, N)
	}
	return
}

func (dy *Dynamic) Update(u VectorField, tstep int, dt float64) (nut *Field, source VectorField) {
	var (
		st    = dy.state
		phase = st.Schedule.Decide(tstep)
	)
	switch phase {
	case Recompute:
		dy.recompute(u, tstep, dt)
	case Reuse:
		dy.reuse(u)
	}
	st.Schedule.Complete(phase, tstep)
	return st.Nut, st.Source
}

func (dy *Dynamic) recompute(u VectorField, tstep int, dt float64) {
	var (
		st    = dy.state
		U     = st.UCG1
		sched = st.Schedule
	)
	dy.interp.Interpolate(U, u)
	dy.ss.ComputeLij(U, dy.L)
	dy.ss.ComputeMij(U, st.DeltaSq, dy.M, st.MagS)
	if dy.H != nil {
		dy.ss.ComputeHij(dy.cfg.Model, U, dy.H)
		dy.ta.Sub(dy.L, dy.H, dy.L)
	}
	if !sched.HasValidCoefficient && dy.cfg.AverageStart == SeedFromContractions {
		dy.la.Seed(st.JLM, st.JMM, dy.L, dy.M)
	} else {
		dtLag := dt * float64(sched.Elapsed(tstep))
		dy.la.Advance(st.JLM, st.JMM, dy.L, dy.M, U, dtLag)
	}
	dy.cs.Solve(st.JLM, st.JMM, st.Cs)
	dy.ev.Dynamic(st.Cs, st.DeltaSq, st.MagS, st.Nut)
	if dy.ms != nil {
		dy.ms.Assemble(U, st.Source)
	}
	dy.checkNaN(st.JLM, st.JMM, st.Cs, st.Nut)
	if dy.cfg.Verbose {
		cs, nut := Stats(st.Cs), Stats(st.Nut)
		dy.logger.WithFields(log.Fields{
			"tstep":   tstep,
			"csMin":   cs.Min,
			"csMax":   cs.Max,
			"nutMax":  nut.Max,
			"clipped": dy.cs.Clipped,
		}).Debug("recompute")
	}
}

func (dy *Dynamic) reuse(u VectorField) {
	st := dy.state
	dy.strain(u)
	dy.ev.Dynamic(st.Cs, st.DeltaSq, st.MagS, st.Nut)
	if dy.ms != nil && st.Schedule.HasValidCoefficient {
		dy.ms.Assemble(st.UCG1, st.Source)
	}
	dy.checkNaN(st.Nut)
}
