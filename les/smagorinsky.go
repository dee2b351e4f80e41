package les

import (
	log "github.com/sirupsen/logrus"
)

// Smagorinsky is the static closure nut = CsConst^2 delta^2 |S|, it carries no state between calls.
type Smagorinsky struct {
	*closureBase
	CsConst float64
}

func newSmagorinsky(cb *closureBase) *Smagorinsky {
	return &Smagorinsky{closureBase: cb, CsConst: cb.cfg.CsConst}
}

func (sm *Smagorinsky) Update(u VectorField, tstep int, dt float64) (nut *Field, source VectorField) {
	st := sm.state
	sm.strain(u)
	sm.ev.Static(sm.CsConst, st.DeltaSq, st.MagS, st.Nut)
	sm.checkNaN(st.Nut)
	if sm.cfg.Verbose {
		sm.logger.WithFields(log.Fields{
			"tstep":  tstep,
			"nutMax": Stats(st.Nut).Max,
		}).Debug("update")
	}
	return st.Nut, nil
}
