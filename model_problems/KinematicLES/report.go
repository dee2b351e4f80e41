package KinematicLES

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/goles/les"
)

// StepReport summarises the closure after one Update, it is what the monitor broadcasts.
type StepReport struct {
	Step       int            `json:"step"`
	Time       float64        `json:"time"`
	Model      string         `json:"model"`
	Phase      string         `json:"phase"`
	Recomputes int            `json:"recomputes"`
	Nut        les.FieldStats `json:"nut"`
	MagS       les.FieldStats `json:"magS"`
	Cs         les.FieldStats `json:"cs"`
	SourceMax  float64        `json:"sourceMax"`
}

func NewStepReport(tstep int, Time float64, st *les.ClosureState, nut *les.Field, source les.VectorField) (sr StepReport) {
	sr = StepReport{
		Step:  tstep,
		Time:  Time,
		Model: st.Model.Print(),
		Phase: les.Recompute.String(),
		Nut:   les.Stats(nut),
		MagS:  les.Stats(st.MagS),
		Cs:    les.Stats(st.Cs),
	}
	if st.Schedule != nil {
		sr.Phase = st.Schedule.LastPhase.String()
		sr.Recomputes = st.Schedule.Recomputes
	}
	if source != nil {
		sr.SourceMax = les.MaxAbs(source)
	}
	return
}

func (sr StepReport) Fields() log.Fields {
	return log.Fields{
		"step":   sr.Step,
		"time":   sr.Time,
		"phase":  sr.Phase,
		"nutMax": sr.Nut.Max,
		"csMax":  sr.Cs.Max,
		"srcMax": sr.SourceMax,
	}
}

func (sr StepReport) Print() string {
	return fmt.Sprintf("step %6d, t = %8.5f, %-9s nut: %s", sr.Step, sr.Time, sr.Phase, sr.Nut.Print())
}
