package les

import (
	"fmt"
)

type Phase uint8

const (
	PhaseNone Phase = iota
	Recompute
	Reuse
)

var phaseNames = map[Phase]string{
	PhaseNone: "None",
	Recompute: "Recompute",
	Reuse:     "Reuse",
}

func (p Phase) String() string { return phaseNames[p] }

/*
Schedule decides per timestep between the full dynamic pipeline and the cheap viscosity refresh.
HasValidCoefficient latches true after the first completed recompute and never resets.
*/
type Schedule struct {
	RecomputeInterval   int
	HasValidCoefficient bool
	Calls               int // completed updates
	Recomputes          int // completed recomputes
	LastPhase           Phase
	LastRecompute       int // tstep of the last completed recompute
}

func NewSchedule(interval int) (s *Schedule, err error) {
	if interval < 1 {
		err = fmt.Errorf("recompute interval must be a positive integer, have %d", interval)
		return
	}
	s = &Schedule{RecomputeInterval: interval}
	return
}

func (s *Schedule) Decide(tstep int) Phase {
	if s.Calls == 0 || tstep%s.RecomputeInterval == 0 {
		return Recompute
	}
	return Reuse
}

// Elapsed is the number of steps the averages advance over at tstep, at least one.
func (s *Schedule) Elapsed(tstep int) int {
	if s.Recomputes == 0 || tstep <= s.LastRecompute {
		return 1
	}
	return tstep - s.LastRecompute
}

// Complete records a finished phase, a recompute sets the latch.
func (s *Schedule) Complete(phase Phase, tstep int) {
	s.Calls++
	s.LastPhase = phase
	if phase == Recompute {
		s.Recomputes++
		s.LastRecompute = tstep
		s.HasValidCoefficient = true
	}
}
