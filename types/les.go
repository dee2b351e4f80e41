package types

import (
	"fmt"
	"strings"
)

// ModelType selects the subgrid-scale closure.
type ModelType uint8

const (
	Smagorinsky ModelType = iota
	DynamicLagrangian
	MixedDMM1
	MixedDMM2
)

var (
	ModelNames = map[string]ModelType{
		"smagorinsky":            Smagorinsky,
		"dynamiclagrangian":      DynamicLagrangian,
		"dynamic lagrangian":     DynamicLagrangian,
		"dmm1":                   MixedDMM1,
		"mixeddmm1":              MixedDMM1,
		"dmm2":                   MixedDMM2,
		"mixeddmm2":              MixedDMM2,
		"mixeddynamiclagrangian": MixedDMM2,
	}
	ModelNamesRev = map[ModelType]string{
		Smagorinsky:       "Smagorinsky-Lilly",
		DynamicLagrangian: "Dynamic Lagrangian",
		MixedDMM1:         "Mixed Dynamic Lagrangian (DMM1)",
		MixedDMM2:         "Mixed Dynamic Lagrangian (DMM2)",
	}
)

func (mt ModelType) Print() (txt string) {
	if val, ok := ModelNamesRev[mt]; !ok {
		txt = "Unknown"
	} else {
		txt = val
	}
	return
}

func (mt ModelType) String() string { return mt.Print() }

// IsDynamic reports whether the model carries a Lagrangian-averaged coefficient.
func (mt ModelType) IsDynamic() bool { return mt != Smagorinsky }

// IsMixed reports whether the model adds the scale-similarity (Leonard) source.
func (mt ModelType) IsMixed() bool { return mt == MixedDMM1 || mt == MixedDMM2 }

func ParseModelType(label string) (mt ModelType, err error) {
	var ok bool
	label = strings.ToLower(strings.TrimSpace(label))
	if mt, ok = ModelNames[label]; !ok {
		err = fmt.Errorf("unable to use SGS model named [%s]", label)
	}
	return
}

func NewModelType(label string) (mt ModelType) {
	var err error
	if mt, err = ParseModelType(label); err != nil {
		panic(err)
	}
	return
}

// CaseType selects the analytic velocity driving a kinematic closure run.
type CaseType uint8

const (
	TaylorGreen CaseType = iota
	ShearLayer
)

var (
	CaseNames = map[string]CaseType{
		"taylorgreen":  TaylorGreen,
		"taylor-green": TaylorGreen,
		"shearlayer":   ShearLayer,
		"shear-layer":  ShearLayer,
	}
	CaseNamesRev = map[CaseType]string{
		TaylorGreen: "Taylor-Green Vortex",
		ShearLayer:  "Double Shear Layer",
	}
)

func (ct CaseType) Print() (txt string) {
	if val, ok := CaseNamesRev[ct]; !ok {
		txt = "Unknown"
	} else {
		txt = val
	}
	return
}

func ParseCaseType(label string) (ct CaseType, err error) {
	var ok bool
	label = strings.ToLower(strings.TrimSpace(label))
	if ct, ok = CaseNames[label]; !ok {
		err = fmt.Errorf("unable to use case named [%s]", label)
	}
	return
}
