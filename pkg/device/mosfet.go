package device

import (
	"fmt"

	"github.com/biancanev/SemiconductorDesign/pkg/matrix"
)

const (
	cutoffRegion = iota
	triodeRegion
	saturationRegion
)

// Bias guess used for the operating-point small-signal stamp.
const dcBiasGuess = 2.0

// Mosfet is a level-1 style square-law MOSFET. PMOS devices mirror the
// NMOS equations in source-referenced voltages; Vth is stored negative
// for PMOS and the drain current comes out negative (flowing source to
// drain).
type Mosfet struct {
	BaseDevice
	Polarity string // "nmos" or "pmos"
	Model    string

	Vth    float64 // threshold voltage
	K      float64 // transconductance parameter (Kn or Kp)
	W      float64 // channel width
	L      float64 // channel length
	Lambda float64 // channel length modulation
}

func mosfetPins() []Pin {
	return []Pin{
		{Name: "drain", OffsetX: 20, OffsetY: -30},
		{Name: "gate", OffsetX: -30, OffsetY: 0},
		{Name: "source", OffsetX: 20, OffsetY: 30},
		{Name: "bulk", OffsetX: 35, OffsetY: 0},
	}
}

func NewNMOSFET(name, model string) *Mosfet {
	return &Mosfet{
		BaseDevice: newBase(name, 0, mosfetPins()),
		Polarity:   "nmos",
		Model:      model,
		Vth:        0.7,
		K:          100e-6,
		W:          10e-6,
		L:          1e-6,
		Lambda:     0.01,
	}
}

func NewPMOSFET(name, model string) *Mosfet {
	return &Mosfet{
		BaseDevice: newBase(name, 0, mosfetPins()),
		Polarity:   "pmos",
		Model:      model,
		Vth:        -0.7,
		K:          50e-6,
		W:          10e-6,
		L:          1e-6,
		Lambda:     0.01,
	}
}

func (mf *Mosfet) GetType() string {
	if mf.Polarity == "pmos" {
		return "pmosfet"
	}
	return "nmosfet"
}

func (mf *Mosfet) ValueString() string { return mf.Model }

func (mf *Mosfet) SetValue(s string) error {
	mf.Model = s
	return nil
}

func (mf *Mosfet) SpiceLine() string {
	return fmt.Sprintf("%s %s %s", mf.Name, mf.nodeFields(), mf.Model)
}

func (mf *Mosfet) sign() float64 {
	if mf.Polarity == "pmos" {
		return -1
	}
	return 1
}

// region classifies the operating point in the device's own reference
// frame (source-referenced for PMOS).
func (mf *Mosfet) region(vgs, vds float64) int {
	s := mf.sign()
	vov := s*vgs - s*mf.Vth
	switch {
	case vov <= 0:
		return cutoffRegion
	case s*vds < vov:
		return triodeRegion
	default:
		return saturationRegion
	}
}

// DrainCurrent returns the signed current into the drain terminal.
func (mf *Mosfet) DrainCurrent(vgs, vds float64) float64 {
	s := mf.sign()
	vg, vd := s*vgs, s*vds
	vov := vg - s*mf.Vth
	beta := mf.K * mf.W / mf.L

	var id float64
	switch mf.region(vgs, vds) {
	case cutoffRegion:
		id = 0
	case triodeRegion:
		id = beta * (vov*vd - 0.5*vd*vd) * (1.0 + mf.Lambda*vd)
	default:
		id = 0.5 * beta * vov * vov * (1.0 + mf.Lambda*vd)
	}
	return s * id
}

// Transconductance is dId/dVgs at the given bias.
func (mf *Mosfet) Transconductance(vgs, vds float64) float64 {
	s := mf.sign()
	vd := s * vds
	vov := s*vgs - s*mf.Vth
	beta := mf.K * mf.W / mf.L

	switch mf.region(vgs, vds) {
	case cutoffRegion:
		return 1e-12
	case triodeRegion:
		return beta * vd * (1.0 + mf.Lambda*vd)
	default:
		return beta * vov * (1.0 + mf.Lambda*vd)
	}
}

// OutputConductance is dId/dVds at the given bias.
func (mf *Mosfet) OutputConductance(vgs, vds float64) float64 {
	s := mf.sign()
	vd := s * vds
	vov := s*vgs - s*mf.Vth
	beta := mf.K * mf.W / mf.L

	switch mf.region(vgs, vds) {
	case cutoffRegion:
		return 1e-12
	case triodeRegion:
		return beta*(vov-vd)*(1.0+mf.Lambda*vd) + beta*mf.Lambda*(vov*vd-0.5*vd*vd)
	default:
		return 0.5 * beta * vov * vov * mf.Lambda
	}
}

func (mf *Mosfet) Stamp(m *matrix.CircuitMatrix, status *Status) error {
	nd := mf.Pins[0].NodeID
	ng := mf.Pins[1].NodeID
	ns := mf.Pins[2].NodeID

	var vgs, vds float64
	var withCompanion bool

	switch status.Mode {
	case OperatingPointAnalysis:
		// Small-signal stamp at a fixed bias guess.
		s := mf.sign()
		vgs, vds = s*dcBiasGuess, s*dcBiasGuess
	case TransientAnalysis:
		// Linearize once around the previous-step terminal voltages.
		vd := prevVoltage(status, nd)
		vg := prevVoltage(status, ng)
		vs := prevVoltage(status, ns)
		vgs, vds = vg-vs, vd-vs
		withCompanion = true
	}

	gm := mf.Transconductance(vgs, vds)
	gds := mf.OutputConductance(vgs, vds)

	// Voltage-controlled current source drain to source:
	// Id = gm*(Vg - Vs) + gds*(Vd - Vs).
	m.AddElement(nd, ng, gm)
	m.AddElement(nd, ns, -(gm + gds))
	m.AddElement(nd, nd, gds)
	m.AddElement(ns, ng, -gm)
	m.AddElement(ns, ns, gm+gds)
	m.AddElement(ns, nd, -gds)

	if withCompanion {
		ieq := mf.DrainCurrent(vgs, vds) - gm*vgs - gds*vds
		m.AddRHS(nd, -ieq)
		m.AddRHS(ns, ieq)
	}

	return nil
}
