package device

import (
	"fmt"
	"math"

	"github.com/biancanev/SemiconductorDesign/pkg/matrix"
)

// DC linearization of the diode: a 0.7 V forward drop behind a fixed
// forward conductance.
const (
	diodeForwardDrop = 0.7
	diodeForwardG    = 1e-3
)

type Diode struct {
	BaseDevice
	Model string

	Is float64 // saturation current
	N  float64 // emission coefficient
	Vt float64 // thermal voltage
}

func NewDiode(name, model string) *Diode {
	d := &Diode{
		BaseDevice: newBase(name, 0, []Pin{
			{Name: "anode", OffsetX: -30},
			{Name: "cathode", OffsetX: 30},
		}),
		Model: model,
		Is:    1e-14,
		N:     1.0,
		Vt:    0.026,
	}
	return d
}

func (d *Diode) GetType() string { return "diode" }

func (d *Diode) ValueString() string { return d.Model }

func (d *Diode) SetValue(s string) error {
	d.Model = s
	return nil
}

func (d *Diode) SpiceLine() string {
	return fmt.Sprintf("%s %s %s", d.Name, d.nodeFields(), d.Model)
}

// Current evaluates the Shockley equation with a hard clamp in strong
// reverse bias (v < -5*N*Vt).
func (d *Diode) Current(v float64) float64 {
	nvt := d.N * d.Vt
	if v < -5.0*nvt {
		return -d.Is
	}
	arg := v / nvt
	if arg > 40.0 {
		arg = 40.0
	}
	return d.Is * (math.Exp(arg) - 1.0)
}

// Conductance is dI/dV, floored at 1e-12 below the reverse clamp.
func (d *Diode) Conductance(v float64) float64 {
	nvt := d.N * d.Vt
	if v < -5.0*nvt {
		return 1e-12
	}
	arg := v / nvt
	if arg > 40.0 {
		arg = 40.0
	}
	return (d.Is / nvt) * math.Exp(arg)
}

func (d *Diode) Stamp(m *matrix.CircuitMatrix, status *Status) error {
	n1, n2 := d.Pins[0].NodeID, d.Pins[1].NodeID

	switch status.Mode {
	case OperatingPointAnalysis:
		// Piecewise-linear: I = g*(V - 0.7), stamped as the conductance
		// plus a Norton current g*0.7 injected anode to cathode.
		stampConductance(m, n1, n2, diodeForwardG)
		ieq := diodeForwardG * diodeForwardDrop
		m.AddRHS(n1, ieq)
		m.AddRHS(n2, -ieq)

	case TransientAnalysis:
		// Linearize once around the previous-step junction voltage.
		vprev := prevVoltage(status, n1) - prevVoltage(status, n2)
		g := d.Conductance(vprev)
		ieq := d.Current(vprev) - g*vprev

		stampConductance(m, n1, n2, g)
		m.AddRHS(n1, -ieq)
		m.AddRHS(n2, ieq)
	}

	return nil
}
