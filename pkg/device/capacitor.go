package device

import (
	"fmt"

	"github.com/biancanev/SemiconductorDesign/pkg/matrix"
)

type Capacitor struct {
	BaseDevice
}

func NewCapacitor(name string, value float64) *Capacitor {
	return &Capacitor{BaseDevice: newBase(name, value, twoPins())}
}

func (c *Capacitor) GetType() string { return "capacitor" }

func (c *Capacitor) SpiceLine() string {
	return fmt.Sprintf("%s %s %s", c.Name, c.nodeFields(), c.ValueString())
}

func (c *Capacitor) Stamp(m *matrix.CircuitMatrix, status *Status) error {
	n1, n2 := c.Pins[0].NodeID, c.Pins[1].NodeID

	switch status.Mode {
	case OperatingPointAnalysis:
		// Open circuit, held down by a gmin leak so capacitor-only
		// meshes still have a well-posed DC system.
		gmin := status.Gmin
		if gmin < 1e-12 {
			gmin = 1e-12
		}
		stampConductance(m, n1, n2, gmin)

	case TransientAnalysis:
		// Backward-Euler companion: geq = C/dt in parallel with a
		// current source geq*v_prev.
		geq := c.Value / status.TimeStep
		vprev := prevVoltage(status, n1) - prevVoltage(status, n2)
		ieq := geq * vprev

		stampConductance(m, n1, n2, geq)
		m.AddRHS(n1, ieq)
		m.AddRHS(n2, -ieq)
	}

	return nil
}
