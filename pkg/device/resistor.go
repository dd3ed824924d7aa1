package device

import (
	"fmt"

	"github.com/biancanev/SemiconductorDesign/pkg/matrix"
)

type Resistor struct {
	BaseDevice
}

func NewResistor(name string, value float64) *Resistor {
	return &Resistor{BaseDevice: newBase(name, value, twoPins())}
}

func (r *Resistor) GetType() string { return "resistor" }

func (r *Resistor) SpiceLine() string {
	return fmt.Sprintf("%s %s %s", r.Name, r.nodeFields(), r.ValueString())
}

func (r *Resistor) Stamp(m *matrix.CircuitMatrix, status *Status) error {
	if r.Value == 0 {
		return fmt.Errorf("resistor %s: zero resistance", r.Name)
	}
	n1, n2 := r.Pins[0].NodeID, r.Pins[1].NodeID
	stampConductance(m, n1, n2, 1.0/r.Value)
	return nil
}
