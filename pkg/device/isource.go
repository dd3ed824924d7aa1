package device

import (
	"fmt"

	"github.com/biancanev/SemiconductorDesign/pkg/matrix"
)

// CurrentSource is an ideal DC source driving Value amperes through
// itself from pin1 to pin2.
type CurrentSource struct {
	BaseDevice
}

func NewCurrentSource(name string, value float64) *CurrentSource {
	return &CurrentSource{BaseDevice: newBase(name, value, twoPins())}
}

func (c *CurrentSource) GetType() string { return "isource" }

func (c *CurrentSource) SpiceLine() string {
	return fmt.Sprintf("%s %s %s", c.Name, c.nodeFields(), c.ValueString())
}

func (c *CurrentSource) Stamp(m *matrix.CircuitMatrix, status *Status) error {
	n1, n2 := c.Pins[0].NodeID, c.Pins[1].NodeID
	m.AddRHS(n1, -c.Value)
	m.AddRHS(n2, c.Value)
	return nil
}
