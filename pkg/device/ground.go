package device

import "github.com/biancanev/SemiconductorDesign/pkg/matrix"

// Ground is the reference symbol. Its single pin is pinned to node 0 and
// it emits no netlist line.
type Ground struct {
	BaseDevice
}

func NewGround(name string) *Ground {
	g := &Ground{
		BaseDevice: newBase(name, 0, []Pin{{Name: "gnd"}}),
	}
	g.Pins[0].NodeID = 0
	return g
}

func (g *Ground) GetType() string { return "ground" }

func (g *Ground) ValueString() string { return "" }

func (g *Ground) SetValue(string) error { return nil }

func (g *Ground) SpiceLine() string { return "" }

func (g *Ground) Stamp(m *matrix.CircuitMatrix, status *Status) error {
	return nil
}
