package device

import (
	"fmt"

	"github.com/biancanev/SemiconductorDesign/pkg/matrix"
)

// OpAmp is a four-terminal operational amplifier symbol. Schematic and
// netlist only; the analysis engine skips it with a notice.
type OpAmp struct {
	BaseDevice
	Model string
}

func NewOpAmp(name, model string) *OpAmp {
	return &OpAmp{
		BaseDevice: newBase(name, 0, []Pin{
			{Name: "non_inv", OffsetX: -30, OffsetY: -15},
			{Name: "inv", OffsetX: -30, OffsetY: 15},
			{Name: "output", OffsetX: 30, OffsetY: 0},
			{Name: "vcc", OffsetX: 0, OffsetY: -30},
		}),
		Model: model,
	}
}

func (u *OpAmp) GetType() string { return "opamp" }

func (u *OpAmp) ValueString() string { return u.Model }

func (u *OpAmp) SetValue(s string) error {
	u.Model = s
	return nil
}

func (u *OpAmp) SpiceLine() string {
	return fmt.Sprintf("%s %s %s", u.Name, u.nodeFields(), u.Model)
}

func (u *OpAmp) Stamp(m *matrix.CircuitMatrix, status *Status) error {
	return nil
}
