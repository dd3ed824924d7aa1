package device

import (
	"fmt"

	"github.com/biancanev/SemiconductorDesign/pkg/matrix"
)

// BJT is an NPN transistor. It participates in the schematic and the
// netlist; the analysis engine has no stamp for it yet and skips it
// with a notice.
type BJT struct {
	BaseDevice
	Model string
}

func NewBJT(name, model string) *BJT {
	return &BJT{
		BaseDevice: newBase(name, 0, []Pin{
			{Name: "collector", OffsetX: 20, OffsetY: -30},
			{Name: "base", OffsetX: -30, OffsetY: 0},
			{Name: "emitter", OffsetX: 20, OffsetY: 30},
		}),
		Model: model,
	}
}

func (q *BJT) GetType() string { return "npn" }

func (q *BJT) ValueString() string { return q.Model }

func (q *BJT) SetValue(s string) error {
	q.Model = s
	return nil
}

func (q *BJT) SpiceLine() string {
	return fmt.Sprintf("%s %s %s", q.Name, q.nodeFields(), q.Model)
}

func (q *BJT) Stamp(m *matrix.CircuitMatrix, status *Status) error {
	return nil
}
