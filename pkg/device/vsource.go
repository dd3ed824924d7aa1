package device

import (
	"fmt"

	"github.com/biancanev/SemiconductorDesign/pkg/matrix"
)

// VoltageSource is an ideal DC source. Its branch current is an extra MNA
// unknown; the analysis engine assigns the branch row before stamping.
type VoltageSource struct {
	BaseDevice
	branchIdx int
}

func NewVoltageSource(name string, value float64) *VoltageSource {
	return &VoltageSource{
		BaseDevice: newBase(name, value, []Pin{
			{Name: "positive", OffsetX: 0, OffsetY: -30},
			{Name: "negative", OffsetX: 0, OffsetY: 30},
		}),
	}
}

func (v *VoltageSource) GetType() string { return "vsource" }

func (v *VoltageSource) BranchIndex() int { return v.branchIdx }

func (v *VoltageSource) SetBranchIndex(idx int) { v.branchIdx = idx }

func (v *VoltageSource) SpiceLine() string {
	return fmt.Sprintf("%s %s %s", v.Name, v.nodeFields(), v.ValueString())
}

func (v *VoltageSource) Stamp(m *matrix.CircuitMatrix, status *Status) error {
	if v.branchIdx <= 0 {
		return fmt.Errorf("voltage source %s: branch row not assigned", v.Name)
	}
	n1, n2 := v.Pins[0].NodeID, v.Pins[1].NodeID
	bIdx := v.branchIdx

	// v(n1) - v(n2) = V, branch current enters the node equations.
	m.AddElement(n1, bIdx, 1)
	m.AddElement(bIdx, n1, 1)
	m.AddElement(n2, bIdx, -1)
	m.AddElement(bIdx, n2, -1)
	m.AddRHS(bIdx, v.Value)

	return nil
}
