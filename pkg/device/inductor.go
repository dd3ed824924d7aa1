package device

import (
	"fmt"

	"github.com/biancanev/SemiconductorDesign/pkg/matrix"
)

// shortConductance approximates the DC short of an ideal inductor.
const shortConductance = 1e6

type Inductor struct {
	BaseDevice
	current float64 // branch current history for the transient companion
}

func NewInductor(name string, value float64) *Inductor {
	return &Inductor{BaseDevice: newBase(name, value, twoPins())}
}

func (l *Inductor) GetType() string { return "inductor" }

func (l *Inductor) SpiceLine() string {
	return fmt.Sprintf("%s %s %s", l.Name, l.nodeFields(), l.ValueString())
}

func (l *Inductor) Current() float64 { return l.current }

func (l *Inductor) Stamp(m *matrix.CircuitMatrix, status *Status) error {
	if l.Value == 0 {
		return fmt.Errorf("inductor %s: zero inductance", l.Name)
	}
	n1, n2 := l.Pins[0].NodeID, l.Pins[1].NodeID

	switch status.Mode {
	case OperatingPointAnalysis:
		stampConductance(m, n1, n2, shortConductance)

	case TransientAnalysis:
		// Backward-Euler companion: geq = dt/L in parallel with a
		// current source carrying the previous branch current.
		geq := status.TimeStep / l.Value
		stampConductance(m, n1, n2, geq)
		m.AddRHS(n1, -l.current)
		m.AddRHS(n2, l.current)
	}

	return nil
}

// ResetState discharges the stored branch current before a fresh run.
func (l *Inductor) ResetState() { l.current = 0 }

// UpdateState advances the branch current after an accepted step:
// i <- i_prev + (dt/L)*v.
func (l *Inductor) UpdateState(solution []float64, status *Status) {
	if status.Mode != TransientAnalysis || status.TimeStep <= 0 {
		return
	}
	v := solutionVoltage(solution, l.Pins[0].NodeID) - solutionVoltage(solution, l.Pins[1].NodeID)
	l.current += (status.TimeStep / l.Value) * v
}

func solutionVoltage(solution []float64, node int) float64 {
	if node <= 0 || node >= len(solution) {
		return 0
	}
	return solution[node]
}
