package analysis

import (
	"fmt"
	"math"

	"github.com/biancanev/SemiconductorDesign/pkg/device"
)

type TransientSettings struct {
	Step  float64
	Stop  float64
	Start float64
}

// TimePoint is one row of the transient result log. NodeVoltages is
// indexed by node id (ground included as 0.0); BranchCurrents maps a
// voltage-source name to its branch current.
type TimePoint struct {
	Time           float64
	NodeVoltages   []float64
	BranchCurrents map[string]float64
}

// Transient integrates the circuit with backward Euler. Nonlinear
// devices are linearized once per step around the previous solution;
// no inner Newton iteration is performed.
type Transient struct {
	sys      *system
	settings TransientSettings
	points   []TimePoint
	prev     []float64
}

func NewTransient(elements []device.Device, numNodes int, settings TransientSettings) (*Transient, error) {
	if settings.Step <= 0 || settings.Stop <= settings.Start {
		return nil, fmt.Errorf("transient: invalid settings (step=%g, stop=%g, start=%g)",
			settings.Step, settings.Stop, settings.Start)
	}
	sys, err := newSystem(elements, numNodes)
	if err != nil {
		return nil, fmt.Errorf("transient: %w", err)
	}
	return &Transient{sys: sys, settings: settings}, nil
}

// Solve checks that the network has a well-posed DC system, then steps
// from all-zero initial conditions (devices uncharged, no stored
// currents) to the stop time. On a failed step the earlier time points
// remain valid.
func (tr *Transient) Solve() error {
	if _, err := tr.sys.solveOnce(&device.Status{
		Mode: device.OperatingPointAnalysis,
		Gmin: 1e-12,
	}); err != nil {
		return fmt.Errorf("transient initial conditions: %w", err)
	}

	tr.points = nil
	tr.prev = make([]float64, tr.sys.mat.Size+1)
	for _, dev := range tr.sys.elements {
		if td, ok := dev.(device.TimeDependent); ok {
			td.ResetState()
		}
	}
	tr.savePoint(tr.settings.Start, tr.prev)

	// Fixed step count; accumulating t += step drifts over many steps.
	steps := int(math.Round((tr.settings.Stop - tr.settings.Start) / tr.settings.Step))
	for i := 1; i <= steps; i++ {
		t := tr.settings.Start + float64(i)*tr.settings.Step

		status := &device.Status{
			Mode:     device.TransientAnalysis,
			Time:     t,
			TimeStep: tr.settings.Step,
			Gmin:     1e-12,
			Prev:     tr.prev,
		}
		sol, err := tr.sys.solveOnce(status)
		if err != nil {
			return fmt.Errorf("transient step at t=%g: %w", t, err)
		}

		for _, dev := range tr.sys.elements {
			if td, ok := dev.(device.TimeDependent); ok {
				td.UpdateState(sol, status)
			}
		}

		tr.savePoint(t, sol)
		tr.prev = sol
	}

	return nil
}

func (tr *Transient) savePoint(t float64, solution []float64) {
	point := TimePoint{
		Time:           t,
		NodeVoltages:   make([]float64, tr.sys.numNodes),
		BranchCurrents: make(map[string]float64, len(tr.sys.sources)),
	}
	for k := 1; k < tr.sys.numNodes; k++ {
		point.NodeVoltages[k] = tr.sys.nodeVoltage(solution, k)
	}
	for _, name := range tr.sys.sources {
		point.BranchCurrents[name] = tr.sys.sourceCurrent(solution, name)
	}
	tr.points = append(tr.points, point)
}

func (tr *Transient) Points() []TimePoint { return tr.points }

// TimePoints returns the time axis of the result log.
func (tr *Transient) TimePoints() []float64 {
	times := make([]float64, len(tr.points))
	for i, p := range tr.points {
		times[i] = p.Time
	}
	return times
}

// NodeVoltageHistory returns one node's waveform across the log.
func (tr *Transient) NodeVoltageHistory(k int) []float64 {
	history := make([]float64, 0, len(tr.points))
	for _, p := range tr.points {
		if k >= 0 && k < len(p.NodeVoltages) {
			history = append(history, p.NodeVoltages[k])
		}
	}
	return history
}

// NodeVoltage returns the node voltage at the final time point.
func (tr *Transient) NodeVoltage(k int) float64 {
	if len(tr.points) == 0 {
		return 0
	}
	last := tr.points[len(tr.points)-1]
	if k <= 0 || k >= len(last.NodeVoltages) {
		return 0
	}
	return last.NodeVoltages[k]
}

// SourceCurrent returns a branch current at the final time point.
func (tr *Transient) SourceCurrent(name string) float64 {
	if len(tr.points) == 0 {
		return 0
	}
	return tr.points[len(tr.points)-1].BranchCurrents[name]
}

func (tr *Transient) NumNodes() int { return tr.sys.numNodes }
