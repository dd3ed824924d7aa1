package analysis

import (
	"fmt"

	"github.com/biancanev/SemiconductorDesign/pkg/device"
)

// OperatingPoint computes the DC solution: capacitors open (gmin leak),
// inductors shorted, nonlinear devices replaced by fixed linearizations.
type OperatingPoint struct {
	sys      *system
	solution []float64
}

func NewOperatingPoint(elements []device.Device, numNodes int) (*OperatingPoint, error) {
	sys, err := newSystem(elements, numNodes)
	if err != nil {
		return nil, fmt.Errorf("operating point: %w", err)
	}
	return &OperatingPoint{sys: sys}, nil
}

func (op *OperatingPoint) Solve() error {
	status := &device.Status{
		Mode: device.OperatingPointAnalysis,
		Gmin: 1e-12,
	}
	sol, err := op.sys.solveOnce(status)
	if err != nil {
		return fmt.Errorf("operating point: %w", err)
	}
	op.solution = sol
	return nil
}

// NodeVoltage returns 0 for ground and for out-of-range nodes.
func (op *OperatingPoint) NodeVoltage(k int) float64 {
	if op.solution == nil {
		return 0
	}
	return op.sys.nodeVoltage(op.solution, k)
}

// SourceCurrent returns the branch current through a voltage source,
// or 0 when the name is unknown.
func (op *OperatingPoint) SourceCurrent(name string) float64 {
	if op.solution == nil {
		return 0
	}
	return op.sys.sourceCurrent(op.solution, name)
}

// SourceNames lists the voltage sources in first-seen order.
func (op *OperatingPoint) SourceNames() []string {
	return op.sys.sources
}

func (op *OperatingPoint) NumNodes() int { return op.sys.numNodes }
