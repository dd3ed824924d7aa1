// Package analysis builds and solves the MNA system for a borrowed
// device list: DC operating point and backward-Euler transient.
package analysis

import (
	"fmt"
	"log"

	"github.com/biancanev/SemiconductorDesign/pkg/device"
	"github.com/biancanev/SemiconductorDesign/pkg/matrix"
)

// system is the shared MNA scaffolding. Node k maps to matrix row k
// (1-based; ground is dropped), voltage-source branch rows follow in
// first-seen order.
type system struct {
	elements   []device.Device
	numNodes   int
	mat        *matrix.CircuitMatrix
	sourceRows map[string]int
	sources    []string
}

func newSystem(elements []device.Device, numNodes int) (*system, error) {
	if len(elements) == 0 || numNodes < 1 {
		return nil, fmt.Errorf("empty circuit")
	}

	s := &system{
		elements:   elements,
		numNodes:   numNodes,
		sourceRows: make(map[string]int),
	}

	for _, dev := range elements {
		switch d := dev.(type) {
		case *device.VoltageSource:
			row := (numNodes - 1) + len(s.sources) + 1
			s.sourceRows[d.GetName()] = row
			s.sources = append(s.sources, d.GetName())
			d.SetBranchIndex(row)
		case *device.Mosfet:
			if d.Polarity == "pmos" {
				log.Printf("%s: using simplified PMOS model", d.GetName())
			}
		case *device.BJT, *device.OpAmp:
			log.Printf("%s: device type %s not supported by the engine, skipped", dev.GetName(), dev.GetType())
		}
	}

	size := (numNodes - 1) + len(s.sources)
	if size == 0 {
		return nil, fmt.Errorf("empty circuit: no unknowns")
	}
	s.mat = matrix.NewMatrix(size)

	return s, nil
}

// build clears and restamps the system for one solve.
func (s *system) build(status *device.Status) error {
	s.mat.Clear()
	for _, dev := range s.elements {
		if err := dev.Stamp(s.mat, status); err != nil {
			return fmt.Errorf("stamping %s: %w", dev.GetName(), err)
		}
	}
	return nil
}

// solveOnce builds and solves a DC-style system and returns a copy of
// the 1-based solution vector.
func (s *system) solveOnce(status *device.Status) ([]float64, error) {
	if err := s.build(status); err != nil {
		return nil, err
	}
	if err := s.mat.Solve(); err != nil {
		return nil, err
	}
	sol := make([]float64, len(s.mat.Solution()))
	copy(sol, s.mat.Solution())
	return sol, nil
}

func (s *system) nodeVoltage(solution []float64, k int) float64 {
	if k <= 0 || k >= s.numNodes || k >= len(solution) {
		return 0
	}
	return solution[k]
}

func (s *system) sourceCurrent(solution []float64, name string) float64 {
	row, ok := s.sourceRows[name]
	if !ok || row >= len(solution) {
		return 0
	}
	return solution[row]
}
