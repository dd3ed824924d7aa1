package matrix

import (
	"errors"
	"math"
	"testing"
)

func TestSolveTwoByTwo(t *testing.T) {
	// 2x + y = 5, x + 3y = 10 -> x = 1, y = 3
	m := NewMatrix(2)
	m.AddElement(1, 1, 2)
	m.AddElement(1, 2, 1)
	m.AddElement(2, 1, 1)
	m.AddElement(2, 2, 3)
	m.AddRHS(1, 5)
	m.AddRHS(2, 10)

	if err := m.Solve(); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	sol := m.Solution()
	if math.Abs(sol[1]-1) > 1e-12 || math.Abs(sol[2]-3) > 1e-12 {
		t.Errorf("solution = %v, want [_, 1, 3]", sol)
	}
}

func TestSolveNeedsPivoting(t *testing.T) {
	// Zero on the first diagonal entry; only row exchange can solve it.
	m := NewMatrix(2)
	m.AddElement(1, 2, 1)
	m.AddElement(2, 1, 1)
	m.AddRHS(1, 7)
	m.AddRHS(2, 4)

	if err := m.Solve(); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	sol := m.Solution()
	if math.Abs(sol[1]-4) > 1e-12 || math.Abs(sol[2]-7) > 1e-12 {
		t.Errorf("solution = %v, want [_, 4, 7]", sol)
	}
}

func TestSolveSingular(t *testing.T) {
	m := NewMatrix(2)
	m.AddElement(1, 1, 1)
	m.AddElement(1, 2, 1)
	m.AddElement(2, 1, 1)
	m.AddElement(2, 2, 1)
	m.AddRHS(1, 1)

	if err := m.Solve(); !errors.Is(err, ErrSingular) {
		t.Errorf("want ErrSingular, got %v", err)
	}
}

func TestGroundIndexDropped(t *testing.T) {
	m := NewMatrix(1)
	// Stamps against row/column 0 must vanish, diagonal term survives.
	m.AddElement(1, 1, 2)
	m.AddElement(1, 0, -2)
	m.AddElement(0, 1, -2)
	m.AddElement(0, 0, 2)
	m.AddRHS(0, 99)
	m.AddRHS(1, 4)

	if err := m.Solve(); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if got := m.Solution()[1]; math.Abs(got-2) > 1e-12 {
		t.Errorf("solution[1] = %g, want 2", got)
	}
}

func TestRepeatedSolveIdentical(t *testing.T) {
	stamp := func(m *CircuitMatrix) {
		m.AddElement(1, 1, 1.5)
		m.AddElement(1, 2, -0.5)
		m.AddElement(2, 1, -0.5)
		m.AddElement(2, 2, 0.75)
		m.AddRHS(1, 1)
		m.AddRHS(2, 2)
	}

	m := NewMatrix(2)
	stamp(m)
	if err := m.Solve(); err != nil {
		t.Fatalf("Solve: %v", err)
	}
	first := append([]float64(nil), m.Solution()...)

	m.Clear()
	stamp(m)
	if err := m.Solve(); err != nil {
		t.Fatalf("second Solve: %v", err)
	}
	for i, v := range m.Solution() {
		if v != first[i] {
			t.Errorf("solution[%d] changed between solves: %g vs %g", i, first[i], v)
		}
	}
}
