package matrix

import (
	"errors"
	"fmt"

	"github.com/biancanev/SemiconductorDesign/pkg/util"
)

// PivotThreshold is the smallest pivot magnitude Gaussian elimination will
// accept before declaring the system singular.
const PivotThreshold = 1e-12

// ErrSingular reports that elimination could not find a usable pivot.
var ErrSingular = errors.New("singular matrix")

// CircuitMatrix is the dense MNA system G·x = b. Rows and columns are
// 1-based: row k is node k for k < numNodes, voltage-source branch rows
// follow. Index 0 is ground and stamps against it are dropped, so device
// stamp code never special-cases the matrix side of a grounded pin.
type CircuitMatrix struct {
	Size     int
	g        [][]float64
	rhs      []float64
	solution []float64
}

func NewMatrix(size int) *CircuitMatrix {
	g := make([][]float64, size)
	for i := range g {
		g[i] = make([]float64, size)
	}
	return &CircuitMatrix{
		Size:     size,
		g:        g,
		rhs:      make([]float64, size),
		solution: make([]float64, size+1), // 1-based, [0] stays 0 for ground
	}
}

func (m *CircuitMatrix) AddElement(i, j int, value float64) {
	if i <= 0 || j <= 0 {
		return // ground row/column is not part of the system
	}
	if i > m.Size || j > m.Size {
		fmt.Printf("Warning: matrix index out of bounds (i=%d, j=%d, size=%d)\n", i, j, m.Size)
		return
	}
	m.g[i-1][j-1] += value
}

func (m *CircuitMatrix) AddRHS(i int, value float64) {
	if i <= 0 {
		return
	}
	if i > m.Size {
		fmt.Printf("Warning: RHS index out of bounds (i=%d, size=%d)\n", i, m.Size)
		return
	}
	m.rhs[i-1] += value
}

func (m *CircuitMatrix) Element(i, j int) float64 {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		return 0
	}
	return m.g[i-1][j-1]
}

func (m *CircuitMatrix) RHS(i int) float64 {
	if i <= 0 || i > m.Size {
		return 0
	}
	return m.rhs[i-1]
}

func (m *CircuitMatrix) Clear() {
	for i := range m.g {
		for j := range m.g[i] {
			m.g[i][j] = 0
		}
		m.rhs[i] = 0
		m.solution[i+1] = 0
	}
}

// Solve runs Gaussian elimination with partial pivoting in place. The
// stamped system is consumed; callers re-stamp before every solve.
func (m *CircuitMatrix) Solve() error {
	n := m.Size
	if n == 0 {
		return fmt.Errorf("%w: empty system", ErrSingular)
	}

	for i := 0; i < n; i++ {
		maxRow := i
		for k := i + 1; k < n; k++ {
			if util.Abs(m.g[k][i]) > util.Abs(m.g[maxRow][i]) {
				maxRow = k
			}
		}
		if maxRow != i {
			m.g[i], m.g[maxRow] = m.g[maxRow], m.g[i]
			m.rhs[i], m.rhs[maxRow] = m.rhs[maxRow], m.rhs[i]
		}

		if util.Abs(m.g[i][i]) < PivotThreshold {
			return fmt.Errorf("%w: pivot %g at row %d", ErrSingular, m.g[i][i], i+1)
		}

		for k := i + 1; k < n; k++ {
			factor := m.g[k][i] / m.g[i][i]
			m.rhs[k] -= factor * m.rhs[i]
			for j := i; j < n; j++ {
				m.g[k][j] -= factor * m.g[i][j]
			}
		}
	}

	for i := n - 1; i >= 0; i-- {
		x := m.rhs[i]
		for j := i + 1; j < n; j++ {
			x -= m.g[i][j] * m.solution[j+1]
		}
		m.solution[i+1] = x / m.g[i][i]
	}

	return nil
}

// Solution returns the 1-based solution vector. Index 0 is ground (0.0),
// index k is node k's voltage for k < numNodes, branch currents follow.
func (m *CircuitMatrix) Solution() []float64 {
	return m.solution
}

// PrintSystem dumps the stamped equations, one row per unknown.
func (m *CircuitMatrix) PrintSystem() {
	fmt.Printf("\nCircuit Equations (%dx%d):\n", m.Size, m.Size)
	for i := 1; i <= m.Size; i++ {
		for j := 1; j <= m.Size; j++ {
			fmt.Printf("%10.4g", m.Element(i, j))
		}
		fmt.Printf(" | %10.4g\n", m.RHS(i))
	}
}
