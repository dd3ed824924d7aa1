package analysis

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// WriteCSV emits the transient log: a Time,Node1..NodeM header, then
// one row per time point with the time in scientific notation and the
// node voltages in fixed notation.
func (tr *Transient) WriteCSV(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprint(bw, "Time")
	for k := 1; k < tr.sys.numNodes; k++ {
		fmt.Fprintf(bw, ",Node%d", k)
	}
	fmt.Fprintln(bw)

	for _, p := range tr.points {
		fmt.Fprintf(bw, "%e", p.Time)
		for k := 1; k < tr.sys.numNodes; k++ {
			fmt.Fprintf(bw, ",%.6f", p.NodeVoltages[k])
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

func (tr *Transient) ExportCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("exporting results: %w", err)
	}
	defer f.Close()

	if err := tr.WriteCSV(f); err != nil {
		return fmt.Errorf("exporting results: %w", err)
	}
	return nil
}

// SavePlot renders the waveforms of the given nodes (all non-ground
// nodes when none are named) to an image file.
func (tr *Transient) SavePlot(path string, nodes ...int) error {
	if len(nodes) == 0 {
		for k := 1; k < tr.sys.numNodes; k++ {
			nodes = append(nodes, k)
		}
	}

	p := plot.New()
	p.Title.Text = "Transient Response"
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = "V (V)"

	args := make([]interface{}, 0, 2*len(nodes))
	for _, k := range nodes {
		pts := make(plotter.XYs, len(tr.points))
		for i, tp := range tr.points {
			pts[i].X = tp.Time
			if k > 0 && k < len(tp.NodeVoltages) {
				pts[i].Y = tp.NodeVoltages[k]
			}
		}
		args = append(args, fmt.Sprintf("V(%d)", k), pts)
	}

	if err := plotutil.AddLinePoints(p, args...); err != nil {
		return fmt.Errorf("plotting waveforms: %w", err)
	}
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("plotting waveforms: %w", err)
	}
	return nil
}
