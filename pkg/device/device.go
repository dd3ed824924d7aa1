package device

import (
	"fmt"
	"strings"

	"github.com/biancanev/SemiconductorDesign/pkg/matrix"
	"github.com/biancanev/SemiconductorDesign/pkg/util"
)

// Node id conventions: -1 unconnected, 0 ground, >= 1 an allocated net.
const Unconnected = -1

type AnalysisMode int

const (
	OperatingPointAnalysis AnalysisMode = iota
	TransientAnalysis
)

// Status carries the per-build analysis context into device stamps.
// Prev is the previous step's solution vector (1-based by matrix row);
// it is nil outside transient analysis.
type Status struct {
	Mode     AnalysisMode
	Time     float64
	TimeStep float64
	Gmin     float64
	Prev     []float64
}

// Pin is a named terminal with an offset relative to the component origin.
type Pin struct {
	Name    string
	OffsetX float64
	OffsetY float64
	NodeID  int
}

type Device interface {
	GetName() string
	GetType() string
	PinCount() int
	PinName(i int) string
	PinOffset(i int) (float64, float64)
	PinPosition(i int) (float64, float64)
	NodeForPin(i int) int
	SetNodeForPin(i, id int) error
	GetValue() float64
	ValueString() string
	SetValue(s string) error
	SpiceLine() string
	IsFullyConnected() bool
	UnconnectedPinCount() int
	Stamp(m *matrix.CircuitMatrix, status *Status) error
}

// TimeDependent devices carry state between transient steps.
type TimeDependent interface {
	UpdateState(solution []float64, status *Status)
	ResetState()
}

type BaseDevice struct {
	Name     string
	X, Y     float64
	Rotation int // degrees, multiples of 90
	Pins     []Pin
	Value    float64
}

func newBase(name string, value float64, pins []Pin) BaseDevice {
	for i := range pins {
		pins[i].NodeID = Unconnected
	}
	return BaseDevice{Name: name, Value: value, Pins: pins}
}

func (d *BaseDevice) GetName() string { return d.Name }

func (d *BaseDevice) PinCount() int { return len(d.Pins) }

func (d *BaseDevice) PinName(i int) string {
	if i < 0 || i >= len(d.Pins) {
		return ""
	}
	return d.Pins[i].Name
}

// PinOffset returns the pin offset rotated by the component rotation.
func (d *BaseDevice) PinOffset(i int) (float64, float64) {
	if i < 0 || i >= len(d.Pins) {
		return 0, 0
	}
	x, y := d.Pins[i].OffsetX, d.Pins[i].OffsetY
	switch ((d.Rotation % 360) + 360) % 360 {
	case 90:
		return -y, x
	case 180:
		return -x, -y
	case 270:
		return y, -x
	default:
		return x, y
	}
}

// PinPosition returns the pin location in world coordinates.
func (d *BaseDevice) PinPosition(i int) (float64, float64) {
	ox, oy := d.PinOffset(i)
	return d.X + ox, d.Y + oy
}

func (d *BaseDevice) NodeForPin(i int) int {
	if i < 0 || i >= len(d.Pins) {
		return Unconnected
	}
	return d.Pins[i].NodeID
}

func (d *BaseDevice) SetNodeForPin(i, id int) error {
	if i < 0 || i >= len(d.Pins) {
		return fmt.Errorf("%s: pin index %d out of range", d.Name, i)
	}
	d.Pins[i].NodeID = id
	return nil
}

func (d *BaseDevice) SetPosition(x, y float64) {
	d.X, d.Y = x, y
}

// SetRotation truncates toward zero to a multiple of 90 degrees and
// normalizes into [0, 360). The pin sequence and SPICE order are
// unaffected; only offsets rotate.
func (d *BaseDevice) SetRotation(deg int) {
	d.Rotation = ((deg/90)*90%360 + 360) % 360
}

func (d *BaseDevice) GetValue() float64 { return d.Value }

func (d *BaseDevice) ValueString() string { return util.FormatEngineering(d.Value) }

func (d *BaseDevice) SetValue(s string) error {
	v, err := util.ParseValue(s)
	if err != nil {
		return err
	}
	d.Value = v
	return nil
}

func (d *BaseDevice) IsFullyConnected() bool { return d.UnconnectedPinCount() == 0 }

func (d *BaseDevice) UnconnectedPinCount() int {
	n := 0
	for i := range d.Pins {
		if d.Pins[i].NodeID == Unconnected {
			n++
		}
	}
	return n
}

// nodeFields renders the pin node ids in SPICE-line order.
func (d *BaseDevice) nodeFields() string {
	var sb strings.Builder
	for i := range d.Pins {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", d.Pins[i].NodeID)
	}
	return sb.String()
}

// prevVoltage reads a node voltage out of the previous transient solution.
func prevVoltage(status *Status, node int) float64 {
	if node <= 0 || status == nil || node >= len(status.Prev) {
		return 0
	}
	return status.Prev[node]
}

// stampConductance adds the classic two-terminal conductance stamp.
// Ground pins fall out naturally through the matrix index guard.
func stampConductance(m *matrix.CircuitMatrix, n1, n2 int, g float64) {
	m.AddElement(n1, n1, g)
	m.AddElement(n2, n2, g)
	m.AddElement(n1, n2, -g)
	m.AddElement(n2, n1, -g)
}

func twoPins() []Pin {
	return []Pin{
		{Name: "pin1", OffsetX: -30},
		{Name: "pin2", OffsetX: 30},
	}
}
