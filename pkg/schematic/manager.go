// Package schematic owns the editing-session connectivity model:
// components, wires, junctions, and the node-id table.
package schematic

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/biancanev/SemiconductorDesign/pkg/device"
)

const (
	pinTolerance      = 8.0
	wireTolerance     = 8.0
	junctionTolerance = 2.0
)

// Manager holds the circuit being edited. Components are addressed by
// stable slice indices; wires and junctions live in id-keyed maps so
// junction incidence lists survive wire removal.
type Manager struct {
	components []device.Device
	wires      map[int]*Wire
	junctions  map[int]*Junction

	counters   map[string]int
	usedNodes  map[int]struct{}
	nextNodeID int

	nextWireID     int
	nextJunctionID int
}

func New() *Manager {
	m := &Manager{}
	m.Clear()
	return m
}

// Clear drops every component, wire, and junction and resets the node
// table to just ground.
func (m *Manager) Clear() {
	m.components = nil
	m.wires = make(map[int]*Wire)
	m.junctions = make(map[int]*Junction)
	m.counters = make(map[string]int)
	m.usedNodes = map[int]struct{}{0: {}}
	m.nextNodeID = 1
	m.nextWireID = 1
	m.nextJunctionID = 1
}

var typePrefixes = map[string]string{
	"resistor":  "R",
	"capacitor": "C",
	"inductor":  "L",
	"vsource":   "V",
	"isource":   "I",
	"diode":     "D",
	"nmosfet":   "M",
	"pmosfet":   "M",
	"npn":       "Q",
	"opamp":     "U",
	"ground":    "GND",
}

// AddComponent allocates a name for the type, constructs the component
// at the position, and returns its handle. Unknown types return -1.
func (m *Manager) AddComponent(typ string, x, y float64) int {
	prefix, ok := typePrefixes[typ]
	if !ok {
		log.Printf("unknown component type: %s", typ)
		return -1
	}
	m.counters[prefix]++
	name := fmt.Sprintf("%s%d", prefix, m.counters[prefix])

	var dev device.Device
	switch typ {
	case "resistor":
		dev = device.NewResistor(name, 1000.0)
	case "capacitor":
		dev = device.NewCapacitor(name, 1e-6)
	case "inductor":
		dev = device.NewInductor(name, 1e-6)
	case "vsource":
		dev = device.NewVoltageSource(name, 5.0)
	case "isource":
		dev = device.NewCurrentSource(name, 1e-3)
	case "diode":
		dev = device.NewDiode(name, "D")
	case "nmosfet":
		dev = device.NewNMOSFET(name, "NMOS")
	case "pmosfet":
		dev = device.NewPMOSFET(name, "PMOS")
	case "npn":
		dev = device.NewBJT(name, "NPN")
	case "opamp":
		dev = device.NewOpAmp(name, "IDEAL")
	case "ground":
		dev = device.NewGround(name)
	}

	type positioner interface{ SetPosition(x, y float64) }
	dev.(positioner).SetPosition(x, y)

	m.components = append(m.components, dev)
	return len(m.components) - 1
}

func (m *Manager) Component(handle int) device.Device {
	if handle < 0 || handle >= len(m.components) {
		return nil
	}
	return m.components[handle]
}

func (m *Manager) Components() []device.Device { return m.components }

func (m *Manager) Wire(id int) *Wire { return m.wires[id] }

// WireIDs returns the wire ids in ascending order.
func (m *Manager) WireIDs() []int {
	ids := maps.Keys(m.wires)
	sort.Ints(ids)
	return ids
}

func (m *Manager) Junctions() []*Junction {
	ids := maps.Keys(m.junctions)
	sort.Ints(ids)
	js := make([]*Junction, 0, len(ids))
	for _, id := range ids {
		js = append(js, m.junctions[id])
	}
	return js
}

// UsedNodes returns a copy of the node-id set.
func (m *Manager) UsedNodes() map[int]struct{} {
	out := make(map[int]struct{}, len(m.usedNodes))
	for id := range m.usedNodes {
		out[id] = struct{}{}
	}
	return out
}

func (m *Manager) NextNodeID() int { return m.nextNodeID }

// FindPinAt returns the first pin within tolerance of the position.
func (m *Manager) FindPinAt(x, y float64) (int, int, bool) {
	p := Point{X: x, Y: y}
	for ci, dev := range m.components {
		for pi := 0; pi < dev.PinCount(); pi++ {
			px, py := dev.PinPosition(pi)
			if dist(p, Point{X: px, Y: py}) <= pinTolerance {
				return ci, pi, true
			}
		}
	}
	return -1, -1, false
}

func (m *Manager) allocNode() int {
	id := m.nextNodeID
	m.nextNodeID++
	m.usedNodes[id] = struct{}{}
	return id
}

// relabel rewrites every pin, wire, and junction carrying old onto id
// and erases old from the node set. Freed ids are never reallocated.
func (m *Manager) relabel(old, id int) {
	if old == id {
		return
	}
	for _, dev := range m.components {
		for pi := 0; pi < dev.PinCount(); pi++ {
			if dev.NodeForPin(pi) == old {
				dev.SetNodeForPin(pi, id)
			}
		}
	}
	for _, w := range m.wires {
		if w.NodeID == old {
			w.NodeID = id
		}
	}
	for _, j := range m.junctions {
		if j.NodeID == old {
			j.NodeID = id
		}
	}
	delete(m.usedNodes, old)
	m.usedNodes[id] = struct{}{}
}

func (m *Manager) pinPosition(c, p int) Point {
	x, y := m.components[c].PinPosition(p)
	return Point{X: x, Y: y}
}

func (m *Manager) addWire(a, b Endpoint, node int, path []Point) *Wire {
	w := &Wire{ID: m.nextWireID, A: a, B: b, NodeID: node, Path: path}
	m.nextWireID++
	m.wires[w.ID] = w
	return w
}

func (m *Manager) validHandle(c, p int) bool {
	if c < 0 || c >= len(m.components) {
		return false
	}
	return p >= 0 && p < m.components[c].PinCount()
}

// ConnectPins joins two pins with a wire, allocating, reusing, or
// merging node ids as needed. Ground symbols delegate to
// ConnectToGround. Returns false on soft refusal.
func (m *Manager) ConnectPins(c1, p1, c2, p2 int, waypoints []Point) bool {
	if !m.validHandle(c1, p1) || !m.validHandle(c2, p2) || c1 == c2 {
		return false
	}

	if m.components[c1].GetType() == "ground" {
		return m.ConnectToGround(c2, p2, c1, p1, waypoints)
	}
	if m.components[c2].GetType() == "ground" {
		return m.ConnectToGround(c1, p1, c2, p2, waypoints)
	}

	a := m.components[c1].NodeForPin(p1)
	b := m.components[c2].NodeForPin(p2)

	var node int
	switch {
	case a == device.Unconnected && b == device.Unconnected:
		node = m.allocNode()
	case a != device.Unconnected && b == device.Unconnected:
		node = a
	case a == device.Unconnected && b != device.Unconnected:
		node = b
	case a == b:
		return false // already joined
	default:
		// Merge: the first argument's node survives.
		node = a
		m.relabel(b, a)
	}

	m.components[c1].SetNodeForPin(p1, node)
	m.components[c2].SetNodeForPin(p2, node)

	path := append([]Point{m.pinPosition(c1, p1)}, waypoints...)
	path = append(path, m.pinPosition(c2, p2))
	m.addWire(pinEnd(c1, p1), pinEnd(c2, p2), node, path)

	return true
}

// ConnectToGround wires a pin to a ground symbol, relabeling the pin's
// whole node to 0. Idempotent on already-grounded pins.
func (m *Manager) ConnectToGround(c, p, ground, gp int, waypoints []Point) bool {
	if !m.validHandle(c, p) || !m.validHandle(ground, gp) {
		return false
	}

	current := m.components[c].NodeForPin(p)
	if current == 0 {
		return false
	}

	if current != device.Unconnected {
		m.relabel(current, 0)
	} else {
		m.components[c].SetNodeForPin(p, 0)
	}
	m.components[ground].SetNodeForPin(gp, 0)

	path := append([]Point{m.pinPosition(c, p)}, waypoints...)
	path = append(path, m.pinPosition(ground, gp))
	m.addWire(pinEnd(c, p), pinEnd(ground, gp), 0, path)

	return true
}

// FindWireAt returns the wire nearest the position within tolerance,
// along with the snapped point on it. Lowest wire id wins ties.
func (m *Manager) FindWireAt(x, y float64) (int, Point, bool) {
	p := Point{X: x, Y: y}
	bestID, bestPt, bestDist, found := 0, Point{}, 0.0, false
	for _, id := range m.WireIDs() {
		if _, q, d := closestSegment(m.wires[id].Path, p); d <= wireTolerance && (!found || d < bestDist) {
			bestID, bestPt, bestDist, found = id, q, d, true
		}
	}
	return bestID, bestPt, found
}

// ConnectToWire splits a wire at a tap point: the original wire is
// replaced by source-to-junction and junction-to-sink wires plus a
// third wire from the pin to the junction.
func (m *Manager) ConnectToWire(c, p, wireID int, jx, jy float64) bool {
	w, ok := m.wires[wireID]
	if !ok || !m.validHandle(c, p) {
		return false
	}

	seg, q, _ := closestSegment(w.Path, Point{X: jx, Y: jy})
	if seg < 0 {
		return false
	}

	pinNode := m.components[c].NodeForPin(p)
	grounded := w.NodeID == 0 || pinNode == 0 || m.components[c].GetType() == "ground"

	var node int
	if grounded {
		node = 0
		if w.NodeID > 0 {
			m.relabel(w.NodeID, 0)
		}
		if pinNode > 0 {
			m.relabel(pinNode, 0)
		}
	} else {
		node = w.NodeID
		if pinNode != device.Unconnected && pinNode != node {
			m.relabel(pinNode, node)
		}
	}

	// Reuse a coincident junction if one exists at the snap point.
	var j *Junction
	for _, cand := range m.Junctions() {
		if dist(cand.At, q) <= junctionTolerance {
			j = cand
			q = cand.At
			break
		}
	}
	if j == nil {
		j = &Junction{ID: m.nextJunctionID, At: q}
		m.nextJunctionID++
		m.junctions[j.ID] = j
	}

	delete(m.wires, w.ID)

	pathA := append(append([]Point{}, w.Path[:seg+1]...), q)
	pathB := append([]Point{q}, w.Path[seg+1:]...)

	w1 := m.addWire(w.A, junctionEnd(j.ID), node, pathA)
	w2 := m.addWire(junctionEnd(j.ID), w.B, node, pathB)
	w3 := m.addWire(pinEnd(c, p), junctionEnd(j.ID), node, []Point{m.pinPosition(c, p), q})

	j.NodeID = node
	j.Wires = append(j.Wires, w1.ID, w2.ID, w3.ID)
	m.retargetJunction(w.A, w.ID, w1.ID)
	m.retargetJunction(w.B, w.ID, w2.ID)

	m.components[c].SetNodeForPin(p, node)
	return true
}

// retargetJunction rewrites the incidence list of the junction an old
// wire terminated on, if any.
func (m *Manager) retargetJunction(end Endpoint, oldWire, newWire int) {
	if end.Junction < 0 {
		return
	}
	j, ok := m.junctions[end.Junction]
	if !ok {
		return
	}
	for i, id := range j.Wires {
		if id == oldWire {
			j.Wires[i] = newWire
		}
	}
}

// GenerateNetlist renders the circuit as a SPICE deck. Ground symbols
// are omitted; components with open pins become comments.
func (m *Manager) GenerateNetlist() string {
	var sb strings.Builder
	sb.WriteString("* Generated SPICE Netlist\n")

	for _, dev := range m.components {
		if dev.GetType() == "ground" {
			continue
		}
		if dev.IsFullyConnected() {
			if line := dev.SpiceLine(); line != "" {
				sb.WriteString(line)
				sb.WriteByte('\n')
			}
		} else {
			fmt.Fprintf(&sb, "* %s not fully connected (%d unconnected pins)\n",
				dev.GetName(), dev.UnconnectedPinCount())
		}
	}

	sb.WriteString(".end\n")
	return sb.String()
}

func (m *Manager) HasGroundReference() bool {
	for _, dev := range m.components {
		for pi := 0; pi < dev.PinCount(); pi++ {
			if dev.NodeForPin(pi) == 0 {
				return true
			}
		}
	}
	return false
}

// Validate returns advisory findings; none of them block an analysis.
func (m *Manager) Validate() []string {
	var errs []string

	if len(m.components) == 0 {
		errs = append(errs, "No components")
		return errs
	}

	if !m.HasGroundReference() {
		errs = append(errs, "Circuit has no ground reference")
	}

	for _, dev := range m.components {
		if dev.GetType() == "ground" {
			continue
		}
		if n := dev.UnconnectedPinCount(); n > 0 {
			errs = append(errs, fmt.Sprintf("%s has %d unconnected pins", dev.GetName(), n))
		}
	}

	hasSource := false
	for _, dev := range m.components {
		if dev.GetType() == "vsource" && dev.IsFullyConnected() {
			hasSource = true
			break
		}
	}
	if !hasSource {
		errs = append(errs, "No connected voltage source found")
	}

	return errs
}
