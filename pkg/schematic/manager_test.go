package schematic

import (
	"reflect"
	"strings"
	"testing"

	"github.com/biancanev/SemiconductorDesign/pkg/device"
)

// checkInvariants asserts the structural invariants that must hold
// after any sequence of connect operations: wire endpoints agree with
// their pins' nodes, the node set is exactly the image of the pin
// nodes plus ground, and no id reaches nextNodeID.
func checkInvariants(t *testing.T, m *Manager) {
	t.Helper()

	for _, id := range m.WireIDs() {
		w := m.Wire(id)
		for _, end := range []Endpoint{w.A, w.B} {
			if end.Component < 0 {
				continue
			}
			if got := m.Component(end.Component).NodeForPin(end.Pin); got != w.NodeID {
				t.Errorf("wire %d node %d, but endpoint pin carries %d", id, w.NodeID, got)
			}
		}
	}

	image := map[int]struct{}{0: {}}
	for _, dev := range m.Components() {
		for pi := 0; pi < dev.PinCount(); pi++ {
			if id := dev.NodeForPin(pi); id >= 1 {
				image[id] = struct{}{}
			}
			if id := dev.NodeForPin(pi); id >= m.NextNodeID() {
				t.Errorf("pin node %d >= nextNodeID %d", id, m.NextNodeID())
			}
		}
	}
	if !reflect.DeepEqual(m.UsedNodes(), image) {
		t.Errorf("usedNodes = %v, want %v", m.UsedNodes(), image)
	}
}

func TestAddComponentNaming(t *testing.T) {
	m := New()
	r1 := m.AddComponent("resistor", 0, 0)
	r2 := m.AddComponent("resistor", 100, 0)
	v1 := m.AddComponent("vsource", 200, 0)
	g1 := m.AddComponent("ground", 300, 0)

	if got := m.Component(r1).GetName(); got != "R1" {
		t.Errorf("first resistor = %q, want R1", got)
	}
	if got := m.Component(r2).GetName(); got != "R2" {
		t.Errorf("second resistor = %q, want R2", got)
	}
	if got := m.Component(v1).GetName(); got != "V1" {
		t.Errorf("voltage source = %q, want V1", got)
	}
	if got := m.Component(g1).GetName(); got != "GND1" {
		t.Errorf("ground = %q, want GND1", got)
	}

	if got := m.AddComponent("flux_capacitor", 0, 0); got != -1 {
		t.Errorf("unknown type returned handle %d, want -1", got)
	}
}

func TestFindPinAt(t *testing.T) {
	m := New()
	r := m.AddComponent("resistor", 100, 100)

	// pin1 sits at (70, 100); tolerance is 8 units.
	c, p, ok := m.FindPinAt(75, 103)
	if !ok || c != r || p != 0 {
		t.Errorf("FindPinAt(75,103) = (%d, %d, %v), want (%d, 0, true)", c, p, ok, r)
	}
	if _, _, ok := m.FindPinAt(75, 120); ok {
		t.Error("FindPinAt matched far from any pin")
	}
}

func TestConnectPinsAllocatesAndReuses(t *testing.T) {
	m := New()
	r1 := m.AddComponent("resistor", 0, 0)
	r2 := m.AddComponent("resistor", 100, 0)
	r3 := m.AddComponent("resistor", 200, 0)

	if !m.ConnectPins(r1, 1, r2, 0, nil) {
		t.Fatal("first connection refused")
	}
	node := m.Component(r1).NodeForPin(1)
	if node != 1 {
		t.Errorf("fresh node = %d, want 1", node)
	}

	// Second connection onto the same net reuses the id.
	if !m.ConnectPins(r2, 0, r3, 0, nil) {
		t.Fatal("second connection refused")
	}
	if got := m.Component(r3).NodeForPin(0); got != node {
		t.Errorf("reused node = %d, want %d", got, node)
	}

	// Re-connecting already-joined pins is refused.
	if m.ConnectPins(r1, 1, r2, 0, nil) {
		t.Error("connecting already-joined pins succeeded")
	}

	// Self connection is refused.
	if m.ConnectPins(r1, 0, r1, 1, nil) {
		t.Error("self connection succeeded")
	}

	checkInvariants(t, m)
}

func TestConnectPinsMergesNodes(t *testing.T) {
	m := New()
	r1 := m.AddComponent("resistor", 0, 0)
	r2 := m.AddComponent("resistor", 100, 0)
	r3 := m.AddComponent("resistor", 200, 0)
	r4 := m.AddComponent("resistor", 300, 0)

	m.ConnectPins(r1, 1, r2, 0, nil) // node 1
	m.ConnectPins(r3, 1, r4, 0, nil) // node 2

	// Bridging the two nets keeps the first argument's node.
	if !m.ConnectPins(r1, 1, r3, 1, nil) {
		t.Fatal("merge connection refused")
	}

	if got := m.Component(r1).NodeForPin(1); got != 1 {
		t.Errorf("surviving pin node = %d, want 1", got)
	}
	if got := m.Component(r3).NodeForPin(1); got != 1 {
		t.Errorf("merged pin node = %d, want 1", got)
	}
	if got := m.Component(r4).NodeForPin(0); got != 1 {
		t.Errorf("relabeled pin node = %d, want 1", got)
	}

	if _, ok := m.UsedNodes()[2]; ok {
		t.Error("losing node id 2 still in usedNodes")
	}
	if m.NextNodeID() != 3 {
		t.Errorf("nextNodeID = %d, want 3 (freed ids are never reused)", m.NextNodeID())
	}

	checkInvariants(t, m)
}

func TestGroundedNodeMerge(t *testing.T) {
	m := New()
	r1 := m.AddComponent("resistor", 0, 0)
	r2 := m.AddComponent("resistor", 100, 0)
	g := m.AddComponent("ground", 200, 0)

	m.ConnectPins(r1, 1, r2, 0, nil) // shared net
	node := m.Component(r1).NodeForPin(1)
	if node < 1 {
		t.Fatalf("setup failed, node = %d", node)
	}

	// Grounding either pin drags the whole net to node 0.
	if !m.ConnectPins(r2, 0, g, 0, nil) {
		t.Fatal("ground connection refused")
	}
	if got := m.Component(r1).NodeForPin(1); got != 0 {
		t.Errorf("far pin node = %d, want 0", got)
	}
	if got := m.Component(r2).NodeForPin(0); got != 0 {
		t.Errorf("grounded pin node = %d, want 0", got)
	}
	if _, ok := m.UsedNodes()[node]; ok {
		t.Errorf("node %d still in usedNodes after grounding", node)
	}

	checkInvariants(t, m)
}

func TestConnectToGroundIdempotent(t *testing.T) {
	m := New()
	r := m.AddComponent("resistor", 0, 0)
	g := m.AddComponent("ground", 100, 0)

	if !m.ConnectToGround(r, 0, g, 0, nil) {
		t.Fatal("first grounding refused")
	}
	wires := len(m.WireIDs())

	if m.ConnectToGround(r, 0, g, 0, nil) {
		t.Error("regrounding an already-grounded pin succeeded")
	}
	if got := len(m.WireIDs()); got != wires {
		t.Errorf("regrounding changed wire count: %d -> %d", wires, got)
	}

	checkInvariants(t, m)
}

func TestJunctionSplitPreservesPath(t *testing.T) {
	m := New()
	r1 := m.AddComponent("resistor", 0, 0)
	r2 := m.AddComponent("resistor", 400, 0)
	r3 := m.AddComponent("resistor", 200, 200)

	a := m.pinPosition(r1, 1)  // (30, 0)
	b := m.pinPosition(r2, 0)  // (370, 0)
	w1 := Point{X: 100, Y: 50} // waypoints
	w2 := Point{X: 300, Y: 50}

	if !m.ConnectPins(r1, 1, r2, 0, []Point{w1, w2}) {
		t.Fatal("wire refused")
	}
	node := m.Component(r1).NodeForPin(1)

	wireID := m.WireIDs()[0]
	// Tap onto the second segment (w1 -> w2), near (200, 50).
	if !m.ConnectToWire(r3, 0, wireID, 200, 52) {
		t.Fatal("junction split refused")
	}

	if m.Wire(wireID) != nil {
		t.Error("original wire still present after split")
	}
	ids := m.WireIDs()
	if len(ids) != 3 {
		t.Fatalf("wires after split = %d, want 3", len(ids))
	}

	js := m.Junctions()
	if len(js) != 1 {
		t.Fatalf("junctions = %d, want 1", len(js))
	}
	j := js[0]
	if len(j.Wires) != 3 {
		t.Errorf("junction wire set = %v, want 3 wires", j.Wires)
	}
	if j.NodeID != node {
		t.Errorf("junction node = %d, want %d", j.NodeID, node)
	}
	if j.At.Y != 50 {
		t.Errorf("junction snapped to %v, want on the segment (y=50)", j.At)
	}

	// Concatenated source->junction and junction->sink paths restore
	// the original endpoints and waypoints with the tap point inserted.
	wa, wb := m.Wire(ids[0]), m.Wire(ids[1])
	concat := append(append([]Point{}, wa.Path...), wb.Path[1:]...)
	want := []Point{a, w1, j.At, w2, b}
	if !reflect.DeepEqual(concat, want) {
		t.Errorf("concatenated path = %v, want %v", concat, want)
	}

	if got := m.Component(r3).NodeForPin(0); got != node {
		t.Errorf("tapping pin node = %d, want %d", got, node)
	}

	checkInvariants(t, m)
}

func TestJunctionSplitGroundWins(t *testing.T) {
	m := New()
	r1 := m.AddComponent("resistor", 0, 0)
	g := m.AddComponent("ground", 400, 0)
	r2 := m.AddComponent("resistor", 200, 200)

	if !m.ConnectToGround(r1, 1, g, 0, nil) {
		t.Fatal("ground wire refused")
	}
	wireID := m.WireIDs()[0]

	if !m.ConnectToWire(r2, 0, wireID, 200, 0) {
		t.Fatal("split refused")
	}
	if got := m.Component(r2).NodeForPin(0); got != 0 {
		t.Errorf("pin tapped onto ground wire carries node %d, want 0", got)
	}

	checkInvariants(t, m)
}

func TestFindWireAt(t *testing.T) {
	m := New()
	r1 := m.AddComponent("resistor", 0, 0)
	r2 := m.AddComponent("resistor", 400, 0)
	m.ConnectPins(r1, 1, r2, 0, nil) // straight wire y=0 from x=30 to x=370

	id, q, ok := m.FindWireAt(200, 5)
	if !ok {
		t.Fatal("FindWireAt missed the wire")
	}
	if id != m.WireIDs()[0] {
		t.Errorf("wrong wire id %d", id)
	}
	if q.X != 200 || q.Y != 0 {
		t.Errorf("snap point = %v, want (200, 0)", q)
	}

	if _, _, ok := m.FindWireAt(200, 50); ok {
		t.Error("FindWireAt matched far from the wire")
	}
}

func TestGenerateNetlist(t *testing.T) {
	m := New()
	v := m.AddComponent("vsource", 0, 0)
	r1 := m.AddComponent("resistor", 100, 0)
	r2 := m.AddComponent("resistor", 200, 0)
	g := m.AddComponent("ground", 300, 0)

	m.ConnectPins(v, 0, r1, 0, nil)
	m.ConnectPins(r1, 1, r2, 0, nil)
	m.ConnectPins(r2, 1, g, 0, nil)
	m.ConnectToGround(v, 1, g, 0, nil)

	m.Component(v).SetValue("10")
	m.Component(r1).SetValue("1k")
	m.Component(r2).SetValue("1k")

	got := m.GenerateNetlist()
	want := "* Generated SPICE Netlist\n" +
		"V1 1 0 10\n" +
		"R1 1 2 1k\n" +
		"R2 2 0 1k\n" +
		".end\n"
	if got != want {
		t.Errorf("netlist:\n%s\nwant:\n%s", got, want)
	}

	// Rotation must not disturb pin order or node ids (the netlist is
	// rotation-stable).
	type rotator interface{ SetRotation(deg int) }
	m.Component(r1).(rotator).SetRotation(90)
	if again := m.GenerateNetlist(); again != want {
		t.Errorf("netlist changed under rotation:\n%s", again)
	}
}

func TestGenerateNetlistUnconnected(t *testing.T) {
	m := New()
	m.AddComponent("resistor", 0, 0)

	got := m.GenerateNetlist()
	if !strings.Contains(got, "* R1 not fully connected (2 unconnected pins)") {
		t.Errorf("netlist missing unconnected comment:\n%s", got)
	}
}

func TestValidate(t *testing.T) {
	m := New()
	if errs := m.Validate(); len(errs) != 1 || errs[0] != "No components" {
		t.Errorf("empty circuit errors = %v", errs)
	}

	r := m.AddComponent("resistor", 0, 0)
	errs := m.Validate()
	joined := strings.Join(errs, "\n")
	for _, want := range []string{
		"Circuit has no ground reference",
		"R1 has 2 unconnected pins",
		"No connected voltage source found",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("validation missing %q in %v", want, errs)
		}
	}

	v := m.AddComponent("vsource", 100, 0)
	g := m.AddComponent("ground", 200, 0)
	m.ConnectPins(v, 0, r, 0, nil)
	m.ConnectPins(v, 1, r, 1, nil)
	m.ConnectToGround(r, 1, g, 0, nil)

	if errs := m.Validate(); len(errs) != 0 {
		t.Errorf("valid circuit reported %v", errs)
	}
}

func TestClear(t *testing.T) {
	m := New()
	r := m.AddComponent("resistor", 0, 0)
	g := m.AddComponent("ground", 100, 0)
	m.ConnectToGround(r, 0, g, 0, nil)

	m.Clear()
	if len(m.Components()) != 0 || len(m.WireIDs()) != 0 || len(m.Junctions()) != 0 {
		t.Error("Clear left circuit objects behind")
	}
	if !reflect.DeepEqual(m.UsedNodes(), map[int]struct{}{0: {}}) {
		t.Errorf("usedNodes after Clear = %v", m.UsedNodes())
	}
	if m.NextNodeID() != 1 {
		t.Errorf("nextNodeID after Clear = %d, want 1", m.NextNodeID())
	}

	// Counters restart.
	if got := m.Component(m.AddComponent("resistor", 0, 0)).GetName(); got != "R1" {
		t.Errorf("post-Clear resistor = %q, want R1", got)
	}
}

func TestGroundDelegationThroughConnectPins(t *testing.T) {
	m := New()
	r := m.AddComponent("resistor", 0, 0)
	g := m.AddComponent("ground", 100, 0)

	// Ground symbol as the first argument delegates too.
	if !m.ConnectPins(g, 0, r, 0, nil) {
		t.Fatal("ground-first connection refused")
	}
	if got := m.Component(r).NodeForPin(0); got != 0 {
		t.Errorf("pin node = %d, want 0", got)
	}
	if got := m.Component(r).NodeForPin(1); got != device.Unconnected {
		t.Errorf("other pin node = %d, want unconnected", got)
	}

	checkInvariants(t, m)
}
