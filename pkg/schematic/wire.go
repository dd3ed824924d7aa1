package schematic

import "math"

type Point struct {
	X, Y float64
}

// Endpoint anchors a wire end either at a component pin or at a
// junction. Component and Junction are mutually exclusive; the unused
// side is -1.
type Endpoint struct {
	Component int
	Pin       int
	Junction  int
}

func pinEnd(component, pin int) Endpoint {
	return Endpoint{Component: component, Pin: pin, Junction: -1}
}

func junctionEnd(id int) Endpoint {
	return Endpoint{Component: -1, Pin: -1, Junction: id}
}

// Wire is a polyline between two endpoints. Path always includes both
// end positions. NodeID equals the node both endpoints sit on.
type Wire struct {
	ID     int
	A, B   Endpoint
	NodeID int
	Path   []Point
}

// Junction is a point where three or more wire segments meet.
type Junction struct {
	ID     int
	At     Point
	NodeID int
	Wires  []int
}

func dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// closestPointOnSegment projects p onto the segment a-b.
func closestPointOnSegment(p, a, b Point) Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Point{X: a.X + t*dx, Y: a.Y + t*dy}
}

// closestSegment finds the path segment nearest to p. It returns the
// segment's start index, the snapped point, and the distance.
func closestSegment(path []Point, p Point) (int, Point, float64) {
	bestIdx := -1
	bestDist := math.Inf(1)
	var bestPt Point

	for i := 0; i+1 < len(path); i++ {
		q := closestPointOnSegment(p, path[i], path[i+1])
		if d := dist(p, q); d < bestDist {
			bestIdx, bestPt, bestDist = i, q, d
		}
	}
	return bestIdx, bestPt, bestDist
}
