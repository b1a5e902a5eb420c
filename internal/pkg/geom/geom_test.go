package geom

import (
	"math"
	"testing"

	"gotest.tools/v3/assert"
)

func TestClosestPointOnSegment(t *testing.T) {
	a := Pt(0, 0)
	b := Pt(10, 0)

	// Perpendicular projection lands inside the segment.
	cp, tt := ClosestPointOnSegment(Pt(4, 3), a, b)
	assert.Equal(t, cp, Pt(4, 0))
	assert.Assert(t, math.Abs(tt-0.4) < 1e-12)

	// Projection beyond the end clamps to the endpoint.
	cp, tt = ClosestPointOnSegment(Pt(15, 2), a, b)
	assert.Equal(t, cp, b)
	assert.Equal(t, tt, 1.0)

	cp, tt = ClosestPointOnSegment(Pt(-3, -3), a, b)
	assert.Equal(t, cp, a)
	assert.Equal(t, tt, 0.0)

	// Degenerate segment.
	cp, _ = ClosestPointOnSegment(Pt(5, 5), a, a)
	assert.Equal(t, cp, a)
}

func TestSubdivide(t *testing.T) {
	a := Pt(0, 0)
	b := Pt(100, 0)

	points := Subdivide(a, b, 30)
	assert.Equal(t, len(points), 4)
	assert.Equal(t, points[len(points)-1], b)
	prev := a
	for _, p := range points {
		assert.Assert(t, prev.Distance(p) <= 30+1e-9)
		prev = p
	}

	// Already short enough.
	points = Subdivide(a, Pt(10, 0), 30)
	assert.Equal(t, len(points), 1)
	assert.Equal(t, points[0], Pt(10, 0))
}

func TestPolylineLength(t *testing.T) {
	l := Polyline{Pt(0, 0), Pt(3, 4), Pt(3, 14)}
	assert.Equal(t, l.Length(), 15.0)
	assert.Equal(t, Polyline{Pt(1, 1)}.Length(), 0.0)
}
