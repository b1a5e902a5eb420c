package geom

import "math"

// Polyline is an ordered sequence of points describing a street centerline.
type Polyline []Point

// Length returns the summed length of all polyline spans.
func (l Polyline) Length() float64 {
	total := 0.0
	for i := 1; i < len(l); i++ {
		total += l[i-1].Distance(l[i])
	}
	return total
}

// ClosestPointOnSegment projects p onto the segment ab, clamped to the
// segment's endpoints. It returns the connection point and the parameter
// t in [0,1] along ab.
func ClosestPointOnSegment(p, a, b Point) (Point, float64) {
	ab := b.Sub(a)
	den := ab.Dot(ab)
	if den < 1e-12 {
		return a, 0
	}
	t := p.Sub(a).Dot(ab) / den
	t = math.Max(0, math.Min(1, t))
	return a.Lerp(b, t), t
}

// Subdivide splits the span ab into the fewest equal pieces no longer than
// maxLen and returns the interior + terminal points, a excluded. A
// non-positive maxLen yields the single point b.
func Subdivide(a, b Point, maxLen float64) []Point {
	length := a.Distance(b)
	if maxLen <= 0 || length <= maxLen {
		return []Point{b}
	}
	n := int(math.Ceil(length / maxLen))
	points := make([]Point, 0, n)
	for i := 1; i <= n; i++ {
		points = append(points, a.Lerp(b, float64(i)/float64(n)))
	}
	return points
}
