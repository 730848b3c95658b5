package mesh

import (
	"fmt"
	"sort"
)

// Point is an integer 3D coordinate. It is comparable and safe to use as a
// map key; equality is exact.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Origin is the global frame origin; the first scanner is fixed here.
var Origin = Point{}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Less orders points lexicographically by X, then Y, then Z.
func (p Point) Less(q Point) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.Z < q.Z
}

func (p Point) String() string {
	return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Z)
}

// ManhattanDistance returns |dx| + |dy| + |dz| between two points.
func ManhattanDistance(a, b Point) int {
	d := a.Sub(b)
	return abs(d.X) + abs(d.Y) + abs(d.Z)
}

// SortPoints sorts points in place using Point.Less.
func SortPoints(points []Point) {
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })
}

// uniquePoints returns the points with duplicates removed, keeping the first
// occurrence of each.
func uniquePoints(points []Point) []Point {
	seen := make(map[Point]struct{}, len(points))
	result := make([]Point, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		result = append(result, p)
	}
	return result
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
