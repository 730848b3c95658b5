package mesh

// Rotation is an axis permutation with sign flips. Output axis i takes the
// value of input axis Axes[i] multiplied by Signs[i].
//
// Only the 24 proper rotations (determinant +1) are ever constructed here;
// mirror images are not part of the set.
type Rotation struct {
	Axes  [3]int
	Signs [3]int
}

// IdentityRotation is the index of the identity in Rotations.
const IdentityRotation = 0

// RotationCount is the number of axis-aligned rotations of 3D space.
const RotationCount = 24

const (
	axisX = iota
	axisY
	axisZ
)

func rot(ax, sx, ay, sy, az, sz int) Rotation {
	return Rotation{Axes: [3]int{ax, ay, az}, Signs: [3]int{sx, sy, sz}}
}

// Rotations lists every orientation a scanner can have, in the canonical
// order alignment tries them. The comment on each entry shows the image of
// (x, y, z).
var Rotations = [RotationCount]Rotation{
	rot(axisX, 1, axisY, 1, axisZ, 1),    // ( x,  y,  z)
	rot(axisX, 1, axisY, -1, axisZ, -1),  // ( x, -y, -z)
	rot(axisX, 1, axisZ, -1, axisY, 1),   // ( x, -z,  y)
	rot(axisX, 1, axisZ, 1, axisY, -1),   // ( x,  z, -y)
	rot(axisX, -1, axisY, -1, axisZ, 1),  // (-x, -y,  z)
	rot(axisX, -1, axisZ, -1, axisY, -1), // (-x, -z, -y)
	rot(axisX, -1, axisY, 1, axisZ, -1),  // (-x,  y, -z)
	rot(axisX, -1, axisZ, 1, axisY, 1),   // (-x,  z,  y)
	rot(axisY, 1, axisZ, 1, axisX, 1),    // ( y,  z,  x)
	rot(axisY, 1, axisX, -1, axisZ, 1),   // ( y, -x,  z)
	rot(axisY, 1, axisZ, -1, axisX, -1),  // ( y, -z, -x)
	rot(axisY, 1, axisX, 1, axisZ, -1),   // ( y,  x, -z)
	rot(axisY, -1, axisX, 1, axisZ, 1),   // (-y,  x,  z)
	rot(axisY, -1, axisZ, -1, axisX, 1),  // (-y, -z,  x)
	rot(axisY, -1, axisX, -1, axisZ, -1), // (-y, -x, -z)
	rot(axisY, -1, axisZ, 1, axisX, -1),  // (-y,  z, -x)
	rot(axisZ, 1, axisX, 1, axisY, 1),    // ( z,  x,  y)
	rot(axisZ, 1, axisY, 1, axisX, -1),   // ( z,  y, -x)
	rot(axisZ, 1, axisX, -1, axisY, -1),  // ( z, -x, -y)
	rot(axisZ, 1, axisY, -1, axisX, 1),   // ( z, -y,  x)
	rot(axisZ, -1, axisY, 1, axisX, 1),   // (-z,  y,  x)
	rot(axisZ, -1, axisX, 1, axisY, -1),  // (-z,  x, -y)
	rot(axisZ, -1, axisY, -1, axisX, -1), // (-z, -y, -x)
	rot(axisZ, -1, axisX, -1, axisY, 1),  // (-z, -x,  y)
}

// Apply rotates p.
func (r Rotation) Apply(p Point) Point {
	in := [3]int{p.X, p.Y, p.Z}
	return Point{
		X: r.Signs[0] * in[r.Axes[0]],
		Y: r.Signs[1] * in[r.Axes[1]],
		Z: r.Signs[2] * in[r.Axes[2]],
	}
}

// Inverse returns the rotation that undoes r.
func (r Rotation) Inverse() Rotation {
	var inv Rotation
	for i := 0; i < 3; i++ {
		inv.Axes[r.Axes[i]] = i
		inv.Signs[r.Axes[i]] = r.Signs[i]
	}
	return inv
}

// Compose returns the rotation equivalent to applying other first, then r.
func (r Rotation) Compose(other Rotation) Rotation {
	var c Rotation
	for i := 0; i < 3; i++ {
		c.Axes[i] = other.Axes[r.Axes[i]]
		c.Signs[i] = r.Signs[i] * other.Signs[r.Axes[i]]
	}
	return c
}

// Matrix returns the rotation as a row-major 3x3 matrix.
func (r Rotation) Matrix() [3][3]int {
	var m [3][3]int
	for i := 0; i < 3; i++ {
		m[i][r.Axes[i]] = r.Signs[i]
	}
	return m
}

// RotationIndex returns the position of r in Rotations.
func RotationIndex(r Rotation) (int, bool) {
	for i, candidate := range Rotations {
		if candidate == r {
			return i, true
		}
	}
	return 0, false
}

// RotatePoints applies the rotation at index rotation to every point and then
// translates by offset.
func RotatePoints(points []Point, rotation int, offset Point) []Point {
	r := Rotations[rotation]
	result := make([]Point, len(points))
	for i, p := range points {
		result[i] = r.Apply(p).Add(offset)
	}
	return result
}
