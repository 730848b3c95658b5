package mesh

// DisplacementIndex maps every rotated form of every displacement between two
// of a scanner's points to the tail point of that displacement.
//
// Two scanners that see the same pair of beacons record displacements that
// differ by exactly one unknown rotation. Storing all 24 rotated forms on
// both sides guarantees the shared vector shows up as a common key whatever
// that rotation is.
type DisplacementIndex struct {
	anchors map[Point]Point
	// ambiguous holds keys produced by more than one anchor within the same
	// scanner; such keys cannot identify a correspondence.
	ambiguous map[Point]struct{}
}

// BuildDisplacementIndex indexes the displacement q-p for every ordered pair
// of distinct points, under each of the 24 rotations, anchored at p.
// Fewer than two points yield an empty index.
func BuildDisplacementIndex(points []Point) *DisplacementIndex {
	pairs := len(points) * (len(points) - 1)
	if pairs < 0 {
		pairs = 0
	}
	idx := &DisplacementIndex{
		anchors:   make(map[Point]Point, pairs*RotationCount),
		ambiguous: make(map[Point]struct{}),
	}

	for i, p := range points {
		for j, q := range points {
			if i == j {
				continue
			}
			d := q.Sub(p)
			for _, r := range Rotations {
				idx.insert(r.Apply(d), p)
			}
		}
	}

	return idx
}

func (idx *DisplacementIndex) insert(key, anchor Point) {
	if _, bad := idx.ambiguous[key]; bad {
		return
	}
	if existing, ok := idx.anchors[key]; ok {
		if existing != anchor {
			delete(idx.anchors, key)
			idx.ambiguous[key] = struct{}{}
		}
		return
	}
	idx.anchors[key] = anchor
}

// Lookup returns the anchor stored for key. Ambiguous keys are reported as
// absent.
func (idx *DisplacementIndex) Lookup(key Point) (Point, bool) {
	p, ok := idx.anchors[key]
	return p, ok
}

// Len returns the number of usable keys.
func (idx *DisplacementIndex) Len() int {
	return len(idx.anchors)
}

// Ambiguous returns the number of keys dropped because two anchors produced
// them.
func (idx *DisplacementIndex) Ambiguous() int {
	return len(idx.ambiguous)
}

// Keys returns the usable keys in sorted order.
func (idx *DisplacementIndex) Keys() []Point {
	keys := make([]Point, 0, len(idx.anchors))
	for k := range idx.anchors {
		keys = append(keys, k)
	}
	SortPoints(keys)
	return keys
}
