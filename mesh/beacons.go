package mesh

// AssembleBeacons returns the union of the global beacon sets of every
// resolved scanner, sorted. Unresolved scanners are ignored.
func AssembleBeacons(scanners []*Scanner) []Point {
	set := make(map[Point]struct{})
	for _, s := range scanners {
		if !s.IsResolved() {
			continue
		}
		for _, p := range s.global {
			set[p] = struct{}{}
		}
	}

	beacons := make([]Point, 0, len(set))
	for p := range set {
		beacons = append(beacons, p)
	}
	SortPoints(beacons)
	return beacons
}

// CountBeacons returns the number of distinct beacons seen by the resolved
// scanners.
func CountBeacons(scanners []*Scanner) int {
	return len(AssembleBeacons(scanners))
}

// MaxScannerDistance returns the largest Manhattan distance between the
// positions of any two resolved scanners, or 0 if fewer than two are
// resolved.
func MaxScannerDistance(scanners []*Scanner) int {
	best := 0
	for i, a := range scanners {
		pa, ok := a.Position()
		if !ok {
			continue
		}
		for _, b := range scanners[i+1:] {
			pb, ok := b.Position()
			if !ok {
				continue
			}
			if d := ManhattanDistance(pa, pb); d > best {
				best = d
			}
		}
	}
	return best
}
