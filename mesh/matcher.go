package mesh

import "sort"

// DefaultMinCorrespondences is the number of one-to-one beacon matches two
// scanners need before a rotation search is attempted. Scanners that share
// at least 12 beacons always reach it.
const DefaultMinCorrespondences = 12

// minPairSupport is the number of shared displacement keys a beacon pair
// needs before it counts as a correspondence. One accidental displacement
// coincidence contributes exactly RotationCount keys, while a real shared
// beacon is the tail of a displacement to every other shared beacon.
const minPairSupport = 2 * RotationCount

// MinUsableCorrespondences is the smallest overlap the matcher can report.
// Each other shared beacon adds RotationCount votes to a pair, so a pair
// reaches minPairSupport only when at least three beacons are shared.
const MinUsableCorrespondences = minPairSupport/RotationCount + 1

// Correspondence pairs a beacon in the fixed scanner's frame with the beacon
// in the pending scanner's local frame believed to be the same one.
type Correspondence struct {
	Fixed Point
	Local Point
	// Votes is the number of shared displacement keys supporting the pair.
	Votes int
}

type anchorPair struct {
	fixed, local Point
}

// MatchOverlap finds beacon correspondences implied by displacement keys the
// two indices have in common.
//
// Every shared key votes for the pair of anchors it maps to. Pairs are
// accepted strongest first; a pair is skipped when either of its beacons
// has already been matched to a different counterpart, so the result is
// one-to-one and a stray key collision cannot displace a real match.
func MatchOverlap(fixed, local *DisplacementIndex) []Correspondence {
	if fixed == nil || local == nil {
		return nil
	}

	// Iterate the smaller map; votes are counted, so order is irrelevant.
	small, large := fixed, local
	swapped := false
	if local.Len() < fixed.Len() {
		small, large = local, fixed
		swapped = true
	}

	votes := make(map[anchorPair]int)
	for key, a := range small.anchors {
		b, ok := large.anchors[key]
		if !ok {
			continue
		}
		if swapped {
			a, b = b, a
		}
		votes[anchorPair{fixed: a, local: b}]++
	}

	candidates := make([]Correspondence, 0, len(votes))
	for pair, n := range votes {
		if n < minPairSupport {
			continue
		}
		candidates = append(candidates, Correspondence{Fixed: pair.fixed, Local: pair.local, Votes: n})
	}
	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if ci.Votes != cj.Votes {
			return ci.Votes > cj.Votes
		}
		if ci.Fixed != cj.Fixed {
			return ci.Fixed.Less(cj.Fixed)
		}
		return ci.Local.Less(cj.Local)
	})

	usedFixed := make(map[Point]struct{}, len(candidates))
	usedLocal := make(map[Point]struct{}, len(candidates))
	result := make([]Correspondence, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := usedFixed[c.Fixed]; ok {
			continue
		}
		if _, ok := usedLocal[c.Local]; ok {
			continue
		}
		usedFixed[c.Fixed] = struct{}{}
		usedLocal[c.Local] = struct{}{}
		result = append(result, c)
	}
	return result
}
