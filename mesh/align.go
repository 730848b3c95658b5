package mesh

import "runtime"

// AlignConfig holds configuration for scanner alignment.
type AlignConfig struct {
	MinCorrespondences int               // Correspondences required before trying rotations
	Workers            int               // Concurrent alignment attempts per pass (0 = GOMAXPROCS)
	OnPass             func(PassSummary) // Called after every pass that fixed at least one scanner
}

// DefaultAlignConfig returns the settings used for exact integer beacon data.
func DefaultAlignConfig() AlignConfig {
	return AlignConfig{
		MinCorrespondences: DefaultMinCorrespondences,
		Workers:            runtime.GOMAXPROCS(0),
	}
}

func (c AlignConfig) withDefaults() AlignConfig {
	if c.MinCorrespondences <= 0 {
		c.MinCorrespondences = DefaultMinCorrespondences
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// Alignment is the pose found for a pending scanner.
type Alignment struct {
	ScannerID       int     // The scanner that was aligned
	AlignedTo       int     // The fixed scanner it was aligned against
	Position        Point   // Scanner position in the global frame
	Rotation        int     // Index into Rotations mapping local to global axes
	Correspondences int     // Beacon matches the pose was verified against
	Points          []Point // The scanner's beacons in global coordinates
}

// alignOutcome classifies an alignment attempt for logs and metrics.
type alignOutcome int

const (
	outcomeAligned alignOutcome = iota
	outcomeNoOverlap
	outcomeInconsistent
)

func (o alignOutcome) String() string {
	switch o {
	case outcomeAligned:
		return "aligned"
	case outcomeNoOverlap:
		return "no_overlap"
	case outcomeInconsistent:
		return "inconsistent_rotation"
	default:
		return "unknown"
	}
}

// AlignScanner tries to resolve pending against an already fixed scanner.
// It reports false when the two do not overlap enough or when no single
// rotation explains every correspondence; neither case is an error.
func AlignScanner(fixed, pending *Scanner, config AlignConfig) (Alignment, bool) {
	if !fixed.IsResolved() {
		return Alignment{}, false
	}
	config = config.withDefaults()
	fixedIdx := BuildDisplacementIndex(fixed.global)
	pendingIdx := BuildDisplacementIndex(pending.local)
	a, outcome := alignIndexed(fixed, fixedIdx, pending, pendingIdx, config)
	return a, outcome == outcomeAligned
}

// alignIndexed runs the overlap match and rotation search with prebuilt
// indices. fixedIdx must be built from fixed's global points.
func alignIndexed(fixed *Scanner, fixedIdx *DisplacementIndex, pending *Scanner, pendingIdx *DisplacementIndex, config AlignConfig) (Alignment, alignOutcome) {
	matches := MatchOverlap(fixedIdx, pendingIdx)
	if len(matches) < config.MinCorrespondences {
		return Alignment{}, outcomeNoOverlap
	}

	rotation, offset, ok := solveRotation(matches)
	if !ok {
		return Alignment{}, outcomeInconsistent
	}

	return Alignment{
		ScannerID:       pending.ID,
		AlignedTo:       fixed.ID,
		Position:        offset,
		Rotation:        rotation,
		Correspondences: len(matches),
		Points:          RotatePoints(pending.local, rotation, offset),
	}, outcomeAligned
}

// solveRotation returns the first rotation, in canonical order, under which
// every correspondence implies the same translation.
func solveRotation(matches []Correspondence) (int, Point, bool) {
	if len(matches) == 0 {
		return 0, Point{}, false
	}
	for i, r := range Rotations {
		offset := matches[0].Fixed.Sub(r.Apply(matches[0].Local))
		consistent := true
		for _, m := range matches[1:] {
			if m.Fixed.Sub(r.Apply(m.Local)) != offset {
				consistent = false
				break
			}
		}
		if consistent {
			return i, offset, true
		}
	}
	return 0, Point{}, false
}
