package mesh

import (
	"errors"
	"fmt"
)

// ErrAlreadyResolved is returned when a scanner that already has a global
// pose is fixed a second time.
var ErrAlreadyResolved = errors.New("scanner already resolved")

// Scanner holds the beacons one scanner reported in its own frame and, once
// aligned, its pose in the global frame.
type Scanner struct {
	ID    int
	local []Point

	resolved  bool
	position  Point
	rotation  int
	alignedTo int
	global    []Point
}

// NewScanner creates an unresolved scanner. Duplicate points are dropped.
func NewScanner(id int, points []Point) *Scanner {
	return &Scanner{
		ID:        id,
		local:     uniquePoints(points),
		alignedTo: -1,
	}
}

// LocalPoints returns a copy of the beacons in the scanner's own frame.
func (s *Scanner) LocalPoints() []Point {
	out := make([]Point, len(s.local))
	copy(out, s.local)
	return out
}

// IsResolved reports whether the scanner has a global pose.
func (s *Scanner) IsResolved() bool {
	return s.resolved
}

// Position returns the scanner's global position and whether it is known.
func (s *Scanner) Position() (Point, bool) {
	return s.position, s.resolved
}

// Rotation returns the index into Rotations that maps local coordinates to
// global ones. It is only meaningful once the scanner is resolved.
func (s *Scanner) Rotation() int {
	return s.rotation
}

// AlignedTo returns the id of the scanner this one was aligned against, or
// -1 for the scanner that defines the global frame (and for unresolved ones).
func (s *Scanner) AlignedTo() int {
	return s.alignedTo
}

// ResolvedPoints returns a copy of the beacons in global coordinates, or nil
// if the scanner is not resolved.
func (s *Scanner) ResolvedPoints() []Point {
	if !s.resolved {
		return nil
	}
	out := make([]Point, len(s.global))
	copy(out, s.global)
	return out
}

// Fix sets the scanner's global pose. It can succeed only once; the resolved
// points are derived here and never recomputed.
func (s *Scanner) Fix(position Point, rotation int, alignedTo int) error {
	if s.resolved {
		return fmt.Errorf("scanner %d: %w", s.ID, ErrAlreadyResolved)
	}
	if rotation < 0 || rotation >= RotationCount {
		return fmt.Errorf("scanner %d: rotation index %d out of range", s.ID, rotation)
	}
	s.position = position
	s.rotation = rotation
	s.alignedTo = alignedTo
	s.global = RotatePoints(s.local, rotation, position)
	s.resolved = true
	return nil
}

func (s *Scanner) String() string {
	if !s.resolved {
		return fmt.Sprintf("scanner %d (%d beacons, pending)", s.ID, len(s.local))
	}
	return fmt.Sprintf("scanner %d (%d beacons) at %s rot=%d", s.ID, len(s.local), s.position, s.rotation)
}
