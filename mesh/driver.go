package mesh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoScanners is returned when there is nothing to align.
	ErrNoScanners = errors.New("no scanners to align")
	// ErrDuplicateScanner is returned when two scanners share an id.
	ErrDuplicateScanner = errors.New("duplicate scanner id")
	// ErrUnresolvable is matched by UnresolvableError.
	ErrUnresolvable = errors.New("scanner set cannot be fully aligned")
)

// UnresolvableError reports that a full pass over the pending scanners fixed
// none of them, so no further progress is possible.
type UnresolvableError struct {
	Pending  []int // Ids of scanners that could not be aligned
	Resolved int   // Scanners resolved before the driver stalled
	Passes   int
}

func (e *UnresolvableError) Error() string {
	return fmt.Sprintf("alignment stalled after %d passes: %d scanners resolved, scanners %v share no usable overlap with them",
		e.Passes, e.Resolved, e.Pending)
}

// Is makes errors.Is(err, ErrUnresolvable) true for any UnresolvableError.
func (e *UnresolvableError) Is(target error) bool {
	return target == ErrUnresolvable
}

// PassSummary describes one completed driver pass.
type PassSummary struct {
	Pass       int
	Fixed      []int // Scanners fixed during this pass, in merge order
	TotalFixed int
	Pending    int
}

// AlignmentResult is the outcome of a successful AlignScanners run.
type AlignmentResult struct {
	Reference  int         // Scanner that defines the global frame
	Scanners   []*Scanner  // All scanners, in the order they were fixed
	Alignments []Alignment // One entry per scanner other than the reference
	Passes     int
	Duration   time.Duration
}

// Beacons returns the distinct beacons in global coordinates.
func (r *AlignmentResult) Beacons() []Point {
	return AssembleBeacons(r.Scanners)
}

// BeaconCount returns the number of distinct beacons.
func (r *AlignmentResult) BeaconCount() int {
	return CountBeacons(r.Scanners)
}

// MaxDistance returns the largest Manhattan distance between two scanners.
func (r *AlignmentResult) MaxDistance() int {
	return MaxScannerDistance(r.Scanners)
}

// AlignScanners resolves every scanner into the frame of the first one.
//
// The first scanner is fixed at the origin with the identity rotation. Each
// pass then tries every pending scanner against the scanners fixed before
// the pass began, in the order they were fixed. Attempts within a pass run
// concurrently and only read fixed scanners; successful alignments are
// applied in pending order once the pass completes, and the rest are queued
// for the next pass. A pass that fixes nothing ends the run with an
// UnresolvableError.
//
// The scanners are fixed in place and a Scanner can only be fixed once. After
// an error (stall or cancellation) the reference and any scanners fixed so far
// stay resolved, so calling AlignScanners again on the same slice fails with
// ErrAlreadyResolved; re-parse the input to retry.
func AlignScanners(ctx context.Context, scanners []*Scanner, config AlignConfig) (*AlignmentResult, error) {
	start := time.Now()
	result, err := alignScanners(ctx, scanners, config.withDefaults())
	if err != nil {
		alignDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, err
	}
	result.Duration = time.Since(start)
	alignDuration.WithLabelValues("ok").Observe(result.Duration.Seconds())
	alignPasses.Observe(float64(result.Passes))
	scannersResolved.Set(float64(len(result.Scanners)))
	beaconsAssembled.Set(float64(result.BeaconCount()))
	return result, nil
}

func alignScanners(ctx context.Context, scanners []*Scanner, config AlignConfig) (*AlignmentResult, error) {
	if len(scanners) == 0 {
		return nil, ErrNoScanners
	}
	seen := make(map[int]struct{}, len(scanners))
	for _, s := range scanners {
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("scanner %d: %w", s.ID, ErrDuplicateScanner)
		}
		seen[s.ID] = struct{}{}
		if s.IsResolved() {
			return nil, fmt.Errorf("scanner %d: %w", s.ID, ErrAlreadyResolved)
		}
	}

	reference := scanners[0]
	if err := reference.Fix(Origin, IdentityRotation, -1); err != nil {
		return nil, err
	}
	log.Printf("[ALIGN] Scanner %d defines the global frame (%d scanners pending)", reference.ID, len(scanners)-1)

	fixed := []*Scanner{reference}
	fixedIdx := []*DisplacementIndex{BuildDisplacementIndex(reference.global)}
	pending := append([]*Scanner(nil), scanners[1:]...)

	pendingIdx, err := buildLocalIndices(ctx, pending, config.Workers)
	if err != nil {
		return nil, err
	}

	result := &AlignmentResult{Reference: reference.ID}

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Passes++

		// Goroutines read fixed[:snapshot] only; fixed is appended after Wait.
		snapshot := len(fixed)
		found := make([]*Alignment, len(pending))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(config.Workers)
		for i, s := range pending {
			g.Go(func() error {
				for f := 0; f < snapshot; f++ {
					if err := gctx.Err(); err != nil {
						return err
					}
					a, outcome := alignIndexed(fixed[f], fixedIdx[f], s, pendingIdx[i], config)
					alignAttemptsTotal.WithLabelValues(outcome.String()).Inc()
					if outcome == outcomeAligned {
						found[i] = &a
						return nil
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		var (
			next     []*Scanner
			nextIdx  []*DisplacementIndex
			fixedNow []int
		)
		for i, s := range pending {
			a := found[i]
			if a == nil {
				next = append(next, s)
				nextIdx = append(nextIdx, pendingIdx[i])
				continue
			}
			if err := s.Fix(a.Position, a.Rotation, a.AlignedTo); err != nil {
				return nil, err
			}
			fixed = append(fixed, s)
			fixedIdx = append(fixedIdx, BuildDisplacementIndex(s.global))
			result.Alignments = append(result.Alignments, *a)
			fixedNow = append(fixedNow, s.ID)
			log.Printf("[ALIGN] Fixed scanner %d at %s via scanner %d (rotation %d, %d correspondences)",
				s.ID, a.Position, a.AlignedTo, a.Rotation, a.Correspondences)
		}

		if len(fixedNow) == 0 {
			ids := make([]int, len(next))
			for i, s := range next {
				ids[i] = s.ID
			}
			log.Printf("[ALIGN] Pass %d fixed nothing; giving up with %d scanners pending", result.Passes, len(next))
			return nil, &UnresolvableError{Pending: ids, Resolved: len(fixed), Passes: result.Passes}
		}

		log.Printf("[ALIGN] Pass %d: %d scanners are left for alignment", result.Passes, len(next))
		if config.OnPass != nil {
			config.OnPass(PassSummary{Pass: result.Passes, Fixed: fixedNow, TotalFixed: len(fixed), Pending: len(next)})
		}
		pending, pendingIdx = next, nextIdx
	}

	result.Scanners = fixed
	return result, nil
}

// buildLocalIndices builds the displacement index of every pending scanner,
// in parallel. The returned slice is parallel to pending.
func buildLocalIndices(ctx context.Context, pending []*Scanner, workers int) ([]*DisplacementIndex, error) {
	indices := make([]*DisplacementIndex, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			indices[i] = BuildDisplacementIndex(s.local)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return indices, nil
}
