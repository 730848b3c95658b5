package mesh

import (
	"sync"
	"time"
)

// Snapshot is the latest alignment output held for readers
type Snapshot struct {
	Report   *Report
	Beacons  []Point
	Scanners []ScannerPose
	Updated  time.Time
}

// StateTracker holds the most recent alignment output for the HTTP and MQTT
// layers. Alignment results are immutable once published, so readers get
// shared slices.
type StateTracker struct {
	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewStateTracker creates an empty state tracker
func NewStateTracker() *StateTracker {
	return &StateTracker{}
}

// Update replaces the current snapshot with the given result
func (st *StateTracker) Update(result *AlignmentResult, rep *Report) {
	snap := &Snapshot{
		Report:   rep,
		Beacons:  result.Beacons(),
		Scanners: rep.Scanners,
		Updated:  time.Now(),
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.snapshot = snap
}

// Restore replaces the current snapshot with a previously saved report, so
// a service can answer requests without re-running the alignment.
func (st *StateTracker) Restore(rep *Report) {
	snap := &Snapshot{
		Report:   rep,
		Beacons:  rep.Beacons,
		Scanners: rep.Scanners,
		Updated:  time.Unix(rep.LastUpdated, 0),
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.snapshot = snap
}

// Snapshot returns the current snapshot, or nil before the first update
func (st *StateTracker) Snapshot() *Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snapshot
}

// HasResult returns true once an alignment has completed
func (st *StateTracker) HasResult() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snapshot != nil
}
