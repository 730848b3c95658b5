package mesh

import (
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// NewStateTracker
// ---------------------------------------------------------------------------

func TestNewStateTracker(t *testing.T) {
	st := NewStateTracker()
	if st == nil {
		t.Fatal("NewStateTracker returned nil")
	}
	if st.HasResult() {
		t.Error("new tracker HasResult should be false")
	}
	if st.Snapshot() != nil {
		t.Error("new tracker Snapshot should be nil")
	}
}

// ---------------------------------------------------------------------------
// Update / Snapshot
// ---------------------------------------------------------------------------

func TestStateTracker_Update(t *testing.T) {
	result := fixtureResult(t)
	rep := BuildReport(result)

	st := NewStateTracker()
	st.Update(result, rep)

	if !st.HasResult() {
		t.Fatal("HasResult should be true after Update")
	}
	snap := st.Snapshot()
	if snap.Report != rep {
		t.Error("snapshot should carry the report it was updated with")
	}
	if len(snap.Beacons) != 79 {
		t.Errorf("snapshot has %d beacons, want 79", len(snap.Beacons))
	}
	if len(snap.Scanners) != 5 {
		t.Errorf("snapshot has %d scanners, want 5", len(snap.Scanners))
	}
	if snap.Updated.IsZero() {
		t.Error("Updated timestamp not set")
	}

	// A later update replaces the snapshot; earlier readers keep theirs.
	rep2 := BuildReport(result)
	st.Update(result, rep2)
	if st.Snapshot().Report != rep2 {
		t.Error("second Update did not replace the snapshot")
	}
	if snap.Report != rep {
		t.Error("previous snapshot was mutated")
	}
}

func TestStateTracker_ConcurrentAccess(t *testing.T) {
	result := fixtureResult(t)
	rep := BuildReport(result)
	st := NewStateTracker()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			st.Update(result, rep)
		}()
		go func() {
			defer wg.Done()
			if snap := st.Snapshot(); snap != nil && snap.Report == nil {
				t.Error("snapshot without report")
			}
			_ = st.HasResult()
		}()
	}
	wg.Wait()

	if !st.HasResult() {
		t.Error("HasResult should be true after concurrent updates")
	}
}

func TestStateTracker_Restore(t *testing.T) {
	rep := BuildReport(fixtureResult(t))
	st := NewStateTracker()
	st.Restore(rep)

	snap := st.Snapshot()
	if snap == nil || snap.Report != rep {
		t.Fatal("Restore did not install the report")
	}
	if len(snap.Beacons) != 79 || len(snap.Scanners) != 5 {
		t.Errorf("restored %d beacons / %d scanners, want 79 / 5", len(snap.Beacons), len(snap.Scanners))
	}
	if snap.Updated.Unix() != rep.LastUpdated {
		t.Errorf("Updated = %v, want report time %d", snap.Updated, rep.LastUpdated)
	}
}
