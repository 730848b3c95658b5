package mesh

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DefaultReportPath is the default path for the alignment report
const DefaultReportPath = "alignment-report.json"

// ScannerPose is one scanner's resolved pose as written to reports
type ScannerPose struct {
	ID        int   `json:"id"`
	Position  Point `json:"position"`
	Rotation  int   `json:"rotation"`
	AlignedTo int   `json:"alignedTo"` // -1 for the reference scanner
	Beacons   int   `json:"beacons"`
}

// Report summarizes a completed alignment run
type Report struct {
	RunID            string        `json:"runId"`
	ReferenceScanner int           `json:"referenceScanner"`
	Scanners         []ScannerPose `json:"scanners"`
	BeaconCount      int           `json:"beaconCount"`
	MaxDistance      int           `json:"maxDistance"`
	Beacons          []Point       `json:"beacons"`
	Passes           int           `json:"passes"`
	DurationMillis   int64         `json:"durationMillis"`
	LastUpdated      int64         `json:"lastUpdated"`
}

// BuildReport summarizes an alignment result. Scanners are listed in the
// order they were fixed.
func BuildReport(result *AlignmentResult) *Report {
	rep := &Report{
		RunID:            uuid.NewString(),
		ReferenceScanner: result.Reference,
		Scanners:         make([]ScannerPose, 0, len(result.Scanners)),
		BeaconCount:      result.BeaconCount(),
		MaxDistance:      result.MaxDistance(),
		Beacons:          result.Beacons(),
		Passes:           result.Passes,
		DurationMillis:   result.Duration.Milliseconds(),
		LastUpdated:      time.Now().Unix(),
	}
	for _, s := range result.Scanners {
		pos, _ := s.Position()
		rep.Scanners = append(rep.Scanners, ScannerPose{
			ID:        s.ID,
			Position:  pos,
			Rotation:  s.Rotation(),
			AlignedTo: s.AlignedTo(),
			Beacons:   len(s.local),
		})
	}
	return rep
}

// GetPose returns the pose of the given scanner
func (r *Report) GetPose(id int) (ScannerPose, bool) {
	if r == nil {
		return ScannerPose{}, false
	}
	for _, p := range r.Scanners {
		if p.ID == id {
			return p, true
		}
	}
	return ScannerPose{}, false
}

// LoadReport loads a previously saved alignment report.
// A missing file is not an error and yields nil.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading report file: %w", err)
	}

	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("parsing report file: %w", err)
	}

	return &rep, nil
}

// SaveReport writes the alignment report as indented JSON
func SaveReport(path string, rep *Report) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report file: %w", err)
	}

	return nil
}
