package mesh

import (
	"bytes"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
)

func TestColorForScanner(t *testing.T) {
	palette := DefaultColors()
	if colorForScanner(palette, 0) != palette[0] {
		t.Error("reference scanner should use the first palette entry")
	}
	// Non-reference scanners cycle through entries 1..n-1.
	if colorForScanner(palette, 1) != palette[1] || colorForScanner(palette, 4) != palette[1] {
		t.Error("palette should cycle after the reference color")
	}
	single := palette[:1]
	if colorForScanner(single, 3) != single[0] {
		t.Error("single-entry palette should always return that entry")
	}
}

func TestBlendColors(t *testing.T) {
	bg := color.RGBA{200, 200, 200, 255}
	if got := blendColors(bg, color.NRGBA{0, 0, 0, 0}); got != (color.NRGBA{200, 200, 200, 255}) {
		t.Errorf("transparent fg changed background: %v", got)
	}
	if got := blendColors(bg, color.NRGBA{10, 20, 30, 255}); got != (color.NRGBA{10, 20, 30, 255}) {
		t.Errorf("opaque fg should replace background: %v", got)
	}
}

func TestPlotBounds(t *testing.T) {
	empty := plotBounds(nil, nil, PlaneXY)
	if empty.Min[0] != -1000 || empty.Max[1] != 1000 {
		t.Errorf("empty plot bounds = %v", empty)
	}

	// A single beacon without scanners still gets a non-degenerate plot.
	b := plotBounds([]Point{{5, 5, 5}}, nil, PlaneXY)
	if b.Max[0]-b.Min[0] != 2000 || b.Max[1]-b.Min[1] != 2000 {
		t.Errorf("single beacon bounds = %v", b)
	}
}

func TestRasterRenderer_Render(t *testing.T) {
	snap := &Snapshot{
		Beacons: []Point{{100, 100, 0}, {-300, 400, 0}},
		Scanners: []ScannerPose{
			{ID: 0, Position: Origin, AlignedTo: -1},
			{ID: 1, Position: Point{500, 0, 0}, AlignedTo: 0},
		},
	}
	r := NewRasterRenderer(snap, PlaneXY)
	img := r.Render()

	// Span is 2500x2000 units at 0.2 px/unit plus padding.
	bounds := img.Bounds()
	if bounds.Dx() != 541 || bounds.Dy() != 441 {
		t.Fatalf("image size = %dx%d, want 541x441", bounds.Dx(), bounds.Dy())
	}

	// Corner pixel stays background.
	if got := img.RGBAAt(0, bounds.Dy()-1); got != (color.RGBA{240, 240, 240, 255}) {
		t.Errorf("corner pixel = %v, want background", got)
	}

	// Beacon at (100,100) lands at x=(100+1000)*0.2+20, y=(1000-100)*0.2+20.
	if got := img.RGBAAt(240, 200); got != beaconColor {
		t.Errorf("beacon pixel = %v, want %v", got, beaconColor)
	}
}

func TestRasterRenderer_MaxSize(t *testing.T) {
	snap := &Snapshot{
		Scanners: []ScannerPose{
			{ID: 0, Position: Origin, AlignedTo: -1},
			{ID: 1, Position: Point{X: 100000}, AlignedTo: 0},
		},
	}
	r := NewRasterRenderer(snap, PlaneXY)
	r.MaxSize = 1000
	img := r.Render()
	if img.Bounds().Dx() > 1001 || img.Bounds().Dy() > 1001 {
		t.Errorf("image %v exceeds MaxSize", img.Bounds())
	}
}

func TestRasterRenderer_PNG(t *testing.T) {
	result := fixtureResult(t)
	rep := BuildReport(result)
	st := NewStateTracker()
	st.Update(result, rep)

	r := NewRasterRenderer(st.Snapshot(), PlaneXZ)
	var buf bytes.Buffer
	if err := r.WritePNG(&buf); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}

	path := filepath.Join(t.TempDir(), "map.png")
	if err := r.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	if err := r.SavePNG(filepath.Join(t.TempDir(), "missing", "map.png")); err == nil {
		t.Error("expected error saving into a missing directory")
	}
}
