package mesh

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/tdewolff/canvas"
)

func vectorSnapshot() *Snapshot {
	return &Snapshot{
		Beacons: []Point{{100, 100, 0}, {-300, 400, 0}},
		Scanners: []ScannerPose{
			{ID: 0, Position: Origin, AlignedTo: -1},
			{ID: 1, Position: Point{500, 0, 0}, AlignedTo: 0},
		},
	}
}

func TestNrgbaToRGBA(t *testing.T) {
	tests := []struct {
		in   color.NRGBA
		want color.RGBA
	}{
		{color.NRGBA{255, 0, 0, 0}, color.RGBA{0, 0, 0, 0}},
		{color.NRGBA{10, 20, 30, 255}, color.RGBA{10, 20, 30, 255}},
		{color.NRGBA{255, 100, 0, 51}, color.RGBA{51, 20, 0, 51}},
	}
	for _, tt := range tests {
		if got := nrgbaToRGBA(tt.in); got != tt.want {
			t.Errorf("nrgbaToRGBA(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVectorRenderer_RenderToSVG(t *testing.T) {
	r := NewVectorRenderer(vectorSnapshot(), PlaneXY, 500)

	var buf bytes.Buffer
	if err := r.RenderToSVG(&buf); err != nil {
		t.Fatalf("RenderToSVG: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Fatalf("output is not an SVG document: %.80s", out)
	}
	if !strings.Contains(out, "</svg>") {
		t.Error("SVG is missing its closing tag")
	}
	// Every beacon and scanner is drawn as its own path.
	if n := strings.Count(out, "<path"); n < len(r.Beacons)+len(r.Scanners) {
		t.Errorf("SVG has %d paths, want at least %d", n, len(r.Beacons)+len(r.Scanners))
	}
}

func TestVectorRenderer_RenderToPNG(t *testing.T) {
	r := NewVectorRenderer(vectorSnapshot(), PlaneXY, 0)
	r.Resolution = canvas.DPMM(0.1)

	var buf bytes.Buffer
	if err := r.RenderToPNG(&buf); err != nil {
		t.Fatalf("RenderToPNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	// 2500x2000 units plus 250 padding on each side at 0.1 px/unit.
	b := img.Bounds()
	if abs(b.Dx()-300) > 1 || abs(b.Dy()-250) > 1 {
		t.Errorf("PNG size = %dx%d, want about 300x250", b.Dx(), b.Dy())
	}
}

func TestVectorRenderer_Empty(t *testing.T) {
	r := NewVectorRenderer(&Snapshot{}, PlaneYZ, 250)
	var buf bytes.Buffer
	if err := r.RenderToSVG(&buf); err != nil {
		t.Fatalf("RenderToSVG on empty snapshot: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("empty snapshot should still produce an SVG")
	}
}
