package mesh

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/paulmach/orb"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ScannerColor defines the colors used for one scanner's elements
type ScannerColor struct {
	Range  color.NRGBA
	Marker color.NRGBA
}

// DefaultColors returns the scanner palette. The reference scanner always
// gets the first entry; the rest cycle through the remainder.
func DefaultColors() []ScannerColor {
	return []ScannerColor{
		{ // Reference - Blue
			Range:  color.NRGBA{100, 149, 237, 60}, // Cornflower blue
			Marker: color.NRGBA{0, 0, 139, 255},    // Dark blue
		},
		{ // Red
			Range:  color.NRGBA{255, 99, 71, 50},
			Marker: color.NRGBA{139, 0, 0, 255},
		},
		{ // Green
			Range:  color.NRGBA{144, 238, 144, 50},
			Marker: color.NRGBA{0, 100, 0, 255},
		},
		{ // Yellow
			Range:  color.NRGBA{255, 255, 150, 60},
			Marker: color.NRGBA{184, 134, 11, 255},
		},
	}
}

// colorForScanner picks the palette entry for the i-th scanner in fix order
func colorForScanner(palette []ScannerColor, i int) ScannerColor {
	if i == 0 || len(palette) == 1 {
		return palette[0]
	}
	return palette[1+(i-1)%(len(palette)-1)]
}

var beaconColor = color.RGBA{40, 40, 40, 255}

// plotBounds returns the projected bounds used by both renderers. Without
// any scanner ranges the beacon bounds are padded by one range so the plot
// never collapses to a line.
func plotBounds(beacons []Point, scanners []ScannerPose, plane string) orb.Bound {
	if len(beacons) == 0 && len(scanners) == 0 {
		return scannerRangeBound(Origin, plane)
	}
	b := ProjectedBounds(beacons, scanners, plane)
	if len(scanners) == 0 {
		b = b.Pad(DefaultScannerRange)
	}
	return b
}

// RasterRenderer draws a top-down bitmap of an alignment: translucent scanner
// ranges, beacon dots, scanner markers labelled with their ids.
type RasterRenderer struct {
	Beacons  []Point
	Scanners []ScannerPose
	Plane    string
	Colors   []ScannerColor
	Scale    float64 // Pixels per unit (default 0.2)
	Padding  int     // Padding around the image in pixels
	MaxSize  int     // Upper bound on either image dimension
}

// NewRasterRenderer creates a raster renderer for a snapshot
func NewRasterRenderer(snap *Snapshot, plane string) *RasterRenderer {
	return &RasterRenderer{
		Beacons:  snap.Beacons,
		Scanners: snap.Scanners,
		Plane:    plane,
		Colors:   DefaultColors(),
		Scale:    0.2,
		Padding:  20,
		MaxSize:  4000,
	}
}

// Render creates the image
func (r *RasterRenderer) Render() *image.RGBA {
	bound := plotBounds(r.Beacons, r.Scanners, r.Plane)
	scale := r.Scale
	if scale <= 0 {
		scale = 0.2
	}

	spanX := bound.Max[0] - bound.Min[0]
	spanY := bound.Max[1] - bound.Min[1]
	if r.MaxSize > 0 {
		if limit := float64(r.MaxSize - 2*r.Padding); spanX*scale > limit || spanY*scale > limit {
			scale = limit / math.Max(spanX, spanY)
		}
	}

	width := int(spanX*scale) + 2*r.Padding + 1
	height := int(spanY*scale) + 2*r.Padding + 1

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{240, 240, 240, 255})
		}
	}

	// Image rows grow downward, so flip the second axis.
	toImage := func(p orb.Point) (int, int) {
		x := int((p[0]-bound.Min[0])*scale) + r.Padding
		y := int((bound.Max[1]-p[1])*scale) + r.Padding
		return x, y
	}

	// First pass: scanner ranges (semi-transparent)
	for i, s := range r.Scanners {
		sc := colorForScanner(r.Colors, i)
		rb := scannerRangeBound(s.Position, r.Plane)
		x0, y0 := toImage(orb.Point{rb.Min[0], rb.Max[1]})
		x1, y1 := toImage(orb.Point{rb.Max[0], rb.Min[1]})
		for y := max(y0, 0); y <= min(y1, height-1); y++ {
			for x := max(x0, 0); x <= min(x1, width-1); x++ {
				img.Set(x, y, blendColors(img.RGBAAt(x, y), sc.Range))
			}
		}
	}

	// Second pass: beacons
	for _, b := range r.Beacons {
		pt, _ := Project(b, r.Plane)
		ix, iy := toImage(pt)
		drawCircle(img, ix, iy, 2, beaconColor)
	}

	// Third pass: scanners with id labels
	for i, s := range r.Scanners {
		sc := colorForScanner(r.Colors, i)
		pt, _ := Project(s.Position, r.Plane)
		ix, iy := toImage(pt)
		marker := color.RGBA{sc.Marker.R, sc.Marker.G, sc.Marker.B, sc.Marker.A}
		drawSquare(img, ix, iy, 8, marker)
		drawText(img, ix+7, iy-5, fmt.Sprintf("%d", s.ID), marker)
	}

	drawText(img, 6, 14, fmt.Sprintf("%d beacons, %d scanners (%s)", len(r.Beacons), len(r.Scanners), r.Plane),
		color.RGBA{0, 0, 0, 255})

	return img
}

// WritePNG encodes the rendered image to w
func (r *RasterRenderer) WritePNG(w io.Writer) error {
	return png.Encode(w, r.Render())
}

// SavePNG saves the rendered image to a file
func (r *RasterRenderer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return r.WritePNG(f)
}

// blendColors performs alpha blending of fg over an opaque background
func blendColors(bg color.RGBA, fg color.NRGBA) color.NRGBA {
	alpha := float64(fg.A) / 255.0
	invAlpha := 1.0 - alpha

	return color.NRGBA{
		R: uint8(float64(fg.R)*alpha + float64(bg.R)*invAlpha),
		G: uint8(float64(fg.G)*alpha + float64(bg.G)*invAlpha),
		B: uint8(float64(fg.B)*alpha + float64(bg.B)*invAlpha),
		A: 255,
	}
}

// drawCircle draws a filled circle
func drawCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				x, y := cx+dx, cy+dy
				if image.Pt(x, y).In(img.Bounds()) {
					img.Set(x, y, c)
				}
			}
		}
	}
}

// drawSquare draws a filled square
func drawSquare(img *image.RGBA, cx, cy, size int, c color.RGBA) {
	half := size / 2
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			x, y := cx+dx, cy+dy
			if image.Pt(x, y).In(img.Bounds()) {
				img.Set(x, y, c)
			}
		}
	}
}

// drawText renders text onto an image at the specified position
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
