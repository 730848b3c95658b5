package mesh

import (
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/paulmach/orb"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// nrgbaToRGBA converts color.NRGBA to color.RGBA by premultiplying alpha
// This is needed for the canvas library which expects premultiplied RGBA
func nrgbaToRGBA(c color.NRGBA) color.RGBA {
	if c.A == 0 {
		return color.RGBA{0, 0, 0, 0}
	}
	if c.A == 255 {
		return color.RGBA{c.R, c.G, c.B, 255}
	}
	alpha32 := uint32(c.A)
	return color.RGBA{
		R: uint8((uint32(c.R) * alpha32) / 255),
		G: uint8((uint32(c.G) * alpha32) / 255),
		B: uint8((uint32(c.B) * alpha32) / 255),
		A: c.A,
	}
}

// VectorRenderer renders an alignment as vector graphics in world units
type VectorRenderer struct {
	Beacons     []Point
	Scanners    []ScannerPose
	Plane       string
	Colors      []ScannerColor
	Padding     float64           // Padding in world units
	Resolution  canvas.Resolution // Dots per world unit for PNG output (default 0.2)
	GridSpacing float64           // Grid line spacing in world units; 0 disables
}

// NewVectorRenderer creates a vector renderer with default settings
func NewVectorRenderer(snap *Snapshot, plane string, gridSpacing float64) *VectorRenderer {
	return &VectorRenderer{
		Beacons:     snap.Beacons,
		Scanners:    snap.Scanners,
		Plane:       plane,
		Colors:      DefaultColors(),
		Padding:     250.0,
		Resolution:  canvas.DPMM(0.2),
		GridSpacing: gridSpacing,
	}
}

// canvasRenderer is an interface that both svg and rasterizer renderers implement
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

func (r *VectorRenderer) size(bound orb.Bound) (width, height float64) {
	width = (bound.Max[0] - bound.Min[0]) + 2*r.Padding
	height = (bound.Max[1] - bound.Min[1]) + 2*r.Padding
	return
}

// RenderToSVG writes the plot as an SVG to the provided writer
func (r *VectorRenderer) RenderToSVG(w io.Writer) error {
	bound := plotBounds(r.Beacons, r.Scanners, r.Plane)
	width, height := r.size(bound)

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, bound, width, height)

	// Close writes the closing tags
	return svgRenderer.Close()
}

// RenderToPNG writes the plot as a PNG to the provided writer
func (r *VectorRenderer) RenderToPNG(w io.Writer) error {
	bound := plotBounds(r.Beacons, r.Scanners, r.Plane)
	width, height := r.size(bound)

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, bound, width, height)

	return png.Encode(w, rast)
}

// renderToCanvas draws the plot (shared logic for SVG and PNG)
func (r *VectorRenderer) renderToCanvas(renderer canvasRenderer, bound orb.Bound, width, height float64) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	toCanvas := func(p orb.Point) (float64, float64) {
		return (p[0] - bound.Min[0]) + r.Padding, (p[1] - bound.Min[1]) + r.Padding
	}

	// Scanner ranges (filled, translucent)
	for i, s := range r.Scanners {
		sc := colorForScanner(r.Colors, i)
		rb := scannerRangeBound(s.Position, r.Plane)

		rangeStyle := canvas.DefaultStyle
		rangeStyle.Fill = canvas.Paint{Color: nrgbaToRGBA(sc.Range)}
		rangeStyle.Stroke = canvas.Paint{Color: nrgbaToRGBA(sc.Marker)}
		rangeStyle.StrokeWidth = 4.0

		x, y := toCanvas(rb.Min)
		rangePath := canvas.Rectangle(rb.Max[0]-rb.Min[0], rb.Max[1]-rb.Min[1]).Translate(x, y)
		renderer.RenderPath(rangePath, rangeStyle, canvas.Identity)
	}

	if r.GridSpacing > 0 {
		gridStyle := canvas.DefaultStyle
		gridStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		gridStyle.Stroke = canvas.Paint{Color: canvas.Gray}
		gridStyle.StrokeWidth = 2.0
		gridStyle.Dashes = []float64{10.0, 10.0}

		for x := math.Floor(bound.Min[0]/r.GridSpacing) * r.GridSpacing; x <= bound.Max[0]; x += r.GridSpacing {
			gridPath := &canvas.Path{}
			gridPath.MoveTo(toCanvas(orb.Point{x, bound.Min[1]}))
			gridPath.LineTo(toCanvas(orb.Point{x, bound.Max[1]}))
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}
		for y := math.Floor(bound.Min[1]/r.GridSpacing) * r.GridSpacing; y <= bound.Max[1]; y += r.GridSpacing {
			gridPath := &canvas.Path{}
			gridPath.MoveTo(toCanvas(orb.Point{bound.Min[0], y}))
			gridPath.LineTo(toCanvas(orb.Point{bound.Max[0], y}))
			renderer.RenderPath(gridPath, gridStyle, canvas.Identity)
		}
	}

	// Alignment edges from each scanner back to the one it was fixed against
	positions := make(map[int]Point, len(r.Scanners))
	for _, s := range r.Scanners {
		positions[s.ID] = s.Position
	}
	edgeStyle := canvas.DefaultStyle
	edgeStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	edgeStyle.Stroke = canvas.Paint{Color: color.RGBA{120, 120, 120, 255}}
	edgeStyle.StrokeWidth = 6.0
	for _, s := range r.Scanners {
		parent, ok := positions[s.AlignedTo]
		if !ok {
			continue
		}
		from, _ := Project(parent, r.Plane)
		to, _ := Project(s.Position, r.Plane)
		edge := &canvas.Path{}
		edge.MoveTo(toCanvas(from))
		edge.LineTo(toCanvas(to))
		renderer.RenderPath(edge, edgeStyle, canvas.Identity)
	}

	beaconStyle := canvas.DefaultStyle
	beaconStyle.Fill = canvas.Paint{Color: beaconColor}
	beaconStyle.Stroke = canvas.Paint{Color: canvas.Transparent}
	for _, b := range r.Beacons {
		pt, _ := Project(b, r.Plane)
		cx, cy := toCanvas(pt)
		renderer.RenderPath(canvas.Circle(15.0).Translate(cx, cy), beaconStyle, canvas.Identity)
	}

	for i, s := range r.Scanners {
		sc := colorForScanner(r.Colors, i)
		pt, _ := Project(s.Position, r.Plane)
		cx, cy := toCanvas(pt)

		scannerStyle := canvas.DefaultStyle
		scannerStyle.Fill = canvas.Paint{Color: nrgbaToRGBA(sc.Marker)}
		scannerStyle.Stroke = canvas.Paint{Color: canvas.Black}
		scannerStyle.StrokeWidth = 5.0

		// Text needs a loaded font face in tdewolff/canvas; scanners are told
		// apart by color only.
		renderer.RenderPath(canvas.Rectangle(80.0, 80.0).Translate(cx-40.0, cy-40.0), scannerStyle, canvas.Identity)
	}
}
