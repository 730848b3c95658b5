package mesh

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// DefaultScannerRange is how far (per axis) a scanner detects beacons
const DefaultScannerRange = 1000

// Project drops the axis orthogonal to plane and returns the remaining two
// coordinates plus the dropped one (the depth).
func Project(p Point, plane string) (orb.Point, int) {
	switch plane {
	case PlaneXZ:
		return orb.Point{float64(p.X), float64(p.Z)}, p.Y
	case PlaneYZ:
		return orb.Point{float64(p.Y), float64(p.Z)}, p.X
	default:
		return orb.Point{float64(p.X), float64(p.Y)}, p.Z
	}
}

// ProjectedBounds returns the 2D bounds of beacons and scanner ranges on the
// given plane.
func ProjectedBounds(beacons []Point, scanners []ScannerPose, plane string) orb.Bound {
	mp := make(orb.MultiPoint, 0, len(beacons)+2*len(scanners))
	for _, b := range beacons {
		pt, _ := Project(b, plane)
		mp = append(mp, pt)
	}
	for _, s := range scanners {
		rb := scannerRangeBound(s.Position, plane)
		mp = append(mp, rb.Min, rb.Max)
	}
	return mp.Bound()
}

func scannerRangeBound(pos Point, plane string) orb.Bound {
	c, _ := Project(pos, plane)
	r := float64(DefaultScannerRange)
	return orb.Bound{
		Min: orb.Point{c[0] - r, c[1] - r},
		Max: orb.Point{c[0] + r, c[1] + r},
	}
}

// BuildGeoJSON exports beacons and scanners as a FeatureCollection projected
// on plane. Each scanner contributes a Point feature and a Polygon for its
// detection range, and each non-reference scanner a LineString to the scanner
// it was aligned against. The dropped coordinate is kept in "depth".
func BuildGeoJSON(beacons []Point, scanners []ScannerPose, plane string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	byID := make(map[int]ScannerPose, len(scanners))
	for _, s := range scanners {
		byID[s.ID] = s
	}

	for _, s := range scanners {
		pt, depth := Project(s.Position, plane)
		f := geojson.NewFeature(pt)
		f.Properties["kind"] = "scanner"
		f.Properties["scannerId"] = s.ID
		f.Properties["rotation"] = s.Rotation
		f.Properties["alignedTo"] = s.AlignedTo
		f.Properties["depth"] = depth
		fc.Append(f)

		rng := geojson.NewFeature(scannerRangeBound(s.Position, plane).ToPolygon())
		rng.Properties["kind"] = "scannerRange"
		rng.Properties["scannerId"] = s.ID
		fc.Append(rng)

		parent, ok := byID[s.AlignedTo]
		if !ok || s.AlignedTo == s.ID {
			continue
		}
		from, _ := Project(parent.Position, plane)
		edge := orb.LineString{from, pt}
		ef := geojson.NewFeature(edge)
		ef.Properties["kind"] = "alignment"
		ef.Properties["from"] = parent.ID
		ef.Properties["to"] = s.ID
		ef.Properties["distance"] = ManhattanDistance(parent.Position, s.Position)
		ef.Properties["planarLength"] = planar.Length(edge)
		fc.Append(ef)
	}

	for _, b := range beacons {
		pt, depth := Project(b, plane)
		f := geojson.NewFeature(pt)
		f.Properties["kind"] = "beacon"
		f.Properties["depth"] = depth
		fc.Append(f)
	}

	return fc
}
