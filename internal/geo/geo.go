package geo

import (
	"math"

	"github.com/twpayne/go-geom"
)

// earthRadiusM is the mean Earth radius used by the local projection.
const earthRadiusM = 6371000.0

// Point is a position in projected planar coordinates, in meters.
type Point struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance between two projected points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Projection maps WGS84 lon/lat to a local planar coordinate system centered
// on a reference point. An equirectangular projection is accurate to well
// under 1% for AOIs of a few tens of kilometers, which is the scale this
// pipeline operates at.
type Projection struct {
	lon0   float64
	lat0   float64
	cosLat float64
}

// NewProjection creates a local projection centered on the given lon/lat.
func NewProjection(lon0, lat0 float64) *Projection {
	return &Projection{
		lon0:   lon0,
		lat0:   lat0,
		cosLat: math.Cos(lat0 * math.Pi / 180),
	}
}

// Project converts a WGS84 coordinate to local planar meters.
func (p *Projection) Project(lon, lat float64) Point {
	return Point{
		X: (lon - p.lon0) * math.Pi / 180 * earthRadiusM * p.cosLat,
		Y: (lat - p.lat0) * math.Pi / 180 * earthRadiusM,
	}
}

// Unproject converts local planar meters back to WGS84 lon/lat.
func (p *Projection) Unproject(pt Point) (lon, lat float64) {
	lon = p.lon0 + pt.X/(earthRadiusM*p.cosLat)*180/math.Pi
	lat = p.lat0 + pt.Y/earthRadiusM*180/math.Pi
	return lon, lat
}

// LineLength returns the total length of a projected polyline.
func LineLength(pts []Point) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += Distance(pts[i-1], pts[i])
	}
	return total
}

// Midpoint returns the point halfway along a projected polyline, measured by
// arc length. Returns the first point for degenerate inputs.
func Midpoint(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	half := LineLength(pts) / 2
	if half == 0 {
		return pts[0]
	}
	var walked float64
	for i := 1; i < len(pts); i++ {
		seg := Distance(pts[i-1], pts[i])
		if walked+seg >= half {
			t := (half - walked) / seg
			return Point{
				X: pts[i-1].X + t*(pts[i].X-pts[i-1].X),
				Y: pts[i-1].Y + t*(pts[i].Y-pts[i-1].Y),
			}
		}
		walked += seg
	}
	return pts[len(pts)-1]
}

// BBox is an axis-aligned bounding box in WGS84 coordinates. The zero value
// is an empty box; the first Extend initializes it.
type BBox struct {
	MinLng float64 `json:"min_lng"`
	MinLat float64 `json:"min_lat"`
	MaxLng float64 `json:"max_lng"`
	MaxLat float64 `json:"max_lat"`

	set bool
}

// Extend grows the box to include the given coordinate. The coordinate
// (0, 0) is as valid as any other; emptiness is tracked explicitly rather
// than inferred from the field values.
func (b *BBox) Extend(lon, lat float64) {
	if !b.set {
		b.set = true
		b.MinLng, b.MaxLng, b.MinLat, b.MaxLat = lon, lon, lat, lat
		return
	}
	b.MinLng = math.Min(b.MinLng, lon)
	b.MaxLng = math.Max(b.MaxLng, lon)
	b.MinLat = math.Min(b.MinLat, lat)
	b.MaxLat = math.Max(b.MaxLat, lat)
}

// Center returns the midpoint of the box.
func (b BBox) Center() (lon, lat float64) {
	return (b.MinLng + b.MaxLng) / 2, (b.MinLat + b.MaxLat) / 2
}

// GeomBBox computes the bounding box of any go-geom geometry.
func GeomBBox(g geom.T) BBox {
	var box BBox
	flat := g.FlatCoords()
	stride := g.Stride()
	for i := 0; i+1 < len(flat); i += stride {
		box.Extend(flat[i], flat[i+1])
	}
	return box
}

// PointInPolygon reports whether a WGS84 coordinate lies inside a polygon,
// holes excluded. Ray casting over the exterior ring and each interior ring.
func PointInPolygon(lon, lat float64, poly *geom.Polygon) bool {
	if poly == nil || poly.NumLinearRings() == 0 {
		return false
	}
	if !pointInRing(lon, lat, poly.LinearRing(0)) {
		return false
	}
	for i := 1; i < poly.NumLinearRings(); i++ {
		if pointInRing(lon, lat, poly.LinearRing(i)) {
			return false
		}
	}
	return true
}

// PointInMultiPolygon reports whether a WGS84 coordinate lies inside any
// member polygon.
func PointInMultiPolygon(lon, lat float64, mp *geom.MultiPolygon) bool {
	if mp == nil {
		return false
	}
	for i := 0; i < mp.NumPolygons(); i++ {
		if PointInPolygon(lon, lat, mp.Polygon(i)) {
			return true
		}
	}
	return false
}

func pointInRing(lon, lat float64, ring *geom.LinearRing) bool {
	flat := ring.FlatCoords()
	stride := ring.Stride()
	n := len(flat) / stride
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := flat[i*stride], flat[i*stride+1]
		xj, yj := flat[j*stride], flat[j*stride+1]
		if (yi > lat) != (yj > lat) &&
			lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// ProjectLine converts a geometry's flat coordinates to projected points.
// Only the first two ordinates of each coordinate are used.
func ProjectLine(g geom.T, proj *Projection) []Point {
	flat := g.FlatCoords()
	stride := g.Stride()
	pts := make([]Point, 0, len(flat)/stride)
	for i := 0; i+1 < len(flat); i += stride {
		pts = append(pts, proj.Project(flat[i], flat[i+1]))
	}
	return pts
}
