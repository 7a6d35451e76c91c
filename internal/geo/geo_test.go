package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestProjection_RoundTrip(t *testing.T) {
	proj := NewProjection(8.68, 49.41) // Heidelberg

	tests := []struct {
		name     string
		lon, lat float64
	}{
		{"center", 8.68, 49.41},
		{"east", 8.70, 49.41},
		{"north", 8.68, 49.43},
		{"diagonal", 8.66, 49.39},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := proj.Project(tt.lon, tt.lat)
			lon, lat := proj.Unproject(pt)
			assert.InDelta(t, tt.lon, lon, 1e-9)
			assert.InDelta(t, tt.lat, lat, 1e-9)
		})
	}
}

func TestProjection_DistanceScale(t *testing.T) {
	proj := NewProjection(8.68, 49.41)

	// One degree of latitude is ~111.2 km everywhere.
	a := proj.Project(8.68, 49.0)
	b := proj.Project(8.68, 50.0)
	assert.InDelta(t, 111195, Distance(a, b), 100)
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Distance(Point{0, 0}, Point{3, 4}), 1e-12)
	assert.Zero(t, Distance(Point{1, 1}, Point{1, 1}))
}

func TestLineLength(t *testing.T) {
	pts := []Point{{0, 0}, {100, 0}, {100, 50}}
	assert.InDelta(t, 150.0, LineLength(pts), 1e-9)
	assert.Zero(t, LineLength(nil))
	assert.Zero(t, LineLength([]Point{{1, 2}}))
}

func TestMidpoint(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
		want Point
	}{
		{"straight", []Point{{0, 0}, {100, 0}}, Point{50, 0}},
		{"bent", []Point{{0, 0}, {100, 0}, {100, 100}}, Point{100, 0}},
		{"single", []Point{{7, 7}}, Point{7, 7}},
		{"empty", nil, Point{}},
		{"zero length", []Point{{3, 3}, {3, 3}}, Point{3, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Midpoint(tt.pts)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestBBox_ExtendAndCenter(t *testing.T) {
	var box BBox
	box.Extend(8.0, 49.0)
	box.Extend(9.0, 50.0)
	box.Extend(8.5, 49.5)

	assert.Equal(t, 8.0, box.MinLng)
	assert.Equal(t, 9.0, box.MaxLng)

	lon, lat := box.Center()
	assert.InDelta(t, 8.5, lon, 1e-12)
	assert.InDelta(t, 49.5, lat, 1e-12)
}

func TestBBox_ExtendFromOrigin(t *testing.T) {
	// A first vertex at the lon/lat origin must be kept like any other.
	var box BBox
	box.Extend(0, 0)
	box.Extend(10, 5)

	assert.Equal(t, 0.0, box.MinLng)
	assert.Equal(t, 10.0, box.MaxLng)
	assert.Equal(t, 0.0, box.MinLat)
	assert.Equal(t, 5.0, box.MaxLat)

	lon, lat := box.Center()
	assert.InDelta(t, 5.0, lon, 1e-12)
	assert.InDelta(t, 2.5, lat, 1e-12)
}

func TestBBox_ExtendSinglePoint(t *testing.T) {
	var box BBox
	box.Extend(-3.5, -7.25)

	assert.Equal(t, -3.5, box.MinLng)
	assert.Equal(t, -3.5, box.MaxLng)
	assert.Equal(t, -7.25, box.MinLat)
	assert.Equal(t, -7.25, box.MaxLat)
}

func TestPointInPolygon(t *testing.T) {
	// Unit square with a hole in the middle.
	poly, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{
		{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}},
		{{0.4, 0.4}, {0.6, 0.4}, {0.6, 0.6}, {0.4, 0.6}, {0.4, 0.4}},
	})
	require.NoError(t, err)

	assert.True(t, PointInPolygon(0.2, 0.2, poly))
	assert.False(t, PointInPolygon(0.5, 0.5, poly), "hole is excluded")
	assert.False(t, PointInPolygon(1.5, 0.5, poly))
	assert.False(t, PointInPolygon(0.5, -0.1, poly))
}

func TestPointInMultiPolygon(t *testing.T) {
	mp, err := geom.NewMultiPolygon(geom.XY).SetCoords([][][]geom.Coord{
		{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}},
		{{{2, 2}, {3, 2}, {3, 3}, {2, 3}, {2, 2}}},
	})
	require.NoError(t, err)

	assert.True(t, PointInMultiPolygon(0.5, 0.5, mp))
	assert.True(t, PointInMultiPolygon(2.5, 2.5, mp))
	assert.False(t, PointInMultiPolygon(1.5, 1.5, mp))
	assert.False(t, PointInMultiPolygon(0.5, 0.5, nil))
}

func TestGeomBBox(t *testing.T) {
	ls, err := geom.NewLineString(geom.XY).SetCoords([]geom.Coord{
		{8.1, 49.2}, {8.3, 49.1}, {8.2, 49.4},
	})
	require.NoError(t, err)

	box := GeomBBox(ls)
	assert.Equal(t, 8.1, box.MinLng)
	assert.Equal(t, 8.3, box.MaxLng)
	assert.Equal(t, 49.1, box.MinLat)
	assert.Equal(t, 49.4, box.MaxLat)
}

func TestProjectLine(t *testing.T) {
	proj := NewProjection(8.0, 49.0)
	ls, err := geom.NewLineString(geom.XY).SetCoords([]geom.Coord{
		{8.0, 49.0}, {8.001, 49.0},
	})
	require.NoError(t, err)

	pts := ProjectLine(ls, proj)
	require.Len(t, pts, 2)
	assert.InDelta(t, 0, pts[0].X, 1e-9)
	// ~73 m per 0.001 degree longitude at 49N.
	assert.InDelta(t, 73, pts[1].X, 1.0)
}
