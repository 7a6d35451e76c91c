package hexgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanform/walkability/internal/geo"
)

func TestCellAt_RoundTripsCenters(t *testing.T) {
	g := New(250)
	cells := []Cell{{0, 0}, {1, 0}, {0, 1}, {-3, 2}, {5, -5}, {10, 7}}
	for _, c := range cells {
		assert.Equal(t, c, g.CellAt(g.Center(c)), "center of %+v maps back", c)
	}
}

func TestNeighbors_SpacingIsConstant(t *testing.T) {
	g := New(250)
	c := Cell{Q: 2, R: -1}
	center := g.Center(c)

	neighbors := c.Neighbors()
	require.Len(t, neighbors, 6)
	for _, n := range neighbors {
		d := geo.Distance(center, g.Center(n))
		assert.InDelta(t, 250, d, 1e-6, "neighbor %+v", n)
	}
}

func TestNeighbors_Symmetric(t *testing.T) {
	c := Cell{Q: 0, R: 0}
	for _, n := range c.Neighbors() {
		found := false
		for _, back := range n.Neighbors() {
			if back == c {
				found = true
			}
		}
		assert.True(t, found, "%+v should list %+v back", n, c)
	}
}

func TestCellAt_PointsNearCenter(t *testing.T) {
	g := New(100)
	c := Cell{Q: 3, R: 4}
	center := g.Center(c)

	// Everything well inside the incircle maps to the same cell.
	for _, off := range []geo.Point{{X: 20, Y: 0}, {X: -20, Y: 10}, {X: 0, Y: -30}} {
		pt := geo.Point{X: center.X + off.X, Y: center.Y + off.Y}
		assert.Equal(t, c, g.CellAt(pt))
	}
}

func TestCorners(t *testing.T) {
	g := New(250)
	c := Cell{Q: 1, R: 1}
	center := g.Center(c)

	corners := g.Corners(c)
	require.Len(t, corners, 6)
	for _, corner := range corners {
		assert.InDelta(t, g.size, geo.Distance(center, corner), 1e-9)
	}
}

func TestCoverPolyline(t *testing.T) {
	g := New(100)

	// A 500 m straight line crosses several cells; every sampled cell must
	// contain part of the line's bounding corridor.
	cells := g.CoverPolyline([]geo.Point{{X: 0, Y: 0}, {X: 500, Y: 0}})
	assert.GreaterOrEqual(t, len(cells), 5)

	start := g.CellAt(geo.Point{X: 0, Y: 0})
	end := g.CellAt(geo.Point{X: 500, Y: 0})
	assert.Contains(t, cells, start)
	assert.Contains(t, cells, end)

	assert.Empty(t, g.CoverPolyline(nil))
}
