// Package hexgrid provides a pointy-top hexagonal grid in projected planar
// coordinates, addressed by axial coordinates. The grid spacing is the
// center-to-center distance of adjacent cells, so beeline distances between
// grid neighbors are constant.
package hexgrid

import (
	"math"

	"github.com/urbanform/walkability/internal/geo"
)

// Cell addresses one hexagon in axial coordinates.
type Cell struct {
	Q int
	R int
}

// Grid converts between projected coordinates and hexagon cells.
type Grid struct {
	spacing float64 // center-to-center distance of adjacent cells
	size    float64 // circumradius
}

// New creates a grid with the given center-to-center spacing in meters.
func New(spacingM float64) *Grid {
	return &Grid{
		spacing: spacingM,
		size:    spacingM / math.Sqrt(3),
	}
}

// Spacing returns the center-to-center distance of adjacent cells.
func (g *Grid) Spacing() float64 { return g.spacing }

// CellAt returns the cell containing a projected point.
func (g *Grid) CellAt(pt geo.Point) Cell {
	q := (math.Sqrt(3)/3*pt.X - pt.Y/3) / g.size
	r := (2.0 / 3.0 * pt.Y) / g.size
	return roundAxial(q, r)
}

// Center returns the projected coordinate of a cell's center.
func (g *Grid) Center(c Cell) geo.Point {
	return geo.Point{
		X: g.size * math.Sqrt(3) * (float64(c.Q) + float64(c.R)/2),
		Y: g.size * 1.5 * float64(c.R),
	}
}

// neighborOffsets are the six axial offsets of grid-adjacent cells.
var neighborOffsets = [6]Cell{
	{Q: 1, R: 0}, {Q: 1, R: -1}, {Q: 0, R: -1},
	{Q: -1, R: 0}, {Q: -1, R: 1}, {Q: 0, R: 1},
}

// Neighbors returns the six grid-adjacent cells.
func (c Cell) Neighbors() [6]Cell {
	var out [6]Cell
	for i, off := range neighborOffsets {
		out[i] = Cell{Q: c.Q + off.Q, R: c.R + off.R}
	}
	return out
}

// Corners returns the six projected corner coordinates of a cell, counter
// clockwise, for boundary output.
func (g *Grid) Corners(c Cell) []geo.Point {
	center := g.Center(c)
	corners := make([]geo.Point, 6)
	for k := 0; k < 6; k++ {
		angle := math.Pi / 180 * (60*float64(k) + 30)
		corners[k] = geo.Point{
			X: center.X + g.size*math.Cos(angle),
			Y: center.Y + g.size*math.Sin(angle),
		}
	}
	return corners
}

// CoverPolyline returns every cell a projected polyline passes through.
// Segments are sampled at half the cell spacing so thin cells crossed
// between vertices are not missed.
func (g *Grid) CoverPolyline(pts []geo.Point) map[Cell]struct{} {
	cells := make(map[Cell]struct{})
	if len(pts) == 0 {
		return cells
	}
	cells[g.CellAt(pts[0])] = struct{}{}
	step := g.spacing / 2
	for i := 1; i < len(pts); i++ {
		seg := geo.Distance(pts[i-1], pts[i])
		samples := int(math.Ceil(seg/step)) + 1
		for s := 1; s <= samples; s++ {
			t := float64(s) / float64(samples)
			cells[g.CellAt(geo.Point{
				X: pts[i-1].X + t*(pts[i].X-pts[i-1].X),
				Y: pts[i-1].Y + t*(pts[i].Y-pts[i-1].Y),
			})] = struct{}{}
		}
	}
	return cells
}

// roundAxial rounds fractional axial coordinates to the containing cell via
// cube-coordinate rounding.
func roundAxial(q, r float64) Cell {
	x, z := q, r
	y := -x - z

	rx, ry, rz := math.Round(x), math.Round(y), math.Round(z)
	dx, dy, dz := math.Abs(rx-x), math.Abs(ry-y), math.Abs(rz-z)

	switch {
	case dx > dy && dx > dz:
		rx = -ry - rz
	case dy > dz:
		// y is derived, nothing to fix for axial output
	default:
		rz = -rx - ry
	}
	return Cell{Q: int(rx), R: int(rz)}
}
