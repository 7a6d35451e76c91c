package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanform/walkability/internal/geo"
	"github.com/urbanform/walkability/internal/hexgrid"
	"github.com/urbanform/walkability/internal/network"
)

func TestDetourFactorsLongWayRound(t *testing.T) {
	grid := hexgrid.New(250)
	a := hexgrid.Cell{Q: 0, R: 0}
	b := hexgrid.Cell{Q: 1, R: 0}
	centerA := grid.Center(a)
	centerB := grid.Center(b)

	// The only route between the two cell centers detours through a point
	// well off the direct line, tripling the walked distance.
	waypoint := geo.Point{X: (centerA.X + centerB.X) / 2, Y: centerA.Y + 370}
	builder := network.NewBuilder()
	builder.AddPath("detour", []geo.Point{centerA, waypoint, centerB})
	g := builder.Build()

	cells := map[hexgrid.Cell]bool{a: true, b: true}
	opts := defaultOptions()
	results, err := DetourFactors(context.Background(), g, grid, cells, cells, opts)
	require.NoError(t, err)
	require.Len(t, results, 2)

	want := (geo.Distance(centerA, waypoint) + geo.Distance(waypoint, centerB)) / 250
	for _, res := range results {
		assert.True(t, res.Walkable)
		assert.InDelta(t, want, res.DetourFactor, 1e-9)
		assert.True(t, res.Displayed)
	}
}

func TestDetourFactorsFloorAtOne(t *testing.T) {
	grid := hexgrid.New(250)
	a := hexgrid.Cell{Q: 0, R: 0}
	b := hexgrid.Cell{Q: 1, R: 0}

	builder := network.NewBuilder()
	builder.AddPath("direct", []geo.Point{grid.Center(a), grid.Center(b)})
	g := builder.Build()

	cells := map[hexgrid.Cell]bool{a: true, b: true}
	results, err := DetourFactors(context.Background(), g, grid, cells, cells, defaultOptions())
	require.NoError(t, err)
	for _, res := range results {
		assert.Equal(t, 1.0, res.DetourFactor)
		assert.False(t, res.Displayed)
	}
}

func TestDetourFactorsUnroutableNeighbor(t *testing.T) {
	grid := hexgrid.New(250)
	a := hexgrid.Cell{Q: 0, R: 0}
	b := hexgrid.Cell{Q: 1, R: 0}

	// Each cell holds its own stub of path with no link between them.
	builder := network.NewBuilder()
	builder.AddPath("a", []geo.Point{grid.Center(a), {X: grid.Center(a).X + 10, Y: grid.Center(a).Y}})
	builder.AddPath("b", []geo.Point{grid.Center(b), {X: grid.Center(b).X + 10, Y: grid.Center(b).Y}})
	g := builder.Build()

	cells := map[hexgrid.Cell]bool{a: true, b: true}
	results, err := DetourFactors(context.Background(), g, grid, cells, cells, defaultOptions())
	require.NoError(t, err)
	for _, res := range results {
		assert.Equal(t, float64(Unreachable), res.DetourFactor)
		assert.False(t, res.Displayed)
	}
}

func TestDetourFactorsIsolatedCell(t *testing.T) {
	grid := hexgrid.New(250)
	a := hexgrid.Cell{Q: 0, R: 0}

	builder := network.NewBuilder()
	builder.AddPath("a", []geo.Point{grid.Center(a), {X: grid.Center(a).X + 10, Y: grid.Center(a).Y}})
	g := builder.Build()

	// No populated neighbor to route to.
	cells := map[hexgrid.Cell]bool{a: true}
	results, err := DetourFactors(context.Background(), g, grid, cells, cells, defaultOptions())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, float64(Unreachable), results[0].DetourFactor)
}

func TestDetourFactorsDeterministicOrder(t *testing.T) {
	grid := hexgrid.New(250)
	cells := map[hexgrid.Cell]bool{
		{Q: 1, R: 0}:  true,
		{Q: 0, R: 0}:  true,
		{Q: 0, R: 1}:  true,
		{Q: -1, R: 0}: true,
	}
	builder := network.NewBuilder()
	for cell := range cells {
		c := grid.Center(cell)
		builder.AddPath("stub", []geo.Point{c, {X: c.X + 5, Y: c.Y}})
	}
	g := builder.Build()

	results, err := DetourFactors(context.Background(), g, grid, cells, cells, defaultOptions())
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1].Cell, results[i].Cell
		less := prev.Q < cur.Q || (prev.Q == cur.Q && prev.R < cur.R)
		assert.True(t, less, "cells out of order at %d", i)
	}
}
