package analysis

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/urbanform/walkability/internal/geo"
	"github.com/urbanform/walkability/internal/hexgrid"
	"github.com/urbanform/walkability/internal/network"
)

// Unreachable is the sentinel detour factor for a cell whose center cannot be
// routed to at least one populated neighbor cell.
const Unreachable = -1

// displayThreshold separates ordinary cells from cells whose detour is high
// enough to surface on a map.
const displayThreshold = 2.0

// CellResult is the per-cell detour outcome.
type CellResult struct {
	Cell         hexgrid.Cell
	Center       geo.Point
	DetourFactor float64
	// Walkable reports whether the cell contains any potentially-walkable
	// path. Cells without one keep the Unreachable sentinel.
	Walkable bool
	// Displayed marks cells whose detour factor is at or above the display
	// threshold. Unreachable cells are never displayed.
	Displayed bool
}

// DetourFactors computes the detour factor for every grid cell that contains
// path geometry. For each populated cell, the center is snapped to the
// nearest network node and routed to the snapped centers of its populated
// hex neighbors; the factor is the mean ratio of network distance to beeline
// distance across those neighbors, floored at 1.0. A cell with no walkable
// path, no populated neighbor, or any unroutable neighbor gets the
// Unreachable sentinel.
func DetourFactors(ctx context.Context, g *network.Graph, grid *hexgrid.Grid, walkableCells, allCells map[hexgrid.Cell]bool, opts Options) ([]CellResult, error) {
	cells := make([]hexgrid.Cell, 0, len(allCells))
	for cell := range allCells {
		cells = append(cells, cell)
	}
	// Deterministic output order regardless of map iteration.
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Q != cells[j].Q {
			return cells[i].Q < cells[j].Q
		}
		return cells[i].R < cells[j].R
	})

	// Each cell center snaps at most once; precompute the snaps serially so
	// the parallel phase is read-only.
	type snap struct {
		node network.NodeID
		dist float64
		ok   bool
	}
	snaps := make(map[hexgrid.Cell]snap, len(walkableCells))
	for cell := range walkableCells {
		center := grid.Center(cell)
		node, dist, ok := g.NearestNode(center, opts.GridSpacing)
		snaps[cell] = snap{node: node, dist: dist, ok: ok}
	}

	budget := opts.MaxWalkingDistance * opts.DetourRadiusScale
	results := make([]CellResult, len(cells))

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(opts.workers())

	for i, cell := range cells {
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := CellResult{
				Cell:         cell,
				Center:       grid.Center(cell),
				DetourFactor: Unreachable,
				Walkable:     walkableCells[cell],
			}
			defer func() { results[i] = res }()

			from := snaps[cell]
			if !res.Walkable || !from.ok {
				return nil
			}

			var sum float64
			var count int
			for _, neighbor := range cell.Neighbors() {
				if !walkableCells[neighbor] {
					continue
				}
				to := snaps[neighbor]
				if !to.ok {
					return nil
				}
				netDist, reachable := g.ShortestDistance(from.node, to.node, budget)
				if !reachable {
					return nil
				}
				// The snapping offsets are part of the walked route.
				ratio := (from.dist + netDist + to.dist) / opts.GridSpacing
				sum += ratio
				count++
			}
			if count == 0 {
				return nil
			}
			res.DetourFactor = math.Max(1.0, sum/float64(count))
			res.Displayed = res.DetourFactor >= displayThreshold
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
