package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/urbanform/walkability/internal/classify"
	"github.com/urbanform/walkability/internal/geo"
	"github.com/urbanform/walkability/internal/hexgrid"
	"github.com/urbanform/walkability/internal/network"
	"github.com/urbanform/walkability/internal/osm"
)

// Stats summarizes what one run saw and discarded.
type Stats struct {
	Paths             int           `json:"paths"`
	Included          int           `json:"included"`
	GraphNodes        int           `json:"graph_nodes"`
	GraphEdges        int           `json:"graph_edges"`
	DroppedDegenerate int           `json:"dropped_degenerate"`
	Cells             int           `json:"cells"`
	UnreachableCells  int           `json:"unreachable_cells"`
	Elapsed           time.Duration `json:"elapsed"`
}

// Result is the complete outcome of one walkability run. Projection and Grid
// are retained so output encoders can map projected coordinates back to
// WGS84.
type Result struct {
	RunID    string
	Segments []SegmentResult
	Cells    []CellResult
	// LengthKm is the total path length per category, in kilometers.
	LengthKm map[classify.Category]float64
	Stats    Stats

	Projection *geo.Projection
	Grid       *hexgrid.Grid
}

// Run executes the full pipeline over one area of interest: classification,
// graph construction, per-segment connectivity and per-cell detour factors.
// boundary, when non-nil, restricts the input to paths whose representative
// point falls inside it. The inputs are not mutated; concurrent runs over
// different areas are independent.
func Run(ctx context.Context, paths []osm.RawPath, boundary *geom.MultiPolygon, copts classify.Options, included classify.IncludedSet, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, eris.New("analysis: no input paths")
	}
	start := time.Now()

	classified := classify.All(paths, copts)

	// One local projection per run, anchored at the centroid of the input
	// extent so planar distances stay accurate across the AOI.
	var box geo.BBox
	for _, cp := range classified {
		b := geo.GeomBBox(cp.Geometry)
		box.Extend(b.MinLng, b.MinLat)
		box.Extend(b.MaxLng, b.MaxLat)
	}
	lon0, lat0 := box.Center()
	proj := geo.NewProjection(lon0, lat0)

	if boundary != nil {
		classified = clipToBoundary(classified, boundary)
		if len(classified) == 0 {
			return nil, eris.New("analysis: boundary excludes every input path")
		}
	}

	segments := make([]SegmentResult, len(classified))
	origins := make([]geo.Point, len(classified))
	parts := make([][][]geo.Point, len(classified))
	builder := network.NewBuilder()
	for i, cp := range classified {
		segments[i] = SegmentResult{
			PathID:   cp.ID,
			Geometry: cp.Geometry,
			Labels:   cp.Labels,
			Included: included[cp.Labels.Category],
		}
		parts[i] = projectParts(cp.Geometry, proj)
		origins[i] = representativePoint(parts[i])
		if segments[i].Included {
			for _, part := range parts[i] {
				builder.AddPath(cp.ID, part)
			}
		}
	}
	graph := builder.Build()

	if err := ConnectivityScores(ctx, graph, segments, origins, opts); err != nil {
		return nil, eris.Wrap(err, "analysis: connectivity")
	}

	grid := hexgrid.New(opts.GridSpacing)
	allCells := make(map[hexgrid.Cell]bool)
	walkableCells := make(map[hexgrid.Cell]bool)
	for i := range classified {
		for _, part := range parts[i] {
			for cell := range grid.CoverPolyline(part) {
				allCells[cell] = true
				if segments[i].Included {
					walkableCells[cell] = true
				}
			}
		}
	}

	cells, err := DetourFactors(ctx, graph, grid, walkableCells, allCells, opts)
	if err != nil {
		return nil, eris.Wrap(err, "analysis: detour")
	}

	stats := Stats{
		Paths:             len(classified),
		GraphNodes:        graph.NumNodes(),
		GraphEdges:        graph.NumEdges(),
		DroppedDegenerate: graph.DroppedDegenerate(),
		Cells:             len(cells),
		Elapsed:           time.Since(start),
	}
	for _, seg := range segments {
		if seg.Included {
			stats.Included++
		}
	}
	for _, cell := range cells {
		if cell.DetourFactor == Unreachable {
			stats.UnreachableCells++
		}
	}

	zap.L().Info("analysis: run complete",
		zap.Int("paths", stats.Paths),
		zap.Int("included", stats.Included),
		zap.Int("graph_nodes", stats.GraphNodes),
		zap.Int("graph_edges", stats.GraphEdges),
		zap.Int("cells", stats.Cells),
		zap.Int("unreachable_cells", stats.UnreachableCells),
		zap.Duration("elapsed", stats.Elapsed))

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Result{
		RunID:      runID,
		Segments:   segments,
		Cells:      cells,
		LengthKm:   classify.LengthByCategory(classified, proj),
		Stats:      stats,
		Projection: proj,
		Grid:       grid,
	}, nil
}

// clipToBoundary keeps paths whose bounding-box center lies inside the
// boundary. Paths straddling the edge stay in so their geometry is not cut.
func clipToBoundary(classified []classify.ClassifiedPath, boundary *geom.MultiPolygon) []classify.ClassifiedPath {
	kept := classified[:0:0]
	for _, cp := range classified {
		lon, lat := geo.GeomBBox(cp.Geometry).Center()
		if geo.PointInMultiPolygon(lon, lat, boundary) {
			kept = append(kept, cp)
		}
	}
	return kept
}

// projectParts splits a geometry into its constituent polylines in projected
// coordinates. Polygon rings are treated as closed polylines, so footprint
// circumferences participate in the network like any path.
func projectParts(g geom.T, proj *geo.Projection) [][]geo.Point {
	switch t := g.(type) {
	case *geom.LineString:
		return [][]geo.Point{geo.ProjectLine(t, proj)}
	case *geom.MultiLineString:
		parts := make([][]geo.Point, 0, t.NumLineStrings())
		for i := 0; i < t.NumLineStrings(); i++ {
			parts = append(parts, geo.ProjectLine(t.LineString(i), proj))
		}
		return parts
	case *geom.Polygon:
		parts := make([][]geo.Point, 0, t.NumLinearRings())
		for i := 0; i < t.NumLinearRings(); i++ {
			parts = append(parts, geo.ProjectLine(t.LinearRing(i), proj))
		}
		return parts
	case *geom.MultiPolygon:
		var parts [][]geo.Point
		for i := 0; i < t.NumPolygons(); i++ {
			parts = append(parts, projectParts(t.Polygon(i), proj)...)
		}
		return parts
	case nil:
		return nil
	default:
		return [][]geo.Point{geo.ProjectLine(g, proj)}
	}
}

// representativePoint picks the arc-length midpoint of the longest part.
func representativePoint(parts [][]geo.Point) geo.Point {
	var best []geo.Point
	bestLen := -1.0
	for _, part := range parts {
		if l := geo.LineLength(part); l > bestLen {
			bestLen = l
			best = part
		}
	}
	if len(best) == 0 {
		return geo.Point{}
	}
	return geo.Midpoint(best)
}
