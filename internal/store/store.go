package store

import (
	"context"
	"encoding/json"

	"github.com/urbanform/walkability/internal/analysis"
	"github.com/urbanform/walkability/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for analysis runs and their
// results.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, runID string, config json.RawMessage) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, stats *model.RunStats) error
	FailRun(ctx context.Context, runID string, message string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Results
	SaveSegments(ctx context.Context, runID string, segments []model.Segment) error
	SaveCells(ctx context.Context, runID string, cells []model.Cell) error
	GetSegments(ctx context.Context, runID string) ([]model.Segment, error)
	GetCells(ctx context.Context, runID string) ([]model.Cell, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// SegmentsFromResult flattens an analysis result into persistable segment
// rows.
func SegmentsFromResult(res *analysis.Result) []model.Segment {
	segments := make([]model.Segment, 0, len(res.Segments))
	for _, seg := range res.Segments {
		segments = append(segments, model.Segment{
			RunID:          res.RunID,
			PathID:         seg.PathID,
			Category:       string(seg.Labels.Category),
			Rating:         seg.Labels.Rating,
			SurfaceQuality: string(seg.Labels.SurfaceQuality),
			Included:       seg.Included,
			Connectivity:   seg.Connectivity,
		})
	}
	return segments
}

// CellsFromResult flattens an analysis result into persistable cell rows.
// The unreachable sentinel becomes a null detour factor.
func CellsFromResult(res *analysis.Result) []model.Cell {
	cells := make([]model.Cell, 0, len(res.Cells))
	for _, cell := range res.Cells {
		row := model.Cell{
			RunID:     res.RunID,
			Q:         cell.Cell.Q,
			R:         cell.Cell.R,
			Walkable:  cell.Walkable,
			Displayed: cell.Displayed,
		}
		if cell.DetourFactor != analysis.Unreachable {
			factor := cell.DetourFactor
			row.DetourFactor = &factor
		}
		cells = append(cells, row)
	}
	return cells
}

// StatsFromResult converts run statistics into their persisted form.
func StatsFromResult(res *analysis.Result) *model.RunStats {
	lengths := make(map[string]float64, len(res.LengthKm))
	for category, km := range res.LengthKm {
		lengths[string(category)] = km
	}
	return &model.RunStats{
		Paths:             res.Stats.Paths,
		Included:          res.Stats.Included,
		GraphNodes:        res.Stats.GraphNodes,
		GraphEdges:        res.Stats.GraphEdges,
		DroppedDegenerate: res.Stats.DroppedDegenerate,
		Cells:             res.Stats.Cells,
		UnreachableCells:  res.Stats.UnreachableCells,
		ElapsedMS:         res.Stats.Elapsed.Milliseconds(),
		LengthKm:          lengths,
	}
}
