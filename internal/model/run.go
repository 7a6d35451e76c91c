// Package model holds the persisted domain records shared between the store
// backends and the commands.
package model

import (
	"encoding/json"
	"time"
)

// RunStatus tracks the lifecycle of an analysis run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one walkability analysis execution with the configuration snapshot
// it ran under. The snapshot makes results reproducible after config changes.
type Run struct {
	ID        string          `json:"id"`
	Status    RunStatus       `json:"status"`
	Config    json.RawMessage `json:"config,omitempty"`
	Stats     *RunStats       `json:"stats,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RunStats is the persisted summary of a completed run.
type RunStats struct {
	Paths             int                `json:"paths"`
	Included          int                `json:"included"`
	GraphNodes        int                `json:"graph_nodes"`
	GraphEdges        int                `json:"graph_edges"`
	DroppedDegenerate int                `json:"dropped_degenerate"`
	Cells             int                `json:"cells"`
	UnreachableCells  int                `json:"unreachable_cells"`
	ElapsedMS         int64              `json:"elapsed_ms"`
	LengthKm          map[string]float64 `json:"length_km,omitempty"`
}

// Segment is the persisted per-path result.
type Segment struct {
	RunID          string  `json:"run_id"`
	PathID         string  `json:"path_id"`
	Category       string  `json:"category"`
	Rating         float64 `json:"rating"`
	SurfaceQuality string  `json:"surface_quality"`
	Included       bool    `json:"included"`
	Connectivity   float64 `json:"connectivity"`
}

// Cell is the persisted per-hex-cell result. DetourFactor is nil when the
// cell is unreachable.
type Cell struct {
	RunID        string   `json:"run_id"`
	Q            int      `json:"q"`
	R            int      `json:"r"`
	DetourFactor *float64 `json:"detour_factor,omitempty"`
	Walkable     bool     `json:"walkable"`
	Displayed    bool     `json:"displayed"`
}
