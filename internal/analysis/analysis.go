// Package analysis computes the published walkability indicators: a
// connectivity score per path segment and a detour factor per hexagonal grid
// cell. All computations run against one immutable graph per AOI; per-entity
// work is independent and parallelized, with results aggregated by entity
// identity.
package analysis

import (
	"runtime"

	"github.com/rotisserie/eris"

	"github.com/urbanform/walkability/internal/network"
)

// Options holds the per-AOI computation parameters. Options are passed
// explicitly so concurrent AOI computations cannot leak configuration into
// each other.
type Options struct {
	// RunID identifies this run in persisted results. Empty means a fresh
	// id is generated.
	RunID string
	// MaxWalkingDistance is the beeline search radius in meters, derived
	// from walking speed and maximum trip time.
	MaxWalkingDistance float64
	// Decay weights reachable targets by beeline distance.
	Decay network.DecayFunc
	// DetourRadiusScale multiplies the search budget for the detour
	// analysis to admit round-trip-scale neighborhoods.
	DetourRadiusScale float64
	// GridSpacing is the center-to-center distance of adjacent hex cells in
	// meters.
	GridSpacing float64
	// Workers caps the parallel per-entity computations. Zero means
	// GOMAXPROCS.
	Workers int
}

// Validate rejects option sets that would make the computation meaningless.
// These are user-facing configuration errors and abort before any work.
func (o Options) Validate() error {
	if o.MaxWalkingDistance <= 0 {
		return eris.New("analysis: max walking distance must be positive")
	}
	if o.Decay == nil {
		return eris.New("analysis: decay function is required")
	}
	if o.DetourRadiusScale <= 0 {
		return eris.New("analysis: detour radius scale must be positive")
	}
	if o.GridSpacing <= 0 {
		return eris.New("analysis: grid spacing must be positive")
	}
	return nil
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}
