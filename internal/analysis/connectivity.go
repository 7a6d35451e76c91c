package analysis

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"golang.org/x/sync/errgroup"

	"github.com/urbanform/walkability/internal/classify"
	"github.com/urbanform/walkability/internal/geo"
	"github.com/urbanform/walkability/internal/network"
)

// SegmentResult is the per-segment connectivity outcome. Excluded segments
// carry a zero score and never touch the routing engine.
type SegmentResult struct {
	PathID       string
	Geometry     geom.T
	Labels       classify.Labels
	Included     bool
	Connectivity float64
}

// segmentOrigin ties a segment to its representative point on the network.
type segmentOrigin struct {
	index int
	point geo.Point
}

// ConnectivityScores computes the connectivity score for every included
// segment. The score is the decay-weighted share of the reachable
// neighborhood: sum of weights over nodes reachable within the walking
// budget, divided by the sum of weights over all nodes within beeline range.
// A segment whose representative point cannot be snapped to the graph, or
// that has no candidate targets at all, scores zero.
func ConnectivityScores(ctx context.Context, g *network.Graph, segments []SegmentResult, origins []geo.Point, opts Options) error {
	if len(segments) != len(origins) {
		return eris.New("analysis: segments and origins length mismatch")
	}

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(opts.workers())

	for i := range segments {
		if !segments[i].Included {
			segments[i].Connectivity = 0
			continue
		}
		seg := segmentOrigin{index: i, point: origins[i]}
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			segments[seg.index].Connectivity = nodeConnectivity(g, seg.point, opts)
			return nil
		})
	}
	return grp.Wait()
}

// nodeConnectivity scores one origin point against the graph.
func nodeConnectivity(g *network.Graph, origin geo.Point, opts Options) float64 {
	node, _, ok := g.NearestNode(origin, opts.MaxWalkingDistance)
	if !ok {
		return 0
	}
	pos := g.Pos(node)

	// Candidate targets are every node within beeline range of the origin.
	// Reachable targets are bounded by network distance, which is never
	// shorter than the beeline, so reachable targets are a subset of the
	// candidates and the score stays within [0, 1].
	var total float64
	for _, n := range g.Nodes() {
		if n.ID == node {
			continue
		}
		d := geo.Distance(pos, n.Pos)
		if d <= opts.MaxWalkingDistance {
			total += opts.Decay(d)
		}
	}
	if total <= 0 {
		return 0
	}

	var reached float64
	for _, reach := range g.ReachableFrom(node, opts.MaxWalkingDistance) {
		if reach.Beeline <= opts.MaxWalkingDistance {
			reached += opts.Decay(reach.Beeline)
		}
	}
	return reached / total
}
