package network

import (
	"math"

	"go.uber.org/zap"

	"github.com/urbanform/walkability/internal/geo"
)

// snapEpsilon is the tolerance in meters under which two endpoint
// coordinates collapse into one shared node.
const snapEpsilon = 0.05

// NodeID indexes a graph vertex.
type NodeID int

// Node is a graph vertex at a projected coordinate.
type Node struct {
	ID  NodeID
	Pos geo.Point
}

// HalfEdge is one direction of an undirected edge as seen from a node's
// adjacency list.
type HalfEdge struct {
	To     NodeID
	Length float64
	PathID string
}

// Graph is an undirected weighted graph over the potentially-walkable path
// set. Built once per AOI and immutable afterwards; concurrent readers are
// safe.
type Graph struct {
	nodes []Node
	adj   [][]HalfEdge

	numEdges          int
	droppedDegenerate int
}

// Builder accumulates paths into a Graph, deduplicating coincident endpoint
// coordinates with a fixed snapping tolerance.
type Builder struct {
	graph *Graph
	index map[cellKey][]NodeID
}

type cellKey struct{ cx, cy int }

// NewBuilder creates an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{
		graph: &Graph{},
		index: make(map[cellKey][]NodeID),
	}
}

func keyOf(pt geo.Point) cellKey {
	return cellKey{
		cx: int(math.Floor(pt.X / snapEpsilon)),
		cy: int(math.Floor(pt.Y / snapEpsilon)),
	}
}

// nodeAt returns the node within the snapping tolerance of pt, creating one
// if none exists. Neighboring index cells are probed so points near a cell
// border still snap together.
func (b *Builder) nodeAt(pt geo.Point) NodeID {
	center := keyOf(pt)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			key := cellKey{center.cx + dx, center.cy + dy}
			for _, id := range b.index[key] {
				if geo.Distance(b.graph.nodes[id].Pos, pt) <= snapEpsilon {
					return id
				}
			}
		}
	}
	id := NodeID(len(b.graph.nodes))
	b.graph.nodes = append(b.graph.nodes, Node{ID: id, Pos: pt})
	b.graph.adj = append(b.graph.adj, nil)
	b.index[center] = append(b.index[center], id)
	return id
}

// AddPath inserts a projected polyline. Every consecutive vertex pair
// becomes one undirected edge, so paths sharing a vertex coordinate connect
// at a common node and the summed edge length equals the geometric path
// length. Zero-length segments and self-loops after snapping are dropped
// and counted.
func (b *Builder) AddPath(pathID string, pts []geo.Point) {
	if len(pts) < 2 {
		b.graph.droppedDegenerate++
		return
	}
	added := false
	for i := 1; i < len(pts); i++ {
		length := geo.Distance(pts[i-1], pts[i])
		if length == 0 {
			b.graph.droppedDegenerate++
			continue
		}
		from := b.nodeAt(pts[i-1])
		to := b.nodeAt(pts[i])
		if from == to {
			b.graph.droppedDegenerate++
			continue
		}
		b.graph.adj[from] = append(b.graph.adj[from], HalfEdge{To: to, Length: length, PathID: pathID})
		b.graph.adj[to] = append(b.graph.adj[to], HalfEdge{To: from, Length: length, PathID: pathID})
		b.graph.numEdges++
		added = true
	}
	if !added {
		zap.L().Debug("network: path contributed no edges", zap.String("path", pathID))
	}
}

// Build finalizes the graph. The builder must not be reused afterwards.
func (b *Builder) Build() *Graph {
	g := b.graph
	zap.L().Info("network: built graph",
		zap.Int("nodes", len(g.nodes)),
		zap.Int("edges", g.numEdges),
		zap.Int("dropped_degenerate", g.droppedDegenerate))
	return g
}

// NumNodes returns the vertex count.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the undirected edge count.
func (g *Graph) NumEdges() int { return g.numEdges }

// DroppedDegenerate reports how many degenerate segments were discarded
// during construction.
func (g *Graph) DroppedDegenerate() int { return g.droppedDegenerate }

// Pos returns the coordinate of a node.
func (g *Graph) Pos(id NodeID) geo.Point { return g.nodes[id].Pos }

// Neighbors returns the adjacency list of a node. Callers must not mutate
// the returned slice.
func (g *Graph) Neighbors(id NodeID) []HalfEdge { return g.adj[id] }

// Nodes returns all vertices. Callers must not mutate the returned slice.
func (g *Graph) Nodes() []Node { return g.nodes }

// NearestNode returns the node closest to pt within maxDist, with its
// distance. ok is false for an empty graph or when nothing is in range.
func (g *Graph) NearestNode(pt geo.Point, maxDist float64) (id NodeID, dist float64, ok bool) {
	best := math.Inf(1)
	for _, node := range g.nodes {
		if d := geo.Distance(node.Pos, pt); d < best {
			best = d
			id = node.ID
		}
	}
	if math.IsInf(best, 1) || best > maxDist {
		return 0, 0, false
	}
	return id, best, true
}
