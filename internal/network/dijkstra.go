package network

import (
	"container/heap"

	"github.com/urbanform/walkability/internal/geo"
)

// Reach holds the two distances to a reachable target.
type Reach struct {
	Network float64
	Beeline float64
}

// ReachabilitySet maps reachable node ids to their distances from one
// origin. Every entry satisfies Network >= Beeline and Network <= the search
// budget the set was computed with.
type ReachabilitySet map[NodeID]Reach

// pqItem is a priority-queue entry of the Dijkstra frontier.
type pqItem struct {
	node NodeID
	dist float64
}

type frontier []pqItem

func (f frontier) Len() int            { return len(f) }
func (f frontier) Less(i, j int) bool  { return f[i].dist < f[j].dist }
func (f frontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x interface{}) { *f = append(*f, x.(pqItem)) }
func (f *frontier) Pop() interface{} {
	old := *f
	item := old[len(old)-1]
	*f = old[:len(old)-1]
	return item
}

// ReachableFrom runs a bounded single-source shortest-path search from the
// origin node. The search prunes any frontier entry beyond maxDist, which
// confines it to the origin's component and acts as the implicit timeout.
// A target is reachable iff its shortest network distance is within maxDist;
// beeline distances are measured from the origin node's coordinate.
//
// An out-of-range origin or an empty graph yields an empty set, never an
// error: the aggregator applies the sentinel.
func (g *Graph) ReachableFrom(origin NodeID, maxDist float64) ReachabilitySet {
	result := make(ReachabilitySet)
	if int(origin) < 0 || int(origin) >= len(g.nodes) || maxDist <= 0 {
		return result
	}
	originPos := g.nodes[origin].Pos

	dist := map[NodeID]float64{origin: 0}
	f := &frontier{{node: origin, dist: 0}}

	for f.Len() > 0 {
		current := heap.Pop(f).(pqItem)
		if current.dist > dist[current.node] {
			continue // stale entry
		}
		if current.node != origin {
			result[current.node] = Reach{
				Network: current.dist,
				Beeline: geo.Distance(originPos, g.nodes[current.node].Pos),
			}
		}
		for _, edge := range g.adj[current.node] {
			next := current.dist + edge.Length
			if next > maxDist {
				continue
			}
			if old, seen := dist[edge.To]; !seen || next < old {
				dist[edge.To] = next
				heap.Push(f, pqItem{node: edge.To, dist: next})
			}
		}
	}
	return result
}

// ShortestDistance returns the bounded shortest-path distance between two
// nodes, or ok=false when the target is not reachable within maxDist.
func (g *Graph) ShortestDistance(from, to NodeID, maxDist float64) (float64, bool) {
	if int(from) < 0 || int(from) >= len(g.nodes) || int(to) < 0 || int(to) >= len(g.nodes) {
		return 0, false
	}
	if from == to {
		return 0, true
	}

	dist := map[NodeID]float64{from: 0}
	f := &frontier{{node: from, dist: 0}}

	for f.Len() > 0 {
		current := heap.Pop(f).(pqItem)
		if current.dist > dist[current.node] {
			continue
		}
		if current.node == to {
			return current.dist, true
		}
		for _, edge := range g.adj[current.node] {
			next := current.dist + edge.Length
			if next > maxDist {
				continue
			}
			if old, seen := dist[edge.To]; !seen || next < old {
				dist[edge.To] = next
				heap.Push(f, pqItem{node: edge.To, dist: next})
			}
		}
	}
	return 0, false
}
