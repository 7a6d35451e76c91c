package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanform/walkability/internal/geo"
)

// ladderGraph builds a small network:
//
//	(0,0) -- 100 -- (100,0) -- 100 -- (200,0)
//	                   |
//	                  100
//	                   |
//	                (100,100)
func ladderGraph() *Graph {
	b := NewBuilder()
	b.AddPath("main", []geo.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 200, Y: 0}})
	b.AddPath("spur", []geo.Point{{X: 100, Y: 0}, {X: 100, Y: 100}})
	return b.Build()
}

func TestReachableFrom(t *testing.T) {
	g := ladderGraph()
	origin, _, ok := g.NearestNode(geo.Point{X: 0, Y: 0}, 1)
	require.True(t, ok)

	set := g.ReachableFrom(origin, 250)
	require.Len(t, set, 3, "all other nodes within 250 m network distance")

	for id, reach := range set {
		assert.GreaterOrEqual(t, reach.Network, reach.Beeline,
			"triangle inequality for node %d", id)
		assert.LessOrEqual(t, reach.Network, 250.0)
	}

	far, _, ok := g.NearestNode(geo.Point{X: 200, Y: 0}, 1)
	require.True(t, ok)
	assert.InDelta(t, 200, set[far].Network, 1e-9)
	assert.InDelta(t, 200, set[far].Beeline, 1e-9)

	corner, _, ok := g.NearestNode(geo.Point{X: 100, Y: 100}, 1)
	require.True(t, ok)
	assert.InDelta(t, 200, set[corner].Network, 1e-9)
	assert.InDelta(t, 141.42, set[corner].Beeline, 0.01)
}

func TestReachableFrom_Bounded(t *testing.T) {
	g := ladderGraph()
	origin, _, ok := g.NearestNode(geo.Point{X: 0, Y: 0}, 1)
	require.True(t, ok)

	set := g.ReachableFrom(origin, 150)
	assert.Len(t, set, 1, "only the middle node is within 150 m")
}

func TestReachableFrom_DisconnectedComponent(t *testing.T) {
	b := NewBuilder()
	b.AddPath("a", []geo.Point{{X: 0, Y: 0}, {X: 100, Y: 0}})
	b.AddPath("island", []geo.Point{{X: 1000, Y: 0}, {X: 1100, Y: 0}})
	g := b.Build()

	origin, _, ok := g.NearestNode(geo.Point{X: 0, Y: 0}, 1)
	require.True(t, ok)

	set := g.ReachableFrom(origin, 10000)
	assert.Len(t, set, 1, "search confined to the origin's component")
}

func TestReachableFrom_EdgeCases(t *testing.T) {
	empty := NewBuilder().Build()
	assert.Empty(t, empty.ReachableFrom(0, 100), "empty graph yields empty set, not an error")

	g := ladderGraph()
	assert.Empty(t, g.ReachableFrom(NodeID(99), 100), "out-of-range origin")
	assert.Empty(t, g.ReachableFrom(0, 0), "non-positive budget")
}

func TestReachableFrom_PrefersShorterMultiEdge(t *testing.T) {
	b := NewBuilder()
	b.AddPath("long", []geo.Point{{X: 0, Y: 0}, {X: 100, Y: 0}})
	// Parallel edge with an artificial detour vertex making it longer.
	b.AddPath("detour", []geo.Point{{X: 0, Y: 0}, {X: 50, Y: 80}, {X: 100, Y: 0}})
	g := b.Build()

	origin, _, ok := g.NearestNode(geo.Point{X: 0, Y: 0}, 1)
	require.True(t, ok)
	target, _, ok := g.NearestNode(geo.Point{X: 100, Y: 0}, 1)
	require.True(t, ok)

	set := g.ReachableFrom(origin, 1000)
	assert.InDelta(t, 100, set[target].Network, 1e-9)
}

func TestShortestDistance(t *testing.T) {
	g := ladderGraph()
	a, _, _ := g.NearestNode(geo.Point{X: 0, Y: 0}, 1)
	c, _, _ := g.NearestNode(geo.Point{X: 100, Y: 100}, 1)

	dist, ok := g.ShortestDistance(a, c, 500)
	require.True(t, ok)
	assert.InDelta(t, 200, dist, 1e-9)

	_, ok = g.ShortestDistance(a, c, 150)
	assert.False(t, ok, "budget exceeded")

	dist, ok = g.ShortestDistance(a, a, 10)
	require.True(t, ok)
	assert.Zero(t, dist)

	_, ok = g.ShortestDistance(a, NodeID(42), 100)
	assert.False(t, ok, "unknown target")
}

func TestDecayFunctions(t *testing.T) {
	tests := []struct {
		name   string
		fn     DecayFunc
		meters float64
		want   float64
	}{
		{"none close", DecayNone, 100, 1},
		{"none far", DecayNone, 5000, 1},
		{"step <400", DecayStep, 399, 1},
		{"step <800", DecayStep, 400, 0.6},
		{"step <1200", DecayStep, 1100, 0.25},
		{"step <1800", DecayStep, 1700, 0.08},
		{"step beyond", DecayStep, 1800, 0},
		{"polynomial origin", DecayPolynomial, 0, 1},
		{"polynomial cutoff", DecayPolynomial, 1501, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.fn(tt.meters), 1e-9)
		})
	}
}

func TestDecayStep_Thresholds(t *testing.T) {
	// Pin both sides of every band boundary. Each boundary distance belongs
	// to the next band down.
	tests := []struct {
		meters float64
		want   float64
	}{
		{0, 1},
		{399.99, 1},
		{400, 0.6},
		{799.99, 0.6},
		{800, 0.25},
		{1199.99, 0.25},
		{1200, 0.08},
		{1799.99, 0.08},
		{1800, 0},
		{10000, 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, DecayStep(tt.meters), 1e-12, "at %v m", tt.meters)
	}

	// Non-increasing over the whole range.
	prev := DecayStep(0)
	for m := 10.0; m <= 2500; m += 10 {
		w := DecayStep(m)
		assert.LessOrEqual(t, w, prev, "at %v m", m)
		prev = w
	}
}

func TestDecayPolynomial_Bounded(t *testing.T) {
	for m := 0.0; m <= 2000; m += 25 {
		w := DecayPolynomial(m)
		assert.GreaterOrEqual(t, w, 0.0, "at %v m", m)
		assert.LessOrEqual(t, w, 1.0, "at %v m", m)
	}
	// Monotone-ish sanity: a close target outweighs a distant one.
	assert.Greater(t, DecayPolynomial(200), DecayPolynomial(1400))
}

func TestSelectDecay(t *testing.T) {
	for _, name := range []string{DecayNameNone, DecayNameStep, DecayNamePolynomial} {
		fn, err := SelectDecay(name)
		require.NoError(t, err)
		require.NotNil(t, fn)
	}

	_, err := SelectDecay("linear")
	assert.Error(t, err)
}
