package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/urbanform/walkability/internal/geo"
	"github.com/urbanform/walkability/internal/osm"
)

func lineFeature(t *testing.T, id string, tags osm.Tags, coords []geom.Coord) osm.RawPath {
	t.Helper()
	ls, err := geom.NewLineString(geom.XY).SetCoords(coords)
	require.NoError(t, err)
	return osm.RawPath{ID: id, Geometry: ls, Tags: tags}
}

func TestAll_PreservesOrderAndIDs(t *testing.T) {
	paths := []osm.RawPath{
		lineFeature(t, "a", osm.Tags{"highway": "footway"}, []geom.Coord{{8.68, 49.41}, {8.681, 49.41}}),
		lineFeature(t, "b", osm.Tags{"highway": "motorway"}, []geom.Coord{{8.68, 49.42}, {8.681, 49.42}}),
	}

	classified := All(paths, DefaultOptions())
	require.Len(t, classified, 2)
	assert.Equal(t, "a", classified[0].ID)
	assert.Equal(t, CategoryDesignated, classified[0].Category)
	assert.Equal(t, 1.0, classified[0].Rating)
	assert.Equal(t, "b", classified[1].ID)
	assert.Equal(t, CategoryNotWalkable, classified[1].Category)
	assert.Equal(t, 0.0, classified[1].Rating)
}

func TestPartition(t *testing.T) {
	classified := []ClassifiedPath{
		{RawPath: osm.RawPath{ID: "walk"}, Labels: Labels{Category: CategoryDesignated}},
		{RawPath: osm.RawPath{ID: "road"}, Labels: Labels{Category: CategorySharedHighSpeed}},
		{RawPath: osm.RawPath{ID: "blocked"}, Labels: Labels{Category: CategoryNotWalkable}},
		{RawPath: osm.RawPath{ID: "mystery"}, Labels: Labels{Category: CategoryUnknown}},
	}

	walkable, excluded := Partition(classified, DefaultIncluded())
	require.Len(t, walkable, 3)
	require.Len(t, excluded, 1)
	assert.Equal(t, "blocked", excluded[0].ID)
	assert.Equal(t, "walk", walkable[0].ID, "input order preserved")
}

func TestPartition_CustomInclusion(t *testing.T) {
	classified := []ClassifiedPath{
		{RawPath: osm.RawPath{ID: "walk"}, Labels: Labels{Category: CategoryDesignated}},
		{RawPath: osm.RawPath{ID: "mystery"}, Labels: Labels{Category: CategoryUnknown}},
	}

	strict := IncludedSet{CategoryDesignated: true}
	walkable, excluded := Partition(classified, strict)
	require.Len(t, walkable, 1)
	require.Len(t, excluded, 1)
	assert.Equal(t, "mystery", excluded[0].ID)
}

func TestLengthByCategory(t *testing.T) {
	proj := geo.NewProjection(8.68, 49.41)
	// ~1112 m of footway (0.01 deg latitude) and half that of motorway.
	paths := []ClassifiedPath{
		{
			RawPath: lineFeature(t, "a", nil, []geom.Coord{{8.68, 49.41}, {8.68, 49.42}}),
			Labels:  Labels{Category: CategoryDesignated},
		},
		{
			RawPath: lineFeature(t, "b", nil, []geom.Coord{{8.68, 49.41}, {8.68, 49.415}}),
			Labels:  Labels{Category: CategoryNotWalkable},
		},
	}

	totals := LengthByCategory(paths, proj)
	assert.InDelta(t, 1.112, totals[CategoryDesignated], 0.01)
	assert.InDelta(t, 0.556, totals[CategoryNotWalkable], 0.01)
}
