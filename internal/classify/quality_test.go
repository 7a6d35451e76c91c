package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/urbanform/walkability/internal/osm"
)

func TestSurfaceQuality_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		tags     osm.Tags
		category Category
		want     Quality
	}{
		{
			"smoothness wins over conflicting surface",
			osm.Tags{"highway": "footway", "smoothness": "excellent", "surface": "sand"},
			CategoryDesignated,
			QualityGood,
		},
		{
			"sidewalk smoothness wins over generic tags",
			osm.Tags{"highway": "residential", "sidewalk:both:smoothness": "bad", "smoothness": "excellent"},
			CategoryDesignated,
			QualityPoor,
		},
		{
			"sidewalk surface is qualified",
			osm.Tags{"highway": "residential", "sidewalk:left:surface": "asphalt"},
			CategoryDesignated,
			QualityPotentiallyGood,
		},
		{
			"surface only is qualified",
			osm.Tags{"highway": "footway", "surface": "paving_stones"},
			CategoryDesignated,
			QualityPotentiallyMediocre,
		},
		{
			"tracktype fallback",
			osm.Tags{"highway": "track", "tracktype": "grade1"},
			CategorySharedMediumSpeed,
			QualityGood,
		},
		{
			"no quality tags",
			osm.Tags{"highway": "footway"},
			CategoryDesignated,
			QualityUnknown,
		},
		{
			"unknown surface value",
			osm.Tags{"highway": "footway", "surface": "lava"},
			CategoryDesignated,
			QualityUnknown,
		},
		{
			"generic surface on shared road describes the roadway",
			osm.Tags{"highway": "residential", "surface": "asphalt"},
			CategorySharedUnknownSpeed,
			QualityUnknown,
		},
		{
			"generic surface on a track is trusted",
			osm.Tags{"highway": "track", "surface": "gravel"},
			CategorySharedMediumSpeed,
			QualityPotentiallyPoor,
		},
		{
			"very poor surface collapses to potentially poor",
			osm.Tags{"highway": "footway", "surface": "sand"},
			CategoryDesignated,
			QualityPotentiallyPoor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SurfaceQuality(tt.tags, tt.category))
		})
	}
}

func TestSurfaceQuality_PavingStonesNeverUnqualified(t *testing.T) {
	// Material-only inference must carry the uncertainty qualifier.
	got := SurfaceQuality(osm.Tags{"highway": "footway", "surface": "paving_stones"}, CategoryDesignated)
	assert.Equal(t, QualityPotentiallyMediocre, got)
	assert.NotEqual(t, QualityMediocre, got)
}

func TestSmoothnessGrade(t *testing.T) {
	assert.Equal(t, QualityGood, SmoothnessGrade(osm.Tags{"smoothness": "good"}))
	assert.Equal(t, QualityVeryPoor, SmoothnessGrade(osm.Tags{"smoothness": "horrible"}))
	assert.Equal(t, QualityPoor, SmoothnessGrade(osm.Tags{
		"footway:smoothness": "bad", "smoothness": "excellent",
	}), "sidewalk-scoped tag preferred")
	assert.Equal(t, QualityUnknown, SmoothnessGrade(osm.Tags{}))
}

func TestSurfaceTypeGrade(t *testing.T) {
	assert.Equal(t, QualityGood, SurfaceTypeGrade(osm.Tags{"surface": "asphalt"}))
	assert.Equal(t, QualityMediocre, SurfaceTypeGrade(osm.Tags{"surface": "wood"}))
	assert.Equal(t, QualityUnknown, SurfaceTypeGrade(osm.Tags{"surface": "unheard_of"}))
	assert.Equal(t, QualityUnknown, SurfaceTypeGrade(osm.Tags{}))
}

func TestPotentially(t *testing.T) {
	assert.Equal(t, QualityPotentiallyGood, Potentially(QualityGood))
	assert.Equal(t, QualityPotentiallyMediocre, Potentially(QualityMediocre))
	assert.Equal(t, QualityPotentiallyPoor, Potentially(QualityPoor))
	assert.Equal(t, QualityPotentiallyPoor, Potentially(QualityVeryPoor))
	assert.Equal(t, QualityUnknown, Potentially(QualityUnknown))
}
