package classify

import (
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/urbanform/walkability/internal/geo"
	"github.com/urbanform/walkability/internal/osm"
)

// Labels holds every derived label for one path.
type Labels struct {
	Category       Category `json:"category"`
	Rating         float64  `json:"rating"`
	SurfaceQuality Quality  `json:"surface_quality"`
	Smoothness     Quality  `json:"smoothness"`
	SurfaceType    Quality  `json:"surface_type"`
}

// ClassifiedPath is a raw path plus its derived labels.
type ClassifiedPath struct {
	osm.RawPath
	Labels
}

// Options configures the rule engine.
type Options struct {
	Bands   SpeedBands
	Ratings RatingMap
}

// DefaultOptions returns the standard speed bands and ratings.
func DefaultOptions() Options {
	return Options{Bands: DefaultSpeedBands(), Ratings: DefaultRatings()}
}

// Classify labels a single attribute mapping. Pure and total: every input,
// including an empty mapping, yields defined labels.
func Classify(tags osm.Tags, opts Options) Labels {
	p := newProbe(tags, opts.Bands)
	category := categorize(p)
	return Labels{
		Category:       category,
		Rating:         opts.Ratings[category],
		SurfaceQuality: SurfaceQuality(tags, category),
		Smoothness:     SmoothnessGrade(tags),
		SurfaceType:    SurfaceTypeGrade(tags),
	}
}

// All classifies every raw path. Classification is a pure function of each
// path's tags, so output order matches input order.
func All(paths []osm.RawPath, opts Options) []ClassifiedPath {
	classified := make([]ClassifiedPath, len(paths))
	for i, path := range paths {
		classified[i] = ClassifiedPath{
			RawPath: path,
			Labels:  Classify(path.Tags, opts),
		}
	}
	zap.L().Info("classify: labeled paths", zap.Int("count", len(classified)))
	return classified
}

// IncludedSet is the category inclusion configuration of the
// potentially-walkable filter.
type IncludedSet map[Category]bool

// DefaultIncluded excludes only the not-walkable category. Unknown paths are
// kept: missing data is not evidence of inaccessibility.
func DefaultIncluded() IncludedSet {
	set := make(IncludedSet, len(Categories))
	for _, cat := range Categories {
		set[cat] = cat != CategoryNotWalkable
	}
	return set
}

// Partition splits classified paths into potentially-walkable and excluded.
// Pure: inputs are not mutated, slice order is preserved.
func Partition(paths []ClassifiedPath, included IncludedSet) (walkable, excluded []ClassifiedPath) {
	for _, path := range paths {
		if included[path.Category] {
			walkable = append(walkable, path)
		} else {
			excluded = append(excluded, path)
		}
	}
	zap.L().Debug("classify: partitioned paths",
		zap.Int("walkable", len(walkable)), zap.Int("excluded", len(excluded)))
	return walkable, excluded
}

// FeatureCollection encodes labeled paths as GeoJSON, with the derived
// labels as feature properties.
func FeatureCollection(paths []ClassifiedPath) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}
	for _, path := range paths {
		if path.Geometry == nil {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       path.ID,
			Geometry: path.Geometry,
			Properties: map[string]interface{}{
				"category":        string(path.Category),
				"rating":          path.Rating,
				"surface_quality": string(path.SurfaceQuality),
				"smoothness":      string(path.Smoothness),
				"surface_type":    string(path.SurfaceType),
			},
		})
	}
	return fc
}

// LengthByCategory aggregates total path length in km per category.
func LengthByCategory(paths []ClassifiedPath, proj *geo.Projection) map[Category]float64 {
	totals := make(map[Category]float64)
	for _, path := range paths {
		pts := geo.ProjectLine(path.Geometry, proj)
		totals[path.Category] += geo.LineLength(pts) / 1000
	}
	return totals
}
