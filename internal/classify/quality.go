package classify

import (
	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/urbanform/walkability/internal/osm"
)

//go:embed value_ranking.yaml
var valueRankingYAML []byte

// rankingEntry is one value→grade pair in the embedded ranking table.
type rankingEntry struct {
	Value   string  `yaml:"value"`
	Ranking Quality `yaml:"ranking"`
}

// valueRanking maps attribute key → tag value → grade. Loaded once from the
// embedded table at init; the table is static data, not configuration.
var valueRanking = mustLoadValueRanking()

func mustLoadValueRanking() map[string]map[string]Quality {
	var raw map[string][]rankingEntry
	if err := yaml.Unmarshal(valueRankingYAML, &raw); err != nil {
		panic("classify: embedded value_ranking.yaml is invalid: " + err.Error())
	}
	table := make(map[string]map[string]Quality, len(raw))
	for key, entries := range raw {
		values := make(map[string]Quality, len(entries))
		for _, e := range entries {
			values[e.Value] = e.Ranking
		}
		table[key] = values
	}
	return table
}

// qualityKeys is the attribute precedence for surface quality, most specific
// first: sidewalk-scoped smoothness, sidewalk-scoped surface, then the
// generic tags, then track grade. First present key wins.
var qualityKeys = []string{
	"sidewalk:both:smoothness", "sidewalk:right:smoothness", "sidewalk:left:smoothness",
	"footway:smoothness",
	"sidewalk:both:surface", "sidewalk:right:surface", "sidewalk:left:surface",
	"footway:surface",
	"smoothness",
	"surface",
	"tracktype",
}

// roadCategories are categories where a generic smoothness/surface tag most
// likely describes the roadway rather than where pedestrians walk.
var roadCategories = map[Category]bool{
	CategorySharedLowSpeed:     true,
	CategorySharedMediumSpeed:  true,
	CategorySharedHighSpeed:    true,
	CategorySharedUnknownSpeed: true,
	CategorySharedVeryHigh:     true,
}

// firstQualityMatch returns the first present key from the precedence list
// and its value.
func firstQualityMatch(tags osm.Tags) (key, value string) {
	for _, k := range qualityKeys {
		if v := tags.Get(k); v != "" {
			return k, v
		}
	}
	return "", ""
}

// SurfaceQuality derives the surface-quality grade for a path. Smoothness
// style attributes map directly; surface-material attributes carry the
// "potentially" qualifier because the grade is inferred from the material
// alone; tracktype acts as a firmness proxy. Generic tags on a shared road
// are ignored unless the way is itself a path-like highway, since they then
// describe the roadway surface.
func SurfaceQuality(tags osm.Tags, category Category) Quality {
	key, value := firstQualityMatch(tags)

	switch key {
	case "sidewalk:both:smoothness", "sidewalk:right:smoothness", "sidewalk:left:smoothness", "footway:smoothness":
		return lookupRanking("smoothness", value)
	case "sidewalk:both:surface", "sidewalk:right:surface", "sidewalk:left:surface", "footway:surface":
		return Potentially(lookupRanking("surface", value))
	case "smoothness":
		if genericTagDescribesRoadway(tags, category) {
			return QualityUnknown
		}
		return lookupRanking("smoothness", value)
	case "surface":
		if genericTagDescribesRoadway(tags, category) {
			return QualityUnknown
		}
		return Potentially(lookupRanking("surface", value))
	case "tracktype":
		return lookupRanking("tracktype", value)
	default:
		return QualityUnknown
	}
}

// genericTagDescribesRoadway reports whether a bare smoothness/surface tag
// refers to the car roadway instead of the pedestrian surface.
func genericTagDescribesRoadway(tags osm.Tags, category Category) bool {
	if tags.In("highway", "path", "footway", "cycleway", "track", "pedestrian", "steps") {
		return false
	}
	return roadCategories[category]
}

// SmoothnessGrade grades the observed smoothness alone, preferring
// sidewalk-scoped tags over the generic one.
func SmoothnessGrade(tags osm.Tags) Quality {
	for _, key := range []string{
		"sidewalk:both:smoothness", "sidewalk:right:smoothness", "sidewalk:left:smoothness",
		"footway:smoothness", "smoothness",
	} {
		if v := tags.Get(key); v != "" {
			return lookupRanking("smoothness", v)
		}
	}
	return QualityUnknown
}

// SurfaceTypeGrade grades the surface material alone, preferring
// sidewalk-scoped tags over the generic one.
func SurfaceTypeGrade(tags osm.Tags) Quality {
	for _, key := range []string{
		"sidewalk:both:surface", "sidewalk:right:surface", "sidewalk:left:surface",
		"footway:surface", "surface",
	} {
		if v := tags.Get(key); v != "" {
			return lookupRanking("surface", v)
		}
	}
	return QualityUnknown
}

func lookupRanking(key, value string) Quality {
	if grade, ok := valueRanking[key][value]; ok {
		return grade
	}
	return QualityUnknown
}
