package osm

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// RawPath is one street or path feature as supplied by the map data
// collaborator: a stable identifier, a geometry (line or polygon footprint),
// and the raw attribute mapping. RawPaths are read-only after loading.
type RawPath struct {
	ID       string
	Geometry geom.T
	Tags     Tags
}

// LoadGeoJSON reads path features from a GeoJSON FeatureCollection file.
// Features without a usable geometry are skipped with a counter; feature ids
// fall back to the collection index when absent.
func LoadGeoJSON(path string) ([]RawPath, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "osm: read geojson")
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "osm: parse geojson")
	}

	paths := make([]RawPath, 0, len(fc.Features))
	skipped := 0
	for i, feature := range fc.Features {
		if feature == nil || feature.Geometry == nil {
			skipped++
			continue
		}
		id := feature.ID
		if id == "" {
			id = strconv.Itoa(i)
		}
		paths = append(paths, RawPath{
			ID:       id,
			Geometry: feature.Geometry,
			Tags:     propertiesToTags(feature.Properties),
		})
	}
	if skipped > 0 {
		zap.L().Warn("osm: skipped features without geometry", zap.Int("count", skipped))
	}
	zap.L().Info("osm: loaded geojson paths", zap.String("file", path), zap.Int("count", len(paths)))
	return paths, nil
}

// propertiesToTags flattens GeoJSON properties into string tags. Non-string
// scalars are rendered with their default formatting; nested values and nils
// are dropped.
func propertiesToTags(props map[string]interface{}) Tags {
	tags := make(Tags, len(props))
	for key, value := range props {
		switch v := value.(type) {
		case string:
			tags[key] = v
		case float64:
			tags[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			tags[key] = strconv.FormatBool(v)
		case int:
			tags[key] = strconv.Itoa(v)
		case json.Number:
			tags[key] = v.String()
		case nil:
			// dropped
		default:
			tags[key] = fmt.Sprint(v)
		}
	}
	return tags
}
