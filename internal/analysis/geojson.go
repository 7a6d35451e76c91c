package analysis

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// SegmentFeatures encodes the per-segment results as a GeoJSON feature
// collection in WGS84, carrying the classification labels and the
// connectivity score as feature properties.
func SegmentFeatures(res *Result) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}
	for _, seg := range res.Segments {
		if seg.Geometry == nil {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       seg.PathID,
			Geometry: seg.Geometry,
			Properties: map[string]interface{}{
				"category":        string(seg.Labels.Category),
				"rating":          seg.Labels.Rating,
				"surface_quality": string(seg.Labels.SurfaceQuality),
				"smoothness":      string(seg.Labels.Smoothness),
				"surface_type":    string(seg.Labels.SurfaceType),
				"included":        seg.Included,
				"connectivity":    seg.Connectivity,
			},
		})
	}
	return fc
}

// CellFeatures encodes the hex grid results as a GeoJSON feature collection
// of hexagon polygons in WGS84. Unreachable cells carry a null detour factor
// plus an explicit flag, so downstream styling does not have to know the
// sentinel value.
func CellFeatures(res *Result) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}
	for _, cell := range res.Cells {
		corners := res.Grid.Corners(cell.Cell)
		ring := make([]geom.Coord, 0, len(corners)+1)
		for _, corner := range corners {
			lon, lat := res.Projection.Unproject(corner)
			ring = append(ring, geom.Coord{lon, lat})
		}
		ring = append(ring, ring[0])

		poly := geom.NewPolygon(geom.XY)
		if _, err := poly.SetCoords([][]geom.Coord{ring}); err != nil {
			continue
		}

		props := map[string]interface{}{
			"unreachable": cell.DetourFactor == Unreachable,
			"walkable":    cell.Walkable,
			"displayed":   cell.Displayed,
		}
		if cell.DetourFactor != Unreachable {
			props["detour_factor"] = cell.DetourFactor
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   poly,
			Properties: props,
		})
	}
	return fc
}
