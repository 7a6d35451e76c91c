package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/urbanform/walkability/internal/osm"
)

// loadPaths reads the input path features in the configured format.
func loadPaths(format, path string) ([]osm.RawPath, error) {
	if path == "" {
		return nil, eris.New("input path is required (set input.path or --input)")
	}
	switch format {
	case "geojson":
		return osm.LoadGeoJSON(path)
	case "shapefile":
		return osm.LoadShapefile(path)
	default:
		return nil, eris.Errorf("unsupported input format: %s", format)
	}
}

// loadBoundary reads an optional area-of-interest polygon from a GeoJSON
// file. The polygons of every feature are merged into one multipolygon.
func loadBoundary(path string) (*geom.MultiPolygon, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read boundary")
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "parse boundary")
	}

	boundary := geom.NewMultiPolygon(geom.XY)
	for _, feature := range fc.Features {
		switch g := feature.Geometry.(type) {
		case *geom.Polygon:
			if err := boundary.Push(g); err != nil {
				return nil, eris.Wrap(err, "boundary polygon")
			}
		case *geom.MultiPolygon:
			for i := 0; i < g.NumPolygons(); i++ {
				if err := boundary.Push(g.Polygon(i)); err != nil {
					return nil, eris.Wrap(err, "boundary polygon")
				}
			}
		}
	}
	if boundary.NumPolygons() == 0 {
		return nil, eris.Errorf("boundary file %s contains no polygons", path)
	}
	return boundary, nil
}

// lineParts splits a geometry into its linestring parts. Non-line geometries
// yield no parts.
func lineParts(g geom.T) []geom.T {
	switch t := g.(type) {
	case *geom.LineString:
		return []geom.T{t}
	case *geom.MultiLineString:
		parts := make([]geom.T, 0, t.NumLineStrings())
		for i := 0; i < t.NumLineStrings(); i++ {
			parts = append(parts, t.LineString(i))
		}
		return parts
	default:
		return nil
	}
}

// ensureParentDir creates the directory an artifact will be written into.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return eris.Wrapf(os.MkdirAll(dir, 0o755), "create %s", dir)
}

// writeFeatureCollection writes a GeoJSON artifact.
func writeFeatureCollection(path string, fc *geojson.FeatureCollection) error {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "marshal %s", path)
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}
