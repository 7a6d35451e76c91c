package osm

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// LoadShapefile reads path features from an ESRI shapefile. DBF columns
// become tags keyed by their lowercased field name. Unsupported shape types
// are skipped with a counter.
func LoadShapefile(path string) ([]RawPath, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "osm: open shapefile")
	}
	defer reader.Close()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.ToLower(f.String())
	}

	var paths []RawPath
	skipped := 0
	for reader.Next() {
		row, shape := reader.Shape()

		g := shapeToGeom(shape)
		if g == nil {
			skipped++
			continue
		}

		tags := make(Tags, len(names))
		for i, name := range names {
			if v := strings.TrimSpace(reader.ReadAttribute(row, i)); v != "" {
				tags[name] = v
			}
		}

		paths = append(paths, RawPath{
			ID:       strconv.Itoa(row),
			Geometry: g,
			Tags:     tags,
		})
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrap(err, "osm: read shapefile")
	}

	if skipped > 0 {
		zap.L().Warn("osm: skipped unsupported shapes", zap.Int("count", skipped))
	}
	zap.L().Info("osm: loaded shapefile paths", zap.String("file", path), zap.Int("count", len(paths)))
	return paths, nil
}

// shapeToGeom converts a go-shp shape to a go-geom geometry in WGS84.
// Returns nil for unsupported or empty shapes.
func shapeToGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.PolyLine:
		return polyLineToMultiLineString(s)
	case *shp.Polygon:
		return polygonToMultiPolygon(s)
	default:
		return nil
	}
}

func polyLineToMultiLineString(pl *shp.PolyLine) geom.T {
	if pl == nil || pl.NumParts == 0 || len(pl.Points) == 0 {
		return nil
	}

	mls := geom.NewMultiLineString(geom.XY).SetSRID(4326)
	for i := int32(0); i < pl.NumParts; i++ {
		flat := partCoords(pl.Points, pl.Parts, i)
		if len(flat) < 4 {
			continue
		}
		if err := mls.Push(geom.NewLineStringFlat(geom.XY, flat)); err != nil {
			zap.L().Debug("osm: skipping malformed linestring part", zap.Int32("part", i), zap.Error(err))
		}
	}
	if mls.NumLineStrings() == 0 {
		return nil
	}
	return mls
}

func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	for i := int32(0); i < p.NumParts; i++ {
		flat := partCoords(p.Points, p.Parts, i)
		if len(flat) < 8 {
			continue
		}
		poly := geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("osm: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
		}
	}
	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// partCoords extracts the flat XY coordinates of part i from a multi-part
// shapefile point list.
func partCoords(points []shp.Point, parts []int32, i int32) []float64 {
	start := parts[i]
	end := int32(len(points))
	if int(i)+1 < len(parts) {
		end = parts[i+1]
	}
	flat := make([]float64, 0, 2*(end-start))
	for j := start; j < end; j++ {
		flat = append(flat, points[j].X, points[j].Y)
	}
	return flat
}
