package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/urbanform/walkability/internal/geo"
	"github.com/urbanform/walkability/internal/hexgrid"
)

var gridOutput string

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Preview the hexagonal grid covering the input paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := loadPaths(cfg.Input.Format, cfg.Input.Path)
		if err != nil {
			return eris.Wrap(err, "load input")
		}
		if len(paths) == 0 {
			return eris.New("no input paths")
		}

		var box geo.BBox
		for _, path := range paths {
			b := geo.GeomBBox(path.Geometry)
			box.Extend(b.MinLng, b.MinLat)
			box.Extend(b.MaxLng, b.MaxLat)
		}
		lon0, lat0 := box.Center()
		proj := geo.NewProjection(lon0, lat0)

		grid := hexgrid.New(cfg.Grid.CellM)
		cells := make(map[hexgrid.Cell]bool)
		for _, path := range paths {
			for _, part := range lineParts(path.Geometry) {
				pts := geo.ProjectLine(part, proj)
				for cell := range grid.CoverPolyline(pts) {
					cells[cell] = true
				}
			}
		}

		fc := &geojson.FeatureCollection{}
		for cell := range cells {
			corners := grid.Corners(cell)
			ring := make([]geom.Coord, 0, len(corners)+1)
			for _, corner := range corners {
				lon, lat := proj.Unproject(corner)
				ring = append(ring, geom.Coord{lon, lat})
			}
			ring = append(ring, ring[0])

			poly := geom.NewPolygon(geom.XY)
			if _, err := poly.SetCoords([][]geom.Coord{ring}); err != nil {
				return eris.Wrap(err, "grid cell ring")
			}
			fc.Features = append(fc.Features, &geojson.Feature{
				Geometry:   poly,
				Properties: map[string]interface{}{"q": cell.Q, "r": cell.R},
			})
		}

		if err := ensureParentDir(gridOutput); err != nil {
			return err
		}
		return writeFeatureCollection(gridOutput, fc)
	},
}

func init() {
	gridCmd.Flags().StringVar(&gridOutput, "output", "grid.geojson", "grid GeoJSON file")
	rootCmd.AddCommand(gridCmd)
}
