package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/urbanform/walkability/internal/classify"
	"github.com/urbanform/walkability/internal/geo"
)

var (
	classifyInput  string
	classifyOutput string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify paths by walkability without running the network analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath := cfg.Input.Path
		if classifyInput != "" {
			inputPath = classifyInput
		}

		paths, err := loadPaths(cfg.Input.Format, inputPath)
		if err != nil {
			return eris.Wrap(err, "load input")
		}
		if len(paths) == 0 {
			return eris.New("no input paths")
		}

		copts := classify.DefaultOptions()
		copts.Ratings = cfg.RatingMap()
		classified := classify.All(paths, copts)

		var box geo.BBox
		for _, cp := range classified {
			b := geo.GeomBBox(cp.Geometry)
			box.Extend(b.MinLng, b.MinLat)
			box.Extend(b.MaxLng, b.MaxLat)
		}
		lon0, lat0 := box.Center()
		proj := geo.NewProjection(lon0, lat0)

		counts := map[string]int{}
		for _, cp := range classified {
			counts[string(cp.Labels.Category)]++
		}
		lengths := map[string]float64{}
		for category, km := range classify.LengthByCategory(classified, proj) {
			lengths[string(category)] = km
		}

		if classifyOutput != "" {
			if err := writeClassified(classifyOutput, classified); err != nil {
				return err
			}
		}

		summary := struct {
			Paths    int                `json:"paths"`
			Counts   map[string]int     `json:"counts"`
			LengthKm map[string]float64 `json:"length_km"`
		}{len(classified), counts, lengths}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

// writeClassified emits the labeled paths as a GeoJSON artifact.
func writeClassified(path string, classified []classify.ClassifiedPath) error {
	fc := classify.FeatureCollection(classified)
	return writeFeatureCollection(path, fc)
}

func init() {
	classifyCmd.Flags().StringVar(&classifyInput, "input", "", "path data file (overrides input.path)")
	classifyCmd.Flags().StringVar(&classifyOutput, "output", "", "write labeled paths to this GeoJSON file")
	rootCmd.AddCommand(classifyCmd)
}
