package main

import (
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/urbanform/walkability/internal/analysis"
)

var connectivityOutput string

var connectivityCmd = &cobra.Command{
	Use:   "connectivity",
	Short: "Compute per-segment connectivity scores",
	Long:  "Runs the analysis and writes only the per-segment connectivity artifact, without persisting a run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := executeAnalysis(cmd.Context(), uuid.NewString())
		if err != nil {
			return err
		}

		out := connectivityOutput
		if out == "" {
			out = filepath.Join(cfg.Output.Dir, "segments.geojson")
		}
		if err := ensureParentDir(out); err != nil {
			return err
		}
		if err := writeFeatureCollection(out, analysis.SegmentFeatures(res)); err != nil {
			return eris.Wrap(err, "write segments")
		}
		return printRunSummary(res)
	},
}

func init() {
	connectivityCmd.Flags().StringVar(&runInput, "input", "", "path data file (overrides input.path)")
	connectivityCmd.Flags().StringVar(&runBoundary, "boundary", "", "area-of-interest GeoJSON (overrides input.boundary)")
	connectivityCmd.Flags().StringVar(&connectivityOutput, "output", "", "segments GeoJSON file (default <output.dir>/segments.geojson)")
	rootCmd.AddCommand(connectivityCmd)
}
