package main

import (
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/urbanform/walkability/internal/analysis"
)

var detourOutput string

var detourCmd = &cobra.Command{
	Use:   "detour",
	Short: "Compute per-cell detour factors",
	Long:  "Runs the analysis and writes only the hexagonal-grid detour artifact, without persisting a run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := executeAnalysis(cmd.Context(), uuid.NewString())
		if err != nil {
			return err
		}

		out := detourOutput
		if out == "" {
			out = filepath.Join(cfg.Output.Dir, "cells.geojson")
		}
		if err := ensureParentDir(out); err != nil {
			return err
		}
		if err := writeFeatureCollection(out, analysis.CellFeatures(res)); err != nil {
			return eris.Wrap(err, "write cells")
		}
		return printRunSummary(res)
	},
}

func init() {
	detourCmd.Flags().StringVar(&runInput, "input", "", "path data file (overrides input.path)")
	detourCmd.Flags().StringVar(&runBoundary, "boundary", "", "area-of-interest GeoJSON (overrides input.boundary)")
	detourCmd.Flags().StringVar(&detourOutput, "output", "", "cells GeoJSON file (default <output.dir>/cells.geojson)")
	rootCmd.AddCommand(detourCmd)
}
