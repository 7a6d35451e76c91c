package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/urbanform/walkability/internal/analysis"
	"github.com/urbanform/walkability/internal/classify"
	"github.com/urbanform/walkability/internal/network"
	"github.com/urbanform/walkability/internal/store"
)

var (
	runInput    string
	runBoundary string
	runNoSave   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full walkability analysis",
	Long:  "Classifies the input paths, computes connectivity scores and detour factors, persists the results and writes GeoJSON artifacts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		runID := uuid.NewString()

		var res *analysis.Result
		var err error
		if runNoSave {
			res, err = executeAnalysis(ctx, runID)
		} else {
			st, sErr := initStore(ctx)
			if sErr != nil {
				return sErr
			}
			defer st.Close()

			snapshot, mErr := json.Marshal(cfg)
			if mErr != nil {
				return eris.Wrap(mErr, "marshal config snapshot")
			}
			res, err = executeAndPersist(ctx, st, runID, snapshot, executeAnalysis)
		}
		if err != nil {
			return err
		}

		if err := writeArtifacts(res); err != nil {
			return err
		}

		return printRunSummary(res)
	},
}

// executeAnalysis loads the input and runs the pipeline under the loaded
// configuration.
func executeAnalysis(ctx context.Context, runID string) (*analysis.Result, error) {
	inputPath := cfg.Input.Path
	if runInput != "" {
		inputPath = runInput
	}
	boundaryPath := cfg.Input.Boundary
	if runBoundary != "" {
		boundaryPath = runBoundary
	}

	paths, err := loadPaths(cfg.Input.Format, inputPath)
	if err != nil {
		return nil, eris.Wrap(err, "load input")
	}
	boundary, err := loadBoundary(boundaryPath)
	if err != nil {
		return nil, eris.Wrap(err, "load boundary")
	}

	opts, err := analysisOptions(runID)
	if err != nil {
		return nil, err
	}

	copts := classify.DefaultOptions()
	copts.Ratings = cfg.RatingMap()

	return analysis.Run(ctx, paths, boundary, copts, cfg.IncludedSet(), opts)
}

func analysisOptions(runID string) (analysis.Options, error) {
	maxDist, err := cfg.Walking.MaxWalkingDistanceM()
	if err != nil {
		return analysis.Options{}, err
	}
	decay, err := network.SelectDecay(cfg.Analysis.Decay)
	if err != nil {
		return analysis.Options{}, err
	}
	return analysis.Options{
		RunID:              runID,
		MaxWalkingDistance: maxDist,
		Decay:              decay,
		DetourRadiusScale:  cfg.Analysis.DetourRadiusScale,
		GridSpacing:        cfg.Grid.CellM,
		Workers:            cfg.Analysis.Workers,
	}, nil
}

// executeAndPersist records the run before the analysis starts, so a failed
// analysis leaves a failed run record behind rather than no record at all.
func executeAndPersist(ctx context.Context, st store.Store, runID string, snapshot json.RawMessage, exec func(context.Context, string) (*analysis.Result, error)) (*analysis.Result, error) {
	if err := st.Migrate(ctx); err != nil {
		return nil, eris.Wrap(err, "migrate store")
	}
	if _, err := st.CreateRun(ctx, runID, snapshot); err != nil {
		return nil, eris.Wrap(err, "create run")
	}

	res, err := exec(ctx, runID)
	if err != nil {
		if failErr := st.FailRun(ctx, runID, err.Error()); failErr != nil {
			zap.L().Error("mark run failed", zap.String("run_id", runID), zap.Error(failErr))
		}
		return nil, err
	}

	if err := st.SaveSegments(ctx, res.RunID, store.SegmentsFromResult(res)); err != nil {
		return nil, eris.Wrap(err, "save segments")
	}
	if err := st.SaveCells(ctx, res.RunID, store.CellsFromResult(res)); err != nil {
		return nil, eris.Wrap(err, "save cells")
	}
	if err := st.CompleteRun(ctx, res.RunID, store.StatsFromResult(res)); err != nil {
		return nil, eris.Wrap(err, "complete run")
	}

	zap.L().Info("run persisted", zap.String("run_id", res.RunID))
	return res, nil
}

// writeArtifacts emits the GeoJSON outputs to the configured directory.
func writeArtifacts(res *analysis.Result) error {
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return eris.Wrap(err, "create output dir")
	}
	if err := writeFeatureCollection(filepath.Join(cfg.Output.Dir, "segments.geojson"), analysis.SegmentFeatures(res)); err != nil {
		return err
	}
	return writeFeatureCollection(filepath.Join(cfg.Output.Dir, "cells.geojson"), analysis.CellFeatures(res))
}

func printRunSummary(res *analysis.Result) error {
	summary := struct {
		RunID    string             `json:"run_id"`
		Stats    analysis.Stats     `json:"stats"`
		LengthKm map[string]float64 `json:"length_km"`
	}{
		RunID:    res.RunID,
		Stats:    res.Stats,
		LengthKm: map[string]float64{},
	}
	for category, km := range res.LengthKm {
		summary.LengthKm[string(category)] = km
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "path data file (overrides input.path)")
	runCmd.Flags().StringVar(&runBoundary, "boundary", "", "area-of-interest GeoJSON (overrides input.boundary)")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "skip persisting results to the store")
	rootCmd.AddCommand(runCmd)
}
