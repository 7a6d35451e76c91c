package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/urbanform/walkability/internal/model"
	"github.com/urbanform/walkability/internal/store"
)

var (
	runsStatus string
	runsLimit  int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List persisted analysis runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(runsStatus),
			Limit:  runsLimit,
		})
		if err != nil {
			return eris.Wrap(err, "list runs")
		}

		if len(runs) == 0 {
			zap.L().Info("no runs found, start one with 'run'")
			return nil
		}

		formatRuns(os.Stdout, runs)
		return nil
	},
}

var runsShowResults bool

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its stats",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		detail, err := loadRunDetail(ctx, st, args[0], runsShowResults)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(detail)
	},
}

// runDetail is the `runs show` payload. Segments and cells are present only
// when requested.
type runDetail struct {
	Run      *model.Run      `json:"run"`
	Segments []model.Segment `json:"segments,omitempty"`
	Cells    []model.Cell    `json:"cells,omitempty"`
}

func loadRunDetail(ctx context.Context, st store.Store, runID string, includeResults bool) (*runDetail, error) {
	run, err := st.GetRun(ctx, runID)
	if err != nil {
		return nil, eris.Wrap(err, "get run")
	}
	detail := &runDetail{Run: run}
	if includeResults {
		if detail.Segments, err = st.GetSegments(ctx, runID); err != nil {
			return nil, eris.Wrap(err, "get segments")
		}
		if detail.Cells, err = st.GetCells(ctx, runID); err != nil {
			return nil, eris.Wrap(err, "get cells")
		}
	}
	return detail, nil
}

func init() {
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status (running, complete, failed)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum number of runs to list")
	runsShowCmd.Flags().BoolVar(&runsShowResults, "results", false, "include the persisted segments and cells")
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRuns writes a tabular representation of runs to w.
func formatRuns(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tCREATED\tPATHS\tCELLS\tELAPSED\tERROR")
	_, _ = fmt.Fprintln(w, "--\t------\t-------\t-----\t-----\t-------\t-----")

	for _, r := range runs {
		paths, cells, elapsed := "-", "-", "-"
		if r.Stats != nil {
			paths = fmt.Sprintf("%d", r.Stats.Paths)
			cells = fmt.Sprintf("%d", r.Stats.Cells)
			elapsed = fmt.Sprintf("%dms", r.Stats.ElapsedMS)
		}

		errMsg := ""
		if r.Error != "" {
			errMsg = truncateError(r.Error, 60)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Status,
			r.CreatedAt.Format("2006-01-02 15:04"),
			paths,
			cells,
			elapsed,
			errMsg,
		)
	}
	_ = w.Flush()
}

func truncateError(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
