package commands

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rville-tennis/mixer/pkg/core/services"
)

// HistoryCmd creates the history command
func HistoryCmd(app *AppContext) *cobra.Command {
	var limit int
	var exportID, outDir string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored sweeps, or re-export the CSV files of one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Store == nil {
				return fmt.Errorf("history requires a database: set databaseURL in the config or DATABASE_URL")
			}

			if exportID != "" {
				files, err := services.ExportSweep(app.Ctx, app.Store, app.Cfg, app.Logger, exportID, outDir)
				if err != nil {
					return err
				}
				fmt.Printf("\n✓ Exported %d schedules\n", len(files))
				for _, f := range files {
					fmt.Printf("  %s\n", f)
				}
				fmt.Println()
				return nil
			}

			app.Logger.Debug("history command", zap.Int("limit", limit))
			entries, err := services.ListHistory(app.Ctx, app.Store, app.Logger, limit)
			if err != nil {
				return err
			}

			printHistory(os.Stdout, entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of sweeps to list")
	cmd.Flags().StringVar(&exportID, "export", "", "Re-export the schedules of this sweep id")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for exported CSV files (defaults to the config)")

	return cmd
}

func printHistory(w io.Writer, entries []services.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No sweeps stored.")
		return
	}

	fmt.Fprintf(w, "\n%-36s  %-16s  %-6s  %-7s  %-7s  %s\n", "Sweep", "Started", "Courts", "Men", "Women", "Results")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, e := range entries {
		s := e.Sweep
		fmt.Fprintf(w, "%-36s  %-16s  %-6d  %-7s  %-7s  %s\n",
			s.ID,
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.Courts,
			fmt.Sprintf("%d-%d", s.MenMin, s.MenMax),
			fmt.Sprintf("%d-%d", s.WomenMin, s.WomenMax),
			formatCounts(e.Counts, e.Total))
	}
	fmt.Fprintln(w)
}

// formatCounts renders status counts as "2/3 solved, 1 no-solution"
func formatCounts(counts map[string]int, total int) string {
	if total == 0 {
		return "none"
	}

	parts := []string{fmt.Sprintf("%d/%d solved", counts["solved"], total)}
	var others []string
	for status := range counts {
		if status != "solved" {
			others = append(others, status)
		}
	}
	sort.Strings(others)
	for _, status := range others {
		parts = append(parts, fmt.Sprintf("%d %s", counts[status], status))
	}
	return strings.Join(parts, ", ")
}
