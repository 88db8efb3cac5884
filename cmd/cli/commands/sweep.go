package commands

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rville-tennis/mixer/pkg/core/search"
	"github.com/rville-tennis/mixer/pkg/core/services"
	"github.com/rville-tennis/mixer/pkg/core/solver"
	"github.com/rville-tennis/mixer/pkg/db"
)

// SweepCmd creates the sweep command
func SweepCmd(app *AppContext) *cobra.Command {
	var req services.SweepRequest

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Solve brackets for every combination of men and women counts",
		Long: `Solve brackets for every combination of men and women counts in the given ranges
and write one CSV file per solved combination.

Ranges are written as min,max with no spaces, e.g. --men 7,12.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Seed = resolveSeed(cmd, req.Seed)

			app.Logger.Debug("sweep command",
				zap.String("men", req.Men.String()),
				zap.String("women", req.Women.String()),
				zap.Int("courts", req.Courts),
				zap.Uint64("seed", req.Seed))

			var store db.SweepStore
			if app.Store != nil {
				store = app.Store
			}

			report, err := services.RunSweep(app.Ctx, solver.NewPBFactory(), store, app.Metrics, app.Cfg, app.Logger, req)
			if report != nil && report.Result != nil {
				printSweepSummary(os.Stdout, report, req.Seed)
			}
			return err
		},
	}

	cmd.Flags().Var(newRangeValue(&req.Men), "men", "Range of men counts as min,max")
	cmd.Flags().Var(newRangeValue(&req.Women), "women", "Range of women counts as min,max")
	cmd.Flags().IntVar(&req.Courts, "courts", 0, "Number of courts (defaults to the config)")
	cmd.Flags().BoolVar(&req.Accommodations, "accommodations", false, "Apply the accommodations listed in the config")
	cmd.Flags().Uint64Var(&req.Seed, "seed", 0, "Seed for the bracket shuffles (random when unset)")
	cmd.Flags().StringVar(&req.OutputDir, "out-dir", "", "Directory for the CSV files (defaults to the config)")
	cmd.Flags().IntVar(&req.Parallelism, "parallel", 0, "Number of combinations solved at once")
	cmd.Flags().BoolVar(&req.TownCourt, "town-court", false, "Mark one court per slot as the town court")
	cmd.MarkFlagRequired("men")
	cmd.MarkFlagRequired("women")

	return cmd
}

// resolveSeed returns the --seed value, or a random one when the flag was not given
func resolveSeed(cmd *cobra.Command, seed uint64) uint64 {
	if cmd.Flags().Changed("seed") {
		return seed
	}
	return rand.Uint64()
}

func printSweepSummary(w io.Writer, report *services.SweepReport, seed uint64) {
	result := report.Result

	fmt.Fprintf(w, "\nSweep %s (seed %d)\n\n", report.SweepID, seed)
	fmt.Fprintf(w, "%-6s %-6s %-12s %-8s %-7s\n", "Men", "Women", "Status", "Matches", "Trials")
	for _, c := range result.Combos {
		matches := "-"
		if c.Status == search.ComboSolved {
			matches = fmt.Sprintf("%d", c.Matches)
		}
		note := ""
		if c.Reused {
			note = " (mirrored)"
		}
		if c.Err != nil {
			note = fmt.Sprintf(" %v", c.Err)
		}
		fmt.Fprintf(w, "%-6d %-6d %-12s %-8s %-7d%s\n", c.Men, c.Women, c.Status, matches, len(c.Trials), note)
	}

	fmt.Fprintf(w, "\n✓ %d of %d combinations solved in %s\n", len(result.Solved()), len(result.Combos), result.Elapsed.Round(time.Millisecond))
	for _, f := range report.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	fmt.Fprintln(w)
}
