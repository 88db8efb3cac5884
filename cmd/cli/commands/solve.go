package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rville-tennis/mixer/pkg/core/services"
	"github.com/rville-tennis/mixer/pkg/core/solver"
)

// SolveCmd creates the solve command
func SolveCmd(app *AppContext) *cobra.Command {
	var req services.SolveRequest

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve brackets for one combination and matches count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Seed = resolveSeed(cmd, req.Seed)

			app.Logger.Debug("solve command",
				zap.Int("men", req.Men),
				zap.Int("women", req.Women),
				zap.Int("courts", req.Courts),
				zap.Int("matches", req.Matches),
				zap.Uint64("seed", req.Seed))

			report, err := services.SolveOne(app.Ctx, solver.NewPBFactory(), app.Metrics, app.Cfg, app.Logger, req)
			if err != nil {
				return err
			}

			trial := report.Trial
			fmt.Printf("\nStatus: %s (%s, seed %d)\n", trial.Status, trial.Elapsed.Round(time.Millisecond), req.Seed)
			if trial.Err != nil {
				fmt.Printf("Solver error: %v\n", trial.Err)
			}
			if report.File == "" {
				fmt.Println("No schedule found.")
				return nil
			}

			fmt.Printf("✓ %d matches written to %s\n", len(trial.Schedule.Rows), report.File)
			for _, v := range trial.Violations {
				fmt.Printf("  ⚠ %s %s: %s\n", v.RuleName, v.Slot, v.Description)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().IntVar(&req.Men, "men", 0, "Number of men")
	cmd.Flags().IntVar(&req.Women, "women", 0, "Number of women")
	cmd.Flags().IntVar(&req.Courts, "courts", 0, "Number of courts (defaults to the config)")
	cmd.Flags().IntVar(&req.Matches, "matches", 0, "Number of matches (every court of every slot when 0)")
	cmd.Flags().Uint64Var(&req.Seed, "seed", 0, "Seed for the bracket shuffles (random when unset)")
	cmd.Flags().StringVar(&req.OutputDir, "out-dir", "", "Directory for the CSV file (defaults to the config)")
	cmd.Flags().BoolVar(&req.Accommodations, "accommodations", false, "Apply the accommodations listed in the config")
	cmd.Flags().BoolVar(&req.TownCourt, "town-court", false, "Mark one court per slot as the town court")
	cmd.MarkFlagRequired("men")
	cmd.MarkFlagRequired("women")

	return cmd
}
