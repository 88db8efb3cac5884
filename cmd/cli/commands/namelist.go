package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rville-tennis/mixer/pkg/core/services"
)

// NameListCmd creates the namelist command
func NameListCmd(app *AppContext) *cobra.Command {
	var out string
	var seed uint64

	cmd := &cobra.Command{
		Use:   "namelist <roster.csv>",
		Short: "Shuffle a roster into a numbered name list",
		Long: `Shuffle a roster into a numbered name list such as "M1 = John Smith".

Roster columns are: last name, first name, unused, unused, gender.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed = resolveSeed(cmd, seed)

			entries, err := services.WriteNameList(args[0], out, seed, app.Logger)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ %d names written to %s (seed %d)\n\n", len(entries), out, seed)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "namelist.txt", "Output file")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for the shuffle (random when unset)")

	return cmd
}
