package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rville-tennis/mixer/cmd/cli/commands"
	"github.com/rville-tennis/mixer/internal/config"
	"github.com/rville-tennis/mixer/internal/metrics"
	"github.com/rville-tennis/mixer/pkg/postgres"
	"github.com/rville-tennis/mixer/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     = &commands.AppContext{}
	stop    context.CancelFunc
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mixer",
		Short: "Mixed-doubles round-robin bracket generator",
		Long:  `Generate mixed-doubles round-robin brackets for a tennis tournament day across a range of player counts.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdown()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment used for the config file and log prefix")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")

	rootCmd.AddCommand(commands.SweepCmd(app))
	rootCmd.AddCommand(commands.SolveCmd(app))
	rootCmd.AddCommand(commands.NameListCmd(app))
	rootCmd.AddCommand(commands.HistoryCmd(app))

	if err := rootCmd.Execute(); err != nil {
		shutdown()
		os.Exit(1)
	}
}

// initApp sets up logger, config, metrics and the optional database
func initApp() error {
	var err error
	app.Ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt)

	app.Logger, err = logging.InitLogger(env, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Debug("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	app.Metrics = metrics.NewService()

	if app.Cfg.DatabaseURL == "" {
		app.Logger.Debug("No database configured, results are not stored")
		return nil
	}

	app.Logger.Info("Connecting to database")
	database, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(app.Ctx); err != nil {
		database.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.Store = database
	app.Logger.Info("Database initialized successfully")

	return nil
}

// shutdown writes the metrics file and releases resources; it is safe to call twice
func shutdown() {
	if app.Metrics != nil && app.Cfg != nil && app.Cfg.MetricsFile != "" {
		if err := app.Metrics.WriteTextfile(app.Cfg.MetricsFile); err != nil && app.Logger != nil {
			app.Logger.Warn("Failed to write metrics", zap.Error(err))
		}
		app.Metrics = nil
	}
	if app.Store != nil {
		app.Store.Close()
		app.Store = nil
	}
	if stop != nil {
		stop()
	}
	if app.Logger != nil {
		app.Logger.Sync()
	}
}
