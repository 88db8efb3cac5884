package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/rville-tennis/mixer/internal/config"
	"github.com/rville-tennis/mixer/internal/metrics"
	"github.com/rville-tennis/mixer/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg *config.Config
	// Store is nil when no database is configured
	Store   db.ResultStore
	Metrics *metrics.Service
	Logger  *zap.Logger
	Ctx     context.Context
}
