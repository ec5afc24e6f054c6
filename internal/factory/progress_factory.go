package factory

import (
	"fmt"

	"github.com/mikey/mailsweep/internal/adapters/progress"
	"github.com/mikey/mailsweep/internal/config"
	"github.com/mikey/mailsweep/internal/core"
	"go.uber.org/zap"
)

// ProgressFactory creates progress reporters based on configuration
type ProgressFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewProgressFactory creates a new progress factory
func NewProgressFactory(cfg *config.Config, logger *zap.Logger) *ProgressFactory {
	return &ProgressFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateProgressReporter creates a progress reporter based on the configuration
func (f *ProgressFactory) CreateProgressReporter() (core.ProgressReporter, error) {
	progressConfig := f.cfg.GetProgress()

	switch progressConfig.Type {
	case "console":
		return progress.NewConsole(progressConfig.Width), nil
	case "none":
		return progress.Noop{}, nil
	default:
		return nil, fmt.Errorf("unsupported progress type: %s", progressConfig.Type)
	}
}
