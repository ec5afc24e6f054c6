package factory

import (
	"fmt"

	"github.com/mikey/mailsweep/internal/config"
	"github.com/mikey/mailsweep/internal/core"
	"go.uber.org/zap"
)

// BuilderFactory creates catalog builders based on configuration
type BuilderFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewBuilderFactory creates a new builder factory
func NewBuilderFactory(cfg *config.Config, logger *zap.Logger) *BuilderFactory {
	return &BuilderFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCatalogBuilder creates a catalog builder based on the
// configured retrieval strategy. Both strategies produce the same
// record set; they differ only in how many round trips they cost.
func (f *BuilderFactory) CreateCatalogBuilder(store core.MailStore, progress core.ProgressReporter) (core.CatalogBuilder, error) {
	retrievalConfig := f.cfg.GetRetrieval()

	switch retrievalConfig.Strategy {
	case "exhaustive":
		return core.NewExhaustiveBuilder(store, progress, f.logger), nil
	case "two_phase":
		return core.NewTwoPhaseBuilder(store, progress, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported retrieval strategy: %s", retrievalConfig.Strategy)
	}
}
