package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mailsweep/internal/config"
	"github.com/mikey/mailsweep/internal/core"
	"github.com/mikey/mailsweep/internal/factory"
	"github.com/mikey/mailsweep/internal/logging"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewBuilderFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewJournalFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewProgressFactory); err != nil {
		return nil, err
	}

	// Register mail store
	if err := container.Provide(func(f *factory.StoreFactory) (core.MailStore, error) {
		return f.CreateMailStore()
	}); err != nil {
		return nil, err
	}

	// Register progress reporter
	if err := container.Provide(func(f *factory.ProgressFactory) (core.ProgressReporter, error) {
		return f.CreateProgressReporter()
	}); err != nil {
		return nil, err
	}

	// Register catalog builder
	if err := container.Provide(func(f *factory.BuilderFactory, store core.MailStore, progress core.ProgressReporter) (core.CatalogBuilder, error) {
		return f.CreateCatalogBuilder(store, progress)
	}); err != nil {
		return nil, err
	}

	// Register run journal
	if err := container.Provide(func(f *factory.JournalFactory) (core.RunJournal, error) {
		return f.CreateRunJournal()
	}); err != nil {
		return nil, err
	}

	// Register deletion executor
	if err := container.Provide(func(store core.MailStore, progress core.ProgressReporter, logger *zap.Logger, cfg *config.Config) *core.Executor {
		return core.NewExecutor(store, progress, logger, cfg.GetCleanup().MoveRetries)
	}); err != nil {
		return nil, err
	}

	// Register retention policy
	if err := container.Provide(func(cfg *config.Config) (*core.RetentionPolicy, error) {
		return cfg.GetCleanup().Policy()
	}); err != nil {
		return nil, err
	}

	// Register run options
	if err := container.Provide(func(cfg *config.Config) core.RunOptions {
		return cfg.GetCleanup().Options()
	}); err != nil {
		return nil, err
	}

	// Register cleanup service
	if err := container.Provide(core.NewCleanupService); err != nil {
		return nil, err
	}

	return container, nil
}
