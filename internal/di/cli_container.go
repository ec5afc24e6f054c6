package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mailsweep/internal/config"
	"github.com/mikey/mailsweep/internal/core"
	"github.com/mikey/mailsweep/internal/factory"
	"github.com/mikey/mailsweep/internal/logging"
)

// CLIFlags contains all command line flags for the planning CLI
type CLIFlags struct {
	// Store flags
	Store         string
	Host          string
	Port          string
	Username      string
	RootFolder    string
	HoldingFolder string
	NoTLS         bool

	// Cleanup flags
	IncludeRoot       bool
	KeepCategoryRegex string
	StartDate         string
	OlderThan         string
	Strategy          string

	// Input flags
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Store flags
	flag.StringVar(&flags.Store, "store", "imap", "Mail store backend (imap, memory)")
	flag.StringVar(&flags.Host, "host", "", "IMAP server host")
	flag.StringVar(&flags.Port, "port", "993", "IMAP server port")
	flag.StringVar(&flags.Username, "username", "", "IMAP account username")
	flag.StringVar(&flags.RootFolder, "root-folder", "INBOX", "Root folder name")
	flag.StringVar(&flags.HoldingFolder, "holding-folder", "Trash", "Holding folder for deleted messages")
	flag.BoolVar(&flags.NoTLS, "no-tls", false, "Use STARTTLS instead of implicit TLS")

	// Cleanup flags
	flag.BoolVar(&flags.IncludeRoot, "include-root", false, "Include the root folder in the cleanup")
	flag.StringVar(&flags.KeepCategoryRegex, "keep-category-regex", "Keep", "Category pattern that exempts a message from deletion")
	flag.StringVar(&flags.StartDate, "start-date", "", "Only retrieve messages created on or after this date (YYYY-MM-DD)")
	flag.StringVar(&flags.OlderThan, "older-than", "", "Also delete messages created before this date (YYYY-MM-DD)")
	flag.StringVar(&flags.Strategy, "strategy", "exhaustive", "Retrieval strategy (exhaustive, two_phase)")

	// Input flags
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection
// container for the planning CLI. The plan run is always a dry run.
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewBuilderFactory); err != nil {
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

	// Register deletion executor (never invoked on a dry run)
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

	// Register run options, forcing a dry run
	if err := container.Provide(func(cfg *config.Config) core.RunOptions {
		opts := cfg.GetCleanup().Options()
		opts.DryRun = true
		return opts
	}); err != nil {
		return nil, err
	}

	// Register cleanup service with no journal
	if err := container.Provide(func(
		store core.MailStore,
		builder core.CatalogBuilder,
		executor *core.Executor,
		logger *zap.Logger,
	) *core.CleanupService {
		return core.NewCleanupService(store, builder, executor, nil, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Store settings
	v.Set("store.type", flags.Store)
	v.Set("imap.host", flags.Host)
	v.Set("imap.port", flags.Port)
	v.Set("imap.username", flags.Username)
	v.Set("imap.tls", !flags.NoTLS)
	v.Set("imap.root_folder", flags.RootFolder)
	v.Set("imap.holding_folder", flags.HoldingFolder)

	// Cleanup settings
	v.Set("cleanup.include_root", flags.IncludeRoot)
	v.Set("cleanup.keep_category_regex", flags.KeepCategoryRegex)
	v.Set("cleanup.start_date", flags.StartDate)
	v.Set("cleanup.older_than", flags.OlderThan)
	v.Set("cleanup.dry_run", true)

	// Retrieval settings
	v.Set("retrieval.strategy", flags.Strategy)

	return config.NewFromViper(v)
}
