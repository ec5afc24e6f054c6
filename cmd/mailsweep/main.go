package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/mailsweep/internal/core"
	"github.com/mikey/mailsweep/internal/di"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the cleanup
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var authErr *core.AuthError
		if errors.As(err, &authErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	service *core.CleanupService,
	store core.MailStore,
	journal core.RunJournal,
	policy *core.RetentionPolicy,
	opts core.RunOptions,
) error {
	defer logger.Sync()

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := service.Run(ctx, policy, opts)

	// Close any resources that need closing
	if stopper, ok := store.(interface{ Stop() }); ok {
		stopper.Stop()
	}
	if stopper, ok := journal.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	if err != nil {
		return err
	}

	if summary.DryRun {
		fmt.Printf("Dry run, would delete %d items.\n", summary.Planned)
	} else {
		fmt.Printf("Done, deleted %d items.\n", summary.Result.Succeeded)
	}
	return nil
}
