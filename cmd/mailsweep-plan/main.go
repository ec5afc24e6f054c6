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
	flags := di.ParseFlags()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the planning pass
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var authErr *core.AuthError
		if errors.As(err, &authErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run computes and prints the deletion plan without touching the store
func run(
	logger *zap.Logger,
	service *core.CleanupService,
	store core.MailStore,
	policy *core.RetentionPolicy,
	opts core.RunOptions,
) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := service.Run(ctx, policy, opts)

	if stopper, ok := store.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	if err != nil {
		return err
	}

	fmt.Printf("Plan for %d folders: %d messages in %d conversations, %d would be deleted.\n",
		summary.Folders, summary.Retrieved, summary.Conversations, summary.Planned)
	return nil
}
