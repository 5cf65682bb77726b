// Command workspace is the interactive PromptHub client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/samber/do/v2"

	"prompthub/internal/client/cli"
	"prompthub/internal/client/di"
	"prompthub/internal/config"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", config.DefaultClientConfigPath(), "path to the client config file")
	flag.Parse()

	injector := di.NewContainer(*configPath)
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start workspace: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*di.Logger](injector)
	ws := do.MustInvoke[*di.WorkspaceHandle](injector)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(ws.Workspace, os.Stdin, os.Stdout, log.Logger)
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			log.Error("input error", "error", err)
		}
	case <-ctx.Done():
		fmt.Fprintln(os.Stdout)
	}

	// Shutdown saves pending edits, then closes the stores.
	if err := injector.Shutdown(); err != nil {
		log.Error("shutdown error", "error", err)
	}
}
