// Command client runs only the web console, configured from the
// environment and an optional .env file.
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/phillip-england/leavedesk/internal/consoleapp"
	"github.com/phillip-england/leavedesk/internal/envutil"
	"github.com/phillip-england/leavedesk/internal/logging"
)

func main() {
	if err := envutil.LoadDotEnv(".env"); err != nil {
		log.Fatal(err)
	}
	cfg := consoleapp.DefaultConfigFromEnv()
	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := consoleapp.Run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal(err.Error())
	}
}
