// Command launchdash serves the SpaceX launch records dashboard.
//
// Settings are read from config.yaml in the launchdash folder under the user
// configuration directory, which is created with the defaults on first run.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/tfkr-ae/launchdash"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := run(logger); err != nil {
		logger.Error("launchdash stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return fmt.Errorf("getting user config dir : %w", err)
	}

	// A dataset that cannot be read is fatal: there is nothing to chart.
	dash, err := launchdash.New(
		launchdash.WithLogger(logger),
		launchdash.WithConfigDir(filepath.Join(userConfigDir, "launchdash")),
		launchdash.WithDataFile(""),
	)
	if err != nil {
		return err
	}
	defer dash.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("dashboard ready", "url", "http://"+dash.Config.ListenAddr()+"/", "backend", dash.Config.Backend)
	return dash.ListenAndServe(ctx)
}
