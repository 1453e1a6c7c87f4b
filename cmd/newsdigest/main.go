package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"NewsDigest/internal/app"
	"NewsDigest/internal/config"
	"NewsDigest/internal/logging"
	"NewsDigest/internal/secrets"
)

func main() {
	opts, err := config.ParseOptions(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}
	if opts == nil {
		return
	}

	cfg := config.Load(opts.ConfigPath)
	logger := logging.New(cfg.Logging.Level)
	logger.Info("newsdigest starting", "version", config.Version)

	if opts.RunNow && opts.Schedule {
		logger.Error("--run-now and --schedule are mutually exclusive")
		os.Exit(1)
	}

	// secrets resolve before any network activity; missing secrets are fatal
	creds, err := secrets.Load(opts.SecretsDir)
	if err != nil {
		if errors.Is(err, secrets.ErrSecretMissing) {
			logger.Error("startup aborted", "error", err)
		} else {
			logger.Error("secret resolution failed", "error", err)
		}
		os.Exit(1)
	}

	application, err := app.New(cfg, creds, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.Schedule {
		err = application.RunScheduled(ctx)
	} else {
		err = application.RunOnce(ctx)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
