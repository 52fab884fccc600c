package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/opencommons/gatehouse/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting gatehouse",
		"app_id", cfg.AppID,
		"auth_mode", cfg.Auth.Mode,
		"session_backend", cfg.Session.Backend,
		"dev", cfg.IsDev)

	secret := bootstrap.LoadOrCreateSecret(cfg.Session.SecretFile, logger)

	auth, err := bootstrap.BuildAuthService(bootstrap.AuthConfig{
		Config: cfg,
		Secret: secret,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	server := bootstrap.StartHTTPServer(&bootstrap.HTTPServerConfig{
		Addr:   cfg.HTTP.Addr,
		Auth:   auth,
		Logger: logger,
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	return bootstrap.ShutdownHTTPServer(bootstrap.ShutdownConfig{
		Context: ctx,
		Server:  server,
		Logger:  logger,
	})
}
