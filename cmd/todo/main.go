// Package main is the entry point for the todo client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"todo/internal/backend/restapi"
	"todo/internal/cli"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/identity"
	"todo/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := cli.NewDispatcher(commands.NewDefaultRegistry(), newIdentity, newService)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// newIdentity wires the identity toolkit provider to the session store.
func newIdentity(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*identity.Client, error) {
	provider, err := identity.NewGoogleProvider(ctx, cfg.Identity, nil)
	if err != nil {
		return nil, err
	}

	var store identity.Store = &identity.FileStore{Path: cfg.SessionPath()}
	if cfg.Ephemeral {
		store = &identity.MemoryStore{}
	}
	return identity.New(provider, store, logger.Named("identity")), nil
}

// newService wires the task API client to the session's token source.
func newService(ctx context.Context, cfg *config.Config, ident *identity.Client, logger *zap.Logger) (service.Service, error) {
	return restapi.New(cfg, ident.TokenSource(ctx), logger.Named("restapi")), nil
}
