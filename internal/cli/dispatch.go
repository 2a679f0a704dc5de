package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/identity"
	"todo/internal/logging"
	"todo/internal/service"
)

// IdentityFactory creates the identity client from config.
type IdentityFactory func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*identity.Client, error)

// ServiceFactory creates a Service that authenticates through ident.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, ident *identity.Client, logger *zap.Logger) (service.Service, error)

// defaultCommand runs when no command is given.
const defaultCommand = "ui"

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	identity IdentityFactory
	service  ServiceFactory

	// Stdin is handed to commands for prompts. Defaults to os.Stdin.
	Stdin io.Reader
}

// NewDispatcher creates a new dispatcher with the given registry and factories.
func NewDispatcher(registry *commands.Registry, identityFactory IdentityFactory, serviceFactory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		identity: identityFactory,
		service:  serviceFactory,
		Stdin:    os.Stdin,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// Leading flags belong to the default command.
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return d.dispatch(ctx, defaultCommand, args, out, errOut)
	}

	return d.dispatch(ctx, args[0], args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves
	fs.SetInterspersed(true)

	// Common flags
	var (
		configDir string
		quiet     bool
		debug     bool
		ephemeral bool
	)
	fs.StringVar(&configDir, "config", "", "override config directory")
	fs.BoolVarP(&quiet, "quiet", "q", false, "suppress informational output")
	fs.BoolVar(&debug, "debug", false, "write debug logs")
	fs.BoolVar(&ephemeral, "ephemeral", false, "keep the session in memory only")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(out, "Usage: %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug
	cfg.Ephemeral = ephemeral
	if err := cfg.Load(); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	logger, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	defer func() { _ = logger.Sync() }()
	logger.Debug("dispatch", zap.String("command", cmd.Name()), zap.Strings("args", fs.Args()))

	ident, err := d.identity(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %s\n", err)
		return exitcode.AuthError
	}

	if cmd.NeedsAuth() && ident.Session() == nil {
		fmt.Fprintf(errOut, "error: not logged in (run: %s login)\n", config.AppName)
		return exitcode.AuthError
	}

	svc, err := d.service(ctx, cfg, ident, logger)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return exitcode.BackendError
	}

	env := &commands.Env{
		Config:   cfg,
		Identity: ident,
		Service:  svc,
		Logger:   logger,
		Stdin:    d.Stdin,
	}
	return cmd.Run(ctx, env, fs.Args(), out, errOut)
}
