// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"todo/internal/config"
	"todo/internal/identity"
	"todo/internal/service"
)

// Env carries what a command needs to run.
type Env struct {
	// Config is always provided (config dir, paths, API URL).
	Config *config.Config

	// Identity owns the session. Always provided.
	Identity *identity.Client

	// Service talks to the task API through Identity's token source.
	Service service.Service

	Logger *zap.Logger

	// Stdin is where prompts read answers from.
	Stdin io.Reader
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a signed-in session.
	// Commands like help, version, login, logout and ui return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}
