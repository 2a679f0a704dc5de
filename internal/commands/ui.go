package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/ui"
)

// UICmd starts the interactive client.
type UICmd struct{}

func (c *UICmd) Name() string      { return "ui" }
func (c *UICmd) Aliases() []string { return nil }
func (c *UICmd) Synopsis() string  { return "Start the interactive UI at a route (/, /register, /todo)" }
func (c *UICmd) Usage() string     { return config.AppName + " ui [<route>]" }
func (c *UICmd) NeedsAuth() bool   { return false }

func (c *UICmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *UICmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	start := ui.RouteLogin
	if len(args) > 0 {
		start = args[0]
	}

	app := ui.NewApp(&ui.Deps{
		Ctx:        ctx,
		Identity:   env.Identity,
		Tasks:      env.Service,
		Logger:     env.Logger,
		MessageTTL: env.Config.MessageTTL,
		Theme:      ui.DefaultTheme(),
		Keys:       ui.DefaultKeyMap(),
	}, start)
	defer app.Close()

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(out)}
	if env.Stdin != nil && env.Stdin != os.Stdin {
		opts = append(opts, tea.WithInput(env.Stdin))
	}

	env.Logger.Debug("starting ui", zap.String("route", app.Path()))
	if _, err := tea.NewProgram(app, opts...).Run(); err != nil {
		if ctx.Err() != nil {
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
