package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"todo/internal/config"
	"todo/internal/exitcode"
)

// HelpCmd implements the help command.
type HelpCmd struct {
	registry *Registry
}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return config.AppName + " help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	WriteHelp(out, c.registry)
	return exitcode.Success
}

// WriteHelp prints the usage of every command in r.
func WriteHelp(out io.Writer, r *Registry) {
	fmt.Fprintln(out, "Usage:")

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s [<common flags>]\t%s\n", config.AppName, "Start the interactive UI")
	for _, cmd := range r.All() {
		fmt.Fprintf(tw, "  %s\t%s\n", cmd.Usage(), cmd.Synopsis())
	}
	tw.Flush()

	fmt.Fprint(out, commonFlagsHelp)
}

const commonFlagsHelp = `
Common flags:
  --config <dir>   Override config directory
  -q, --quiet      Suppress informational output
  --debug          Write debug logs to debug.log in the config directory
  --ephemeral      Keep the session in memory only
`
