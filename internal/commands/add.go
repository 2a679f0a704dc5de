package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"todo/internal/config"
	"todo/internal/exitcode"
)

// AddCmd implements the add command.
type AddCmd struct {
	description string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return config.AppName + " add --description <text> <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.description, "description", "d", "", "task description")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	description := strings.TrimSpace(c.description)
	if title == "" || description == "" {
		fmt.Fprintln(errOut, "error: title and description are required")
		return exitcode.UserError
	}

	task, err := env.Service.CreateTask(ctx, title, description)
	if err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintf(out, "ok %s\n", task.ID)
	}
	return exitcode.Success
}
