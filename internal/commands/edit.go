package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"todo/internal/config"
	"todo/internal/exitcode"
)

// EditCmd implements the edit command.
type EditCmd struct {
	title       string
	description string
	fs          *pflag.FlagSet
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change a task's title or description" }
func (c *EditCmd) Usage() string {
	return config.AppName + " edit [--title <text>] [--description <text>] <n>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.fs = fs
	fs.StringVarP(&c.title, "title", "t", "", "new title")
	fs.StringVarP(&c.description, "description", "d", "", "new description")
}

func (c *EditCmd) changed(name string) bool {
	return c.fs != nil && c.fs.Changed(name)
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	num, err := ParseTaskRef(args)
	if err != nil {
		if errors.Is(err, ErrTaskRefRequired) {
			fmt.Fprintln(errOut, "error: task reference required")
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !c.changed("title") && !c.changed("description") {
		fmt.Fprintln(errOut, "error: nothing to change (use --title or --description)")
		return exitcode.UserError
	}

	task, err := findTaskByNumber(ctx, env.Service, num)
	if err != nil {
		return report(errOut, err)
	}

	title, description := task.Title, task.Description
	if c.changed("title") {
		title = strings.TrimSpace(c.title)
	}
	if c.changed("description") {
		description = strings.TrimSpace(c.description)
	}
	if title == "" || description == "" {
		fmt.Fprintln(errOut, "error: title and description are required")
		return exitcode.UserError
	}

	if _, err := env.Service.UpdateTask(ctx, task.ID, title, description); err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
