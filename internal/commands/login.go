package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"todo/internal/config"
	"todo/internal/exitcode"
)

// LoginCmd implements the login command.
type LoginCmd struct {
	email string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in (password prompted)" }
func (c *LoginCmd) Usage() string     { return config.AppName + " login [--email <email>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.email, "email", "e", "", "account email")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if s := env.Identity.Session(); s != nil {
		if !env.Config.Quiet {
			fmt.Fprintf(out, "already logged in as %s\n", s.Email)
		}
		return exitcode.Success
	}
	return runCredentials(ctx, env, c.email, env.Identity.SignIn, out, errOut)
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	email string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and sign in" }
func (c *RegisterCmd) Usage() string     { return config.AppName + " register [--email <email>]" }
func (c *RegisterCmd) NeedsAuth() bool   { return false }

func (c *RegisterCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.email, "email", "e", "", "account email")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return runCredentials(ctx, env, c.email, env.Identity.Register, out, errOut)
}

// runCredentials is the shared implementation for login and register.
func runCredentials(ctx context.Context, env *Env, email string, action func(ctx context.Context, email, password string) error, out, errOut io.Writer) int {
	p := newPrompter(env.Stdin, errOut)

	email = strings.TrimSpace(email)
	if email == "" {
		line, err := p.Line("Email: ")
		if err != nil {
			fmt.Fprintln(errOut, "error: email required")
			return exitcode.UserError
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		fmt.Fprintln(errOut, "error: email required")
		return exitcode.UserError
	}

	password, err := p.Password("Password: ")
	if err != nil || password == "" {
		fmt.Fprintln(errOut, "error: password required")
		return exitcode.UserError
	}

	if err := action(ctx, email, password); err != nil {
		env.Logger.Debug("authentication failed", zap.String("email", email), zap.Error(err))
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintf(out, "logged in as %s\n", email)
	}
	return exitcode.Success
}
