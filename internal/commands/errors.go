package commands

import (
	"errors"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/identity"
	"todo/internal/service"
)

// errTaskNotFound is returned by findTaskByNumber.
var errTaskNotFound = errors.New("task number out of range")

// report prints err and maps it to an exit code.
func report(errOut io.Writer, err error) int {
	var authErr *identity.AuthError
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		fmt.Fprintf(errOut, "error: not authorized (run: %s login)\n", config.AppName)
		return exitcode.AuthError
	case errors.As(err, &authErr):
		fmt.Fprintf(errOut, "error: %s\n", authErr.Message)
		return exitcode.AuthError
	case errors.Is(err, errTaskNotFound):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}
