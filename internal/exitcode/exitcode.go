// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, out of range, declined).
	UserError = 1

	// AuthError indicates a sign-in, registration or expired-session error.
	AuthError = 2

	// BackendError indicates a task API or network error.
	BackendError = 3
)
