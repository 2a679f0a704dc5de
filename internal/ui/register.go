package ui

// NewRegisterScreen returns the account creation form. A new account is
// signed in immediately and goes to the task list.
func NewRegisterScreen(d *Deps, notice string) Screen {
	s := newAuthScreen(d, notice)
	s.title = "Register"
	s.submit = "Register"
	s.linkText = "Already have an account? ctrl+r to"
	s.linkLabel = "login"
	s.linkPath = RouteLogin
	s.action = d.Identity.Register
	return s
}
