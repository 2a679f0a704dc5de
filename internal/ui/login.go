package ui

// NewLoginScreen returns the sign-in form. A successful sign-in goes to
// the task list.
func NewLoginScreen(d *Deps, notice string) Screen {
	s := newAuthScreen(d, notice)
	s.title = "Login"
	s.submit = "Login"
	s.linkText = "Don't have an account? ctrl+r to"
	s.linkLabel = "register"
	s.linkPath = RouteRegister
	s.action = d.Identity.SignIn
	return s
}
