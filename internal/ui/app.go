package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"todo/internal/identity"
)

// sessionMsg carries a session change from the identity client.
type sessionMsg struct {
	event identity.Event
}

// App is the root model. It owns the current route and redirects on
// session changes: signing in leaves the login and register screens for
// the task list, signing out leaves the task list for the login screen.
type App struct {
	deps   *Deps
	router *Router

	path   string
	screen Screen
	width  int
	height int

	signedIn    bool
	events      <-chan identity.Event
	unsubscribe func()
}

// NewApp mounts the screen for start. A signed-in user starting on the
// login or register screen lands on the task list instead.
func NewApp(d *Deps, start string) *App {
	a := &App{deps: d, router: NewRouter()}
	a.events, a.unsubscribe = d.Identity.Subscribe()

	// The subscription always delivers the current state first.
	select {
	case ev, ok := <-a.events:
		if ok {
			a.signedIn = ev.SignedIn()
		}
	default:
		a.signedIn = d.Identity.Session() != nil
	}

	if !a.router.Known(start) {
		d.logger().Debug("unknown route", zap.String("path", start))
	}
	path, _ := a.router.Resolve(start)
	if a.signedIn && (path == RouteLogin || path == RouteRegister) {
		path = RouteTodo
	}
	a.mount(path, "")
	return a
}

// Path returns the current route.
func (a *App) Path() string { return a.path }

// Close stops listening for session changes.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.screen.Init(), waitForSession(a.events))
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, a.deps.Keys.Quit) {
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height

	case NavigateMsg:
		return a, a.navigate(msg.Path, msg.Notice)

	case sessionMsg:
		next := waitForSession(a.events)
		signedIn := msg.event.SignedIn()
		if signedIn == a.signedIn {
			return a, next
		}
		a.signedIn = signedIn
		switch {
		case signedIn && (a.path == RouteLogin || a.path == RouteRegister):
			return a, tea.Batch(next, a.navigate(RouteTodo, ""))
		case !signedIn && a.path == RouteTodo:
			return a, tea.Batch(next, a.navigate(RouteLogin, ""))
		}
		return a, next
	}

	var cmd tea.Cmd
	a.screen, cmd = a.screen.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	return a.screen.View()
}

// navigate switches screens. Navigating to the current path does nothing
// unless a notice comes with it, in which case the screen is remounted to
// show it. A session expiry can redirect before the failed request does.
func (a *App) navigate(path, notice string) tea.Cmd {
	path, _ = a.router.Resolve(path)
	if path == a.path && notice == "" {
		return nil
	}
	a.mount(path, notice)

	cmds := []tea.Cmd{a.screen.Init()}
	if a.width > 0 {
		var cmd tea.Cmd
		a.screen, cmd = a.screen.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a *App) mount(path, notice string) {
	path, factory := a.router.Resolve(path)
	a.deps.logger().Debug("navigate", zap.String("from", a.path), zap.String("to", path))
	a.path = path
	a.screen = factory(a.deps, notice)
}

func waitForSession(events <-chan identity.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return sessionMsg{event: ev}
	}
}
