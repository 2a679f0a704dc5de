// Package ui implements the interactive terminal client: a router over
// the login, register and task list screens, built on Bubble Tea.
package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"todo/internal/identity"
	"todo/internal/service"
)

// Routes.
const (
	RouteLogin    = "/"
	RouteRegister = "/register"
	RouteTodo     = "/todo"
)

// Deps is shared by every screen.
type Deps struct {
	Ctx        context.Context
	Identity   *identity.Client
	Tasks      service.Service
	Logger     *zap.Logger
	MessageTTL time.Duration
	Theme      Theme
	Keys       KeyMap
}

func (d *Deps) ctx() context.Context {
	if d.Ctx == nil {
		return context.Background()
	}
	return d.Ctx
}

func (d *Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Screen is one routed view. Screens are pointers and mutate in place.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
}

// ScreenFactory builds a screen. notice is an optional message carried by
// the navigation, such as the reason for a redirect.
type ScreenFactory func(d *Deps, notice string) Screen

// Router maps paths to screens.
type Router struct {
	routes   map[string]ScreenFactory
	fallback string
}

// NewRouter returns a router with the three application routes. Unknown
// paths resolve to the login screen.
func NewRouter() *Router {
	r := &Router{routes: make(map[string]ScreenFactory), fallback: RouteLogin}
	r.Handle(RouteLogin, NewLoginScreen)
	r.Handle(RouteRegister, NewRegisterScreen)
	r.Handle(RouteTodo, NewTodoScreen)
	return r
}

// Handle registers a screen for path.
func (r *Router) Handle(path string, f ScreenFactory) {
	r.routes[path] = f
}

// Resolve returns the canonical path and factory for path.
func (r *Router) Resolve(path string) (string, ScreenFactory) {
	if f, ok := r.routes[path]; ok {
		return path, f
	}
	return r.fallback, r.routes[r.fallback]
}

// Known reports whether path is a registered route.
func (r *Router) Known(path string) bool {
	_, ok := r.routes[path]
	return ok
}

// NavigateMsg asks the app to switch to Path.
type NavigateMsg struct {
	Path   string
	Notice string
}

// Navigate returns a command that switches to path.
func Navigate(path, notice string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Path: path, Notice: notice}
	}
}
