package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"todo/internal/backend/restapi"
	"todo/internal/config"
	"todo/internal/identity"
	"todo/internal/testutil"
)

// pump feeds msgs to the app until no more messages are produced.
func pump(a *App, msgs []tea.Msg) {
	for i := 0; i < 50 && len(msgs) > 0; i++ {
		m := msgs[0]
		msgs = msgs[1:]
		_, cmd := a.Update(m)
		msgs = append(msgs, collect(cmd)...)
	}
}

func TestRouter_Resolve(t *testing.T) {
	r := NewRouter()

	for _, path := range []string{RouteLogin, RouteRegister, RouteTodo} {
		got, f := r.Resolve(path)
		assert.Equal(t, path, got)
		assert.NotNil(t, f)
		assert.True(t, r.Known(path))
	}

	got, f := r.Resolve("/nowhere")
	assert.Equal(t, RouteLogin, got)
	assert.NotNil(t, f)
	assert.False(t, r.Known("/nowhere"))
}

func TestApp_SignedInSkipsLogin(t *testing.T) {
	a := NewApp(signedInDeps(t, testutil.NewFakeService()), RouteLogin)
	defer a.Close()

	assert.Equal(t, RouteTodo, a.Path())
}

func TestApp_UnknownRouteFallsBack(t *testing.T) {
	a := NewApp(signedOutDeps(t, testutil.NewFakeProvider()), "/nowhere")
	defer a.Close()

	assert.Equal(t, RouteLogin, a.Path())
}

func TestApp_NavigateToCurrentPathIsNoop(t *testing.T) {
	a := NewApp(signedOutDeps(t, testutil.NewFakeProvider()), RouteLogin)
	defer a.Close()
	before := a.screen

	_, cmd := a.Update(NavigateMsg{Path: RouteLogin})
	assert.Nil(t, cmd)
	assert.Same(t, before, a.screen)
}

func TestApp_NavigateToCurrentPathWithNotice(t *testing.T) {
	a := NewApp(signedOutDeps(t, testutil.NewFakeProvider()), RouteLogin)
	defer a.Close()

	a.Update(NavigateMsg{Path: RouteLogin, Notice: MsgUnauthorized})
	assert.Equal(t, RouteLogin, a.Path())
	assert.Contains(t, a.View(), MsgUnauthorized)
}

func TestApp_Navigate(t *testing.T) {
	a := NewApp(signedOutDeps(t, testutil.NewFakeProvider()), RouteLogin)
	defer a.Close()

	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	a.Update(NavigateMsg{Path: RouteRegister})
	assert.Equal(t, RouteRegister, a.Path())
	assert.Contains(t, a.View(), "Register")
}

func TestApp_QuitKey(t *testing.T) {
	a := NewApp(signedOutDeps(t, testutil.NewFakeProvider()), RouteLogin)
	defer a.Close()

	_, cmd := a.Update(keyCtrlC)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_UnauthenticatedTaskListRedirects(t *testing.T) {
	srv := testutil.NewTodoServer()
	defer srv.Close()

	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	cfg.APIURL = srv.URL

	ident := identity.New(testutil.NewFakeProvider(), &identity.MemoryStore{}, nil)
	d := newDeps(t, ident, restapi.New(cfg, ident.TokenSource(context.Background()), nil))

	a := NewApp(d, RouteTodo)
	defer a.Close()
	require.Equal(t, RouteTodo, a.Path())

	pump(a, collect(a.Init()))

	assert.Equal(t, RouteLogin, a.Path())
	assert.Contains(t, a.View(), MsgUnauthorized)
}

func TestApp_ExpiredSessionRedirectShowsNotice(t *testing.T) {
	srv := testutil.NewTodoServer()
	defer srv.Close()

	cfg, err := config.New(t.TempDir())
	require.NoError(t, err)
	cfg.APIURL = srv.URL

	p := testutil.NewFakeProvider()
	p.TokenLifetime = time.Minute
	ident := testutil.SignedInClient(p, "ada@example.com")
	p.RefreshErr = &oauth2.RetrieveError{ErrorCode: "TOKEN_EXPIRED"}
	d := newDeps(t, ident, restapi.New(cfg, ident.TokenSource(context.Background()), nil))

	a := NewApp(d, RouteTodo)
	defer a.Close()
	require.Equal(t, RouteTodo, a.Path())

	pump(a, collect(a.Init()))

	assert.Nil(t, ident.Session())
	assert.Equal(t, RouteLogin, a.Path())
	assert.Contains(t, a.View(), MsgUnauthorized)
}

func TestApp_SignInRedirectsToTaskList(t *testing.T) {
	p := testutil.NewFakeProvider()
	p.AddUser("ada@example.com", "secret123")
	a := NewApp(signedOutDeps(t, p), RouteLogin)
	defer a.Close()

	fillCredentials(a.screen, "ada@example.com", "secret123")
	pump(a, []tea.Msg{keyEnter})

	assert.Equal(t, RouteTodo, a.Path())
}

func TestApp_SignOutElsewhereLeavesTaskList(t *testing.T) {
	d := signedInDeps(t, testutil.NewFakeService())
	a := NewApp(d, RouteTodo)
	defer a.Close()

	d.Identity.SignOut()
	a.Update(sessionMsg{event: identity.Event{}})

	assert.Equal(t, RouteLogin, a.Path())
}

func TestApp_SessionEventWithoutChangeStays(t *testing.T) {
	d := signedInDeps(t, testutil.NewFakeService())
	a := NewApp(d, RouteTodo)
	defer a.Close()

	a.Update(sessionMsg{event: identity.Event{Session: d.Identity.Session()}})
	assert.Equal(t, RouteTodo, a.Path())
}
