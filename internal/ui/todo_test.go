package ui

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/service"
	"todo/internal/testutil"
)

// loaded returns a task list screen after its initial fetch.
func loaded(t *testing.T, svc *testutil.FakeService) *TodoScreen {
	t.Helper()
	s := NewTodoScreen(signedInDeps(t, svc), "").(*TodoScreen)
	feed(s, collect(s.Init()))
	require.False(t, s.loading)
	return s
}

func seeded(t *testing.T) (*TodoScreen, *testutil.FakeService) {
	t.Helper()
	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Buy milk", "2%")
	svc.AddTask("t2", "Walk dog", "30 minutes")
	s := loaded(t, svc)
	// Focus the list.
	press(s, keyTab)
	press(s, keyTab)
	require.Equal(t, focusList, s.focus)
	return s, svc
}

func TestTodo_LoadShowsTasks(t *testing.T) {
	s, svc := seeded(t)

	assert.Len(t, s.Tasks(), 2)
	assert.Equal(t, 1, svc.Calls("list"))
	view := s.View()
	assert.Contains(t, view, "Buy milk")
	assert.Contains(t, view, "30 minutes")
}

func TestTodo_LoadFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListErr = fmt.Errorf("%w: list: status 500", service.ErrRequestFailed)

	s := loaded(t, svc)
	assert.Equal(t, MsgFetchFailed, s.Err())
	assert.Empty(t, s.Tasks())
}

func TestTodo_AddRequiresBothFields(t *testing.T) {
	svc := testutil.NewFakeService()
	s := loaded(t, svc)

	press(s, runes("Buy milk"))
	press(s, keyEnter)

	assert.Equal(t, MsgRequired, s.Err())
	assert.Equal(t, 0, svc.Calls("create"))
	assert.Empty(t, s.Tasks())
}

func TestTodo_AddAppendsAndFlashes(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.NextID = "abc123"
	s := loaded(t, svc)

	press(s, runes("Buy milk"))
	press(s, keyTab)
	press(s, runes("2%"))
	msgs := press(s, keyEnter)

	created, ok := find[taskCreatedMsg](msgs)
	require.True(t, ok)
	expire := feed(s, []tea.Msg{created})

	assert.Equal(t, []service.Task{{ID: "abc123", Title: "Buy milk", Description: "2%"}}, s.Tasks())
	assert.Equal(t, MsgAdded, s.Message())
	assert.Empty(t, s.Err())
	assert.Empty(t, s.title.Value())
	assert.Empty(t, s.description.Value())
	assert.Contains(t, s.View(), MsgAdded)

	// The message expires on its own.
	feed(s, expire)
	assert.Empty(t, s.Message())
}

func TestTodo_AddIgnoresKnownID(t *testing.T) {
	s, _ := seeded(t)

	feed(s, []tea.Msg{taskCreatedMsg{task: service.Task{ID: "t1", Title: "Buy milk", Description: "2%"}}})
	assert.Len(t, s.Tasks(), 2)
}

func TestTodo_AddFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CreateErr = fmt.Errorf("%w: create: status 500", service.ErrRequestFailed)
	s := loaded(t, svc)

	press(s, runes("a"))
	press(s, keyTab)
	press(s, runes("b"))
	feed(s, press(s, keyEnter))

	assert.Equal(t, MsgCreateFailed, s.Err())
	assert.Empty(t, s.Tasks())
	assert.Equal(t, "a", s.title.Value())
}

func TestTodo_BusyIgnoresSecondSubmit(t *testing.T) {
	svc := testutil.NewFakeService()
	s := loaded(t, svc)
	s.title.SetValue("a")
	s.description.SetValue("b")

	first := s.add()
	require.NotNil(t, first)
	assert.Nil(t, s.add())

	feed(s, collect(first))
	assert.Equal(t, 1, svc.Calls("create"))
	assert.Len(t, s.Tasks(), 1)
}

func TestTodo_NewerMessageWins(t *testing.T) {
	s := loaded(t, testutil.NewFakeService())

	first := collect(s.flash(MsgAdded))
	s.flash(MsgUpdated)
	feed(s, first)

	assert.Equal(t, MsgUpdated, s.Message())
}

func TestTodo_EditSaves(t *testing.T) {
	s, svc := seeded(t)

	press(s, runes("e"))
	require.Equal(t, "t1", s.Editing())
	assert.Equal(t, "Buy milk", s.editTitle.Value())
	assert.Equal(t, "2%", s.editDescription.Value())

	s.editTitle.SetValue("Buy oat milk")
	expire := feed(s, press(s, keyEnter))

	assert.Empty(t, s.Editing())
	assert.Equal(t, "Buy oat milk", s.Tasks()[0].Title)
	assert.Equal(t, "Buy oat milk", svc.Tasks()[0].Title)
	assert.Equal(t, MsgUpdated, s.Message())

	feed(s, expire)
	assert.Empty(t, s.Message())
}

func TestTodo_EditRequiresBothFields(t *testing.T) {
	s, svc := seeded(t)

	press(s, runes("e"))
	s.editDescription.SetValue("  ")
	press(s, keyEnter)

	assert.Equal(t, MsgRequired, s.Err())
	assert.Equal(t, "t1", s.Editing())
	assert.Equal(t, 0, svc.Calls("update"))
}

func TestTodo_EditSwitchesRow(t *testing.T) {
	s, _ := seeded(t)

	press(s, runes("e"))
	s.editTitle.SetValue("unsaved")
	press(s, keyDown)
	press(s, keyCtrlE)

	assert.Equal(t, "t2", s.Editing())
	assert.Equal(t, "Walk dog", s.editTitle.Value())
	assert.Equal(t, "Buy milk", s.Tasks()[0].Title)
}

func TestTodo_EditCancelDiscards(t *testing.T) {
	s, svc := seeded(t)

	press(s, runes("e"))
	s.editTitle.SetValue("changed")
	press(s, keyEsc)

	assert.Empty(t, s.Editing())
	assert.Equal(t, "Buy milk", s.Tasks()[0].Title)
	assert.Equal(t, 0, svc.Calls("update"))
}

func TestTodo_EditFailureKeepsEditing(t *testing.T) {
	s, svc := seeded(t)
	svc.UpdateErr = fmt.Errorf("%w: update: status 500", service.ErrRequestFailed)

	press(s, runes("e"))
	s.editTitle.SetValue("changed")
	feed(s, press(s, keyEnter))

	assert.Equal(t, MsgUpdateFailed, s.Err())
	assert.Equal(t, "t1", s.Editing())
	assert.Equal(t, "changed", s.editTitle.Value())
	assert.Equal(t, "Buy milk", s.Tasks()[0].Title)
}

func TestTodo_DeleteConfirmed(t *testing.T) {
	s, svc := seeded(t)

	press(s, runes("d"))
	assert.Contains(t, s.View(), MsgConfirmDelete)

	msgs := press(s, runes("y"))
	assert.Equal(t, []service.Task{{ID: "t2", Title: "Walk dog", Description: "30 minutes"}}, s.Tasks())
	feed(s, msgs)

	assert.Empty(t, s.Err())
	assert.Len(t, svc.Tasks(), 1)
	assert.NotContains(t, s.View(), MsgConfirmDelete)
}

func TestTodo_DeleteDeclined(t *testing.T) {
	s, svc := seeded(t)

	press(s, runes("d"))
	press(s, runes("n"))

	assert.Len(t, s.Tasks(), 2)
	assert.Equal(t, 0, svc.Calls("delete"))
}

func TestTodo_DeleteFailureRestoresRow(t *testing.T) {
	s, svc := seeded(t)
	svc.DeleteErr = fmt.Errorf("%w: delete: status 500", service.ErrRequestFailed)

	press(s, runes("d"))
	feed(s, press(s, runes("y")))

	assert.Equal(t, MsgDeleteFailed, s.Err())
	require.Len(t, s.Tasks(), 2)
	assert.Equal(t, "t1", s.Tasks()[0].ID)
}

func TestTodo_UnauthorizedRedirects(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListErr = fmt.Errorf("%w: list: status 401", service.ErrUnauthorized)

	s := NewTodoScreen(signedInDeps(t, svc), "").(*TodoScreen)
	msgs := feed(s, collect(s.Init()))

	nav, ok := find[NavigateMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, NavigateMsg{Path: RouteLogin, Notice: MsgUnauthorized}, nav)
	assert.Empty(t, s.Tasks())
}

func TestTodo_SignOut(t *testing.T) {
	s, _ := seeded(t)

	msgs := press(s, keyCtrlO)

	nav, ok := find[NavigateMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, RouteLogin, nav.Path)
	assert.Nil(t, s.d.Identity.Session())
	assert.Empty(t, s.Tasks())
}
