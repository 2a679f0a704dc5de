package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"todo/internal/service"
)

// Messages shown by the task list.
const (
	MsgAdded          = "Item added successfully"
	MsgUpdated        = "Item updated successfully"
	MsgRequired       = "Title and description are required"
	MsgFetchFailed    = "Unable to fetch Todo items"
	MsgCreateFailed   = "Unable to create Todo item"
	MsgUpdateFailed   = "Unable to update Todo item"
	MsgDeleteFailed   = "Unable to delete Todo item"
	MsgUnauthorized   = "Unauthorized access. Please log in again."
	MsgConfirmDelete  = "Are you sure want to delete? (y/n)"
	defaultMessageTTL = 3 * time.Second
)

type todoFocus int

const (
	focusTitle todoFocus = iota
	focusDescription
	focusList
)

type (
	tasksLoadedMsg struct {
		tasks []service.Task
		err   error
	}
	taskCreatedMsg struct {
		task service.Task
		err  error
	}
	taskUpdatedMsg struct {
		id   string
		task service.Task
		err  error
	}
	taskDeletedMsg struct {
		task  service.Task
		index int
		err   error
	}
	clearMessageMsg struct {
		seq int
	}
)

// TodoScreen lists the user's tasks with an add form. Each row is either
// viewed or edited; at most one row is edited at a time, and starting an
// edit on another row abandons the first one's unsaved changes.
type TodoScreen struct {
	d *Deps

	tasks  []service.Task
	cursor int
	focus  todoFocus

	title       textinput.Model
	description textinput.Model

	editID          string
	editTitle       textinput.Model
	editDescription textinput.Model
	editField       int

	confirmID string

	loading    bool
	busy       bool
	err        string
	message    string
	messageSeq int

	help  help.Model
	width int
}

// NewTodoScreen returns the task list. Tasks are fetched by Init.
func NewTodoScreen(d *Deps, _ string) Screen {
	s := &TodoScreen{
		d:               d,
		title:           newInput("Title", "Title:       "),
		description:     newInput("Description", "Description: "),
		editTitle:       newInput("Title", "  Title:       "),
		editDescription: newInput("Description", "  Description: "),
		loading:         true,
		help:            help.New(),
	}
	s.title.Focus()
	return s
}

func newInput(placeholder, prompt string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = prompt
	in.CharLimit = 512
	return in
}

// Tasks returns the tasks currently shown.
func (s *TodoScreen) Tasks() []service.Task {
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Editing returns the id of the row being edited, or "".
func (s *TodoScreen) Editing() string { return s.editID }

// Message returns the transient success message.
func (s *TodoScreen) Message() string { return s.message }

// Err returns the error message.
func (s *TodoScreen) Err() string { return s.err }

func (s *TodoScreen) Init() tea.Cmd {
	svc, ctx := s.d.Tasks, s.d.ctx()
	return tea.Batch(textinput.Blink, func() tea.Msg {
		tasks, err := svc.ListTasks(ctx)
		return tasksLoadedMsg{tasks: tasks, err: err}
	})
}

func (s *TodoScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.help.Width = msg.Width
		width := max(min(msg.Width-24, 60), 10)
		s.title.Width = width
		s.description.Width = width
		s.editTitle.Width = width
		s.editDescription.Width = width
		return s, nil

	case tasksLoadedMsg:
		s.loading = false
		if msg.err != nil {
			return s, s.fail(msg.err, MsgFetchFailed)
		}
		s.tasks = msg.tasks
		s.clampCursor()
		return s, nil

	case taskCreatedMsg:
		s.busy = false
		if msg.err != nil {
			return s, s.fail(msg.err, MsgCreateFailed)
		}
		if s.indexOf(msg.task.ID) < 0 {
			s.tasks = append(s.tasks, msg.task)
		}
		s.title.Reset()
		s.description.Reset()
		return s, s.flash(MsgAdded)

	case taskUpdatedMsg:
		s.busy = false
		if msg.err != nil {
			return s, s.fail(msg.err, MsgUpdateFailed)
		}
		if i := s.indexOf(msg.id); i >= 0 {
			s.tasks[i] = msg.task
		}
		var cmd tea.Cmd
		if s.editID == msg.id {
			cmd = s.cancelEdit()
		}
		return s, tea.Batch(cmd, s.flash(MsgUpdated))

	case taskDeletedMsg:
		s.busy = false
		if msg.err == nil {
			return s, nil
		}
		if !errors.Is(msg.err, service.ErrUnauthorized) && s.indexOf(msg.task.ID) < 0 {
			i := min(msg.index, len(s.tasks))
			s.tasks = append(s.tasks[:i], append([]service.Task{msg.task}, s.tasks[i:]...)...)
		}
		return s, s.fail(msg.err, MsgDeleteFailed)

	case clearMessageMsg:
		if msg.seq == s.messageSeq {
			s.message = ""
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return s, s.updateInputs(msg)
}

func (s *TodoScreen) handleKey(msg tea.KeyMsg) (Screen, tea.Cmd) {
	k := s.d.Keys

	if s.confirmID != "" {
		if key.Matches(msg, k.Confirm) {
			return s, s.confirmDelete()
		}
		s.confirmID = ""
		return s, nil
	}

	switch {
	case key.Matches(msg, k.SignOut):
		return s, s.signOut()
	case s.editID != "":
		return s.handleEditKey(msg)
	case key.Matches(msg, k.NextField):
		return s, s.setFocus((s.focus + 1) % 3)
	case key.Matches(msg, k.PrevField):
		return s, s.setFocus((s.focus + 2) % 3)
	case s.focus == focusList:
		return s.handleListKey(msg)
	case key.Matches(msg, k.Submit):
		return s, s.add()
	}
	return s, s.updateInputs(msg)
}

func (s *TodoScreen) handleListKey(msg tea.KeyMsg) (Screen, tea.Cmd) {
	k := s.d.Keys
	switch {
	case key.Matches(msg, k.Up):
		s.moveCursor(-1)
	case key.Matches(msg, k.Down):
		s.moveCursor(1)
	case key.Matches(msg, k.Edit), key.Matches(msg, k.SwitchEdit):
		return s, s.beginEdit(s.cursor)
	case key.Matches(msg, k.Delete):
		s.askDelete(s.cursor)
	}
	return s, nil
}

func (s *TodoScreen) handleEditKey(msg tea.KeyMsg) (Screen, tea.Cmd) {
	k := s.d.Keys
	switch {
	case key.Matches(msg, k.Submit):
		return s, s.update()
	case key.Matches(msg, k.Cancel):
		return s, s.cancelEdit()
	case key.Matches(msg, k.NextField), key.Matches(msg, k.PrevField):
		return s, s.setEditField(1 - s.editField)
	case key.Matches(msg, k.SwitchEdit):
		return s, s.beginEdit(s.cursor)
	case msg.Type == tea.KeyUp:
		s.moveCursor(-1)
		return s, nil
	case msg.Type == tea.KeyDown:
		s.moveCursor(1)
		return s, nil
	}
	return s, s.updateInputs(msg)
}

// updateInputs forwards msg to the text inputs. Only the focused one
// reacts to keys.
func (s *TodoScreen) updateInputs(msg tea.Msg) tea.Cmd {
	var cmds [4]tea.Cmd
	s.title, cmds[0] = s.title.Update(msg)
	s.description, cmds[1] = s.description.Update(msg)
	s.editTitle, cmds[2] = s.editTitle.Update(msg)
	s.editDescription, cmds[3] = s.editDescription.Update(msg)
	return tea.Batch(cmds[:]...)
}

func (s *TodoScreen) setFocus(f todoFocus) tea.Cmd {
	s.focus = f
	s.title.Blur()
	s.description.Blur()
	switch f {
	case focusTitle:
		return s.title.Focus()
	case focusDescription:
		return s.description.Focus()
	}
	return nil
}

func (s *TodoScreen) setEditField(field int) tea.Cmd {
	s.editField = field
	if field == 0 {
		s.editDescription.Blur()
		return s.editTitle.Focus()
	}
	s.editTitle.Blur()
	return s.editDescription.Focus()
}

func (s *TodoScreen) moveCursor(delta int) {
	s.cursor += delta
	s.clampCursor()
}

func (s *TodoScreen) clampCursor() {
	s.cursor = max(min(s.cursor, len(s.tasks)-1), 0)
}

func (s *TodoScreen) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// add submits the add form. Both fields are required.
func (s *TodoScreen) add() tea.Cmd {
	if s.busy {
		return nil
	}
	s.err = ""
	title := strings.TrimSpace(s.title.Value())
	description := strings.TrimSpace(s.description.Value())
	if title == "" || description == "" {
		s.err = MsgRequired
		return nil
	}

	s.busy = true
	svc, ctx := s.d.Tasks, s.d.ctx()
	return func() tea.Msg {
		t, err := svc.CreateTask(ctx, title, description)
		return taskCreatedMsg{task: t, err: err}
	}
}

// beginEdit puts row i into edit mode with its current values.
func (s *TodoScreen) beginEdit(i int) tea.Cmd {
	if s.busy || i < 0 || i >= len(s.tasks) {
		return nil
	}
	t := s.tasks[i]
	s.cursor = i
	s.editID = t.ID
	s.editTitle.SetValue(t.Title)
	s.editDescription.SetValue(t.Description)
	s.title.Blur()
	s.description.Blur()
	s.focus = focusList
	return s.setEditField(0)
}

// cancelEdit leaves edit mode, discarding the edit buffers.
func (s *TodoScreen) cancelEdit() tea.Cmd {
	s.editID = ""
	s.editTitle.Reset()
	s.editDescription.Reset()
	s.editTitle.Blur()
	s.editDescription.Blur()
	s.focus = focusList
	return nil
}

// update saves the edited row. The row stays in edit mode on failure.
func (s *TodoScreen) update() tea.Cmd {
	if s.busy || s.editID == "" {
		return nil
	}
	s.err = ""
	title := strings.TrimSpace(s.editTitle.Value())
	description := strings.TrimSpace(s.editDescription.Value())
	if title == "" || description == "" {
		s.err = MsgRequired
		return nil
	}

	s.busy = true
	id := s.editID
	svc, ctx := s.d.Tasks, s.d.ctx()
	return func() tea.Msg {
		t, err := svc.UpdateTask(ctx, id, title, description)
		return taskUpdatedMsg{id: id, task: t, err: err}
	}
}

func (s *TodoScreen) askDelete(i int) {
	if s.busy || i < 0 || i >= len(s.tasks) {
		return
	}
	s.confirmID = s.tasks[i].ID
}

// confirmDelete removes the row immediately and restores it if the
// server refuses.
func (s *TodoScreen) confirmDelete() tea.Cmd {
	id := s.confirmID
	s.confirmID = ""
	i := s.indexOf(id)
	if s.busy || i < 0 {
		return nil
	}
	s.err = ""

	removed := s.tasks[i]
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.clampCursor()
	if s.editID == id {
		s.cancelEdit()
	}

	s.busy = true
	svc, ctx := s.d.Tasks, s.d.ctx()
	return func() tea.Msg {
		return taskDeletedMsg{task: removed, index: i, err: svc.DeleteTask(ctx, id)}
	}
}

func (s *TodoScreen) signOut() tea.Cmd {
	s.d.Identity.SignOut()
	s.tasks = nil
	return Navigate(RouteLogin, "")
}

// flash shows text until the message lifetime passes or a newer message
// replaces it.
func (s *TodoScreen) flash(text string) tea.Cmd {
	s.messageSeq++
	s.message = text
	seq := s.messageSeq
	ttl := s.d.MessageTTL
	if ttl <= 0 {
		ttl = defaultMessageTTL
	}
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return clearMessageMsg{seq: seq}
	})
}

// fail records a failed request. An authorization failure clears the list
// and sends the user back to the login screen.
func (s *TodoScreen) fail(err error, text string) tea.Cmd {
	if errors.Is(err, service.ErrUnauthorized) {
		s.d.logger().Info("unauthorized, redirecting to login", zap.Error(err))
		s.tasks = nil
		s.err = MsgUnauthorized
		return Navigate(RouteLogin, MsgUnauthorized)
	}
	if !errors.Is(err, context.Canceled) {
		s.d.logger().Warn(text, zap.Error(err))
	}
	s.err = text
	return nil
}

func (s *TodoScreen) View() string {
	t := s.d.Theme

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		t.HeaderStyle.Render("Todo App"),
		" ",
		t.MutedStyle.Render(s.account()),
	)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(t.SectionStyle.Render("Add New Task"))
	b.WriteString("\n")
	if s.message != "" {
		b.WriteString(t.SuccessStyle.Render(s.message))
		b.WriteString("\n")
	}
	b.WriteString(s.title.View())
	b.WriteString("\n")
	b.WriteString(s.description.View())
	b.WriteString("\n")
	if s.err != "" {
		b.WriteString(t.ErrorStyle.Render(s.err))
		b.WriteString("\n")
	}

	b.WriteString(t.SectionStyle.Render("Your Tasks"))
	b.WriteString("\n")
	switch {
	case s.loading:
		b.WriteString(t.MutedStyle.Render("Loading..."))
		b.WriteString("\n")
	case len(s.tasks) == 0:
		b.WriteString(t.MutedStyle.Render("No tasks yet."))
		b.WriteString("\n")
	}
	for i, task := range s.tasks {
		b.WriteString(s.renderRow(i, task))
	}

	if s.confirmID != "" {
		b.WriteString("\n")
		b.WriteString(t.ErrorStyle.Render(MsgConfirmDelete))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.help.View(todoHelp{
		k:       s.d.Keys,
		list:    s.focus == focusList,
		editing: s.editID != "",
	}))
	return b.String()
}

func (s *TodoScreen) renderRow(i int, task service.Task) string {
	t := s.d.Theme
	selected := s.focus == focusList && i == s.cursor

	marker := "  "
	title := t.TitleStyle.Render(task.Title)
	if selected {
		marker = t.SelectedStyle.Render("> ")
		title = t.SelectedStyle.Render(task.Title)
	}

	if task.ID == s.editID {
		return fmt.Sprintf("%s%s\n%s\n%s\n", marker, t.MutedStyle.Render("editing"),
			s.editTitle.View(), s.editDescription.View())
	}
	return fmt.Sprintf("%s%s\n    %s\n", marker, title, t.MutedStyle.Render(task.Description))
}

func (s *TodoScreen) account() string {
	if sess := s.d.Identity.Session(); sess != nil {
		return sess.Email
	}
	return ""
}
