package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"todo/internal/identity"
)

// authAction submits credentials to the identity client.
type authAction func(ctx context.Context, email, password string) error

// authResultMsg reports the outcome of a sign-in or registration.
type authResultMsg struct {
	err error
}

// authScreen is the email/password form behind the login and register
// screens.
type authScreen struct {
	d *Deps

	title     string
	submit    string
	linkText  string
	linkLabel string
	linkPath  string
	action    authAction

	email    textinput.Model
	password textinput.Model
	focus    int
	help     help.Model

	notice string
	err    string
	busy   bool
}

func newAuthScreen(d *Deps, notice string) *authScreen {
	email := textinput.New()
	email.Placeholder = "Email"
	email.Prompt = "Email:    "
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &authScreen{
		d:        d,
		email:    email,
		password: password,
		help:     help.New(),
		notice:   notice,
	}
}

func (s *authScreen) Init() tea.Cmd {
	return textinput.Blink
}

func (s *authScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.help.Width = msg.Width
		width := max(min(msg.Width-20, 48), 10)
		s.email.Width = width
		s.password.Width = width
		return s, nil

	case authResultMsg:
		s.busy = false
		if msg.err != nil {
			s.err = authMessage(msg.err)
			return s, nil
		}
		return s, Navigate(RouteTodo, "")

	case tea.KeyMsg:
		k := s.d.Keys
		switch {
		case key.Matches(msg, k.SwitchForm):
			return s, Navigate(s.linkPath, "")
		case key.Matches(msg, k.NextField), key.Matches(msg, k.PrevField):
			return s, s.toggleFocus()
		case key.Matches(msg, k.Submit):
			return s, s.submitForm()
		}
	}

	var cmds [2]tea.Cmd
	s.email, cmds[0] = s.email.Update(msg)
	s.password, cmds[1] = s.password.Update(msg)
	return s, tea.Batch(cmds[:]...)
}

func (s *authScreen) toggleFocus() tea.Cmd {
	s.focus = 1 - s.focus
	if s.focus == 0 {
		s.password.Blur()
		return s.email.Focus()
	}
	s.email.Blur()
	return s.password.Focus()
}

func (s *authScreen) submitForm() tea.Cmd {
	if s.busy {
		return nil
	}
	s.busy = true
	s.err = ""
	s.notice = ""

	email := strings.TrimSpace(s.email.Value())
	password := s.password.Value()
	ctx, action, logger := s.d.ctx(), s.action, s.d.logger()
	return func() tea.Msg {
		err := action(ctx, email, password)
		if err != nil {
			logger.Debug("auth failed", zap.String("email", email), zap.Error(err))
		}
		return authResultMsg{err: err}
	}
}

func (s *authScreen) View() string {
	t := s.d.Theme

	var b strings.Builder
	b.WriteString(t.TitleStyle.Render(s.title))
	b.WriteString("\n\n")
	if s.notice != "" {
		b.WriteString(t.ErrorStyle.Render(s.notice))
		b.WriteString("\n\n")
	}
	b.WriteString(s.email.View())
	b.WriteString("\n")
	b.WriteString(s.password.View())
	b.WriteString("\n\n")

	if s.busy {
		b.WriteString(t.MutedStyle.Render(s.submit + "..."))
	} else {
		b.WriteString(t.MutedStyle.Render("[enter] " + s.submit))
	}
	b.WriteString("\n")
	if s.err != "" {
		b.WriteString("\n")
		b.WriteString(t.ErrorStyle.Render(s.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.linkText + " " + t.LinkStyle.Render(s.linkLabel))

	return lipgloss.JoinVertical(lipgloss.Left,
		t.CardStyle.Render(b.String()),
		s.help.View(authHelp{k: s.d.Keys}),
	)
}

// authMessage is the text shown for a failed sign-in or registration.
// Identity service messages are shown verbatim.
func authMessage(err error) string {
	var ae *identity.AuthError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return err.Error()
}
