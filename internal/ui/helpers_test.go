package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zaptest"

	"todo/internal/identity"
	"todo/internal/service"
	"todo/internal/testutil"
)

const testTTL = 5 * time.Millisecond

func newDeps(t *testing.T, ident *identity.Client, svc service.Service) *Deps {
	t.Helper()
	return &Deps{
		Ctx:        context.Background(),
		Identity:   ident,
		Tasks:      svc,
		Logger:     zaptest.NewLogger(t),
		MessageTTL: testTTL,
		Theme:      DefaultTheme(),
		Keys:       DefaultKeyMap(),
	}
}

func signedInDeps(t *testing.T, svc service.Service) *Deps {
	t.Helper()
	return newDeps(t, testutil.SignedInClient(testutil.NewFakeProvider(), "ada@example.com"), svc)
}

// collect runs cmd and returns the messages it produces, expanding
// batches. Commands that block (cursor blinks, session waits) are
// abandoned after a short wait.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// find returns the first message of type T.
func find[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// feed delivers msgs to s and returns every message the resulting
// commands produce.
func feed(s Screen, msgs []tea.Msg) []tea.Msg {
	var out []tea.Msg
	for _, m := range msgs {
		_, cmd := s.Update(m)
		out = append(out, collect(cmd)...)
	}
	return out
}

// press delivers a key to s and returns the messages of its command.
func press(s Screen, k tea.KeyMsg) []tea.Msg {
	_, cmd := s.Update(k)
	return collect(cmd)
}

func runes(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

var (
	keyEnter   = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab     = tea.KeyMsg{Type: tea.KeyTab}
	keyEsc     = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown    = tea.KeyMsg{Type: tea.KeyDown}
	keyCtrlE   = tea.KeyMsg{Type: tea.KeyCtrlE}
	keyCtrlO   = tea.KeyMsg{Type: tea.KeyCtrlO}
	keyCtrlR   = tea.KeyMsg{Type: tea.KeyCtrlR}
	keyCtrlC   = tea.KeyMsg{Type: tea.KeyCtrlC}
	keyBackTab = tea.KeyMsg{Type: tea.KeyShiftTab}
)
