// Package identity signs users in against the external identity service and
// hands out fresh bearer tokens for the signed-in session.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Session is the signed-in identity.
type Session struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry"`
}

// freshFor reports whether the ID token is still valid d from now.
func (s *Session) freshFor(now time.Time, d time.Duration) bool {
	if s.IDToken == "" {
		return false
	}
	if s.Expiry.IsZero() {
		return true
	}
	return now.Add(d).Before(s.Expiry)
}

// Store persists the session between runs.
type Store interface {
	// Load returns the stored session, or nil if there is none.
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// FileStore keeps the session as JSON in a single file with mode 0600.
type FileStore struct {
	Path string
}

// Load implements Store.
func (f *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid session file: %w", err)
	}
	if s.IDToken == "" && s.RefreshToken == "" {
		return nil, nil
	}
	return &s, nil
}

// Save implements Store.
func (f *FileStore) Save(s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	return os.WriteFile(f.Path, data, 0600)
}

// Clear implements Store. A missing file is not an error.
func (f *FileStore) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryStore keeps the session for the lifetime of the process only.
type MemoryStore struct {
	mu sync.Mutex
	s  *Session
}

// Load implements Store.
func (m *MemoryStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return nil, nil
	}
	cp := *m.s
	return &cp, nil
}

// Save implements Store.
func (m *MemoryStore) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.s = &cp
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = nil
	return nil
}
