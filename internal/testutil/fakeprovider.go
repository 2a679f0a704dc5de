package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"todo/internal/identity"
)

// FakeProvider is an in-memory identity.Provider. Messages mirror the
// identity service's error codes.
type FakeProvider struct {
	mu        sync.Mutex
	users     map[string]string // email -> password
	seq       int
	refreshes int

	// TokenLifetime is the validity of issued ID tokens (default 1h).
	TokenLifetime time.Duration

	// Error injection for testing
	SignInErr  error
	SignUpErr  error
	RefreshErr error

	// RefreshGate, when set, holds every Refresh until it is closed.
	RefreshGate chan struct{}
}

// NewFakeProvider creates a provider with no accounts.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		users:         make(map[string]string),
		TokenLifetime: time.Hour,
	}
}

// AddUser registers an account directly.
func (f *FakeProvider) AddUser(email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = password
}

// Refreshes returns how many refresh calls were made.
func (f *FakeProvider) Refreshes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

// SignIn implements identity.Provider.
func (f *FakeProvider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	pw, ok := f.users[email]
	if !ok {
		return nil, &identity.AuthError{Message: "EMAIL_NOT_FOUND"}
	}
	if pw != password {
		return nil, &identity.AuthError{Message: "INVALID_PASSWORD"}
	}
	return f.issueLocked(email), nil
}

// SignUp implements identity.Provider.
func (f *FakeProvider) SignUp(ctx context.Context, email, password string) (*identity.Session, error) {
	if f.SignUpErr != nil {
		return nil, f.SignUpErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[email]; ok {
		return nil, &identity.AuthError{Message: "EMAIL_EXISTS"}
	}
	if len(password) < 6 {
		return nil, &identity.AuthError{Message: "WEAK_PASSWORD : Password should be at least 6 characters"}
	}
	f.users[email] = password
	return f.issueLocked(email), nil
}

// Refresh implements identity.Provider.
func (f *FakeProvider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	f.mu.Lock()
	f.refreshes++
	gate := f.RefreshGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RefreshErr != nil {
		return nil, f.RefreshErr
	}
	f.seq++
	return &oauth2.Token{
		AccessToken:  fmt.Sprintf("id-token-%d", f.seq),
		TokenType:    "Bearer",
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(f.TokenLifetime),
	}, nil
}

func (f *FakeProvider) issueLocked(email string) *identity.Session {
	f.seq++
	return &identity.Session{
		UserID:       "uid-" + email,
		Email:        email,
		IDToken:      fmt.Sprintf("id-token-%d", f.seq),
		RefreshToken: "refresh-" + email,
		Expiry:       time.Now().Add(f.TokenLifetime),
	}
}

// SignedInClient returns an identity client already signed in as email,
// backed by a MemoryStore.
func SignedInClient(p *FakeProvider, email string) *identity.Client {
	p.AddUser(email, "secret123")
	c := identity.New(p, &identity.MemoryStore{}, nil)
	if err := c.SignIn(context.Background(), email, "secret123"); err != nil {
		panic(err)
	}
	return c
}
