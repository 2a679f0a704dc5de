package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// RefreshWindow is how long before expiry an ID token is refreshed.
const RefreshWindow = 5 * time.Minute

var (
	// ErrNoSession is returned when nobody is signed in.
	ErrNoSession = errors.New("no session")

	// ErrSessionExpired is returned when the identity service rejected the
	// refresh token. The session is cleared.
	ErrSessionExpired = errors.New("session expired")
)

// AuthError is a rejected sign-in or registration. Message is the identity
// service's own text.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// Provider talks to the identity service.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)

	// Refresh exchanges a refresh token for a new ID token.
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// Event reports a session-state change. Session is nil after sign-out.
type Event struct {
	Session *Session
}

// SignedIn reports whether the event carries a session.
func (e Event) SignedIn() bool { return e.Session != nil }

// Client owns the current session. It is created once and passed to every
// screen and command that needs it. Safe for concurrent use.
type Client struct {
	provider Provider
	store    Store
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	session *Session
	subs    map[int]chan Event
	nextSub int
}

// New creates a client and restores any stored session. A store that
// cannot be read is logged and treated as signed out.
func New(provider Provider, store Store, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		provider: provider,
		store:    store,
		logger:   logger,
		now:      time.Now,
		subs:     make(map[int]chan Event),
	}
	s, err := store.Load()
	if err != nil {
		logger.Warn("ignoring stored session", zap.Error(err))
		s = nil
	}
	c.session = s
	return c
}

// Session returns a copy of the current session, or nil.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked()
}

// SignIn signs in with email and password.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	s, err := c.provider.SignIn(ctx, email, password)
	if err != nil {
		c.logger.Info("sign-in rejected", zap.String("email", email), zap.Error(err))
		return asAuthError(err)
	}
	c.establish(s)
	c.logger.Info("signed in", zap.String("user", s.UserID))
	return nil
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, email, password string) error {
	s, err := c.provider.SignUp(ctx, email, password)
	if err != nil {
		c.logger.Info("registration rejected", zap.String("email", email), zap.Error(err))
		return asAuthError(err)
	}
	c.establish(s)
	c.logger.Info("registered", zap.String("user", s.UserID))
	return nil
}

// SignOut clears the session. It always succeeds locally; a store that
// cannot be cleared is only logged.
func (c *Client) SignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
	c.logger.Info("signed out")
}

// CurrentToken returns a bearer token for the session, refreshing it first
// if it expires within RefreshWindow. The lock is not held during the
// refresh call, so SignOut never waits on the network. A refresh result is
// dropped if the session changed meanwhile.
func (c *Client) CurrentToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	s := c.session
	if s == nil {
		c.mu.Unlock()
		return "", ErrNoSession
	}
	if s.freshFor(c.now(), RefreshWindow) {
		tok := s.IDToken
		c.mu.Unlock()
		return tok, nil
	}
	if s.RefreshToken == "" {
		c.clearLocked()
		c.mu.Unlock()
		return "", ErrSessionExpired
	}
	refreshToken := s.RefreshToken
	c.mu.Unlock()

	tok, err := c.provider.Refresh(ctx, refreshToken)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != s {
		return c.replacedLocked()
	}
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			c.logger.Warn("refresh token rejected", zap.Error(err))
			c.clearLocked()
			return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	idToken := tok.AccessToken
	if v, ok := tok.Extra("id_token").(string); ok && v != "" {
		idToken = v
	}
	next := *s
	next.IDToken = idToken
	next.Expiry = tok.Expiry
	if tok.RefreshToken != "" {
		next.RefreshToken = tok.RefreshToken
	}
	c.session = &next
	if err := c.store.Save(c.session); err != nil {
		c.logger.Warn("failed to save refreshed session", zap.Error(err))
	}
	c.logger.Debug("token refreshed", zap.Time("expiry", tok.Expiry))
	return idToken, nil
}

// replacedLocked answers a refresh whose session was signed out or
// replaced while the call was in flight.
func (c *Client) replacedLocked() (string, error) {
	if c.session == nil {
		return "", ErrNoSession
	}
	if c.session.freshFor(c.now(), RefreshWindow) {
		return c.session.IDToken, nil
	}
	return "", ErrSessionExpired
}

// TokenSource adapts CurrentToken to oauth2. It does no caching of its
// own, so a sign-out takes effect on the next request.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &sessionTokenSource{ctx: ctx, c: c}
}

type sessionTokenSource struct {
	ctx context.Context
	c   *Client
}

func (s *sessionTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.c.CurrentToken(s.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

// Subscribe returns a channel of session-state changes. The current state
// is delivered immediately. Only the latest undelivered event is kept.
// cancel closes the channel.
func (c *Client) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 1)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- Event{Session: c.copyLocked()}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (c *Client) establish(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *s
	c.session = &cp
	if err := c.store.Save(&cp); err != nil {
		c.logger.Warn("failed to save session", zap.Error(err))
	}
	c.notifyLocked()
}

func (c *Client) clearLocked() {
	c.session = nil
	if err := c.store.Clear(); err != nil {
		c.logger.Warn("failed to clear stored session", zap.Error(err))
	}
	c.notifyLocked()
}

func (c *Client) notifyLocked() {
	ev := Event{Session: c.copyLocked()}
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			// replace the stale event
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

func (c *Client) copyLocked() *Session {
	if c.session == nil {
		return nil
	}
	cp := *c.session
	return &cp
}

func asAuthError(err error) error {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}
	return &AuthError{Message: err.Error(), Err: err}
}
