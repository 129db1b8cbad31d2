// Package session holds the client's authentication state: the bearer token
// and the user it belongs to.
//
// A Container is built once by the application root and handed to whoever
// needs it. States:
//
//	Anonymous              Token == ""
//	Authenticated-pending  Token != "", user lookup in flight
//	Authenticated          Token != "", User known
//
// A token found in the store at construction time triggers a rehydration
// fetch of the current user. Each fetch is keyed to the token generation it
// was issued for, so a result that arrives after Login or Logout changed the
// token is dropped. A failed rehydration logs the session out.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/familyorganizer/internal/client/api"
	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
	"github.com/dmitrijs2005/familyorganizer/internal/client/tokenstore"
	"github.com/dmitrijs2005/familyorganizer/internal/logging"
)

var (
	ErrEmptyToken       = errors.New("login response carries no token")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionChanged   = errors.New("session changed while request was in flight")
	ErrClosed           = errors.New("session container closed")
)

// UserFetcher looks up the user a token belongs to.
type UserFetcher interface {
	FetchCurrentUser(ctx context.Context, token string) (*models.User, error)
}

// State is a snapshot of the session.
type State struct {
	User    *models.User
	Token   string
	Pending bool
}

// IsAuthenticated is true whenever a token is held.
func (s State) IsAuthenticated() bool {
	return s.Token != ""
}

type Option func(*Container)

func WithLogger(l logging.Logger) Option {
	return func(c *Container) { c.logger = l }
}

// WithKeepSessionOnNetworkError keeps the token when rehydration fails
// without any response from the server. Authorization and server failures
// still log out.
func WithKeepSessionOnNetworkError() Option {
	return func(c *Container) { c.keepOnNetworkError = true }
}

// Container owns the session state. It is safe for concurrent use.
type Container struct {
	store              tokenstore.Store
	fetcher            UserFetcher
	logger             logging.Logger
	keepOnNetworkError bool

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu          sync.Mutex
	state       State
	gen         uint64
	closed      bool
	pending     int
	idle        chan struct{}
	cancelFetch context.CancelFunc
	listeners   map[int]func(State)
	nextID      int
}

// New reads the persisted token and, if one exists, starts rehydration in
// the background. ctx supplies values only; the container outlives it until
// Close.
func New(ctx context.Context, store tokenstore.Store, fetcher UserFetcher, opts ...Option) (*Container, error) {
	c := &Container{
		store:     store,
		fetcher:   fetcher,
		logger:    logging.Nop(),
		listeners: make(map[int]func(State)),
		idle:      closedChan(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.stop = context.WithCancel(context.WithoutCancel(ctx))

	token, ok, err := store.Read(ctx)
	if err != nil {
		c.stop()
		return nil, fmt.Errorf("read persisted token: %w", err)
	}

	if ok {
		c.mu.Lock()
		c.state = State{Token: token, Pending: true}
		c.rehydrateLocked(token)
		c.mu.Unlock()
		c.logger.Debug(ctx, "rehydrating session")
	}

	return c, nil
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// rehydrateLocked starts the user lookup for token under the current
// generation. c.mu must be held.
func (c *Container) rehydrateLocked(token string) {
	gen := c.gen
	if c.pending == 0 {
		c.idle = make(chan struct{})
	}
	c.pending++

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelFetch = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		user, err := c.fetcher.FetchCurrentUser(ctx, token)
		c.finishRehydration(gen, user, err)
	}()
}

func (c *Container) finishRehydration(gen uint64, user *models.User, err error) {
	c.mu.Lock()

	c.pending--
	if c.pending == 0 {
		close(c.idle)
	}

	if c.closed || gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug(c.ctx, "stale rehydration result dropped")
		return
	}

	switch {
	case err == nil:
		c.state.User = user
		c.state.Pending = false
		c.logger.Info(c.ctx, "session restored", "username", user.Username)

	case c.keepOnNetworkError && api.IsNetwork(err):
		c.state.Pending = false
		c.logger.Warn(c.ctx, "session kept after network failure", "error", err)

	default:
		c.logger.Warn(c.ctx, "session invalid, logging out", "error", err)
		c.clearLocked()
		if werr := c.store.Write(c.ctx, ""); werr != nil {
			c.logger.Error(c.ctx, "failed to clear persisted token", "error", werr)
		}
	}

	snap, listeners := c.snapshotLocked(), c.listenersLocked()
	c.mu.Unlock()
	notify(listeners, snap)
}

// clearLocked resets to Anonymous and invalidates in-flight lookups.
func (c *Container) clearLocked() {
	c.gen++
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	c.state = State{}
}

// Login applies a successful login response: the token is persisted and the
// user is taken from the response without a further lookup.
func (c *Container) Login(ctx context.Context, resp models.LoginResponse) error {
	if resp.Token == "" {
		return ErrEmptyToken
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err := c.store.Write(ctx, resp.Token); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("persist token: %w", err)
	}
	c.clearLocked()
	user := resp.User
	c.state = State{User: &user, Token: resp.Token}
	snap, listeners := c.snapshotLocked(), c.listenersLocked()
	c.mu.Unlock()

	c.logger.Info(ctx, "logged in", "username", user.Username)
	notify(listeners, snap)
	return nil
}

// Logout always leaves the container Anonymous. The returned error reports
// a failure to remove the persisted token.
func (c *Container) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.clearLocked()
	err := c.store.Write(ctx, "")
	snap, listeners := c.snapshotLocked(), c.listenersLocked()
	c.mu.Unlock()

	c.logger.Info(ctx, "logged out")
	notify(listeners, snap)
	if err != nil {
		return fmt.Errorf("remove persisted token: %w", err)
	}
	return nil
}

// RefreshUser refetches the current user and makes it the session user.
// A 401 logs the session out. If the token changes while the request is in
// flight the result is dropped and ErrSessionChanged is returned.
func (c *Container) RefreshUser(ctx context.Context) (*models.User, error) {
	c.mu.Lock()
	token, gen := c.state.Token, c.gen
	c.mu.Unlock()

	if token == "" {
		return nil, ErrNotAuthenticated
	}

	user, err := c.fetcher.FetchCurrentUser(ctx, token)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if gen != c.gen {
		c.mu.Unlock()
		return nil, ErrSessionChanged
	}
	if err != nil {
		if !errors.Is(err, api.ErrUnauthorized) {
			c.mu.Unlock()
			return nil, err
		}
		c.clearLocked()
		if werr := c.store.Write(ctx, ""); werr != nil {
			c.logger.Error(ctx, "failed to clear persisted token", "error", werr)
		}
	} else {
		c.state.User = user
		c.state.Pending = false
	}
	snap, listeners := c.snapshotLocked(), c.listenersLocked()
	c.mu.Unlock()

	notify(listeners, snap)
	if err != nil {
		return nil, err
	}
	u := *user
	return &u, nil
}

// Snapshot returns a copy of the current state.
func (c *Container) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Container) snapshotLocked() State {
	s := c.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// User returns a copy of the session user, or nil.
func (c *Container) User() *models.User {
	return c.Snapshot().User
}

// IsAuthenticated reports whether a token is held.
func (c *Container) IsAuthenticated() bool {
	return c.Snapshot().IsAuthenticated()
}

// Token implements api.TokenSource.
func (c *Container) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Token
}

// Subscribe registers fn to be called with the new state after every change.
// The returned func removes the subscription.
func (c *Container) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Container) listenersLocked() []func(State) {
	out := make([]func(State), 0, len(c.listeners))
	for _, fn := range c.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(State), s State) {
	for _, fn := range listeners {
		fn(s)
	}
}

// Wait blocks until no rehydration is in flight or ctx is done.
func (c *Container) Wait(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops in-flight lookups; their results are no longer applied.
// It waits for the background goroutines to exit and is safe to call twice.
func (c *Container) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.stop()
	c.wg.Wait()
	return nil
}
