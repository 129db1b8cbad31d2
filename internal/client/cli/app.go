package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/familyorganizer/internal/client/api"
	"github.com/dmitrijs2005/familyorganizer/internal/client/config"
	"github.com/dmitrijs2005/familyorganizer/internal/client/errmsg"
	"github.com/dmitrijs2005/familyorganizer/internal/client/querycache"
	"github.com/dmitrijs2005/familyorganizer/internal/client/services"
	"github.com/dmitrijs2005/familyorganizer/internal/client/session"
	"github.com/dmitrijs2005/familyorganizer/internal/client/tokenstore"
	"github.com/dmitrijs2005/familyorganizer/internal/client/validation"
	"github.com/dmitrijs2005/familyorganizer/internal/logging"
)

// sessionView is what the App needs from *session.Container.
type sessionView interface {
	Snapshot() session.State
	Wait(ctx context.Context) error
	Subscribe(fn func(session.State)) (unsubscribe func())
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	session sessionView

	authService    services.AuthService
	profileService services.ProfileService
	recipeService  services.RecipeService

	reader *bufio.Reader
	out    io.Writer

	loading      atomic.Bool
	loggingOut   atomic.Bool
	sessionEnded atomic.Bool
	closers      []func() error
}

// NewApp wires the token store, API client, session and services from c.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	store, closeStore, err := openTokenStore(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	client, err := api.New(c.APIBaseURL, api.WithTimeout(c.RequestTimeout), api.WithLogger(logger))
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	opts := []session.Option{session.WithLogger(logger)}
	if c.KeepSessionOnNetworkError {
		opts = append(opts, session.WithKeepSessionOnNetworkError())
	}
	sess, err := session.New(ctx, store, client, opts...)
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	client.SetTokenSource(sess)

	cache := querycache.New(querycache.WithStaleTime(c.CacheStaleTime), querycache.WithLogger(logger))
	v := validation.New()

	a := &App{
		config:         c,
		logger:         logger,
		session:        sess,
		authService:    services.NewAuthService(client, sess, cache, v, logger),
		profileService: services.NewProfileService(client, sess, v),
		recipeService:  services.NewRecipeService(client, sess, cache, v, logger),
		reader:         bufio.NewReader(os.Stdin),
		out:            os.Stdout,
	}
	a.closers = []func() error{sess.Close, closeStore}
	return a, nil
}

func openTokenStore(ctx context.Context, c *config.Config, logger logging.Logger) (tokenstore.Store, func() error, error) {
	if c.Ephemeral {
		return tokenstore.NewMemoryStore(""), func() error { return nil }, nil
	}
	store, err := tokenstore.Open(ctx, c.TokenDB)
	if err != nil {
		return nil, nil, fmt.Errorf("open token store: %w", err)
	}
	if at, ok, err := store.SavedAt(ctx); err != nil {
		logger.Warn(ctx, "unreadable token timestamp", "error", err)
	} else if ok {
		logger.Debug(ctx, "persisted token found", "saved_at", at, "age", time.Since(at).Round(time.Second))
	}
	return store, store.Close, nil
}

// Run restores the session, then runs the REPL on stdin until the user
// exits. Resources are released before it returns.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	unsubscribe := a.session.Subscribe(a.onSessionChange)
	defer unsubscribe()

	printlnFn("Welcome to the family organizer (type 'help' for commands)")
	a.restoreSession(ctx)

	runREPL(ctx, a, a.prompt, bufio.NewScanner(a.reader))
	return nil
}

func (a *App) restoreSession(ctx context.Context) {
	s := a.session.Snapshot()
	if !s.IsAuthenticated() {
		return
	}
	if s.Pending {
		printlnFn("Restoring session...")
	}

	wctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()
	if err := a.session.Wait(wctx); err != nil {
		a.logger.Warn(ctx, "session restore still running", "error", err)
		return
	}
	switch after := a.session.Snapshot(); {
	case after.User != nil:
		printlnFn("Logged in as", after.User.Username)
	case !after.IsAuthenticated():
		a.sessionEnded.Store(true)
	}
	a.reportSessionEnd()
}

// onSessionChange notes logouts the user did not ask for. It may run on the
// session's goroutine, so the notice is printed later by reportSessionEnd.
func (a *App) onSessionChange(s session.State) {
	if !s.IsAuthenticated() && !a.loggingOut.Load() {
		a.sessionEnded.Store(true)
	}
}

func (a *App) reportSessionEnd() {
	if a.sessionEnded.Swap(false) {
		printlnFn("Session ended, please log in again")
	}
}

func (a *App) prompt() string {
	a.reportSessionEnd()
	return a.status()
}

// Close releases the session and the token store.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().IsAuthenticated()
}

// status is shown in the prompt: "(alice)", "(root admin)", "(restoring)",
// with " loading" appended while a request is in flight.
func (a *App) status() string {
	s := a.session.Snapshot()

	var text string
	switch {
	case s.User != nil:
		text = s.User.Username
		if s.User.IsAdmin() {
			text += " admin"
		}
	case s.Pending:
		text = "restoring"
	case s.IsAuthenticated():
		text = "offline"
	}
	if a.loading.Load() {
		if text != "" {
			text += " "
		}
		text += "loading"
	}
	if text == "" {
		return ""
	}
	return "(" + text + ")"
}

// busy runs fn with the loading flag set.
func (a *App) busy(fn func() error) error {
	a.loading.Store(true)
	defer a.loading.Store(false)
	return fn()
}

// fail prints the user-facing message for err and logs it. It returns err.
func (a *App) fail(ctx context.Context, what string, err error) error {
	a.logger.Debug(ctx, what+" failed", "error", err)
	printlnFn("Error:", errmsg.Format(err))
	return err
}
