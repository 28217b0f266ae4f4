package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/teamhub/internal/client/client"
	"github.com/dmitrijs2005/teamhub/internal/client/config"
	"github.com/dmitrijs2005/teamhub/internal/client/services"
	"github.com/dmitrijs2005/teamhub/internal/client/session"
	"github.com/dmitrijs2005/teamhub/internal/client/tokens"
	"github.com/dmitrijs2005/teamhub/internal/logging"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	reader      *bufio.Reader
	out         io.Writer
	log         logging.Logger
	closer      io.Closer

	// outMu serializes writes to out; session notices arrive from the
	// timer goroutine.
	outMu sync.Mutex

	mu   sync.Mutex
	user *client.User
}

// NewApp opens local storage and wires the API client, the auth transport
// and the session lifecycle.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log, err := logging.New(c.LogBackend, c.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	repo, closer, err := client.OpenStorage(ctx, c.DBPath)
	if err != nil {
		log.Error(ctx, "error initializing storage", "error", err)
		return nil, err
	}

	store := tokens.NewStore(repo)
	base := http.DefaultTransport
	refresher := client.NewRefresher(c.APIBaseURL, base, store, c.RequestTimeout, log)
	transport := client.NewAuthTransport(base, refresher, log)
	apiClient := client.NewAPIClient(c.APIBaseURL, transport, c.RequestTimeout)

	a := &App{
		config: c,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		log:    log,
		closer: closer,
	}

	as, err := services.NewAuthService(apiClient, transport, store, repo, session.Options{
		SessionLength:    c.SessionLength,
		WarningThreshold: c.WarningThreshold,
		OnWarning:        a.onWarning,
		OnExpired:        a.onExpired,
		Logger:           log,
	}, log)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	a.authService = as

	return a, nil
}

// Run restores a previous session if there is one and blocks in the REPL
// until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.printf("Welcome to teamhub CLI (type 'help' for commands)\n")

	live, err := a.authService.Bootstrap(ctx)
	switch {
	case err != nil:
		a.log.Error(ctx, "failed to restore session", "error", err)
	case live:
		a.printf("Previous session restored.\n")
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close stops background work and releases local storage. The persisted
// session survives so the next run can resume it.
func (a *App) Close() {
	if a.authService != nil {
		a.authService.Close()
	}
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			a.log.Error(context.Background(), "failed to close storage", "error", err)
		}
	}
	if s, ok := a.log.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}

// lockedWriter serializes writes to the terminal. Each fmt call issues a
// single Write, so a line is never split by a timer notice.
type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// console is the only writer user-facing output goes through.
func (a *App) console() io.Writer {
	return lockedWriter{mu: &a.outMu, w: a.out}
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.console(), format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.console(), args...)
}

func (a *App) setUser(u *client.User) {
	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
}

func (a *App) currentUser() *client.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

func (a *App) isLoggedIn() bool {
	st, err := a.authService.Status(context.Background())
	return err == nil && st.Authenticated
}

func (a *App) onWarning(_ context.Context, remaining time.Duration) {
	secs := int(remaining.Round(time.Second).Seconds())
	a.printf("\n! Your session expires in %ds. Type 'stay' to remain signed in.\n", secs)
}

func (a *App) onExpired(_ context.Context) {
	a.setUser(nil)
	a.printf("\n! Session expired. You have been logged out.\n")
}
