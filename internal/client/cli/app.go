package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/docverify/internal/client/client"
	"github.com/dmitrijs2005/docverify/internal/client/config"
	"github.com/dmitrijs2005/docverify/internal/client/services"
	"github.com/dmitrijs2005/docverify/internal/filex"
)

// Test seams.
var (
	initDatabase = client.InitDatabase
	dialServer   = func(addr string) (client.Client, error) {
		return client.NewDocVerifyClient(addr)
	}
)

// App bundles what a single CLI invocation needs: the session database, the
// API client and the auth service built on both.
type App struct {
	config *config.Config
	db     *sql.DB
	api    client.Client
	auth   services.AuthService
	in     *bufio.Reader
}

// NewApp opens the session database at cfg.SessionDBPath, creating its
// directory if needed, and prepares a client for cfg.ServerEndpointAddr.
// The connection itself is established lazily on the first RPC.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	path, err := filex.EnsureParentDir(cfg.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("session dir error: %w", err)
	}

	db, err := initDatabase(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("session db init error: %w", err)
	}

	c, err := dialServer(cfg.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("client init error: %w", err)
	}

	return &App{
		config: cfg,
		db:     db,
		api:    c,
		auth:   services.NewAuthService(c, db),
		in:     bufio.NewReader(os.Stdin),
	}, nil
}

// Close releases the client connection and the session database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.auth != nil {
		errs = append(errs, a.auth.Close(ctx))
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

// requestContext applies the configured per-request timeout.
func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

// restoreSession loads the saved tokens into the client and returns the
// user they belong to.
func (a *App) restoreSession(ctx context.Context) (string, error) {
	username, err := a.auth.RestoreSession(ctx)
	if errors.Is(err, client.ErrNotLoggedIn) {
		return "", fmt.Errorf("%w: run \"docverify login\" first", err)
	}
	if err != nil {
		return "", err
	}
	return username, nil
}

// prompt reads a line from the app's input, echoing the prompt to w.
func (a *App) prompt(label string, w io.Writer) (string, error) {
	return GetSimpleText(a.in, label, w)
}
