// Package services contains application services for the docverify CLI.
// This file defines the authentication service: register, login, logout and
// the persistent session that lets separate CLI invocations share tokens.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/docverify/internal/api"
	"github.com/dmitrijs2005/docverify/internal/client/client"
	"github.com/dmitrijs2005/docverify/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docverify/internal/dbx"
)

// Session keys in the metadata table.
const (
	keyUsername     = "username"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create a new user on the server.
//   - Login: authenticate and persist the session locally.
//   - RestoreSession: load a saved session into the API client.
//   - Logout: wipe the local session.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	Login(ctx context.Context, username string, password []byte) error
	RestoreSession(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
}

// NewAuthService binds the API client to the session database. Tokens the
// client obtains later, including transparent refreshes, are saved as they
// arrive.
func NewAuthService(c client.Client, db *sql.DB) AuthService {
	a := &authService{client: c, db: db}
	c.OnTokensChanged(a.persistTokens)
	return a
}

func (a *authService) getMetadataRepo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// RestoreSession hands saved tokens to the client and returns the user name
// they belong to. It returns client.ErrNotLoggedIn when nothing is saved.
func (a *authService) RestoreSession(ctx context.Context) (string, error) {
	repo := a.getMetadataRepo(a.db)

	values, err := repo.List(ctx)
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	if len(values[keyAccessToken]) == 0 {
		return "", client.ErrNotLoggedIn
	}

	a.client.SetTokens(api.TokenPair{
		AccessToken:  string(values[keyAccessToken]),
		RefreshToken: string(values[keyRefreshToken]),
	})
	return string(values[keyUsername]), nil
}

// Login authenticates against the server and saves the user name next to
// the tokens the client stored through its hook.
func (a *authService) Login(ctx context.Context, username string, password []byte) error {
	if err := a.client.Login(ctx, username, string(password)); err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := a.saveSession(ctx, username, a.client.Tokens()); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

// saveSession writes the user name and both tokens in one statement.
func (a *authService) saveSession(ctx context.Context, username string, tokens api.TokenPair) error {
	values := map[string][]byte{
		keyAccessToken:  []byte(tokens.AccessToken),
		keyRefreshToken: []byte(tokens.RefreshToken),
	}
	if username != "" {
		values[keyUsername] = []byte(username)
	}
	return a.getMetadataRepo(a.db).Put(ctx, values)
}

func (a *authService) persistTokens(tokens api.TokenPair) {
	// The hook carries no context; the write is local and short.
	_ = a.saveSession(context.Background(), "", tokens)
}

func (a *authService) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	return a.client.Register(ctx, req)
}

// Logout wipes the local session and forgets the client's tokens.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.getMetadataRepo(a.db).Delete(ctx, keyUsername, keyAccessToken, keyRefreshToken); err != nil {
		return err
	}
	a.client.SetTokens(api.TokenPair{})
	return nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
