package client

import (
	"context"

	"github.com/dmitrijs2005/docverify/internal/api"
)

// Client is the CLI's view of the docverify API.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	Login(ctx context.Context, username, password string) error
	CreateDocument(ctx context.Context, title string) (*api.Document, error)
	FinalizeDocument(ctx context.Context, documentID int64) (*api.FinalizeResponse, error)
	SignDocument(ctx context.Context, req api.SignRequest) (*api.SignResponse, error)
	StampDocument(ctx context.Context, documentID int64, pdf []byte) ([]byte, error)
	ListSignatures(ctx context.Context, documentID int64) ([]api.Signature, error)
	LookupCode(ctx context.Context, code string) (*api.LookupResponse, error)

	Tokens() api.TokenPair
	SetTokens(tokens api.TokenPair)
	// OnTokensChanged registers fn to run after a login or a transparent refresh.
	OnTokensChanged(fn func(api.TokenPair))
}
