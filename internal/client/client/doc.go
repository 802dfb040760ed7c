// Package client talks to the docverify gRPC API on behalf of the CLI.
//
// GRPCClient sends typed requests from package api as protobuf Structs,
// injects the access token into outgoing metadata, and refreshes an expired
// access token once per call before retrying. Refreshed tokens are handed to
// the OnTokensChanged hook so the caller can persist them.
//
// Status codes are mapped to the sentinel errors in this package:
// ErrUnauthorized, ErrNotFound, ErrRejected and ErrUnavailable.
//
// InitDatabase opens the local SQLite session database and applies the
// embedded goose migrations.
package client
