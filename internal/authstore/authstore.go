// Package authstore defines the boundary greppy's daemon calls through
// to fetch credentials for an external service (e.g. a hosted embedding
// or rerank provider) without ever holding them itself. The only
// concrete store in this tree, NoopStore, reports no token configured;
// a real one (config file, OS keychain, ...) plugs in via Daemon.SetTokenStore.
package authstore

import "context"

// TokenStore retrieves a bearer token for provider, if one is
// configured. The bool return distinguishes "no token configured" from
// an empty token.
type TokenStore interface {
	GetToken(ctx context.Context, provider string) (string, bool, error)
}

// NoopStore is a TokenStore that never has a token configured, the
// daemon's default until a concrete store (e.g. backed by a config file
// or OS keychain) is wired in.
type NoopStore struct{}

// GetToken always reports no token configured.
func (NoopStore) GetToken(ctx context.Context, provider string) (string, bool, error) {
	return "", false, nil
}
