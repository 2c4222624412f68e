package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const refreshBuffer = 60 * time.Second

// TokenSource wraps an oauth2 config with persistence. It refreshes the token
// when it is about to expire and calls onRefresh with the new one.
type TokenSource struct {
	config    *oauth2.Config
	token     *oauth2.Token
	onRefresh func(*oauth2.Token) error
	mu        sync.Mutex
}

// NewTokenSource creates a TokenSource starting from a stored token
func NewTokenSource(cfg *oauth2.Config, token *oauth2.Token, onRefresh func(*oauth2.Token) error) *TokenSource {
	return &TokenSource{
		config:    cfg,
		token:     token,
		onRefresh: onRefresh,
	}
}

// Token returns a valid token, refreshing if necessary
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !expiring(ts.token) {
		return ts.token, nil
	}

	src := ts.config.TokenSource(context.Background(), ts.token)
	newToken, err := src.Token()
	if err != nil {
		return nil, err
	}

	if ts.onRefresh != nil {
		if err := ts.onRefresh(newToken); err != nil {
			return nil, err
		}
	}

	ts.token = newToken
	return newToken, nil
}

// intervals.icu issues access tokens without an expiry; those never refresh
func expiring(t *oauth2.Token) bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Until(t.Expiry) <= refreshBuffer
}
