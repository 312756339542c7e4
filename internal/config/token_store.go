package config

import "sync"

// TokenStore persists the session credential in the config file. Reads are
// served from memory so the hot path never touches disk.
type TokenStore struct {
	mu    sync.Mutex
	token string
}

// NewTokenStore seeds the store with the token loaded from the config file
func NewTokenStore(cfg *Config) *TokenStore {
	return &TokenStore{token: cfg.Auth.Token}
}

func (t *TokenStore) Token() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}

func (t *TokenStore) SaveToken(token string) error {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
	return SaveToken(token)
}

func (t *TokenStore) ClearToken() error {
	t.mu.Lock()
	t.token = ""
	t.mu.Unlock()
	return ClearToken()
}
