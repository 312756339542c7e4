// Package session holds the single source of truth for "who is logged in".
// It owns the credential token, resolves the identity behind it, and keeps
// the tri-state session machine: Unknown -> {Authenticated | Anonymous},
// Authenticated -> Anonymous (logout or a 401 on any request), Anonymous ->
// Authenticated (successful login). Switching users always passes through
// Anonymous.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/romboooo/distr-is/internal/domain"
)

// State is the tri-state session status
type State int

const (
	// StateUnknown means the identity fetch has not resolved yet
	StateUnknown State = iota

	// StateAnonymous means no valid credential is held
	StateAnonymous

	// StateAuthenticated means an identity is established
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// TokenStore persists the credential token across restarts.
// The config package provides the production implementation; tests use an
// in-memory one.
type TokenStore interface {
	Token() string
	SaveToken(token string) error
	ClearToken() error
}

// MemoryTokenStore is a TokenStore living only for the process lifetime
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryTokenStore) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *MemoryTokenStore) SaveToken(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokenStore) ClearToken() error {
	return m.SaveToken("")
}

// CacheClearer is the slice of the resource cache the session needs:
// logout wipes every cached entity, since entries may be identity-scoped.
type CacheClearer interface {
	Clear()
}

// Manager is the session/auth context. Construct one per application and
// pass it by reference to guards and views; no package-level instance.
type Manager struct {
	auth   domain.Authenticator
	tokens TokenStore
	cache  CacheClearer
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	identity *domain.User
	inflight chan struct{} // non-nil while an identity fetch is running
}

// NewManager creates a session manager. The initial state is Unknown when a
// token is persisted (the identity fetch has not run yet) and Anonymous when
// there is none.
func NewManager(auth domain.Authenticator, tokens TokenStore, cache CacheClearer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		auth:   auth,
		tokens: tokens,
		cache:  cache,
		logger: logger,
		state:  StateUnknown,
	}
	if tokens.Token() == "" {
		m.state = StateAnonymous
	}
	return m
}

// Token implements api.TokenSource
func (m *Manager) Token() string {
	return m.tokens.Token()
}

// State returns the current session state without triggering a fetch
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Identity returns the resolved identity, or nil unless Authenticated
func (m *Manager) Identity() *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// Current resolves the session state, fetching the identity on first call.
// Concurrent callers while a fetch is in flight share the single request.
// Any failure to validate the token (401, network) resolves to Anonymous
// and clears the persisted token.
func (m *Manager) Current(ctx context.Context) (State, *domain.User, error) {
	m.mu.Lock()
	if m.state != StateUnknown {
		state, id := m.state, m.identity
		m.mu.Unlock()
		return state, id, nil
	}

	if m.inflight != nil {
		done := m.inflight
		m.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return StateUnknown, nil, ctx.Err()
		}
		return m.Current(ctx)
	}

	done := make(chan struct{})
	m.inflight = done
	m.mu.Unlock()

	user, err := m.auth.CurrentUser(ctx)

	m.mu.Lock()
	m.inflight = nil
	if err != nil {
		// An unverifiable token is worthless: drop to anonymous
		m.state = StateAnonymous
		m.identity = nil
		m.tokens.ClearToken()
		if !errors.Is(err, domain.ErrAuthRequired) {
			m.logger.Warn("identity fetch failed", "error", err)
		}
	} else {
		m.state = StateAuthenticated
		m.identity = user
		m.logger.Info("session resolved", "login", user.Login, "role", user.Role)
	}
	state, id := m.state, m.identity
	m.mu.Unlock()
	close(done)

	return state, id, nil
}

// Login exchanges credentials for a session. On success the token is
// persisted and the login response seeds the identity, so no extra /me
// round-trip follows. On rejection the state stays Anonymous and
// domain.ErrInvalidCredentials is returned.
func (m *Manager) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	result, err := m.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	if err := m.tokens.SaveToken(result.Token); err != nil {
		m.logger.Warn("failed to persist token", "error", err)
	}

	user := result.User
	m.mu.Lock()
	m.state = StateAuthenticated
	m.identity = &user
	m.mu.Unlock()

	m.logger.Info("login succeeded", "login", user.Login, "role", user.Role)
	return &user, nil
}

// Logout clears the persisted token, drops to Anonymous and wipes the
// resource cache
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.state = StateAnonymous
	m.identity = nil
	m.mu.Unlock()

	err := m.tokens.ClearToken()
	if m.cache != nil {
		m.cache.Clear()
	}
	m.logger.Info("logged out")
	return err
}

// HandleUnauthorized is wired as the api client's 401 hook: any request
// rejected mid-session invalidates the whole session.
func (m *Manager) HandleUnauthorized() {
	m.mu.Lock()
	wasAuthenticated := m.state == StateAuthenticated
	m.state = StateAnonymous
	m.identity = nil
	m.mu.Unlock()

	m.tokens.ClearToken()
	if wasAuthenticated {
		m.logger.Warn("session rejected by server, dropping to anonymous")
	}
}
