package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romboooo/distr-is/internal/domain"
)

type fakeAuthenticator struct {
	mu          sync.Mutex
	loginResult *domain.AuthResult
	loginErr    error
	currentUser *domain.User
	currentErr  error
	currentHold chan struct{} // when non-nil, CurrentUser blocks until closed

	loginCalls   int32
	currentCalls int32
}

func (f *fakeAuthenticator) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	atomic.AddInt32(&f.loginCalls, 1)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResult, nil
}

func (f *fakeAuthenticator) CurrentUser(ctx context.Context) (*domain.User, error) {
	atomic.AddInt32(&f.currentCalls, 1)
	f.mu.Lock()
	hold := f.currentHold
	f.mu.Unlock()
	if hold != nil {
		<-hold
	}
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	return f.currentUser, nil
}

type fakeCache struct {
	clears int32
}

func (f *fakeCache) Clear() { atomic.AddInt32(&f.clears, 1) }

func artistUser() *domain.User {
	return &domain.User{ID: 3, Login: "neon", Role: domain.RoleArtist}
}

func TestNewManagerStateFromToken(t *testing.T) {
	auth := &fakeAuthenticator{}

	m := NewManager(auth, &MemoryTokenStore{}, nil, nil)
	assert.Equal(t, StateAnonymous, m.State())

	withToken := &MemoryTokenStore{}
	require.NoError(t, withToken.SaveToken("tok"))
	m = NewManager(auth, withToken, nil, nil)
	assert.Equal(t, StateUnknown, m.State())
}

func TestCurrentResolvesIdentity(t *testing.T) {
	auth := &fakeAuthenticator{currentUser: artistUser()}
	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.SaveToken("tok"))

	m := NewManager(auth, tokens, nil, nil)

	state, id, err := m.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, state)
	require.NotNil(t, id)
	assert.Equal(t, "neon", id.Login)

	// Resolved state is cached, no second fetch
	state, _, err = m.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, state)
	assert.Equal(t, int32(1), atomic.LoadInt32(&auth.currentCalls))
}

func TestCurrentDeduplicatesConcurrentCallers(t *testing.T) {
	hold := make(chan struct{})
	auth := &fakeAuthenticator{currentUser: artistUser(), currentHold: hold}
	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.SaveToken("tok"))

	m := NewManager(auth, tokens, nil, nil)

	const callers = 8
	var wg sync.WaitGroup
	states := make([]State, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			states[i], _, _ = m.Current(context.Background())
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(hold)
	wg.Wait()

	for i := 0; i < callers; i++ {
		assert.Equal(t, StateAuthenticated, states[i])
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&auth.currentCalls))
}

func TestCurrentInvalidTokenDropsToAnonymous(t *testing.T) {
	auth := &fakeAuthenticator{currentErr: domain.ErrAuthRequired}
	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.SaveToken("expired"))

	m := NewManager(auth, tokens, nil, nil)

	state, id, err := m.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, state)
	assert.Nil(t, id)
	assert.Empty(t, tokens.Token())
}

func TestCurrentNetworkFailureDropsToAnonymous(t *testing.T) {
	auth := &fakeAuthenticator{currentErr: domain.ErrServerOffline}
	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.SaveToken("tok"))

	m := NewManager(auth, tokens, nil, nil)

	state, _, err := m.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, state)
	assert.Empty(t, tokens.Token())
}

func TestLoginSeedsIdentityWithoutExtraFetch(t *testing.T) {
	auth := &fakeAuthenticator{
		loginResult: &domain.AuthResult{Token: "fresh", User: *artistUser()},
	}
	tokens := &MemoryTokenStore{}

	m := NewManager(auth, tokens, nil, nil)
	require.Equal(t, StateAnonymous, m.State())

	user, err := m.Login(context.Background(), domain.Credentials{Login: "neon", Password: "pw"})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "neon", user.Login)

	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "fresh", tokens.Token())

	// Identity came from the login response, not a follow-up fetch
	_, id, err := m.Current(context.Background())
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int32(0), atomic.LoadInt32(&auth.currentCalls))
}

func TestLoginRejectedStaysAnonymous(t *testing.T) {
	auth := &fakeAuthenticator{loginErr: domain.ErrInvalidCredentials}
	tokens := &MemoryTokenStore{}

	m := NewManager(auth, tokens, nil, nil)

	_, err := m.Login(context.Background(), domain.Credentials{Login: "x", Password: "bad"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, StateAnonymous, m.State())
	assert.Empty(t, tokens.Token())
}

func TestLogoutClearsTokenAndCache(t *testing.T) {
	auth := &fakeAuthenticator{
		loginResult: &domain.AuthResult{Token: "tok", User: *artistUser()},
	}
	tokens := &MemoryTokenStore{}
	cache := &fakeCache{}

	m := NewManager(auth, tokens, cache, nil)
	_, err := m.Login(context.Background(), domain.Credentials{Login: "neon", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, m.Logout())

	assert.Equal(t, StateAnonymous, m.State())
	assert.Nil(t, m.Identity())
	assert.Empty(t, tokens.Token())
	assert.Equal(t, int32(1), atomic.LoadInt32(&cache.clears))
}

func TestHandleUnauthorizedInvalidatesSession(t *testing.T) {
	auth := &fakeAuthenticator{
		loginResult: &domain.AuthResult{Token: "tok", User: *artistUser()},
	}
	tokens := &MemoryTokenStore{}

	m := NewManager(auth, tokens, nil, nil)
	_, err := m.Login(context.Background(), domain.Credentials{Login: "neon", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, StateAuthenticated, m.State())

	// Any request rejected mid-session drops the whole session
	m.HandleUnauthorized()

	assert.Equal(t, StateAnonymous, m.State())
	assert.Nil(t, m.Identity())
	assert.Empty(t, tokens.Token())
}

func TestSwitchingUsersPassesThroughAnonymous(t *testing.T) {
	auth := &fakeAuthenticator{
		loginResult: &domain.AuthResult{Token: "a-tok", User: *artistUser()},
	}
	tokens := &MemoryTokenStore{}
	cache := &fakeCache{}

	m := NewManager(auth, tokens, cache, nil)
	_, err := m.Login(context.Background(), domain.Credentials{Login: "neon", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, m.Logout())
	require.Equal(t, StateAnonymous, m.State())

	auth.loginResult = &domain.AuthResult{
		Token: "b-tok",
		User:  domain.User{ID: 9, Login: "wave", Role: domain.RoleLabel},
	}
	user, err := m.Login(context.Background(), domain.Credentials{Login: "wave", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleLabel, user.Role)
	assert.Equal(t, "b-tok", tokens.Token())
	assert.Equal(t, int32(1), atomic.LoadInt32(&cache.clears))
}
