package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore("", nil)
	require.NoError(t, err)
	return s
}

func TestReadFetchesOnceAndCaches(t *testing.T) {
	s := newTestStore(t)
	var calls int32

	fetch := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte(`"hello"`), nil
	}

	data, err := s.Read(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, `"hello"`, string(data))

	data, err = s.Read(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, `"hello"`, string(data))

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	state, ok := s.State("k")
	require.True(t, ok)
	assert.Equal(t, StateIdle, state)
}

func TestReadSingleFlight(t *testing.T) {
	s := newTestStore(t)
	var calls int32
	release := make(chan struct{})

	fetch := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte(`1`), nil
	}

	const readers = 10
	var wg sync.WaitGroup
	results := make([][]byte, readers)
	errs := make([]error, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Read(context.Background(), "k", fetch)
		}(i)
	}

	// Let every reader reach the flight before releasing the fetch
	require.Eventually(t, func() bool {
		state, ok := s.State("k")
		return ok && state == StateFetching
	}, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < readers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, `1`, string(results[i]))
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestReadDetachedFromCallerContext(t *testing.T) {
	s := newTestStore(t)
	release := make(chan struct{})
	fetched := make(chan struct{})

	fetch := func(ctx context.Context) ([]byte, error) {
		defer close(fetched)
		select {
		case <-release:
			return []byte(`42`), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// First reader navigates away mid-fetch
		s.Read(ctx, "k", fetch)
	}()

	require.Eventually(t, func() bool {
		state, ok := s.State("k")
		return ok && state == StateFetching
	}, time.Second, time.Millisecond)
	cancel()
	close(release)

	select {
	case <-fetched:
	case <-time.After(time.Second):
		t.Fatal("fetch never completed")
	}

	// The result still landed in the cache for later readers
	require.Eventually(t, func() bool {
		state, ok := s.State("k")
		return ok && state == StateIdle
	}, time.Second, time.Millisecond)

	data, err := s.Read(context.Background(), "k", func(ctx context.Context) ([]byte, error) {
		t.Fatal("unexpected refetch")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, `42`, string(data))
}

func TestReadCanceledCallerGetsContextError(t *testing.T) {
	s := newTestStore(t)
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Read(ctx, "k", func(ctx context.Context) ([]byte, error) {
			<-release
			return []byte(`1`), nil
		})
		done <- err
	}()

	require.Eventually(t, func() bool {
		state, ok := s.State("k")
		return ok && state == StateFetching
	}, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("reader never returned")
	}
}

func TestReadErrorRetriesNextRead(t *testing.T) {
	s := newTestStore(t)
	boom := errors.New("boom")
	var calls int32

	fetch := func(ctx context.Context) ([]byte, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, boom
		}
		return []byte(`2`), nil
	}

	_, err := s.Read(context.Background(), "k", fetch)
	require.ErrorIs(t, err, boom)

	state, ok := s.State("k")
	require.True(t, ok)
	assert.Equal(t, StateError, state)

	data, err := s.Read(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, `2`, string(data))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestInvalidateMarksStaleAndRefetches(t *testing.T) {
	s := newTestStore(t)
	var calls int32

	fetch := func(ctx context.Context) ([]byte, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return []byte(`"old"`), nil
		}
		return []byte(`"new"`), nil
	}

	_, err := s.Read(context.Background(), "k", fetch)
	require.NoError(t, err)

	s.Invalidate("k")
	state, ok := s.State("k")
	require.True(t, ok)
	assert.Equal(t, StateStale, state)

	data, err := s.Read(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, `"new"`, string(data))
}

func TestInvalidateUnknownKeyIsNoop(t *testing.T) {
	s := newTestStore(t)
	s.Invalidate("never-seen")
	_, ok := s.State("never-seen")
	assert.False(t, ok)
}

func TestInvalidatePrefix(t *testing.T) {
	s := newTestStore(t)
	put := func(key string) {
		require.NoError(t, s.Put(key, key))
	}
	put("releases:1:0:10")
	put("releases:1:1:10")
	put("releases:2:0:10")
	put("release:1")

	s.InvalidatePrefix("releases:1:")

	for key, want := range map[string]EntryState{
		"releases:1:0:10": StateStale,
		"releases:1:1:10": StateStale,
		"releases:2:0:10": StateIdle,
		"release:1":       StateIdle,
	} {
		state, ok := s.State(key)
		require.True(t, ok, key)
		assert.Equal(t, want, state, key)
	}
}

func TestInvalidateSkipsInFlightFetch(t *testing.T) {
	s := newTestStore(t)
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Read(context.Background(), "k", func(ctx context.Context) ([]byte, error) {
			<-release
			return []byte(`1`), nil
		})
	}()

	require.Eventually(t, func() bool {
		state, ok := s.State("k")
		return ok && state == StateFetching
	}, time.Second, time.Millisecond)

	s.Invalidate("k")
	state, _ := s.State("k")
	assert.Equal(t, StateFetching, state)

	close(release)
	<-done
	state, _ = s.State("k")
	assert.Equal(t, StateIdle, state)
}

func TestPutSeedsIdleEntry(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put("k", map[string]int{"id": 7}))

	state, ok := s.State("k")
	require.True(t, ok)
	assert.Equal(t, StateIdle, state)

	data, err := s.Read(context.Background(), "k", func(ctx context.Context) ([]byte, error) {
		t.Fatal("unexpected fetch after seed")
		return nil, nil
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7}`, string(data))
}

func TestClearDropsEverything(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put("a", 1))
	require.NoError(t, s.Put("b", 2))

	s.Clear()

	_, ok := s.State("a")
	assert.False(t, ok)
	_, ok = s.State("b")
	assert.False(t, ok)

	var calls int32
	_, err := s.Read(context.Background(), "a", func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte(`1`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPersistedWarmCache(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.Put("k", "persisted"))
	require.NoError(t, s.Close())

	s2, err := NewStore(dir, nil)
	require.NoError(t, err)
	defer s2.Close()

	data, err := s2.Read(context.Background(), "k", func(ctx context.Context) ([]byte, error) {
		t.Fatal("unexpected fetch, entry was persisted")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, `"persisted"`, string(data))
}

func TestInvalidateDropsPersistedEntry(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.Put("k", "v1"))
	s.Invalidate("k")
	require.NoError(t, s.Close())

	s2, err := NewStore(dir, nil)
	require.NoError(t, err)
	defer s2.Close()

	var calls int32
	data, err := s2.Read(context.Background(), "k", func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte(`"v2"`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, `"v2"`, string(data))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestReadAsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	type release struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	got, err := ReadAs(context.Background(), s, "release:1", func(ctx context.Context) (*release, error) {
		return &release{ID: 1, Name: "Night Drive"}, nil
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "Night Drive", got.Name)

	// Second read is served from cache, no fetch
	got, err = ReadAs(context.Background(), s, "release:1", func(ctx context.Context) (*release, error) {
		t.Fatal("unexpected fetch")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Night Drive", got.Name)
}

func TestFetchedAt(t *testing.T) {
	s := newTestStore(t)
	_, ok := s.FetchedAt("k")
	assert.False(t, ok)

	before := time.Now()
	_, err := s.Read(context.Background(), "k", func(ctx context.Context) ([]byte, error) {
		return []byte(`1`), nil
	})
	require.NoError(t, err)

	at, ok := s.FetchedAt("k")
	require.True(t, ok)
	assert.False(t, at.Before(before))
}
