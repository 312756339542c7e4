package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romboooo/distr-is/internal/domain"
	"github.com/romboooo/distr-is/internal/log"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, StaticToken("test-token"), log.NullLogger()), srv
}

func TestRequestCarriesBearerToken(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":1,"login":"neon","type":"ARTIST"}`))
	}))

	_, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestAnonymousRequestHasNoAuthHeader(t *testing.T) {
	var hasAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.Write([]byte(`{"id":1,"login":"neon","type":"ARTIST"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, log.NullLogger())
	_, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

func TestUnauthorizedMapsToErrAuthRequiredAndFiresHook(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	var hookCalls int32
	c.SetUnauthorizedHandler(func() { atomic.AddInt32(&hookCalls, 1) })

	_, err := c.CurrentUser(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hookCalls))
}

func TestStatusMapping(t *testing.T) {
	cases := map[string]struct {
		status int
		want   error
	}{
		"forbidden": {http.StatusForbidden, domain.ErrForbidden},
		"not found": {http.StatusNotFound, domain.ErrNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			_, err := c.GetUser(context.Background(), 1)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestServerErrorSurfacesBackendMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"release name already taken"}`))
	}))

	_, err := c.GetUser(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "release name already taken")
}

func TestUnreachableServerMapsToErrServerOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, nil, log.NullLogger())
	_, err := c.GetUser(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestLoginSuccess(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"login":"neon","password":"pw"}`, string(body))
		w.Write([]byte(`{"token":"fresh","type":"Bearer","user":{"id":3,"login":"neon","type":"ARTIST","registrationDate":"2025-02-10T09:30:00"}}`))
	}))

	result, err := c.Login(context.Background(), domain.Credentials{Login: "neon", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", result.Token)
	assert.Equal(t, int64(3), result.User.ID)
	assert.Equal(t, domain.RoleArtist, result.User.Role)
	assert.Equal(t, 2025, result.User.RegistrationDate.Year())
}

func TestLoginRejectionDoesNotFireUnauthorizedHook(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusBadRequest} {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		var hookCalls int32
		c.SetUnauthorizedHandler(func() { atomic.AddInt32(&hookCalls, 1) })

		_, err := c.Login(context.Background(), domain.Credentials{Login: "x", Password: "bad"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials, status)
		assert.Equal(t, int32(0), atomic.LoadInt32(&hookCalls), status)
	}
}

func TestGetUsersPagination(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("pageNumber"))
		assert.Equal(t, "25", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "ARTIST", r.URL.Query().Get("type"))
		w.Write([]byte(`{
			"content":[{"id":1,"login":"a","type":"ARTIST"},{"id":2,"login":"b","type":"ARTIST"}],
			"currentPage":2,"totalPages":4,"totalElements":100,"pageSize":25
		}`))
	}))

	page, err := c.GetUsers(context.Background(), domain.PageRequest{Number: 2, Size: 25}, domain.RoleArtist)
	require.NoError(t, err)
	assert.Len(t, page.Content, 2)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 4, page.TotalPages)
	assert.Equal(t, int64(100), page.TotalElements)
	assert.True(t, page.HasNext())
}

func TestCreateReleaseDraft(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/releases/draft", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"Night Drive","artistId":4,"genre":"synthwave","releaseType":"SINGLE","date":"2026-09-01"}`, string(body))
		w.Write([]byte(`{"id":20,"name":"Night Drive","artistId":4,"genre":"synthwave","releaseUpc":880012345,"date":"2026-09-01","moderationState":"DRAFT","releaseType":"SINGLE"}`))
	}))

	release, err := c.CreateReleaseDraft(context.Background(), domain.ReleaseDraft{
		Name:     "Night Drive",
		ArtistID: 4,
		Genre:    "synthwave",
		Type:     domain.ReleaseSingle,
		Date:     "2026-09-01",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20), release.ID)
	assert.Equal(t, domain.ModerationDraft, release.ModerationState)
	assert.Equal(t, int64(880012345), release.UPC)
	assert.True(t, release.Editable())
}

func TestUploadCoverMultipart(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/releases/20/cover", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "cover.png", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
		w.Write([]byte(`{"path":"covers/20/cover.png"}`))
	}))

	path, err := c.UploadCover(context.Background(), 20, "cover.png", []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	assert.Equal(t, "covers/20/cover.png", path)
}

func TestGetCoverReturnsRawBytes(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))

	data, err := c.GetCover(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
}

func TestModerateRelease(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/moderation", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"moderatorId":7,"releaseId":20,"comment":"cover art too blurry","moderationState":"WAITING_FOR_CHANGES"}`, string(body))
		w.Write([]byte(`{"id":55,"releaseId":20,"moderatorId":7,"comment":"cover art too blurry","moderationState":"WAITING_FOR_CHANGES","date":"2026-08-30T12:00:00"}`))
	}))

	record, err := c.ModerateRelease(context.Background(), domain.ModerationDecision{
		ModeratorID: 7,
		ReleaseID:   20,
		Comment:     "cover art too blurry",
		State:       domain.ModerationWaitingForChanges,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(55), record.ID)
	assert.Equal(t, domain.ModerationWaitingForChanges, record.ModerationState)
}

func TestGetModeratorID(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/moderation/moderator-id-by-user-id/12", r.URL.Path)
		w.Write([]byte(`7`))
	}))

	id, err := c.GetModeratorID(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}
