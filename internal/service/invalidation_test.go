package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romboooo/distr-is/internal/cache"
)

func TestInvalidationKeysDeclaredContract(t *testing.T) {
	subject := Subject{UserID: 10, ArtistID: 4, LabelID: 6, ReleaseID: 20, SongID: 31}

	cases := map[string]struct {
		mutation Mutation
		want     []KeyPattern
	}{
		"create user": {
			MutationCreateUser,
			[]KeyPattern{byPrefix("users:"), exact("user:10")},
		},
		"update user": {
			MutationUpdateUser,
			[]KeyPattern{byPrefix("users:"), exact("user:10")},
		},
		"delete user": {
			MutationDeleteUser,
			[]KeyPattern{byPrefix("users:"), exact("user:10")},
		},
		"create artist": {
			MutationCreateArtist,
			[]KeyPattern{byPrefix("artists:"), exact("artist-by-user:10"), exact("user:10")},
		},
		"update artist": {
			MutationUpdateArtist,
			[]KeyPattern{exact("artist:4"), exact("artist-by-user:10"), exact("user:10")},
		},
		"create label": {
			MutationCreateLabel,
			[]KeyPattern{byPrefix("labels:"), exact("label-by-user:10"), exact("user:10")},
		},
		"update label": {
			MutationUpdateLabel,
			[]KeyPattern{exact("label:6"), exact("label-by-user:10"), exact("user:10")},
		},
		"create release draft": {
			MutationCreateReleaseDraft,
			[]KeyPattern{byPrefix("artist-releases:4:")},
		},
		"update release": {
			MutationUpdateRelease,
			[]KeyPattern{exact("release:20"), byPrefix("artist-releases:"), exact("release-songs:20")},
		},
		"add song": {
			MutationAddSong,
			[]KeyPattern{exact("release-songs:20"), exact("release:20")},
		},
		"upload song file": {
			MutationUploadSongFile,
			[]KeyPattern{exact("song:31"), exact("release-songs:20"), exact("release:20")},
		},
		"upload cover": {
			MutationUploadCover,
			[]KeyPattern{exact("release:20"), exact("release-cover:20")},
		},
		"request moderation": {
			MutationRequestModeration,
			[]KeyPattern{byPrefix("pending-releases:"), byPrefix("artist-releases:4:"), exact("moderation-history:20")},
		},
		"moderate release": {
			MutationModerateRelease,
			[]KeyPattern{byPrefix("pending-releases:"), exact("release:20"), exact("moderation-history:20")},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, InvalidationKeys(tc.mutation, subject))
		})
	}
}

func TestInvalidationKeysUnknownMutation(t *testing.T) {
	assert.Nil(t, InvalidationKeys(Mutation(999), Subject{}))
}

func TestApplyInvalidationMarksOnlyDeclaredKeys(t *testing.T) {
	store, err := cache.NewStore("", nil)
	require.NoError(t, err)

	seed := []string{
		"users:0:10:",
		"users:1:10:ARTIST",
		"user:10",
		"user:11",
		"artist:4",
		"release:20",
	}
	for _, key := range seed {
		require.NoError(t, store.Put(key, key))
	}

	applyInvalidation(store, MutationUpdateUser, Subject{UserID: 10})

	stale := map[string]bool{
		"users:0:10:":       true,
		"users:1:10:ARTIST": true,
		"user:10":           true,
	}
	for _, key := range seed {
		state, ok := store.State(key)
		require.True(t, ok, key)
		if stale[key] {
			assert.Equal(t, cache.StateStale, state, key)
		} else {
			assert.Equal(t, cache.StateIdle, state, key)
		}
	}
}
