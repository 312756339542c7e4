package service

import "github.com/romboooo/distr-is/internal/cache"

// Mutation enumerates every write operation that touches the cache
type Mutation int

const (
	MutationCreateUser Mutation = iota
	MutationUpdateUser
	MutationDeleteUser
	MutationCreateArtist
	MutationUpdateArtist
	MutationCreateLabel
	MutationUpdateLabel
	MutationCreateReleaseDraft
	MutationUpdateRelease
	MutationAddSong
	MutationUploadSongFile
	MutationUploadCover
	MutationRequestModeration
	MutationModerateRelease
)

// KeyPattern selects cache keys either exactly or by prefix
type KeyPattern struct {
	Key    string
	Prefix bool
}

func exact(key string) KeyPattern    { return KeyPattern{Key: key} }
func byPrefix(key string) KeyPattern { return KeyPattern{Key: key, Prefix: true} }

// Subject carries the entity ids a mutation touched; each rule picks the
// ones it needs.
type Subject struct {
	UserID    int64
	ArtistID  int64
	LabelID   int64
	ReleaseID int64
	SongID    int64
}

// invalidationRules is the declared contract: which cache keys each
// mutation makes stale on success. Mutations invalidate exactly these keys
// and nothing else; failed mutations invalidate nothing.
var invalidationRules = map[Mutation]func(Subject) []KeyPattern{
	MutationCreateUser: func(s Subject) []KeyPattern {
		return []KeyPattern{byPrefix(PrefixUsers), exact(keyUser(s.UserID))}
	},
	MutationUpdateUser: func(s Subject) []KeyPattern {
		return []KeyPattern{byPrefix(PrefixUsers), exact(keyUser(s.UserID))}
	},
	MutationDeleteUser: func(s Subject) []KeyPattern {
		return []KeyPattern{byPrefix(PrefixUsers), exact(keyUser(s.UserID))}
	},
	MutationCreateArtist: func(s Subject) []KeyPattern {
		return []KeyPattern{
			byPrefix(PrefixArtists),
			exact(keyArtistByUser(s.UserID)),
			exact(keyUser(s.UserID)),
		}
	},
	MutationUpdateArtist: func(s Subject) []KeyPattern {
		return []KeyPattern{
			exact(keyArtist(s.ArtistID)),
			exact(keyArtistByUser(s.UserID)),
			exact(keyUser(s.UserID)),
		}
	},
	MutationCreateLabel: func(s Subject) []KeyPattern {
		return []KeyPattern{
			byPrefix(PrefixLabels),
			exact(keyLabelByUser(s.UserID)),
			exact(keyUser(s.UserID)),
		}
	},
	MutationUpdateLabel: func(s Subject) []KeyPattern {
		return []KeyPattern{
			exact(keyLabel(s.LabelID)),
			exact(keyLabelByUser(s.UserID)),
			exact(keyUser(s.UserID)),
		}
	},
	MutationCreateReleaseDraft: func(s Subject) []KeyPattern {
		return []KeyPattern{byPrefix(artistReleasesPrefix(s.ArtistID))}
	},
	MutationUpdateRelease: func(s Subject) []KeyPattern {
		return []KeyPattern{
			exact(keyRelease(s.ReleaseID)),
			byPrefix(PrefixArtistReleases),
			exact(keyReleaseSongs(s.ReleaseID)),
		}
	},
	MutationAddSong: func(s Subject) []KeyPattern {
		return []KeyPattern{
			exact(keyReleaseSongs(s.ReleaseID)),
			exact(keyRelease(s.ReleaseID)),
		}
	},
	MutationUploadSongFile: func(s Subject) []KeyPattern {
		return []KeyPattern{
			exact(keySong(s.SongID)),
			exact(keyReleaseSongs(s.ReleaseID)),
			exact(keyRelease(s.ReleaseID)),
		}
	},
	MutationUploadCover: func(s Subject) []KeyPattern {
		return []KeyPattern{
			exact(keyRelease(s.ReleaseID)),
			exact(keyReleaseCover(s.ReleaseID)),
		}
	},
	MutationRequestModeration: func(s Subject) []KeyPattern {
		return []KeyPattern{
			byPrefix(PrefixPendingReleases),
			byPrefix(artistReleasesPrefix(s.ArtistID)),
			exact(keyModerationHistory(s.ReleaseID)),
		}
	},
	MutationModerateRelease: func(s Subject) []KeyPattern {
		return []KeyPattern{
			byPrefix(PrefixPendingReleases),
			exact(keyRelease(s.ReleaseID)),
			exact(keyModerationHistory(s.ReleaseID)),
		}
	},
}

// InvalidationKeys returns the declared key patterns for a mutation.
// Exposed so the contract is testable independent of any network code.
func InvalidationKeys(m Mutation, s Subject) []KeyPattern {
	rule, ok := invalidationRules[m]
	if !ok {
		return nil
	}
	return rule(s)
}

// applyInvalidation marks every declared key stale. Called only after a
// mutation succeeds.
func applyInvalidation(store *cache.Store, m Mutation, s Subject) {
	for _, p := range InvalidationKeys(m, s) {
		if p.Prefix {
			store.InvalidatePrefix(p.Key)
		} else {
			store.Invalidate(p.Key)
		}
	}
}
