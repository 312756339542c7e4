package service

import (
	"context"
	"log/slog"

	"github.com/romboooo/distr-is/internal/cache"
	"github.com/romboooo/distr-is/internal/domain"
)

// ReleaseService handles releases, their songs, covers and royalties
type ReleaseService struct {
	repo   domain.ReleaseRepository
	cache  *cache.Store
	logger *slog.Logger
}

// NewReleaseService creates a new release service
func NewReleaseService(repo domain.ReleaseRepository, store *cache.Store, logger *slog.Logger) *ReleaseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReleaseService{repo: repo, cache: store, logger: logger}
}

// GetRelease returns a single release
func (s *ReleaseService) GetRelease(ctx context.Context, id int64) (*domain.Release, error) {
	return cache.ReadAs(ctx, s.cache, keyRelease(id), func(ctx context.Context) (*domain.Release, error) {
		return s.repo.GetRelease(ctx, id)
	})
}

// GetReleaseSongs returns the tracklist of a release
func (s *ReleaseService) GetReleaseSongs(ctx context.Context, releaseID int64) ([]domain.Song, error) {
	return cache.ReadAs(ctx, s.cache, keyReleaseSongs(releaseID), func(ctx context.Context) ([]domain.Song, error) {
		return s.repo.GetReleaseSongs(ctx, releaseID)
	})
}

// GetSong returns a single song
func (s *ReleaseService) GetSong(ctx context.Context, id int64) (*domain.Song, error) {
	return cache.ReadAs(ctx, s.cache, keySong(id), func(ctx context.Context) (*domain.Song, error) {
		return s.repo.GetSong(ctx, id)
	})
}

// GetCover returns the cover image bytes of a release
func (s *ReleaseService) GetCover(ctx context.Context, releaseID int64) ([]byte, error) {
	return cache.ReadAs(ctx, s.cache, keyReleaseCover(releaseID), func(ctx context.Context) ([]byte, error) {
		return s.repo.GetCover(ctx, releaseID)
	})
}

// GetReleaseRoyalties returns one page of royalty records for a release
func (s *ReleaseService) GetReleaseRoyalties(ctx context.Context, releaseID int64, page domain.PageRequest) (*domain.Page[domain.Royalty], error) {
	key := keyReleaseRoyalties(releaseID, page.Number, page.Size)
	return cache.ReadAs(ctx, s.cache, key, func(ctx context.Context) (*domain.Page[domain.Royalty], error) {
		return s.repo.GetReleaseRoyalties(ctx, releaseID, page)
	})
}

// CreateReleaseDraft opens a new draft release for an artist. The created
// release is seeded into the cache so the detail view renders without a
// second round trip.
func (s *ReleaseService) CreateReleaseDraft(ctx context.Context, draft domain.ReleaseDraft) (*domain.Release, error) {
	created, err := s.repo.CreateReleaseDraft(ctx, draft)
	if err != nil {
		return nil, err
	}
	applyInvalidation(s.cache, MutationCreateReleaseDraft, Subject{ArtistID: draft.ArtistID})
	if err := s.cache.Put(keyRelease(created.ID), created); err != nil {
		s.logger.Warn("failed to seed release cache", "id", created.ID, "error", err)
	}
	s.logger.Info("release draft created", "id", created.ID, "artist", draft.ArtistID)
	return created, nil
}

// UpdateRelease patches mutable fields of a draft release
func (s *ReleaseService) UpdateRelease(ctx context.Context, id int64, name, genre string, rt domain.ReleaseType) (*domain.Release, error) {
	updated, err := s.repo.UpdateRelease(ctx, id, name, genre, rt)
	if err != nil {
		return nil, err
	}
	applyInvalidation(s.cache, MutationUpdateRelease, Subject{ReleaseID: id})
	if err := s.cache.Put(keyRelease(id), updated); err != nil {
		s.logger.Warn("failed to seed release cache", "id", id, "error", err)
	}
	s.logger.Info("release updated", "id", id)
	return updated, nil
}

// AddSong appends a track to a release. The created song is seeded into
// the cache alongside the invalidated tracklist.
func (s *ReleaseService) AddSong(ctx context.Context, releaseID int64, input domain.SongInput) (*domain.Song, error) {
	song, err := s.repo.AddSong(ctx, releaseID, input)
	if err != nil {
		return nil, err
	}
	applyInvalidation(s.cache, MutationAddSong, Subject{ReleaseID: releaseID, SongID: song.ID})
	if err := s.cache.Put(keySong(song.ID), song); err != nil {
		s.logger.Warn("failed to seed song cache", "id", song.ID, "error", err)
	}
	s.logger.Info("song added", "id", song.ID, "release", releaseID)
	return song, nil
}

// UploadSongFile uploads the audio file for a song and returns the stored path
func (s *ReleaseService) UploadSongFile(ctx context.Context, releaseID, songID int64, filename string, data []byte) (string, error) {
	path, err := s.repo.UploadSongFile(ctx, songID, filename, data)
	if err != nil {
		return "", err
	}
	applyInvalidation(s.cache, MutationUploadSongFile, Subject{ReleaseID: releaseID, SongID: songID})
	s.logger.Info("song file uploaded", "song", songID, "path", path)
	return path, nil
}

// UploadCover uploads the cover image for a release and returns the stored path
func (s *ReleaseService) UploadCover(ctx context.Context, releaseID int64, filename string, data []byte) (string, error) {
	path, err := s.repo.UploadCover(ctx, releaseID, filename, data)
	if err != nil {
		return "", err
	}
	applyInvalidation(s.cache, MutationUploadCover, Subject{ReleaseID: releaseID})
	s.logger.Info("cover uploaded", "release", releaseID, "path", path)
	return path, nil
}

// RequestModeration submits a draft for review. The returned release
// carries the new ON_REVIEW state and replaces the cached detail entry.
func (s *ReleaseService) RequestModeration(ctx context.Context, releaseID, artistID int64) (*domain.Release, error) {
	updated, err := s.repo.RequestModeration(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	applyInvalidation(s.cache, MutationRequestModeration, Subject{ReleaseID: releaseID, ArtistID: artistID})
	if err := s.cache.Put(keyRelease(releaseID), updated); err != nil {
		s.logger.Warn("failed to seed release cache", "id", releaseID, "error", err)
	}
	s.logger.Info("moderation requested", "release", releaseID)
	return updated, nil
}
