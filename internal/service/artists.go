package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/romboooo/distr-is/internal/cache"
	"github.com/romboooo/distr-is/internal/domain"
)

// ArtistService handles artist profiles and their releases
type ArtistService struct {
	repo   domain.ArtistRepository
	cache  *cache.Store
	logger *slog.Logger
}

// NewArtistService creates a new artist service
func NewArtistService(repo domain.ArtistRepository, store *cache.Store, logger *slog.Logger) *ArtistService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtistService{repo: repo, cache: store, logger: logger}
}

// GetArtist returns a single artist profile
func (s *ArtistService) GetArtist(ctx context.Context, id int64) (*domain.Artist, error) {
	return cache.ReadAs(ctx, s.cache, keyArtist(id), func(ctx context.Context) (*domain.Artist, error) {
		return s.repo.GetArtist(ctx, id)
	})
}

// GetArtists returns one page of artist profiles
func (s *ArtistService) GetArtists(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.Artist], error) {
	key := keyArtists(page.Number, page.Size)
	return cache.ReadAs(ctx, s.cache, key, func(ctx context.Context) (*domain.Page[domain.Artist], error) {
		return s.repo.GetArtists(ctx, page)
	})
}

// GetArtistByUser returns the artist profile backing a user account.
// An account without a profile yet is a legitimate state: 404 maps to
// (nil, nil), not an error.
func (s *ArtistService) GetArtistByUser(ctx context.Context, userID int64) (*domain.Artist, error) {
	return cache.ReadAs(ctx, s.cache, keyArtistByUser(userID), func(ctx context.Context) (*domain.Artist, error) {
		a, err := s.repo.GetArtistByUser(ctx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return a, err
	})
}

// GetArtistsByLabel returns the artist roster of a label
func (s *ArtistService) GetArtistsByLabel(ctx context.Context, labelID int64) ([]domain.Artist, error) {
	return cache.ReadAs(ctx, s.cache, keyArtistsByLabel(labelID), func(ctx context.Context) ([]domain.Artist, error) {
		return s.repo.GetArtistsByLabel(ctx, labelID)
	})
}

// GetArtistReleases returns one page of an artist's releases
func (s *ArtistService) GetArtistReleases(ctx context.Context, artistID int64, page domain.PageRequest) (*domain.Page[domain.Release], error) {
	key := keyArtistReleases(artistID, page.Number, page.Size)
	return cache.ReadAs(ctx, s.cache, key, func(ctx context.Context) (*domain.Page[domain.Release], error) {
		return s.repo.GetArtistReleases(ctx, artistID, page)
	})
}

// CreateArtist creates the artist profile for a user account
func (s *ArtistService) CreateArtist(ctx context.Context, a domain.Artist) (*domain.Artist, error) {
	created, err := s.repo.CreateArtist(ctx, a)
	if err != nil {
		return nil, err
	}
	applyInvalidation(s.cache, MutationCreateArtist, Subject{UserID: created.UserID, ArtistID: created.ID})
	s.logger.Info("artist profile created", "id", created.ID, "user", created.UserID)
	return created, nil
}

// UpdateArtist updates an artist profile
func (s *ArtistService) UpdateArtist(ctx context.Context, a domain.Artist) (*domain.Artist, error) {
	updated, err := s.repo.UpdateArtist(ctx, a)
	if err != nil {
		return nil, err
	}
	applyInvalidation(s.cache, MutationUpdateArtist, Subject{UserID: updated.UserID, ArtistID: updated.ID})
	s.logger.Info("artist profile updated", "id", updated.ID)
	return updated, nil
}
