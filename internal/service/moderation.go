package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/romboooo/distr-is/internal/cache"
	"github.com/romboooo/distr-is/internal/domain"
)

// ModerationService handles the review queue and decision history
type ModerationService struct {
	repo   domain.ModerationRepository
	cache  *cache.Store
	logger *slog.Logger
}

// NewModerationService creates a new moderation service
func NewModerationService(repo domain.ModerationRepository, store *cache.Store, logger *slog.Logger) *ModerationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModerationService{repo: repo, cache: store, logger: logger}
}

// GetPendingReleases returns one page of releases waiting for review
func (s *ModerationService) GetPendingReleases(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.Release], error) {
	key := keyPendingReleases(page.Number, page.Size)
	return cache.ReadAs(ctx, s.cache, key, func(ctx context.Context) (*domain.Page[domain.Release], error) {
		return s.repo.GetPendingReleases(ctx, page)
	})
}

// GetModerationHistory returns every recorded decision for a release
func (s *ModerationService) GetModerationHistory(ctx context.Context, releaseID int64) ([]domain.ModerationRecord, error) {
	return cache.ReadAs(ctx, s.cache, keyModerationHistory(releaseID), func(ctx context.Context) ([]domain.ModerationRecord, error) {
		return s.repo.GetModerationHistory(ctx, releaseID)
	})
}

// GetModeratorID resolves the moderator profile id behind a user account
func (s *ModerationService) GetModeratorID(ctx context.Context, userID int64) (int64, error) {
	raw, err := s.cache.Read(ctx, keyModeratorID(userID), func(ctx context.Context) ([]byte, error) {
		id, err := s.repo.GetModeratorID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return []byte(strconv.FormatInt(id, 10)), nil
	})
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(string(raw), 10, 64)
}

// ModerateRelease records a verdict on a pending release
func (s *ModerationService) ModerateRelease(ctx context.Context, decision domain.ModerationDecision) (*domain.ModerationRecord, error) {
	record, err := s.repo.ModerateRelease(ctx, decision)
	if err != nil {
		return nil, err
	}
	applyInvalidation(s.cache, MutationModerateRelease, Subject{ReleaseID: decision.ReleaseID})
	s.logger.Info("release moderated",
		"release", decision.ReleaseID,
		"moderator", decision.ModeratorID,
		"state", decision.State)
	return record, nil
}
